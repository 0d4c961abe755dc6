package fourheat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// Transport constants.
const (
	// DefaultPort is the TCP port 4heat modules listen on.
	DefaultPort = 80

	// defaultExchangeTimeout bounds one full connect/write/read cycle.
	defaultExchangeTimeout = 10 * time.Second

	// responseBufferSize is the single-read buffer; the protocol assumes
	// the full response arrives in one segment.
	responseBufferSize = 4096
)

// Exchanger performs one request/response round trip against the module.
// It exists as an interface so the dispatcher can be tested against a stub
// without opening sockets.
type Exchanger interface {
	Exchange(ctx context.Context, addr string, payload []byte) ([]byte, error)
}

// Ensure tcpExchanger implements Exchanger.
var _ Exchanger = (*tcpExchanger)(nil)

// tcpExchanger opens a fresh TCP connection per exchange. The module does
// not support connection reuse, so there is no pooling.
type tcpExchanger struct {
	timeout time.Duration
}

func newTCPExchanger(timeout time.Duration) *tcpExchanger {
	if timeout <= 0 {
		timeout = defaultExchangeTimeout
	}
	return &tcpExchanger{timeout: timeout}
}

// Exchange connects, writes the full payload, performs a single bounded
// read and closes the connection on every exit path. All socket failures
// are wrapped into ErrConnection with the target address.
func (e *tcpExchanger) Exchange(ctx context.Context, addr string, payload []byte) ([]byte, error) {
	deadline := time.Now().Add(e.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, connError(addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, connError(addr, err)
	}

	if _, err := conn.Write(payload); err != nil {
		return nil, connError(addr, err)
	}

	buf := make([]byte, responseBufferSize)
	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, connError(addr, err)
	}

	return buf[:n], nil
}

// connError wraps a socket-level failure with the target address so the
// operator can tell which module misbehaved.
func connError(addr string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnection, addr, err)
}

// EncodeRequest frames a query for the wire: a bracketed list of
// comma-and-space-joined tokens, each individually double-quoted.
// The module rejects single-quoted tokens with an empty answer, so the
// quoting character is part of the protocol, not cosmetics.
func EncodeRequest(query []string) []byte {
	var b strings.Builder
	b.WriteByte('[')
	for i, tok := range query {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('"')
		b.WriteString(tok)
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return []byte(b.String())
}
