package fourheat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Gate timing constants.
const (
	// defaultCooldown is how long the gate stays closed after a
	// communication failure. Issuing commands too soon after a failure
	// keeps the module wedged, so this window is firmware-mandated rather
	// than tunable in normal operation.
	defaultCooldown = 5 * time.Second

	// gatePollInterval is how often a waiting caller re-checks the gate.
	// Sub-second responsiveness is not required; device load is the
	// constraint being protected, not fairness.
	gatePollInterval = 100 * time.Millisecond
)

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Client drives the 4heat wire protocol for one module.
//
// It serialises concurrent callers so at most one command is in flight at
// any instant, and after a communication failure it holds the gate closed
// for a cooldown window before accepting new commands.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	opts      ConnectionOptions
	table     CommandTable
	exchanger Exchanger
	cooldown  time.Duration

	// Gate state. busy is the single-flight flag; cooldownUntil is a
	// deadline checked before every acquisition, which replaces a detached
	// recovery timer.
	mu            sync.Mutex
	busy          bool
	cooldownUntil time.Time
	lastErr       error

	logger   Logger
	loggerMu sync.RWMutex
}

// NewClient resolves the target address once and returns a ready client.
//
// Parameters:
//   - ctx: bounds the one-time DNS resolution
//   - opts: connection target and firmware mode
//
// Returns:
//   - *Client: ready for Dispatch
//   - error: if hostname resolution fails
func NewClient(ctx context.Context, opts ConnectionOptions) (*Client, error) {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if err := opts.Resolve(ctx); err != nil {
		return nil, err
	}

	return &Client{
		opts:      opts,
		table:     TableForMode(opts.Legacy),
		exchanger: newTCPExchanger(defaultExchangeTimeout),
		cooldown:  defaultCooldown,
	}, nil
}

// SetLogger sets the logger for this client.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// Options returns the resolved connection options.
func (c *Client) Options() ConnectionOptions {
	return c.opts
}

// LastError returns the error recorded by the most recent failed command,
// or nil if the last command succeeded.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Dispatch executes one logical command against the module.
//
// The sequence is: build the query (failing fast on unknown commands
// without touching the gate), wait for the gate, perform the exchange,
// parse, validate the acknowledgement for this command kind, and release
// the gate. Communication failures arm the cooldown; the failing caller
// still gets its error promptly, only subsequent callers are held off.
//
// Errors are wrapped with ErrCommand and recorded as the client's last
// error. Nothing is retried here; retry cadence belongs to the poller.
func (c *Client) Dispatch(ctx context.Context, cmd Command, extra ...string) (*Response, error) {
	query, err := c.table.Build(cmd, extra...)
	if err != nil {
		return nil, err
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}

	resp, err := c.roundTrip(ctx, query)
	if err == nil {
		err = validateResponse(cmd, query, resp)
	}
	if err != nil {
		wrapped := fmt.Errorf("%w: %s: %w", ErrCommand, cmd, err)
		c.release(wrapped, errors.Is(err, ErrConnection))
		return nil, wrapped
	}

	c.release(nil, false)
	c.logDebug("command executed", "command", string(cmd), "status", resp.Status,
		"sensors", len(resp.Sensors))
	return resp, nil
}

// acquire waits for the gate to open and claims it. Callers poll at a
// coarse interval; the mutex around the busy flag transition guarantees
// two callers can never both observe the gate open.
func (c *Client) acquire(ctx context.Context) error {
	for {
		c.mu.Lock()
		if !c.busy && !time.Now().Before(c.cooldownUntil) {
			c.busy = true
			c.mu.Unlock()
			return nil
		}
		c.mu.Unlock()

		c.logDebug("waiting for previous command to finish")
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for command gate: %w", ErrCommand, ctx.Err())
		case <-time.After(gatePollInterval):
		}
	}
}

// release opens the gate. On success the last error is cleared; on a
// communication failure the cooldown deadline is armed so the module gets
// its recovery window.
func (c *Client) release(err error, commFailure bool) {
	c.mu.Lock()
	c.busy = false
	c.lastErr = err
	if commFailure {
		c.cooldownUntil = time.Now().Add(c.cooldown)
	}
	c.mu.Unlock()

	if commFailure {
		c.logWarn("communication failed, blocking commands for recovery window",
			"cooldown", c.cooldown.String(), "error", err)
	}
}

// roundTrip performs one framed exchange and parses the answer.
func (c *Client) roundTrip(ctx context.Context, query []string) (*Response, error) {
	payload := EncodeRequest(query)
	c.logDebug("message sent", "addr", c.opts.Addr(), "payload", string(payload))

	raw, err := c.exchanger.Exchange(ctx, c.opts.Addr(), payload)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		// An empty answer is a module fault, not a parse error.
		return nil, fmt.Errorf("%w: %s: got empty answer", ErrConnection, c.opts.Addr())
	}

	c.logDebug("result received", "result", string(raw))
	return ParseResponse(string(raw))
}

// validateResponse checks the acknowledgement shape for each command kind.
// A mismatch is a protocol-contract violation and is always surfaced,
// never silently retried.
func validateResponse(cmd Command, query []string, resp *Response) error {
	switch cmd {
	case CmdInfo:
		// Info answers with a status dump; an error status is legal here
		// and handled by the facade with a sensor-scoped get.
		if resp.Class() == StatusUnknown {
			return fmt.Errorf("%w: unknown status %q to command %s, executed query %v",
				ErrInvalidMessage, resp.Status, cmd, query)
		}
		return nil

	case CmdGet:
		// Get results are returned verbatim; the caller inspects them.
		return nil

	case CmdSet:
		subject, err := decodeSensorToken(query[len(query)-1])
		if err != nil {
			return err
		}
		if resp.Status == statusAck && len(resp.Sensors) > 0 &&
			resp.Sensors[0].ID == subject.ID &&
			resp.Sensors[0].Value == subject.Value &&
			resp.Sensors[0].Type == string(tokenTypeAck) {
			return nil
		}

	case CmdOn, CmdOff, CmdUnblock:
		subject, err := decodeSensorToken(query[len(query)-1])
		if err != nil {
			return err
		}
		if resp.Status == statusInfo && len(resp.Sensors) > 0 &&
			resp.Sensors[0].ID == subject.ID &&
			resp.Sensors[0].Value == 0 &&
			resp.Sensors[0].Type == string(tokenTypeRead) {
			return nil
		}

	default:
		return fmt.Errorf("%w: %q", ErrInvalidCommand, cmd)
	}

	return fmt.Errorf("%w: unexpected answer %+v to command %s, executed query %v",
		ErrInvalidMessage, resp, cmd, query)
}

// logDebug logs a debug message if a logger is set.
func (c *Client) logDebug(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}

// logWarn logs a warning if a logger is set.
func (c *Client) logWarn(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}
