package fourheat

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// ConnectionOptions describes how to reach a 4heat module.
//
// Host may be a hostname or a literal IPv4/IPv6 address. Resolve rewrites
// a hostname in place with its first DNS answer, so resolution happens
// once at setup rather than on every exchange.
type ConnectionOptions struct {
	Host string
	Port int

	// Legacy selects the mode 1 command table for older firmware.
	Legacy bool
}

// Resolve replaces a non-literal Host with its first resolved address.
// Literal IP addresses pass through unchanged.
func (o *ConnectionOptions) Resolve(ctx context.Context) error {
	if net.ParseIP(o.Host) != nil {
		return nil
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, o.Host)
	if err != nil {
		return fmt.Errorf("%w: resolving %q: %w", ErrConnection, o.Host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: no addresses for %q", ErrConnection, o.Host)
	}

	o.Host = addrs[0]
	return nil
}

// Addr returns the host:port dial target.
func (o ConnectionOptions) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}
