package hardware

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TCPProbe implements acquire.Netlink by dialing a TCP endpoint until it
// answers or the context expires. Probing the broker's own address means
// "online" implies the broker host is reachable, which is the only
// connectivity this device cares about.
type TCPProbe struct {
	addr     string
	interval time.Duration
}

// NewTCPProbe accepts either host:port or a scheme-prefixed broker address
// like tcp://host:1883.
func NewTCPProbe(addr string) *TCPProbe {
	if i := strings.Index(addr, "://"); i >= 0 {
		addr = addr[i+3:]
	}
	return &TCPProbe{addr: addr, interval: 500 * time.Millisecond}
}

// Online blocks until one dial succeeds. The last dial error is wrapped
// into the timeout result so logs show why the network was down.
func (p *TCPProbe) Online(ctx context.Context) error {
	var lastErr error
	dialer := &net.Dialer{}

	for {
		conn, err := dialer.DialContext(ctx, "tcp", p.addr)
		if err == nil {
			conn.Close()
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return errors.Wrap(lastErr, "connectivity probe")
			}
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
