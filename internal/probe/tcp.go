package probe

import (
	"context"
	"net"
)

// TCPProbe reports a target reachable when a TCP connection can be
// established. The connection is closed immediately after the dial.
type TCPProbe struct{ Address string }

func (p TCPProbe) Check(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}

func (p TCPProbe) Describe() string { return "tcp:" + p.Address }
