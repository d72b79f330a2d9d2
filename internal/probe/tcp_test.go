package probe

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTCPProbeReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()

	p := TCPProbe{Address: ln.Addr().String()}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Check(ctx); err != nil {
		t.Fatalf("expected reachable, got %v", err)
	}
}

func TestTCPProbeUnreachable(t *testing.T) {
	// Grab a free port and close the listener so nothing accepts on it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	p := TCPProbe{Address: addr}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := p.Check(ctx); err == nil {
		t.Fatalf("expected error for closed port")
	}
}
