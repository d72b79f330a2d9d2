package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPProbe reports a target reachable when a GET request completes.
// Any response status counts as reachable unless Require2xx is set; the
// round trip itself is the signal, not the status code.
type HTTPProbe struct {
	URL        string
	Require2xx bool
	Client     *http.Client // optional; http.DefaultClient when nil
}

func (p HTTPProbe) Check(ctx context.Context) error {
	c := p.Client
	if c == nil {
		c = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return err
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if p.Require2xx && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return fmt.Errorf("http probe %s: status %d", p.URL, resp.StatusCode)
	}
	return nil
}

func (p HTTPProbe) Describe() string { return "http:" + p.URL }
