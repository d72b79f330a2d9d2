package gatewait

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"
)

func TestEmbeddedSupervisorRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	s := New(Options{
		PollInterval: 20 * time.Millisecond,
		ProbeTimeout: 200 * time.Millisecond,
		StopWait:     time.Second,
		Primary:      ChildSpec{Name: "app", Command: "sh -c 'exit 5'"},
	})
	code, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 5 {
		t.Fatalf("code = %d, want 5", code)
	}
	if s.State() != StateShuttingDown {
		t.Fatalf("state = %q", s.State())
	}
}

func TestParseTargetFacade(t *testing.T) {
	tgt, err := ParseTarget("tcp://db:5432")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tgt.Address != "db:5432" {
		t.Fatalf("address = %q", tgt.Address)
	}
	if _, err := ParseTarget(""); err == nil {
		t.Fatalf("expected error for empty target")
	}
}

func TestNewHTTPHandlerServesStatus(t *testing.T) {
	s := New(Options{})
	ts := httptest.NewServer(NewHTTPHandler("", s))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("get readyz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz before run = %d, want 503", resp.StatusCode)
	}
}
