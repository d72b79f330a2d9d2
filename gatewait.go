package gatewait

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/loykin/gatewait/internal/config"
	"github.com/loykin/gatewait/internal/child"
	"github.com/loykin/gatewait/internal/journal"
	"github.com/loykin/gatewait/internal/metrics"
	"github.com/loykin/gatewait/internal/probe"
	iapi "github.com/loykin/gatewait/internal/server"
	"github.com/loykin/gatewait/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Target = probe.Target

type ChildSpec = child.Spec

type Config = cfg.Config

type State = supervisor.State

type StatusSnapshot = supervisor.StatusSnapshot

type JournalSink = journal.Sink

type JournalEvent = journal.Event

const (
	StateWaiting      = supervisor.StateWaiting
	StateRunning      = supervisor.StateRunning
	StateShuttingDown = supervisor.StateShuttingDown
)

// Supervisor is a thin facade over internal/supervisor.Supervisor.
// It provides a stable public API for embedding.

type Supervisor struct{ inner *supervisor.Supervisor }

// Options configures an embedded supervisor.
type Options struct {
	PollInterval time.Duration
	ProbeTimeout time.Duration
	StopWait     time.Duration
	Dependencies []Target
	Auxiliary    *ChildSpec
	Primary      ChildSpec
	Env          []string
	Journal      JournalSink
}

func New(opts Options) *Supervisor {
	return &Supervisor{inner: supervisor.New(supervisor.Options{
		PollInterval: opts.PollInterval,
		ProbeTimeout: opts.ProbeTimeout,
		StopWait:     opts.StopWait,
		Dependencies: opts.Dependencies,
		Auxiliary:    opts.Auxiliary,
		Primary:      opts.Primary,
		Env:          opts.Env,
		Journal:      opts.Journal,
	})}
}

// Run drives the supervision lifecycle until the primary exits or ctx is
// cancelled, and returns the derived exit code.
func (s *Supervisor) Run(ctx context.Context) (int, error) { return s.inner.Run(ctx) }

func (s *Supervisor) Snapshot() StatusSnapshot { return s.inner.Snapshot() }

func (s *Supervisor) State() State { return s.inner.State() }

func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

// ParseTarget parses a compact dependency target string such as
// "tcp://db:5432", "http://cache:8080/ping" or "cmd:pg_isready -q".
func ParseTarget(s string) (Target, error) { return probe.ParseTarget(s) }

// NewJournalSink opens a journal sink from a DSN (sqlite, postgres or
// clickhouse).
func NewJournalSink(dsn string) (JournalSink, error) { return journal.NewSinkFromDSN(dsn) }

// NewHTTPServer starts the status HTTP server for a supervisor.
func NewHTTPServer(addr, basePath string, s *Supervisor) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, s.inner)
}

// NewHTTPHandler returns the status endpoints as an http.Handler for mounting
// in an existing server or framework.
func NewHTTPHandler(basePath string, s *Supervisor) http.Handler {
	return iapi.NewRouter(s.inner, basePath).Handler()
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the
// default registry. It returns any immediate listen error; otherwise it runs
// the server in the caller goroutine.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
