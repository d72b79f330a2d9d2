package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/loykin/gatewait/internal/config"
	"github.com/loykin/gatewait/internal/journal"
	"github.com/loykin/gatewait/internal/logger"
	"github.com/loykin/gatewait/internal/metrics"
	"github.com/loykin/gatewait/internal/probe"
	"github.com/loykin/gatewait/internal/server"
	"github.com/loykin/gatewait/internal/supervisor"
)

// runSupervise drives the full lifecycle and returns the process exit code:
// the primary's own code, 128+signal when interrupted, or 1 on setup errors.
func runSupervise(configPath string, flags RunFlags) (int, error) {
	if configPath == "" {
		return 1, fmt.Errorf("config file required: use --config=gatewait.toml or provide as argument")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return 1, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnvOverrides(os.LookupEnv); err != nil {
		return 1, err
	}
	applyFlagOverrides(cfg, flags)

	lg := logger.New(cfg.LogLevel)

	var sink journal.Sink
	if cfg.Journal != nil && cfg.Journal.DSN != "" {
		s, err := journal.NewSinkFromDSN(cfg.Journal.DSN)
		if err != nil {
			return 1, fmt.Errorf("open journal sink: %w", err)
		}
		sink = s
		if c, ok := s.(interface{ Close() error }); ok {
			defer func() { _ = c.Close() }()
		}
	}

	metricsEnabled := cfg.Metrics != nil && cfg.Metrics.Enabled
	if metricsEnabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			lg.Warn("failed to register metrics", "error", err)
			metricsEnabled = false
		}
	}

	sup := supervisor.New(supervisor.Options{
		PollInterval: cfg.PollInterval,
		ProbeTimeout: cfg.ProbeTimeout,
		StopWait:     cfg.StopWait,
		Dependencies: cfg.Dependencies,
		Auxiliary:    cfg.Auxiliary,
		Primary:      cfg.Primary,
		Env:          cfg.ChildEnv(),
		Logger:       lg,
		Journal:      sink,
	})

	if cfg.Server != nil && cfg.Server.Listen != "" {
		r := server.NewRouter(sup, cfg.Server.BasePath)
		if metricsEnabled && (cfg.Metrics.Listen == "" || cfg.Metrics.Listen == cfg.Server.Listen) {
			r.WithMetrics(metrics.Handler())
		}
		srv := &http.Server{
			Addr:              cfg.Server.Listen,
			Handler:           r.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() { _ = srv.ListenAndServe() }()
		defer func() { _ = srv.Close() }()
		lg.Info("status server listening", "addr", cfg.Server.Listen, "base", cfg.Server.BasePath)
	}
	if metricsEnabled && cfg.Metrics.Listen != "" && (cfg.Server == nil || cfg.Metrics.Listen != cfg.Server.Listen) {
		msrv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() { _ = msrv.ListenAndServe() }()
		defer func() { _ = msrv.Close() }()
		lg.Info("metrics server listening", "addr", cfg.Metrics.Listen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lastSignal atomic.Int32
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for sig := range sigCh {
			s, ok := sig.(syscall.Signal)
			if !ok {
				s = syscall.SIGTERM
			}
			lastSignal.Store(int32(s))
			lg.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		}
	}()

	code, err := sup.Run(ctx)
	if errors.Is(err, context.Canceled) {
		// Shell convention for signal-caused exits.
		if s := lastSignal.Load(); s != 0 {
			return 128 + int(s), nil
		}
		return code, nil
	}
	if err != nil {
		if code == 0 {
			code = 1
		}
		return code, err
	}
	return code, nil
}

func applyFlagOverrides(cfg *config.Config, flags RunFlags) {
	if flags.PollInterval > 0 {
		cfg.PollInterval = flags.PollInterval
	}
	if flags.ProbeTimeout > 0 {
		cfg.ProbeTimeout = flags.ProbeTimeout
	}
	if flags.StopWait > 0 {
		cfg.StopWait = flags.StopWait
	}
	if flags.Listen != "" {
		if cfg.Server == nil {
			cfg.Server = &config.ServerConfig{}
		}
		cfg.Server.Listen = flags.Listen
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.JournalDSN != "" {
		cfg.Journal = &config.JournalConfig{DSN: flags.JournalDSN}
	}
}

// runCheck probes each target exactly once and prints a per-target verdict.
func runCheck(cmd *cobra.Command, args []string, flags CheckFlags) error {
	w := probe.Waiter{Timeout: flags.Timeout}
	var failed int
	for _, arg := range args {
		t, err := probe.ParseTarget(arg)
		if err != nil {
			return err
		}
		if err := w.CheckOnce(cmd.Context(), t); err != nil {
			cmd.Printf("FAIL %s: %v\n", t.Describe(), err)
			failed++
			continue
		}
		cmd.Printf("OK   %s\n", t.Describe())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets unreachable", failed, len(args))
	}
	return nil
}
