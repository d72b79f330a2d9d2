package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loykin/gatewait/internal/child"
	"github.com/loykin/gatewait/internal/env"
	"github.com/loykin/gatewait/internal/journal"
	"github.com/loykin/gatewait/internal/metrics"
	"github.com/loykin/gatewait/internal/probe"
)

// State is the supervisor lifecycle phase. Transitions are one-directional:
// waiting-for-dependencies -> running -> shutting-down.
type State string

const (
	StateWaiting      State = "waiting-for-dependencies"
	StateRunning      State = "running"
	StateShuttingDown State = "shutting-down"
)

// journalTimeout bounds each best-effort journal write so a slow sink cannot
// stall supervision.
const journalTimeout = 2 * time.Second

// Options configures a Supervisor. Primary is required; everything else is
// optional.
type Options struct {
	PollInterval time.Duration
	ProbeTimeout time.Duration
	StopWait     time.Duration
	Dependencies []probe.Target
	Auxiliary    *child.Spec
	Primary      child.Spec
	Env          []string // global K=V entries applied to every child
	Logger       *slog.Logger
	Journal      journal.Sink
}

// Supervisor gates a primary workload on upstream dependency readiness. Run
// drives the full lifecycle; Snapshot exposes state for the status server.
type Supervisor struct {
	opts   Options
	logger *slog.Logger
	env    *env.Env

	mu      sync.Mutex
	state   State
	deps    []DependencyStatus
	aux     *child.Child
	primary *child.Child
}

func New(opts Options) *Supervisor {
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}
	e := env.New()
	e.SetAll(opts.Env)

	deps := make([]DependencyStatus, len(opts.Dependencies))
	for i, t := range opts.Dependencies {
		deps[i] = DependencyStatus{Name: t.Name, Kind: string(t.Kind), Soft: t.Soft}
	}
	return &Supervisor{opts: opts, logger: lg, env: e, deps: deps}
}

// Run executes the supervision lifecycle: launch the auxiliary process, wait
// for every hard dependency, launch the primary, then block until either the
// primary exits or ctx is cancelled. On every exit path both children are
// terminated. The int is the process exit code derived from the primary
// (0 when Run ends due to ctx cancellation; the caller maps the cancellation
// cause to a signal exit code).
func (s *Supervisor) Run(ctx context.Context) (int, error) {
	s.transition(StateWaiting)

	if s.opts.Auxiliary != nil {
		aux := child.New(child.RoleAuxiliary, *s.opts.Auxiliary)
		if err := aux.Start(s.childEnv(s.opts.Auxiliary.Env)); err != nil {
			// The auxiliary responder is advisory; its absence must not block
			// the primary workload.
			s.logger.Warn("auxiliary process failed to start",
				"name", s.opts.Auxiliary.Name, "error", err)
		} else {
			s.mu.Lock()
			s.aux = aux
			s.mu.Unlock()
			metrics.IncProcessStart(string(child.RoleAuxiliary))
			s.record(journal.ProcessEvent(journal.EventProcStart, string(child.RoleAuxiliary), aux.PID(), 0, ""))
			s.logger.Info("auxiliary process started", "name", aux.Name(), "pid", aux.PID())
		}
	}

	if err := s.awaitDependencies(ctx); err != nil {
		s.shutdown()
		return 0, err
	}
	s.checkSoft(ctx)

	// A signal that arrived between the last probe and here must still win;
	// never launch the primary on a cancelled context.
	if err := ctx.Err(); err != nil {
		s.shutdown()
		return 0, err
	}

	primary := child.New(child.RolePrimary, s.opts.Primary)
	if err := primary.Start(s.childEnv(s.opts.Primary.Env)); err != nil {
		s.logger.Error("primary process failed to start",
			"name", s.opts.Primary.Name, "error", err)
		s.shutdown()
		return 1, fmt.Errorf("start primary %s: %w", s.opts.Primary.Name, err)
	}
	s.mu.Lock()
	s.primary = primary
	s.mu.Unlock()
	metrics.IncProcessStart(string(child.RolePrimary))
	s.record(journal.ProcessEvent(journal.EventProcStart, string(child.RolePrimary), primary.PID(), 0, ""))
	s.logger.Info("primary process started", "name", primary.Name(), "pid", primary.PID())

	s.transition(StateRunning)

	select {
	case <-ctx.Done():
		s.shutdown()
		return 0, ctx.Err()
	case <-primary.Done():
		code := primary.ExitCode()
		metrics.IncProcessStop(string(child.RolePrimary))
		s.record(journal.ProcessEvent(journal.EventProcStop, string(child.RolePrimary), primary.PID(), code, ""))
		s.logger.Info("primary process exited", "name", primary.Name(), "code", code)
		s.shutdown()
		return code, nil
	}
}

// awaitDependencies blocks until every hard dependency is reachable, in
// declaration order. Probe failures are retried at a constant interval; only
// ctx cancellation (or a malformed target) ends the wait early.
func (s *Supervisor) awaitDependencies(ctx context.Context) error {
	w := probe.Waiter{
		Interval: s.opts.PollInterval,
		Timeout:  s.opts.ProbeTimeout,
		Observer: s.observeProbe,
	}
	for _, t := range s.opts.Dependencies {
		if t.Soft {
			continue
		}
		start := time.Now()
		if _, err := w.WaitReachable(ctx, t); err != nil {
			return err
		}
		metrics.ObserveDependencyWait(t.Name, time.Since(start).Seconds())
	}
	return nil
}

// checkSoft probes each soft dependency exactly once. Failures are logged and
// reflected in the status snapshot but never block startup.
func (s *Supervisor) checkSoft(ctx context.Context) {
	w := probe.Waiter{
		Interval: s.opts.PollInterval,
		Timeout:  s.opts.ProbeTimeout,
		Observer: s.observeProbe,
	}
	for _, t := range s.opts.Dependencies {
		if !t.Soft {
			continue
		}
		if err := w.CheckOnce(ctx, t); err != nil {
			s.logger.Warn("soft dependency unreachable, continuing",
				"target", t.Name, "error", err)
		}
	}
}

func (s *Supervisor) observeProbe(t probe.Target, attempt int, err error) {
	metrics.IncProbeAttempt(t.Name)
	if err != nil {
		metrics.IncProbeFailure(t.Name)
		s.logger.Info("dependency not ready",
			"target", t.Name, "probe", t.Describe(), "attempt", attempt, "error", err)
	} else {
		s.logger.Info("dependency reachable", "target", t.Name, "attempt", attempt)
	}
	s.record(journal.ProbeEvent(t.Name, attempt, err))

	s.mu.Lock()
	for i := range s.deps {
		if s.deps[i].Name != t.Name {
			continue
		}
		s.deps[i].Attempts = attempt
		s.deps[i].Reachable = err == nil
		if err != nil {
			s.deps[i].LastError = err.Error()
		} else {
			s.deps[i].LastError = ""
		}
		break
	}
	s.mu.Unlock()
}

// shutdown terminates both children, primary first so the auxiliary responder
// stays up while the workload drains. It is idempotent.
func (s *Supervisor) shutdown() {
	s.transition(StateShuttingDown)
	s.mu.Lock()
	children := []*child.Child{s.primary, s.aux}
	s.mu.Unlock()

	wait := s.opts.StopWait
	if wait <= 0 {
		wait = 3 * time.Second
	}
	for _, c := range children {
		if c == nil || !c.Running() {
			continue
		}
		s.logger.Info("terminating child", "name", c.Name(), "role", c.Role(), "pid", c.PID())
		_ = c.Terminate(wait)
		metrics.IncProcessStop(string(c.Role()))
		s.record(journal.ProcessEvent(journal.EventProcStop, string(c.Role()), c.PID(), c.ExitCode(), "terminated"))
	}
}

// transition moves to the given state. Shutting-down is terminal and repeat
// transitions are no-ops.
func (s *Supervisor) transition(to State) {
	s.mu.Lock()
	from := s.state
	if from == to || from == StateShuttingDown {
		s.mu.Unlock()
		return
	}
	s.state = to
	s.mu.Unlock()

	metrics.SetState(string(from), false)
	metrics.SetState(string(to), true)
	metrics.RecordStateTransition(string(from), string(to))
	s.record(journal.StateEvent(string(from), string(to)))
	s.logger.Info("state changed", "from", string(from), "to", string(to))
}

// record delivers a journal event best-effort; sink failures are logged at
// debug and otherwise ignored.
func (s *Supervisor) record(e journal.Event) {
	if s.opts.Journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := s.opts.Journal.Send(ctx, e); err != nil {
		s.logger.Debug("journal write failed", "type", string(e.Type), "error", err)
	}
}

func (s *Supervisor) childEnv(perChild []string) []string {
	return s.env.Merge(perChild)
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
