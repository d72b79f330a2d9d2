package child

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Role identifies which workload a child runs for the supervisor.
type Role string

const (
	RoleAuxiliary Role = "auxiliary"
	RolePrimary   Role = "primary"
)

// killGrace bounds the reap wait after a SIGKILL escalation.
const killGrace = 200 * time.Millisecond

// Child is an owned handle on one launched process. The supervisor has
// exclusive lifecycle control: it creates the child, waits on Done, and must
// invoke Terminate on every exit path. A child that already exited is not an
// error to terminate again.
type Child struct {
	spec Spec
	role Role

	mu        sync.Mutex
	cmd       *exec.Cmd
	done      chan struct{} // closed by the waiter goroutine when cmd.Wait returns
	waitErr   error
	outCloser io.WriteCloser
	errCloser io.WriteCloser
}

func New(role Role, spec Spec) *Child {
	return &Child{spec: spec, role: role}
}

func (c *Child) Role() Role   { return c.role }
func (c *Child) Name() string { return c.spec.Name }

// Start launches the process in its own process group. env, when non-empty,
// replaces the inherited environment. A waiter goroutine reaps the process
// and closes Done when it exits.
func (c *Child) Start(env []string) error {
	cmd := c.spec.BuildCommand()
	if c.spec.WorkDir != "" {
		cmd.Dir = c.spec.WorkDir
	}
	if len(env) > 0 {
		cmd.Env = env
	}
	configureSysProcAttr(cmd)

	var outW, errW io.WriteCloser
	if c.spec.Log.Enabled() {
		if c.spec.Log.Dir != "" {
			_ = os.MkdirAll(c.spec.Log.Dir, 0o750)
		}
		outW, errW, _ = c.spec.Log.Writers(c.spec.Name)
	}
	if outW != nil {
		cmd.Stdout = outW
	} else {
		cmd.Stdout, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}
	if errW != nil {
		cmd.Stderr = errW
	} else {
		cmd.Stderr, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}

	if err := cmd.Start(); err != nil {
		if outW != nil {
			_ = outW.Close()
		}
		if errW != nil {
			_ = errW.Close()
		}
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.cmd = cmd
	c.done = done
	c.outCloser = outW
	c.errCloser = errW
	c.mu.Unlock()

	go func() {
		err := cmd.Wait()
		c.mu.Lock()
		c.waitErr = err
		c.mu.Unlock()
		c.closeWriters()
		close(done)
	}()
	return nil
}

var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Done returns a channel closed when the process has exited and been reaped.
// For a child that never started it is already closed.
func (c *Child) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return closedDone
	}
	return c.done
}

// PID returns the child's process id, or 0 before a successful Start.
func (c *Child) PID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil || c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// Running reports whether the process started and has not yet been reaped.
func (c *Child) Running() bool {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// ExitCode returns the process exit status after Done is closed: the child's
// own code, or 128+signal when it died on a signal. Before Start (or while
// still running) it returns -1.
func (c *Child) ExitCode() int {
	c.mu.Lock()
	cmd := c.cmd
	err := c.waitErr
	done := c.done
	c.mu.Unlock()
	if cmd == nil || done == nil {
		return -1
	}
	select {
	case <-done:
	default:
		return -1
	}
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return exitCodeFromState(ee.ProcessState)
	}
	return 1
}

// Terminate requests shutdown: SIGTERM to the process group, then SIGKILL if
// the child has not exited within wait. It is a no-op for a child that never
// started or already exited.
func (c *Child) Terminate(wait time.Duration) error {
	c.mu.Lock()
	cmd := c.cmd
	done := c.done
	c.mu.Unlock()
	if cmd == nil || cmd.Process == nil || done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	default:
	}
	pid := cmd.Process.Pid
	_ = terminateGroup(pid)
	select {
	case <-done:
		return nil
	case <-time.After(wait):
	}
	_ = killGroup(pid)
	select {
	case <-done:
	case <-time.After(killGrace):
		// best-effort; the waiter goroutine will still reap
	}
	return nil
}

func (c *Child) closeWriters() {
	c.mu.Lock()
	out, errw := c.outCloser, c.errCloser
	c.outCloser, c.errCloser = nil, nil
	c.mu.Unlock()
	if out != nil {
		_ = out.Close()
	}
	if errw != nil {
		_ = errw.Close()
	}
}
