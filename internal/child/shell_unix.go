//go:build !windows

package child

import "os/exec"

// shellCommand runs a script through the absolute shell path to avoid PATH
// dependency when Env is overridden.
func shellCommand(script string) *exec.Cmd {
	// #nosec G204
	return exec.Command("/bin/sh", "-c", script)
}

// trueCommand returns a command that always succeeds on Unix systems
func trueCommand() *exec.Cmd {
	// #nosec G204
	return exec.Command("/bin/true")
}
