//go:build !windows

package child

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr places the child in a new process group so that a
// termination request reaches the whole tree, not only the direct child.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
