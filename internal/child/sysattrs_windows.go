//go:build windows

package child

import "os/exec"

// configureSysProcAttr is a no-op on Windows; process-group signaling is a
// Unix concept and termination falls back to killing the direct child.
func configureSysProcAttr(cmd *exec.Cmd) {}
