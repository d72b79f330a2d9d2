//go:build windows

package child

import "os"

// terminateGroup terminates the direct child; Windows has no process-group
// signal delivery.
func terminateGroup(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// killGroup is the same as terminateGroup on Windows.
func killGroup(pid int) error {
	return terminateGroup(pid)
}

// exitCodeFromState decodes a non-zero wait status.
func exitCodeFromState(st *os.ProcessState) int {
	if st == nil {
		return 1
	}
	if code := st.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
