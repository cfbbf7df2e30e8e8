//go:build windows

package transport

import "os/exec"

// setProcessGroup is a no-op on Windows: there is no POSIX process group to
// join, and the child is not placed in a new process group or job object
// either. Signal therefore kills the direct child only.
func setProcessGroup(cmd *exec.Cmd) {}

// signalGroup on Windows can only terminate the direct child process; it
// does not reach a remote agent tree the way POSIX group-kill does.
func signalGroup(cmd *exec.Cmd, sig SignalKind) error {
	return cmd.Process.Kill()
}
