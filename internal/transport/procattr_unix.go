//go:build !windows

package transport

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup places cmd in its own process group (setpgid; no new
// session is created) so a single signal can later reach both the ssh/scp client and, for ssh
// sessions, the remote agent process tree (spec §9, process-group
// signaling). SysProcAttr's type is fixed by os/exec to stdlib syscall, but
// the actual signal delivery below goes through golang.org/x/sys/unix for
// the same reason the broader ecosystem prefers it over stdlib syscall on
// unix: stable behavior across the BSDs, not just Linux.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to cmd's entire process group by signaling the
// negative pid, the POSIX convention for group-wide delivery.
func signalGroup(cmd *exec.Cmd, sig SignalKind) error {
	pgid := cmd.Process.Pid
	return unix.Kill(-pgid, toUnixSignal(sig))
}

func toUnixSignal(sig SignalKind) unix.Signal {
	switch sig {
	case SignalInterrupt:
		return unix.SIGINT
	default:
		return unix.SIGINT
	}
}
