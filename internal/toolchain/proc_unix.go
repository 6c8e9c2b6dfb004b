//go:build unix

package toolchain

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the compiler in its own group so that helpers it
// spawns (cc1, as, ld) are killed with it
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
