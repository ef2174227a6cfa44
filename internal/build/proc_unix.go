//go:build unix

package build

import (
	"os/exec"
	"syscall"
)

// configureProcess starts the tool in its own process group so that
// cancellation also reaches the npm and cargo processes it spawns.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
