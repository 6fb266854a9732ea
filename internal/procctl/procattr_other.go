//go:build !windows

package procctl

import (
	"os/exec"
	"syscall"
)

// setDetached starts the child in a new session so it outlives the agent.
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
