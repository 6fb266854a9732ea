// Package procctl finds, stops and starts processes on behalf of the update
// agent. Only processes owned by the current user are ever terminated.
package procctl

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"
)

// TerminateByName kills every process of the current user whose image name
// matches name, ignoring case. It returns how many were killed; finding none
// is not an error.
func TerminateByName(name string) (int, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	self := int32(os.Getpid())
	killed := 0
	var result *multierror.Error
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		pname, err := p.Name()
		if err != nil || !strings.EqualFold(pname, name) {
			continue
		}
		if !isOwnedByCurrentUser(p) {
			log.WithField("pid", p.Pid).Debug("skipping process of another user")
			continue
		}
		if err := p.Kill(); err != nil {
			result = multierror.Append(result, fmt.Errorf("kill %s (pid %d): %w", pname, p.Pid, err))
			continue
		}
		killed++
		log.WithFields(log.Fields{"name": pname, "pid": p.Pid}).Info("terminated process")
	}
	return killed, result.ErrorOrNil()
}

// LaunchDetached starts path in its own process group and does not wait for
// it.
func LaunchDetached(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	setDetached(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		log.WithError(err).WithField("pid", pid).Warn("release launched process")
	}
	log.WithFields(log.Fields{"path": path, "pid": pid}).Info("launched process")
	return nil
}
