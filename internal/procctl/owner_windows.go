package procctl

import (
	"os/user"

	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"
)

func isOwnedByCurrentUser(p *process.Process) bool {
	owner, err := p.Username()
	if err != nil {
		log.WithError(err).WithField("pid", p.Pid).Debug("process owner lookup failed")
		return false
	}
	current, err := user.Current()
	if err != nil {
		log.WithError(err).Warn("current user lookup failed")
		return false
	}
	return owner == current.Username
}
