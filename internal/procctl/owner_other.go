//go:build !windows

package procctl

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"
)

func isOwnedByCurrentUser(p *process.Process) bool {
	uids, err := p.Uids()
	if err != nil {
		log.WithError(err).WithField("pid", p.Pid).Debug("process uid lookup failed")
		return false
	}
	uid := os.Getuid()
	for _, id := range uids {
		if int(id) == uid {
			return true
		}
	}
	return false
}
