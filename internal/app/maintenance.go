package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"

	"github.com/five82/daily/internal/autostart"
)

type maintenanceJob struct {
	name      string
	every     time.Duration
	immediate bool
	run       func()
}

func (d *Daemon) maintenanceJobs(ctx context.Context) []maintenanceJob {
	return []maintenanceJob{
		{
			name:      "schedule-refresh",
			every:     d.cfg.Intervals.Refresh,
			immediate: true,
			run:       func() { _ = d.refreshSchedule(ctx) },
		},
		{
			name:  "cache-cleanup",
			every: d.cfg.Intervals.Cleanup,
			run:   d.cleanupCache,
		},
		{
			name:  "autostart",
			every: d.cfg.Intervals.Autostart,
			run:   d.enforceAutostart,
		},
	}
}

// newScheduler registers the maintenance jobs on a stopped gocron scheduler.
// Jobs run in singleton mode so a slow refresh never overlaps itself.
func (d *Daemon) newScheduler(ctx context.Context) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create maintenance scheduler: %w", err)
	}
	for _, job := range d.maintenanceJobs(ctx) {
		opts := []gocron.JobOption{
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}
		if job.immediate {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}
		if _, err := s.NewJob(gocron.DurationJob(job.every), gocron.NewTask(job.run), opts...); err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}
	return s, nil
}

func (d *Daemon) cleanupCache() {
	res, err := d.cache.Cleanup(d.now(), d.cfg.Intervals.Retention, d.rt.AppliedURL())
	d.metrics.CleanupDeleted(len(res.Deleted))
	if err != nil {
		log.WithError(err).Warn("cache cleanup incomplete")
	}
	log.WithFields(log.Fields{"deleted": len(res.Deleted), "kept": res.Kept}).Info("cache cleanup finished")
}

func (d *Daemon) enforceAutostart() {
	if d.exe == "" {
		log.Debug("executable path unknown, skipping autostart")
		return
	}
	if err := autostart.Ensure(d.autostart, autostart.DaemonName, d.exe); err != nil {
		log.WithError(err).Warn("autostart registration failed")
	}
}
