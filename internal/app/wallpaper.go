package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/five82/daily/internal/schedule"
	"github.com/five82/daily/internal/state"
)

const minOverrideWait = time.Second

func (d *Daemon) runWallpaperLoop(ctx context.Context) {
	for {
		wait := d.step(ctx)
		if d.rt.Wait(ctx, wait) == state.WaitCancelled {
			return
		}
	}
}

// step performs one pass and returns how long to wait before the next.
func (d *Daemon) step(ctx context.Context) time.Duration {
	target, ok := d.rt.Resolve(d.now())
	if !ok {
		log.Debug("no schedule loaded yet")
		return d.cfg.Intervals.NoConfigRetry
	}
	if target.URL != d.rt.AppliedURL() {
		d.apply(ctx, target)
	}
	return d.nextWait(target)
}

func (d *Daemon) apply(ctx context.Context, target schedule.Target) {
	logger := log.WithFields(log.Fields{"url": target.URL, "temporary": target.Temporary})

	path, err := d.cache.Ensure(ctx, target.URL)
	if err != nil {
		d.metrics.DownloadFailed()
		logger.WithError(err).Warn("wallpaper download failed")
		return
	}
	if err := d.setter.Apply(path); err != nil {
		d.metrics.Apply(false)
		logger.WithError(err).Error("set wallpaper failed")
		return
	}
	if err := d.setter.Lock(); err != nil {
		logger.WithError(err).Warn("lock wallpaper failed")
	}
	d.rt.SetAppliedURL(target.URL)
	d.metrics.Apply(true)
	logger.WithField("path", path).Info("wallpaper applied")
}

// nextWait sleeps until an override expires, but never less than a second,
// and otherwise for the poll interval.
func (d *Daemon) nextWait(target schedule.Target) time.Duration {
	if target.Temporary {
		if o, ok := d.rt.Override(); ok && o.URL == target.URL {
			return max(minOverrideWait, o.Expiry.Sub(d.now()))
		}
	}
	return d.cfg.Intervals.WallpaperPoll
}
