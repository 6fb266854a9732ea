package app

import (
	"context"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/five82/daily/internal/schedule"
)

const maxScheduleSize = 4 << 20

// refreshSchedule pulls the remote document. On failure a loaded schedule is
// kept; without one the persisted copy is loaded instead.
func (d *Daemon) refreshSchedule(ctx context.Context) error {
	err := d.pullSchedule(ctx)
	d.metrics.Refresh(err == nil)
	if err == nil {
		return nil
	}

	log.WithError(err).WithField("url", d.cfg.ScheduleURL).Warn("schedule refresh failed")
	if !d.rt.HasConfig() {
		if lerr := d.loadPersisted(); lerr != nil {
			log.WithError(lerr).Warn("no usable local schedule")
		}
	}
	return err
}

func (d *Daemon) pullSchedule(ctx context.Context) error {
	data, err := d.fetcher.Bytes(ctx, d.cfg.ScheduleURL, maxScheduleSize)
	if err != nil {
		return err
	}
	doc, err := schedule.Parse(data)
	if err != nil {
		return err
	}

	d.rt.ReplaceConfig(doc)
	if err := d.persistSchedule(data); err != nil {
		log.WithError(err).Warn("persist schedule failed")
	}
	d.rt.Wake()
	log.WithFields(log.Fields{
		"dates":   len(doc.Wallpapers.Dates),
		"periods": len(doc.Wallpapers.Periods),
	}).Info("schedule refreshed")
	return nil
}

// loadPersisted swaps in the document stored in config.json.
func (d *Daemon) loadPersisted() error {
	path := d.cfg.SchedulePath()
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := schedule.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	d.rt.ReplaceConfig(doc)
	d.rt.Wake()
	log.WithField("path", path).Info("schedule loaded from disk")
	return nil
}

func (d *Daemon) persistSchedule(data []byte) error {
	path := d.cfg.SchedulePath()
	if err := d.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(d.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := d.fs.Rename(tmp, path); err != nil {
		_ = d.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
