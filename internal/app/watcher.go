package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const defaultWatchDebounce = time.Second

// scheduleWatcher reloads config.json after it has been written and left
// alone for the debounce period.
type scheduleWatcher struct {
	w        *fsnotify.Watcher
	name     string
	debounce time.Duration
	reload   func() error
}

// newScheduleWatcher watches the directory holding config.json; editors and
// the refresh job replace the file rather than write it in place.
func (d *Daemon) newScheduleWatcher() (*scheduleWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	path := d.cfg.SchedulePath()
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &scheduleWatcher{
		w:        w,
		name:     filepath.Base(path),
		debounce: d.debounce,
		reload:   d.loadPersisted,
	}, nil
}

func (sw *scheduleWatcher) run(ctx context.Context) {
	defer sw.w.Close()

	timer := time.NewTimer(sw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != sw.name || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.WithField("op", ev.Op.String()).Debug("schedule file changed")
			timer.Reset(sw.debounce)
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("schedule watcher error")
		case <-timer.C:
			if err := sw.reload(); err != nil {
				log.WithError(err).Warn("schedule reload failed, keeping current schedule")
			}
		}
	}
}
