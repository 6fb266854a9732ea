package app

import (
	"context"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/five82/daily/internal/api"
	"github.com/five82/daily/internal/autostart"
	"github.com/five82/daily/internal/cache"
	"github.com/five82/daily/internal/config"
	"github.com/five82/daily/internal/desktop"
	"github.com/five82/daily/internal/fetch"
	"github.com/five82/daily/internal/metrics"
	"github.com/five82/daily/internal/state"
)

// Fetcher retrieves remote documents and images.
type Fetcher interface {
	Bytes(ctx context.Context, url string, limit int64) ([]byte, error)
	cache.Downloader
}

// Options configure the daemon. Nil capabilities fall back to the platform
// implementations.
type Options struct {
	Config     config.Config
	Version    string
	Executable string
	LogPath    string

	Fs        afero.Fs
	Fetcher   Fetcher
	Setter    desktop.Setter
	Autostart autostart.Registrar
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Daemon owns the runtime state and the capabilities the loops act through.
type Daemon struct {
	cfg       config.Config
	exe       string
	logPath   string
	fs        afero.Fs
	fetcher   Fetcher
	setter    desktop.Setter
	autostart autostart.Registrar
	metrics   *metrics.Metrics
	now       func() time.Time

	rt       *state.Runtime
	cache    *cache.Store
	debounce time.Duration
}

// New builds a daemon without starting anything.
func New(opts Options) *Daemon {
	d := &Daemon{
		cfg:       opts.Config,
		exe:       opts.Executable,
		logPath:   opts.LogPath,
		fs:        opts.Fs,
		fetcher:   opts.Fetcher,
		setter:    opts.Setter,
		autostart: opts.Autostart,
		metrics:   opts.Metrics,
		now:       opts.Now,
		rt:        state.New(),
		debounce:  defaultWatchDebounce,
	}
	if d.fs == nil {
		d.fs = afero.NewOsFs()
	}
	if d.fetcher == nil {
		d.fetcher = fetch.New("daily/" + opts.Version)
	}
	if d.setter == nil {
		d.setter = desktop.New()
	}
	if d.autostart == nil {
		d.autostart = autostart.New()
	}
	if d.now == nil {
		d.now = time.Now
	}
	d.cache = cache.New(d.fs, d.cfg.CacheDir(), d.fetcher)
	return d
}

// Runtime exposes the shared state.
func (d *Daemon) Runtime() *state.Runtime {
	return d.rt
}

// Run binds the control API and runs every loop until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	d := New(opts)

	ln, err := net.Listen("tcp", d.cfg.APIBind)
	if err != nil {
		return fmt.Errorf("bind control api %s: %w", d.cfg.APIBind, err)
	}
	return d.Serve(ctx, ln)
}

// Serve runs the daemon with an already bound listener.
func (d *Daemon) Serve(ctx context.Context, ln net.Listener) error {
	d.enforceAutostart()

	sched, err := d.newScheduler(ctx)
	if err != nil {
		ln.Close()
		return err
	}

	server := api.New(api.Options{
		Runtime: d.rt,
		Fs:      d.fs,
		LogPath: d.logPath,
		Metrics: d.metrics,
		Now:     d.now,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(ctx, ln)
	})
	g.Go(func() error {
		d.runWallpaperLoop(ctx)
		return nil
	})
	g.Go(func() error {
		sched.Start()
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.WithError(err).Warn("maintenance scheduler shutdown")
		}
		return nil
	})
	g.Go(func() error {
		w, err := d.newScheduleWatcher()
		if err != nil {
			log.WithError(err).Warn("schedule watcher disabled")
			return nil
		}
		w.run(ctx)
		return nil
	})

	log.WithFields(log.Fields{
		"data_dir":     d.cfg.DataDir,
		"schedule_url": d.cfg.ScheduleURL,
	}).Info("daily started")

	return g.Wait()
}
