package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/five82/daily/internal/autostart"
	"github.com/five82/daily/internal/config"
	"github.com/five82/daily/internal/fetch"
	"github.com/five82/daily/internal/logging"
	"github.com/five82/daily/internal/updater"
)

var version = "dev"

const settleDelay = 2 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "settings file (default <data dir>/settings.toml)")
	debug := flag.Bool("debug", false, "log at debug level and mirror the log to stderr")
	once := flag.Bool("once", false, "check once, install if needed, and exit")
	flag.Parse()

	cfg, loadErr := loadConfig(*configPath)
	if cfg.DataDir == "" {
		fmt.Fprintf(os.Stderr, "daily-update: %v\n", loadErr)
		return 1
	}
	if err := config.EnsureLayout(cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "daily-update: %v\n", err)
		return 1
	}

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	closer, err := logging.Init(logging.Options{
		Level:      level,
		Path:       filepath.Join(cfg.LogDir(), "update.log"),
		MaxSizeMB:  5,
		MaxBackups: 1,
		Stderr:     *debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "daily-update: %v\n", err)
		return 1
	}
	defer closer.Close()
	if loadErr != nil {
		log.WithError(loadErr).Warn("settings unreadable, using defaults")
	}

	if exe, err := os.Executable(); err != nil {
		log.WithError(err).Warn("resolve executable path, autostart disabled")
	} else if err := autostart.Ensure(autostart.New(), autostart.UpdaterName, exe); err != nil {
		log.WithError(err).Warn("autostart registration failed")
	}

	agent := updater.New(updater.Options{
		Target:                cfg.TargetPath(),
		HashURL:               cfg.Update.HashURL,
		BinaryURL:             cfg.Update.BinaryURL,
		Interval:              cfg.Update.Interval,
		AbortOnTerminateError: cfg.Update.AbortOnTerminateError,
		Settle:                settleDelay,
		Fetcher:               fetch.New("daily-update/" + version),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.WithField("version", version).Info("starting update agent")
	if *once {
		if err := agent.RunOnce(ctx); err != nil {
			log.WithError(err).Error("update attempt failed")
			return 1
		}
		return 0
	}
	if err := agent.Run(ctx); err != nil {
		log.WithError(err).Error("update agent stopped")
		return 1
	}
	return 0
}

// loadConfig falls back to the defaults when settings.toml is unreadable. The
// returned DataDir is empty only when no data directory can be resolved.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	dataDir, dirErr := config.DataDir()
	if dirErr != nil {
		return config.Config{}, dirErr
	}
	return config.Default(dataDir), err
}
