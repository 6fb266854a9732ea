package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/five82/daily/internal/app"
	"github.com/five82/daily/internal/config"
	"github.com/five82/daily/internal/logging"
	"github.com/five82/daily/internal/metrics"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "settings file (default <data dir>/settings.toml)")
	debug := flag.Bool("debug", false, "log at debug level and mirror the log to stderr")
	flag.Parse()

	cfg, loadErr := loadConfig(*configPath)
	if cfg.DataDir == "" {
		fmt.Fprintf(os.Stderr, "daily: %v\n", loadErr)
		return 1
	}
	if err := config.EnsureLayout(cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "daily: %v\n", err)
		return 1
	}

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	logPath := filepath.Join(cfg.LogDir(), "daily.log")
	closer, err := logging.Init(logging.Options{
		Level:      level,
		Path:       logPath,
		MaxSizeMB:  10,
		MaxBackups: 1,
		Stderr:     *debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "daily: %v\n", err)
		return 1
	}
	defer closer.Close()
	if loadErr != nil {
		log.WithError(loadErr).Warn("settings unreadable, using defaults")
	}

	exe, err := os.Executable()
	if err != nil {
		log.WithError(err).Warn("resolve executable path, autostart disabled")
		exe = ""
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.WithField("version", version).Info("starting daily")
	err = app.Run(ctx, app.Options{
		Config:     cfg,
		Version:    version,
		Executable: exe,
		LogPath:    logPath,
		Metrics:    metrics.New(reg),
	})
	if err != nil {
		log.WithError(err).Error("daily stopped")
		fmt.Fprintf(os.Stderr, "daily: %v\n", err)
		return 1
	}
	log.Info("daily stopped")
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
