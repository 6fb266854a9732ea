package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the daemon and update agent settings.
type Config struct {
	DataDir     string
	APIBind     string
	ScheduleURL string
	LogLevel    string
	Intervals   Intervals
	Update      Update
}

// Intervals are the loop cadences and the cache retention window.
type Intervals struct {
	WallpaperPoll time.Duration
	NoConfigRetry time.Duration
	Refresh       time.Duration
	Cleanup       time.Duration
	Retention     time.Duration
	Autostart     time.Duration
}

// Update configures the update agent.
type Update struct {
	Interval              time.Duration
	HashURL               string
	BinaryURL             string
	Target                string
	AbortOnTerminateError bool
}

const (
	appDirName         = "DailyWallpaper"
	settingsFileName   = "settings.toml"
	scheduleFileName   = "config.json"
	cacheDirName       = "wallpapers"
	logDirName         = "logs"
	defaultAPIBind     = "0.0.0.0:11452"
	defaultLogLevel    = "info"
	defaultScheduleURL = "https://gh-proxy.com/https://github.com/zxymiku/wallpaper/releases/download/config/config.json"
	defaultHashURL     = "https://gh-proxy.com/https://github.com/zxymiku/wallpaper/releases/download/config/daily.sha256"
	defaultBinaryURL   = "https://gh-proxy.com/https://github.com/zxymiku/wallpaper/releases/download/config/daily.exe"
)

var defaultIntervals = Intervals{
	WallpaperPoll: 60 * time.Second,
	NoConfigRetry: 5 * time.Minute,
	Refresh:       24 * time.Hour,
	Cleanup:       24 * time.Hour,
	Retention:     48 * time.Hour,
	Autostart:     time.Hour,
}

const defaultUpdateInterval = 4 * time.Hour

// Default returns the built-in settings rooted at dataDir.
func Default(dataDir string) Config {
	return Config{
		DataDir:     dataDir,
		APIBind:     defaultAPIBind,
		ScheduleURL: defaultScheduleURL,
		LogLevel:    defaultLogLevel,
		Intervals:   defaultIntervals,
		Update: Update{
			Interval:  defaultUpdateInterval,
			HashURL:   defaultHashURL,
			BinaryURL: defaultBinaryURL,
			Target:    defaultTarget(),
		},
	}
}

// Load resolves the data directory and reads settings from path, or from
// <data dir>/settings.toml when path is empty. A missing file yields defaults.
func Load(path string) (Config, error) {
	dataDir, err := DataDir()
	if err != nil {
		return Config{}, err
	}
	cfg := Default(dataDir)

	resolved := filepath.Join(dataDir, settingsFileName)
	if strings.TrimSpace(path) != "" {
		resolved, err = expandPath(path)
		if err != nil {
			return Config{}, err
		}
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open settings: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read settings: %w", err)
	}

	var raw struct {
		APIBind     string `toml:"api_bind"`
		ScheduleURL string `toml:"schedule_url"`
		LogLevel    string `toml:"log_level"`
		Intervals   struct {
			WallpaperPoll string `toml:"wallpaper_poll"`
			NoConfigRetry string `toml:"no_config_retry"`
			Refresh       string `toml:"refresh"`
			Cleanup       string `toml:"cleanup"`
			Retention     string `toml:"retention"`
			Autostart     string `toml:"autostart"`
		} `toml:"intervals"`
		Update struct {
			Interval              string `toml:"interval"`
			HashURL               string `toml:"hash_url"`
			BinaryURL             string `toml:"binary_url"`
			Target                string `toml:"target"`
			AbortOnTerminateError bool   `toml:"abort_on_terminate_error"`
		} `toml:"update"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse settings: %w", err)
	}

	cfg.APIBind = orDefault(raw.APIBind, cfg.APIBind)
	cfg.ScheduleURL = orDefault(raw.ScheduleURL, cfg.ScheduleURL)
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, cfg.LogLevel))
	cfg.Update.HashURL = orDefault(raw.Update.HashURL, cfg.Update.HashURL)
	cfg.Update.BinaryURL = orDefault(raw.Update.BinaryURL, cfg.Update.BinaryURL)
	cfg.Update.Target = orDefault(raw.Update.Target, cfg.Update.Target)
	cfg.Update.AbortOnTerminateError = raw.Update.AbortOnTerminateError

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"intervals.wallpaper_poll", raw.Intervals.WallpaperPoll, &cfg.Intervals.WallpaperPoll},
		{"intervals.no_config_retry", raw.Intervals.NoConfigRetry, &cfg.Intervals.NoConfigRetry},
		{"intervals.refresh", raw.Intervals.Refresh, &cfg.Intervals.Refresh},
		{"intervals.cleanup", raw.Intervals.Cleanup, &cfg.Intervals.Cleanup},
		{"intervals.retention", raw.Intervals.Retention, &cfg.Intervals.Retention},
		{"intervals.autostart", raw.Intervals.Autostart, &cfg.Intervals.Autostart},
		{"update.interval", raw.Update.Interval, &cfg.Update.Interval},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.raw, d.dst); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// SchedulePath is where the last fetched schedule document is persisted.
func (c Config) SchedulePath() string {
	return filepath.Join(c.DataDir, scheduleFileName)
}

// CacheDir holds downloaded wallpapers.
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, cacheDirName)
}

// LogDir holds the daemon and agent logs.
func (c Config) LogDir() string {
	return filepath.Join(c.DataDir, logDirName)
}

// TargetPath is the binary the update agent keeps current.
func (c Config) TargetPath() string {
	return filepath.Join(c.DataDir, c.Update.Target)
}

// DataDir returns %APPDATA%/DailyWallpaper, falling back to
// $HOME/.config/DailyWallpaper.
func DataDir() (string, error) {
	if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
		return filepath.Join(appData, appDirName), nil
	}
	if home := strings.TrimSpace(os.Getenv("HOME")); home != "" {
		return filepath.Join(home, ".config", appDirName), nil
	}
	return "", fmt.Errorf("determine app data directory: neither APPDATA nor HOME is set")
}

// EnsureLayout creates the cache and log directories under dataDir.
func EnsureLayout(dataDir string) error {
	for _, dir := range []string{cacheDirName, logDirName} {
		if err := os.MkdirAll(filepath.Join(dataDir, dir), 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", dir, err)
		}
	}
	return nil
}

func defaultTarget() string {
	if runtime.GOOS == "windows" {
		return "daily.exe"
	}
	return "daily"
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(key, raw string, dst *time.Duration) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse %s: duration must be positive, got %s", key, trimmed)
	}
	*dst = d
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
