package updater

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/five82/daily/internal/cache"
	"github.com/five82/daily/internal/procctl"
)

// MissingDigest stands in for the digest of an absent local binary.
const MissingDigest = "local_file_missing"

const (
	tempSuffix    = ".new"
	maxDigestSize = 4 << 10
)

// ErrEmptyDigest means the published digest document had no content.
var ErrEmptyDigest = errors.New("updater: remote digest is empty")

// Fetcher retrieves the digest document and the binary.
type Fetcher interface {
	Bytes(ctx context.Context, url string, limit int64) ([]byte, error)
	cache.Downloader
}

// Processes stops and starts the daemon.
type Processes interface {
	TerminateByName(name string) (int, error)
	LaunchDetached(path string, args ...string) error
}

type osProcesses struct{}

func (osProcesses) TerminateByName(name string) (int, error) { return procctl.TerminateByName(name) }

func (osProcesses) LaunchDetached(path string, args ...string) error {
	return procctl.LaunchDetached(path, args...)
}

// Options configure an Agent.
type Options struct {
	Target                string
	HashURL               string
	BinaryURL             string
	Interval              time.Duration
	AbortOnTerminateError bool
	// Settle is how long to wait after terminating the daemon before its
	// binary is replaced.
	Settle time.Duration

	Fs        afero.Fs
	Fetcher   Fetcher
	Processes Processes
}

// Agent performs update checks and installs.
type Agent struct {
	opts Options
}

// New returns an Agent. Nil Fs and Processes use the operating system.
func New(opts Options) *Agent {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Processes == nil {
		opts.Processes = osProcesses{}
	}
	return &Agent{opts: opts}
}

// ParseDigest normalises a published digest: surrounding whitespace and a
// trailing file name, as written by sha256sum, are dropped and the hex is
// lower-cased.
func ParseDigest(raw []byte) (string, error) {
	fields := strings.Fields(string(bytes.TrimSpace(raw)))
	if len(fields) == 0 {
		return "", ErrEmptyDigest
	}
	return strings.ToLower(fields[0]), nil
}

// LocalDigest hashes the target, or returns MissingDigest when it is absent.
func (a *Agent) LocalDigest() (string, error) {
	f, err := a.opts.Fs.Open(a.opts.Target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return MissingDigest, nil
		}
		return "", fmt.Errorf("open %s: %w", a.opts.Target, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", a.opts.Target, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Check reports whether the published build differs from the local one.
func (a *Agent) Check(ctx context.Context) (bool, error) {
	raw, err := a.opts.Fetcher.Bytes(ctx, a.opts.HashURL, maxDigestSize)
	if err != nil {
		return false, fmt.Errorf("fetch digest: %w", err)
	}
	remote, err := ParseDigest(raw)
	if err != nil {
		return false, err
	}
	local, err := a.LocalDigest()
	if err != nil {
		return false, err
	}
	if local == MissingDigest {
		log.WithField("target", a.opts.Target).Info("local binary not found, forcing update")
	}
	log.WithFields(log.Fields{"remote": remote, "local": local}).Debug("compared digests")
	return remote != local, nil
}

// Install replaces the target with the published binary and starts it.
func (a *Agent) Install(ctx context.Context) error {
	name := filepath.Base(a.opts.Target)
	killed, err := a.opts.Processes.TerminateByName(name)
	if err != nil {
		if a.opts.AbortOnTerminateError {
			return fmt.Errorf("terminate %s: %w", name, err)
		}
		log.WithError(err).WithField("name", name).Warn("terminate failed, continuing")
	}
	if killed > 0 && a.opts.Settle > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.opts.Settle):
		}
	}

	tmp := a.opts.Target + tempSuffix
	log.WithField("path", tmp).Info("downloading new version")
	if err := a.opts.Fetcher.ToFile(ctx, a.opts.Fs, a.opts.BinaryURL, tmp); err != nil {
		a.removeTemp(tmp)
		return fmt.Errorf("download binary: %w", err)
	}

	if err := a.opts.Fs.Remove(a.opts.Target); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.removeTemp(tmp)
		return fmt.Errorf("remove old binary: %w", err)
	}
	if err := a.opts.Fs.Rename(tmp, a.opts.Target); err != nil {
		a.removeTemp(tmp)
		return fmt.Errorf("install binary: %w", err)
	}
	if err := a.opts.Fs.Chmod(a.opts.Target, 0o755); err != nil {
		log.WithError(err).Warn("mark binary executable")
	}

	if err := a.opts.Processes.LaunchDetached(a.opts.Target); err != nil {
		return fmt.Errorf("launch %s: %w", a.opts.Target, err)
	}
	log.WithField("target", a.opts.Target).Info("update installed")
	return nil
}

func (a *Agent) removeTemp(path string) {
	if err := a.opts.Fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).WithField("path", path).Warn("remove temporary binary")
	}
}

// RunOnce checks and, when needed, installs.
func (a *Agent) RunOnce(ctx context.Context) error {
	needed, err := a.Check(ctx)
	if err != nil {
		return err
	}
	if !needed {
		log.Info("application is up to date")
		return nil
	}
	log.Info("new version available, updating")
	return a.Install(ctx)
}

// Run checks immediately and then every interval until ctx is cancelled.
// Failures are logged and retried on the next interval.
func (a *Agent) Run(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create update scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(a.opts.Interval),
		gocron.NewTask(func() {
			if err := a.RunOnce(ctx); err != nil {
				log.WithError(err).Error("update attempt failed")
			}
		}),
		gocron.WithName("update-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("schedule update check: %w", err)
	}

	s.Start()
	log.WithFields(log.Fields{"target": a.opts.Target, "every": a.opts.Interval}).Info("update agent started")
	<-ctx.Done()
	return s.Shutdown()
}
