// Package cache stores downloaded wallpapers under names derived from their
// source URL and prunes the ones nobody uses any more.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	defaultExt    = "jpg"
	partialSuffix = ".part"
)

// Downloader writes the body of url to dst on fs.
type Downloader interface {
	ToFile(ctx context.Context, fs afero.Fs, url, dst string) error
}

// Store is a directory of cached wallpapers.
type Store struct {
	fs         afero.Fs
	dir        string
	downloader Downloader
}

// New returns a Store rooted at dir.
func New(fs afero.Fs, dir string, downloader Downloader) *Store {
	return &Store{fs: fs, dir: dir, downloader: downloader}
}

// Key returns the cache file name for rawURL: the hex SHA-256 of the full URL
// string followed by the extension of its path, "jpg" when there is none.
func Key(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:]) + "." + extension(rawURL)
}

func extension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	if ext == "" || strings.ContainsFunc(ext, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		return defaultExt
	}
	return ext
}

// Path returns where rawURL is (or would be) cached.
func (s *Store) Path(rawURL string) string {
	return filepath.Join(s.dir, Key(rawURL))
}

// Ensure returns the cached path for rawURL, downloading it first when it is
// not cached yet. The download lands in a .part file that is renamed into
// place, so a cached name always holds a complete asset.
func (s *Store) Ensure(ctx context.Context, rawURL string) (string, error) {
	dst := s.Path(rawURL)
	exists, err := afero.Exists(s.fs, dst)
	if err != nil {
		return "", fmt.Errorf("stat cached asset: %w", err)
	}
	if exists {
		log.WithField("path", dst).Debug("asset already cached, skipping download")
		return dst, nil
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	partial := dst + partialSuffix
	log.WithFields(log.Fields{"url": rawURL, "path": dst}).Debug("downloading asset")
	if err := s.downloader.ToFile(ctx, s.fs, rawURL, partial); err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := s.fs.Rename(partial, dst); err != nil {
		_ = s.fs.Remove(partial)
		return "", fmt.Errorf("move asset into cache: %w", err)
	}
	return dst, nil
}

// CleanupResult lists what a cleanup pass removed.
type CleanupResult struct {
	Deleted []string
	Kept    int
}

// Cleanup removes cached files last modified more than retention before now,
// except the one belonging to keepURL. Individual failures are collected and
// returned together; the pass always visits every file.
func (s *Store) Cleanup(now time.Time, retention time.Duration, keepURL string) (CleanupResult, error) {
	var result CleanupResult
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return result, fmt.Errorf("list cache dir: %w", err)
	}

	keep := ""
	if keepURL != "" {
		keep = Key(keepURL)
	}

	var merr *multierror.Error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == keep {
			log.WithField("file", name).Debug("skipping cleanup for active wallpaper")
			result.Kept++
			continue
		}
		if now.Sub(entry.ModTime()) <= retention {
			result.Kept++
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, name)); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("remove %s: %w", name, err))
			continue
		}
		log.WithField("file", name).Info("removed old wallpaper")
		result.Deleted = append(result.Deleted, name)
	}
	return result, merr.ErrorOrNil()
}
