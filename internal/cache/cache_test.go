package cache

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

type fakeDownloader struct {
	calls int
	body  string
	err   error
}

func (f *fakeDownloader) ToFile(_ context.Context, fs afero.Fs, _ string, dst string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return afero.WriteFile(fs, dst, []byte(f.body), 0o644)
}

func TestKey_Deterministic(t *testing.T) {
	url := "https://img.example/walls/sunrise.png"
	if Key(url) != Key(url) {
		t.Fatalf("Key is not deterministic")
	}
	if !strings.HasSuffix(Key(url), ".png") {
		t.Fatalf("Key = %q, want .png suffix", Key(url))
	}
	if len(strings.TrimSuffix(Key(url), ".png")) != 64 {
		t.Fatalf("Key = %q, want a sha256 hex prefix", Key(url))
	}
	if Key(url) == Key(url+"?v=2") {
		t.Fatalf("different URLs share a key")
	}
}

func TestKey_Extension(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://img.example/a.png", "png"},
		{"https://img.example/a.webp?size=large", "webp"},
		{"https://img.example/a.png?name=b.gif", "png"},
		{"https://img.example/a.jpeg#frag", "jpeg"},
		{"https://img.example/noext", "jpg"},
		{"https://img.example", "jpg"},
		{"https://img.example/dir.d/", "jpg"},
		{"not a url %zz/file.bmp?x", "bmp"},
	}
	for _, tt := range tests {
		got := Key(tt.url)
		if !strings.HasSuffix(got, "."+tt.want) {
			t.Errorf("Key(%q) = %q, want extension %q", tt.url, got, tt.want)
		}
	}
	if extension("https://img.example/a.png?x=1") != extension("https://img.example/a.png?y=2") {
		t.Fatalf("query string changed the extension")
	}
}

func TestEnsure_DownloadsOnce(t *testing.T) {
	fs := afero.NewMemMapFs()
	dl := &fakeDownloader{body: "jpeg-bytes"}
	store := New(fs, "/data/wallpapers", dl)

	url := "https://img.example/mon.jpg"
	path, err := store.Ensure(context.Background(), url)
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if path != filepath.Join("/data/wallpapers", Key(url)) {
		t.Fatalf("Ensure path = %q", path)
	}
	if data, _ := afero.ReadFile(fs, path); string(data) != "jpeg-bytes" {
		t.Fatalf("cached file = %q", data)
	}
	if _, err := store.Ensure(context.Background(), url); err != nil {
		t.Fatalf("second Ensure returned error: %v", err)
	}
	if dl.calls != 1 {
		t.Fatalf("downloader called %d times, want 1", dl.calls)
	}
	if exists, _ := afero.Exists(fs, path+partialSuffix); exists {
		t.Fatalf("partial file left behind")
	}
}

func TestEnsure_FailureLeavesNothingCached(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New(fs, "/data/wallpapers", &fakeDownloader{err: errors.New("network down")})

	url := "https://img.example/mon.jpg"
	if _, err := store.Ensure(context.Background(), url); err == nil {
		t.Fatalf("Ensure returned nil error")
	}
	if exists, _ := afero.Exists(fs, store.Path(url)); exists {
		t.Fatalf("failed download produced a cached file")
	}
}

func TestCleanup_RespectsRetentionAndAppliedURL(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/data/wallpapers"
	store := New(fs, dir, nil)
	now := time.Date(2025, time.July, 7, 12, 0, 0, 0, time.UTC)

	applied := "https://img.example/current.jpg"
	files := map[string]time.Time{
		Key(applied):                       now.Add(-100 * time.Hour),
		Key("https://img.example/old.jpg"): now.Add(-49 * time.Hour),
		Key("https://img.example/new.jpg"): now.Add(-47 * time.Hour),
	}
	for name, mtime := range files {
		p := filepath.Join(dir, name)
		if err := afero.WriteFile(fs, p, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := fs.Chtimes(p, mtime, mtime); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	result, err := store.Cleanup(now, 48*time.Hour, applied)
	if err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if len(result.Deleted) != 1 || result.Deleted[0] != Key("https://img.example/old.jpg") {
		t.Fatalf("Deleted = %v, want only the old asset", result.Deleted)
	}
	if exists, _ := afero.Exists(fs, filepath.Join(dir, Key(applied))); !exists {
		t.Fatalf("cleanup removed the applied wallpaper")
	}
	if exists, _ := afero.Exists(fs, filepath.Join(dir, Key("https://img.example/new.jpg"))); !exists {
		t.Fatalf("cleanup removed a fresh asset")
	}
}

func TestCleanup_MissingDir(t *testing.T) {
	store := New(afero.NewMemMapFs(), "/nope", nil)
	if _, err := store.Cleanup(time.Now(), time.Hour, ""); err == nil {
		t.Fatalf("Cleanup returned nil error for a missing dir")
	}
}
