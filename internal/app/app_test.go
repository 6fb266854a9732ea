package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/five82/daily/internal/config"
	"github.com/five82/daily/internal/schedule"
)

const (
	scheduleURL = "https://config.example/config.json"
	mondayURL   = "https://img.example/monday.jpg"
	dailyURL    = "https://img.example/daily.png"
)

// 2025-03-03 is a Monday.
var testNow = time.Date(2025, 3, 3, 9, 30, 0, 0, time.Local)

type fakeFetcher struct {
	mu        sync.Mutex
	docs      map[string][]byte
	docErr    error
	images    map[string]int
	imageErr  error
	downloads int
}

func (f *fakeFetcher) Bytes(_ context.Context, url string, _ int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docErr != nil {
		return nil, f.docErr
	}
	data, ok := f.docs[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (f *fakeFetcher) ToFile(_ context.Context, fs afero.Fs, url, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if f.images != nil {
		f.images[url]++
	}
	if f.imageErr != nil {
		return f.imageErr
	}
	return afero.WriteFile(fs, dst, []byte("image:"+url), 0o644)
}

func (f *fakeFetcher) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads
}

type fakeSetter struct {
	mu       sync.Mutex
	applied  []string
	locks    int
	applyErr error
	lockErr  error
}

func (s *fakeSetter) Apply(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return s.applyErr
	}
	s.applied = append(s.applied, path)
	return nil
}

func (s *fakeSetter) Lock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks++
	return s.lockErr
}

func (s *fakeSetter) appliedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.applied...)
}

type fakeRegistrar struct {
	mu      sync.Mutex
	entries map[string]string
}

func (r *fakeRegistrar) IsRegistered(name, exe string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[name] == exe, nil
}

func (r *fakeRegistrar) Register(name, exe string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = exe
	return nil
}

func scheduleJSON(url string) []byte {
	days := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = `"` + d + `":"` + url + `"`
	}
	return []byte(`{"wallpapers":{"days":{` + strings.Join(parts, ",") + `}}}`)
}

type harness struct {
	d        *Daemon
	fs       afero.Fs
	fetcher  *fakeFetcher
	setter   *fakeSetter
	registry *fakeRegistrar
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fs:       afero.NewMemMapFs(),
		fetcher:  &fakeFetcher{docs: map[string][]byte{}, images: map[string]int{}},
		setter:   &fakeSetter{},
		registry: &fakeRegistrar{entries: map[string]string{}},
		now:      testNow,
	}
	cfg := config.Default("/data")
	cfg.ScheduleURL = scheduleURL
	if err := h.fs.MkdirAll(cfg.CacheDir(), 0o755); err != nil {
		t.Fatalf("mkdir cache: %v", err)
	}
	h.d = New(Options{
		Config:     cfg,
		Executable: "/opt/daily/daily",
		Fs:         h.fs,
		Fetcher:    h.fetcher,
		Setter:     h.setter,
		Autostart:  h.registry,
		Now:        func() time.Time { return h.now },
	})
	return h
}

func (h *harness) loadSchedule(t *testing.T, url string) {
	t.Helper()
	doc, err := schedule.Parse(scheduleJSON(url))
	if err != nil {
		t.Fatalf("parse schedule: %v", err)
	}
	h.d.rt.ReplaceConfig(doc)
}

func TestStep_NoConfigWaitsRetry(t *testing.T) {
	h := newHarness(t)
	got := h.d.step(context.Background())
	if got != h.d.cfg.Intervals.NoConfigRetry {
		t.Fatalf("wait = %v, want %v", got, h.d.cfg.Intervals.NoConfigRetry)
	}
	if len(h.setter.appliedPaths()) != 0 {
		t.Fatalf("applied without a schedule")
	}
}

func TestStep_AppliesOnceThenIdles(t *testing.T) {
	h := newHarness(t)
	h.loadSchedule(t, mondayURL)

	for i := 0; i < 3; i++ {
		if got := h.d.step(context.Background()); got != h.d.cfg.Intervals.WallpaperPoll {
			t.Fatalf("pass %d wait = %v, want poll interval", i, got)
		}
	}

	paths := h.setter.appliedPaths()
	if len(paths) != 1 || paths[0] != h.d.cache.Path(mondayURL) {
		t.Fatalf("applied = %v, want one apply of %s", paths, h.d.cache.Path(mondayURL))
	}
	if h.fetcher.downloadCount() != 1 {
		t.Fatalf("downloads = %d, want 1", h.fetcher.downloadCount())
	}
	if h.setter.locks != 1 {
		t.Fatalf("locks = %d, want 1", h.setter.locks)
	}
	if got := h.d.rt.AppliedURL(); got != mondayURL {
		t.Fatalf("applied URL = %q", got)
	}
}

func TestStep_CachedImageIsNotDownloadedAgain(t *testing.T) {
	h := newHarness(t)
	h.loadSchedule(t, mondayURL)
	if err := afero.WriteFile(h.fs, h.d.cache.Path(mondayURL), []byte("cached"), 0o644); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	h.d.step(context.Background())
	if h.fetcher.downloadCount() != 0 {
		t.Fatalf("downloads = %d, want 0", h.fetcher.downloadCount())
	}
	if h.d.rt.AppliedURL() != mondayURL {
		t.Fatalf("cached image was not applied")
	}
}

func TestStep_FailuresLeaveAppliedURL(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{name: "download", setup: func(h *harness) { h.fetcher.imageErr = errors.New("connection reset") }},
		{name: "apply", setup: func(h *harness) { h.setter.applyErr = errors.New("access denied") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.loadSchedule(t, mondayURL)
			h.d.rt.SetAppliedURL("https://img.example/previous.jpg")
			tt.setup(h)

			h.d.step(context.Background())
			if got := h.d.rt.AppliedURL(); got != "https://img.example/previous.jpg" {
				t.Fatalf("applied URL = %q, want unchanged", got)
			}
		})
	}
}

func TestStep_RetriesAfterApplyFailure(t *testing.T) {
	h := newHarness(t)
	h.loadSchedule(t, mondayURL)
	h.setter.applyErr = errors.New("access denied")
	h.d.step(context.Background())

	h.setter.applyErr = nil
	h.d.step(context.Background())
	if h.d.rt.AppliedURL() != mondayURL {
		t.Fatalf("second pass did not apply")
	}
}

func TestStep_LockFailureStillRecordsApply(t *testing.T) {
	h := newHarness(t)
	h.loadSchedule(t, mondayURL)
	h.setter.lockErr = errors.New("policy key denied")

	h.d.step(context.Background())
	if h.d.rt.AppliedURL() != mondayURL {
		t.Fatalf("applied URL = %q, want %q", h.d.rt.AppliedURL(), mondayURL)
	}
}

func TestStep_OverrideWait(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Duration
		want    time.Duration
	}{
		{name: "until expiry", expires: 90 * time.Second, want: 90 * time.Second},
		{name: "at least a second", expires: 200 * time.Millisecond, want: time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.loadSchedule(t, mondayURL)
			h.d.rt.SetOverride(schedule.Override{URL: dailyURL, Expiry: h.now.Add(tt.expires)})

			if got := h.d.step(context.Background()); got != tt.want {
				t.Fatalf("wait = %v, want %v", got, tt.want)
			}
			if h.d.rt.AppliedURL() != dailyURL {
				t.Fatalf("override not applied")
			}
		})
	}
}

func TestStep_ExpiredOverrideRevertsToSchedule(t *testing.T) {
	h := newHarness(t)
	h.loadSchedule(t, mondayURL)
	h.d.rt.SetOverride(schedule.Override{URL: dailyURL, Expiry: h.now.Add(time.Minute)})
	h.d.step(context.Background())

	h.now = h.now.Add(time.Minute)
	h.d.step(context.Background())

	if h.d.rt.AppliedURL() != mondayURL {
		t.Fatalf("applied URL = %q, want schedule %q", h.d.rt.AppliedURL(), mondayURL)
	}
	if _, ok := h.d.rt.Override(); ok {
		t.Fatalf("expired override still stored")
	}
}

func TestCleanupCache_KeepsApplied(t *testing.T) {
	h := newHarness(t)
	h.loadSchedule(t, mondayURL)
	h.d.step(context.Background())

	old := h.now.Add(-72 * time.Hour)
	stale := h.d.cache.Path(dailyURL)
	if err := afero.WriteFile(h.fs, stale, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, p := range []string{stale, h.d.cache.Path(mondayURL)} {
		if err := h.fs.Chtimes(p, old, old); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	h.d.cleanupCache()

	if ok, _ := afero.Exists(h.fs, stale); ok {
		t.Fatalf("stale image not removed")
	}
	if ok, _ := afero.Exists(h.fs, h.d.cache.Path(mondayURL)); !ok {
		t.Fatalf("applied image removed")
	}
}

func TestEnforceAutostart(t *testing.T) {
	h := newHarness(t)
	h.d.enforceAutostart()
	if got := h.registry.entries["DailyWallpaper"]; got != "/opt/daily/daily" {
		t.Fatalf("autostart entry = %q", got)
	}

	h.registry.entries["DailyWallpaper"] = "/tmp/moved/daily"
	h.d.enforceAutostart()
	if got := h.registry.entries["DailyWallpaper"]; got != "/opt/daily/daily" {
		t.Fatalf("autostart entry not repaired: %q", got)
	}
}

func TestNewScheduler_RegistersJobs(t *testing.T) {
	h := newHarness(t)
	s, err := h.d.newScheduler(context.Background())
	if err != nil {
		t.Fatalf("newScheduler: %v", err)
	}
	defer s.Shutdown()

	names := map[string]bool{}
	for _, j := range s.Jobs() {
		names[j.Name()] = true
	}
	for _, want := range []string{"schedule-refresh", "cache-cleanup", "autostart"} {
		if !names[want] {
			t.Errorf("job %q not registered (have %v)", want, names)
		}
	}
}

func TestServe_AppliesScheduleAndOverride(t *testing.T) {
	h := newHarness(t)
	h.fetcher.docs[scheduleURL] = scheduleJSON(mondayURL)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.d.Serve(ctx, ln) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	}()

	waitFor(t, func() bool { return h.d.rt.AppliedURL() == mondayURL })

	body := strings.NewReader(`{"url":"` + dailyURL + `","hours":2}`)
	resp, err := http.Post("http://"+ln.Addr().String()+"/api/temp_wallpaper", "application/json", body)
	if err != nil {
		t.Fatalf("post override: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("override status = %d", resp.StatusCode)
	}

	waitFor(t, func() bool { return h.d.rt.AppliedURL() == dailyURL })
	if h.registry.entries["DailyWallpaper"] != "/opt/daily/daily" {
		t.Fatalf("autostart not registered at startup")
	}
}

func TestRun_BindFailureIsFatal(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	cfg := config.Default("/data")
	cfg.APIBind = busy.Addr().String()
	err = Run(context.Background(), Options{
		Config:    cfg,
		Fs:        afero.NewMemMapFs(),
		Fetcher:   &fakeFetcher{},
		Setter:    &fakeSetter{},
		Autostart: &fakeRegistrar{entries: map[string]string{}},
	})
	if err == nil || !strings.Contains(err.Error(), "bind control api") {
		t.Fatalf("Run error = %v, want bind failure", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
