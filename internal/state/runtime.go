package state

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/five82/daily/internal/schedule"
)

// Runtime is the state shared by the wallpaper loop, the maintenance jobs and
// the control API. Every field has its own lock and no lock is held across
// I/O. The wake event is independent of all of them.
type Runtime struct {
	configMu sync.RWMutex
	config   *schedule.Document

	overrideMu sync.Mutex
	override   *schedule.Override

	appliedMu sync.RWMutex
	applied   string

	wake *Event
}

// Snapshot is a point-in-time copy used by the status surface.
type Snapshot struct {
	AppliedURL string
	Config     *schedule.Document
	Override   *schedule.Override
}

// New returns an empty runtime: no config, no override, nothing applied.
func New() *Runtime {
	return &Runtime{wake: NewEvent()}
}

// Config returns the loaded document or nil. The document must be treated as
// read-only; it is only ever swapped, never edited.
func (r *Runtime) Config() *schedule.Document {
	r.configMu.RLock()
	defer r.configMu.RUnlock()
	return r.config
}

// HasConfig reports whether a document has been loaded.
func (r *Runtime) HasConfig() bool {
	return r.Config() != nil
}

// ReplaceConfig swaps in doc. A nil doc is ignored so a loaded config is
// never cleared.
func (r *Runtime) ReplaceConfig(doc *schedule.Document) {
	if doc == nil {
		return
	}
	r.configMu.Lock()
	r.config = doc
	r.configMu.Unlock()
}

// SetOverride replaces any existing override and wakes the wallpaper loop.
func (r *Runtime) SetOverride(o schedule.Override) {
	r.overrideMu.Lock()
	r.override = &o
	r.overrideMu.Unlock()
	r.Wake()
}

// Override returns the current override, expired or not.
func (r *Runtime) Override() (schedule.Override, bool) {
	r.overrideMu.Lock()
	defer r.overrideMu.Unlock()
	if r.override == nil {
		return schedule.Override{}, false
	}
	return *r.override, true
}

// Resolve selects the target for now. An expired override is cleared here,
// under the override lock, whatever the schedule yields afterwards.
func (r *Runtime) Resolve(now time.Time) (schedule.Target, bool) {
	var active *schedule.Override

	r.overrideMu.Lock()
	if r.override != nil {
		if r.override.Active(now) {
			o := *r.override
			active = &o
		} else {
			log.WithField("url", r.override.URL).Info("temporary wallpaper expired")
			r.override = nil
		}
	}
	r.overrideMu.Unlock()

	return schedule.Resolve(now, r.Config(), active)
}

// AppliedURL returns the URL believed to be on the desktop.
func (r *Runtime) AppliedURL() string {
	r.appliedMu.RLock()
	defer r.appliedMu.RUnlock()
	return r.applied
}

// SetAppliedURL records a successful apply.
func (r *Runtime) SetAppliedURL(url string) {
	r.appliedMu.Lock()
	r.applied = url
	r.appliedMu.Unlock()
}

// Wake asks the wallpaper loop to re-resolve now.
func (r *Runtime) Wake() {
	r.wake.Signal()
}

// Wait sleeps for d or until Wake is called or ctx is done.
func (r *Runtime) Wait(ctx context.Context, d time.Duration) WaitResult {
	return r.wake.Wait(ctx, d)
}

// Snapshot copies the fields the status surface exposes.
func (r *Runtime) Snapshot() Snapshot {
	snap := Snapshot{
		AppliedURL: r.AppliedURL(),
		Config:     r.Config(),
	}
	if o, ok := r.Override(); ok {
		snap.Override = &o
	}
	return snap
}
