// Package state holds the runtime state shared by the daily daemon's loops and
// its control API.
//
// # Overview
//
// Runtime is built once in app.Run and passed to every goroutine that needs
// it. It carries four things:
//
//   - the loaded schedule document (nil until the first successful load)
//   - the temporary override, if any
//   - the URL currently applied to the desktop
//   - the wake event used to cut the wallpaper loop's sleep short
//
// # Locking
//
// Each field has its own mutex and critical sections only copy or swap
// values. Network and disk work always happen outside the locks, so a slow
// download never blocks the control API.
//
// The wake event is a buffered channel of size one and shares no lock with
// the data fields:
//
//	Signal(): non-blocking send; a full slot means a wake is already pending
//	Wait():   select on the slot, a timer, and ctx.Done()
//
// A signal fired while nobody waits is consumed by the next Wait. Several
// signals fired before that produce a single wake-up.
//
// # Override lifecycle
//
//	SetOverride ──> stored, loop woken
//	Resolve(now < expiry)  ──> override URL, temporary
//	Resolve(now >= expiry) ──> cleared, schedule consulted
package state
