// Package app is the composition root of the wallpaper daemon.
//
// # Overview
//
// Run wires the shared state.Runtime to every long-lived activity and blocks
// until the context is cancelled:
//
//   - the wallpaper loop (wallpaper.go), which resolves the target, downloads
//     it into the cache and applies it to the desktop
//   - the control API (internal/api), served on the configured bind address
//   - the maintenance scheduler (maintenance.go): schedule refresh, cache
//     cleanup and autostart enforcement as gocron duration jobs
//   - the schedule watcher (watcher.go), which reloads config.json when it
//     is edited on disk
//
// # Wallpaper loop
//
// Each pass resolves the target for the current time. When nothing is loaded
// the loop waits NoConfigRetry. When the target equals the applied URL the
// pass does nothing. Otherwise the image is fetched into the cache if needed,
// applied, the change policy locked, and only then is the applied URL
// recorded. A failed download or apply leaves the applied URL untouched so
// the next pass retries. Every wait can be cut short by a wake signal, which
// the API fires on overrides and the refresh fires on new schedules.
//
//	   ┌────────┐ resolve ┌──────────┐
//	┌─>│  Idle  │────────>│ Applying │
//	│  └────────┘         └────┬─────┘
//	│   wait(poll | expiry | retry) or wake
//	└──────────────────────────┘
//
// # Error handling
//
// Only two conditions end the daemon: no usable data directory (checked by
// the caller) and failing to bind the control API. Everything else is logged
// and retried on the next pass or job run.
package app
