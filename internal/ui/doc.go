// Package ui implements the dailyctl status console.
//
// # Overview
//
// The console is a single Bubble Tea program showing what a daily daemon is
// doing: the wallpaper currently applied, any temporary override with its
// remaining time, a summary of the loaded schedule, and the tail of the
// daemon log.
//
// # Architecture
//
// The UI never talks to the daemon directly. A monitor.Poller fills a
// monitor.Store in the background and the model reads snapshots from it on
// every tick:
//
//	┌─────────────┐  FetchStatus  ┌───────────────┐
//	│ monitor     │──────────────>│ daily daemon  │
//	│ poller      │               └───────────────┘
//	└──────┬──────┘
//	       │ Update
//	┌──────▼──────┐  Snapshot  ┌───────────────┐
//	│ monitor     │<───────────│ ui.Model      │ tick every PollTick
//	│ Store       │            └───────────────┘
//	└─────────────┘
//
// # Components
//
//   - app.go: Model, Init/Update/View and the tick and snapshot commands
//   - view.go: header, status panel, log pane and footer rendering
//   - help.go: keyboard shortcut overlay
//   - keys.go: key bindings built with bubbles/key
//   - theme.go: colour themes and their lipgloss styles
//
// # Keyboard
//
//   - j/k, g/G, pgup/pgdown: scroll the log pane
//   - space: toggle follow mode (stick to the newest line)
//   - T: cycle theme; the choice is saved to prefs.toml
//   - h or ?: help
//   - e or ctrl+c: quit
//
// # Offline handling
//
// When two consecutive polls fail the header switches to an offline badge
// and the last known data stays on screen, dimmed by the last-updated age.
package ui
