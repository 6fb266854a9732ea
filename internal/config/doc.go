// Package config loads the settings shared by the daily daemon and the
// update agent.
//
// # Data directory
//
// Everything lives under one directory:
//
//	%APPDATA%/DailyWallpaper        (Windows)
//	$HOME/.config/DailyWallpaper    (elsewhere)
//	  settings.toml   optional, this package's input
//	  config.json     last fetched schedule document
//	  wallpapers/     downloaded assets, named by URL hash
//	  logs/           daily.log, update.log
//	  daily(.exe)     the binary the update agent maintains
//
// Failing to resolve this directory is one of the two conditions that stop
// the daemon at startup.
//
// # Settings
//
// settings.toml is optional. Missing keys and blank values keep the built-in
// defaults, which match the historical constants:
//
//	api_bind = "0.0.0.0:11452"
//	schedule_url = "https://…/config.json"
//	log_level = "info"
//
//	[intervals]
//	wallpaper_poll = "60s"
//	no_config_retry = "5m"
//	refresh = "24h"
//	cleanup = "24h"
//	retention = "48h"
//	autostart = "1h"
//
//	[update]
//	interval = "4h"
//	hash_url = "https://…/daily.sha256"
//	binary_url = "https://…/daily.exe"
//	target = "daily.exe"
//	abort_on_terminate_error = false
//
// Durations use time.ParseDuration syntax and must be positive. Parse
// errors are returned; the caller decides whether to fall back to Default.
package config
