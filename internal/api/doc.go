// Package api serves the daemon's control and status surface.
//
// # Routes
//
//   - GET  /                    HTML status page
//   - GET  /api/status          applied URL, loaded schedule, override and log tail as JSON
//   - POST /api/temp_wallpaper  set a temporary wallpaper for a number of hours
//   - GET  /metrics             Prometheus exposition
//
// Every response carries an X-Request-ID header. CORS is open to any origin
// so the browser-based config creator can call the API directly.
//
// The server holds no state of its own: handlers read and write the shared
// state.Runtime, and setting an override wakes the wallpaper loop through it.
package api
