// Package monitor keeps the console's view of a daemon up to date.
//
// A background poller fetches /api/status on an interval and records the
// result in a Store. On failure the previous data is kept, the error is
// recorded, and the interval doubles per consecutive failure up to
// maxBackoff. The UI only ever reads Store snapshots, so slow or failing
// requests never block rendering.
package monitor
