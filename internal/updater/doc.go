// Package updater keeps the daemon binary in step with the published build.
//
// Every interval the agent fetches the published SHA-256 digest and compares
// it with the digest of the local binary. A missing binary hashes to a
// sentinel that never matches, forcing an install. When they differ the
// agent terminates the running daemon, downloads the new binary next to the
// target as <target>.new, removes the old target, renames the download into
// place and launches it detached.
//
// A crash before the rename leaves the old binary untouched; after the rename
// the update is complete. Any failing step abandons the attempt, removes the
// temporary file and waits for the next interval.
//
// Whether a failure to terminate the daemon abandons the attempt is set by
// Options.AbortOnTerminateError. The default carries on, matching the
// behaviour of earlier releases.
package updater
