// Package autostart registers executables to start at user login.
//
// On Windows entries live under the per-user Run key. Elsewhere an XDG
// autostart .desktop file is written to $XDG_CONFIG_HOME/autostart. Both
// registrars are idempotent: registering an entry that already points at
// the same executable is a no-op.
package autostart

import (
	log "github.com/sirupsen/logrus"
)

// Registrar is the login-autostart capability.
type Registrar interface {
	// IsRegistered reports whether name is registered with exactly exe.
	IsRegistered(name, exe string) (bool, error)
	// Register writes or overwrites the entry for name.
	Register(name, exe string) error
}

// Names of the autostart entries.
const (
	DaemonName  = "DailyWallpaper"
	UpdaterName = "DailyWallpaperUpdater"
)

// Ensure registers exe under name unless an identical entry exists.
func Ensure(r Registrar, name, exe string) error {
	ok, err := r.IsRegistered(name, exe)
	if err != nil {
		log.WithError(err).WithField("name", name).Warn("autostart check failed, registering anyway")
	}
	if ok {
		return nil
	}
	if err := r.Register(name, exe); err != nil {
		return err
	}
	log.WithFields(log.Fields{"name": name, "exe": exe}).Info("registered autostart entry")
	return nil
}
