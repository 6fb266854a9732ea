// Package logtail reads the end of the daemon log for the status surface.
//
// Tail keeps a ring buffer of the last maxLines lines while scanning the file
// once, so memory stays proportional to the window and not to the file:
//
//	lines, err := logtail.Tail(afero.NewOsFs(), cfg.LogDir()+"/daily.log", 200)
//
// A missing file is not an error; the daemon may not have logged yet.
//
// Level pulls the level=… field out of a logrus text line so the console can
// colour entries without re-parsing them.
package logtail
