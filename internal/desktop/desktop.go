// Package desktop applies an image file as the desktop wallpaper.
//
// Each platform provides one Setter. Windows uses SystemParametersInfoW and
// the ActiveDesktop policy key to stop users changing the wallpaper by hand;
// macOS drives System Events through osascript; other systems try a list of
// known setter commands. Lock is a no-op where there is no such policy.
package desktop

// Setter is the OS wallpaper capability.
type Setter interface {
	// Apply sets the image at path as the wallpaper.
	Apply(path string) error
	// Lock prevents the user from changing the wallpaper. It is idempotent.
	Lock() error
}
