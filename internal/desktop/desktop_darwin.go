//go:build darwin

package desktop

import (
	"fmt"
	"os/exec"
	"strings"
)

type darwinSetter struct{}

// New returns the macOS wallpaper setter.
func New() Setter {
	return darwinSetter{}
}

func (darwinSetter) Apply(path string) error {
	script := fmt.Sprintf(`tell application "System Events"
		tell every desktop
			set picture to %q
		end tell
	end tell`, path)

	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (darwinSetter) Lock() error { return nil }
