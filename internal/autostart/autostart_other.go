//go:build !windows

package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

type desktopEntryRegistrar struct {
	fs  afero.Fs
	dir string
}

// New returns a registrar writing XDG autostart entries.
func New() Registrar {
	return NewDesktopEntry(afero.NewOsFs(), defaultDir())
}

// NewDesktopEntry returns a registrar writing .desktop files into dir.
func NewDesktopEntry(fs afero.Fs, dir string) Registrar {
	return desktopEntryRegistrar{fs: fs, dir: dir}
}

func defaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "autostart")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "autostart")
	}
	return filepath.Join(home, ".config", "autostart")
}

func (r desktopEntryRegistrar) path(name string) string {
	return filepath.Join(r.dir, name+".desktop")
}

func (r desktopEntryRegistrar) IsRegistered(name, exe string) (bool, error) {
	data, err := afero.ReadFile(r.fs, r.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read autostart entry: %w", err)
	}
	return string(data) == entry(name, exe), nil
}

func (r desktopEntryRegistrar) Register(name, exe string) error {
	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	if err := afero.WriteFile(r.fs, r.path(name), []byte(entry(name, exe)), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

func entry(name, exe string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", name)
	fmt.Fprintf(&b, "Exec=%q\n", exe)
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}
