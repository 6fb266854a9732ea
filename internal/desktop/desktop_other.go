//go:build !windows && !darwin

package desktop

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

type command struct {
	name   string
	binary string
	args   []string
	uri    bool
}

// Ordered by preference; %s is replaced with the image path or file URI.
var commands = []command{
	{name: "swww", binary: "swww", args: []string{"img", "%s"}},
	{name: "gnome", binary: "gsettings", args: []string{"set", "org.gnome.desktop.background", "picture-uri", "%s"}, uri: true},
	{name: "gnome-dark", binary: "gsettings", args: []string{"set", "org.gnome.desktop.background", "picture-uri-dark", "%s"}, uri: true},
	{name: "feh", binary: "feh", args: []string{"--bg-fill", "%s"}},
	{name: "nitrogen", binary: "nitrogen", args: []string{"--set-zoom-fill", "%s"}},
}

// ErrNoSetter means none of the known wallpaper commands is installed.
var ErrNoSetter = errors.New("desktop: no supported wallpaper command found")

type commandSetter struct {
	lookPath func(string) (string, error)
	run      func(name string, args ...string) ([]byte, error)
}

// New returns a setter that shells out to the first available command.
func New() Setter {
	return commandSetter{
		lookPath: exec.LookPath,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

// Apply runs every available command of the first setter family found;
// GNOME needs both the light and dark keys.
func (s commandSetter) Apply(path string) error {
	family := ""
	for _, c := range commands {
		if _, err := s.lookPath(c.binary); err != nil {
			continue
		}
		if family != "" && family != c.binary {
			break
		}
		family = c.binary
		args := c.argsFor(path)
		log.WithFields(log.Fields{"setter": c.name, "path": path}).Debug("running wallpaper command")
		if out, err := s.run(c.binary, args...); err != nil {
			return fmt.Errorf("%s: %w (output: %s)", c.name, err, strings.TrimSpace(string(out)))
		}
	}
	if family == "" {
		return ErrNoSetter
	}
	return nil
}

func (commandSetter) Lock() error { return nil }

func (c command) argsFor(path string) []string {
	value := path
	if c.uri {
		value = "file://" + path
	}
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = strings.ReplaceAll(a, "%s", value)
	}
	return args
}
