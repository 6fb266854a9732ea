package prefs

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load(afero.NewMemMapFs(), "")
	if p != Defaults() {
		t.Fatalf("Load = %+v, want defaults", p)
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	fs := afero.NewMemMapFs()

	path := filepath.Join(home, ".config", "daily", "prefs.toml")
	if err := afero.WriteFile(fs, path, []byte("theme = \"Slate\"\ndaemon = \"desktop.lan:11452\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(fs, "")
	if p.Theme != "Slate" || p.Daemon != "desktop.lan:11452" {
		t.Fatalf("Load = %+v", p)
	}
}

func TestLoad_InvalidOrBlankFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid toml", content: "theme = "},
		{name: "blank theme", content: "theme = \"  \"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "/p/prefs.toml", []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if p := Load(fs, "/p/prefs.toml"); p.Theme != defaultTheme {
				t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	want := Prefs{Theme: "Nord", Daemon: "127.0.0.1:9999"}

	if err := Save(fs, "/cfg/nested/prefs.toml", want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got := Load(fs, "/cfg/nested/prefs.toml"); got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}
