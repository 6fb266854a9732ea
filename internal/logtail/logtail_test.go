package logtail

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestTail(t *testing.T) {
	fs := afero.NewMemMapFs()
	logPath := "/data/logs/daily.log"

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := afero.WriteFile(fs, logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero", maxLines: 0, expected: nil},
		{name: "negative", maxLines: -1, expected: nil},
		{name: "partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "more than exists (200)", maxLines: 200, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tail(fs, logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Tail() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tail() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTail_MissingFile(t *testing.T) {
	got, err := Tail(afero.NewMemMapFs(), "/nope.log", 200)
	if err != nil || got != nil {
		t.Fatalf("Tail(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestTail_EmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/empty.log", nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Tail(fs, "/empty.log", 200)
	if err != nil || len(got) != 0 {
		t.Fatalf("Tail(empty) = %v, %v", got, err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`time="2025-07-07 12:00:00.000" level=info msg="wallpaper applied"`, "info"},
		{`time="2025-07-07 12:00:00.000" level=error msg="download failed" error="boom"`, "error"},
		{`level="warning" msg=x`, "warning"},
		{"plain line", ""},
	}
	for _, tt := range tests {
		if got := Level(tt.line); got != tt.want {
			t.Errorf("Level(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
