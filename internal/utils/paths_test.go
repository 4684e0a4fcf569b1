package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetConfigFileHonoursOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TROVI_CONFIG_DIR", dir)

	got, err := GetConfigFile()
	if err != nil {
		t.Fatalf("GetConfigFile failed: %v", err)
	}
	if want := filepath.Join(dir, "config.toml"); got != want {
		t.Errorf("GetConfigFile() = %q, want %q", got, want)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{in: "~", want: home},
		{in: "~/trovi", want: filepath.Join(home, "trovi")},
		{in: "/etc/trovi", want: "/etc/trovi"},
		{in: "~other", want: "~other"},
	}
	for _, tt := range tests {
		got, err := ExpandTilde(tt.in)
		if err != nil {
			t.Fatalf("ExpandTilde(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
