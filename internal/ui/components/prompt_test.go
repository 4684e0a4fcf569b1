package components

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConfirmSimple(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"whatever\n", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := ConfirmWithIO("Delete version?", strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("ConfirmWithIO() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ConfirmWithIO(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Delete version? (y/N)") {
				t.Errorf("prompt not written: %q", out.String())
			}
		})
	}
}

func TestPasswordFallback(t *testing.T) {
	var out bytes.Buffer
	got, err := PasswordWithIO("Client secret", strings.NewReader("  s3cret \n"), &out)
	if err != nil {
		t.Fatalf("PasswordWithIO() failed: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("got %q", got)
	}

	_, err = PasswordWithIO("Client secret", strings.NewReader(""), &out)
	if err == nil {
		t.Error("expected error on empty input stream")
	}
}

func TestRunWithSpinnerNoTTY(t *testing.T) {
	var out bytes.Buffer
	got, err := RunWithSpinner("Fetching", &out, func() (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("got %d, %v", got, err)
	}
	if out.Len() != 0 {
		t.Errorf("spinner must stay silent off a terminal, wrote %q", out.String())
	}

	wantErr := errors.New("boom")
	_, err = RunWithSpinner("Fetching", &out, func() (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v", err)
	}
}
