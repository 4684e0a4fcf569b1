package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureCacheDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trovi-cache")
	t.Setenv("TROVI_CACHE_DIR", dir)

	if err := EnsureCacheDirs(); err != nil {
		t.Fatalf("EnsureCacheDirs failed: %v", err)
	}

	for _, sub := range []string{"", "locks"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil {
			t.Fatalf("expected %q to exist: %v", sub, err)
		}
		if !info.IsDir() {
			t.Errorf("expected %q to be a directory", sub)
		}
	}
}
