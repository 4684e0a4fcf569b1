package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chameleoncloud/trovi/internal/utils"
)

// GetCacheDir returns the platform-specific cache directory for trovi
func GetCacheDir() (string, error) {
	if cacheDir := os.Getenv("TROVI_CACHE_DIR"); cacheDir != "" {
		return cacheDir, nil
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir, err = getFallbackCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
	}

	return filepath.Join(cacheDir, "trovi"), nil
}

// getFallbackCacheDir returns platform-specific fallback cache directories
func getFallbackCacheDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return localAppData, nil
		}
		return filepath.Join(homeDir, "AppData", "Local"), nil
	default:
		if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
			return xdgCache, nil
		}
		return filepath.Join(homeDir, ".cache"), nil
	}
}

// GetLockDir returns the directory holding cross-process lock files
func GetLockDir() (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "locks"), nil
}

// EnsureCacheDirs creates all necessary cache directories
func EnsureCacheDirs() error {
	for _, dirFunc := range []func() (string, error){GetCacheDir, GetLockDir} {
		dir, err := dirFunc()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}
	return nil
}
