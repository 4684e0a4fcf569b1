package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde expands a tilde (~) at the beginning of a path to the user's home directory
func ExpandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	if path == "~" {
		return homeDir, nil
	}

	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~\\") {
		return filepath.Join(homeDir, path[2:]), nil
	}

	return path, nil
}

// EnsureDir ensures that a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// GetConfigDir returns the path to the trovi config directory
// Uses platform-specific config directories:
// - Linux: ~/.config/trovi (or $XDG_CONFIG_HOME/trovi)
// - macOS: ~/Library/Application Support/trovi
// - Windows: %AppData%/trovi
func GetConfigDir() (string, error) {
	if configDir := os.Getenv("TROVI_CONFIG_DIR"); configDir != "" {
		return ExpandTilde(configDir)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}

	return filepath.Join(configDir, "trovi"), nil
}

// GetConfigFile returns the path to the config.toml file
func GetConfigFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
