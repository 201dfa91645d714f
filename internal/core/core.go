package core

import (
	"errors"
	"os"
	"path/filepath"
)

// https://stackoverflow.com/a/12518877
func FileExists(filePath string) (bool, error) {
	if _, err := os.Stat(filePath); err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, err
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/name, falling back to ~/.config/name.
func ConfigDir(name string) string {
	return filepath.Join(xdgOrFallback("XDG_CONFIG_HOME", filepath.Join(os.Getenv("HOME"), ".config")), name)
}

func xdgOrFallback(xdg string, fallback string) string {
	dir := os.Getenv(xdg)
	if dir != "" {
		if ok, err := FileExists(dir); ok && err == nil {
			return dir
		}
	}
	return fallback
}
