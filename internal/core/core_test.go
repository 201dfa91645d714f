package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "file")
	if err := os.WriteFile(filePath, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if ok, err := FileExists(filePath); !ok || err != nil {
		t.Errorf("FileExists(file) = %v, %v", ok, err)
	}
	if ok, err := FileExists(filepath.Join(dir, "missing")); ok || err != nil {
		t.Errorf("FileExists(missing) = %v, %v", ok, err)
	}
}

func TestConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if got, want := ConfigDir("x-winwrap"), filepath.Join(xdg, "x-winwrap"); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "missing"))
	if got, want := ConfigDir("x-winwrap"), filepath.Join(home, ".config", "x-winwrap"); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}
