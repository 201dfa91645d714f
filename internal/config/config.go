package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ItsNotGoodName/x-winwrap/internal/core"
)

// EnvConfig overrides the config file search when --config is not given.
const EnvConfig = "XWINWRAP_CONFIG"

var configNames = []string{"config.yaml", "config.yml", "config.toml", "config.json"}

type Driver interface {
	Exists() (bool, error)
	// Read decodes the file over base, so keys missing from the file keep
	// their base value.
	Read(base Options) (Options, error)
}

// NewDriver picks a driver from the file extension.
func NewDriver(filePath string) (Driver, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return NewYAML(filePath), nil
	case ".toml":
		return NewTOML(filePath), nil
	case ".json":
		return NewJSON(filePath), nil
	default:
		return nil, fmt.Errorf("%w: unsupported config file %q (use .yaml, .toml or .json)", ErrUsage, filePath)
	}
}

func NewStore(driver Driver) Store {
	return Store{
		driver: driver,
	}
}

type Store struct {
	driver Driver
}

func (s Store) GetOptions() (Options, error) {
	if s.driver == nil {
		return defaultOptions, nil
	}

	exists, err := s.driver.Exists()
	if err != nil {
		return Options{}, err
	}
	if !exists {
		return defaultOptions, nil
	}

	return s.driver.Read(defaultOptions)
}

// Locate returns the config file to load. An explicit path must exist, the
// default locations are optional and an empty string means none was found.
func Locate(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfig)
	}

	if explicit != "" {
		filePath, err := filepath.Abs(explicit)
		if err != nil {
			return "", err
		}

		exists, err := core.FileExists(filePath)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("%w: config file %q not found", ErrUsage, explicit)
		}

		return filePath, nil
	}

	dir := core.ConfigDir("x-winwrap")
	for _, name := range configNames {
		filePath := filepath.Join(dir, name)
		exists, err := core.FileExists(filePath)
		if err != nil {
			return "", err
		}
		if exists {
			return filePath, nil
		}
	}

	return "", nil
}

// Load locates and reads the config file, falling back to the defaults.
func Load(explicit string) (Options, string, error) {
	filePath, err := Locate(explicit)
	if err != nil {
		return Options{}, "", err
	}
	if filePath == "" {
		return defaultOptions, "", nil
	}

	driver, err := NewDriver(filePath)
	if err != nil {
		return Options{}, "", err
	}

	options, err := NewStore(driver).GetOptions()
	if err != nil {
		return Options{}, "", fmt.Errorf("config %s: %w", filePath, err)
	}

	return options, filePath, nil
}
