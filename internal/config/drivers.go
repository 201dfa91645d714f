package config

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ItsNotGoodName/x-winwrap/internal/core"
	"gopkg.in/yaml.v3"
)

func NewYAML(filePath string) YAML {
	return YAML{
		filePath: filePath,
	}
}

type YAML struct {
	filePath string
}

// Exists implements Driver.
func (y YAML) Exists() (bool, error) {
	return core.FileExists(y.filePath)
}

func (y YAML) Read(base Options) (Options, error) {
	file, err := os.Open(y.filePath)
	if err != nil {
		return Options{}, err
	}
	defer file.Close()

	cfg := base
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, err
	}
	return cfg, nil
}

func NewTOML(filePath string) TOML {
	return TOML{
		filePath: filePath,
	}
}

type TOML struct {
	filePath string
}

// Exists implements Driver.
func (t TOML) Exists() (bool, error) {
	return core.FileExists(t.filePath)
}

func (t TOML) Read(base Options) (Options, error) {
	cfg := base
	md, err := toml.DecodeFile(t.filePath, &cfg)
	if err != nil {
		return Options{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, &UnknownKeyError{Key: undecoded[0].String()}
	}
	return cfg, nil
}

func NewJSON(filePath string) JSON {
	return JSON{
		filePath: filePath,
	}
}

type JSON struct {
	filePath string
}

// Exists implements Driver.
func (j JSON) Exists() (bool, error) {
	return core.FileExists(j.filePath)
}

func (j JSON) Read(base Options) (Options, error) {
	file, err := os.Open(j.filePath)
	if err != nil {
		return Options{}, err
	}
	defer file.Close()

	cfg := base
	dec := json.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, err
	}
	return cfg, nil
}

type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return "unknown key " + e.Key
}
