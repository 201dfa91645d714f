package config

import (
	"errors"
)

// ErrUsage marks errors caused by invalid command line or config values.
var ErrUsage = errors.New("usage")

var defaultOptions = Options{
	Display:  "",
	Geometry: "",
	Opacity:  1,
	Shape:    ShapeRectangle.String(),
}

func DefaultOptions() Options {
	return defaultOptions
}

// Options holds every user facing setting. It is filled from the config file
// first and from command line flags second.
type Options struct {
	Display     string  `json:"display" yaml:"display" toml:"display"`
	Geometry    string  `json:"geometry" yaml:"geometry" toml:"geometry"`
	NoInput     bool    `json:"no_input" yaml:"no_input" toml:"no_input"`
	ARGB        bool    `json:"argb" yaml:"argb" toml:"argb"`
	Fullscreen  bool    `json:"fullscreen" yaml:"fullscreen" toml:"fullscreen"`
	Undecorated bool    `json:"undecorated" yaml:"undecorated" toml:"undecorated"`
	Sticky      bool    `json:"sticky" yaml:"sticky" toml:"sticky"`
	SkipTaskbar bool    `json:"skip_taskbar" yaml:"skip_taskbar" toml:"skip_taskbar"`
	SkipPager   bool    `json:"skip_pager" yaml:"skip_pager" toml:"skip_pager"`
	Above       bool    `json:"above" yaml:"above" toml:"above"`
	Below       bool    `json:"below" yaml:"below" toml:"below"`
	NoFocus     bool    `json:"no_focus" yaml:"no_focus" toml:"no_focus"`
	Opacity     float64 `json:"opacity" yaml:"opacity" toml:"opacity"`
	Shape       string  `json:"shape" yaml:"shape" toml:"shape"`
	Override    bool    `json:"override" yaml:"override" toml:"override"`
	Daemonize   bool    `json:"daemonize" yaml:"daemonize" toml:"daemonize"`
	Debug       bool    `json:"debug" yaml:"debug" toml:"debug"`
}

// Window validates the options and returns the window they describe.
func (o Options) Window() (Window, error) {
	geometry := DefaultGeometry
	if o.Geometry != "" {
		g, err := ParseGeometry(o.Geometry, geometry)
		if err != nil {
			return Window{}, err
		}
		geometry = g
	}

	shape, err := ParseShape(o.Shape)
	if err != nil {
		return Window{}, err
	}

	w := Window{
		Geometry:    geometry,
		NoInput:     o.NoInput,
		ARGB:        o.ARGB,
		Fullscreen:  o.Fullscreen,
		Undecorated: o.Undecorated,
		Sticky:      o.Sticky,
		SkipTaskbar: o.SkipTaskbar,
		SkipPager:   o.SkipPager,
		Above:       o.Above,
		Below:       o.Below,
		NoFocus:     o.NoFocus,
		Override:    o.Override,
		Opacity:     o.Opacity,
		Shape:       shape,
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}

	return w, nil
}
