package config

import (
	"fmt"
	"math"
	"strings"
)

// MaxOpaque is the _NET_WM_WINDOW_OPACITY value of a fully opaque window.
const MaxOpaque = 0xffffffff

// DefaultGeometry is used for every part of the geometry the user leaves out.
var DefaultGeometry = Geometry{
	X:      0,
	Y:      0,
	Width:  512,
	Height: 384,
}

type Shape int

const (
	ShapeRectangle Shape = iota
	ShapeCircle
	ShapeTriangle
)

func (s Shape) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeTriangle:
		return "triangle"
	default:
		return "rectangle"
	}
}

func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(name) {
	case "", "rectangle":
		return ShapeRectangle, nil
	case "circle":
		return ShapeCircle, nil
	case "triangle":
		return ShapeTriangle, nil
	default:
		return ShapeRectangle, fmt.Errorf("%w: unknown shape %q (choose rectangle, circle or triangle)", ErrUsage, name)
	}
}

type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", g.Width, g.Height, g.X, g.Y)
}

// Window describes the embedding window. It is validated once by Options.Window
// and passed by value afterwards.
type Window struct {
	Geometry    Geometry
	NoInput     bool
	ARGB        bool
	Fullscreen  bool
	Undecorated bool
	Sticky      bool
	SkipTaskbar bool
	SkipPager   bool
	Above       bool
	Below       bool
	NoFocus     bool
	Override    bool
	// Opacity is a fraction between 0 (transparent) and 1 (opaque).
	Opacity float64
	Shape   Shape
}

func (w Window) Validate() error {
	g := w.Geometry
	if g.Width <= 0 || g.Height <= 0 || g.Width > math.MaxUint16 || g.Height > math.MaxUint16 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrUsage, g.Width, g.Height)
	}
	if g.X < math.MinInt16 || g.X > math.MaxInt16 || g.Y < math.MinInt16 || g.Y > math.MaxInt16 {
		return fmt.Errorf("%w: invalid position %+d%+d", ErrUsage, g.X, g.Y)
	}
	if math.IsNaN(w.Opacity) || w.Opacity < 0 || w.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v is not between 0 and 1", ErrUsage, w.Opacity)
	}
	return nil
}

// Placement returns the geometry the window is created with. Fullscreen
// overrides any explicit geometry with the display size.
func (w Window) Placement(displayWidth, displayHeight uint16) Geometry {
	if w.Fullscreen {
		return Geometry{
			X:      0,
			Y:      0,
			Width:  int(displayWidth),
			Height: int(displayHeight),
		}
	}
	return w.Geometry
}

// OpacityValue returns the _NET_WM_WINDOW_OPACITY value and whether the
// property should be set at all. Fully opaque windows carry no property.
func (w Window) OpacityValue() (uint32, bool) {
	if w.Opacity >= 1 {
		return MaxOpaque, false
	}
	return uint32(math.Round(w.Opacity * MaxOpaque)), true
}
