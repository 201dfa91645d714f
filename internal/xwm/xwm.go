// Package xwm places, decorates and shapes the window an embedded program
// renders into.
package xwm

import (
	"github.com/jezek/xgb/xproto"
)

// X is the part of the X protocol needed to find the desktop and build the
// embedding window. Session implements it on top of an xgb connection.
type X interface {
	Root() xproto.Window
	ScreenSize() (width, height uint16)
	Visuals() []VisualInfo
	DefaultVisual() xproto.Visualid
	DefaultColormap() xproto.Colormap

	// Atom returns xproto.AtomNone when the atom cannot be resolved.
	Atom(name string) (xproto.Atom, error)
	Children(w xproto.Window) ([]xproto.Window, error)
	WindowInfo(w xproto.Window) (WindowInfo, error)
	GetProperty(w xproto.Window, property, typ xproto.Atom, length uint32) (Property, error)
	ChangeProperty(w xproto.Window, mode byte, property, typ xproto.Atom, format byte, data []byte) error

	CreateColormap(visual xproto.Visualid) (xproto.Colormap, error)
	CreateWindow(params WindowParams) (xproto.Window, error)
	LowerWindow(w xproto.Window) error
	MapWindow(w xproto.Window) error
	DestroyWindow(w xproto.Window) error

	// ShapeBounding replaces the bounding shape of w with mask.
	ShapeBounding(w xproto.Window, mask *Mask) error
	// ShapeInputEmpty replaces the input shape of w with an empty region.
	ShapeInputEmpty(w xproto.Window) error

	// Sync waits until the server has processed every request sent so far.
	Sync() error
}

type VisualInfo struct {
	ID        xproto.Visualid
	Depth     byte
	Class     byte
	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
}

type WindowInfo struct {
	Mapped bool
	Width  uint16
	Height uint16
}

type Property struct {
	Type   xproto.Atom
	Format byte
	Value  []byte
}

type WindowParams struct {
	Parent xproto.Window
	X      int16
	Y      int16
	Width  uint16
	Height uint16
	Depth  byte
	Visual xproto.Visualid
	// ValueMask and Values follow the xproto.CreateWindow value list rules.
	ValueMask uint32
	Values    []uint32
}
