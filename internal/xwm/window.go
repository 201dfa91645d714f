package xwm

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ItsNotGoodName/x-winwrap/internal/config"
	"github.com/jezek/xgb/xproto"
)

// Target is the window the embedded program renders into.
type Target struct {
	WID     xproto.Window
	Root    xproto.Window
	Desktop xproto.Window
	Visual  Visual
	X       int16
	Y       int16
	Width   uint16
	Height  uint16
}

func (t Target) String() string {
	return fmt.Sprintf("xwm.Target(wid=%s)", t.ID())
}

// ID is the window identifier handed to the embedded program.
func (t Target) ID() string {
	return FormatID(t.WID)
}

func (t Target) Drawable() xproto.Drawable {
	return xproto.Drawable(t.WID)
}

// Map shows the window and waits for the server so the identifier is valid
// by the time anyone else uses it.
func (t Target) Map(x X) error {
	if err := x.MapWindow(t.WID); err != nil {
		return err
	}
	return x.Sync()
}

func (t Target) Destroy(x X) error {
	return x.DestroyWindow(t.WID)
}

func FormatID(w xproto.Window) string {
	return fmt.Sprintf("0x%x", uint64(w))
}

// CreateWindow creates the target window under the desktop and attaches the
// requested window manager hints. argv is published as WM_COMMAND.
func CreateWindow(x X, w config.Window, desktop Desktop, visual Visual, argv []string) (Target, error) {
	displayWidth, displayHeight := x.ScreenSize()
	geometry := w.Placement(displayWidth, displayHeight)

	// Override redirect windows are never reparented, so they go straight
	// under the root.
	parent := desktop.Window
	if w.Override {
		parent = desktop.Root
	}

	depth, visualID := byte(xproto.WindowClassCopyFromParent), xproto.Visualid(xproto.WindowClassCopyFromParent)
	if visual.ARGB {
		depth, visualID = visual.Depth, visual.ID
	}

	valueMask, values := windowAttributes(visual, w.Override)

	wid, err := x.CreateWindow(WindowParams{
		Parent:    parent,
		X:         int16(geometry.X),
		Y:         int16(geometry.Y),
		Width:     uint16(geometry.Width),
		Height:    uint16(geometry.Height),
		Depth:     depth,
		Visual:    visualID,
		ValueMask: valueMask,
		Values:    values,
	})
	if err != nil {
		return Target{}, fmt.Errorf("couldn't create window: %w", err)
	}

	t := Target{
		WID:     wid,
		Root:    desktop.Root,
		Desktop: desktop.Window,
		Visual:  visual,
		X:       int16(geometry.X),
		Y:       int16(geometry.Y),
		Width:   uint16(geometry.Width),
		Height:  uint16(geometry.Height),
	}

	hints := hintWriter{x: x, wid: wid}
	if w.Override {
		if err := x.LowerWindow(wid); err != nil {
			slog.Warn("Failed to lower window", "window", t.ID(), "error", err)
		}
		slog.Debug("Window type - override", "window", t.ID())
	} else {
		hints.managed(w, argv)
	}

	if opacity, ok := w.OpacityValue(); ok {
		hints.set(xproto.PropModeReplace, "_NET_WM_WINDOW_OPACITY", xproto.AtomCardinal, encodeCardinals(opacity))
	}

	return t, nil
}

func windowAttributes(visual Visual, override bool) (uint32, []uint32) {
	var overrideRedirect uint32
	if override {
		overrideRedirect = 1
	}

	if visual.ARGB {
		return xproto.CwBorderPixel | xproto.CwBackingStore | xproto.CwOverrideRedirect | xproto.CwColormap, // 1, 2, 3, 4
			[]uint32{
				0,                         // 1
				xproto.BackingStoreAlways, // 2
				overrideRedirect,          // 3
				uint32(visual.Colormap),   // 4
			}
	}

	return xproto.CwBackPixel | xproto.CwBackingStore | xproto.CwOverrideRedirect, // 1, 2, 3
		[]uint32{
			0,                         // 1
			xproto.BackingStoreAlways, // 2
			overrideRedirect,          // 3
		}
}

type hintWriter struct {
	x   X
	wid xproto.Window
}

func (h hintWriter) managed(w config.Window, argv []string) {
	h.change(xproto.PropModeReplace, xproto.AtomWmHints, xproto.AtomWmHints, 32, wmHints(!w.NoFocus))
	h.change(xproto.PropModeReplace, xproto.AtomWmCommand, xproto.AtomString, 8, wmCommand(argv))
	if class := wmClass(argv); class != nil {
		h.change(xproto.PropModeReplace, xproto.AtomWmClass, xproto.AtomString, 8, class)
	}
	if hostname, err := os.Hostname(); err == nil {
		h.change(xproto.PropModeReplace, xproto.AtomWmClientMachine, xproto.AtomString, 8, []byte(hostname))
	}

	if normal, ok := h.atom("_NET_WM_WINDOW_TYPE_NORMAL"); ok {
		h.set(xproto.PropModeReplace, "_NET_WM_WINDOW_TYPE", xproto.AtomAtom, encodeAtoms([]xproto.Atom{normal}))
	}

	if w.Undecorated {
		if motif, ok := h.atom("_MOTIF_WM_HINTS"); ok {
			h.change(xproto.PropModeReplace, motif, motif, 32, motifHints())
		}
	}

	if layer, ok := wmLayer(w); ok {
		h.set(xproto.PropModeReplace, "_WIN_LAYER", xproto.AtomCardinal, encodeCardinals(layer))
	}

	if w.Sticky {
		h.set(xproto.PropModeReplace, "_NET_WM_DESKTOP", xproto.AtomCardinal, encodeCardinals(allDesktops))
	}

	// Every state atom goes out in one append so none of them replaces another.
	var states []xproto.Atom
	for _, name := range wmStates(w) {
		if atom, ok := h.atom(name); ok {
			states = append(states, atom)
		}
	}
	if len(states) > 0 {
		h.set(xproto.PropModeAppend, "_NET_WM_STATE", xproto.AtomAtom, encodeAtoms(states))
	}
}

func (h hintWriter) atom(name string) (xproto.Atom, bool) {
	atom, err := h.x.Atom(name)
	if err != nil || atom == xproto.AtomNone {
		slog.Debug("Skipping unsupported atom", "atom", name, "error", err)
		return xproto.AtomNone, false
	}
	return atom, true
}

// set changes a 32-bit property named by an atom that may not be supported.
func (h hintWriter) set(mode byte, name string, typ xproto.Atom, data []byte) {
	property, ok := h.atom(name)
	if !ok {
		return
	}
	h.change(mode, property, typ, 32, data)
}

func (h hintWriter) change(mode byte, property, typ xproto.Atom, format byte, data []byte) {
	if err := h.x.ChangeProperty(h.wid, mode, property, typ, format, data); err != nil {
		slog.Warn("Failed to change window property", "window", FormatID(h.wid), "property", property, "error", err)
	}
}
