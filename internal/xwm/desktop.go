package xwm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// maxDepth bounds the subwindow search against misbehaving window trees.
const maxDepth = 10

var ErrNoDesktop = errors.New("couldn't find desktop window")

// Desktop is where the target window gets anchored. Root is the window that
// acts as root for the rest of the program, which is the virtual root when the
// window manager advertises one.
type Desktop struct {
	Root   xproto.Window
	Window xproto.Window
}

// FindDesktop resolves the desktop window. Window managers that use a virtual
// root advertise it with __SWM_VROOT on a child of the root window, others are
// probed for a mapped subwindow covering the whole display.
func FindDesktop(x X) (Desktop, error) {
	root := x.Root()
	if root == xproto.WindowNone {
		return Desktop{}, ErrNoDesktop
	}

	children, err := x.Children(root)
	if err != nil {
		return Desktop{}, fmt.Errorf("%w: %w", ErrNoDesktop, err)
	}

	if vroot, ok := findVirtualRoot(x, children); ok {
		slog.Debug("Desktop window found from __SWM_VROOT property", "desktop", fmt.Sprintf("0x%x", vroot))
		return Desktop{Root: vroot, Window: vroot}, nil
	}

	width, height := x.ScreenSize()
	win := FindSubwindow(x, root, -1, -1)
	win = FindSubwindow(x, win, int(width), int(height))

	if win != root {
		slog.Debug("Desktop window is subwindow of root window", "desktop", fmt.Sprintf("0x%x", win), "root", fmt.Sprintf("0x%x", root))
	} else {
		slog.Debug("Desktop window is root window", "desktop", fmt.Sprintf("0x%x", win))
	}

	return Desktop{Root: root, Window: win}, nil
}

func findVirtualRoot(x X, children []xproto.Window) (xproto.Window, bool) {
	atom, err := x.Atom("__SWM_VROOT")
	if err != nil || atom == xproto.AtomNone {
		return xproto.WindowNone, false
	}

	for _, child := range children {
		prop, err := x.GetProperty(child, atom, xproto.AtomWindow, 1)
		if err != nil {
			continue
		}
		if prop.Type == xproto.AtomWindow && prop.Format == 32 && len(prop.Value) >= 4 {
			return xproto.Window(xgb.Get32(prop.Value)), true
		}
	}

	return xproto.WindowNone, false
}

// FindSubwindow descends from win into the first mapped child that is as
// large as the display or as width x height, one level per iteration, and
// stops at the first level without such a child.
func FindSubwindow(x X, win xproto.Window, width, height int) xproto.Window {
	displayWidth, displayHeight := x.ScreenSize()

	for i := 0; i < maxDepth; i++ {
		children, err := x.Children(win)
		if err != nil {
			break
		}

		found := false
		for _, child := range children {
			info, err := x.WindowInfo(child)
			if err != nil || !info.Mapped {
				continue
			}

			if (info.Width == displayWidth && info.Height == displayHeight) ||
				(int(info.Width) == width && int(info.Height) == height) {
				win = child
				found = true
				break
			}
		}

		if !found {
			break
		}
	}

	return win
}
