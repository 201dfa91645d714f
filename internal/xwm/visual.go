package xwm

import (
	"log/slog"

	"github.com/jezek/xgb/xproto"
)

// Visual is the visual the target window is created with. Depth 0 means the
// window inherits depth and visual from its parent.
type Visual struct {
	ID       xproto.Visualid
	Depth    byte
	Colormap xproto.Colormap
	ARGB     bool
}

// FindARGBVisual returns the first 32-bit visual with 8 bits per RGB channel.
func FindARGBVisual(visuals []VisualInfo) (VisualInfo, bool) {
	for _, v := range visuals {
		if v.Depth == 32 &&
			v.RedMask == 0xff0000 &&
			v.GreenMask == 0x00ff00 &&
			v.BlueMask == 0x0000ff {
			return v, true
		}
	}
	return VisualInfo{}, false
}

// SelectVisual picks an ARGB visual with its own colormap when argb is
// requested and available, otherwise the screen defaults.
func SelectVisual(x X, argb bool) Visual {
	fallback := Visual{
		ID:       x.DefaultVisual(),
		Depth:    0,
		Colormap: x.DefaultColormap(),
	}

	if !argb {
		return fallback
	}

	v, ok := FindARGBVisual(x.Visuals())
	if !ok {
		slog.Debug("No ARGB visual found")
		return fallback
	}

	cmap, err := x.CreateColormap(v.ID)
	if err != nil {
		slog.Warn("Failed to create colormap for ARGB visual", "visual", v.ID, "error", err)
		return fallback
	}

	slog.Debug("Found ARGB visual", "visual", v.ID)

	return Visual{
		ID:       v.ID,
		Depth:    v.Depth,
		Colormap: cmap,
		ARGB:     true,
	}
}
