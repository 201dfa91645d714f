package xwm

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ItsNotGoodName/x-winwrap/internal/config"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// ICCCM WM_HINTS
const (
	wmHintsInput   = 1 << 0
	wmHintsState   = 1 << 1
	wmHintsLen     = 9
	wmStateNormal  = 1
	motifHintsLen  = 5
	motifHintsDeco = 1 << 1
)

// Legacy GNOME _WIN_LAYER values.
const (
	layerBelow = 0
	layerAbove = 6
)

// allDesktops is the _NET_WM_DESKTOP value of a window shown on every desktop.
const allDesktops = 0xffffffff

func encodeCardinals(values ...uint32) []byte {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		xgb.Put32(data[i*4:], v)
	}
	return data
}

func encodeAtoms(atoms []xproto.Atom) []byte {
	data := make([]byte, len(atoms)*4)
	for i, a := range atoms {
		xgb.Put32(data[i*4:], uint32(a))
	}
	return data
}

func wmHints(input bool) []byte {
	hints := make([]uint32, wmHintsLen)
	hints[0] = wmHintsInput | wmHintsState
	if input {
		hints[1] = 1
	}
	hints[2] = wmStateNormal
	return encodeCardinals(hints...)
}

// motifHints disables every decoration: only the decorations flag is set and
// the decorations field is left at zero.
func motifHints() []byte {
	hints := make([]uint32, motifHintsLen)
	hints[0] = motifHintsDeco
	return encodeCardinals(hints...)
}

func wmCommand(argv []string) []byte {
	var b strings.Builder
	for _, arg := range argv {
		b.WriteString(arg)
		b.WriteByte(0)
	}
	return []byte(b.String())
}

func wmClass(argv []string) []byte {
	name := os.Getenv("RESOURCE_NAME")
	if name == "" && len(argv) > 0 {
		name = filepath.Base(argv[0])
	}
	if name == "" {
		return nil
	}

	r, size := utf8.DecodeRuneInString(name)
	class := string(unicode.ToUpper(r)) + name[size:]

	return []byte(name + "\x00" + class + "\x00")
}

// wmLayer returns the _WIN_LAYER value. Below wins when both are requested.
func wmLayer(w config.Window) (uint32, bool) {
	switch {
	case w.Below:
		return layerBelow, true
	case w.Above:
		return layerAbove, true
	default:
		return 0, false
	}
}

// wmStates returns the _NET_WM_STATE atom names requested by w.
func wmStates(w config.Window) []string {
	var states []string
	if w.Below {
		states = append(states, "_NET_WM_STATE_BELOW")
	}
	if w.Above {
		states = append(states, "_NET_WM_STATE_ABOVE")
	}
	if w.Sticky {
		states = append(states, "_NET_WM_STATE_STICKY")
	}
	if w.SkipTaskbar {
		states = append(states, "_NET_WM_STATE_SKIP_TASKBAR")
	}
	if w.SkipPager {
		states = append(states, "_NET_WM_STATE_SKIP_PAGER")
	}
	return states
}
