package xwm_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ItsNotGoodName/x-winwrap/internal/config"
	"github.com/ItsNotGoodName/x-winwrap/internal/xwm"
	"github.com/ItsNotGoodName/x-winwrap/internal/xwm/xwmtest"
	"github.com/jezek/xgb/xproto"
)

func newTarget(t *testing.T, x *xwmtest.Server, w config.Window) xwm.Target {
	t.Helper()

	desktop, err := xwm.FindDesktop(x)
	if err != nil {
		t.Fatal(err)
	}

	target, err := xwm.CreateWindow(x, w, desktop, xwm.SelectVisual(x, w.ARGB), []string{"x-winwrap", "--", "true"})
	if err != nil {
		t.Fatal(err)
	}
	return target
}

func TestCreateWindowGeometry(t *testing.T) {
	x := xwmtest.New(1920, 1080)

	target := newTarget(t, x, config.Window{Geometry: config.Geometry{X: 10, Y: -20, Width: 100, Height: 50}, Opacity: 1})

	win, ok := x.Window(target.WID)
	if !ok {
		t.Fatal("window not created")
	}
	p := win.Params
	if p.X != 10 || p.Y != -20 || p.Width != 100 || p.Height != 50 {
		t.Errorf("params = %+v, want 100x50+10-20", p)
	}
	if p.Parent != xwmtest.RootWindow {
		t.Errorf("parent = 0x%x, want root", p.Parent)
	}
	if p.Depth != 0 || p.Visual != 0 {
		t.Errorf("depth, visual = %d, %d, want copy from parent", p.Depth, p.Visual)
	}
	if p.ValueMask != xproto.CwBackPixel|xproto.CwBackingStore|xproto.CwOverrideRedirect {
		t.Errorf("value mask = %b", p.ValueMask)
	}
	if !reflect.DeepEqual(p.Values, []uint32{0, xproto.BackingStoreAlways, 0}) {
		t.Errorf("values = %v", p.Values)
	}
	if win.Mapped {
		t.Error("window mapped before Map")
	}
}

func TestCreateWindowFullscreen(t *testing.T) {
	x := xwmtest.New(1920, 1080)

	target := newTarget(t, x, config.Window{Geometry: config.Geometry{X: 5, Y: 5, Width: 10, Height: 10}, Fullscreen: true, Opacity: 1})

	if target.X != 0 || target.Y != 0 || target.Width != 1920 || target.Height != 1080 {
		t.Errorf("target = %+v, want 1920x1080+0+0", target)
	}
}

func TestCreateWindowParentIsDesktop(t *testing.T) {
	x := xwmtest.New(800, 600)
	desk := x.AddWindow(xwmtest.RootWindow, 800, 600, true)

	managed := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1})
	if win, _ := x.Window(managed.WID); win.Parent != desk {
		t.Errorf("managed parent = 0x%x, want desktop 0x%x", win.Parent, desk)
	}

	override := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1, Override: true})
	if win, _ := x.Window(override.WID); win.Parent != xwmtest.RootWindow {
		t.Errorf("override parent = 0x%x, want root", win.Parent)
	}
}

func TestCreateWindowARGB(t *testing.T) {
	x := xwmtest.New(800, 600)
	x.ARGB = true

	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, ARGB: true, Opacity: 1})

	win, _ := x.Window(target.WID)
	if win.Params.Depth != 32 || win.Params.Visual != xwmtest.ARGBVisual {
		t.Errorf("depth, visual = %d, 0x%x, want 32, ARGB visual", win.Params.Depth, win.Params.Visual)
	}
	if win.Params.ValueMask&xproto.CwColormap == 0 || win.Params.ValueMask&xproto.CwBorderPixel == 0 {
		t.Errorf("value mask = %b, want border pixel and colormap", win.Params.ValueMask)
	}
	if got := win.Params.Values[3]; got != uint32(target.Visual.Colormap) {
		t.Errorf("colormap = 0x%x, want 0x%x", got, target.Visual.Colormap)
	}
}

func TestCreateWindowARGBUnavailable(t *testing.T) {
	x := xwmtest.New(800, 600)

	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, ARGB: true, Opacity: 1})

	if target.Visual.ARGB {
		t.Error("ARGB visual selected without one available")
	}
	if calls := x.CallsFor("CreateColormap"); len(calls) != 0 {
		t.Errorf("CreateColormap called %d times", len(calls))
	}
}

func TestCreateWindowManagedProperties(t *testing.T) {
	x := xwmtest.New(800, 600)

	target := newTarget(t, x, config.Window{
		Geometry:    config.DefaultGeometry,
		Opacity:     1,
		Undecorated: true,
		Sticky:      true,
		SkipTaskbar: true,
		SkipPager:   true,
		Below:       true,
		NoFocus:     true,
	})
	wid := target.WID

	if got := x.Cardinals(wid, "WM_HINTS"); len(got) != 9 || got[0] != 3 || got[1] != 0 || got[2] != 1 {
		t.Errorf("WM_HINTS = %v", got)
	}
	if prop, _ := x.Property(wid, "WM_COMMAND"); string(prop.Value) != "x-winwrap\x00--\x00true\x00" {
		t.Errorf("WM_COMMAND = %q", prop.Value)
	}
	if got := x.AtomNames(wid, "_NET_WM_WINDOW_TYPE"); !reflect.DeepEqual(got, []string{"_NET_WM_WINDOW_TYPE_NORMAL"}) {
		t.Errorf("_NET_WM_WINDOW_TYPE = %v", got)
	}
	if got := x.Cardinals(wid, "_MOTIF_WM_HINTS"); !reflect.DeepEqual(got, []uint32{2, 0, 0, 0, 0}) {
		t.Errorf("_MOTIF_WM_HINTS = %v", got)
	}
	if got := x.Cardinals(wid, "_WIN_LAYER"); !reflect.DeepEqual(got, []uint32{0}) {
		t.Errorf("_WIN_LAYER = %v", got)
	}
	if got := x.Cardinals(wid, "_NET_WM_DESKTOP"); !reflect.DeepEqual(got, []uint32{0xffffffff}) {
		t.Errorf("_NET_WM_DESKTOP = %v", got)
	}

	want := []string{"_NET_WM_STATE_BELOW", "_NET_WM_STATE_STICKY", "_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER"}
	if got := x.AtomNames(wid, "_NET_WM_STATE"); !reflect.DeepEqual(got, want) {
		t.Errorf("_NET_WM_STATE = %v, want %v", got, want)
	}

	if _, ok := x.Property(wid, "_NET_WM_WINDOW_OPACITY"); ok {
		t.Error("_NET_WM_WINDOW_OPACITY set at full opacity")
	}
}

func TestCreateWindowStateIsOneAppend(t *testing.T) {
	x := xwmtest.New(800, 600)

	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1, Above: true, Below: true, Sticky: true})

	state, err := x.Atom("_NET_WM_STATE")
	if err != nil {
		t.Fatal(err)
	}

	var calls []xwmtest.Call
	for _, c := range x.CallsFor("ChangeProperty") {
		if c.Window == target.WID && c.Atom == state {
			calls = append(calls, c)
		}
	}
	if len(calls) != 1 || calls[0].Mode != xproto.PropModeAppend {
		t.Fatalf("_NET_WM_STATE changes = %+v, want one append", calls)
	}

	want := []string{"_NET_WM_STATE_BELOW", "_NET_WM_STATE_ABOVE", "_NET_WM_STATE_STICKY"}
	if got := x.AtomNames(target.WID, "_NET_WM_STATE"); !reflect.DeepEqual(got, want) {
		t.Errorf("_NET_WM_STATE = %v, want %v", got, want)
	}
}

func TestCreateWindowSkipsUnsupportedAtoms(t *testing.T) {
	x := xwmtest.New(800, 600)
	x.Unsupported["_NET_WM_STATE_STICKY"] = true
	x.Unsupported["_MOTIF_WM_HINTS"] = true

	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1, Undecorated: true, Sticky: true, SkipPager: true})

	if _, ok := x.Property(target.WID, "_MOTIF_WM_HINTS"); ok {
		t.Error("_MOTIF_WM_HINTS set with unsupported atom")
	}
	if got := x.AtomNames(target.WID, "_NET_WM_STATE"); !reflect.DeepEqual(got, []string{"_NET_WM_STATE_SKIP_PAGER"}) {
		t.Errorf("_NET_WM_STATE = %v", got)
	}
}

func TestCreateWindowOverride(t *testing.T) {
	x := xwmtest.New(800, 600)

	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Override: true, Opacity: 0.5, Sticky: true})

	win, _ := x.Window(target.WID)
	if !win.Lowered {
		t.Error("override window not lowered")
	}
	if win.Params.Values[2] != 1 {
		t.Errorf("override redirect = %d, want 1", win.Params.Values[2])
	}
	for _, name := range []string{"WM_HINTS", "WM_COMMAND", "_NET_WM_STATE", "_NET_WM_DESKTOP"} {
		if _, ok := x.Property(target.WID, name); ok {
			t.Errorf("%s set on override window", name)
		}
	}
	if got := x.Cardinals(target.WID, "_NET_WM_WINDOW_OPACITY"); !reflect.DeepEqual(got, []uint32{0x80000000}) {
		t.Errorf("_NET_WM_WINDOW_OPACITY = %v, want [0x80000000]", got)
	}
}

func TestCreateWindowOpacity(t *testing.T) {
	x := xwmtest.New(800, 600)

	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 0})

	if got := x.Cardinals(target.WID, "_NET_WM_WINDOW_OPACITY"); !reflect.DeepEqual(got, []uint32{0}) {
		t.Errorf("_NET_WM_WINDOW_OPACITY = %v, want [0]", got)
	}
}

func TestCreateWindowFailure(t *testing.T) {
	x := xwmtest.New(800, 600)
	x.FailCreate = errors.New("BadAlloc")

	desktop, err := xwm.FindDesktop(x)
	if err != nil {
		t.Fatal(err)
	}

	_, err = xwm.CreateWindow(x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1}, desktop, xwm.SelectVisual(x, false), nil)
	if !errors.Is(err, x.FailCreate) {
		t.Errorf("CreateWindow() error = %v, want %v", err, x.FailCreate)
	}
}

func TestTargetMapSyncs(t *testing.T) {
	x := xwmtest.New(800, 600)
	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1})

	if err := target.Map(x); err != nil {
		t.Fatal(err)
	}

	if win, _ := x.Window(target.WID); !win.Mapped {
		t.Error("window not mapped")
	}
	if last := x.Calls[len(x.Calls)-1]; last.Op != "Sync" {
		t.Errorf("last request = %s, want Sync", last.Op)
	}
}

func TestFormatID(t *testing.T) {
	tests := []struct {
		wid  xproto.Window
		want string
	}{
		{0x1c00001, "0x1c00001"},
		{0xffffffff, "0xffffffff"},
		{0, "0x0"},
	}

	for _, tt := range tests {
		if got := xwm.FormatID(tt.wid); got != tt.want {
			t.Errorf("FormatID(%d) = %q, want %q", tt.wid, got, tt.want)
		}
	}
}

func TestApplyShape(t *testing.T) {
	x := xwmtest.New(800, 600)
	target := newTarget(t, x, config.Window{Geometry: config.Geometry{Width: 64, Height: 32}, Opacity: 1})

	if err := xwm.ApplyShape(x, target, config.ShapeRectangle, false); err != nil {
		t.Fatal(err)
	}
	if len(x.CallsFor("ShapeBounding")) != 0 || len(x.CallsFor("ShapeInputEmpty")) != 0 {
		t.Fatal("rectangle without no-input issued shape requests")
	}

	if err := xwm.ApplyShape(x, target, config.ShapeCircle, true); err != nil {
		t.Fatal(err)
	}
	mask := x.Bounding[target.WID]
	if mask == nil || mask.Width != 64 || mask.Height != 32 {
		t.Errorf("bounding mask = %+v, want 64x32", mask)
	}
	if !x.InputEmpty[target.WID] {
		t.Error("input shape not cleared")
	}
}

func TestApplyShapeNoInputOnly(t *testing.T) {
	x := xwmtest.New(800, 600)
	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1})

	if err := xwm.ApplyShape(x, target, config.ShapeRectangle, true); err != nil {
		t.Fatal(err)
	}
	if !x.InputEmpty[target.WID] {
		t.Error("input shape not cleared")
	}
	if _, ok := x.Bounding[target.WID]; ok {
		t.Error("bounding shape set for rectangle")
	}
}

func TestApplyShapeWithoutExtension(t *testing.T) {
	x := xwmtest.New(800, 600)
	x.NoShape = true
	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1})

	if err := xwm.ApplyShape(x, target, config.ShapeTriangle, true); err != nil {
		t.Errorf("ApplyShape() error = %v, want nil", err)
	}
}

func TestApplyShapeTriesBoth(t *testing.T) {
	x := xwmtest.New(800, 600)
	x.FailShape = errors.New("BadLength")
	target := newTarget(t, x, config.Window{Geometry: config.DefaultGeometry, Opacity: 1})

	err := xwm.ApplyShape(x, target, config.ShapeCircle, true)
	if !errors.Is(err, x.FailShape) {
		t.Errorf("ApplyShape() error = %v, want %v", err, x.FailShape)
	}
	if len(x.CallsFor("ShapeInputEmpty")) != 1 || len(x.CallsFor("ShapeBounding")) != 1 {
		t.Error("a failed input shape skipped the bounding shape")
	}
}
