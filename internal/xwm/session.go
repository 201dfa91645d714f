package xwm

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"
)

var ErrNoShape = errors.New("SHAPE extension not available")

// putImageHeader is the size of a PutImage request without its data.
const putImageHeader = 24

// Session is the connection to the X server. It is opened once and closed
// exactly once when the program exits.
type Session struct {
	conn      *xgb.Conn
	setup     *xproto.SetupInfo
	screen    *xproto.ScreenInfo
	screenNum int
	atoms     map[string]xproto.Atom
	hasShape  bool
	closeOnce sync.Once
}

// Open connects to display, or to $DISPLAY when display is empty.
func Open(display string) (*Session, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("couldn't open display: %w", err)
	}

	setup := xproto.Setup(conn)
	s := &Session{
		conn:      conn,
		setup:     setup,
		screen:    setup.DefaultScreen(conn),
		screenNum: conn.DefaultScreen,
		atoms:     make(map[string]xproto.Atom),
	}

	if err := shape.Init(conn); err != nil {
		slog.Debug("SHAPE extension unavailable", "error", err)
	} else {
		s.hasShape = true
	}

	return s, nil
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
	return nil
}

func (s *Session) Screen() int {
	return s.screenNum
}

func (s *Session) Root() xproto.Window {
	return s.screen.Root
}

func (s *Session) ScreenSize() (uint16, uint16) {
	return s.screen.WidthInPixels, s.screen.HeightInPixels
}

func (s *Session) Visuals() []VisualInfo {
	var visuals []VisualInfo
	for _, depth := range s.screen.AllowedDepths {
		for _, v := range depth.Visuals {
			visuals = append(visuals, VisualInfo{
				ID:        v.VisualId,
				Depth:     depth.Depth,
				Class:     v.Class,
				RedMask:   v.RedMask,
				GreenMask: v.GreenMask,
				BlueMask:  v.BlueMask,
			})
		}
	}
	return visuals
}

func (s *Session) DefaultVisual() xproto.Visualid {
	return s.screen.RootVisual
}

func (s *Session) DefaultColormap() xproto.Colormap {
	return s.screen.DefaultColormap
}

func (s *Session) Atom(name string) (xproto.Atom, error) {
	if atom, ok := s.atoms[name]; ok {
		return atom, nil
	}

	reply, err := xproto.InternAtom(s.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return xproto.AtomNone, err
	}

	s.atoms[name] = reply.Atom
	return reply.Atom, nil
}

func (s *Session) Children(w xproto.Window) ([]xproto.Window, error) {
	reply, err := xproto.QueryTree(s.conn, w).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Children, nil
}

func (s *Session) WindowInfo(w xproto.Window) (WindowInfo, error) {
	attrsCookie := xproto.GetWindowAttributes(s.conn, w)
	geomCookie := xproto.GetGeometry(s.conn, xproto.Drawable(w))

	attrs, err := attrsCookie.Reply()
	if err != nil {
		return WindowInfo{}, err
	}

	geom, err := geomCookie.Reply()
	if err != nil {
		return WindowInfo{}, err
	}

	return WindowInfo{
		Mapped: attrs.MapState != xproto.MapStateUnmapped,
		Width:  geom.Width,
		Height: geom.Height,
	}, nil
}

func (s *Session) GetProperty(w xproto.Window, property, typ xproto.Atom, length uint32) (Property, error) {
	reply, err := xproto.GetProperty(s.conn, false, w, property, typ, 0, length).Reply()
	if err != nil {
		return Property{}, err
	}
	return Property{
		Type:   reply.Type,
		Format: reply.Format,
		Value:  reply.Value,
	}, nil
}

func (s *Session) ChangeProperty(w xproto.Window, mode byte, property, typ xproto.Atom, format byte, data []byte) error {
	if format != 8 && format != 16 && format != 32 {
		return fmt.Errorf("invalid property format %d", format)
	}

	count := uint32(len(data)) / (uint32(format) / 8)
	return xproto.ChangePropertyChecked(s.conn, mode, w, property, typ, format, count, data).Check()
}

func (s *Session) CreateColormap(visual xproto.Visualid) (xproto.Colormap, error) {
	cmap, err := xproto.NewColormapId(s.conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.CreateColormapChecked(s.conn, xproto.ColormapAllocNone, cmap, s.screen.Root, visual).Check(); err != nil {
		return 0, err
	}

	return cmap, nil
}

func (s *Session) CreateWindow(p WindowParams) (xproto.Window, error) {
	wid, err := xproto.NewWindowId(s.conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.CreateWindowChecked(s.conn, p.Depth,
		wid, p.Parent,
		p.X, p.Y, p.Width, p.Height, 0,
		xproto.WindowClassInputOutput, p.Visual,
		p.ValueMask, p.Values).Check(); err != nil {
		return 0, err
	}

	return wid, nil
}

func (s *Session) LowerWindow(w xproto.Window) error {
	return xproto.ConfigureWindowChecked(s.conn, w,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeBelow}).
		Check()
}

func (s *Session) MapWindow(w xproto.Window) error {
	return xproto.MapWindowChecked(s.conn, w).Check()
}

func (s *Session) DestroyWindow(w xproto.Window) error {
	return xproto.DestroyWindowChecked(s.conn, w).Check()
}

func (s *Session) ShapeBounding(w xproto.Window, mask *Mask) error {
	if !s.hasShape {
		return ErrNoShape
	}

	width, height := uint16(mask.Width), uint16(mask.Height)

	pixmap, err := xproto.NewPixmapId(s.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreatePixmapChecked(s.conn, 1, pixmap, xproto.Drawable(w), width, height).Check(); err != nil {
		return err
	}
	defer xproto.FreePixmap(s.conn, pixmap)

	gc, err := xproto.NewGcontextId(s.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateGCChecked(s.conn, gc, xproto.Drawable(pixmap), 0, nil).Check(); err != nil {
		return err
	}
	defer xproto.FreeGC(s.conn, gc)

	stride, data := mask.Bitmap(s.setup.BitmapFormatBitOrder, int(s.setup.BitmapFormatScanlinePad))

	// Split the upload so no request exceeds the server limit.
	rows := (int(s.setup.MaximumRequestLength)*4 - putImageHeader) / stride
	if rows < 1 {
		rows = 1
	}
	for y := 0; y < mask.Height; y += rows {
		n := min(rows, mask.Height-y)
		if err := xproto.PutImageChecked(s.conn, xproto.ImageFormatZPixmap,
			xproto.Drawable(pixmap), gc,
			width, uint16(n), 0, int16(y), 0, 1,
			data[y*stride:(y+n)*stride]).Check(); err != nil {
			return err
		}
	}

	return shape.MaskChecked(s.conn, shape.SoSet, shape.SkBounding, w, 0, 0, pixmap).Check()
}

func (s *Session) ShapeInputEmpty(w xproto.Window) error {
	if !s.hasShape {
		return ErrNoShape
	}

	return shape.RectanglesChecked(s.conn, shape.SoSet, shape.SkInput,
		xproto.ClipOrderingUnsorted, w, 0, 0, nil).
		Check()
}

func (s *Session) Sync() error {
	_, err := xproto.GetInputFocus(s.conn).Reply()
	return err
}

var _ X = (*Session)(nil)
