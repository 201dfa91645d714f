// Package xwmtest provides an in-memory X server for exercising xwm without a
// display.
package xwmtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ItsNotGoodName/x-winwrap/internal/xwm"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const (
	RootWindow      xproto.Window   = 0x100
	DefaultVisual   xproto.Visualid = 0x21
	DefaultColormap xproto.Colormap = 0x20
	ARGBVisual      xproto.Visualid = 0x62

	firstAtom = 0x200
	firstID   = 0x1000
)

var ErrBadWindow = errors.New("BadWindow")

var predefinedAtoms = map[string]xproto.Atom{
	"ATOM":              xproto.AtomAtom,
	"CARDINAL":          xproto.AtomCardinal,
	"STRING":            xproto.AtomString,
	"WINDOW":            xproto.AtomWindow,
	"WM_HINTS":          xproto.AtomWmHints,
	"WM_COMMAND":        xproto.AtomWmCommand,
	"WM_CLASS":          xproto.AtomWmClass,
	"WM_CLIENT_MACHINE": xproto.AtomWmClientMachine,
	"WM_NAME":           xproto.AtomWmName,
}

type Window struct {
	ID       xproto.Window
	Parent   xproto.Window
	Children []xproto.Window
	Mapped   bool
	Width    uint16
	Height   uint16
	Params   xwm.WindowParams
	Lowered  bool

	properties map[xproto.Atom]xwm.Property
}

// Call is one recorded request.
type Call struct {
	Op     string
	Window xproto.Window
	Atom   xproto.Atom
	Mode   byte
}

// Server implements xwm.X in memory. Its zero value is not usable, see New.
type Server struct {
	mu sync.Mutex

	Width  uint16
	Height uint16

	// ARGB adds a 32-bit TrueColor visual to Visuals.
	ARGB bool
	// NoShape makes every SHAPE request fail with xwm.ErrNoShape.
	NoShape bool
	// Unsupported atom names resolve to AtomNone.
	Unsupported map[string]bool
	// FailCreate makes CreateWindow fail.
	FailCreate error
	// FailColormap makes CreateColormap fail.
	FailColormap error
	// FailShape makes every SHAPE request fail.
	FailShape error

	Bounding   map[xproto.Window]*xwm.Mask
	InputEmpty map[xproto.Window]bool
	Calls      []Call

	windows  map[xproto.Window]*Window
	atoms    map[string]xproto.Atom
	names    map[xproto.Atom]string
	nextAtom xproto.Atom
	nextID   uint32
}

// New returns a server with a mapped root window of width x height.
func New(width, height uint16) *Server {
	s := &Server{
		Width:       width,
		Height:      height,
		Unsupported: make(map[string]bool),
		Bounding:    make(map[xproto.Window]*xwm.Mask),
		InputEmpty:  make(map[xproto.Window]bool),
		windows:     make(map[xproto.Window]*Window),
		atoms:       make(map[string]xproto.Atom),
		names:       make(map[xproto.Atom]string),
		nextAtom:    firstAtom,
		nextID:      firstID,
	}
	for name, atom := range predefinedAtoms {
		s.atoms[name] = atom
		s.names[atom] = name
	}
	s.windows[RootWindow] = &Window{
		ID:         RootWindow,
		Mapped:     true,
		Width:      width,
		Height:     height,
		properties: make(map[xproto.Atom]xwm.Property),
	}
	return s
}

// AddWindow adds a child of parent and returns its id.
func (s *Server) AddWindow(parent xproto.Window, width, height uint16, mapped bool) xproto.Window {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addWindow(parent, width, height, mapped)
}

func (s *Server) addWindow(parent xproto.Window, width, height uint16, mapped bool) xproto.Window {
	id := xproto.Window(s.nextID)
	s.nextID++

	s.windows[id] = &Window{
		ID:         id,
		Parent:     parent,
		Mapped:     mapped,
		Width:      width,
		Height:     height,
		properties: make(map[xproto.Atom]xwm.Property),
	}
	if p, ok := s.windows[parent]; ok {
		p.Children = append(p.Children, id)
	}

	return id
}

// SetProperty stores a property on w as if another client had set it.
func (s *Server) SetProperty(w xproto.Window, name string, typ xproto.Atom, format byte, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows[w].properties[s.intern(name)] = xwm.Property{Type: typ, Format: format, Value: value}
}

// Property returns the property name of w.
func (s *Server) Property(w xproto.Window, name string) (xwm.Property, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, ok := s.windows[w]
	if !ok {
		return xwm.Property{}, false
	}
	atom, ok := s.atoms[name]
	if !ok {
		return xwm.Property{}, false
	}
	prop, ok := win.properties[atom]
	return prop, ok
}

// Cardinals decodes a 32-bit property.
func (s *Server) Cardinals(w xproto.Window, name string) []uint32 {
	prop, ok := s.Property(w, name)
	if !ok || prop.Format != 32 {
		return nil
	}
	values := make([]uint32, len(prop.Value)/4)
	for i := range values {
		values[i] = xgb.Get32(prop.Value[i*4:])
	}
	return values
}

// AtomNames decodes an ATOM property into atom names.
func (s *Server) AtomNames(w xproto.Window, name string) []string {
	var names []string
	for _, v := range s.Cardinals(w, name) {
		names = append(names, s.AtomName(xproto.Atom(v)))
	}
	return names
}

func (s *Server) AtomName(atom xproto.Atom) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.names[atom]
}

// Window returns a copy of w's state.
func (s *Server) Window(w xproto.Window) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, ok := s.windows[w]
	if !ok {
		return Window{}, false
	}
	return *win, true
}

// CallsFor returns the recorded requests of op.
func (s *Server) CallsFor(op string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var calls []Call
	for _, c := range s.Calls {
		if c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

func (s *Server) record(c Call) {
	s.Calls = append(s.Calls, c)
}

func (s *Server) intern(name string) xproto.Atom {
	if atom, ok := s.atoms[name]; ok {
		return atom
	}
	atom := s.nextAtom
	s.nextAtom++
	s.atoms[name] = atom
	s.names[atom] = name
	return atom
}

func (s *Server) window(w xproto.Window) (*Window, error) {
	win, ok := s.windows[w]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", ErrBadWindow, uint32(w))
	}
	return win, nil
}

func (s *Server) Root() xproto.Window {
	return RootWindow
}

func (s *Server) ScreenSize() (uint16, uint16) {
	return s.Width, s.Height
}

func (s *Server) Visuals() []xwm.VisualInfo {
	visuals := []xwm.VisualInfo{
		{ID: DefaultVisual, Depth: 24, Class: xproto.VisualClassTrueColor, RedMask: 0xff0000, GreenMask: 0x00ff00, BlueMask: 0x0000ff},
	}
	if s.ARGB {
		visuals = append(visuals, xwm.VisualInfo{ID: ARGBVisual, Depth: 32, Class: xproto.VisualClassTrueColor, RedMask: 0xff0000, GreenMask: 0x00ff00, BlueMask: 0x0000ff})
	}
	return visuals
}

func (s *Server) DefaultVisual() xproto.Visualid {
	return DefaultVisual
}

func (s *Server) DefaultColormap() xproto.Colormap {
	return DefaultColormap
}

func (s *Server) Atom(name string) (xproto.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Unsupported[name] {
		return xproto.AtomNone, nil
	}
	return s.intern(name), nil
}

func (s *Server) Children(w xproto.Window) ([]xproto.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, err := s.window(w)
	if err != nil {
		return nil, err
	}
	return append([]xproto.Window(nil), win.Children...), nil
}

func (s *Server) WindowInfo(w xproto.Window) (xwm.WindowInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, err := s.window(w)
	if err != nil {
		return xwm.WindowInfo{}, err
	}
	return xwm.WindowInfo{Mapped: win.Mapped, Width: win.Width, Height: win.Height}, nil
}

// GetProperty mirrors the server's type matching: a mismatched type returns
// the actual type with no value.
func (s *Server) GetProperty(w xproto.Window, property, typ xproto.Atom, length uint32) (xwm.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, err := s.window(w)
	if err != nil {
		return xwm.Property{}, err
	}

	prop, ok := win.properties[property]
	if !ok {
		return xwm.Property{}, nil
	}
	if typ != xproto.GetPropertyTypeAny && typ != prop.Type {
		return xwm.Property{Type: prop.Type, Format: prop.Format}, nil
	}

	value := prop.Value
	if limit := int(length) * 4; len(value) > limit {
		value = value[:limit]
	}
	return xwm.Property{Type: prop.Type, Format: prop.Format, Value: append([]byte(nil), value...)}, nil
}

func (s *Server) ChangeProperty(w xproto.Window, mode byte, property, typ xproto.Atom, format byte, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: "ChangeProperty", Window: w, Atom: property, Mode: mode})

	win, err := s.window(w)
	if err != nil {
		return err
	}

	prop, ok := win.properties[property]
	switch {
	case mode == xproto.PropModeAppend && ok:
		prop.Value = append(append([]byte(nil), prop.Value...), data...)
	case mode == xproto.PropModePrepend && ok:
		prop.Value = append(append([]byte(nil), data...), prop.Value...)
	default:
		prop = xwm.Property{Type: typ, Format: format, Value: append([]byte(nil), data...)}
	}
	win.properties[property] = prop

	return nil
}

func (s *Server) CreateColormap(visual xproto.Visualid) (xproto.Colormap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: "CreateColormap"})
	if s.FailColormap != nil {
		return 0, s.FailColormap
	}

	id := xproto.Colormap(s.nextID)
	s.nextID++
	return id, nil
}

func (s *Server) CreateWindow(params xwm.WindowParams) (xproto.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreate != nil {
		return 0, s.FailCreate
	}
	if _, err := s.window(params.Parent); err != nil {
		return 0, err
	}

	id := s.addWindow(params.Parent, params.Width, params.Height, false)
	s.windows[id].Params = params
	s.record(Call{Op: "CreateWindow", Window: id})

	return id, nil
}

func (s *Server) LowerWindow(w xproto.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: "LowerWindow", Window: w})

	win, err := s.window(w)
	if err != nil {
		return err
	}
	win.Lowered = true
	return nil
}

func (s *Server) MapWindow(w xproto.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: "MapWindow", Window: w})

	win, err := s.window(w)
	if err != nil {
		return err
	}
	win.Mapped = true
	return nil
}

func (s *Server) DestroyWindow(w xproto.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: "DestroyWindow", Window: w})

	win, err := s.window(w)
	if err != nil {
		return err
	}
	if p, ok := s.windows[win.Parent]; ok {
		for i, c := range p.Children {
			if c == w {
				p.Children = append(p.Children[:i], p.Children[i+1:]...)
				break
			}
		}
	}
	delete(s.windows, w)
	return nil
}

func (s *Server) ShapeBounding(w xproto.Window, mask *xwm.Mask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: "ShapeBounding", Window: w})
	if s.NoShape {
		return xwm.ErrNoShape
	}
	if s.FailShape != nil {
		return s.FailShape
	}
	s.Bounding[w] = mask
	return nil
}

func (s *Server) ShapeInputEmpty(w xproto.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: "ShapeInputEmpty", Window: w})
	if s.NoShape {
		return xwm.ErrNoShape
	}
	if s.FailShape != nil {
		return s.FailShape
	}
	s.InputEmpty[w] = true
	return nil
}

func (s *Server) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: "Sync"})
	return nil
}

var _ xwm.X = (*Server)(nil)
