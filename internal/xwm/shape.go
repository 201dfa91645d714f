package xwm

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ItsNotGoodName/x-winwrap/internal/config"
	"github.com/jezek/xgb/xproto"
	"golang.org/x/image/vector"
)

// kappa places the control points of a cubic Bézier quarter ellipse.
const kappa = 0.5522847498

// visibleCoverage is the minimum coverage of a visible mask pixel.
const visibleCoverage = 0x80

// Mask is a 1-bit clip mask. It is scratch data that only lives until it is
// combined into the window's bounding shape.
type Mask struct {
	Width  int
	Height int
	alpha  *image.Alpha
}

// NewMask rasterizes the silhouette of shape over a width x height window. It
// returns nil for rectangles, which need no mask.
func NewMask(shape config.Shape, width, height int) *Mask {
	w, h := float32(width), float32(height)

	z := vector.NewRasterizer(width, height)
	switch shape {
	case config.ShapeCircle:
		cx, cy, rx, ry := w/2, h/2, w/2, h/2
		z.MoveTo(cx+rx, cy)
		z.CubeTo(cx+rx, cy+kappa*ry, cx+kappa*rx, cy+ry, cx, cy+ry)
		z.CubeTo(cx-kappa*rx, cy+ry, cx-rx, cy+kappa*ry, cx-rx, cy)
		z.CubeTo(cx-rx, cy-kappa*ry, cx-kappa*rx, cy-ry, cx, cy-ry)
		z.CubeTo(cx+kappa*rx, cy-ry, cx+rx, cy-kappa*ry, cx+rx, cy)
		z.ClosePath()
	case config.ShapeTriangle:
		z.MoveTo(0, h)
		z.LineTo(w/2, 0)
		z.LineTo(w, h)
		z.ClosePath()
	default:
		return nil
	}

	alpha := image.NewAlpha(image.Rect(0, 0, width, height))
	z.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})

	return &Mask{
		Width:  width,
		Height: height,
		alpha:  alpha,
	}
}

// Visible reports whether the pixel at x, y is inside the silhouette.
func (m *Mask) Visible(x, y int) bool {
	return m.alpha.AlphaAt(x, y).A >= visibleCoverage
}

// Bitmap packs the mask into rows of scanlinePad bits for a depth 1 ZPixmap
// PutImage. bitOrder is the server's bitmap bit order.
func (m *Mask) Bitmap(bitOrder byte, scanlinePad int) (int, []byte) {
	if scanlinePad < 8 {
		scanlinePad = 8
	}
	stride := (m.Width + scanlinePad - 1) / scanlinePad * scanlinePad / 8

	data := make([]byte, stride*m.Height)
	for y := 0; y < m.Height; y++ {
		row := data[y*stride:]
		for x := 0; x < m.Width; x++ {
			if !m.Visible(x, y) {
				continue
			}
			if bitOrder == xproto.ImageOrderMSBFirst {
				row[x/8] |= 0x80 >> (x % 8)
			} else {
				row[x/8] |= 1 << (x % 8)
			}
		}
	}

	return stride, data
}

// ApplyShape clips the target to shape and, when noInput is set, makes it
// transparent to pointer input. The two are independent and both are tried
// before the joined errors are returned.
func ApplyShape(x X, t Target, shape config.Shape, noInput bool) error {
	var errs []error

	if noInput {
		if err := x.ShapeInputEmpty(t.WID); err != nil {
			if errors.Is(err, ErrNoShape) {
				slog.Warn("Window will receive input", "error", err)
			} else {
				errs = append(errs, fmt.Errorf("couldn't clear input shape: %w", err))
			}
		}
	}

	if mask := NewMask(shape, int(t.Width), int(t.Height)); mask != nil {
		if err := x.ShapeBounding(t.WID, mask); err != nil {
			if errors.Is(err, ErrNoShape) {
				slog.Warn("Window will stay rectangular", "shape", shape.String(), "error", err)
			} else {
				errs = append(errs, fmt.Errorf("couldn't set %s shape: %w", shape, err))
			}
		}
	}

	return errors.Join(errs...)
}
