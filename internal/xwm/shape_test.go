package xwm

import (
	"testing"

	"github.com/ItsNotGoodName/x-winwrap/internal/config"
	"github.com/jezek/xgb/xproto"
)

func TestNewMaskRectangle(t *testing.T) {
	if m := NewMask(config.ShapeRectangle, 100, 100); m != nil {
		t.Fatalf("NewMask(rectangle) = %v, want nil", m)
	}
}

func TestNewMaskCircle(t *testing.T) {
	m := NewMask(config.ShapeCircle, 100, 100)
	if m == nil {
		t.Fatal("NewMask(circle) = nil")
	}

	inside := [][2]int{{50, 50}, {50, 2}, {2, 50}, {97, 50}, {50, 97}}
	for _, p := range inside {
		if !m.Visible(p[0], p[1]) {
			t.Errorf("Visible(%d, %d) = false, want true", p[0], p[1])
		}
	}

	outside := [][2]int{{0, 0}, {99, 0}, {0, 99}, {99, 99}, {10, 10}}
	for _, p := range outside {
		if m.Visible(p[0], p[1]) {
			t.Errorf("Visible(%d, %d) = true, want false", p[0], p[1])
		}
	}
}

func TestNewMaskEllipse(t *testing.T) {
	m := NewMask(config.ShapeCircle, 200, 50)

	if !m.Visible(100, 25) || !m.Visible(3, 25) || !m.Visible(196, 25) {
		t.Error("ellipse should span the full width")
	}
	if m.Visible(3, 3) || m.Visible(196, 46) {
		t.Error("ellipse corners should be clipped")
	}
}

func TestNewMaskTriangle(t *testing.T) {
	m := NewMask(config.ShapeTriangle, 100, 100)
	if m == nil {
		t.Fatal("NewMask(triangle) = nil")
	}

	inside := [][2]int{{50, 5}, {50, 50}, {2, 98}, {97, 98}, {50, 98}}
	for _, p := range inside {
		if !m.Visible(p[0], p[1]) {
			t.Errorf("Visible(%d, %d) = false, want true", p[0], p[1])
		}
	}

	outside := [][2]int{{0, 0}, {99, 0}, {10, 50}, {90, 50}, {20, 10}}
	for _, p := range outside {
		if m.Visible(p[0], p[1]) {
			t.Errorf("Visible(%d, %d) = true, want false", p[0], p[1])
		}
	}
}

func TestMaskBitmap(t *testing.T) {
	m := NewMask(config.ShapeCircle, 20, 20)

	for _, bitOrder := range []byte{xproto.ImageOrderLSBFirst, xproto.ImageOrderMSBFirst} {
		for _, pad := range []int{8, 16, 32} {
			stride, data := m.Bitmap(bitOrder, pad)

			if want := (20 + pad - 1) / pad * pad / 8; stride != want {
				t.Fatalf("Bitmap(%d, %d) stride = %d, want %d", bitOrder, pad, stride, want)
			}
			if len(data) != stride*20 {
				t.Fatalf("Bitmap(%d, %d) len = %d, want %d", bitOrder, pad, len(data), stride*20)
			}

			for y := 0; y < 20; y++ {
				for x := 0; x < 20; x++ {
					b := data[y*stride+x/8]
					var set bool
					if bitOrder == xproto.ImageOrderMSBFirst {
						set = b&(0x80>>(x%8)) != 0
					} else {
						set = b&(1<<(x%8)) != 0
					}
					if set != m.Visible(x, y) {
						t.Fatalf("Bitmap(%d, %d) bit (%d, %d) = %v, want %v", bitOrder, pad, x, y, set, m.Visible(x, y))
					}
				}
			}
		}
	}
}

func TestMaskBitmapPadding(t *testing.T) {
	m := NewMask(config.ShapeTriangle, 9, 4)

	stride, data := m.Bitmap(xproto.ImageOrderLSBFirst, 32)
	if stride != 4 {
		t.Fatalf("stride = %d, want 4", stride)
	}
	for y := 0; y < 4; y++ {
		for _, b := range data[y*stride+2 : (y+1)*stride] {
			if b != 0 {
				t.Fatalf("row %d padding = %08b, want 0", y, b)
			}
		}
	}
}
