package raster

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/phanxgames/motion"
)

func TestBufferPoolReuse(t *testing.T) {
	var p bufferPool
	p.reset(image.Rect(0, 0, 4, 4))

	a := p.acquireRGBA()
	a.Pix[0] = 9
	p.releaseRGBA(a)
	b := p.acquireRGBA()
	if b != a {
		t.Error("released buffer was not reused")
	}
	if b.Pix[0] != 0 {
		t.Error("reused buffer was not cleared")
	}

	// Two live buffers are distinct.
	c := p.acquireRGBA()
	if c == b {
		t.Error("acquire returned a buffer that is still in use")
	}

	m := p.acquireAlpha()
	m.Pix[3] = 1
	p.releaseAlpha(m)
	if got := p.acquireAlpha(); got != m || got.Pix[3] != 0 {
		t.Error("alpha buffer not reused or not cleared")
	}
}

func TestBufferPoolDropsStaleSizes(t *testing.T) {
	var p bufferPool
	p.reset(image.Rect(0, 0, 4, 4))
	old := p.acquireRGBA()
	p.reset(image.Rect(0, 0, 8, 8))
	p.releaseRGBA(old)
	if got := p.acquireRGBA(); got == old || got.Rect.Dx() != 8 {
		t.Errorf("pool returned a buffer of %v", got.Rect)
	}
}

func TestRendererResize(t *testing.T) {
	r := New(0, -5)
	if b := r.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("degenerate size gave %v", b)
	}
	r.Resize(30, 20)
	if b := r.Image().Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("Resize gave %v", b)
	}
}

func TestMul8(t *testing.T) {
	tests := []struct{ a, b, want uint8 }{
		{255, 255, 255},
		{255, 0, 0},
		{0, 200, 0},
		{128, 255, 128},
		{255, 64, 64},
	}
	for _, tt := range tests {
		if got := mul8(tt.a, tt.b); got != tt.want {
			t.Errorf("mul8(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCombineMask(t *testing.T) {
	tests := []struct {
		mode motion.MaskMode
		acc  uint8
		cov  uint8
		want uint8
	}{
		{motion.MaskAdditive, 100, 200, 200},
		{motion.MaskLighten, 100, 50, 100},
		{motion.MaskSubtract, 255, 255, 0},
		{motion.MaskSubtract, 255, 0, 255},
		{motion.MaskIntersect, 100, 200, 100},
		{motion.MaskDarken, 100, 50, 50},
		{motion.MaskDifference, 100, 250, 150},
		{motion.MaskDifference, 250, 100, 150},
		{motion.MaskNone, 42, 255, 42},
	}
	for _, tt := range tests {
		acc := []uint8{tt.acc}
		combineMask(acc, []uint8{tt.cov}, tt.mode)
		if acc[0] != tt.want {
			t.Errorf("%v(%d, %d) = %d, want %d", tt.mode, tt.acc, tt.cov, acc[0], tt.want)
		}
	}
}

func TestXorCoverage(t *testing.T) {
	acc := []uint8{0, 255, 255, 0}
	xorCoverage(acc, []uint8{255, 255, 0, 0})
	want := []uint8{255, 0, 255, 0}
	for i := range want {
		if acc[i] != want[i] {
			t.Errorf("xor[%d] = %d, want %d", i, acc[i], want[i])
		}
	}
}

func TestSeparableBlend(t *testing.T) {
	tests := []struct {
		mode   motion.BlendMode
		cs, cd float64
		want   float64
	}{
		{motion.BlendMultiply, 0.5, 0.5, 0.25},
		{motion.BlendScreen, 0.5, 0.5, 0.75},
		{motion.BlendOverlay, 1, 0.25, 0.5},
		{motion.BlendDarken, 0.3, 0.6, 0.3},
		{motion.BlendLighten, 0.3, 0.6, 0.6},
		{motion.BlendColorDodge, 0.5, 0.25, 0.5},
		{motion.BlendColorDodge, 1, 0.25, 1},
		{motion.BlendColorBurn, 0.5, 0.75, 0.5},
		{motion.BlendColorBurn, 0, 0.75, 0},
		{motion.BlendHardLight, 0.25, 0.5, 0.25},
		{motion.BlendSoftLight, 0.5, 0.3, 0.3},
		{motion.BlendDifference, 0.2, 0.7, 0.5},
		{motion.BlendExclusion, 0.5, 0.5, 0.5},
	}
	for _, tt := range tests {
		fn := separableBlend(tt.mode)
		if fn == nil {
			t.Errorf("mode %d has no blend function", tt.mode)
			continue
		}
		if got := fn(tt.cs, tt.cd); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("mode %d (%v, %v) = %v, want %v", tt.mode, tt.cs, tt.cd, got, tt.want)
		}
	}
	for _, m := range []motion.BlendMode{motion.BlendNormal, motion.BlendHue, motion.BlendSaturation,
		motion.BlendColor, motion.BlendLuminosity, motion.BlendAdd} {
		if separableBlend(m) != nil {
			t.Errorf("mode %d should not be separable", m)
		}
	}
}

func TestFrameFileName(t *testing.T) {
	tests := []struct {
		label string
		frame int
		want  string
	}{
		{"intro", 7, "intro_00007.png"},
		{"my anim/v1.2", 120, "my_anim_v1.2_00120.png"},
		{"  ", 0, "frame_00000.png"},
	}
	for _, tt := range tests {
		if got := FrameFileName(tt.label, tt.frame); got != tt.want {
			t.Errorf("FrameFileName(%q, %d) = %q, want %q", tt.label, tt.frame, got, tt.want)
		}
	}
}

func TestNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	copy(src.Pix, []uint8{64, 0, 0, 128, 10, 20, 30, 255})
	got := NRGBA(src)
	if got.Pix[0] != 127 || got.Pix[3] != 128 {
		t.Errorf("half-alpha pixel = %v", got.Pix[:4])
	}
	if got.Pix[4] != 10 || got.Pix[5] != 20 || got.Pix[6] != 30 || got.Pix[7] != 255 {
		t.Errorf("opaque pixel = %v", got.Pix[4:8])
	}
}

func TestSaveFrame(t *testing.T) {
	r := New(8, 6)
	root := rectNode("box", 0, 0, 8, 6, red)
	motion.UpdateWorld(root, motion.IdentityTransform(), 1)
	if err := r.Render(root); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path, err := r.SaveFrame(dir, "shot", 3)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "shot_00003.png") {
		t.Errorf("path = %q", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("decoded bounds = %v", b)
	}
	if cr, _, _, ca := img.At(4, 3).RGBA(); cr != 0xffff || ca != 0xffff {
		t.Errorf("decoded pixel = %v", img.At(4, 3))
	}

	if _, err := r.SaveFrame(filepath.Join(dir, "missing"), "shot", 1); err == nil {
		t.Error("SaveFrame into a missing directory should fail")
	}
}
