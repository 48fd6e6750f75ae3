package raster

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// NRGBA converts a premultiplied RGBA image to straight alpha, the layout
// PNG stores.
func NRGBA(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	img := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		si := src.PixOffset(b.Min.X, y)
		di := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := src.Pix[si], src.Pix[si+1], src.Pix[si+2], src.Pix[si+3]
			if a > 0 && a < 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				bl = uint8(min(int(bl)*255/int(a), 255))
			}
			img.Pix[di] = r
			img.Pix[di+1] = g
			img.Pix[di+2] = bl
			img.Pix[di+3] = a
			si += 4
			di += 4
		}
	}
	return img
}

// WritePNG encodes img to a PNG file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// SaveFrame writes the renderer's current image to dir as
// <label>_<frame>.png and returns the file path.
func (r *Renderer) SaveFrame(dir, label string, frame int) (string, error) {
	path := filepath.Join(dir, FrameFileName(label, frame))
	if err := WritePNG(path, NRGBA(r.dst)); err != nil {
		return "", err
	}
	return path, nil
}

// FrameFileName returns the file name SaveFrame uses.
func FrameFileName(label string, frame int) string {
	return fmt.Sprintf("%s_%05d.png", sanitizeLabel(label), frame)
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "frame" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "frame"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
