package raster

import "image"

// bufferPool recycles offscreen buffers of the target size. Isolated nodes
// nest, so several buffers can be live at once; the pool grows to the
// deepest nesting seen and stays there.
type bufferPool struct {
	rect  image.Rectangle
	rgba  []*image.RGBA
	alpha []*image.Alpha
}

func (p *bufferPool) reset(rect image.Rectangle) {
	p.rect = rect
	p.rgba = nil
	p.alpha = nil
}

// acquireRGBA returns a cleared buffer.
func (p *bufferPool) acquireRGBA() *image.RGBA {
	if n := len(p.rgba); n > 0 {
		img := p.rgba[n-1]
		p.rgba = p.rgba[:n-1]
		clear(img.Pix)
		return img
	}
	return image.NewRGBA(p.rect)
}

func (p *bufferPool) releaseRGBA(img *image.RGBA) {
	if img.Rect != p.rect {
		return
	}
	p.rgba = append(p.rgba, img)
}

// acquireAlpha returns a cleared mask.
func (p *bufferPool) acquireAlpha() *image.Alpha {
	if n := len(p.alpha); n > 0 {
		img := p.alpha[n-1]
		p.alpha = p.alpha[:n-1]
		clear(img.Pix)
		return img
	}
	return image.NewAlpha(p.rect)
}

func (p *bufferPool) releaseAlpha(img *image.Alpha) {
	if img.Rect != p.rect {
		return
	}
	p.alpha = append(p.alpha, img)
}
