package raster

import (
	"image"

	"github.com/phanxgames/motion"
)

// clipMask builds the coverage of n's clip: its masks combined in order,
// multiplied by the track matte when one is set. It returns nil when the
// clip has no effect.
func (r *Renderer) clipMask(n *motion.Node, view [6]float64) *image.Alpha {
	clip := n.Clip
	var acc *image.Alpha

	if len(clip.Paths) > 0 {
		acc = r.pool.acquireAlpha()
		if startsFull(clip.Paths[0].Mode) {
			fillAlpha(acc.Pix, 0xff)
		}
		m := motion.MultiplyAffine(view, n.WorldTransform())
		for i := range clip.Paths {
			cp := &clip.Paths[i]
			cov := r.coverage(cp.Paths, m, cp.Rule)
			if cp.Opacity < 1 {
				scaleAlpha(cov.Pix, cp.Opacity)
			}
			combineMask(acc.Pix, cov.Pix, cp.Mode)
			r.pool.releaseAlpha(cov)
		}
	}

	if clip.Matte != nil {
		matte := r.matteCoverage(clip.Matte, clip.MatteType, view)
		if acc == nil {
			return matte
		}
		multiplyAlpha(acc.Pix, matte.Pix)
		r.pool.releaseAlpha(matte)
	}
	return acc
}

// matteCoverage renders the matte subtree and reduces it to alpha or
// luminance coverage.
func (r *Renderer) matteCoverage(matte *motion.Node, mt motion.MatteType, view [6]float64) *image.Alpha {
	img := r.pool.acquireRGBA()
	defer r.pool.releaseRGBA(img)
	r.drawNode(img, matte, view)

	cov := r.pool.acquireAlpha()
	for i, j := 0, 0; i < len(cov.Pix); i, j = i+1, j+4 {
		var v uint8
		if mt.Luma() {
			// Premultiplied channels give luminance over transparent black.
			l := 0.2126*float64(img.Pix[j]) + 0.7152*float64(img.Pix[j+1]) + 0.0722*float64(img.Pix[j+2])
			v = uint8(min(l+0.5, 255))
		} else {
			v = img.Pix[j+3]
		}
		if mt.Inverted() {
			v = 0xff - v
		}
		cov.Pix[i] = v
	}
	return cov
}

// startsFull reports whether a mask list beginning with mode starts from a
// fully covered layer rather than an empty one.
func startsFull(mode motion.MaskMode) bool {
	switch mode {
	case motion.MaskSubtract, motion.MaskIntersect, motion.MaskDarken:
		return true
	}
	return false
}

// combineMask merges the coverage of one mask into the accumulated coverage.
func combineMask(acc, cov []uint8, mode motion.MaskMode) {
	for i := range acc {
		a, c := acc[i], cov[i]
		switch mode {
		case motion.MaskAdditive, motion.MaskLighten:
			acc[i] = max(a, c)
		case motion.MaskSubtract:
			acc[i] = mul8(a, 0xff-c)
		case motion.MaskIntersect, motion.MaskDarken:
			acc[i] = min(a, c)
		case motion.MaskDifference:
			if a > c {
				acc[i] = a - c
			} else {
				acc[i] = c - a
			}
		}
	}
}

// xorCoverage folds one sub-path into even-odd coverage: overlapping areas
// cancel.
func xorCoverage(acc, cov []uint8) {
	for i := range acc {
		a, c := int(acc[i]), int(cov[i])
		acc[i] = uint8(a + c - 2*a*c/0xff)
	}
}

func multiplyAlpha(acc, m []uint8) {
	for i := range acc {
		acc[i] = mul8(acc[i], m[i])
	}
}

func scaleAlpha(pix []uint8, s float64) {
	k := uint8(s*0xff + 0.5)
	for i := range pix {
		pix[i] = mul8(pix[i], k)
	}
}

func fillAlpha(pix []uint8, v uint8) {
	for i := range pix {
		pix[i] = v
	}
}

// mul8 multiplies two 0..255 fractions with rounding.
func mul8(a, b uint8) uint8 {
	t := uint32(a)*uint32(b) + 0x80
	return uint8((t + t>>8) >> 8)
}
