package raster

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/phanxgames/motion"
)

// composite draws the isolated layer src onto dst through mask (nil means
// fully covered) with the given blend mode.
func composite(dst, src *image.RGBA, mask *image.Alpha, mode motion.BlendMode) {
	b := dst.Bounds()
	blend := separableBlend(mode)
	if blend == nil && mode != motion.BlendAdd {
		if mask == nil {
			draw.Draw(dst, b, src, b.Min, draw.Over)
		} else {
			draw.DrawMask(dst, b, src, b.Min, mask, b.Min, draw.Over)
		}
		return
	}

	for i := 0; i < len(dst.Pix); i += 4 {
		cov := 1.0
		if mask != nil {
			cov = float64(mask.Pix[i/4]) / 0xff
		}
		sa := float64(src.Pix[i+3]) / 0xff * cov
		if sa == 0 {
			continue
		}
		da := float64(dst.Pix[i+3]) / 0xff
		var out [4]float64
		for ch := 0; ch < 3; ch++ {
			cs := float64(src.Pix[i+ch]) / 0xff * cov
			cd := float64(dst.Pix[i+ch]) / 0xff
			if mode == motion.BlendAdd {
				out[ch] = math.Min(1, cs+cd)
				continue
			}
			// W3C compositing with premultiplied inputs.
			mix := 0.0
			if sa > 0 && da > 0 {
				mix = sa * da * blend(cs/sa, cd/da)
			}
			out[ch] = cs*(1-da) + cd*(1-sa) + mix
		}
		if mode == motion.BlendAdd {
			out[3] = math.Min(1, sa+da)
		} else {
			out[3] = sa + da - sa*da
		}
		for ch := 0; ch < 4; ch++ {
			dst.Pix[i+ch] = uint8(math.Max(0, math.Min(1, out[ch]))*0xff + 0.5)
		}
	}
}

// separableBlend returns the per-channel blend function of mode, or nil for
// modes drawn as plain source-over. Hue, saturation, color and luminosity
// are not separable and fall back to source-over.
func separableBlend(mode motion.BlendMode) func(cs, cd float64) float64 {
	switch mode {
	case motion.BlendMultiply:
		return func(cs, cd float64) float64 { return cs * cd }
	case motion.BlendScreen:
		return screen
	case motion.BlendOverlay:
		return func(cs, cd float64) float64 { return hardLight(cd, cs) }
	case motion.BlendDarken:
		return math.Min
	case motion.BlendLighten:
		return math.Max
	case motion.BlendColorDodge:
		return func(cs, cd float64) float64 {
			switch {
			case cd == 0:
				return 0
			case cs >= 1:
				return 1
			}
			return math.Min(1, cd/(1-cs))
		}
	case motion.BlendColorBurn:
		return func(cs, cd float64) float64 {
			switch {
			case cd >= 1:
				return 1
			case cs <= 0:
				return 0
			}
			return 1 - math.Min(1, (1-cd)/cs)
		}
	case motion.BlendHardLight:
		return hardLight
	case motion.BlendSoftLight:
		return softLight
	case motion.BlendDifference:
		return func(cs, cd float64) float64 { return math.Abs(cs - cd) }
	case motion.BlendExclusion:
		return func(cs, cd float64) float64 { return cs + cd - 2*cs*cd }
	}
	return nil
}

func screen(cs, cd float64) float64 {
	return cs + cd - cs*cd
}

func hardLight(cs, cd float64) float64 {
	if cs <= 0.5 {
		return cd * 2 * cs
	}
	return screen(cd, 2*cs-1)
}

func softLight(cs, cd float64) float64 {
	if cs <= 0.5 {
		return cd - (1-2*cs)*cd*(1-cd)
	}
	var d float64
	if cd <= 0.25 {
		d = ((16*cd-12)*cd + 4) * cd
	} else {
		d = math.Sqrt(cd)
	}
	return cd + (2*cs-1)*(d-cd)
}
