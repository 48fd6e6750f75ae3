package motion

import (
	"math"

	fease "github.com/fogleman/ease"
	"github.com/tanema/gween/ease"
)

// EaseFunc maps normalized segment progress t in [0, 1] to eased progress.
// A nil EaseFunc is treated as Linear everywhere in this package.
type EaseFunc func(t float64) float64

// Linear returns t unchanged.
func Linear(t float64) float64 {
	return t
}

// Hold keeps the start value for the whole segment and jumps at t == 1.
func Hold(t float64) float64 {
	if t >= 1 {
		return 1
	}
	return 0
}

// bezierEpsilon is the x tolerance used when solving for the curve parameter.
const bezierEpsilon = 1e-7

// CubicBezier returns an easing function matching CSS cubic-bezier(). The
// curve runs from (0,0) to (1,1) with control points (p1x,p1y) and (p2x,p2y).
// The x control values are clamped to [0, 1] so the curve stays a function of
// time. NaN or infinite control points yield Linear.
func CubicBezier(p1x, p1y, p2x, p2y float64) EaseFunc {
	for _, v := range [4]float64{p1x, p1y, p2x, p2y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Linear
		}
	}
	p1x = clamp01(p1x)
	p2x = clamp01(p2x)
	if p1x == p1y && p2x == p2y {
		return Linear
	}

	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return sampleCurve(p1y, p2y, solveCurveX(p1x, p2x, t))
	}
}

// solveCurveX finds the curve parameter u whose x equals t. Newton-Raphson
// converges in a few steps for most curves; bisection covers flat spots.
func solveCurveX(x1, x2, t float64) float64 {
	u := t
	for range 8 {
		x := sampleCurve(x1, x2, u) - t
		if math.Abs(x) < bezierEpsilon {
			return u
		}
		dx := sampleCurveDerivative(x1, x2, u)
		if math.Abs(dx) < 1e-6 {
			break
		}
		u -= x / dx
	}

	lo, hi := 0.0, 1.0
	u = clamp01(u)
	for range 64 {
		x := sampleCurve(x1, x2, u) - t
		if math.Abs(x) < bezierEpsilon {
			break
		}
		if x > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) * 0.5
	}
	return u
}

func sampleCurve(a, b, u float64) float64 {
	inv := 1 - u
	return 3*inv*inv*u*a + 3*inv*u*u*b + u*u*u
}

func sampleCurveDerivative(a, b, u float64) float64 {
	inv := 1 - u
	return 3*inv*inv*a + 6*inv*u*(b-a) + 3*u*u*(1-b)
}

// FromTween adapts a gween easing function to an EaseFunc. gween evaluates in
// float32, so results carry float32 precision.
func FromTween(fn ease.TweenFunc) EaseFunc {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

var easePresets = map[string]EaseFunc{
	"linear":       Linear,
	"hold":         Hold,
	"ease":         CubicBezier(0.25, 0.1, 0.25, 1),
	"easeIn":       CubicBezier(0.42, 0, 1, 1),
	"easeOut":      CubicBezier(0, 0, 0.58, 1),
	"easeInOut":    CubicBezier(0.42, 0, 0.58, 1),
	"inQuad":       fease.InQuad,
	"outQuad":      fease.OutQuad,
	"inOutQuad":    fease.InOutQuad,
	"inCubic":      fease.InCubic,
	"outCubic":     fease.OutCubic,
	"inOutCubic":   fease.InOutCubic,
	"inSine":       fease.InSine,
	"outSine":      fease.OutSine,
	"inOutSine":    fease.InOutSine,
	"inExpo":       fease.InExpo,
	"outExpo":      fease.OutExpo,
	"inOutExpo":    fease.InOutExpo,
	"inCirc":       fease.InCirc,
	"outCirc":      fease.OutCirc,
	"inOutCirc":    fease.InOutCirc,
	"inBack":       fease.InBack,
	"outBack":      fease.OutBack,
	"inOutBack":    fease.InOutBack,
	"inElastic":    fease.InElastic,
	"outElastic":   fease.OutElastic,
	"inOutElastic": fease.InOutElastic,
	"inBounce":     fease.InBounce,
	"outBounce":    fease.OutBounce,
	"inOutBounce":  fease.InOutBounce,
	"outInQuad":    FromTween(ease.OutInQuad),
	"outInCubic":   FromTween(ease.OutInCubic),
	"outInSine":    FromTween(ease.OutInSine),
	"outInExpo":    FromTween(ease.OutInExpo),
	"outInCirc":    FromTween(ease.OutInCirc),
	"outInBack":    FromTween(ease.OutInBack),
	"outInBounce":  FromTween(ease.OutInBounce),
}

// EasePreset looks up a named easing curve ("linear", "easeInOut",
// "outBounce", ...). Hosts use it to build keyframes programmatically.
func EasePreset(name string) (EaseFunc, bool) {
	fn, ok := easePresets[name]
	return fn, ok
}

func applyEase(fn EaseFunc, t float64) float64 {
	if fn == nil {
		return t
	}
	return fn(t)
}
