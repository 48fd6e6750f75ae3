package motion

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMalformedKeyframes reports a keyframe list that is empty, not
	// frame-ascending, or has gaps between segments.
	ErrMalformedKeyframes = errors.New("motion: malformed keyframes")

	// ErrUnresolvedAsset reports a layer referencing an asset id that the
	// document does not define.
	ErrUnresolvedAsset = errors.New("motion: unresolved asset reference")

	// ErrShapeMismatch reports an attempt to interpolate between paths with
	// different vertex counts.
	ErrShapeMismatch = errors.New("motion: path vertex count mismatch")

	// ErrInvalidMaskMode reports an unrecognized mask mode string.
	ErrInvalidMaskMode = errors.New("motion: invalid mask mode")
)

// Keyframe is one segment of an animated property's timeline. The segment is
// inert when StartFrame == EndFrame and is never selected by Evaluate.
type Keyframe[V any] struct {
	StartFrame float64
	EndFrame   float64
	From       V
	To         V
	Easing     EaseFunc
	Hold       bool // keep From for the whole segment
}

// LerpFunc interpolates between two values of one value domain at t in [0, 1].
type LerpFunc[V any] func(from, to V, t float64) (V, error)

// frameTolerance absorbs float noise when checking segment contiguity.
const frameTolerance = 1e-6

// ValidateKeyframes checks that the list is non-empty, that every segment
// runs forward, and that each segment starts where the previous one ended.
func ValidateKeyframes[V any](frames []Keyframe[V]) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: empty list", ErrMalformedKeyframes)
	}
	for i, k := range frames {
		if math.IsNaN(k.StartFrame) || math.IsNaN(k.EndFrame) {
			return fmt.Errorf("%w: segment %d has NaN bounds", ErrMalformedKeyframes, i)
		}
		if k.EndFrame < k.StartFrame {
			return fmt.Errorf("%w: segment %d ends at %v before it starts at %v",
				ErrMalformedKeyframes, i, k.EndFrame, k.StartFrame)
		}
		if i > 0 && math.Abs(frames[i-1].EndFrame-k.StartFrame) > frameTolerance {
			return fmt.Errorf("%w: segment %d starts at %v, previous ended at %v",
				ErrMalformedKeyframes, i, k.StartFrame, frames[i-1].EndFrame)
		}
	}
	return nil
}

// Evaluate returns the value of a keyframe list at frame.
//
// Frames before the first segment return its From, frames at or after the
// last segment's end return its To. Otherwise the containing segment is
// eased and interpolated with lerp. Evaluate has no side effects.
func Evaluate[V any](frames []Keyframe[V], frame float64, lerp LerpFunc[V]) (V, error) {
	if len(frames) == 0 {
		var zero V
		return zero, fmt.Errorf("%w: empty list", ErrMalformedKeyframes)
	}

	first := &frames[0]
	if frame < first.StartFrame {
		return first.From, nil
	}
	last := &frames[len(frames)-1]
	if frame >= last.EndFrame {
		return last.To, nil
	}

	for i := range frames {
		k := &frames[i]
		if k.StartFrame == k.EndFrame {
			continue
		}
		if frame < k.StartFrame || frame >= k.EndFrame {
			continue
		}
		if k.Hold {
			return k.From, nil
		}
		ratio := (frame - k.StartFrame) / (k.EndFrame - k.StartFrame)
		return lerp(k.From, k.To, applyEase(k.Easing, ratio))
	}

	// Only reachable for gapped lists; settle on the nearest earlier segment.
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].EndFrame <= frame {
			return frames[i].To, nil
		}
	}
	return first.From, nil
}

// LerpScalar interpolates two numbers.
func LerpScalar(from, to float64, t float64) (float64, error) {
	return lerp(from, to, t), nil
}

// LerpVec2 interpolates two points component-wise.
func LerpVec2(from, to Vec2, t float64) (Vec2, error) {
	return lerpVec2(from, to, t), nil
}

func lerpVec2(a, b Vec2, t float64) Vec2 {
	return Vec2{lerp(a.X, b.X, t), lerp(a.Y, b.Y, t)}
}

// LerpColor interpolates each RGB channel linearly, and alpha alongside.
func LerpColor(from, to Color, t float64) (Color, error) {
	c := from.rgb().BlendRgb(to.rgb(), t)
	return Color{c.R, c.G, c.B, lerp(from.A, to.A, t)}, nil
}
