package motion

import "fmt"

// Property is an animated value of one value domain: either a static value
// or a validated keyframe list. The zero Property is static with V's zero
// value.
type Property[V any] struct {
	static   V
	frames   []Keyframe[V]
	lerp     LerpFunc[V]
	animated bool
}

// StaticProperty returns a property that evaluates to v at every frame.
func StaticProperty[V any](v V) Property[V] {
	return Property[V]{static: v}
}

// AnimatedProperty validates frames and returns an animated property.
//
// A malformed list, or a segment that lerp rejects (such as paths with
// mismatched vertex counts), degrades the property to a static one holding
// the first keyframe's From. The returned error describes the rejection; the
// returned property is always usable.
func AnimatedProperty[V any](frames []Keyframe[V], lerp LerpFunc[V]) (Property[V], error) {
	if len(frames) == 0 {
		var zero V
		return StaticProperty(zero), fmt.Errorf("%w: empty list", ErrMalformedKeyframes)
	}
	fallback := StaticProperty(frames[0].From)
	if err := ValidateKeyframes(frames); err != nil {
		return fallback, err
	}
	for i := range frames {
		if _, err := lerp(frames[i].From, frames[i].To, 0); err != nil {
			return fallback, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return Property[V]{
		static:   frames[0].From,
		frames:   append([]Keyframe[V](nil), frames...),
		lerp:     lerp,
		animated: true,
	}, nil
}

// IsAnimated reports whether the property has keyframes.
func (p Property[V]) IsAnimated() bool {
	return p.animated
}

// Keyframes returns the keyframe list. The returned slice MUST NOT be mutated.
func (p Property[V]) Keyframes() []Keyframe[V] {
	return p.frames
}

// Value returns the property's value at frame. Static properties return the
// same value for every frame.
func (p Property[V]) Value(frame float64) V {
	if !p.animated {
		return p.static
	}
	v, err := Evaluate(p.frames, frame, p.lerp)
	if err != nil {
		return p.static
	}
	return v
}

// Clone returns a property with its own copy of the keyframe list. Values
// that have a Clone method (such as PathShape) are deep-copied too.
func (p Property[V]) Clone() Property[V] {
	out := p
	out.static = cloneValue(p.static)
	if p.frames != nil {
		out.frames = make([]Keyframe[V], len(p.frames))
		for i, k := range p.frames {
			k.From = cloneValue(k.From)
			k.To = cloneValue(k.To)
			out.frames[i] = k
		}
	}
	return out
}

func cloneValue[V any](v V) V {
	if c, ok := any(v).(interface{ Clone() V }); ok {
		return c.Clone()
	}
	return v
}

// SeparatedProperty is a 2D value whose axes are animated independently.
type SeparatedProperty struct {
	X, Y Property[float64]
}

// Value evaluates both axes at frame.
func (s *SeparatedProperty) Value(frame float64) Vec2 {
	return Vec2{s.X.Value(frame), s.Y.Value(frame)}
}

// IsAnimated reports whether either axis has keyframes.
func (s *SeparatedProperty) IsAnimated() bool {
	return s.X.IsAnimated() || s.Y.IsAnimated()
}

// Clone returns an independent copy.
func (s *SeparatedProperty) Clone() *SeparatedProperty {
	if s == nil {
		return nil
	}
	return &SeparatedProperty{X: s.X.Clone(), Y: s.Y.Clone()}
}
