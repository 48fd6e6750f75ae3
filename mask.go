package motion

import "fmt"

// MaskMode is the boolean combination of a mask with the masks before it on
// the same layer.
type MaskMode uint8

const (
	MaskNone       MaskMode = iota // mask has no effect
	MaskAdditive                   // union
	MaskSubtract                   // difference
	MaskIntersect                  // intersection
	MaskLighten                    // tag only, passed to the renderer
	MaskDarken                     // tag only, passed to the renderer
	MaskDifference                 // tag only, passed to the renderer
)

// ParseMaskMode maps a document mode code to a MaskMode. Unknown codes fall
// back to MaskAdditive and return ErrInvalidMaskMode.
func ParseMaskMode(code string) (MaskMode, error) {
	switch code {
	case "n":
		return MaskNone, nil
	case "a", "":
		return MaskAdditive, nil
	case "s":
		return MaskSubtract, nil
	case "i":
		return MaskIntersect, nil
	case "l":
		return MaskLighten, nil
	case "d":
		return MaskDarken, nil
	case "f":
		return MaskDifference, nil
	}
	return MaskAdditive, fmt.Errorf("%w: %q", ErrInvalidMaskMode, code)
}

// String returns the document code of the mode.
func (m MaskMode) String() string {
	switch m {
	case MaskNone:
		return "n"
	case MaskAdditive:
		return "a"
	case MaskSubtract:
		return "s"
	case MaskIntersect:
		return "i"
	case MaskLighten:
		return "l"
	case MaskDarken:
		return "d"
	case MaskDifference:
		return "f"
	}
	return "?"
}

// Mask is one entry of a layer's mask list. Opacity is in percent.
type Mask struct {
	Name     string
	Mode     MaskMode
	Inverted bool
	Path     Property[PathShape]
	Opacity  Property[float64]
}

// Clone returns a deep copy with its own keyframe state.
func (m Mask) Clone() Mask {
	out := m
	out.Path = m.Path.Clone()
	out.Opacity = m.Opacity.Clone()
	return out
}

// ClipPath is one resolved mask. Inverted masks carry the viewport rectangle
// before the mask path and use the even-odd rule, so the filled area is
// everything except the path.
type ClipPath struct {
	Paths    []PathShape
	Rule     FillRule
	Mode     MaskMode
	Inverted bool
	Opacity  float64
}

// Clip is the clip geometry attached to a node for one frame. Paths are in
// the clipped node's local space. When Matte is set the node is also clipped
// by the matte node's rendered alpha or luma. The matte node lives in the
// space of the composition that owns both layers, whose node is Space, below
// the local transforms of its parent layers' nodes in Parents (outermost
// first).
type Clip struct {
	Paths     []ClipPath
	Matte     *Node
	MatteType MatteType
	Space     *Node
	Parents   []*Node
}

// ComposeMasks evaluates masks at frame and returns their clip geometry, or
// nil when no mask has an effect. viewport is the rectangle used to invert
// masks, in the masked layer's local space.
func ComposeMasks(masks []Mask, frame float64, viewport Rect) *Clip {
	var clip *Clip
	for i := range masks {
		m := &masks[i]
		if m.Mode == MaskNone {
			continue
		}
		path := m.Path.Value(frame)
		if path.Len() == 0 {
			continue
		}
		if !path.Closed {
			path = path.Clone()
			path.Closed = true
		}
		cp := ClipPath{
			Mode:     m.Mode,
			Inverted: m.Inverted,
			Opacity:  clamp01(m.Opacity.Value(frame) / 100),
			Rule:     FillNonZero,
		}
		if m.Inverted {
			vp := RectPath(
				Vec2{viewport.X + viewport.Width/2, viewport.Y + viewport.Height/2},
				Vec2{viewport.Width, viewport.Height}, 0)
			cp.Paths = []PathShape{vp, path}
			cp.Rule = FillEvenOdd
		} else {
			cp.Paths = []PathShape{path}
		}
		if clip == nil {
			clip = &Clip{}
		}
		clip.Paths = append(clip.Paths, cp)
	}
	return clip
}

// Compose returns the track-matte clip that matte applies to target at
// frame, or nil when the matte is outside its own visibility window (the
// target then renders unclipped for that frame). The caller must have
// updated matte for frame first.
func Compose(matte, target *Layer, frame float64) *Clip {
	if matte == nil || target == nil || target.MatteType == MatteNone {
		return nil
	}
	if !matte.VisibleAt(frame) {
		return nil
	}
	return &Clip{Matte: matte.node, MatteType: target.MatteType}
}

// mergeClips combines a layer's own mask clip with its track-matte clip.
func mergeClips(masks, matte *Clip) *Clip {
	switch {
	case masks == nil:
		return matte
	case matte == nil:
		return masks
	}
	return &Clip{
		Paths:     masks.Paths,
		Matte:     matte.Matte,
		MatteType: matte.MatteType,
		Space:     matte.Space,
		Parents:   matte.Parents,
	}
}
