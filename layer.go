package motion

import "math"

// Transform holds the five standard animated transform properties. Scale and
// Opacity are in percent, Rotation in degrees, as in the document format.
type Transform struct {
	Anchor        Property[Vec2]
	Position      Property[Vec2]
	PositionSplit *SeparatedProperty // overrides Position when set
	Scale         Property[Vec2]
	Rotation      Property[float64]
	Opacity       Property[float64]
}

// DefaultTransform returns the identity transform: no offset, 100% scale,
// 100% opacity.
func DefaultTransform() Transform {
	return Transform{
		Scale:   StaticProperty(Vec2{100, 100}),
		Opacity: StaticProperty(100.0),
	}
}

// PositionAt returns the position at frame, honoring separated axes.
func (t *Transform) PositionAt(frame float64) Vec2 {
	if t.PositionSplit != nil {
		return t.PositionSplit.Value(frame)
	}
	return t.Position.Value(frame)
}

// IsAnimated reports whether any of the properties has keyframes.
func (t *Transform) IsAnimated() bool {
	if t.PositionSplit != nil && t.PositionSplit.IsAnimated() {
		return true
	}
	return t.Anchor.IsAnimated() || t.Position.IsAnimated() || t.Scale.IsAnimated() ||
		t.Rotation.IsAnimated() || t.Opacity.IsAnimated()
}

// Matrix returns the affine matrix of the transform at frame.
func (t *Transform) Matrix(frame float64) [6]float64 {
	a := t.Anchor.Value(frame)
	p := t.PositionAt(frame)
	s := t.Scale.Value(frame)
	r := t.Rotation.Value(frame)
	return composeTransform(p.X, p.Y, s.X/100, s.Y/100, r*math.Pi/180, a.X, a.Y)
}

// Clone returns an independent copy.
func (t *Transform) Clone() *Transform {
	if t == nil {
		return nil
	}
	return &Transform{
		Anchor:        t.Anchor.Clone(),
		Position:      t.Position.Clone(),
		PositionSplit: t.PositionSplit.Clone(),
		Scale:         t.Scale.Clone(),
		Rotation:      t.Rotation.Clone(),
		Opacity:       t.Opacity.Clone(),
	}
}

// applyTo writes the transform at frame into n, converting document units to
// node units.
func (t *Transform) applyTo(n *Node, frame float64) {
	a := t.Anchor.Value(frame)
	p := t.PositionAt(frame)
	s := t.Scale.Value(frame)
	n.X, n.Y = p.X, p.Y
	n.PivotX, n.PivotY = a.X, a.Y
	n.ScaleX, n.ScaleY = s.X/100, s.Y/100
	n.Rotation = t.Rotation.Value(frame) * math.Pi / 180
	n.Alpha = clamp01(t.Opacity.Value(frame) / 100)
}

// Layer is a node of the animation tree: identity, a visibility window in
// frames, an optional transform parent, a blend mode, the transform
// properties, and the type-specific content.
type Layer struct {
	Index       int
	Name        string
	Type        LayerType
	ParentIndex int
	HasParent   bool

	InFrame   float64
	OutFrame  float64
	StartTime float64
	Stretch   float64

	BlendMode BlendMode
	Transform Transform

	// Masking
	HasMask       bool
	Masks         []Mask
	MatteType     MatteType
	IsMatteSource bool

	// Shape layers
	Shapes []ShapeItem

	// Solid layers
	SolidColor  Color
	SolidWidth  float64
	SolidHeight float64

	// Precomp and image layers
	RefID  string
	Width  float64
	Height float64
	Comp   *Composition
	Image  *ImageRef

	// Hidden layers ("hd") never draw.
	Hidden bool

	node           *Node
	animated       bool
	shapesAnimated bool
	masksAnimated  bool
	visible        bool
	disposed       bool
}

// Node returns the layer's drawable node. Nil until the layer is built into
// a composition.
func (l *Layer) Node() *Node {
	return l.node
}

// VisibleAt reports whether frame falls inside the layer's window. Both ends
// are inclusive.
func (l *Layer) VisibleAt(frame float64) bool {
	return !l.Hidden && l.InFrame <= frame && frame <= l.OutFrame
}

// Visible reports the visibility computed by the last Update.
func (l *Layer) Visible() bool {
	return l.visible
}

// LocalFrame converts a composition frame to the layer's keyframe time.
func (l *Layer) LocalFrame(frame float64) float64 {
	st := l.Stretch
	if st == 0 {
		st = 1
	}
	return (frame - l.StartTime) / st
}

// IsAnimated reports whether any transform property has keyframes.
func (l *Layer) IsAnimated() bool {
	return l.Transform.IsAnimated()
}

// Clone returns a deep copy of the layer definition with its own keyframe
// state. The drawable node and composition instance are not copied; they are
// created when the clone is built into a composition.
func (l *Layer) Clone() *Layer {
	out := &Layer{
		Index:       l.Index,
		Name:        l.Name,
		Type:        l.Type,
		ParentIndex: l.ParentIndex,
		HasParent:   l.HasParent,
		InFrame:     l.InFrame,
		OutFrame:    l.OutFrame,
		StartTime:   l.StartTime,
		Stretch:     l.Stretch,
		BlendMode:   l.BlendMode,
		Transform:   *l.Transform.Clone(),
		HasMask:     l.HasMask,
		MatteType:   l.MatteType,

		IsMatteSource: l.IsMatteSource,

		Shapes:      cloneShapes(l.Shapes),
		SolidColor:  l.SolidColor,
		SolidWidth:  l.SolidWidth,
		SolidHeight: l.SolidHeight,
		RefID:       l.RefID,
		Width:       l.Width,
		Height:      l.Height,
		Hidden:      l.Hidden,
	}
	if l.Masks != nil {
		out.Masks = make([]Mask, len(l.Masks))
		for i, m := range l.Masks {
			out.Masks[i] = m.Clone()
		}
	}
	if l.Image != nil {
		img := *l.Image
		out.Image = &img
	}
	return out
}

// offset shifts the layer's window and start time by frames.
func (l *Layer) offset(frames float64) {
	l.InFrame += frames
	l.OutFrame += frames
	l.StartTime += frames
}

// init creates the drawable node and applies everything that does not change
// over time, so static layers can skip evaluation on every update.
func (l *Layer) init() {
	n := NewNode(l.Name)
	n.BlendMode = l.BlendMode
	n.UserData = l
	n.Visible = false
	l.node = n

	l.animated = l.Transform.IsAnimated()
	for i := range l.Shapes {
		if l.Shapes[i].IsAnimated() {
			l.shapesAnimated = true
			break
		}
	}
	for i := range l.Masks {
		if l.Masks[i].Path.IsAnimated() || l.Masks[i].Opacity.IsAnimated() {
			l.masksAnimated = true
			break
		}
	}

	frame := l.LocalFrame(l.InFrame)
	l.Transform.applyTo(n, frame)

	switch l.Type {
	case LayerShape:
		n.Shapes = BuildDrawOps(l.Shapes, frame)
	case LayerSolid:
		size := Vec2{l.SolidWidth, l.SolidHeight}
		n.Shapes = []DrawOp{{
			Paths: []PathShape{RectPath(size.Scale(0.5), size, 0)},
			Fill:  &FillStyle{Color: l.SolidColor},
		}}
	case LayerImage:
		n.Image = l.Image
	case LayerNull, LayerText, LayerVideo:
		n.Renderable = false
	case LayerPrecomp:
		n.Renderable = false
	}
}

// Update resolves the layer at frame: visibility first, then (when visible)
// the transform, shape geometry and paint. Static content is left as applied
// at build time. Calling Update twice with the same frame yields the same
// state.
func (l *Layer) Update(frame float64) {
	if l.node == nil || l.disposed {
		return
	}
	l.visible = l.VisibleAt(frame)
	l.node.Visible = l.visible
	if !l.visible {
		return
	}
	local := l.LocalFrame(frame)
	if l.animated {
		l.Transform.applyTo(l.node, local)
	}
	if l.Type == LayerShape && l.shapesAnimated {
		l.node.Shapes = BuildDrawOps(l.Shapes, local)
	}
	if l.Comp != nil {
		// Children are offset by StartTime, so they run on the stretched
		// time measured from there.
		l.Comp.Update(l.StartTime + local)
	}
}

// maskClip returns the clip of the layer's own mask list at frame.
func (l *Layer) maskClip(frame float64, viewport Rect) *Clip {
	if !l.HasMask || len(l.Masks) == 0 {
		return nil
	}
	return ComposeMasks(l.Masks, l.LocalFrame(frame), viewport)
}

// Dispose releases the layer's node and, for precomps, its composition.
func (l *Layer) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	if l.Comp != nil {
		l.Comp.Dispose()
		l.Comp = nil
	}
	if l.node != nil {
		l.node.Dispose()
		l.node = nil
	}
}
