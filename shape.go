package motion

import "math"

// ShapeKind distinguishes the entries of a shape layer's content list.
type ShapeKind uint8

const (
	ShapeGroup   ShapeKind = iota // nested item list with its own transform
	ShapePath                     // free-form bezier path
	ShapeRect                     // rectangle with optional corner roundness
	ShapeEllipse                  // ellipse inscribed in position/size
	ShapeFill                     // fill paint
	ShapeStroke                   // stroke paint
	ShapeTrim                     // trim paths modifier
)

// ShapeItem is one entry of a shape layer's content list. A single flat
// struct is used for all kinds; only the fields of Kind are meaningful.
type ShapeItem struct {
	Kind   ShapeKind
	Name   string
	Hidden bool

	// Geometry (ShapePath, ShapeRect, ShapeEllipse)
	Path      Property[PathShape]
	Position  Property[Vec2]
	Size      Property[Vec2]
	Roundness Property[float64]

	// Paint (ShapeFill, ShapeStroke). Opacity is in percent.
	Color       Property[Color]
	Opacity     Property[float64]
	FillRule    FillRule
	Width       Property[float64]
	LineCap     LineCap
	LineJoin    LineJoin
	MiterLimit  float64
	FillEnabled bool // stroke only: also fill the geometry with the stroke color

	// Trim (ShapeTrim), in percent; TrimOffset in degrees.
	TrimStart  Property[float64]
	TrimEnd    Property[float64]
	TrimOffset Property[float64]

	// Group (ShapeGroup)
	Items     []ShapeItem
	Transform *Transform
}

// IsAnimated reports whether any property of the item, or of its nested
// items, has keyframes.
func (s *ShapeItem) IsAnimated() bool {
	switch {
	case s.Path.IsAnimated(), s.Position.IsAnimated(), s.Size.IsAnimated(),
		s.Roundness.IsAnimated(), s.Color.IsAnimated(), s.Opacity.IsAnimated(),
		s.Width.IsAnimated(), s.TrimStart.IsAnimated(), s.TrimEnd.IsAnimated(),
		s.TrimOffset.IsAnimated():
		return true
	}
	if s.Transform != nil && s.Transform.IsAnimated() {
		return true
	}
	for i := range s.Items {
		if s.Items[i].IsAnimated() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the item with its own keyframe state.
func (s ShapeItem) Clone() ShapeItem {
	out := s
	out.Path = s.Path.Clone()
	out.Position = s.Position.Clone()
	out.Size = s.Size.Clone()
	out.Roundness = s.Roundness.Clone()
	out.Color = s.Color.Clone()
	out.Opacity = s.Opacity.Clone()
	out.Width = s.Width.Clone()
	out.TrimStart = s.TrimStart.Clone()
	out.TrimEnd = s.TrimEnd.Clone()
	out.TrimOffset = s.TrimOffset.Clone()
	out.Transform = s.Transform.Clone()
	out.Items = cloneShapes(s.Items)
	return out
}

func cloneShapes(items []ShapeItem) []ShapeItem {
	if items == nil {
		return nil
	}
	out := make([]ShapeItem, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

// Geometry returns the item's path at frame in the item's own space. Non
// geometry items return false.
func (s *ShapeItem) Geometry(frame float64) (PathShape, bool) {
	switch s.Kind {
	case ShapePath:
		return s.Path.Value(frame), true
	case ShapeRect:
		return RectPath(s.Position.Value(frame), s.Size.Value(frame), s.Roundness.Value(frame)), true
	case ShapeEllipse:
		return EllipsePath(s.Position.Value(frame), s.Size.Value(frame)), true
	}
	return PathShape{}, false
}

// FillStyle is a resolved fill. Color.A already includes every opacity that
// applies to the fill.
type FillStyle struct {
	Color Color
	Rule  FillRule
}

// StrokeStyle is a resolved stroke.
type StrokeStyle struct {
	Color      Color
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// DrawOp is one paint operation of a shape layer: a set of paths in the
// layer's local space, painted with an optional fill and an optional stroke.
// Renderers draw the fill before the stroke.
type DrawOp struct {
	Paths  []PathShape
	Fill   *FillStyle
	Stroke *StrokeStyle
}

// paintScope carries the paint and trim that apply to a group's geometry.
// Nested groups without their own paint inherit the enclosing scope.
type paintScope struct {
	fill   *ShapeItem
	stroke *ShapeItem
	trim   *ShapeItem
}

// BuildDrawOps evaluates a shape content list at frame and returns its paint
// description. Draw order is the reverse of declaration order: the first
// declared item ends up on top.
func BuildDrawOps(items []ShapeItem, frame float64) []DrawOp {
	return appendGroupOps(nil, items, frame, identityTransform, 1, paintScope{})
}

func appendGroupOps(out []DrawOp, items []ShapeItem, frame float64, m [6]float64, alpha float64, inherited paintScope) []DrawOp {
	scope := inherited
	var ownFill, ownStroke, ownTrim bool
	for i := range items {
		it := &items[i]
		if it.Hidden {
			continue
		}
		switch it.Kind {
		case ShapeFill:
			if !ownFill {
				scope.fill, ownFill = it, true
			}
		case ShapeStroke:
			if !ownStroke {
				scope.stroke, ownStroke = it, true
			}
		case ShapeTrim:
			if !ownTrim {
				scope.trim, ownTrim = it, true
			}
		}
	}

	// Geometry is gathered in runs between nested groups, so groups and
	// paths keep their relative declaration order.
	var paths []PathShape
	flush := func() {
		if op, ok := resolvePaint(paths, scope, frame, alpha); ok {
			out = append(out, op)
		}
		paths = nil
	}
	for i := len(items) - 1; i >= 0; i-- {
		it := &items[i]
		if it.Hidden {
			continue
		}
		if it.Kind == ShapeGroup {
			flush()
			gm, galpha := m, alpha
			if it.Transform != nil {
				gm = multiplyAffine(m, it.Transform.Matrix(frame))
				galpha = alpha * clamp01(it.Transform.Opacity.Value(frame)/100)
			}
			out = appendGroupOps(out, it.Items, frame, gm, galpha, scope)
			continue
		}
		p, ok := it.Geometry(frame)
		if !ok || p.Len() == 0 {
			continue
		}
		if scope.trim != nil {
			p = trimAt(scope.trim, p, frame)
		}
		paths = append(paths, p.Transform(m))
	}
	flush()
	return out
}

func trimAt(trim *ShapeItem, p PathShape, frame float64) PathShape {
	start := trim.TrimStart.Value(frame)
	end := trim.TrimEnd.Value(frame)
	if off := trim.TrimOffset.Value(frame); off != 0 {
		shift := math.Mod(off, 360) / 360 * 100
		start += shift
		end += shift
	}
	return TrimPath(p, start, end)
}

// resolvePaint applies the fill precedence rule: a stroke that declares
// FillEnabled supplies the fill color, otherwise the scope's own fill does.
func resolvePaint(paths []PathShape, scope paintScope, frame, alpha float64) (DrawOp, bool) {
	if len(paths) == 0 || (scope.fill == nil && scope.stroke == nil) {
		return DrawOp{}, false
	}
	op := DrawOp{Paths: paths}

	switch {
	case scope.stroke != nil && scope.stroke.FillEnabled:
		c := scope.stroke.Color.Value(frame)
		c.A *= clamp01(scope.stroke.Opacity.Value(frame)/100) * alpha
		rule := FillNonZero
		if scope.fill != nil {
			rule = scope.fill.FillRule
		}
		op.Fill = &FillStyle{Color: c, Rule: rule}
	case scope.fill != nil:
		c := scope.fill.Color.Value(frame)
		c.A *= clamp01(scope.fill.Opacity.Value(frame)/100) * alpha
		op.Fill = &FillStyle{Color: c, Rule: scope.fill.FillRule}
	}

	if s := scope.stroke; s != nil {
		c := s.Color.Value(frame)
		c.A *= clamp01(s.Opacity.Value(frame)/100) * alpha
		if w := s.Width.Value(frame); w > 0 {
			op.Stroke = &StrokeStyle{
				Color:      c,
				Width:      w,
				Cap:        s.LineCap,
				Join:       s.LineJoin,
				MiterLimit: s.MiterLimit,
			}
		}
	}
	if op.Fill == nil && op.Stroke == nil {
		return DrawOp{}, false
	}
	return op, true
}
