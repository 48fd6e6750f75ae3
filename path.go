package motion

import "fmt"

// PathShape is a cubic bezier path. InTangents and OutTangents are offsets
// relative to their vertex, as in the document format. The three slices have
// equal length.
type PathShape struct {
	Vertices    []Vec2
	InTangents  []Vec2
	OutTangents []Vec2
	Closed      bool
}

// Len returns the number of vertices.
func (p PathShape) Len() int {
	return len(p.Vertices)
}

// Clone returns a deep copy of the path.
func (p PathShape) Clone() PathShape {
	return PathShape{
		Vertices:    append([]Vec2(nil), p.Vertices...),
		InTangents:  append([]Vec2(nil), p.InTangents...),
		OutTangents: append([]Vec2(nil), p.OutTangents...),
		Closed:      p.Closed,
	}
}

// normalize pads missing tangents with zero offsets so every slice matches
// the vertex count.
func (p PathShape) normalize() PathShape {
	n := len(p.Vertices)
	for len(p.InTangents) < n {
		p.InTangents = append(p.InTangents, Vec2{})
	}
	for len(p.OutTangents) < n {
		p.OutTangents = append(p.OutTangents, Vec2{})
	}
	p.InTangents = p.InTangents[:n]
	p.OutTangents = p.OutTangents[:n]
	return p
}

// Segment is one cubic bezier segment in absolute coordinates.
type Segment struct {
	From, Ctrl1, Ctrl2, To Vec2
}

// Segments returns the path as absolute cubic segments, including the
// closing segment when the path is closed.
func (p PathShape) Segments() []Segment {
	n := len(p.Vertices)
	if n < 2 {
		return nil
	}
	p = p.normalize()
	count := n - 1
	if p.Closed {
		count = n
	}
	segs := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		j := (i + 1) % n
		segs = append(segs, Segment{
			From:  p.Vertices[i],
			Ctrl1: p.Vertices[i].Add(p.OutTangents[i]),
			Ctrl2: p.Vertices[j].Add(p.InTangents[j]),
			To:    p.Vertices[j],
		})
	}
	return segs
}

// Transform returns a copy of the path with every vertex mapped through the
// affine matrix m. Tangents are mapped as vectors.
func (p PathShape) Transform(m [6]float64) PathShape {
	p = p.normalize()
	out := PathShape{
		Vertices:    make([]Vec2, len(p.Vertices)),
		InTangents:  make([]Vec2, len(p.Vertices)),
		OutTangents: make([]Vec2, len(p.Vertices)),
		Closed:      p.Closed,
	}
	for i, v := range p.Vertices {
		x, y := transformPoint(m, v.X, v.Y)
		out.Vertices[i] = Vec2{x, y}
		out.InTangents[i] = transformVector(m, p.InTangents[i])
		out.OutTangents[i] = transformVector(m, p.OutTangents[i])
	}
	return out
}

// LerpPath interpolates vertex by vertex, including both control handles.
// Paths with different vertex counts cannot be interpolated.
func LerpPath(from, to PathShape, t float64) (PathShape, error) {
	if len(from.Vertices) != len(to.Vertices) {
		return PathShape{}, fmt.Errorf("%w: %d vs %d vertices", ErrShapeMismatch, len(from.Vertices), len(to.Vertices))
	}
	from = from.normalize()
	to = to.normalize()
	n := len(from.Vertices)
	out := PathShape{
		Vertices:    make([]Vec2, n),
		InTangents:  make([]Vec2, n),
		OutTangents: make([]Vec2, n),
		Closed:      from.Closed,
	}
	for i := 0; i < n; i++ {
		out.Vertices[i] = lerpVec2(from.Vertices[i], to.Vertices[i], t)
		out.InTangents[i] = lerpVec2(from.InTangents[i], to.InTangents[i], t)
		out.OutTangents[i] = lerpVec2(from.OutTangents[i], to.OutTangents[i], t)
	}
	return out, nil
}

// kappa is the bezier handle length for a quarter circle of radius 1.
const kappa = 0.5522847498

// RectPath builds a closed rectangle path centred on center. A positive
// roundness rounds the corners, clamped to half the shorter side.
func RectPath(center, size Vec2, roundness float64) PathShape {
	hw, hh := size.X/2, size.Y/2
	l, r := center.X-hw, center.X+hw
	t, b := center.Y-hh, center.Y+hh

	rd := roundness
	if rd > hw {
		rd = hw
	}
	if rd > hh {
		rd = hh
	}
	if rd <= 0 {
		return PathShape{
			Vertices:    []Vec2{{r, t}, {r, b}, {l, b}, {l, t}},
			InTangents:  make([]Vec2, 4),
			OutTangents: make([]Vec2, 4),
			Closed:      true,
		}
	}

	k := rd * kappa
	return PathShape{
		Vertices: []Vec2{
			{r - rd, t}, {r, t + rd},
			{r, b - rd}, {r - rd, b},
			{l + rd, b}, {l, b - rd},
			{l, t + rd}, {l + rd, t},
		},
		InTangents: []Vec2{
			{}, {0, -k},
			{}, {k, 0},
			{}, {0, k},
			{}, {-k, 0},
		},
		OutTangents: []Vec2{
			{k, 0}, {},
			{0, k}, {},
			{-k, 0}, {},
			{0, -k}, {},
		},
		Closed: true,
	}
}

// EllipsePath builds a closed four-vertex ellipse centred on center.
func EllipsePath(center, size Vec2) PathShape {
	rx, ry := size.X/2, size.Y/2
	kx, ky := rx*kappa, ry*kappa
	cx, cy := center.X, center.Y
	return PathShape{
		Vertices: []Vec2{
			{cx, cy - ry}, {cx + rx, cy}, {cx, cy + ry}, {cx - rx, cy},
		},
		InTangents: []Vec2{
			{-kx, 0}, {0, -ky}, {kx, 0}, {0, ky},
		},
		OutTangents: []Vec2{
			{kx, 0}, {0, ky}, {-kx, 0}, {0, -ky},
		},
		Closed: true,
	}
}

// TrimPath applies a start/end trim given in percent.
//
// The trimmed result is a single straight segment running from the point at
// start% to the point at end% of the line between the first vertex and the
// end point of the first segment. This is an approximation, not an arc-length
// trim. Start 0 and end 100 return the path unchanged.
//
// TODO: trim along the bezier segments by arc length.
func TrimPath(p PathShape, start, end float64) PathShape {
	if start <= 0 && end >= 100 {
		return p
	}
	if len(p.Vertices) < 2 {
		return p
	}
	if start > end {
		start, end = end, start
	}
	s := clamp01(start / 100)
	e := clamp01(end / 100)
	v0, v1 := p.Vertices[0], p.Vertices[1]
	return PathShape{
		Vertices:    []Vec2{lerpVec2(v0, v1, s), lerpVec2(v0, v1, e)},
		InTangents:  make([]Vec2, 2),
		OutTangents: make([]Vec2, 2),
	}
}
