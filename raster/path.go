package raster

import (
	"math"

	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/phanxgames/motion"
)

func apply(m [6]float64, v motion.Vec2) (float32, float32) {
	return float32(m[0]*v.X + m[2]*v.Y + m[4]), float32(m[1]*v.X + m[3]*v.Y + m[5])
}

// toAff3 converts a motion matrix [a b c d tx ty] to the row-major layout of
// x/image/draw.
func toAff3(m [6]float64) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

// matrixScale is the geometric mean of the matrix's axis scales.
func matrixScale(m [6]float64) float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// addPath adds p as a closed figure. Open paths are closed with a straight
// line, which is how fills treat them.
func addPath(z *vector.Rasterizer, p motion.PathShape, m [6]float64) {
	segs := p.Segments()
	if len(segs) == 0 {
		return
	}
	z.MoveTo(apply(m, segs[0].From))
	for _, s := range segs {
		bx, by := apply(m, s.Ctrl1)
		cx, cy := apply(m, s.Ctrl2)
		dx, dy := apply(m, s.To)
		z.CubeTo(bx, by, cx, cy, dx, dy)
	}
	z.ClosePath()
}

// addPolygon adds a local-space polygon with positive orientation.
// The rasterizer accumulates signed area, so every stroke piece must wind the
// same way for overlapping pieces to merge instead of cancel.
func addPolygon(z *vector.Rasterizer, pts []motion.Vec2, m [6]float64) {
	if len(pts) < 3 {
		return
	}
	reverse := signedArea(pts) < 0
	at := func(i int) motion.Vec2 {
		if reverse {
			return pts[len(pts)-1-i]
		}
		return pts[i]
	}
	z.MoveTo(apply(m, at(0)))
	for i := 1; i < len(pts); i++ {
		z.LineTo(apply(m, at(i)))
	}
	z.ClosePath()
}

func signedArea(pts []motion.Vec2) float64 {
	var a float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// flatten approximates p with a polyline whose points deviate from the curve
// by roughly tol. Closed paths repeat the first point at the end.
func flatten(p motion.PathShape, tol float64) []motion.Vec2 {
	segs := p.Segments()
	if len(segs) == 0 {
		return nil
	}
	out := []motion.Vec2{segs[0].From}
	for _, s := range segs {
		if s.Ctrl1 == s.From && s.Ctrl2 == s.To {
			out = appendPoint(out, s.To)
			continue
		}
		l := dist(s.From, s.Ctrl1) + dist(s.Ctrl1, s.Ctrl2) + dist(s.Ctrl2, s.To)
		n := int(math.Ceil(math.Sqrt(l / tol)))
		n = min(max(n, 2), 128)
		for i := 1; i <= n; i++ {
			out = appendPoint(out, cubicAt(s, float64(i)/float64(n)))
		}
	}
	return out
}

func appendPoint(pts []motion.Vec2, v motion.Vec2) []motion.Vec2 {
	if len(pts) > 0 && dist(pts[len(pts)-1], v) < 1e-9 {
		return pts
	}
	return append(pts, v)
}

func cubicAt(s motion.Segment, t float64) motion.Vec2 {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return motion.Vec2{
		X: a*s.From.X + b*s.Ctrl1.X + c*s.Ctrl2.X + d*s.To.X,
		Y: a*s.From.Y + b*s.Ctrl1.Y + c*s.Ctrl2.Y + d*s.To.Y,
	}
}

func dist(a, b motion.Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func normalize(v motion.Vec2) motion.Vec2 {
	l := math.Hypot(v.X, v.Y)
	if l == 0 {
		return motion.Vec2{}
	}
	return motion.Vec2{X: v.X / l, Y: v.Y / l}
}

// leftNormal returns the unit normal to the left of the direction a -> b,
// scaled by hw.
func leftNormal(a, b motion.Vec2, hw float64) motion.Vec2 {
	d := normalize(b.Sub(a))
	return motion.Vec2{X: -d.Y * hw, Y: d.X * hw}
}

// strokeOutline returns polygons whose union is the stroke of p: one quad per
// polyline edge, a join piece at every interior vertex, and caps at the ends
// of open paths.
func strokeOutline(p motion.PathShape, s motion.StrokeStyle, tol float64) [][]motion.Vec2 {
	pts := flatten(p, tol)
	hw := s.Width / 2
	if len(pts) == 0 || hw <= 0 {
		return nil
	}
	if len(pts) == 1 {
		if s.Cap == motion.CapRound {
			return [][]motion.Vec2{circle(pts[0], hw, tol)}
		}
		return nil
	}

	closed := p.Closed && len(pts) > 2
	if closed && dist(pts[0], pts[len(pts)-1]) < 1e-9 {
		pts = pts[:len(pts)-1]
	}
	edges := len(pts) - 1
	if closed {
		edges = len(pts)
	}

	var polys [][]motion.Vec2
	for i := 0; i < edges; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		n := leftNormal(a, b, hw)
		polys = append(polys, []motion.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)})
	}

	join := func(prev, v, next motion.Vec2) {
		if piece := joinPiece(prev, v, next, hw, s, tol); piece != nil {
			polys = append(polys, piece...)
		}
	}
	for i := 1; i < len(pts)-1; i++ {
		join(pts[i-1], pts[i], pts[i+1])
	}
	if closed {
		last := len(pts) - 1
		join(pts[last-1], pts[last], pts[0])
		join(pts[last], pts[0], pts[1])
		return polys
	}

	polys = append(polys, capPiece(pts[1], pts[0], hw, s.Cap, tol)...)
	polys = append(polys, capPiece(pts[len(pts)-2], pts[len(pts)-1], hw, s.Cap, tol)...)
	return polys
}

// joinPiece fills the wedge between the edges prev->v and v->next.
func joinPiece(prev, v, next motion.Vec2, hw float64, s motion.StrokeStyle, tol float64) [][]motion.Vec2 {
	switch s.Join {
	case motion.JoinRound:
		return [][]motion.Vec2{circle(v, hw, tol)}
	}
	n0 := leftNormal(prev, v, hw)
	n1 := leftNormal(v, next, hw)
	var out [][]motion.Vec2
	for _, sign := range [2]float64{1, -1} {
		a := v.Add(n0.Scale(sign))
		b := v.Add(n1.Scale(sign))
		if s.Join == motion.JoinMiter {
			if tip, ok := miterTip(a, v.Sub(prev), b, next.Sub(v)); ok && dist(tip, v) <= s.MiterLimit*hw {
				out = append(out, []motion.Vec2{v, a, tip, b})
				continue
			}
		}
		out = append(out, []motion.Vec2{v, a, b})
	}
	return out
}

// miterTip intersects the line through a along da with the line through b
// along db.
func miterTip(a, da, b, db motion.Vec2) (motion.Vec2, bool) {
	den := da.X*db.Y - da.Y*db.X
	if math.Abs(den) < 1e-12 {
		return motion.Vec2{}, false
	}
	d := b.Sub(a)
	t := (d.X*db.Y - d.Y*db.X) / den
	return a.Add(da.Scale(t)), true
}

// capPiece returns the cap at end for the edge from -> end.
func capPiece(from, end motion.Vec2, hw float64, c motion.LineCap, tol float64) [][]motion.Vec2 {
	switch c {
	case motion.CapRound:
		return [][]motion.Vec2{circle(end, hw, tol)}
	case motion.CapSquare:
		d := normalize(end.Sub(from)).Scale(hw)
		n := leftNormal(from, end, hw)
		tip := end.Add(d)
		return [][]motion.Vec2{{end.Add(n), tip.Add(n), tip.Sub(n), end.Sub(n)}}
	}
	return nil
}

// circle approximates a circle with a polygon fine enough for tol.
func circle(c motion.Vec2, r, tol float64) []motion.Vec2 {
	n := int(math.Ceil(4 * math.Sqrt(r/tol)))
	n = min(max(n, 8), 96)
	pts := make([]motion.Vec2, n)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts[i] = motion.Vec2{X: c.X + r*cos, Y: c.Y + r*sin}
	}
	return pts
}
