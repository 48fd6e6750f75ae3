// Package ebitenrender draws motion node trees with Ebitengine.
//
// Shapes are filled and stroked with ebiten/v2/vector. Clipped nodes and
// nodes with a non-normal blend mode are drawn into pooled offscreen images
// and composited with blend factors: masks are cut with destination-in and
// destination-out, mattes are reduced to alpha with a color matrix.
package ebitenrender

import (
	"errors"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/motion"
)

// Renderer draws node trees onto ebiten images. It implements
// motion.Renderer by drawing onto Target.
type Renderer struct {
	// Target receives Render calls. Draw ignores it.
	Target *ebiten.Image

	// Scale maps document units to pixels; OffsetX and OffsetY are added
	// after scaling.
	Scale            float64
	OffsetX, OffsetY float64

	// AntiAlias smooths path edges.
	AntiAlias bool

	// Images resolves image layers. Nil, or a nil result, skips the layer.
	Images func(ref *motion.ImageRef) *ebiten.Image

	pool texturePool
}

// New returns a renderer with unit scale and anti-aliasing on.
func New() *Renderer {
	return &Renderer{Scale: 1, AntiAlias: true}
}

// Render draws root onto Target.
func (r *Renderer) Render(root *motion.Node) error {
	if r.Target == nil {
		return errors.New("ebitenrender: nil target")
	}
	return r.Draw(r.Target, root)
}

// Draw draws root and its subtree onto dst. World transforms must be up to
// date.
func (r *Renderer) Draw(dst *ebiten.Image, root *motion.Node) error {
	if root == nil {
		return errors.New("ebitenrender: nil root")
	}
	if root.IsDisposed() {
		return errors.New("ebitenrender: root is disposed")
	}
	r.drawNode(dst, root, r.view())
	return nil
}

func (r *Renderer) view() [6]float64 {
	s := r.Scale
	if s <= 0 {
		s = 1
	}
	return [6]float64{s, 0, 0, s, r.OffsetX, r.OffsetY}
}

func (r *Renderer) drawNode(dst *ebiten.Image, n *motion.Node, view [6]float64) {
	if !n.Visible || n.IsDisposed() {
		return
	}
	isolated := n.Clip != nil || n.BlendMode != motion.BlendNormal
	target := dst
	b := dst.Bounds()
	if isolated {
		target = r.pool.Acquire(b.Dx(), b.Dy())
		defer r.pool.Release(target)
	}

	r.drawContent(target, n, view)
	for _, c := range n.Children() {
		r.drawNode(target, c, view)
	}

	if !isolated {
		return
	}
	if n.Clip != nil {
		if mask := r.clipMask(n, view, b.Dx(), b.Dy()); mask != nil {
			op := &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationIn}
			target.DrawImage(mask, op)
			r.pool.Release(mask)
		}
	}
	op := &ebiten.DrawImageOptions{Blend: blendFor(n.BlendMode)}
	dst.DrawImage(target, op)
}

func (r *Renderer) drawContent(dst *ebiten.Image, n *motion.Node, view [6]float64) {
	if !n.Renderable {
		return
	}
	alpha := n.WorldAlpha()
	if alpha <= 0 {
		return
	}
	m := motion.MultiplyAffine(view, n.WorldTransform())
	for i := range n.Shapes {
		op := &n.Shapes[i]
		if op.Fill != nil {
			c := op.Fill.Color
			c.A *= alpha
			r.fillPaths(dst, op.Paths, m, op.Fill.Rule, c, ebiten.BlendSourceOver)
		}
		if s := op.Stroke; s != nil {
			c := s.Color
			c.A *= alpha
			r.strokePaths(dst, op.Paths, m, s, c)
		}
	}
	if n.Image != nil && r.Images != nil {
		if img := r.Images(n.Image); img != nil {
			r.drawImage(dst, img, n.Image, m, alpha)
		}
	}
}

// buildPath converts paths, transformed by m, to a vector path.
func buildPath(paths []motion.PathShape, m [6]float64, close bool) *vector.Path {
	var path vector.Path
	for _, p := range paths {
		segs := p.Segments()
		if len(segs) == 0 {
			continue
		}
		path.MoveTo(apply(m, segs[0].From))
		for _, s := range segs {
			x1, y1 := apply(m, s.Ctrl1)
			x2, y2 := apply(m, s.Ctrl2)
			x3, y3 := apply(m, s.To)
			path.CubicTo(x1, y1, x2, y2, x3, y3)
		}
		if close || p.Closed {
			path.Close()
		}
	}
	return &path
}

func (r *Renderer) fillPaths(dst *ebiten.Image, paths []motion.PathShape, m [6]float64, rule motion.FillRule, c color.Color, blend ebiten.Blend) {
	path := buildPath(paths, m, true)
	fo := &vector.FillOptions{FillRule: vector.FillRuleNonZero}
	if rule == motion.FillEvenOdd {
		fo.FillRule = vector.FillRuleEvenOdd
	}
	do := &vector.DrawPathOptions{AntiAlias: r.AntiAlias, Blend: blend}
	do.ColorScale.ScaleWithColor(c)
	vector.FillPath(dst, path, fo, do)
}

// strokePaths strokes in pixel space. The width is scaled by the uniform part
// of the transform; non-uniform scale does not distort the stroke.
func (r *Renderer) strokePaths(dst *ebiten.Image, paths []motion.PathShape, m [6]float64, s *motion.StrokeStyle, c motion.Color) {
	if c.A <= 0 || s.Width <= 0 {
		return
	}
	path := buildPath(paths, m, false)
	so := &vector.StrokeOptions{
		Width:      float32(s.Width * math.Sqrt(math.Abs(m[0]*m[3]-m[1]*m[2]))),
		LineCap:    lineCap(s.Cap),
		LineJoin:   lineJoin(s.Join),
		MiterLimit: float32(s.MiterLimit),
	}
	do := &vector.DrawPathOptions{AntiAlias: r.AntiAlias}
	do.ColorScale.ScaleWithColor(c)
	vector.StrokePath(dst, path, so, do)
}

func (r *Renderer) drawImage(dst, img *ebiten.Image, ref *motion.ImageRef, m [6]float64, alpha float64) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	sx, sy := 1.0, 1.0
	if ref.Width > 0 {
		sx = ref.Width / float64(b.Dx())
	}
	if ref.Height > 0 {
		sy = ref.Height / float64(b.Dy())
	}
	op.GeoM.Scale(sx, sy)
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	op.GeoM.Concat(g)
	op.ColorScale.ScaleAlpha(float32(alpha))
	dst.DrawImage(img, op)
}

// clipMask renders n's clip into a pooled image whose alpha is the clip
// coverage, or returns nil when the clip has no effect.
func (r *Renderer) clipMask(n *motion.Node, view [6]float64, w, h int) *ebiten.Image {
	clip := n.Clip
	var mask *ebiten.Image

	if len(clip.Paths) > 0 {
		mask = r.pool.Acquire(w, h)
		switch clip.Paths[0].Mode {
		case motion.MaskSubtract, motion.MaskIntersect, motion.MaskDarken:
			mask.Fill(color.White)
		}
		m := motion.MultiplyAffine(view, n.WorldTransform())
		for i := range clip.Paths {
			r.applyMask(mask, &clip.Paths[i], m, w, h)
		}
	}

	if clip.Matte != nil {
		matte := r.matteMask(clip.Matte, clip.MatteType, view, w, h)
		if mask == nil {
			return matte
		}
		mask.DrawImage(matte, &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationIn})
		r.pool.Release(matte)
	}
	return mask
}

// applyMask merges one mask into the accumulated mask image.
func (r *Renderer) applyMask(mask *ebiten.Image, cp *motion.ClipPath, m [6]float64, w, h int) {
	white := motion.Color{R: 1, G: 1, B: 1, A: cp.Opacity}
	switch cp.Mode {
	case motion.MaskAdditive, motion.MaskLighten:
		r.fillPaths(mask, cp.Paths, m, cp.Rule, white, ebiten.BlendSourceOver)
	case motion.MaskSubtract:
		r.fillPaths(mask, cp.Paths, m, cp.Rule, white, ebiten.BlendDestinationOut)
	case motion.MaskDifference:
		r.fillPaths(mask, cp.Paths, m, cp.Rule, white, ebiten.BlendXor)
	case motion.MaskIntersect, motion.MaskDarken:
		cov := r.pool.Acquire(w, h)
		r.fillPaths(cov, cp.Paths, m, cp.Rule, white, ebiten.BlendSourceOver)
		mask.DrawImage(cov, &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationIn})
		r.pool.Release(cov)
	}
}

// matteMask renders the matte subtree and converts it to an alpha mask.
func (r *Renderer) matteMask(matte *motion.Node, mt motion.MatteType, view [6]float64, w, h int) *ebiten.Image {
	src := r.pool.Acquire(w, h)
	r.drawNode(src, matte, view)

	out := r.pool.Acquire(w, h)
	if mt.Luma() {
		var cm colorm.ColorM
		cm.SetElement(3, 0, 0.2126)
		cm.SetElement(3, 1, 0.7152)
		cm.SetElement(3, 2, 0.0722)
		cm.SetElement(3, 3, 0)
		colorm.DrawImage(out, src, cm, &colorm.DrawImageOptions{})
	} else {
		out.DrawImage(src, nil)
	}
	r.pool.Release(src)

	if mt.Inverted() {
		inv := r.pool.Acquire(w, h)
		inv.Fill(color.White)
		inv.DrawImage(out, &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationOut})
		r.pool.Release(out)
		out = inv
	}
	return out
}

func apply(m [6]float64, v motion.Vec2) (float32, float32) {
	return float32(m[0]*v.X + m[2]*v.Y + m[4]), float32(m[1]*v.X + m[3]*v.Y + m[5])
}

func lineCap(c motion.LineCap) vector.LineCap {
	switch c {
	case motion.CapRound:
		return vector.LineCapRound
	case motion.CapSquare:
		return vector.LineCapSquare
	}
	return vector.LineCapButt
}

func lineJoin(j motion.LineJoin) vector.LineJoin {
	switch j {
	case motion.JoinRound:
		return vector.LineJoinRound
	case motion.JoinBevel:
		return vector.LineJoinBevel
	}
	return vector.LineJoinMiter
}
