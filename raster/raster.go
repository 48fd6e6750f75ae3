// Package raster renders motion node trees into RGBA images on the CPU with
// golang.org/x/image/vector. It needs no window or GPU, which makes it the
// renderer of choice for tests, thumbnails and frame export.
package raster

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/phanxgames/motion"
)

// DefaultTolerance is the default curve flattening tolerance in pixels.
const DefaultTolerance = 0.25

// Renderer draws a node tree into its own image. It implements
// motion.Renderer. A Renderer is not safe for concurrent use; give each
// goroutine its own.
type Renderer struct {
	// Background fills the image before every frame. Nil leaves it
	// transparent.
	Background color.Color

	// Scale maps document units to pixels.
	Scale float64

	// Tolerance is the maximum distance in pixels between a curve and the
	// polyline that approximates it when stroking.
	Tolerance float64

	// Images resolves image layers to pixels. Nil, or a nil result, skips
	// the layer.
	Images func(ref *motion.ImageRef) image.Image

	dst  *image.RGBA
	z    *vector.Rasterizer
	pool bufferPool
}

// New creates a renderer with a width x height pixel target.
func New(width, height int) *Renderer {
	r := &Renderer{Scale: 1, Tolerance: DefaultTolerance}
	r.Resize(width, height)
	return r
}

// Resize replaces the target image. Pooled buffers of the old size are
// dropped.
func (r *Renderer) Resize(width, height int) {
	rect := image.Rect(0, 0, max(width, 1), max(height, 1))
	r.dst = image.NewRGBA(rect)
	r.z = vector.NewRasterizer(rect.Dx(), rect.Dy())
	r.pool.reset(rect)
}

// Image returns the target image. Its contents are replaced by every Render.
func (r *Renderer) Image() *image.RGBA {
	return r.dst
}

// Bounds returns the target rectangle.
func (r *Renderer) Bounds() image.Rectangle {
	return r.dst.Bounds()
}

// Render draws root and its subtree. World transforms and alphas must be up
// to date, which Animation.Update guarantees.
func (r *Renderer) Render(root *motion.Node) error {
	if root == nil {
		return errors.New("raster: nil root")
	}
	if root.IsDisposed() {
		return errors.New("raster: root is disposed")
	}
	clear(r.dst.Pix)
	if r.Background != nil {
		draw.Draw(r.dst, r.dst.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)
	}
	r.drawNode(r.dst, root, r.view())
	return nil
}

// view is the document-to-pixel matrix.
func (r *Renderer) view() [6]float64 {
	s := r.Scale
	if s <= 0 {
		s = 1
	}
	return [6]float64{s, 0, 0, s, 0, 0}
}

func (r *Renderer) tolerance() float64 {
	if r.Tolerance <= 0 {
		return DefaultTolerance
	}
	return r.Tolerance
}

// drawNode draws n and its subtree into dst. A node with a clip or a
// non-normal blend mode is drawn into an offscreen buffer first and then
// composited through its clip mask.
func (r *Renderer) drawNode(dst *image.RGBA, n *motion.Node, view [6]float64) {
	if !n.Visible || n.IsDisposed() {
		return
	}
	isolated := n.Clip != nil || n.BlendMode != motion.BlendNormal
	target := dst
	if isolated {
		target = r.pool.acquireRGBA()
		defer r.pool.releaseRGBA(target)
	}

	r.drawContent(target, n, view)
	for _, c := range n.Children() {
		r.drawNode(target, c, view)
	}

	if !isolated {
		return
	}
	var mask *image.Alpha
	if n.Clip != nil {
		mask = r.clipMask(n, view)
		if mask != nil {
			defer r.pool.releaseAlpha(mask)
		}
	}
	composite(dst, target, mask, n.BlendMode)
}

// drawContent paints the node's own shapes and image.
func (r *Renderer) drawContent(dst *image.RGBA, n *motion.Node, view [6]float64) {
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
			r.fill(dst, op.Paths, m, op.Fill.Rule, c)
		}
		if op.Stroke != nil {
			r.stroke(dst, op.Paths, m, *op.Stroke, alpha)
		}
	}
	if n.Image != nil && r.Images != nil {
		if img := r.Images(n.Image); img != nil {
			r.drawImage(dst, img, n.Image, m, alpha)
		}
	}
}

// fill paints paths with c under rule.
func (r *Renderer) fill(dst *image.RGBA, paths []motion.PathShape, m [6]float64, rule motion.FillRule, c motion.Color) {
	if c.A <= 0 || len(paths) == 0 {
		return
	}
	b := dst.Bounds()
	if rule == motion.FillNonZero {
		r.z.Reset(b.Dx(), b.Dy())
		for _, p := range paths {
			addPath(r.z, p, m)
		}
		r.z.DrawOp = draw.Over
		r.z.Draw(dst, b, image.NewUniform(c), image.Point{})
		return
	}
	cov := r.coverage(paths, m, rule)
	defer r.pool.releaseAlpha(cov)
	draw.DrawMask(dst, b, image.NewUniform(c), image.Point{}, cov, b.Min, draw.Over)
}

// stroke outlines paths in their local space, so non-uniform scale distorts
// the stroke the same way it distorts the geometry, and paints the outline.
func (r *Renderer) stroke(dst *image.RGBA, paths []motion.PathShape, m [6]float64, s motion.StrokeStyle, alpha float64) {
	c := s.Color
	c.A *= alpha
	if c.A <= 0 || s.Width <= 0 {
		return
	}
	tol := r.tolerance() / max(matrixScale(m), 1e-6)
	b := dst.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	for _, p := range paths {
		for _, poly := range strokeOutline(p, s, tol) {
			addPolygon(r.z, poly, m)
		}
	}
	r.z.DrawOp = draw.Over
	r.z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// drawImage maps img onto the rectangle [0, ref.Width] x [0, ref.Height] of
// the node's local space.
func (r *Renderer) drawImage(dst *image.RGBA, img image.Image, ref *motion.ImageRef, m [6]float64, alpha float64) {
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	sx, sy := 1.0, 1.0
	if ref.Width > 0 {
		sx = ref.Width / float64(sb.Dx())
	}
	if ref.Height > 0 {
		sy = ref.Height / float64(sb.Dy())
	}
	m = motion.MultiplyAffine(m, [6]float64{sx, 0, 0, sy, -float64(sb.Min.X) * sx, -float64(sb.Min.Y) * sy})

	tmp := r.pool.acquireRGBA()
	defer r.pool.releaseRGBA(tmp)
	draw.BiLinear.Transform(tmp, toAff3(m), img, sb, draw.Over, nil)

	b := dst.Bounds()
	if alpha >= 1 {
		draw.Draw(dst, b, tmp, b.Min, draw.Over)
		return
	}
	draw.DrawMask(dst, b, tmp, b.Min, image.NewUniform(color.Alpha{A: uint8(alpha*0xff + 0.5)}), image.Point{}, draw.Over)
}

// coverage rasterizes paths into a pooled alpha mask. Even-odd coverage is
// built by XOR-ing the coverage of each sub-path.
func (r *Renderer) coverage(paths []motion.PathShape, m [6]float64, rule motion.FillRule) *image.Alpha {
	cov := r.pool.acquireAlpha()
	b := cov.Bounds()
	if rule == motion.FillNonZero {
		r.z.Reset(b.Dx(), b.Dy())
		for _, p := range paths {
			addPath(r.z, p, m)
		}
		r.z.DrawOp = draw.Src
		r.z.Draw(cov, b, image.Opaque, image.Point{})
		return cov
	}

	tmp := r.pool.acquireAlpha()
	defer r.pool.releaseAlpha(tmp)
	for _, p := range paths {
		clear(tmp.Pix)
		r.z.Reset(b.Dx(), b.Dy())
		addPath(r.z, p, m)
		r.z.DrawOp = draw.Src
		r.z.Draw(tmp, b, image.Opaque, image.Point{})
		xorCoverage(cov.Pix, tmp.Pix)
	}
	return cov
}
