package motion

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication happens in RGBA, which lets Color satisfy color.Color.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// ColorFromHex parses "#rrggbb" (or "#rgb") into an opaque Color.
func ColorFromHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return Color{c.R, c.G, c.B, 1}, nil
}

// Hex returns the "#rrggbb" form of the color, ignoring alpha.
func (c Color) Hex() string {
	return c.rgb().Clamped().Hex()
}

// Luminance returns the Rec. 709 relative luminance of the color's RGB part.
func (c Color) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// RGBA implements color.Color with premultiplied 16-bit channels.
func (c Color) RGBA() (r, g, b, a uint32) {
	cl := c.rgb().Clamped()
	al := clamp01(c.A)
	a = uint32(al*0xffff + 0.5)
	r = uint32(cl.R*al*0xffff + 0.5)
	g = uint32(cl.G*al*0xffff + 0.5)
	b = uint32(cl.B*al*0xffff + 0.5)
	return r, g, b, a
}

func (c Color) rgb() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// Vec2 is a 2D vector used for positions, sizes, scales and path vertices.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// BlendMode is the After Effects layer blend mode. Values match the "bm"
// codes of the document format. The engine only tags nodes with it; the
// renderer decides how (and whether) to composite each mode.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
	BlendAdd
)

// LayerType is the kind of a layer. Values match the "ty" codes of the
// document format except LayerVideo, which the format encodes as 9.
type LayerType uint8

const (
	LayerPrecomp LayerType = iota // nested composition
	LayerSolid                    // solid color rectangle
	LayerImage                    // image asset placement
	LayerNull                     // transform-only
	LayerShape                    // vector shapes
	LayerText                     // text (not shaped by this engine)
	LayerVideo                    // video placeholder
)

// String returns a short name for the layer type.
func (t LayerType) String() string {
	switch t {
	case LayerPrecomp:
		return "precomp"
	case LayerSolid:
		return "solid"
	case LayerImage:
		return "image"
	case LayerNull:
		return "null"
	case LayerShape:
		return "shape"
	case LayerText:
		return "text"
	case LayerVideo:
		return "video"
	default:
		return "unknown"
	}
}

// MatteType selects how a track matte source clips its target.
type MatteType uint8

const (
	MatteNone          MatteType = iota
	MatteAlpha                   // clip to the matte's alpha
	MatteAlphaInverted           // clip to the inverse of the matte's alpha
	MatteLuma                    // clip to the matte's luminance
	MatteLumaInverted            // clip to the inverse of the matte's luminance
)

// Inverted reports whether the matte test is flipped.
func (m MatteType) Inverted() bool {
	return m == MatteAlphaInverted || m == MatteLumaInverted
}

// Luma reports whether the matte uses luminance instead of alpha.
func (m MatteType) Luma() bool {
	return m == MatteLuma || m == MatteLumaInverted
}

// FillRule selects how overlapping sub-paths are filled.
type FillRule uint8

const (
	FillNonZero FillRule = iota
	FillEvenOdd
)

// LineCap is the stroke end style.
type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin is the stroke corner style.
type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
