package motion

import "testing"

// testLayer returns a transform-only layer visible over [in, out].
func testLayer(index int, name string, in, out float64) *Layer {
	return &Layer{
		Index:     index,
		Name:      name,
		Type:      LayerNull,
		InFrame:   in,
		OutFrame:  out,
		Stretch:   1,
		Transform: DefaultTransform(),
	}
}

// shapeLayer returns a shape layer holding one filled rectangle.
func shapeLayer(index int, name string, in, out float64, rect Vec2, c Color) *Layer {
	l := testLayer(index, name, in, out)
	l.Type = LayerShape
	l.Shapes = []ShapeItem{
		{Kind: ShapeRect, Position: StaticProperty(rect.Scale(0.5)), Size: StaticProperty(rect)},
		{Kind: ShapeFill, Color: StaticProperty(c), Opacity: StaticProperty(100.0)},
	}
	return l
}

func squarePath(x, y, size float64) PathShape {
	return RectPath(Vec2{x + size/2, y + size/2}, Vec2{size, size}, 0)
}

// buildTestComp builds templates into a composition the way Animation does
// and returns it with the collected warnings.
func buildTestComp(t *testing.T, lib *Library, templates []*Layer, offset float64) (*Composition, []error) {
	t.Helper()
	if lib == nil {
		lib = NewLibrary()
	}
	var warns []error
	b := &compBuilder{lib: lib, warn: func(err error) { warns = append(warns, err) }}
	c := b.buildComposition("test", templates, offset, Vec2{100, 100}, NewNode("root"))
	return c, warns
}

func containsNode(nodes []*Node, n *Node) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}
