package motion

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- computeLocalTransform ---

func TestLocalTransform(t *testing.T) {
	tests := []struct {
		name  string
		setup func(n *Node)
		want  [6]float64
	}{
		{"identity", func(n *Node) {}, [6]float64{1, 0, 0, 1, 0, 0}},
		{"translation", func(n *Node) { n.SetPosition(10, 20) }, [6]float64{1, 0, 0, 1, 10, 20}},
		{"scale", func(n *Node) { n.SetScale(2, 3) }, [6]float64{2, 0, 0, 3, 0, 0}},
		{"rotation90", func(n *Node) { n.Rotation = math.Pi / 2 }, [6]float64{0, 1, -1, 0, 0, 0}},
		// T(100,200) * T(-16,-16)
		{"pivot", func(n *Node) { n.SetPosition(100, 200); n.SetPivot(16, 16) }, [6]float64{1, 0, 0, 1, 84, 184}},
		{"combined", func(n *Node) {
			n.SetPosition(50, 100)
			n.SetScale(2, 2)
			n.Rotation = math.Pi / 2
		}, [6]float64{0, 2, -2, 0, 50, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNode("test")
			tt.setup(n)
			assertMatrix(t, tt.name, computeLocalTransform(n), tt.want)
		})
	}
}

func TestTransformMatrixDocumentUnits(t *testing.T) {
	tr := DefaultTransform()
	tr.Anchor = StaticProperty(Vec2{10, 10})
	tr.Position = StaticProperty(Vec2{100, 50})
	tr.Scale = StaticProperty(Vec2{200, 50})
	tr.Rotation = StaticProperty(90.0)

	m := tr.Matrix(0)
	// The anchor point lands on the position.
	x, y := transformPoint(m, 10, 10)
	assertNear(t, "anchor.x", x, 100)
	assertNear(t, "anchor.y", y, 50)
	// +x in layer space is scaled by 2 and rotated onto +y.
	x, y = transformPoint(m, 11, 10)
	assertNear(t, "unitX.x", x, 100)
	assertNear(t, "unitX.y", y, 52)
}

// --- multiplyAffine / invertAffine ---

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 1, 3, 4, 5, 6}
	assertMatrix(t, "id*m", MultiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*id", MultiplyAffine(m, identityTransform), m)
}

func TestMultiplyAffineTranslations(t *testing.T) {
	a := [6]float64{1, 0, 0, 1, 10, 20}
	b := [6]float64{1, 0, 0, 1, 5, 3}
	assertMatrix(t, "translations", multiplyAffine(a, b), [6]float64{1, 0, 0, 1, 15, 23})
}

func TestInvertAffine(t *testing.T) {
	n := NewNode("test")
	n.SetScale(2, 1)
	n.Rotation = math.Pi / 3
	n.SetPosition(10, 20)
	m := computeLocalTransform(n)
	assertMatrix(t, "m*inv=id", multiplyAffine(m, invertAffine(m)), identityTransform)
}

func TestInvertAffineSingularReturnsIdentity(t *testing.T) {
	for _, m := range [][6]float64{
		{0, 0, 0, 1, 10, 20},
		{0, 0, 0, 0, 50, 100},
	} {
		assertMatrix(t, "singular", invertAffine(m), identityTransform)
	}
}

// --- UpdateWorld ---

func TestWorldTransformParentChild(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)
	parent.X = 100
	child.X = 10

	UpdateWorld(parent, identityTransform, 1)

	assertNear(t, "parent.tx", parent.WorldTransform()[4], 100)
	assertNear(t, "child.tx", child.WorldTransform()[4], 110)
}

func TestDeepHierarchy(t *testing.T) {
	nodes := make([]*Node, 10)
	for i := range nodes {
		nodes[i] = NewNode("")
		nodes[i].X = 10
		if i > 0 {
			nodes[i-1].AddChild(nodes[i])
		}
	}
	UpdateWorld(nodes[0], identityTransform, 1)
	assertNear(t, "deep.tx", nodes[9].WorldTransform()[4], 100)
}

func TestAlphaPropagation(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)
	parent.Alpha = 0.5
	child.Alpha = 0.5

	UpdateWorld(parent, identityTransform, 1)

	assertNear(t, "parent", parent.WorldAlpha(), 0.5)
	assertNear(t, "child", child.WorldAlpha(), 0.25)
}

func TestAlphaParentedLayerUsesCompositionAlpha(t *testing.T) {
	comp := NewNode("comp")
	comp.alphaScope = true
	comp.Alpha = 0.5
	parentLayer := NewNode("parent")
	parentLayer.Alpha = 0.2
	childLayer := NewNode("child")
	childLayer.InheritAlpha = false
	childLayer.Alpha = 0.8
	content := NewNode("content")
	comp.AddChild(parentLayer)
	parentLayer.AddChild(childLayer)
	childLayer.AddChild(content)

	UpdateWorld(comp, identityTransform, 1)

	assertNear(t, "parent", parentLayer.WorldAlpha(), 0.1)
	// The child skips its parent layer's opacity but keeps the composition's.
	assertNear(t, "child", childLayer.WorldAlpha(), 0.4)
	assertNear(t, "content", content.WorldAlpha(), 0.4)
}

func TestUpdateWorldMatteUsesClipSpace(t *testing.T) {
	comp := NewNode("comp")
	comp.X = 100
	target := NewNode("target")
	target.X = 50
	comp.AddChild(target)
	matte := NewNode("matte")
	matte.X = 5
	target.Clip = &Clip{Matte: matte, MatteType: MatteAlpha, Space: comp}

	UpdateWorld(comp, identityTransform, 1)

	// The matte is placed in the composition, not under the target.
	assertNear(t, "matte.tx", matte.WorldTransform()[4], 105)
}

// --- WorldToLocal / LocalToWorld ---

func TestWorldToLocalRoundtrip(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)
	parent.SetPosition(100, 50)
	child.SetPosition(10, 20)
	child.SetScale(2, 3)
	child.Rotation = math.Pi / 6

	UpdateWorld(parent, identityTransform, 1)

	wx, wy := 150.0, 80.0
	lx, ly := child.WorldToLocal(wx, wy)
	wx2, wy2 := child.LocalToWorld(lx, ly)
	assertNear(t, "roundtrip.x", wx2, wx)
	assertNear(t, "roundtrip.y", wy2, wy)
}

func TestWorldToLocalZeroScale(t *testing.T) {
	n := NewNode("test")
	n.SetScale(0, 0)
	UpdateWorld(n, identityTransform, 1)

	lx, ly := n.WorldToLocal(100, 200)
	assertNear(t, "lx", lx, 100)
	assertNear(t, "ly", ly, 200)
}

// --- Benchmarks ---

func BenchmarkComputeLocalTransform(b *testing.B) {
	n := NewNode("bench")
	n.SetPosition(100, 200)
	n.SetScale(2, 3)
	n.Rotation = 0.5
	n.SetPivot(16, 16)
	b.ReportAllocs()
	for b.Loop() {
		_ = computeLocalTransform(n)
	}
}

func BenchmarkUpdateWorld10k(b *testing.B) {
	root := NewNode("root")
	for i := 0; i < 100; i++ {
		parent := NewNode("")
		parent.X = float64(i)
		root.AddChild(parent)
		for j := 0; j < 100; j++ {
			child := NewNode("")
			child.X = float64(j)
			parent.AddChild(child)
		}
	}
	b.ReportAllocs()
	for b.Loop() {
		UpdateWorld(root, identityTransform, 1)
	}
}
