package motion

import "testing"

// --- NewNode ---

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("test")
	if n.Name != "test" {
		t.Errorf("Name = %q, want %q", n.Name, "test")
	}
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", n.Alpha)
	}
	if !n.Visible || !n.Renderable {
		t.Error("new node should be visible and renderable")
	}
	if !n.InheritAlpha {
		t.Error("new node should inherit alpha")
	}
	if n.WorldTransform() != identityTransform {
		t.Errorf("WorldTransform = %v, want identity", n.WorldTransform())
	}
}

func TestNodeIDsUnique(t *testing.T) {
	seen := make(map[uint32]bool)
	for i := 0; i < 100; i++ {
		n := NewNode("")
		if seen[n.ID] {
			t.Fatalf("duplicate ID %d", n.ID)
		}
		seen[n.ID] = true
	}
}

// --- AddChild ---

func TestAddChild(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if parent.NumChildren() != 1 || parent.ChildAt(0) != child {
		t.Error("parent should have child at index 0")
	}
}

func TestAddChildReparent(t *testing.T) {
	p1 := NewNode("p1")
	p2 := NewNode("p2")
	child := NewNode("child")
	p1.AddChild(child)
	p2.AddChild(child)

	if p1.NumChildren() != 0 {
		t.Error("p1 should have 0 children")
	}
	if p2.NumChildren() != 1 {
		t.Error("p2 should have 1 child")
	}
	if child.Parent != p2 {
		t.Error("child.Parent should be p2")
	}
}

func TestAddChildPanics(t *testing.T) {
	tests := []struct {
		name  string
		build func() (parent, child *Node)
	}{
		{"nil", func() (*Node, *Node) { return NewNode("n"), nil }},
		{"self", func() (*Node, *Node) { n := NewNode("n"); return n, n }},
		{"cycle", func() (*Node, *Node) {
			a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
			a.AddChild(b)
			b.AddChild(c)
			return c, a
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, child := tt.build()
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic, got none")
				}
			}()
			parent.AddChild(child)
		})
	}
}

func TestAddChildOrder(t *testing.T) {
	parent := NewNode("parent")
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	children := parent.Children()
	if len(children) != 3 || children[0] != a || children[1] != b || children[2] != c {
		t.Error("children order should be [a, b, c]")
	}
}

// --- RemoveChild ---

func TestRemoveChild(t *testing.T) {
	parent := NewNode("parent")
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	parent.RemoveChild(b)
	if parent.NumChildren() != 2 {
		t.Fatalf("NumChildren = %d, want 2", parent.NumChildren())
	}
	if parent.ChildAt(0) != a || parent.ChildAt(1) != c {
		t.Error("remaining children should be [a, c]")
	}
	if b.Parent != nil {
		t.Error("b.Parent should be nil")
	}
}

func TestRemoveChildWrongParentPanic(t *testing.T) {
	p1 := NewNode("p1")
	p2 := NewNode("p2")
	child := NewNode("child")
	p1.AddChild(child)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for wrong parent, got none")
		}
	}()
	p2.RemoveChild(child)
}

func TestRemoveFromParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)
	child.RemoveFromParent()

	if parent.NumChildren() != 0 {
		t.Error("parent should have 0 children")
	}
	if child.Parent != nil {
		t.Error("child.Parent should be nil")
	}

	orphan := NewNode("orphan")
	orphan.RemoveFromParent() // no-op
}

// --- Find ---

func TestFind(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	b := NewNode("b")
	deep := NewNode("deep")
	root.AddChild(a)
	root.AddChild(b)
	b.AddChild(deep)

	if got := root.Find("deep"); got != deep {
		t.Errorf("Find(deep) = %v, want deep", got)
	}
	if got := root.Find("root"); got != root {
		t.Error("Find should match the receiver")
	}
	if got := root.Find("missing"); got != nil {
		t.Errorf("Find(missing) = %v, want nil", got)
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	root := NewNode("root")
	parent := NewNode("parent")
	child := NewNode("child")
	grandchild := NewNode("grandchild")
	root.AddChild(parent)
	parent.AddChild(child)
	child.AddChild(grandchild)

	parent.Dispose()

	for _, n := range []*Node{parent, child, grandchild} {
		if !n.IsDisposed() {
			t.Errorf("%s should be disposed", n.Name)
		}
		if n.ID != 0 {
			t.Errorf("%s.ID = %d, want 0", n.Name, n.ID)
		}
	}
	if root.NumChildren() != 0 {
		t.Error("root should have 0 children after dispose")
	}
	if root.IsDisposed() {
		t.Error("root should not be disposed")
	}
}

func TestDisposeReleasesMatte(t *testing.T) {
	n := NewNode("target")
	matte := NewNode("matte")
	n.Clip = &Clip{Matte: matte, MatteType: MatteAlpha}

	n.Dispose()
	if !matte.IsDisposed() {
		t.Error("matte node should be disposed with its target")
	}
	if n.Clip != nil {
		t.Error("Clip should be cleared")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	n := NewNode("n")
	n.Dispose()
	n.Dispose()
	if !n.IsDisposed() {
		t.Error("should still be disposed")
	}
}

func TestAddChildDisposedPanicsInDebug(t *testing.T) {
	SetDebugMode(true)
	defer SetDebugMode(false)

	parent := NewNode("parent")
	child := NewNode("child")
	child.Dispose()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for disposed child in debug mode")
		}
	}()
	parent.AddChild(child)
}

// --- Benchmarks ---

func BenchmarkAddRemoveChild(b *testing.B) {
	parent := NewNode("parent")
	child := NewNode("child")
	b.ReportAllocs()
	for b.Loop() {
		parent.AddChild(child)
		parent.RemoveChild(child)
	}
}
