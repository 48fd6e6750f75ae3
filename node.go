package motion

// nodeIDCounter is a plain counter. An animation instance is
// single-threaded, and cmd/motionexport builds every clone before fanning out.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// ImageRef identifies the image a node displays. Binding the path to pixels
// is the renderer's job.
type ImageRef struct {
	AssetID string
	Path    string
	Width   float64
	Height  float64
}

// Node is one element of the drawable tree produced per frame. Renderers read
// its resolved transform, alpha, visibility, clip, blend mode and paint ops;
// the engine writes them during Animation.Update.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64 // radians
	PivotX   float64
	PivotY   float64

	// Computed by UpdateWorld
	worldTransform [6]float64
	worldAlpha     float64
	baseAlpha      float64

	// Visibility
	Alpha      float64
	Visible    bool
	Renderable bool

	// InheritAlpha multiplies the parent's alpha into this node. Layers
	// attached to a transform parent turn it off: parenting passes transforms,
	// not opacity.
	InheritAlpha bool

	// alphaScope marks a composition container: nodes below it that do not
	// inherit alpha start from this node's world alpha.
	alphaScope bool

	BlendMode BlendMode

	// Content
	Shapes []DrawOp
	Image  *ImageRef

	// Clip restricts where the node and its subtree draw. Nil draws unclipped.
	Clip *Clip

	// Metadata
	UserData any

	disposed bool
}

func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Visible = true
	n.Renderable = true
	n.InheritAlpha = true
	n.worldTransform = identityTransform
	n.worldAlpha = 1
	n.baseAlpha = 1
}

// NewNode creates an empty node with identity transform.
func NewNode(name string) *Node {
	n := &Node{Name: name}
	nodeDefaults(n)
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("motion: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("motion: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	if globalDebug {
		debugCheckTreeDepth(child)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("motion: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list in draw order (first drawn first). The
// returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Find returns the first node in this subtree (pre-order) with the given
// name, or nil.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants and the clip's matte node.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	if n.Clip != nil && n.Clip.Matte != nil && !n.Clip.Matte.disposed {
		n.Clip.Matte.dispose()
	}
	n.Clip = nil
	n.Shapes = nil
	n.Image = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
