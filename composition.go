package motion

import (
	"fmt"
	"slices"
)

// Asset is a reusable template referenced by id from layer placements:
// either a layer list (a precomp) or an image.
type Asset struct {
	ID     string
	Width  float64
	Height float64
	Layers []*Layer
	Image  *ImageRef
}

// Library maps asset ids to templates. Templates are validated once when the
// document is loaded and never mutated afterwards; every placement builds
// from a clone.
type Library struct {
	assets map[string]*Asset
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{assets: make(map[string]*Asset)}
}

// Add registers an asset, replacing any asset with the same id.
func (lib *Library) Add(a *Asset) {
	lib.assets[a.ID] = a
}

// Asset returns the asset with the given id.
func (lib *Library) Asset(id string) (*Asset, bool) {
	a, ok := lib.assets[id]
	return a, ok
}

// Len returns the number of assets.
func (lib *Library) Len() int {
	return len(lib.assets)
}

// Composition is a time-offset group of layers drawn into one node. Layers
// are held in an arena in declaration order; parenting and matte relations
// are arena indices.
type Composition struct {
	Name       string
	Width      float64
	Height     float64
	TimeOffset float64

	layers  []*Layer
	parents []int // arena index of the transform parent, or -1
	mattes  []int // arena index of the track-matte source, or -1
	order   []int // update order: matte sources, then pre-order over parents

	node     *Node
	viewport Rect
	disposed bool
}

// compBuilder carries the state shared by one recursive composition build.
type compBuilder struct {
	lib   *Library
	warn  func(error)
	stack []string // asset ids being built, for cycle detection
}

// buildComposition clones templates into a new composition drawn into node,
// shifting every layer's window by offset.
func (b *compBuilder) buildComposition(name string, templates []*Layer, offset float64, size Vec2, node *Node) *Composition {
	c := &Composition{
		Name:       name,
		Width:      size.X,
		Height:     size.Y,
		TimeOffset: offset,
		node:       node,
	}
	node.alphaScope = true
	margin := 4 * max(size.X, size.Y, 1)
	c.viewport = Rect{-margin, -margin, size.X + 2*margin, size.Y + 2*margin}

	c.layers = make([]*Layer, 0, len(templates))
	for _, t := range templates {
		l := t.Clone()
		l.offset(offset)
		l.init()
		c.layers = append(c.layers, l)
	}

	for _, l := range c.layers {
		b.resolveContent(l)
	}
	c.bindMattes(b.warn)
	c.attachParents(b.warn)
	c.attachNodes()
	return c
}

// resolveContent binds precomp and image layers to their assets.
func (b *compBuilder) resolveContent(l *Layer) {
	switch l.Type {
	case LayerPrecomp:
		a, ok := b.lib.Asset(l.RefID)
		if !ok || a.Layers == nil {
			b.warn(fmt.Errorf("layer %q: %w: %q", l.Name, ErrUnresolvedAsset, l.RefID))
			return
		}
		if slices.Contains(b.stack, l.RefID) {
			b.warn(fmt.Errorf("layer %q: %w: %q references itself", l.Name, ErrUnresolvedAsset, l.RefID))
			return
		}
		size := Vec2{l.Width, l.Height}
		if size.X == 0 && size.Y == 0 {
			size = Vec2{a.Width, a.Height}
		}
		b.stack = append(b.stack, l.RefID)
		l.Comp = b.buildComposition(l.RefID, a.Layers, l.StartTime, size, l.node)
		b.stack = b.stack[:len(b.stack)-1]
	case LayerImage:
		a, ok := b.lib.Asset(l.RefID)
		if !ok || a.Image == nil {
			b.warn(fmt.Errorf("layer %q: %w: %q", l.Name, ErrUnresolvedAsset, l.RefID))
			return
		}
		img := *a.Image
		l.Image = &img
		l.node.Image = l.Image
	}
}

// bindMattes pairs every layer that declares a matte type with the layer
// immediately preceding it in the list.
func (c *Composition) bindMattes(warn func(error)) {
	c.mattes = make([]int, len(c.layers))
	for i, l := range c.layers {
		c.mattes[i] = -1
		if l.MatteType == MatteNone {
			continue
		}
		if i == 0 {
			warn(fmt.Errorf("layer %q: track matte has no preceding layer", l.Name))
			continue
		}
		c.mattes[i] = i - 1
		c.layers[i-1].IsMatteSource = true
	}
}

// attachParents resolves ParentIndex to arena indices. Missing parents and
// parents that would close a cycle are dropped. A parent that is a matte
// source is not part of the drawn tree, so a transform-only copy of it is
// synthesized to host its children.
func (c *Composition) attachParents(warn func(error)) {
	byIndex := make(map[int]int, len(c.layers))
	for i, l := range c.layers {
		if _, dup := byIndex[l.Index]; !dup {
			byIndex[l.Index] = i
		}
	}
	c.parents = make([]int, len(c.layers))
	for i := range c.parents {
		c.parents[i] = -1
	}

	hosts := make(map[int]int)
	for i := 0; i < len(c.layers); i++ {
		l := c.layers[i]
		if !l.HasParent {
			continue
		}
		p, ok := byIndex[l.ParentIndex]
		if !ok || p == i {
			warn(fmt.Errorf("layer %q: parent %d not found", l.Name, l.ParentIndex))
			continue
		}
		if c.layers[p].IsMatteSource && !l.IsMatteSource {
			h, ok := hosts[p]
			if !ok {
				h = c.addHost(c.layers[p])
				hosts[p] = h
			}
			p = h
		}
		if c.wouldCycle(i, p) {
			warn(fmt.Errorf("layer %q: parent %d would create a cycle", l.Name, l.ParentIndex))
			continue
		}
		c.parents[i] = p
	}
}

// addHost appends a transform-only clone of src to the arena and returns its
// index. The host keeps src's own parent reference, which attachParents
// resolves when it reaches the new entry.
func (c *Composition) addHost(src *Layer) int {
	h := src.Clone()
	h.Type = LayerNull
	h.Name = src.Name + " (parent)"
	h.IsMatteSource = false
	h.MatteType = MatteNone
	h.HasMask = false
	h.Masks = nil
	h.Shapes = nil
	h.init()
	c.layers = append(c.layers, h)
	c.parents = append(c.parents, -1)
	c.mattes = append(c.mattes, -1)
	return len(c.layers) - 1
}

func (c *Composition) wouldCycle(child, parent int) bool {
	for p := parent; p >= 0; p = c.parents[p] {
		if p == child {
			return true
		}
	}
	return false
}

// attachNodes builds the drawable tree. Siblings are added in reverse index
// order so that the first layer of the document is drawn last (on top).
// Matte sources stay out of the tree; they are drawn through their target's
// clip.
func (c *Composition) attachNodes() {
	idx := make([]int, len(c.layers))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return c.layers[b].Index - c.layers[a].Index
	})

	children := make(map[int][]int)
	var roots []int
	for _, i := range idx {
		l := c.layers[i]
		if l.IsMatteSource {
			continue
		}
		if p := c.parents[i]; p >= 0 {
			c.layers[p].node.AddChild(l.node)
			l.node.InheritAlpha = false
			children[p] = append(children[p], i)
			continue
		}
		c.node.AddChild(l.node)
		roots = append(roots, i)
	}

	c.order = c.order[:0]
	for i, l := range c.layers {
		if l.IsMatteSource {
			c.order = append(c.order, i)
		}
	}
	var walk func(i int)
	walk = func(i int) {
		c.order = append(c.order, i)
		for _, ch := range children[i] {
			walk(ch)
		}
	}
	for _, r := range roots {
		walk(r)
	}
}

// Update resolves every layer at frame. Matte sources are resolved first,
// then the drawn layers in pre-order (parents before children), then each
// layer's clip is recomposed from its masks and matte. Matte sources get
// their own clip too, so a masked or chained matte clips its target with
// the clipped result.
func (c *Composition) Update(frame float64) {
	if c == nil || c.disposed {
		return
	}
	for _, i := range c.order {
		c.layers[i].Update(frame)
	}
	for i, l := range c.layers {
		if !l.visible {
			continue
		}
		var matte *Clip
		if m := c.mattes[i]; m >= 0 {
			matte = Compose(c.layers[m], l, frame)
			if matte != nil {
				matte.Space = c.node
				matte.Parents = c.parentChain(m)
			}
		}
		l.node.Clip = mergeClips(l.maskClip(frame, c.viewport), matte)
	}
}

// parentChain returns the nodes of layer i's parent chain, outermost first.
func (c *Composition) parentChain(i int) []*Node {
	var chain []*Node
	for p := c.parents[i]; p >= 0; p = c.parents[p] {
		chain = append(chain, c.layers[p].node)
	}
	slices.Reverse(chain)
	return chain
}

// Layers returns the composition's layers in declaration order, followed by
// any synthesized parent hosts. The returned slice MUST NOT be mutated.
func (c *Composition) Layers() []*Layer {
	return c.layers
}

// LayerByName returns the first layer with the given name.
func (c *Composition) LayerByName(name string) *Layer {
	for _, l := range c.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// LayerByIndex returns the layer with the given document index.
func (c *Composition) LayerByIndex(index int) *Layer {
	for _, l := range c.layers {
		if l.Index == index {
			return l
		}
	}
	return nil
}

// Parent returns the transform parent of l, or nil.
func (c *Composition) Parent(l *Layer) *Layer {
	for i, x := range c.layers {
		if x == l {
			if p := c.parents[i]; p >= 0 {
				return c.layers[p]
			}
			return nil
		}
	}
	return nil
}

// Node returns the node the composition draws into.
func (c *Composition) Node() *Node {
	return c.node
}

// Dispose releases every layer, including matte sources and synthesized
// hosts, which are not reachable through the node tree.
func (c *Composition) Dispose() {
	if c == nil || c.disposed {
		return
	}
	c.disposed = true
	for _, l := range c.layers {
		l.Dispose()
	}
	c.layers = nil
	c.parents = nil
	c.mattes = nil
	c.order = nil
}
