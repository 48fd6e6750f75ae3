package motion

import (
	"errors"
	"time"
)

// ErrDisposed is returned when a disposed Animation is rendered.
var ErrDisposed = errors.New("motion: animation disposed")

// Renderer draws a resolved node tree. Implementations live outside the
// engine: see the raster and ebitenrender packages.
type Renderer interface {
	Render(root *Node) error
}

// Animation is one playable instance of a document: the root composition,
// its node tree, and the frame it was last updated to. An Animation is not
// safe for concurrent use; use Clone to get an independent instance per
// goroutine.
type Animation struct {
	Name      string
	Version   string
	Width     float64
	Height    float64
	FrameRate float64
	InFrame   float64
	OutFrame  float64

	lib       *Library
	templates []*Layer

	root *Composition
	node *Node

	warnings  []error
	loadWarns int // leading warnings that came from decoding, shared by clones
	frame     float64
	disposed  bool
}

// Load parses a Bodymovin JSON document and builds an Animation at its first
// frame. Only malformed JSON is an error; other problems are collected in
// Warnings.
func Load(data []byte) (*Animation, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return New(doc)
}

// New builds an Animation from a parsed document.
func New(doc *Document) (*Animation, error) {
	if doc == nil {
		return nil, errors.New("motion: nil document")
	}
	a := &Animation{
		Name:      doc.Name,
		Version:   doc.Version,
		Width:     doc.Width,
		Height:    doc.Height,
		FrameRate: doc.FrameRate,
		InFrame:   doc.InFrame,
		OutFrame:  doc.OutFrame,
	}
	ld := &loader{warn: a.warn}
	a.lib = ld.library(doc.Assets)
	a.templates = ld.layers(doc.Layers)
	a.loadWarns = len(a.warnings)
	a.build()
	return a, nil
}

func (a *Animation) warn(err error) {
	a.warnings = append(a.warnings, err)
	debugWarn(err)
}

// build instantiates the root composition from the templates and resolves
// the first frame.
func (a *Animation) build() {
	a.node = NewNode(a.Name)
	b := &compBuilder{lib: a.lib, warn: a.warn}
	a.root = b.buildComposition(a.Name, a.templates, 0, Vec2{a.Width, a.Height}, a.node)
	a.Update(a.InFrame)
}

// Update resolves every layer at frame and recomputes world transforms. The
// result depends only on frame: calling Update twice with the same frame
// leaves the tree unchanged.
func (a *Animation) Update(frame float64) {
	if a.disposed {
		return
	}
	a.frame = frame

	var stats debugStats
	var t0 time.Time
	if globalDebug {
		t0 = time.Now()
	}

	a.root.Update(frame)

	if globalDebug {
		stats.evaluateTime = time.Since(t0)
		t0 = time.Now()
	}

	UpdateWorld(a.node, identityTransform, 1)

	if globalDebug {
		stats.worldTime = time.Since(t0)
		stats.layerCount, stats.visibleCount = countLayers(a.root)
		debugLog(a.Name, frame, stats)
	}
}

// Frame returns the frame of the last Update.
func (a *Animation) Frame() float64 {
	return a.frame
}

// Root returns the root node of the drawable tree.
func (a *Animation) Root() *Node {
	return a.node
}

// Composition returns the root composition.
func (a *Animation) Composition() *Composition {
	return a.root
}

// Warnings returns every problem found while loading and building. The
// returned slice MUST NOT be mutated.
func (a *Animation) Warnings() []error {
	return a.warnings
}

// Duration returns the playable length at the document frame rate, or zero
// for a static document.
func (a *Animation) Duration() time.Duration {
	if a.FrameRate <= 0 || a.OutFrame <= a.InFrame {
		return 0
	}
	return time.Duration((a.OutFrame - a.InFrame) / a.FrameRate * float64(time.Second))
}

// Clone builds an independent instance from the same templates. The clone
// shares no mutable state with a and starts at InFrame.
func (a *Animation) Clone() *Animation {
	c := &Animation{
		Name:      a.Name,
		Version:   a.Version,
		Width:     a.Width,
		Height:    a.Height,
		FrameRate: a.FrameRate,
		InFrame:   a.InFrame,
		OutFrame:  a.OutFrame,
		lib:       a.lib,
		templates: a.templates,
		loadWarns: a.loadWarns,
	}
	c.warnings = append([]error(nil), a.warnings[:a.loadWarns]...)
	c.build()
	return c
}

// NewPlayer returns an absolute-time clock over the document's range whose
// frames drive this animation.
func (a *Animation) NewPlayer() *Player {
	p := NewPlayer(a.InFrame, a.OutFrame, a.FrameRate)
	p.OnFrame = a.Update
	return p
}

// NewDeltaPlayer returns a delta-time clock over the document's range whose
// frames drive this animation.
func (a *Animation) NewDeltaPlayer() *DeltaPlayer {
	p := NewDeltaPlayer(a.InFrame, a.OutFrame, a.FrameRate)
	p.OnFrame = a.Update
	return p
}

// Render hands the resolved tree to r.
func (a *Animation) Render(r Renderer) error {
	if a.disposed {
		return ErrDisposed
	}
	return r.Render(a.node)
}

// Dispose releases the composition tree. The Animation must not be used
// afterwards; templates shared with clones are left intact.
func (a *Animation) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	a.root.Dispose()
	a.node.Dispose()
	a.root = nil
}
