package motion

import (
	"errors"
	"math"
	"os"
	"testing"
	"time"
)

func loadFixture(t testing.TB) *Animation {
	t.Helper()
	data, err := os.ReadFile("testdata/fixture.json")
	if err != nil {
		t.Fatal(err)
	}
	a, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func layerNode(t *testing.T, a *Animation, name string) *Node {
	t.Helper()
	l := a.Composition().LayerByName(name)
	if l == nil {
		t.Fatalf("layer %q not found", name)
	}
	return l.Node()
}

func TestLoadFixture(t *testing.T) {
	a := loadFixture(t)
	if a.Name != "fixture" || a.Version != "5.7.4" {
		t.Errorf("name/version = %q/%q", a.Name, a.Version)
	}
	if a.Width != 100 || a.Height != 100 || a.FrameRate != 30 || a.InFrame != 0 || a.OutFrame != 60 {
		t.Errorf("header = %vx%v @%v [%v, %v]", a.Width, a.Height, a.FrameRate, a.InFrame, a.OutFrame)
	}
	if a.Duration() != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", a.Duration())
	}
	if a.Frame() != 0 {
		t.Errorf("initial frame = %v, want InFrame", a.Frame())
	}
	if a.Root() == nil || a.Root() != a.Composition().Node() {
		t.Error("Root should be the root composition's node")
	}
}

func TestLoadFixtureWarnings(t *testing.T) {
	a := loadFixture(t)
	warns := a.Warnings()
	if len(warns) != 2 {
		t.Fatalf("warnings = %v, want unsupported layer type and invalid mask mode", warns)
	}
	var sawMask bool
	for _, w := range warns {
		if errors.Is(w, ErrInvalidMaskMode) {
			sawMask = true
		}
	}
	if !sawMask {
		t.Error("missing ErrInvalidMaskMode warning")
	}
	if cam := a.Composition().LayerByName("camera"); cam == nil || cam.Type != LayerNull {
		t.Error("unknown layer type should load as null")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	if _, err := Load([]byte(`{"layers": [`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil document")
	}
}

func TestAnimationExplicitEndKeyframes(t *testing.T) {
	a := loadFixture(t)
	a.Update(15)
	n := layerNode(t, a, "mover")
	assertNear(t, "mover.X", n.X, 50)
	assertNear(t, "mover.Y", n.Y, 0)

	a.Update(45) // after the last keyframe
	assertNear(t, "mover.X", n.X, 100)
}

func TestAnimationNextStartKeyframes(t *testing.T) {
	a := loadFixture(t)
	n := layerNode(t, a, "fader")
	a.Update(5)
	assertNear(t, "fader alpha at 5", n.Alpha, 0.5)
	a.Update(20)
	assertNear(t, "fader alpha at 20", n.Alpha, 0)
}

func TestAnimationHoldKeyframe(t *testing.T) {
	a := loadFixture(t)
	n := layerNode(t, a, "held")
	a.Update(9.9)
	assertNear(t, "rotation at 9.9", n.Rotation, 0)
	a.Update(10)
	assertNear(t, "rotation at 10", n.Rotation, math.Pi/2)
}

func TestAnimationSeparatedPosition(t *testing.T) {
	a := loadFixture(t)
	a.Update(5)
	n := layerNode(t, a, "split")
	assertNear(t, "split.X", n.X, 5)
	assertNear(t, "split.Y", n.Y, 5)
}

func TestAnimationFrameZero(t *testing.T) {
	a := loadFixture(t)
	mover := a.Composition().LayerByName("mover")
	n := mover.Node()
	if n.X != 0 || n.Y != 0 || n.Alpha != 1 || n.ScaleX != 1 {
		t.Errorf("mover at frame 0 = pos (%v, %v) alpha %v scale %v", n.X, n.Y, n.Alpha, n.ScaleX)
	}

	ops := n.Shapes
	if len(ops) != 1 {
		t.Fatalf("mover ops = %d, want 1", len(ops))
	}
	op := ops[0]
	if op.Fill == nil || op.Fill.Color != (Color{1, 0, 0, 1}) || op.Fill.Rule != FillEvenOdd {
		t.Errorf("fill = %+v", op.Fill)
	}
	if op.Stroke == nil || op.Stroke.Width != 2 || op.Stroke.Cap != CapButt || op.Stroke.Join != JoinBevel {
		t.Errorf("stroke = %+v", op.Stroke)
	}
	// The group transform moves the 20x20 rect centred on the origin by (10, 10).
	for _, v := range op.Paths[0].Vertices {
		if v.X < 0 || v.X > 20 || v.Y < 0 || v.Y > 20 {
			t.Errorf("vertex %v outside (0,0)-(20,20)", v)
		}
	}
}

func TestAnimationPrecompAndImage(t *testing.T) {
	a := loadFixture(t)
	pre := a.Composition().LayerByName("pre")
	if pre.Comp == nil {
		t.Fatal("precomp not built")
	}
	inner := pre.Comp.LayerByName("inner")
	if inner.InFrame != 24 || inner.OutFrame != 34 {
		t.Errorf("inner window = [%v, %v], want [24, 34]", inner.InFrame, inner.OutFrame)
	}
	a.Update(25)
	if !inner.Visible() {
		t.Error("inner should be visible at 25")
	}
	fill := inner.Node().Shapes[0].Fill
	if fill == nil || fill.Color != (Color{0, 0, 1, 1}) {
		t.Errorf("0..255 color decoded as %+v", fill)
	}

	pic := a.Composition().LayerByName("pic")
	if pic.Node().Image == nil || pic.Node().Image.Path != "images/a.png" {
		t.Errorf("image = %+v", pic.Node().Image)
	}
	if pic.Node().Parent != layerNode(t, a, "mover") {
		t.Error("pic should be parented to mover")
	}
	a.Update(15)
	assertNear(t, "pic world x", pic.Node().WorldTransform()[4], 55)
}

func TestAnimationMasks(t *testing.T) {
	a := loadFixture(t)
	a.Update(1)
	clip := layerNode(t, a, "masked").Clip
	if clip == nil || len(clip.Paths) != 2 {
		t.Fatalf("clip = %+v, want two mask paths", clip)
	}
	if clip.Paths[0].Mode != MaskAdditive {
		t.Errorf("invalid mode should fall back to additive, got %v", clip.Paths[0].Mode)
	}
	cut := clip.Paths[1]
	if cut.Mode != MaskSubtract || !cut.Inverted || cut.Rule != FillEvenOdd || cut.Opacity != 0.5 {
		t.Errorf("cut = %+v", cut)
	}
}

func TestAnimationUpdateIdempotent(t *testing.T) {
	a := loadFixture(t)
	snapshot := func() [4]float64 {
		m := layerNode(t, a, "mover")
		f := layerNode(t, a, "fader")
		return [4]float64{m.X, m.WorldTransform()[4], f.Alpha, f.WorldAlpha()}
	}
	a.Update(7)
	first := snapshot()
	a.Update(7)
	if got := snapshot(); got != first {
		t.Errorf("second Update(7) = %v, want %v", got, first)
	}
	a.Update(40)
	a.Update(7)
	if got := snapshot(); got != first {
		t.Errorf("Update(7) after 40 = %v, want %v", got, first)
	}
	if a.Frame() != 7 {
		t.Errorf("Frame = %v, want 7", a.Frame())
	}
}

func TestAnimationClone(t *testing.T) {
	a := loadFixture(t)
	c := a.Clone()
	if c.Root() == a.Root() {
		t.Fatal("clone shares the root node")
	}
	if len(c.Warnings()) != len(a.Warnings()) {
		t.Errorf("clone warnings = %d, want %d", len(c.Warnings()), len(a.Warnings()))
	}

	a.Update(15)
	c.Update(30)
	assertNear(t, "original mover.X", layerNode(t, a, "mover").X, 50)
	assertNear(t, "clone mover.X", layerNode(t, c, "mover").X, 100)

	c.Dispose()
	a.Update(20)
	if layerNode(t, a, "mover").IsDisposed() {
		t.Error("disposing the clone affected the original")
	}
}

type countingRenderer struct {
	roots []*Node
}

func (r *countingRenderer) Render(root *Node) error {
	r.roots = append(r.roots, root)
	return nil
}

func TestAnimationRenderAndDispose(t *testing.T) {
	a := loadFixture(t)
	var r countingRenderer
	if err := a.Render(&r); err != nil {
		t.Fatal(err)
	}
	if len(r.roots) != 1 || r.roots[0] != a.Root() {
		t.Error("renderer should receive the root node")
	}

	a.Dispose()
	if err := a.Render(&r); !errors.Is(err, ErrDisposed) {
		t.Errorf("Render after Dispose = %v, want ErrDisposed", err)
	}
	a.Update(10) // no-op
	a.Dispose()
}

func TestAnimationDrivenByPlayers(t *testing.T) {
	a := loadFixture(t)
	dp := a.NewDeltaPlayer()
	dp.Play(false)
	dp.Update(500)
	if math.Abs(a.Frame()-15) > 1e-9 {
		t.Errorf("delta player drove frame %v, want 15", a.Frame())
	}

	p := a.NewPlayer()
	p.Play(false)
	p.Update(0)
	p.Update(1000)
	if math.Abs(a.Frame()-30) > 1e-9 {
		t.Errorf("player drove frame %v, want 30", a.Frame())
	}
	if p.InFrame != a.InFrame || p.OutFrame != a.OutFrame || p.FrameRate != a.FrameRate {
		t.Error("player range should match the document")
	}
}

func TestAnimationStaticDuration(t *testing.T) {
	a, err := Load([]byte(`{"nm":"still","w":10,"h":10,"fr":0,"ip":0,"op":0,"layers":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if a.Duration() != 0 {
		t.Errorf("Duration = %v, want 0", a.Duration())
	}
}

func BenchmarkAnimationUpdate(b *testing.B) {
	a := loadFixture(b)
	b.ReportAllocs()
	f := 0.0
	for b.Loop() {
		a.Update(f)
		f++
		if f >= a.OutFrame {
			f = 0
		}
	}
}
