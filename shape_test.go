package motion

import (
	"math"
	"testing"
)

var (
	red   = Color{1, 0, 0, 1}
	green = Color{0, 1, 0, 1}
	blue  = Color{0, 0, 1, 1}
)

func rectItem(x, y, size float64) ShapeItem {
	return ShapeItem{
		Kind:     ShapeRect,
		Position: StaticProperty(Vec2{x + size/2, y + size/2}),
		Size:     StaticProperty(Vec2{size, size}),
	}
}

func fillItem(c Color) ShapeItem {
	return ShapeItem{Kind: ShapeFill, Color: StaticProperty(c), Opacity: StaticProperty(100.0)}
}

func strokeItem(c Color, width float64) ShapeItem {
	return ShapeItem{
		Kind:       ShapeStroke,
		Color:      StaticProperty(c),
		Opacity:    StaticProperty(100.0),
		Width:      StaticProperty(width),
		LineCap:    CapRound,
		LineJoin:   JoinRound,
		MiterLimit: 4,
	}
}

func groupItem(tr *Transform, items ...ShapeItem) ShapeItem {
	return ShapeItem{Kind: ShapeGroup, Transform: tr, Items: items}
}

func TestBuildDrawOpsReverseOrder(t *testing.T) {
	items := []ShapeItem{
		groupItem(nil, rectItem(0, 0, 10), fillItem(red)),
		groupItem(nil, rectItem(5, 5, 10), fillItem(blue)),
	}
	ops := BuildDrawOps(items, 0)
	if len(ops) != 2 {
		t.Fatalf("len(ops) = %d, want 2", len(ops))
	}
	// The first declared group draws last, on top.
	if ops[0].Fill.Color != blue || ops[1].Fill.Color != red {
		t.Errorf("fill order = %v, %v; want blue then red", ops[0].Fill.Color, ops[1].Fill.Color)
	}
}

func TestBuildDrawOpsGeometryReverseOrder(t *testing.T) {
	items := []ShapeItem{rectItem(0, 0, 10), rectItem(20, 0, 10), fillItem(red)}
	ops := BuildDrawOps(items, 0)
	if len(ops) != 1 || len(ops[0].Paths) != 2 {
		t.Fatalf("ops = %+v, want one op with two paths", ops)
	}
	if ops[0].Paths[0].Vertices[0].X != 30 {
		t.Errorf("first path should be the last declared rect, got %v", ops[0].Paths[0].Vertices)
	}
}

func TestBuildDrawOpsGroupsInterleaved(t *testing.T) {
	items := []ShapeItem{
		rectItem(0, 0, 10),
		fillItem(red),
		groupItem(nil, rectItem(50, 0, 10), fillItem(blue)),
		rectItem(100, 0, 10),
	}
	ops := BuildDrawOps(items, 0)
	if len(ops) != 3 {
		t.Fatalf("len(ops) = %d, want 3", len(ops))
	}
	// Last declared first: the trailing rect, the group, then the leading rect on top.
	wantX := []float64{110, 60, 10}
	wantFill := []Color{red, blue, red}
	for i, op := range ops {
		if len(op.Paths) != 1 || op.Paths[0].Vertices[0].X != wantX[i] {
			t.Errorf("ops[%d] paths = %+v, want one rect at x %v", i, op.Paths, wantX[i])
		}
		if op.Fill == nil || op.Fill.Color != wantFill[i] {
			t.Errorf("ops[%d] fill = %+v, want %v", i, op.Fill, wantFill[i])
		}
	}
}

func TestBuildDrawOpsFillPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		stroke    ShapeItem
		wantFill  Color
		hasStroke bool
	}{
		{"strokeFillEnabled", func() ShapeItem { s := strokeItem(green, 2); s.FillEnabled = true; return s }(), green, true},
		{"ownFill", strokeItem(green, 2), red, true},
		{"zeroWidthStroke", strokeItem(green, 0), red, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []ShapeItem{rectItem(0, 0, 10), tt.stroke, fillItem(red)}
			ops := BuildDrawOps(items, 0)
			if len(ops) != 1 {
				t.Fatalf("len(ops) = %d, want 1", len(ops))
			}
			op := ops[0]
			if op.Fill == nil || op.Fill.Color != tt.wantFill {
				t.Errorf("fill = %+v, want %v", op.Fill, tt.wantFill)
			}
			if (op.Stroke != nil) != tt.hasStroke {
				t.Errorf("stroke = %+v, want present=%v", op.Stroke, tt.hasStroke)
			}
			if op.Stroke != nil && (op.Stroke.Color != green || op.Stroke.Width != 2 || op.Stroke.Cap != CapRound) {
				t.Errorf("stroke = %+v", op.Stroke)
			}
		})
	}
}

func TestBuildDrawOpsFirstPaintWins(t *testing.T) {
	items := []ShapeItem{rectItem(0, 0, 10), fillItem(red), fillItem(blue)}
	ops := BuildDrawOps(items, 0)
	if ops[0].Fill.Color != red {
		t.Errorf("fill = %v, want the first declared fill", ops[0].Fill.Color)
	}
}

func TestBuildDrawOpsOpacity(t *testing.T) {
	fill := fillItem(red)
	fill.Opacity = StaticProperty(50.0)
	tr := DefaultTransform()
	tr.Opacity = StaticProperty(50.0)
	items := []ShapeItem{groupItem(&tr, rectItem(0, 0, 10), fill)}

	ops := BuildDrawOps(items, 0)
	if got := ops[0].Fill.Color.A; math.Abs(got-0.25) > 1e-12 {
		t.Errorf("alpha = %v, want 0.25", got)
	}
}

func TestBuildDrawOpsGroupTransform(t *testing.T) {
	tr := DefaultTransform()
	tr.Position = StaticProperty(Vec2{100, 0})
	tr.Scale = StaticProperty(Vec2{200, 200})
	items := []ShapeItem{groupItem(&tr, rectItem(0, 0, 10), fillItem(red))}

	ops := BuildDrawOps(items, 0)
	got := ops[0].Paths[0].Vertices
	// Rect vertices start top-right: (10, 0) scaled by 2 then moved by 100.
	if got[0] != (Vec2{120, 0}) {
		t.Errorf("vertex 0 = %v, want (120, 0)", got[0])
	}
}

func TestBuildDrawOpsInheritedPaint(t *testing.T) {
	inner := groupItem(nil, rectItem(0, 0, 10))
	items := []ShapeItem{groupItem(nil, inner, fillItem(red))}
	ops := BuildDrawOps(items, 0)
	if len(ops) != 1 || ops[0].Fill == nil || ops[0].Fill.Color != red {
		t.Errorf("ops = %+v, want the inner geometry filled red", ops)
	}
}

func TestBuildDrawOpsHidden(t *testing.T) {
	hiddenRect := rectItem(0, 0, 10)
	hiddenRect.Hidden = true
	hiddenFill := fillItem(blue)
	hiddenFill.Hidden = true
	items := []ShapeItem{hiddenRect, rectItem(20, 0, 10), hiddenFill, fillItem(red)}

	ops := BuildDrawOps(items, 0)
	if len(ops) != 1 || len(ops[0].Paths) != 1 || ops[0].Fill.Color != red {
		t.Errorf("ops = %+v, want one red path", ops)
	}
}

func TestBuildDrawOpsNoPaint(t *testing.T) {
	if ops := BuildDrawOps([]ShapeItem{rectItem(0, 0, 10)}, 0); len(ops) != 0 {
		t.Errorf("geometry without paint produced %d ops", len(ops))
	}
	if ops := BuildDrawOps([]ShapeItem{fillItem(red)}, 0); len(ops) != 0 {
		t.Errorf("paint without geometry produced %d ops", len(ops))
	}
}

func TestBuildDrawOpsTrim(t *testing.T) {
	path := ShapeItem{Kind: ShapePath, Path: StaticProperty(PathShape{Vertices: []Vec2{{0, 0}, {100, 0}}})}
	trim := ShapeItem{
		Kind:       ShapeTrim,
		TrimStart:  StaticProperty(10.0),
		TrimEnd:    StaticProperty(60.0),
		TrimOffset: StaticProperty(0.0),
	}
	ops := BuildDrawOps([]ShapeItem{path, trim, strokeItem(red, 1)}, 0)
	got := ops[0].Paths[0].Vertices
	if got[0] != (Vec2{10, 0}) || got[1] != (Vec2{60, 0}) {
		t.Errorf("trimmed = %v, want (10,0)-(60,0)", got)
	}

	trim.TrimOffset = StaticProperty(36.0) // a tenth of a turn
	ops = BuildDrawOps([]ShapeItem{path, trim, strokeItem(red, 1)}, 0)
	got = ops[0].Paths[0].Vertices
	if math.Abs(got[0].X-20) > 1e-9 || math.Abs(got[1].X-70) > 1e-9 {
		t.Errorf("offset trim = %v, want (20,0)-(70,0)", got)
	}
}

func TestBuildDrawOpsAnimatedGeometry(t *testing.T) {
	size, err := AnimatedProperty([]Keyframe[Vec2]{
		{StartFrame: 0, EndFrame: 10, From: Vec2{10, 10}, To: Vec2{30, 30}},
	}, LerpVec2)
	if err != nil {
		t.Fatal(err)
	}
	rect := ShapeItem{Kind: ShapeRect, Position: StaticProperty(Vec2{}), Size: size}
	items := []ShapeItem{rect, fillItem(red)}
	if !items[0].IsAnimated() {
		t.Error("rect should report animated")
	}

	ops := BuildDrawOps(items, 5)
	if got := ops[0].Paths[0].Vertices[0]; got != (Vec2{10, -10}) {
		t.Errorf("vertex 0 at frame 5 = %v, want (10, -10)", got)
	}
}

func TestShapeItemClone(t *testing.T) {
	tr := DefaultTransform()
	g := groupItem(&tr, rectItem(0, 0, 10), fillItem(red))
	c := g.Clone()
	c.Items[1].Color = StaticProperty(blue)
	c.Transform.Opacity = StaticProperty(10.0)

	if g.Items[1].Color.Value(0) != red {
		t.Error("clone shares nested items")
	}
	if g.Transform.Opacity.Value(0) != 100 {
		t.Error("clone shares the group transform")
	}
}

func TestShapeItemIsAnimatedNested(t *testing.T) {
	op, _ := AnimatedProperty([]Keyframe[float64]{{StartFrame: 0, EndFrame: 1, From: 0, To: 100}}, LerpScalar)
	fill := fillItem(red)
	fill.Opacity = op
	static := groupItem(nil, rectItem(0, 0, 1), fillItem(red))
	animated := groupItem(nil, groupItem(nil, rectItem(0, 0, 1), fill))

	if static.IsAnimated() {
		t.Error("static group reports animated")
	}
	if !animated.IsAnimated() {
		t.Error("nested animated fill not detected")
	}
}

func BenchmarkBuildDrawOps(b *testing.B) {
	var items []ShapeItem
	for i := 0; i < 20; i++ {
		items = append(items, groupItem(nil, rectItem(float64(i), 0, 10), fillItem(red), strokeItem(blue, 2)))
	}
	b.ReportAllocs()
	for b.Loop() {
		_ = BuildDrawOps(items, 0)
	}
}
