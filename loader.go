package motion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// decodeFunc decodes one literal value of a value domain.
type decodeFunc[V any] func(raw json.RawMessage) (V, error)

// loader converts a Document into layer templates. Problems that only affect
// part of the document are collected through warn; the load carries on with
// defaults.
type loader struct {
	warn func(error)
}

// --- literal decoders ---

// decodeNumbers reads either a number or an array of numbers.
func decodeNumbers(raw json.RawMessage) ([]float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("missing value")
	}
	if raw[0] == '[' {
		var arr []float64
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, err
		}
		return arr, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return []float64{f}, nil
}

func decodeScalar(raw json.RawMessage) (float64, error) {
	n, err := decodeNumbers(raw)
	if err != nil {
		return 0, err
	}
	if len(n) == 0 {
		return 0, errors.New("empty array")
	}
	return n[0], nil
}

func decodeVec2(raw json.RawMessage) (Vec2, error) {
	n, err := decodeNumbers(raw)
	if err != nil {
		return Vec2{}, err
	}
	switch len(n) {
	case 0:
		return Vec2{}, errors.New("empty array")
	case 1:
		return Vec2{n[0], n[0]}, nil
	}
	return Vec2{n[0], n[1]}, nil
}

// decodeColor reads [r, g, b] or [r, g, b, a]. Channels are normally in
// [0, 1]; a color with any channel above 1 is taken as 0..255.
func decodeColor(raw json.RawMessage) (Color, error) {
	n, err := decodeNumbers(raw)
	if err != nil {
		return Color{}, err
	}
	if len(n) < 3 {
		return Color{}, fmt.Errorf("color needs 3 channels, got %d", len(n))
	}
	scale := 1.0
	for _, v := range n {
		if v > 1 {
			scale = 1.0 / 255
			break
		}
	}
	c := Color{n[0] * scale, n[1] * scale, n[2] * scale, 1}
	if len(n) > 3 {
		c.A = clamp01(n[3] * scale)
	}
	return c, nil
}

type pathDesc struct {
	In       [][]float64 `json:"i"`
	Out      [][]float64 `json:"o"`
	Vertices [][]float64 `json:"v"`
	Closed   bool        `json:"c"`
}

func toVec2s(pts [][]float64) []Vec2 {
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		if len(p) >= 2 {
			out[i] = Vec2{p[0], p[1]}
		}
	}
	return out
}

// decodePath reads a path object, or a one-element array holding one (the
// form used inside keyframes).
func decodePath(raw json.RawMessage) (PathShape, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return PathShape{}, err
		}
		if len(arr) == 0 {
			return PathShape{}, errors.New("empty path array")
		}
		raw = arr[0]
	}
	var pd pathDesc
	if err := json.Unmarshal(raw, &pd); err != nil {
		return PathShape{}, err
	}
	p := PathShape{
		Vertices:    toVec2s(pd.Vertices),
		InTangents:  toVec2s(pd.In),
		OutTangents: toVec2s(pd.Out),
		Closed:      pd.Closed,
	}
	return p.normalize(), nil
}

// --- properties ---

// keyframeList returns the keyframes of v when its K holds a keyframe list.
func keyframeList(v *ValueDesc) ([]KeyframeDesc, bool) {
	k := bytes.TrimSpace(v.K)
	if len(k) < 2 || k[0] != '[' {
		return nil, false
	}
	if v.Animated != 1 && !bytes.HasPrefix(bytes.TrimSpace(k[1:]), []byte("{")) {
		return nil, false
	}
	var kfs []KeyframeDesc
	if err := json.Unmarshal(k, &kfs); err != nil {
		return nil, false
	}
	return kfs, len(kfs) > 0
}

// tangentEasing builds the easing of a segment from its out tangent (the
// first control point) and the next keyframe's in tangent.
func tangentEasing(out, in *TangentDesc) EaseFunc {
	if out == nil || in == nil {
		return nil
	}
	ox, err1 := decodeScalar(out.X)
	oy, err2 := decodeScalar(out.Y)
	ix, err3 := decodeScalar(in.X)
	iy, err4 := decodeScalar(in.Y)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil
	}
	return CubicBezier(ox, oy, ix, iy)
}

// buildKeyframes converts document keyframes into segments. Each document
// keyframe starts a segment that ends at the next keyframe's time; the last
// document keyframe only marks the end of the timeline.
func buildKeyframes[V any](kfs []KeyframeDesc, decode decodeFunc[V]) ([]Keyframe[V], error) {
	var out []Keyframe[V]
	var prevTo V
	havePrev := false
	for i := 0; i < len(kfs)-1; i++ {
		k, next := kfs[i], kfs[i+1]

		var from V
		switch {
		case len(k.Start) > 0:
			v, err := decode(k.Start)
			if err != nil {
				return nil, fmt.Errorf("keyframe %d start: %w", i, err)
			}
			from = v
		case havePrev:
			from = prevTo
		default:
			return nil, fmt.Errorf("%w: keyframe %d has no start value", ErrMalformedKeyframes, i)
		}

		to := from
		switch {
		case len(k.End) > 0:
			v, err := decode(k.End)
			if err != nil {
				return nil, fmt.Errorf("keyframe %d end: %w", i, err)
			}
			to = v
		case len(next.Start) > 0:
			v, err := decode(next.Start)
			if err != nil {
				return nil, fmt.Errorf("keyframe %d start: %w", i+1, err)
			}
			to = v
		}

		out = append(out, Keyframe[V]{
			StartFrame: k.Time,
			EndFrame:   next.Time,
			From:       from,
			To:         to,
			Easing:     tangentEasing(k.Out, k.In),
			Hold:       k.Hold == 1,
		})
		prevTo, havePrev = to, true
	}
	return out, nil
}

// property decodes an animatable value. A nil desc yields def. Any problem
// is reported through warn and degrades the property to a static value.
func property[V any](ld *loader, ctx string, v *ValueDesc, decode decodeFunc[V], lerp LerpFunc[V], def V) Property[V] {
	if v == nil || len(bytes.TrimSpace(v.K)) == 0 {
		return StaticProperty(def)
	}
	kfs, animated := keyframeList(v)
	if !animated {
		val, err := decode(v.K)
		if err != nil {
			ld.warn(fmt.Errorf("%s: %w", ctx, err))
			return StaticProperty(def)
		}
		return StaticProperty(val)
	}

	if len(kfs) == 1 {
		if len(kfs[0].Start) == 0 {
			ld.warn(fmt.Errorf("%s: %w: single keyframe without value", ctx, ErrMalformedKeyframes))
			return StaticProperty(def)
		}
		val, err := decode(kfs[0].Start)
		if err != nil {
			ld.warn(fmt.Errorf("%s: %w", ctx, err))
			return StaticProperty(def)
		}
		return StaticProperty(val)
	}

	frames, err := buildKeyframes(kfs, decode)
	if err != nil {
		ld.warn(fmt.Errorf("%s: %w", ctx, err))
		if len(kfs[0].Start) > 0 {
			if val, err := decode(kfs[0].Start); err == nil {
				return StaticProperty(val)
			}
		}
		return StaticProperty(def)
	}
	p, err := AnimatedProperty(frames, lerp)
	if err != nil {
		ld.warn(fmt.Errorf("%s: %w", ctx, err))
	}
	return p
}

func (ld *loader) scalar(ctx string, v *ValueDesc, def float64) Property[float64] {
	return property(ld, ctx, v, decodeScalar, LerpScalar, def)
}

func (ld *loader) vec2(ctx string, v *ValueDesc, def Vec2) Property[Vec2] {
	return property(ld, ctx, v, decodeVec2, LerpVec2, def)
}

func (ld *loader) color(ctx string, v *ValueDesc, def Color) Property[Color] {
	return property(ld, ctx, v, decodeColor, LerpColor, def)
}

func (ld *loader) path(ctx string, v *ValueDesc) Property[PathShape] {
	return property(ld, ctx, v, decodePath, LerpPath, PathShape{})
}

// transform decodes a layer or group transform. Missing properties keep
// their identity defaults.
func (ld *loader) transform(ctx string, td *TransformDesc) Transform {
	t := DefaultTransform()
	t.Anchor = ld.vec2(ctx+": anchor", td.Anchor, Vec2{})
	if p := td.Position; p != nil && p.Split {
		t.PositionSplit = &SeparatedProperty{
			X: ld.scalar(ctx+": position x", p.X, 0),
			Y: ld.scalar(ctx+": position y", p.Y, 0),
		}
	} else {
		t.Position = ld.vec2(ctx+": position", p, Vec2{})
	}
	t.Scale = ld.vec2(ctx+": scale", td.Scale, Vec2{100, 100})
	rot := td.Rotation
	if rot == nil {
		rot = td.RotationZ
	}
	t.Rotation = ld.scalar(ctx+": rotation", rot, 0)
	t.Opacity = ld.scalar(ctx+": opacity", td.Opacity, 100)
	return t
}

// --- layers ---

func layerType(ty int) (LayerType, bool) {
	switch ty {
	case 0:
		return LayerPrecomp, true
	case 1:
		return LayerSolid, true
	case 2:
		return LayerImage, true
	case 3:
		return LayerNull, true
	case 4:
		return LayerShape, true
	case 5:
		return LayerText, true
	case 9:
		return LayerVideo, true
	}
	return LayerNull, false
}

func matteType(tt int) MatteType {
	switch tt {
	case 1:
		return MatteAlpha
	case 2:
		return MatteAlphaInverted
	case 3:
		return MatteLuma
	case 4:
		return MatteLumaInverted
	}
	return MatteNone
}

func (ld *loader) layers(descs []LayerDesc) []*Layer {
	out := make([]*Layer, 0, len(descs))
	for i := range descs {
		out = append(out, ld.layer(&descs[i]))
	}
	return out
}

func (ld *loader) layer(d *LayerDesc) *Layer {
	ctx := fmt.Sprintf("layer %q", d.Name)
	ty, ok := layerType(d.Type)
	if !ok {
		ld.warn(fmt.Errorf("%s: unsupported layer type %d, drawn as null", ctx, d.Type))
	}
	l := &Layer{
		Index:         d.Index,
		Name:          d.Name,
		Type:          ty,
		InFrame:       d.InFrame,
		OutFrame:      d.OutFrame,
		StartTime:     d.StartTime,
		Stretch:       1,
		BlendMode:     BlendMode(d.BlendMode),
		Transform:     ld.transform(ctx, &d.Transform),
		HasMask:       d.HasMask,
		MatteType:     matteType(d.MatteType),
		IsMatteSource: d.MatteSource == 1,
		RefID:         d.RefID,
		Width:         d.Width,
		Height:        d.Height,
		Hidden:        d.Hidden,
	}
	if d.Parent != nil {
		l.ParentIndex, l.HasParent = *d.Parent, true
	}
	if d.Stretch != nil && *d.Stretch != 0 {
		l.Stretch = *d.Stretch
	}
	if d.BlendMode < 0 || d.BlendMode > int(BlendAdd) {
		ld.warn(fmt.Errorf("%s: unsupported blend mode %d", ctx, d.BlendMode))
		l.BlendMode = BlendNormal
	}

	for i := range d.Masks {
		l.Masks = append(l.Masks, ld.mask(ctx, &d.Masks[i]))
	}
	if len(l.Masks) > 0 && !d.HasMask {
		l.HasMask = true
	}

	switch ty {
	case LayerSolid:
		l.SolidWidth, l.SolidHeight = d.SolidWidth, d.SolidHeight
		c, err := ColorFromHex(d.SolidColor)
		if err != nil {
			ld.warn(fmt.Errorf("%s: solid color %q: %w", ctx, d.SolidColor, err))
			c = Color{A: 1}
		}
		l.SolidColor = c
	case LayerShape:
		l.Shapes = ld.shapes(ctx, d.Shapes)
	}
	return l
}

func (ld *loader) mask(ctx string, d *MaskDesc) Mask {
	ctx = fmt.Sprintf("%s mask %q", ctx, d.Name)
	mode, err := ParseMaskMode(d.Mode)
	if err != nil {
		ld.warn(fmt.Errorf("%s: %w", ctx, err))
	}
	return Mask{
		Name:     d.Name,
		Mode:     mode,
		Inverted: d.Inverted,
		Path:     ld.path(ctx+": path", d.Path),
		Opacity:  ld.scalar(ctx+": opacity", d.Opacity, 100),
	}
}

// --- shapes ---

func (ld *loader) shapes(ctx string, descs []ShapeDesc) []ShapeItem {
	var out []ShapeItem
	for i := range descs {
		if it, ok := ld.shape(ctx, &descs[i]); ok {
			out = append(out, it)
		}
	}
	return out
}

// value fetches a keyed animatable value, warning on decode failures.
func (ld *loader) value(ctx string, d *ShapeDesc, key string) *ValueDesc {
	v, err := d.value(key)
	if err != nil {
		ld.warn(fmt.Errorf("%s: %w", ctx, err))
	}
	return v
}

func (ld *loader) shape(ctx string, d *ShapeDesc) (ShapeItem, bool) {
	ctx = fmt.Sprintf("%s shape %q", ctx, d.Name)
	it := ShapeItem{Name: d.Name, Hidden: d.Hidden}
	switch d.Type {
	case "gr":
		it.Kind = ShapeGroup
		var items []ShapeDesc
		for i := range d.Items {
			if d.Items[i].Type == "tr" {
				t := ld.groupTransform(ctx, &d.Items[i])
				it.Transform = &t
				continue
			}
			items = append(items, d.Items[i])
		}
		it.Items = ld.shapes(ctx, items)
	case "sh":
		it.Kind = ShapePath
		it.Path = ld.path(ctx+": path", ld.value(ctx, d, "ks"))
	case "rc":
		it.Kind = ShapeRect
		it.Position = ld.vec2(ctx+": position", ld.value(ctx, d, "p"), Vec2{})
		it.Size = ld.vec2(ctx+": size", ld.value(ctx, d, "s"), Vec2{})
		it.Roundness = ld.scalar(ctx+": roundness", ld.value(ctx, d, "r"), 0)
	case "el":
		it.Kind = ShapeEllipse
		it.Position = ld.vec2(ctx+": position", ld.value(ctx, d, "p"), Vec2{})
		it.Size = ld.vec2(ctx+": size", ld.value(ctx, d, "s"), Vec2{})
	case "fl":
		it.Kind = ShapeFill
		it.Color = ld.color(ctx+": color", ld.value(ctx, d, "c"), Color{A: 1})
		it.Opacity = ld.scalar(ctx+": opacity", ld.value(ctx, d, "o"), 100)
		if d.number("r", 1) == 2 {
			it.FillRule = FillEvenOdd
		}
	case "st":
		it.Kind = ShapeStroke
		it.Color = ld.color(ctx+": color", ld.value(ctx, d, "c"), Color{A: 1})
		it.Opacity = ld.scalar(ctx+": opacity", ld.value(ctx, d, "o"), 100)
		it.Width = ld.scalar(ctx+": width", ld.value(ctx, d, "w"), 1)
		it.LineCap = lineCap(d.number("lc", 2))
		it.LineJoin = lineJoin(d.number("lj", 2))
		it.MiterLimit = d.number("ml", 4)
		it.FillEnabled = d.flag("fillEnabled")
	case "tm":
		it.Kind = ShapeTrim
		it.TrimStart = ld.scalar(ctx+": start", ld.value(ctx, d, "s"), 0)
		it.TrimEnd = ld.scalar(ctx+": end", ld.value(ctx, d, "e"), 100)
		it.TrimOffset = ld.scalar(ctx+": offset", ld.value(ctx, d, "o"), 0)
	default:
		debugWarn(fmt.Errorf("%s: shape type %q ignored", ctx, d.Type))
		return ShapeItem{}, false
	}
	return it, true
}

// groupTransform decodes a "tr" item. Its keys match a layer transform.
func (ld *loader) groupTransform(ctx string, d *ShapeDesc) Transform {
	td := TransformDesc{
		Anchor:   ld.value(ctx, d, "a"),
		Position: ld.value(ctx, d, "p"),
		Scale:    ld.value(ctx, d, "s"),
		Rotation: ld.value(ctx, d, "r"),
		Opacity:  ld.value(ctx, d, "o"),
	}
	return ld.transform(ctx+" transform", &td)
}

func lineCap(v float64) LineCap {
	switch v {
	case 1:
		return CapButt
	case 3:
		return CapSquare
	}
	return CapRound
}

func lineJoin(v float64) LineJoin {
	switch v {
	case 1:
		return JoinMiter
	case 3:
		return JoinBevel
	}
	return JoinRound
}

// --- assets ---

// library converts the document's assets into templates.
func (ld *loader) library(assets []AssetDesc) *Library {
	lib := NewLibrary()
	for i := range assets {
		a := &assets[i]
		if _, dup := lib.Asset(a.ID); dup {
			ld.warn(fmt.Errorf("asset %q defined twice, keeping the last", a.ID))
		}
		if a.Layers != nil {
			lib.Add(&Asset{
				ID:     a.ID,
				Width:  a.Width,
				Height: a.Height,
				Layers: ld.layers(a.Layers),
			})
			continue
		}
		lib.Add(&Asset{
			ID:     a.ID,
			Width:  a.Width,
			Height: a.Height,
			Image: &ImageRef{
				AssetID: a.ID,
				Path:    a.Dir + a.Path,
				Width:   a.Width,
				Height:  a.Height,
			},
		})
	}
	return lib
}
