package motion

import (
	"encoding/json"
	"fmt"
)

// Document is the parsed form of a Bodymovin JSON file. Only the keys the
// engine consumes are mapped.
type Document struct {
	Version   string      `json:"v"`
	Name      string      `json:"nm"`
	Width     float64     `json:"w"`
	Height    float64     `json:"h"`
	FrameRate float64     `json:"fr"`
	InFrame   float64     `json:"ip"`
	OutFrame  float64     `json:"op"`
	Layers    []LayerDesc `json:"layers"`
	Assets    []AssetDesc `json:"assets"`
}

// AssetDesc is a reusable asset: a precomp when Layers is non-nil, an image
// otherwise.
type AssetDesc struct {
	ID     string      `json:"id"`
	Width  float64     `json:"w"`
	Height float64     `json:"h"`
	Layers []LayerDesc `json:"layers"`
	Dir    string      `json:"u"`
	Path   string      `json:"p"`
}

// LayerDesc is one layer entry of a document or precomp asset.
type LayerDesc struct {
	Index       int           `json:"ind"`
	Name        string        `json:"nm"`
	Type        int           `json:"ty"`
	Parent      *int          `json:"parent"`
	InFrame     float64       `json:"ip"`
	OutFrame    float64       `json:"op"`
	StartTime   float64       `json:"st"`
	Stretch     *float64      `json:"sr"`
	BlendMode   int           `json:"bm"`
	Transform   TransformDesc `json:"ks"`
	HasMask     bool          `json:"hasMask"`
	Masks       []MaskDesc    `json:"masksProperties"`
	MatteType   int           `json:"tt"`
	MatteSource int           `json:"td"`
	Shapes      []ShapeDesc   `json:"shapes"`
	RefID       string        `json:"refId"`
	Width       float64       `json:"w"`
	Height      float64       `json:"h"`
	SolidColor  string        `json:"sc"`
	SolidWidth  float64       `json:"sw"`
	SolidHeight float64       `json:"sh"`
	Hidden      bool          `json:"hd"`
}

// TransformDesc holds the transform properties of a layer or shape group.
type TransformDesc struct {
	Anchor    *ValueDesc `json:"a"`
	Position  *ValueDesc `json:"p"`
	Scale     *ValueDesc `json:"s"`
	Rotation  *ValueDesc `json:"r"`
	RotationZ *ValueDesc `json:"rz"`
	Opacity   *ValueDesc `json:"o"`
}

// ValueDesc is an animatable value: K is either a literal or a keyframe
// list. Split marks a separated position whose axes live in X and Y.
type ValueDesc struct {
	Animated int             `json:"a"`
	K        json.RawMessage `json:"k"`
	Split    bool            `json:"s"`
	X        *ValueDesc      `json:"x"`
	Y        *ValueDesc      `json:"y"`
}

// KeyframeDesc is one keyframe of a ValueDesc. Documents either give each
// keyframe an explicit end value E, or leave E out and let the next
// keyframe's S serve as the end value.
type KeyframeDesc struct {
	Time  float64         `json:"t"`
	Start json.RawMessage `json:"s"`
	End   json.RawMessage `json:"e"`
	In    *TangentDesc    `json:"i"`
	Out   *TangentDesc    `json:"o"`
	Hold  int             `json:"h"`
}

// TangentDesc is an easing control point. X and Y are a number or a
// per-dimension array; the first dimension is used.
type TangentDesc struct {
	X json.RawMessage `json:"x"`
	Y json.RawMessage `json:"y"`
}

// MaskDesc is one entry of a layer's masksProperties list.
type MaskDesc struct {
	Name     string     `json:"nm"`
	Mode     string     `json:"mode"`
	Inverted bool       `json:"inv"`
	Path     *ValueDesc `json:"pt"`
	Opacity  *ValueDesc `json:"o"`
}

// ShapeDesc is one shape item. Shape kinds reuse keys with different
// meanings ("s" is a size for rectangles and a percentage for trims), so the
// item keeps its raw fields and is decoded by type.
type ShapeDesc struct {
	Type   string
	Name   string
	Hidden bool
	Items  []ShapeDesc

	raw map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ShapeDesc) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.raw = raw
	if v, ok := raw["ty"]; ok {
		if err := json.Unmarshal(v, &s.Type); err != nil {
			return fmt.Errorf("shape type: %w", err)
		}
	}
	if v, ok := raw["nm"]; ok {
		_ = json.Unmarshal(v, &s.Name)
	}
	if v, ok := raw["hd"]; ok {
		_ = json.Unmarshal(v, &s.Hidden)
	}
	if v, ok := raw["it"]; ok {
		if err := json.Unmarshal(v, &s.Items); err != nil {
			return fmt.Errorf("shape %q items: %w", s.Name, err)
		}
	}
	return nil
}

// value decodes the animatable value stored under key, or nil.
func (s *ShapeDesc) value(key string) (*ValueDesc, error) {
	v, ok := s.raw[key]
	if !ok {
		return nil, nil
	}
	var vd ValueDesc
	if err := json.Unmarshal(v, &vd); err != nil {
		return nil, fmt.Errorf("shape %q key %q: %w", s.Name, key, err)
	}
	return &vd, nil
}

// number decodes a plain number stored under key, or def.
func (s *ShapeDesc) number(key string, def float64) float64 {
	v, ok := s.raw[key]
	if !ok {
		return def
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return def
	}
	return f
}

// flag decodes a boolean stored under key.
func (s *ShapeDesc) flag(key string) bool {
	v, ok := s.raw[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return false
	}
	return b
}

// ParseDocument decodes a Bodymovin JSON document. Only malformed JSON is an
// error; semantic problems are reported as warnings when the document is
// built into an Animation.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}
