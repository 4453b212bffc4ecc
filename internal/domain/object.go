// Package domain contains entities without transport or lifecycle logic.
package domain

import (
	"errors"
	"maps"
)

var (
	ErrMissingRoom = errors.New("missing room id")
	ErrMissingID   = errors.New("missing object id")
	ErrEmptyRecord = errors.New("empty object record")
)

type ObjectID string

// Kind is the closed drawable vocabulary.
type Kind string

const (
	KindRect     Kind = "rect"
	KindEllipse  Kind = "ellipse"
	KindTriangle Kind = "triangle"
	KindPolygon  Kind = "polygon"
	KindLine     Kind = "line"
	KindPath     Kind = "path"
	KindText     Kind = "text"
)

func (k Kind) Valid() bool {
	switch k {
	case KindRect, KindEllipse, KindTriangle, KindPolygon, KindLine, KindPath, KindText:
		return true
	}
	return false
}

// Record keys shared by the relay, the client scene and the exporters.
const (
	FieldID          = "id"
	FieldKind        = "kind"
	FieldRoomID      = "roomId"
	FieldLeft        = "left"
	FieldTop         = "top"
	FieldWidth       = "width"
	FieldHeight      = "height"
	FieldScaleX      = "scaleX"
	FieldScaleY      = "scaleY"
	FieldRX          = "rx"
	FieldRY          = "ry"
	FieldX1          = "x1"
	FieldY1          = "y1"
	FieldX2          = "x2"
	FieldY2          = "y2"
	FieldPoints      = "points"
	FieldPath        = "path"
	FieldText        = "text"
	FieldFontSize    = "fontSize"
	FieldFontFamily  = "fontFamily"
	FieldStroke      = "stroke"
	FieldStrokeWidth = "strokeWidth"
	FieldFill        = "fill"
	FieldOpacity     = "opacity"
	FieldSelectable  = "selectable"
	FieldEvented     = "evented"
)

// Object is the flat serialized record of one drawable: id, kind, geometry
// and style fields side by side. Fields the relay does not understand are
// carried through untouched.
type Object map[string]any

func (o Object) ID() ObjectID {
	s, _ := o[FieldID].(string)
	return ObjectID(s)
}

func (o Object) Kind() Kind {
	s, _ := o[FieldKind].(string)
	return Kind(s)
}

func (o Object) Validate() error {
	if len(o) == 0 {
		return ErrEmptyRecord
	}
	if o.ID() == "" {
		return ErrMissingID
	}
	return nil
}

// Merge overwrites matching fields of o with the fields of patch and keeps
// the rest. The id is never rewritten.
func (o Object) Merge(patch Object) {
	id, hasID := o[FieldID]
	maps.Copy(o, patch)
	if hasID {
		o[FieldID] = id
	}
}

// Clone copies the top level; nested geometry values are shared and must be
// treated as immutable.
func (o Object) Clone() Object {
	if o == nil {
		return nil
	}
	return maps.Clone(o)
}

// Without returns a copy of o lacking the given keys.
func (o Object) Without(keys ...string) Object {
	out := o.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func (o Object) Float(key string) (float64, bool) {
	switch v := o[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// FloatOr returns the numeric field or def when absent.
func (o Object) FloatOr(key string, def float64) float64 {
	if v, ok := o.Float(key); ok {
		return v
	}
	return def
}

// Str returns the string field or "" when absent.
func (o Object) Str(key string) string {
	s, _ := o[key].(string)
	return s
}
