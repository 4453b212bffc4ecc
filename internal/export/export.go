// Package export renders a room's object set to static documents.
package export

import (
	"errors"
	"sort"
	"strings"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/geom"
	"github.com/gogpu/gg"
)

var ErrBadSize = errors.New("export: width and height must be positive")

const (
	defaultStroke   = "#000000"
	defaultFontSize = 24
)

// Style is the resolved paint of one record. A nil colour means no paint.
type Style struct {
	Stroke  *gg.RGBA
	Fill    *gg.RGBA
	Width   float64
	Opacity float64
}

// painter is the drawing surface both formats implement.
type painter interface {
	rect(r geom.Rect, radius float64, s Style) error
	ellipse(center geom.Point, rx, ry float64, s Style) error
	polygon(pts []geom.Point, s Style) error
	polyline(pts []geom.Point, s Style) error
	text(at geom.Point, body string, size float64, s Style) error
}

// ParseColor reads a CSS-ish colour: "#rgb", "#rrggbb", "#rrggbbaa" and a few
// names. Empty, "none" and "transparent" report false.
func ParseColor(v string) (gg.RGBA, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	switch v {
	case "", "none", "transparent":
		return gg.RGBA{}, false
	case "black":
		return gg.Hex("#000000"), true
	case "white":
		return gg.Hex("#ffffff"), true
	case "red":
		return gg.Hex("#ff0000"), true
	case "green":
		return gg.Hex("#008000"), true
	case "blue":
		return gg.Hex("#0000ff"), true
	}
	if strings.HasPrefix(v, "#") {
		return gg.Hex(v), true
	}
	return gg.RGBA{}, false
}

func StyleOf(o domain.Object) Style {
	s := Style{
		Width:   o.FloatOr(domain.FieldStrokeWidth, 1),
		Opacity: o.FloatOr(domain.FieldOpacity, 1),
	}
	stroke := o.Str(domain.FieldStroke)
	if _, present := o[domain.FieldStroke]; !present {
		stroke = defaultStroke
	}
	if c, ok := ParseColor(stroke); ok {
		s.Stroke = &c
	}
	if c, ok := ParseColor(o.Str(domain.FieldFill)); ok {
		s.Fill = &c
	}
	if o.Kind() == domain.KindText && s.Fill == nil {
		c := gg.Hex(defaultStroke)
		s.Fill = &c
	}
	return s
}

// ordered returns the records sorted by id so renders are reproducible.
func ordered(objs []domain.Object) []domain.Object {
	out := make([]domain.Object, len(objs))
	copy(out, objs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// draw dispatches one record to p. Records without usable geometry are skipped.
func draw(p painter, o domain.Object) error {
	s := StyleOf(o)
	switch o.Kind() {
	case domain.KindRect:
		r, ok := geom.Bounds(o)
		if !ok {
			return nil
		}
		return p.rect(r, o.FloatOr(domain.FieldRX, 0), s)
	case domain.KindEllipse:
		r, ok := geom.Bounds(o)
		if !ok {
			return nil
		}
		c := geom.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
		return p.ellipse(c, r.Width()/2, r.Height()/2, s)
	case domain.KindTriangle:
		r, ok := geom.Bounds(o)
		if !ok {
			return nil
		}
		return p.polygon([]geom.Point{
			geom.Pt((r.Min.X+r.Max.X)/2, r.Min.Y),
			geom.Pt(r.Max.X, r.Max.Y),
			geom.Pt(r.Min.X, r.Max.Y),
		}, s)
	case domain.KindPolygon:
		pts := geom.PolygonPoints(o)
		if len(pts) < 3 {
			return nil
		}
		return p.polygon(pts, s)
	case domain.KindLine:
		pts, ok := geom.LinePoints(o)
		if !ok {
			return nil
		}
		return p.polyline(pts[:], s)
	case domain.KindPath:
		s.Fill = nil
		for _, seg := range geom.PathSegments(o) {
			if len(seg.Points) < 2 {
				continue
			}
			if err := p.polyline(seg.Points, s); err != nil {
				return err
			}
		}
		return nil
	case domain.KindText:
		body := o.Str(domain.FieldText)
		if body == "" {
			return nil
		}
		size := o.FloatOr(domain.FieldFontSize, defaultFontSize) * o.FloatOr(domain.FieldScaleY, 1)
		at := geom.Pt(o.FloatOr(domain.FieldLeft, 0), o.FloatOr(domain.FieldTop, 0))
		return p.text(at, body, size, s)
	}
	return nil
}

func render(p painter, objs []domain.Object) error {
	for _, o := range ordered(objs) {
		if err := draw(p, o); err != nil {
			return err
		}
	}
	return nil
}
