package geom

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dkeye/Sketch/internal/domain"
)

const (
	arrowHeadLength = 20

	// Text boxes are estimated when a record carries no size: an average
	// glyph advance and the renderer's default line height, in font sizes.
	glyphAdvance = 0.6
	lineHeight   = 1.16
)

// Bounds computes the canvas-space bounding box of a record from its kind
// and geometry fields. Records without usable geometry report false.
func Bounds(o domain.Object) (Rect, bool) {
	sx := o.FloatOr(domain.FieldScaleX, 1)
	sy := o.FloatOr(domain.FieldScaleY, 1)
	left := o.FloatOr(domain.FieldLeft, 0)
	top := o.FloatOr(domain.FieldTop, 0)

	switch o.Kind() {
	case domain.KindText:
		w, okW := o.Float(domain.FieldWidth)
		h, okH := o.Float(domain.FieldHeight)
		if !okW || !okH {
			w, h = TextSize(o.Str(domain.FieldText), o.FloatOr(domain.FieldFontSize, 0))
		}
		if w <= 0 && h <= 0 {
			return Rect{}, false
		}
		return RectXYWH(left, top, w*sx, h*sy), true
	case domain.KindRect, domain.KindTriangle:
		w, okW := o.Float(domain.FieldWidth)
		h, okH := o.Float(domain.FieldHeight)
		if !okW || !okH {
			return Rect{}, false
		}
		return RectXYWH(left, top, w*sx, h*sy), true
	case domain.KindEllipse:
		rx, okX := o.Float(domain.FieldRX)
		ry, okY := o.Float(domain.FieldRY)
		if !okX || !okY {
			return Rect{}, false
		}
		return RectXYWH(left, top, 2*rx*sx, 2*ry*sy), true
	case domain.KindPolygon:
		pts := PolygonPoints(o)
		r, ok := BoundsOfPoints(pts)
		return r, ok
	case domain.KindLine:
		pts, ok := LinePoints(o)
		if !ok {
			return Rect{}, false
		}
		return RectFromPoints(pts[0], pts[1]), true
	case domain.KindPath:
		var pts []Point
		for _, seg := range PathSegments(o) {
			pts = append(pts, seg.Points...)
		}
		return BoundsOfPoints(pts)
	}
	return Rect{}, false
}

// TextSize estimates the unscaled box of body set at fontSize.
func TextSize(body string, fontSize float64) (w, h float64) {
	if body == "" || fontSize <= 0 {
		return 0, 0
	}
	lines := strings.Split(body, "\n")
	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	return float64(longest) * fontSize * glyphAdvance, float64(len(lines)) * fontSize * lineHeight
}

// LinePoints returns the end points of a line record. A record moved by the
// renderer carries its new top-left in left/top while x1..y2 keep the
// original coordinates; the points are shifted onto left/top.
func LinePoints(o domain.Object) ([2]Point, bool) {
	x1, ok1 := o.Float(domain.FieldX1)
	y1, ok2 := o.Float(domain.FieldY1)
	x2, ok3 := o.Float(domain.FieldX2)
	y2, ok4 := o.Float(domain.FieldY2)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return [2]Point{}, false
	}
	a, b := Pt(x1, y1), Pt(x2, y2)
	d := originShift(o, RectFromPoints(a, b))
	return [2]Point{a.Add(d), b.Add(d)}, true
}

// originShift is the offset from the raw geometry's top-left to the
// record's left/top. Records without both fields are not shifted.
func originShift(o domain.Object, raw Rect) Point {
	left, okL := o.Float(domain.FieldLeft)
	top, okT := o.Float(domain.FieldTop)
	if !okL || !okT {
		return Point{}
	}
	return Pt(left-raw.Min.X, top-raw.Min.Y)
}

// PolygonPoints returns the absolute vertices of a polygon record. Vertices
// are stored normalised and mapped through scale and the left/top origin.
func PolygonPoints(o domain.Object) []Point {
	raw, _ := o[domain.FieldPoints].([]any)
	if len(raw) == 0 {
		return nil
	}
	sx := o.FloatOr(domain.FieldScaleX, 1)
	sy := o.FloatOr(domain.FieldScaleY, 1)
	local := make([]Point, 0, len(raw))
	for _, v := range raw {
		switch p := v.(type) {
		case map[string]any:
			x, _ := domain.Object(p).Float("x")
			y, _ := domain.Object(p).Float("y")
			local = append(local, Pt(x, y))
		}
	}
	lb, ok := BoundsOfPoints(local)
	if !ok {
		return nil
	}
	left := o.FloatOr(domain.FieldLeft, 0)
	top := o.FloatOr(domain.FieldTop, 0)
	out := make([]Point, len(local))
	for i, p := range local {
		out[i] = Pt(left+(p.X-lb.Min.X)*sx, top+(p.Y-lb.Min.Y)*sy)
	}
	return out
}

// Segment is one sub-path: a move followed by its line/curve end points.
type Segment struct {
	Points []Point
}

// PathSegments decodes a `path` field of the form [["M",x,y],["L",x,y],["Q",cx,cy,x,y],...].
// Every coordinate pair is kept, so curve control points count towards bounds.
// Like lines, paths are shifted onto left/top when the record has them.
func PathSegments(o domain.Object) []Segment {
	path, _ := o[domain.FieldPath].([]any)
	segs := decodePath(path)
	raw, ok := PathBounds(path)
	if !ok {
		return segs
	}
	d := originShift(o, raw)
	if d == (Point{}) {
		return segs
	}
	for _, seg := range segs {
		for i := range seg.Points {
			seg.Points[i] = seg.Points[i].Add(d)
		}
	}
	return segs
}

// PathBounds is the box of raw path commands, before any left/top shift.
func PathBounds(path []any) (Rect, bool) {
	var pts []Point
	for _, seg := range decodePath(path) {
		pts = append(pts, seg.Points...)
	}
	return BoundsOfPoints(pts)
}

func decodePath(raw []any) []Segment {
	var segs []Segment
	for _, c := range raw {
		cmd, ok := c.([]any)
		if !ok || len(cmd) == 0 {
			continue
		}
		op, _ := cmd[0].(string)
		var pts []Point
		for i := 1; i+1 < len(cmd); i += 2 {
			x, okX := cmd[i].(float64)
			y, okY := cmd[i+1].(float64)
			if okX && okY {
				pts = append(pts, Pt(x, y))
			}
		}
		if len(pts) == 0 {
			continue
		}
		if op == "M" || len(segs) == 0 {
			segs = append(segs, Segment{Points: pts})
			continue
		}
		last := &segs[len(segs)-1]
		last.Points = append(last.Points, pts...)
	}
	return segs
}

// ArrowPath builds the path commands of an arrow from a to b: the shaft and
// two head strokes at ±30°.
func ArrowPath(a, b Point) []any {
	angle := math.Atan2(b.Y-a.Y, b.X-a.X)
	p3 := Pt(b.X-arrowHeadLength*math.Cos(angle-math.Pi/6), b.Y-arrowHeadLength*math.Sin(angle-math.Pi/6))
	p4 := Pt(b.X-arrowHeadLength*math.Cos(angle+math.Pi/6), b.Y-arrowHeadLength*math.Sin(angle+math.Pi/6))
	return []any{
		[]any{"M", a.X, a.Y},
		[]any{"L", b.X, b.Y},
		[]any{"M", b.X, b.Y},
		[]any{"L", p3.X, p3.Y},
		[]any{"M", b.X, b.Y},
		[]any{"L", p4.X, p4.Y},
	}
}

// ContainsPoint reports whether p hits the record's bounding box.
func ContainsPoint(o domain.Object, p Point) bool {
	r, ok := Bounds(o)
	return ok && r.Contains(p)
}

// IntersectsRect reports whether the record's bounding box overlaps r.
func IntersectsRect(o domain.Object, r Rect) bool {
	b, ok := Bounds(o)
	return ok && b.Intersects(r)
}
