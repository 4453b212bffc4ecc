package pipeline

import (
	"github.com/dkeye/Sketch/internal/client/ui"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/geom"
)

const roundRectRadius = 10

// Builder constructs one shape variant: Start creates it at the anchor with
// zero size, Resize returns the fields that change as the pointer moves.
type Builder interface {
	Start(base domain.Object, anchor geom.Point) domain.Object
	Resize(anchor, current geom.Point) domain.Object
}

// boxBuilder grows an axis-aligned width/height shape.
type boxBuilder struct {
	kind  domain.Kind
	extra domain.Object
}

func (b boxBuilder) Start(base domain.Object, anchor geom.Point) domain.Object {
	base[domain.FieldKind] = string(b.kind)
	base[domain.FieldWidth] = 0.0
	base[domain.FieldHeight] = 0.0
	for k, v := range b.extra {
		base[k] = v
	}
	return base
}

func (b boxBuilder) Resize(anchor, current geom.Point) domain.Object {
	r := geom.RectFromPoints(anchor, current)
	return domain.Object{
		domain.FieldLeft:   r.Min.X,
		domain.FieldTop:    r.Min.Y,
		domain.FieldWidth:  r.Width(),
		domain.FieldHeight: r.Height(),
	}
}

type ellipseBuilder struct{}

func (ellipseBuilder) Start(base domain.Object, anchor geom.Point) domain.Object {
	base[domain.FieldKind] = string(domain.KindEllipse)
	base[domain.FieldRX] = 0.0
	base[domain.FieldRY] = 0.0
	return base
}

func (ellipseBuilder) Resize(anchor, current geom.Point) domain.Object {
	r := geom.RectFromPoints(anchor, current)
	return domain.Object{
		domain.FieldLeft: r.Min.X,
		domain.FieldTop:  r.Min.Y,
		domain.FieldRX:   r.Width() / 2,
		domain.FieldRY:   r.Height() / 2,
	}
}

// polygonBuilder keeps unit-square vertices and sizes the shape through scale.
type polygonBuilder struct {
	points []geom.Point
}

func (b polygonBuilder) Start(base domain.Object, anchor geom.Point) domain.Object {
	pts := make([]any, len(b.points))
	for i, p := range b.points {
		pts[i] = map[string]any{"x": p.X, "y": p.Y}
	}
	base[domain.FieldKind] = string(domain.KindPolygon)
	base[domain.FieldPoints] = pts
	base[domain.FieldScaleX] = 0.0
	base[domain.FieldScaleY] = 0.0
	return base
}

func (polygonBuilder) Resize(anchor, current geom.Point) domain.Object {
	r := geom.RectFromPoints(anchor, current)
	return domain.Object{
		domain.FieldLeft:   r.Min.X,
		domain.FieldTop:    r.Min.Y,
		domain.FieldScaleX: r.Width(),
		domain.FieldScaleY: r.Height(),
	}
}

type lineBuilder struct{}

func (lineBuilder) Start(base domain.Object, anchor geom.Point) domain.Object {
	base[domain.FieldKind] = string(domain.KindLine)
	base[domain.FieldX1] = anchor.X
	base[domain.FieldY1] = anchor.Y
	base[domain.FieldX2] = anchor.X
	base[domain.FieldY2] = anchor.Y
	return base
}

// Resize keeps left/top on the top-left of the end points so a later move
// by the renderer can be told apart from the drawn coordinates.
func (lineBuilder) Resize(anchor, current geom.Point) domain.Object {
	r := geom.RectFromPoints(anchor, current)
	return domain.Object{
		domain.FieldX2:   current.X,
		domain.FieldY2:   current.Y,
		domain.FieldLeft: r.Min.X,
		domain.FieldTop:  r.Min.Y,
	}
}

type arrowBuilder struct{}

func (arrowBuilder) Start(base domain.Object, anchor geom.Point) domain.Object {
	base[domain.FieldKind] = string(domain.KindPath)
	base[domain.FieldFill] = ""
	for k, v := range arrowFields(anchor, anchor) {
		base[k] = v
	}
	return base
}

func (arrowBuilder) Resize(anchor, current geom.Point) domain.Object {
	return arrowFields(anchor, current)
}

// arrowFields is the arrow path with left/top on its top-left corner.
func arrowFields(from, to geom.Point) domain.Object {
	path := geom.ArrowPath(from, to)
	r, _ := geom.PathBounds(path)
	return domain.Object{
		domain.FieldPath: path,
		domain.FieldLeft: r.Min.X,
		domain.FieldTop:  r.Min.Y,
	}
}

var (
	rhombus = []geom.Point{{X: 0.5, Y: 0}, {X: 1, Y: 0.5}, {X: 0.5, Y: 1}, {X: 0, Y: 0.5}}
	hexagon = []geom.Point{{X: 0.25, Y: 0}, {X: 0.75, Y: 0}, {X: 1, Y: 0.5}, {X: 0.75, Y: 1}, {X: 0.25, Y: 1}, {X: 0, Y: 0.5}}
)

// builders is the closed set of drag-to-size tools.
var builders = map[ui.Tool]Builder{
	ui.ToolRectangle: boxBuilder{kind: domain.KindRect},
	ui.ToolRoundRect: boxBuilder{kind: domain.KindRect, extra: domain.Object{domain.FieldRX: float64(roundRectRadius), domain.FieldRY: float64(roundRectRadius)}},
	ui.ToolTriangle:  boxBuilder{kind: domain.KindTriangle},
	ui.ToolCircle:    ellipseBuilder{},
	ui.ToolRhombus:   polygonBuilder{points: rhombus},
	ui.ToolHexagon:   polygonBuilder{points: hexagon},
	ui.ToolLine:      lineBuilder{},
	ui.ToolArrow:     arrowBuilder{},
}

// BuilderFor reports the builder of a drag-to-size tool.
func BuilderFor(t ui.Tool) (Builder, bool) {
	b, ok := builders[t]
	return b, ok
}
