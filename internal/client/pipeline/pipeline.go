// Package pipeline turns pointer input into scene mutations: drag-to-size
// shapes, text, freehand strokes and the eraser.
package pipeline

import (
	"github.com/dkeye/Sketch/internal/client/history"
	"github.com/dkeye/Sketch/internal/client/scene"
	"github.com/dkeye/Sketch/internal/client/scenesync"
	"github.com/dkeye/Sketch/internal/client/ui"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/geom"
	"github.com/google/uuid"
)

const (
	// EraserSize is the brush side in screen pixels.
	EraserSize = 30

	DefaultText       = "Type here"
	DefaultFontSize   = 24
	DefaultFontFamily = "Inter, sans-serif"
)

type Pipeline struct {
	scene   scene.Scene
	sync    *scenesync.Synchronizer
	history *history.Engine
	ui      ui.State
	newID   func() domain.ObjectID

	// drag state
	drawing bool
	erasing bool
	anchor  geom.Point
	current domain.ObjectID
	builder Builder
}

func New(sc scene.Scene, sync *scenesync.Synchronizer, h *history.Engine, st ui.State) *Pipeline {
	return &Pipeline{
		scene:   sc,
		sync:    sync,
		history: h,
		ui:      st,
		newID:   func() domain.ObjectID { return domain.ObjectID(uuid.NewString()) },
	}
}

// base is the record every new object starts from.
func (p *Pipeline) base(at geom.Point) domain.Object {
	st := p.ui.Style()
	o := domain.Object{
		domain.FieldID:          string(p.newID()),
		domain.FieldLeft:        at.X,
		domain.FieldTop:         at.Y,
		domain.FieldStroke:      st.Stroke,
		domain.FieldStrokeWidth: st.StrokeWidth,
		domain.FieldFill:        fill(st.Fill),
		domain.FieldOpacity:     st.Opacity,
	}
	ui.FlagsFor(p.ui.Tool()).Apply(o)
	return o
}

func fill(v string) string {
	if v == "transparent" {
		return ""
	}
	return v
}

func (p *Pipeline) PointerDown(at geom.Point) {
	tool := p.ui.Tool()
	switch tool {
	case ui.ToolHand, ui.ToolSelection, ui.ToolPencil:
		return
	case ui.ToolEraser:
		p.erasing = true
		p.erase(at)
		return
	case ui.ToolText:
		p.placeText(at)
		return
	}
	b, ok := BuilderFor(tool)
	if !ok {
		return
	}
	obj := b.Start(p.base(at), at)
	p.scene.Add(obj)
	p.drawing = true
	p.anchor = at
	p.builder = b
	p.current = obj.ID()
}

func (p *Pipeline) PointerMove(at geom.Point) {
	if p.erasing {
		p.erase(at)
		return
	}
	if !p.drawing || p.current == "" {
		return
	}
	p.scene.Merge(p.current, p.builder.Resize(p.anchor, at))
}

// PointerUp settles the shape being dragged, if any.
func (p *Pipeline) PointerUp() {
	p.erasing = false
	if !p.drawing {
		return
	}
	p.drawing = false
	id := p.current
	p.current, p.builder = "", nil
	if obj, ok := p.scene.Get(id); ok {
		p.sync.OnLocalEditSettled(obj)
	}
}

// Drawing reports whether a shape is being dragged.
func (p *Pipeline) Drawing() bool { return p.drawing }

func (p *Pipeline) placeText(at geom.Point) {
	st := p.ui.Style()
	obj := p.base(at)
	obj[domain.FieldKind] = string(domain.KindText)
	obj[domain.FieldText] = DefaultText
	obj[domain.FieldFontSize] = float64(DefaultFontSize)
	obj[domain.FieldFontFamily] = DefaultFontFamily
	obj[domain.FieldFill] = st.Stroke
	w, h := geom.TextSize(DefaultText, DefaultFontSize)
	obj[domain.FieldWidth] = w
	obj[domain.FieldHeight] = h
	// The new text is edited right away.
	ui.Flags{Selectable: true, Evented: true}.Apply(obj)
	p.scene.Add(obj)
	p.sync.OnLocalEditSettled(obj)
}

// CommitText settles edited text and resizes its box to the new body.
func (p *Pipeline) CommitText(id domain.ObjectID, body string) {
	cur, ok := p.scene.Get(id)
	if !ok {
		return
	}
	w, h := geom.TextSize(body, cur.FloatOr(domain.FieldFontSize, DefaultFontSize))
	p.scene.Merge(id, domain.Object{
		domain.FieldText:   body,
		domain.FieldWidth:  w,
		domain.FieldHeight: h,
	})
	obj, _ := p.scene.Get(id)
	p.sync.OnLocalEditSettled(obj)
}

// PathCreated adopts a freehand stroke finished by the renderer. path holds
// commands like ["M", x, y].
func (p *Pipeline) PathCreated(path []any) domain.ObjectID {
	st := p.ui.Style()
	obj := domain.Object{
		domain.FieldID:          string(p.newID()),
		domain.FieldKind:        string(domain.KindPath),
		domain.FieldPath:        path,
		domain.FieldStroke:      st.Stroke,
		domain.FieldStrokeWidth: st.StrokeWidth,
		domain.FieldFill:        "",
		domain.FieldOpacity:     st.Opacity,
	}
	ui.FlagsFor(p.ui.Tool()).Apply(obj)
	p.scene.Add(obj)
	p.sync.OnLocalEditSettled(obj)
	return obj.ID()
}

// ObjectModified settles an object the user moved, scaled or restyled.
func (p *Pipeline) ObjectModified(id domain.ObjectID) {
	if obj, ok := p.scene.Get(id); ok {
		p.sync.OnLocalEditSettled(obj)
	}
}

// erase deletes every object under the brush, topmost first, and records one
// snapshot when anything went.
func (p *Pipeline) erase(at geom.Point) int {
	zoom := p.ui.Zoom()
	if zoom <= 0 {
		zoom = 1
	}
	brush := geom.Square(at, EraserSize/zoom)
	objs := p.scene.Objects()
	erased := 0
	for i := len(objs) - 1; i >= 0; i-- {
		o := objs[i]
		if geom.IntersectsRect(o, brush) || geom.ContainsPoint(o, at) {
			p.sync.OnLocalDelete(o.ID())
			erased++
		}
	}
	if erased > 0 {
		p.history.RecordSnapshot()
	}
	return erased
}
