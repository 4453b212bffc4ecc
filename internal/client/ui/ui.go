// Package ui holds the toolbar state a drawing client reads: active tool,
// zoom and the current style.
package ui

import (
	"sync"

	"github.com/dkeye/Sketch/internal/domain"
)

type Tool string

const (
	ToolHand      Tool = "hand"
	ToolSelection Tool = "selection"
	ToolRectangle Tool = "rectangle"
	ToolRoundRect Tool = "round_rect"
	ToolCircle    Tool = "circle"
	ToolTriangle  Tool = "triangle"
	ToolRhombus   Tool = "rhombus"
	ToolHexagon   Tool = "hexagon"
	ToolArrow     Tool = "arrow"
	ToolLine      Tool = "line"
	ToolPencil    Tool = "pencil"
	ToolText      Tool = "text"
	ToolEraser    Tool = "eraser"
)

var tools = map[Tool]struct{}{
	ToolHand: {}, ToolSelection: {}, ToolRectangle: {}, ToolRoundRect: {}, ToolCircle: {},
	ToolTriangle: {}, ToolRhombus: {}, ToolHexagon: {}, ToolArrow: {}, ToolLine: {},
	ToolPencil: {}, ToolText: {}, ToolEraser: {},
}

func (t Tool) Valid() bool {
	_, ok := tools[t]
	return ok
}

// Flags are the per-object interaction flags derived from the active tool.
type Flags struct {
	Selectable bool
	Evented    bool
}

// FlagsFor returns the flags every object carries while t is active: objects
// only react to the pointer under the selection tool.
func FlagsFor(t Tool) Flags {
	on := t == ToolSelection
	return Flags{Selectable: on, Evented: on}
}

// Apply writes f into o.
func (f Flags) Apply(o domain.Object) {
	o[domain.FieldSelectable] = f.Selectable
	o[domain.FieldEvented] = f.Evented
}

// Style is the paint new objects are created with.
type Style struct {
	Stroke      string
	StrokeWidth float64
	Fill        string
	Opacity     float64
}

func DefaultStyle() Style {
	return Style{Stroke: "#000000", StrokeWidth: 2, Fill: "", Opacity: 1}
}

// State is the read side of the UI-state collaborator.
type State interface {
	Tool() Tool
	Zoom() float64
	Style() Style
}

// Static is a settable State for headless clients and tests.
type Static struct {
	mu    sync.RWMutex
	tool  Tool
	zoom  float64
	style Style
}

func NewStatic() *Static {
	return &Static{tool: ToolSelection, zoom: 1, style: DefaultStyle()}
}

func (s *Static) Tool() Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tool
}

func (s *Static) Zoom() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom
}

func (s *Static) Style() Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// SetTool ignores tools outside the vocabulary.
func (s *Static) SetTool(t Tool) {
	if !t.Valid() {
		return
	}
	s.mu.Lock()
	s.tool = t
	s.mu.Unlock()
}

// SetZoom clamps z into [0.2, 5].
func (s *Static) SetZoom(z float64) {
	s.mu.Lock()
	s.zoom = min(max(z, 0.2), 5)
	s.mu.Unlock()
}

func (s *Static) SetStyle(st Style) {
	s.mu.Lock()
	s.style = st
	s.mu.Unlock()
}
