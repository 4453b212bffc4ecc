package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/geom"
)

func sampleObjects() []domain.Object {
	return []domain.Object{
		{"id": "r1", "kind": "rect", "left": 10.0, "top": 10.0, "width": 100.0, "height": 50.0, "fill": "#ff0000"},
		{"id": "r2", "kind": "rect", "left": 10.0, "top": 80.0, "width": 100.0, "height": 50.0, "rx": 10.0, "ry": 10.0},
		{"id": "e1", "kind": "ellipse", "left": 200.0, "top": 10.0, "rx": 40.0, "ry": 20.0, "stroke": "#00f"},
		{"id": "t1", "kind": "triangle", "left": 300.0, "top": 10.0, "width": 60.0, "height": 60.0},
		{"id": "p1", "kind": "polygon", "left": 10.0, "top": 200.0, "points": []any{
			map[string]any{"x": 50.0, "y": 0.0},
			map[string]any{"x": 100.0, "y": 50.0},
			map[string]any{"x": 50.0, "y": 100.0},
			map[string]any{"x": 0.0, "y": 50.0},
		}},
		{"id": "l1", "kind": "line", "x1": 0.0, "y1": 0.0, "x2": 100.0, "y2": 100.0, "strokeWidth": 3.0},
		{"id": "a1", "kind": "path", "path": geom.ArrowPath(geom.Pt(10, 300), geom.Pt(200, 300))},
		{"id": "x1", "kind": "text", "left": 200.0, "top": 200.0, "text": "Type here", "fontSize": 24.0},
		{"id": "bad", "kind": "rect"},
	}
}

func TestPNGEncodes(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, sampleObjects(), 400, 400); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output is not a PNG")
	}
}

func TestPDFEncodes(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, sampleObjects(), 800, 600); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRejectsEmptyCanvas(t *testing.T) {
	if err := PNG(&bytes.Buffer{}, nil, 0, 10); !errors.Is(err, ErrBadSize) {
		t.Fatalf("PNG err = %v", err)
	}
	if err := PDF(&bytes.Buffer{}, nil, 10, 0); !errors.Is(err, ErrBadSize) {
		t.Fatalf("PDF err = %v", err)
	}
}

func TestStyleOf(t *testing.T) {
	s := StyleOf(domain.Object{"kind": "rect"})
	if s.Stroke == nil || s.Fill != nil || s.Width != 1 || s.Opacity != 1 {
		t.Fatalf("default style = %+v", s)
	}
	s = StyleOf(domain.Object{"kind": "rect", "stroke": "transparent", "fill": "#00ff00", "opacity": 0.5})
	if s.Stroke != nil || s.Fill == nil || s.Fill.G != 1 || s.Opacity != 0.5 {
		t.Fatalf("explicit style = %+v", s)
	}
	s = StyleOf(domain.Object{"kind": "text"})
	if s.Fill == nil {
		t.Fatalf("text without fill should paint black")
	}
}

type recorder struct {
	calls []string
}

func (r *recorder) rect(geom.Rect, float64, Style) error {
	r.calls = append(r.calls, "rect")
	return nil
}

func (r *recorder) ellipse(geom.Point, float64, float64, Style) error {
	r.calls = append(r.calls, "ellipse")
	return nil
}

func (r *recorder) polygon([]geom.Point, Style) error {
	r.calls = append(r.calls, "polygon")
	return nil
}

func (r *recorder) polyline([]geom.Point, Style) error {
	r.calls = append(r.calls, "polyline")
	return nil
}

func (r *recorder) text(geom.Point, string, float64, Style) error {
	r.calls = append(r.calls, "text")
	return nil
}

func TestRenderDispatchesByKind(t *testing.T) {
	rec := &recorder{}
	if err := render(rec, sampleObjects()); err != nil {
		t.Fatalf("render: %v", err)
	}
	// Sorted by id: a1 (3 strokes), bad (skipped), e1, l1, p1, r1, r2, t1, x1.
	want := []string{"polyline", "polyline", "polyline", "ellipse", "polyline", "polygon", "rect", "rect", "polygon", "text"}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", rec.calls, want)
		}
	}
}
