package export

import (
	"fmt"
	"io"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/geom"
	"github.com/gogpu/gg"
	"github.com/jung-kurt/gofpdf"
)

type pdfPainter struct {
	doc *gofpdf.Fpdf
}

// PDF writes objs as vector shapes on a single page sized width×height points.
func PDF(w io.Writer, objs []domain.Object, width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrBadSize
	}
	orientation := "P"
	if width > height {
		orientation = "L"
	}
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(width), Ht: float64(height)},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	doc.SetFont("Helvetica", "", defaultFontSize)

	if err := render(&pdfPainter{doc: doc}, objs); err != nil {
		return err
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func rgb255(c *gg.RGBA) (int, int, int) {
	return int(c.R*255 + 0.5), int(c.G*255 + 0.5), int(c.B*255 + 0.5)
}

// style applies s and returns the gofpdf draw style: "D", "F" or "FD".
// An empty result means nothing would be visible.
func (p *pdfPainter) style(s Style) string {
	var out string
	alpha := s.Opacity
	if s.Fill != nil {
		p.doc.SetFillColor(rgb255(s.Fill))
		alpha *= s.Fill.A
		out += "F"
	}
	if s.Stroke != nil {
		p.doc.SetDrawColor(rgb255(s.Stroke))
		p.doc.SetLineWidth(s.Width)
		out += "D"
	}
	p.doc.SetAlpha(alpha, "Normal")
	if out == "DF" {
		return "FD"
	}
	return out
}

func (p *pdfPainter) rect(r geom.Rect, radius float64, s Style) error {
	st := p.style(s)
	if st == "" {
		return nil
	}
	if radius <= 0 {
		p.doc.Rect(r.Min.X, r.Min.Y, r.Width(), r.Height(), st)
		return p.doc.Error()
	}
	radius = min(radius, r.Width()/2, r.Height()/2)
	// Quarter arcs as cubic Béziers.
	k := radius * 0.5522847498307936
	x0, y0, x1, y1 := r.Min.X, r.Min.Y, r.Max.X, r.Max.Y
	p.doc.MoveTo(x0+radius, y0)
	p.doc.LineTo(x1-radius, y0)
	p.doc.CurveBezierCubicTo(x1-radius+k, y0, x1, y0+radius-k, x1, y0+radius)
	p.doc.LineTo(x1, y1-radius)
	p.doc.CurveBezierCubicTo(x1, y1-radius+k, x1-radius+k, y1, x1-radius, y1)
	p.doc.LineTo(x0+radius, y1)
	p.doc.CurveBezierCubicTo(x0+radius-k, y1, x0, y1-radius+k, x0, y1-radius)
	p.doc.LineTo(x0, y0+radius)
	p.doc.CurveBezierCubicTo(x0, y0+radius-k, x0+radius-k, y0, x0+radius, y0)
	p.doc.ClosePath()
	p.doc.DrawPath(st)
	return p.doc.Error()
}

func (p *pdfPainter) ellipse(c geom.Point, rx, ry float64, s Style) error {
	st := p.style(s)
	if st == "" {
		return nil
	}
	p.doc.Ellipse(c.X, c.Y, rx, ry, 0, st)
	return p.doc.Error()
}

func toPdfPoints(pts []geom.Point) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, pt := range pts {
		out[i] = gofpdf.PointType{X: pt.X, Y: pt.Y}
	}
	return out
}

func (p *pdfPainter) polygon(pts []geom.Point, s Style) error {
	st := p.style(s)
	if st == "" {
		return nil
	}
	p.doc.Polygon(toPdfPoints(pts), st)
	return p.doc.Error()
}

func (p *pdfPainter) polyline(pts []geom.Point, s Style) error {
	s.Fill = nil
	if p.style(s) == "" {
		return nil
	}
	for i := 1; i < len(pts); i++ {
		p.doc.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
	}
	return p.doc.Error()
}

func (p *pdfPainter) text(at geom.Point, body string, size float64, s Style) error {
	p.doc.SetTextColor(rgb255(s.Fill))
	p.doc.SetAlpha(s.Opacity*s.Fill.A, "Normal")
	p.doc.SetFontSize(size)
	p.doc.Text(at.X, at.Y+size, body)
	return p.doc.Error()
}
