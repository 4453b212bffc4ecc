package export

import (
	"fmt"
	"io"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/geom"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

type pngPainter struct {
	dc   *gg.Context
	font *text.FontSource
}

// PNG rasterises objs onto a white width×height canvas and writes it to w.
func PNG(w io.Writer, objs []domain.Object, width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrBadSize
	}
	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex("#ffffff"))

	p := &pngPainter{dc: dc}
	if src, err := text.NewFontSource(goregular.TTF); err == nil {
		p.font = src
	}
	if err := render(p, objs); err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (p *pngPainter) paint(s Style) error {
	if s.Fill != nil {
		p.dc.SetRGBA(s.Fill.R, s.Fill.G, s.Fill.B, s.Fill.A*s.Opacity)
		if s.Stroke == nil {
			return p.dc.Fill()
		}
		if err := p.dc.FillPreserve(); err != nil {
			return err
		}
	}
	if s.Stroke == nil {
		p.dc.ClearPath()
		return nil
	}
	p.dc.SetRGBA(s.Stroke.R, s.Stroke.G, s.Stroke.B, s.Stroke.A*s.Opacity)
	p.dc.SetLineWidth(s.Width)
	return p.dc.Stroke()
}

func (p *pngPainter) rect(r geom.Rect, radius float64, s Style) error {
	if radius > 0 {
		p.dc.DrawRoundedRectangle(r.Min.X, r.Min.Y, r.Width(), r.Height(), radius)
	} else {
		p.dc.DrawRectangle(r.Min.X, r.Min.Y, r.Width(), r.Height())
	}
	return p.paint(s)
}

func (p *pngPainter) ellipse(c geom.Point, rx, ry float64, s Style) error {
	p.dc.DrawEllipse(c.X, c.Y, rx, ry)
	return p.paint(s)
}

func (p *pngPainter) polygon(pts []geom.Point, s Style) error {
	p.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.dc.LineTo(pt.X, pt.Y)
	}
	p.dc.ClosePath()
	return p.paint(s)
}

func (p *pngPainter) polyline(pts []geom.Point, s Style) error {
	p.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.dc.LineTo(pt.X, pt.Y)
	}
	s.Fill = nil
	return p.paint(s)
}

// text draws body with its top edge at at.Y; DrawString takes the baseline.
func (p *pngPainter) text(at geom.Point, body string, size float64, s Style) error {
	if p.font == nil {
		return nil
	}
	p.dc.SetFont(p.font.Face(size))
	c := s.Fill
	p.dc.SetRGBA(c.R, c.G, c.B, c.A*s.Opacity)
	p.dc.DrawString(body, at.X, at.Y+size)
	return nil
}
