// Package geom holds the canvas-space geometry used for hit-testing and
// exports: points, axis-aligned rectangles and per-kind object bounds.
package geom

import "math"

type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Rect is an axis-aligned rectangle with Min at the top-left corner.
type Rect struct {
	Min, Max Point
}

// RectFromPoints returns the rectangle spanned by two arbitrary corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// RectXYWH builds a rectangle from its top-left corner and size. Negative
// sizes are normalised.
func RectXYWH(x, y, w, h float64) Rect {
	return RectFromPoints(Point{X: x, Y: y}, Point{X: x + w, Y: y + h})
}

// Square returns the square of side size centred on c.
func Square(c Point, size float64) Rect {
	half := size / 2
	return Rect{
		Min: Point{X: c.X - half, Y: c.Y - half},
		Max: Point{X: c.X + half, Y: c.Y + half},
	}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Empty() bool { return r.Width() <= 0 && r.Height() <= 0 }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether r and o overlap, touching edges included.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Max.X < o.Min.X || o.Max.X < r.Min.X ||
		r.Max.Y < o.Min.Y || o.Max.Y < r.Min.Y)
}

// Union returns the smallest rectangle covering r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}

// BoundsOfPoints returns the bounding box of pts and false when pts is empty.
func BoundsOfPoints(pts []Point) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r = r.Union(Rect{Min: p, Max: p})
	}
	return r, true
}
