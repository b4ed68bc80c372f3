package model

import "math"

// Point represents a 2D point on a page.
type Point struct {
	X, Y float64
}

// BoundingBox represents a rectangular region in page coordinates.
// y0 grows downward, so Y0 is the top edge and Y1 the bottom edge.
// A BoundingBox is immutable once constructed.
type BoundingBox struct {
	X0     float64 `json:"x0"`
	Y0     float64 `json:"y0"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBoundingBox creates a bounding box from corner coordinates.
// Width and Height are derived.
func NewBoundingBox(x0, y0, x1, y1 float64) BoundingBox {
	return BoundingBox{
		X0:     x0,
		Y0:     y0,
		X1:     x1,
		Y1:     y1,
		Width:  x1 - x0,
		Height: y1 - y0,
	}
}

// IsValid returns true if the box has non-negative extent in both axes.
func (b BoundingBox) IsValid() bool {
	return b.X1 >= b.X0 && b.Y1 >= b.Y0
}

// IsZero returns true if the box is the zero value.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Center returns the center point of the box.
func (b BoundingBox) Center() Point {
	return Point{
		X: (b.X0 + b.X1) / 2,
		Y: (b.Y0 + b.Y1) / 2,
	}
}

// Union returns the smallest box covering both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return NewBoundingBox(
		math.Min(b.X0, other.X0),
		math.Min(b.Y0, other.Y0),
		math.Max(b.X1, other.X1),
		math.Max(b.Y1, other.Y1),
	)
}

// Intersects checks if two boxes overlap.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(b.X1 < other.X0 ||
		b.X0 > other.X1 ||
		b.Y1 < other.Y0 ||
		b.Y0 > other.Y1)
}

// Contains checks if a point lies inside the box.
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 &&
		p.Y >= b.Y0 && p.Y <= b.Y1
}

// Area returns the area of the box.
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}
