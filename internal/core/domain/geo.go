package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Usable reports whether the size can be divided by.
func (s Size) Usable() bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Point is a position in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PixelRect is a rectangle in canvas pixel coordinates.
type PixelRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the rectangle center.
func (r PixelRect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ViewportTransform is the scale+translate pair applied to the diagram.
type ViewportTransform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// IdentityTransform is the reset state.
var IdentityTransform = ViewportTransform{Scale: 1}

// Valid reports whether every component is a finite number and scale is non-negative.
func (t ViewportTransform) Valid() bool {
	for _, v := range []float64{t.Scale, t.TranslateX, t.TranslateY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return t.Scale >= 0
}

// Apply maps a canvas pixel point into screen space.
func (t ViewportTransform) Apply(p Point) Point {
	return Point{
		X: p.X*t.Scale + t.TranslateX,
		Y: p.Y*t.Scale + t.TranslateY,
	}
}

// Framing is a computed transform plus the marker position under it.
type Framing struct {
	Location  string            `json:"location"`
	Transform ViewportTransform `json:"transform"`
	Marker    Point             `json:"marker"`
	Scaled    bool              `json:"scaled"` // false when the container was unusable
}

// LocationDistance pairs a location with its distance from a query point.
type LocationDistance struct {
	Location Location `json:"location"`
	Meters   float64  `json:"meters"`
}
