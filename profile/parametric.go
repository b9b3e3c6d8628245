package profile

import "math"

// CircleConfig controls how many segments a circular profile is
// tessellated into: N scales with radius so the chord length approaches
// TargetChordM, clamped to [Min, Max].
type CircleConfig struct {
	Min          int
	Max          int
	TargetChordM float64
}

// DefaultCircleConfig matches spec.md's circle_segments_min/max/target_chord_m
// defaults (24 / 120 / 0.08).
func DefaultCircleConfig() CircleConfig {
	return CircleConfig{Min: 24, Max: 120, TargetChordM: 0.08}
}

func (cfg CircleConfig) segmentCount(radius float64) int {
	if radius <= 0 {
		return cfg.Min
	}
	circumference := 2 * math.Pi * radius
	n := int(math.Ceil(circumference / cfg.TargetChordM))
	if n < cfg.Min {
		n = cfg.Min
	}
	if n > cfg.Max {
		n = cfg.Max
	}
	return n
}

// Rectangle returns the 4 corners of a rectangle centered at the origin
// with the given X/Y extents, wound counter-clockwise.
func Rectangle(xDim, yDim float64) Profile {
	hx, hy := xDim/2, yDim/2
	return Profile{Outer: []Point2D{
		{X: -hx, Y: -hy},
		{X: hx, Y: -hy},
		{X: hx, Y: hy},
		{X: -hx, Y: hy},
	}}
}

// RectangleHollow returns a rectangle profile with a concentric rectangular
// hole, wall thickness applied symmetrically.
func RectangleHollow(xDim, yDim, wallThickness float64) Profile {
	outer := Rectangle(xDim, yDim)
	inner := Rectangle(xDim-2*wallThickness, yDim-2*wallThickness)
	return Profile{Outer: outer.Outer, Holes: [][]Point2D{Reversed(inner.Outer)}}
}

// Circle returns a circular profile of the given radius, segmented per cfg.
func Circle(radius float64, cfg CircleConfig) Profile {
	n := cfg.segmentCount(radius)
	return Profile{Outer: circlePoints(radius, n)}
}

// CircleHollow returns an annulus: an outer circle loop plus one inner
// (hole) circle loop.
func CircleHollow(outerRadius, innerRadius float64, cfg CircleConfig) Profile {
	n := cfg.segmentCount(outerRadius)
	outer := circlePoints(outerRadius, n)
	inner := circlePoints(innerRadius, n)
	return Profile{Outer: outer, Holes: [][]Point2D{Reversed(inner)}}
}

func circlePoints(radius float64, n int) []Point2D {
	pts := make([]Point2D, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point2D{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return pts
}

// IShapeParams are the standard attributes of an I-section profile.
type IShapeParams struct {
	OverallWidth, OverallDepth     float64
	WebThickness, FlangeThickness  float64
	FilletRadius                   float64 // unused in the polygonal approximation, reserved
}

// IShape returns the exact point sequence for an I/H-section, centered at
// the origin, wound counter-clockwise. Fillets are approximated by sharp
// corners (the polygon approximation the teacher's mesh pipelines use
// throughout; fillet rounding is not attempted here).
func IShape(p IShapeParams) Profile {
	b, h := p.OverallWidth/2, p.OverallDepth/2
	tw, tf := p.WebThickness/2, p.FlangeThickness
	return Profile{Outer: []Point2D{
		{X: -b, Y: -h},
		{X: b, Y: -h},
		{X: b, Y: -h + tf},
		{X: tw, Y: -h + tf},
		{X: tw, Y: h - tf},
		{X: b, Y: h - tf},
		{X: b, Y: h},
		{X: -b, Y: h},
		{X: -b, Y: h - tf},
		{X: -tw, Y: h - tf},
		{X: -tw, Y: -h + tf},
		{X: -b, Y: -h + tf},
	}}
}

// LShapeParams are the standard attributes of an L-section (angle) profile.
type LShapeParams struct {
	Depth, Width, Thickness float64
}

// LShape returns the exact point sequence for an L-section, with its
// corner at the origin.
func LShape(p LShapeParams) Profile {
	d, w, t := p.Depth, p.Width, p.Thickness
	return Profile{Outer: []Point2D{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: t},
		{X: t, Y: t},
		{X: t, Y: d},
		{X: 0, Y: d},
	}}
}

// TShapeParams are the standard attributes of a T-section profile.
type TShapeParams struct {
	Depth, FlangeWidth, WebThickness, FlangeThickness float64
}

// TShape returns the exact point sequence for a T-section, centered on the
// web's vertical axis with the flange at the top.
func TShape(p TShapeParams) Profile {
	b, d, tw, tf := p.FlangeWidth/2, p.Depth, p.WebThickness/2, p.FlangeThickness
	return Profile{Outer: []Point2D{
		{X: -tw, Y: 0},
		{X: tw, Y: 0},
		{X: tw, Y: d - tf},
		{X: b, Y: d - tf},
		{X: b, Y: d},
		{X: -b, Y: d},
		{X: -b, Y: d - tf},
		{X: -tw, Y: d - tf},
	}}
}

// UShapeParams are the standard attributes of a U/channel-section profile.
type UShapeParams struct {
	Depth, FlangeWidth, WebThickness, FlangeThickness float64
}

// UShape returns the exact point sequence for a U-section (channel),
// opening to the right.
func UShape(p UShapeParams) Profile {
	d, w, tw, tf := p.Depth, p.FlangeWidth, p.WebThickness, p.FlangeThickness
	h := d / 2
	return Profile{Outer: []Point2D{
		{X: 0, Y: -h},
		{X: w, Y: -h},
		{X: w, Y: -h + tf},
		{X: tw, Y: -h + tf},
		{X: tw, Y: h - tf},
		{X: w, Y: h - tf},
		{X: w, Y: h},
		{X: 0, Y: h},
	}}
}

// CShapeParams are the standard attributes of a C-section (lipped channel).
type CShapeParams struct {
	Depth, Width, WebThickness, Girth float64
}

// CShape returns the exact point sequence for a C-section with end lips.
func CShape(p CShapeParams) Profile {
	d, w, t, g := p.Depth/2, p.Width, p.WebThickness, p.Girth
	return Profile{Outer: []Point2D{
		{X: 0, Y: -d},
		{X: w, Y: -d},
		{X: w, Y: -d + g},
		{X: w - t, Y: -d + g},
		{X: w - t, Y: -d + t},
		{X: t, Y: -d + t},
		{X: t, Y: d - t},
		{X: w - t, Y: d - t},
		{X: w - t, Y: d - g},
		{X: w, Y: d - g},
		{X: w, Y: d},
		{X: 0, Y: d},
	}}
}

// ZShapeParams are the standard attributes of a Z-section profile.
type ZShapeParams struct {
	Depth, FlangeWidth, WebThickness, FlangeThickness float64
}

// ZShape returns the exact point sequence for a Z-section, centrally
// symmetric about the origin.
func ZShape(p ZShapeParams) Profile {
	d, w, tw, tf := p.Depth/2, p.FlangeWidth, p.WebThickness/2, p.FlangeThickness
	return Profile{Outer: []Point2D{
		{X: -tw, Y: -d},
		{X: w - tw, Y: -d},
		{X: w - tw, Y: -d + tf},
		{X: tw, Y: -d + tf},
		{X: tw, Y: d},
		{X: -(w - tw), Y: d},
		{X: -(w - tw), Y: d - tf},
		{X: -tw, Y: d - tf},
	}}
}
