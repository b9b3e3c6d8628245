// Package profile extracts 2D profiles from IFC profile definitions —
// parametric shapes (rectangle, circle, I/L/T/U/C/Z, hollow variants),
// arbitrary closed profiles sampled from a curve, and profiles with voids —
// and samples curves (polyline, indexed poly-curve, composite curve,
// trimmed circle/ellipse) into discrete point loops.
package profile

// Point2D is a point in a profile's local 2D frame.
type Point2D struct{ X, Y float64 }

// Profile is a closed 2D region: an outer loop plus any number of hole
// loops. By convention Outer winds counter-clockwise and Holes wind
// clockwise.
type Profile struct {
	Outer []Point2D
	Holes [][]Point2D
}

// PartialVoid is one partial-depth opening record carried alongside a
// Profile with voids: a 2D footprint plus the depth band it occupies along
// the host extrusion direction.
type PartialVoid struct {
	Contour    []Point2D
	DepthStart float64
	DepthEnd   float64
	IsThrough  bool
}

// WithVoids is a profile plus any partial-depth voids that have not been
// merged into Holes (through-voids are already merged by the caller before
// this struct is built).
type WithVoids struct {
	Profile Profile
	Partial []PartialVoid
}

// SignedArea returns twice the signed area of a closed polygon loop
// (positive for counter-clockwise winding under a standard XY frame).
func SignedArea(loop []Point2D) float64 {
	var sum float64
	n := len(loop)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += loop[i].X*loop[j].Y - loop[j].X*loop[i].Y
	}
	return sum
}

// IsCCW reports whether loop winds counter-clockwise.
func IsCCW(loop []Point2D) bool { return SignedArea(loop) > 0 }

// Reversed returns a copy of loop with its point order reversed, used to
// normalize hole winding.
func Reversed(loop []Point2D) []Point2D {
	out := make([]Point2D, len(loop))
	for i, p := range loop {
		out[len(loop)-1-i] = p
	}
	return out
}

// NormalizeWinding returns outer wound CCW and every hole wound CW,
// reversing any loop that does not already match its required winding.
func NormalizeWinding(outer []Point2D, holes [][]Point2D) ([]Point2D, [][]Point2D) {
	if !IsCCW(outer) {
		outer = Reversed(outer)
	}
	normHoles := make([][]Point2D, len(holes))
	for i, h := range holes {
		if IsCCW(h) {
			normHoles[i] = Reversed(h)
		} else {
			normHoles[i] = h
		}
	}
	return outer, normHoles
}

// ConvexHull computes the 2D convex hull of a point set using the monotone
// chain algorithm, returned counter-clockwise. Used by the void classifier
// (C13) to derive a coplanar opening's 2D footprint from its projected
// vertices.
func ConvexHull(points []Point2D) []Point2D {
	pts := append([]Point2D(nil), points...)
	sortPoints(pts)
	pts = dedupe(pts)
	n := len(pts)
	if n < 3 {
		return pts
	}

	hull := make([]Point2D, 0, 2*n)
	// Lower hull.
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper hull.
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func cross(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func sortPoints(pts []Point2D) {
	// Simple insertion sort by (X, Y); hull inputs are small (opening
	// footprints), so O(n^2) is not a concern.
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && less(pts[j], pts[j-1]); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
}

func less(a, b Point2D) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func dedupe(pts []Point2D) []Point2D {
	if len(pts) == 0 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		last := out[len(out)-1]
		if p.X != last.X || p.Y != last.Y {
			out = append(out, p)
		}
	}
	return out
}
