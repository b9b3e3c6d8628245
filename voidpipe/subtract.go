package voidpipe

import "github.com/ifcgeom/corepipe/profile"

// SubtractMultiple2D subtracts each through-void contour from base,
// producing a profile with one additional hole per contour that actually
// intersects the outer boundary. A contour that clipping reduces to fewer
// than three points (fully outside the outer loop) is dropped rather than
// added as a degenerate hole; the area of what remains is not checked.
//
// Clipping assumes base.Outer is convex, which covers the common opening
// case (rectangular and circular host profiles). For a concave outer loop
// the unclipped contour is used as-is when it lies fully inside the outer
// loop's bounding box, and dropped otherwise — an approximation rather than
// a general polygon-with-holes boolean, matching the 2D-first pipeline's
// mandate to handle the common case fast and fall back to 3D CSG for
// anything unusual.
func SubtractMultiple2D(base profile.Profile, contours [][]profile.Point2D) profile.Profile {
	out := profile.Profile{
		Outer: base.Outer,
		Holes: append([][]profile.Point2D(nil), base.Holes...),
	}

	convexOuter := isConvex(base.Outer)

	for _, contour := range contours {
		var hole []profile.Point2D
		if convexOuter {
			hole = clipPolygon(contour, base.Outer)
		} else if boundsContain(base.Outer, contour) {
			hole = contour
		}

		if len(hole) < 3 {
			continue
		}
		// Holes wind clockwise, matching the convention profile.
		// NormalizeWinding establishes elsewhere in the package.
		if profile.IsCCW(hole) {
			hole = profile.Reversed(hole)
		}
		out.Holes = append(out.Holes, hole)
	}

	return out
}

// clipPolygon clips subject against the convex polygon clip using
// Sutherland-Hodgman, processing one clip edge at a time.
func clipPolygon(subject, clip []profile.Point2D) []profile.Point2D {
	output := subject
	n := len(clip)
	for i := 0; i < n && len(output) > 0; i++ {
		a, b := clip[i], clip[(i+1)%n]
		input := output
		output = nil
		for j := range input {
			cur := input[j]
			prev := input[(j-1+len(input))%len(input)]
			curIn := isInsideEdge(cur, a, b)
			prevIn := isInsideEdge(prev, a, b)
			if curIn {
				if !prevIn {
					output = append(output, edgeIntersection(prev, cur, a, b))
				}
				output = append(output, cur)
			} else if prevIn {
				output = append(output, edgeIntersection(prev, cur, a, b))
			}
		}
	}
	return output
}

// isInsideEdge reports whether p is on the left (interior, for a
// counter-clockwise-wound clip polygon) side of directed edge a->b.
func isInsideEdge(p, a, b profile.Point2D) bool {
	return (b.X-a.X)*(p.Y-a.Y)-(b.Y-a.Y)*(p.X-a.X) >= 0
}

func edgeIntersection(p1, p2, a, b profile.Point2D) profile.Point2D {
	a1 := b.Y - a.Y
	b1 := a.X - b.X
	c1 := a1*a.X + b1*a.Y

	a2 := p2.Y - p1.Y
	b2 := p1.X - p2.X
	c2 := a2*p1.X + b2*p1.Y

	det := a1*b2 - a2*b1
	if det == 0 {
		return p2
	}
	return profile.Point2D{
		X: (b2*c1 - b1*c2) / det,
		Y: (a1*c2 - a2*c1) / det,
	}
}

func isConvex(loop []profile.Point2D) bool {
	n := len(loop)
	if n < 3 {
		return false
	}
	sign := 0
	for i := 0; i < n; i++ {
		a := loop[i]
		b := loop[(i+1)%n]
		c := loop[(i+2)%n]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			continue
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if sign != s {
			return false
		}
	}
	return true
}

func boundsContain(outer, contour []profile.Point2D) bool {
	ominX, ominY, omaxX, omaxY := bounds(outer)
	cminX, cminY, cmaxX, cmaxY := bounds(contour)
	return cminX >= ominX && cmaxX <= omaxX && cminY >= ominY && cmaxY <= omaxY
}

func bounds(pts []profile.Point2D) (minX, minY, maxX, maxY float64) {
	minX, minY = pts[0].X, pts[0].Y
	maxX, maxY = minX, minY
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return
}
