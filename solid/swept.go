package solid

import (
	"math"

	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/profile"
)

const (
	diskMinSegments = 24
	diskMaxSegments = 120
	diskTargetChord = 0.08
)

// diskSegments picks a radial segment count for a swept-disk tube, scaling
// with radius and clamped the same way profile.DefaultCircleConfig clamps
// circle profiles.
func diskSegments(radius float64) int {
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return diskMinSegments
	}
	r := math.Abs(radius)
	if r <= 1e-12 {
		return diskMinSegments
	}
	n := int(math.Ceil((2 * math.Pi * r) / diskTargetChord))
	if n < diskMinSegments {
		return diskMinSegments
	}
	if n > diskMaxSegments {
		return diskMaxSegments
	}
	return n
}

// SweepDisk sweeps a circular cross-section of the given radius along
// directrix (a polyline of 3D points), producing a tube mesh with end caps.
// directrix must have at least 2 points.
func SweepDisk(directrix []Vec3, radius float64) *mesh.Mesh {
	n := len(directrix)
	if n < 2 {
		return mesh.New(0, 0)
	}
	segments := diskSegments(radius)
	m := mesh.New(n*segments+2, (n-1)*segments*2+segments*2)

	rings := make([][]uint32, n)
	for i, p := range directrix {
		tangent := tangentAt(directrix, i)
		perp1, perp2 := perpendicularBasis(tangent)
		ring := make([]uint32, segments)
		for j := 0; j < segments; j++ {
			angle := 2 * math.Pi * float64(j) / float64(segments)
			cos, sin := math.Cos(angle), math.Sin(angle)
			ox := perp1.X*radius*cos + perp2.X*radius*sin
			oy := perp1.Y*radius*cos + perp2.Y*radius*sin
			oz := perp1.Z*radius*cos + perp2.Z*radius*sin
			ring[j] = m.AddVertex(
				float32(p.X+ox), float32(p.Y+oy), float32(p.Z+oz),
				0, 0, 0,
			)
		}
		rings[i] = ring
	}

	for i := 0; i < n-1; i++ {
		for j := 0; j < segments; j++ {
			jn := (j + 1) % segments
			m.AddTriangle(rings[i][j], rings[i+1][j], rings[i+1][jn])
			m.AddTriangle(rings[i][j], rings[i+1][jn], rings[i][jn])
		}
	}

	startCenter := m.AddVertex(float32(directrix[0].X), float32(directrix[0].Y), float32(directrix[0].Z), 0, 0, 0)
	for j := 0; j < segments; j++ {
		jn := (j + 1) % segments
		m.AddTriangle(startCenter, rings[0][jn], rings[0][j])
	}

	end := directrix[n-1]
	endCenter := m.AddVertex(float32(end.X), float32(end.Y), float32(end.Z), 0, 0, 0)
	for j := 0; j < segments; j++ {
		jn := (j + 1) % segments
		m.AddTriangle(endCenter, rings[n-1][j], rings[n-1][jn])
	}

	return m
}

func tangentAt(pts []Vec3, i int) Vec3 {
	n := len(pts)
	switch {
	case i == 0:
		return normalizeVec(sub(pts[1], pts[0]))
	case i == n-1:
		return normalizeVec(sub(pts[i], pts[i-1]))
	default:
		return normalizeVec(sub(pts[i+1], pts[i-1]))
	}
}

func perpendicularBasis(tangent Vec3) (Vec3, Vec3) {
	up := Vec3{1, 0, 0}
	if math.Abs(tangent.X) >= 0.9 {
		up = Vec3{0, 1, 0}
	}
	perp1 := normalizeVec(crossVec(tangent, up))
	perp2 := normalizeVec(crossVec(tangent, perp1))
	return perp1, perp2
}

func sub(a, b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func crossVec(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func normalizeVec(v Vec3) Vec3 {
	length := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if length < 1e-12 {
		return Vec3{0, 0, 1}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

// Revolve rotates prof (read as X = radius from axis, Y = height along
// axis) about axisLoc/axisDir by angle radians, producing a surface of
// revolution. A full circle (|angle| of at least 1.99*pi) closes without
// end caps; a partial revolution gets a flat cap at each end, fanned from
// the point on the axis at the profile's mean height.
func Revolve(prof []profile.Point2D, axisLoc, axisDir Vec3, angle float64) *mesh.Mesh {
	if len(prof) == 0 {
		return mesh.New(0, 0)
	}
	axisDir = normalizeVec(axisDir)
	fullCircle := math.Abs(angle) >= math.Pi*1.99

	segments := 24
	if !fullCircle {
		segments = int(math.Ceil(math.Abs(angle)/math.Pi*12))
		if segments < 4 {
			segments = 4
		}
	}

	np := len(prof)
	m := mesh.New((segments+1)*np, segments*(np-1)*2+2*(np-2))

	rings := make([][]uint32, segments+1)
	for i := 0; i <= segments; i++ {
		t := angle * float64(i) / float64(segments)
		if fullCircle && i == segments {
			t = 0
		}
		rings[i] = make([]uint32, np)
		for j, p := range prof {
			pos := rodrigues(Vec3{p.X, 0, 0}, axisDir, t)
			pos = Vec3{axisLoc.X + axisDir.X*p.Y + pos.X, axisLoc.Y + axisDir.Y*p.Y + pos.Y, axisLoc.Z + axisDir.Z*p.Y + pos.Z}
			rings[i][j] = m.AddVertex(float32(pos.X), float32(pos.Y), float32(pos.Z), 0, 0, 0)
		}
	}

	for i := 0; i < segments; i++ {
		for j := 0; j < np-1; j++ {
			m.AddTriangle(rings[i][j], rings[i+1][j], rings[i+1][j+1])
			m.AddTriangle(rings[i][j], rings[i+1][j+1], rings[i][j+1])
		}
	}

	if !fullCircle {
		var avgHeight float64
		for _, p := range prof {
			avgHeight += p.Y
		}
		avgHeight /= float64(np)
		center := Vec3{axisLoc.X + axisDir.X*avgHeight, axisLoc.Y + axisDir.Y*avgHeight, axisLoc.Z + axisDir.Z*avgHeight}

		startCenter := m.AddVertex(float32(center.X), float32(center.Y), float32(center.Z), 0, 0, 0)
		for j := 0; j < np-1; j++ {
			m.AddTriangle(startCenter, rings[0][j+1], rings[0][j])
		}
		endCenter := m.AddVertex(float32(center.X), float32(center.Y), float32(center.Z), 0, 0, 0)
		for j := 0; j < np-1; j++ {
			m.AddTriangle(endCenter, rings[segments][j], rings[segments][j+1])
		}
	}

	return m
}

// rodrigues rotates v by angle radians about the unit axis k.
func rodrigues(v, k Vec3, angle float64) Vec3 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	kCrossV := crossVec(k, v)
	kDotV := k.X*v.X + k.Y*v.Y + k.Z*v.Z
	return Vec3{
		v.X*cos + kCrossV.X*sin + k.X*kDotV*(1-cos),
		v.Y*cos + kCrossV.Y*sin + k.Y*kDotV*(1-cos),
		v.Z*cos + kCrossV.Z*sin + k.Z*kDotV*(1-cos),
	}
}
