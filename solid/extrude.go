package solid

import (
	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/profile"
)

// Vec3 is a local 3D vector/point, independent of the placement package's
// Matrix to keep this package free of a placement import.
type Vec3 struct{ X, Y, Z float64 }

// Extrude builds a solid by sweeping prof along dir for depth, in the
// profile's local frame: a triangulated top cap, a bottom cap with flipped
// winding, and side quads (as two triangles) for every edge of the outer
// loop and every hole loop. Matches the C8 extrusion algorithm.
//
// Cap and wall vertices are not welded: the caps get their own vertices
// over the point list Triangulate2D returns (outer then holes), while each
// wall is built from its own loop's original point sequence with its own
// vertices. A seam between a cap and its adjoining wall is therefore
// two coincident, distinctly-indexed vertices — harmless for a triangle
// soup with face-stable normals, and how the teacher's routed processors
// already structure extruded/swept output.
func Extrude(prof profile.Profile, dir Vec3, depth float64) *mesh.Mesh {
	ring, caps := Triangulate2D(prof.Outer, prof.Holes)
	m := mesh.New(len(ring)*2+ringEdgeCount(prof)*2, len(caps)*2+ringEdgeCount(prof)*2)

	addCaps(m, ring, caps, dir, depth)
	addSideWalls(m, prof.Outer, dir, depth)
	for _, hole := range prof.Holes {
		addSideWalls(m, hole, dir, depth)
	}

	return m
}

func ringEdgeCount(prof profile.Profile) int {
	n := len(prof.Outer)
	for _, h := range prof.Holes {
		n += len(h)
	}
	return n
}

func addCaps(m *mesh.Mesh, ring []profile.Point2D, caps [][3]int, dir Vec3, depth float64) {
	bottom := make([]uint32, len(ring))
	top := make([]uint32, len(ring))
	for i, p := range ring {
		bx, by, bz := p.X, p.Y, 0.0
		tx, ty, tz := bx+dir.X*depth, by+dir.Y*depth, bz+dir.Z*depth
		bottom[i] = m.AddVertex(float32(bx), float32(by), float32(bz), float32(-dir.X), float32(-dir.Y), float32(-dir.Z))
		top[i] = m.AddVertex(float32(tx), float32(ty), float32(tz), float32(dir.X), float32(dir.Y), float32(dir.Z))
	}
	for _, tri := range caps {
		// Top cap keeps outer winding (facing +dir); bottom cap is flipped
		// so it faces -dir.
		m.AddTriangle(top[tri[0]], top[tri[1]], top[tri[2]])
		m.AddTriangle(bottom[tri[0]], bottom[tri[2]], bottom[tri[1]])
	}
}

// addSideWalls emits one quad (two triangles) per edge of loop, building a
// dedicated bottom/top vertex pair per loop point rather than reusing the
// cap's vertices.
func addSideWalls(m *mesh.Mesh, loop []profile.Point2D, dir Vec3, depth float64) {
	n := len(loop)
	if n == 0 {
		return
	}
	bottom := make([]uint32, n)
	top := make([]uint32, n)
	for i, p := range loop {
		bx, by, bz := p.X, p.Y, 0.0
		tx, ty, tz := bx+dir.X*depth, by+dir.Y*depth, bz+dir.Z*depth
		bottom[i] = m.AddVertex(float32(bx), float32(by), float32(bz), 0, 0, 0)
		top[i] = m.AddVertex(float32(tx), float32(ty), float32(tz), 0, 0, 0)
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m.AddTriangle(bottom[i], bottom[j], top[j])
		m.AddTriangle(bottom[i], top[j], top[i])
	}
}

// WithVoids extrudes a profile that additionally carries partial-depth
// voids not yet merged into Holes (through-voids are merged into Holes by
// the caller before Extrude runs — see voidpipe). For each partial void, the
// void's own side walls over its depth band, plus an end cap for a blind
// void, are merged into the mesh. The host extrusion itself is not cut: its
// caps still cover the void's footprint.
func WithVoids(wv profile.WithVoids, dir Vec3, depth float64) *mesh.Mesh {
	m := Extrude(wv.Profile, dir, depth)
	for _, pv := range wv.Partial {
		m.Merge(partialVoidBore(pv, dir))
	}
	return m
}

// partialVoidBore builds the walls and, for a blind opening, the end cap of
// one partial-depth void, as a separate mesh to be merged with the host
// extrusion.
func partialVoidBore(pv profile.PartialVoid, dir Vec3) *mesh.Mesh {
	ring := pv.Contour
	n := len(ring)
	m := mesh.New(n*2, n*2+(n-2))

	startV := make([]uint32, n)
	endV := make([]uint32, n)
	for i, p := range ring {
		sx, sy, sz := p.X+dir.X*pv.DepthStart, p.Y+dir.Y*pv.DepthStart, dir.Z*pv.DepthStart
		ex, ey, ez := p.X+dir.X*pv.DepthEnd, p.Y+dir.Y*pv.DepthEnd, dir.Z*pv.DepthEnd
		startV[i] = m.AddVertex(float32(sx), float32(sy), float32(sz), float32(-dir.X), float32(-dir.Y), float32(-dir.Z))
		endV[i] = m.AddVertex(float32(ex), float32(ey), float32(ez), float32(dir.X), float32(dir.Y), float32(dir.Z))
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m.AddTriangle(startV[i], startV[j], endV[j])
		m.AddTriangle(startV[i], endV[j], endV[i])
	}

	if !pv.IsThrough {
		_, caps := Triangulate2D(ring, nil)
		for _, tri := range caps {
			m.AddTriangle(endV[tri[0]], endV[tri[1]], endV[tri[2]])
		}
	}
	return m
}
