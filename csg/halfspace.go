package csg

import "github.com/ifcgeom/corepipe/mesh"

// Plane is a clipping plane in world space: a point on the plane and its
// outward normal, matching how an IFCHALFSPACESOLID's BaseSurface and
// AgreementFlag resolve to a plane-and-side.
type Plane struct {
	Point  [3]float64
	Normal [3]float64
}

// NewPlane builds a Plane from a point and a (not necessarily normalized)
// normal direction.
func NewPlane(point, normal [3]float64) Plane {
	return Plane{Point: point, Normal: normal}
}

func (p Plane) toInternal() plane {
	return planeFromPoint(vec3{p.Point[0], p.Point[1], p.Point[2]}, vec3{p.Normal[0], p.Normal[1], p.Normal[2]})
}

// ClippingProcessor performs the bounded 3D boolean operations the router
// dispatches IfcBooleanResult/IfcBooleanClippingResult operands to.
type ClippingProcessor struct{}

// NewClippingProcessor returns a ClippingProcessor.
func NewClippingProcessor() *ClippingProcessor { return &ClippingProcessor{} }

// ClipMesh keeps the half of m that lies behind pl — the side opposite
// pl.Normal — discarding geometry in front of and re-triangulating geometry
// spanning the plane. This is the fast path for IFCHALFSPACESOLID and
// IFCPOLYGONALBOUNDEDHALFSPACE difference operands: pl.Normal is the side
// being subtracted away.
func (c *ClippingProcessor) ClipMesh(m *mesh.Mesh, pl Plane) *mesh.Mesh {
	tris := toTriangles(m)
	internal := pl.toInternal()

	kept := make([]triangle, 0, len(tris))
	for _, t := range tris {
		_, back := splitTriangle(t, internal)
		kept = append(kept, back...)
	}
	return fromTriangles(kept)
}

// BoxSubtract removes the axis-aligned region [min, max] from m by clipping
// against the box's six faces in turn: each plane's "outside" fragment is
// kept permanently, and only the fragment still inside that plane continues
// on to the next one. What's left after all six planes is the part that was
// inside the box on every face — i.e. inside the box itself — and is
// discarded. This is the standard technique for subtracting a convex solid
// via repeated half-space clipping without a general BSP.
func (c *ClippingProcessor) BoxSubtract(m *mesh.Mesh, min, max [3]float64) *mesh.Mesh {
	planes := boxPlanes(min, max)

	frontier := toTriangles(m)
	var kept []triangle
	for _, pl := range planes {
		var stillInside []triangle
		for _, t := range frontier {
			outside, inside := splitTriangle(t, pl)
			kept = append(kept, outside...)
			stillInside = append(stillInside, inside...)
		}
		frontier = stillInside
	}
	return fromTriangles(kept)
}

// boxPlanes returns the box's six faces, each plane's normal pointing
// outward (away from the box interior) so that splitTriangle's front side
// is "outside the box".
func boxPlanes(min, max [3]float64) []plane {
	mid := func(a, b float64) float64 { return (a + b) / 2 }
	center := vec3{mid(min[0], max[0]), mid(min[1], max[1]), mid(min[2], max[2])}
	return []plane{
		planeFromPoint(vec3{min[0], center.Y, center.Z}, vec3{-1, 0, 0}),
		planeFromPoint(vec3{max[0], center.Y, center.Z}, vec3{1, 0, 0}),
		planeFromPoint(vec3{center.X, min[1], center.Z}, vec3{0, -1, 0}),
		planeFromPoint(vec3{center.X, max[1], center.Z}, vec3{0, 1, 0}),
		planeFromPoint(vec3{center.X, center.Y, min[2]}, vec3{0, 0, -1}),
		planeFromPoint(vec3{center.X, center.Y, max[2]}, vec3{0, 0, 1}),
	}
}

func toTriangles(m *mesh.Mesh) []triangle {
	out := make([]triangle, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		out = append(out, triangle{
			vertexAtIndex(m, m.Indices[i]),
			vertexAtIndex(m, m.Indices[i+1]),
			vertexAtIndex(m, m.Indices[i+2]),
		})
	}
	return out
}

func vertexAtIndex(m *mesh.Mesh, idx uint32) vertex {
	i := int(idx) * 3
	return vertex{
		pos:    vec3{float64(m.Positions[i]), float64(m.Positions[i+1]), float64(m.Positions[i+2])},
		normal: vec3{float64(m.Normals[i]), float64(m.Normals[i+1]), float64(m.Normals[i+2])},
	}
}

func fromTriangles(tris []triangle) *mesh.Mesh {
	m := mesh.New(len(tris)*3, len(tris))
	for _, t := range tris {
		a := m.AddVertex(float32(t[0].pos.X), float32(t[0].pos.Y), float32(t[0].pos.Z), float32(t[0].normal.X), float32(t[0].normal.Y), float32(t[0].normal.Z))
		b := m.AddVertex(float32(t[1].pos.X), float32(t[1].pos.Y), float32(t[1].pos.Z), float32(t[1].normal.X), float32(t[1].normal.Y), float32(t[1].normal.Z))
		c := m.AddVertex(float32(t[2].pos.X), float32(t[2].pos.Y), float32(t[2].pos.Z), float32(t[2].normal.X), float32(t[2].normal.Y), float32(t[2].normal.Z))
		m.AddTriangle(a, b, c)
	}
	return m
}
