package voidpipe

import (
	"testing"

	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/profile"
	"github.com/ifcgeom/corepipe/solid"
)

func TestProcessNoVoidsJustExtrudes(t *testing.T) {
	base := profile.Rectangle(4, 2)
	host, nonPlanar := Process(base, nil, placement.Identity(), [3]float64{0, 0, 1}, solid.Vec3{X: 0, Y: 0, Z: 1}, 1)

	if !host.Valid() || host.TriangleCount() == 0 {
		t.Fatal("expected a valid extruded host with no voids")
	}
	if len(nonPlanar) != 0 {
		t.Fatalf("expected no non-planar voids, got %d", len(nonPlanar))
	}
}

func TestProcessThroughVoidReducesProfileAndAddsBoreWalls(t *testing.T) {
	base := profile.Rectangle(10, 10)
	withoutVoid := solid.Extrude(base, solid.Vec3{X: 0, Y: 0, Z: 1}, 10)

	throughVoid := boxMesh(2, 2, 0, 4, 4, 10)
	host, nonPlanar := Process(base, []*mesh.Mesh{throughVoid}, placement.Identity(), [3]float64{0, 0, 1}, solid.Vec3{X: 0, Y: 0, Z: 1}, 10)

	if len(nonPlanar) != 0 {
		t.Fatalf("expected the axis-aligned box void to classify as coplanar, got %d non-planar", len(nonPlanar))
	}
	if !host.Valid() {
		t.Fatal("host mesh fails buffer invariants")
	}
	if host.TriangleCount() <= withoutVoid.TriangleCount() {
		t.Fatal("expected the opening's extra wall/cap geometry to increase the triangle count")
	}
}

func TestProcessObliqueVoidFallsBackToNonPlanar(t *testing.T) {
	base := profile.Rectangle(10, 10)

	// A single quad (two triangles) whose plane is at 45 degrees to both the
	// profile plane and the extrusion axis: no dominant face is parallel to
	// either.
	oblique := mesh.New(4, 2)
	v0 := oblique.AddVertex(1, 1, 1, 0.577, 0.577, 0.577)
	v1 := oblique.AddVertex(3, 1, 1, 0.577, 0.577, 0.577)
	v2 := oblique.AddVertex(1, 3, 3, 0.577, 0.577, 0.577)
	v3 := oblique.AddVertex(3, 3, 3, 0.577, 0.577, 0.577)
	oblique.AddTriangle(v0, v1, v2)
	oblique.AddTriangle(v1, v3, v2)

	_, nonPlanar := Process(base, []*mesh.Mesh{oblique}, placement.Identity(), [3]float64{0, 0, 1}, solid.Vec3{X: 0, Y: 0, Z: 1}, 10)

	if len(nonPlanar) != 1 {
		t.Fatalf("expected the oblique void to fall back to non-planar CSG, got %d", len(nonPlanar))
	}
}
