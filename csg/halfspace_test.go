package csg

import (
	"testing"

	"github.com/ifcgeom/corepipe/mesh"
)

func unitCube() *mesh.Mesh {
	m := mesh.New(8, 12)
	corners := [8][3]float32{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	v := make([]uint32, 8)
	for i, c := range corners {
		v[i] = m.AddVertex(c[0], c[1], c[2], 0, 0, 1)
	}
	quads := [6][4]uint32{
		{v[0], v[3], v[2], v[1]},
		{v[4], v[5], v[6], v[7]},
		{v[0], v[4], v[7], v[3]},
		{v[1], v[2], v[6], v[5]},
		{v[0], v[1], v[5], v[4]},
		{v[3], v[7], v[6], v[2]},
	}
	for _, q := range quads {
		m.AddTriangle(q[0], q[1], q[2])
		m.AddTriangle(q[0], q[2], q[3])
	}
	return m
}

func TestClipMeshKeepsOnlyNegativeSide(t *testing.T) {
	c := NewClippingProcessor()
	cube := unitCube()

	// Plane through the cube's midpoint along X, normal +X: the side being
	// removed is X > 0.5.
	clipped := c.ClipMesh(cube, NewPlane([3]float64{0.5, 0.5, 0.5}, [3]float64{1, 0, 0}))

	if !clipped.Valid() {
		t.Fatal("clipped mesh fails buffer invariants")
	}
	_, max, ok := clipped.Bounds()
	if !ok {
		t.Fatal("expected a non-empty clipped mesh")
	}
	if max[0] > 0.5001 {
		t.Fatalf("expected clipped mesh to stay at X <= 0.5, got max.X=%v", max[0])
	}
}

func TestBoxSubtractNoOverlapIsNoOp(t *testing.T) {
	c := NewClippingProcessor()
	cube := unitCube()

	// A box entirely outside the cube's bounds leaves every triangle
	// classified "outside" at the very first plane, so nothing is clipped.
	result := c.BoxSubtract(cube, [3]float64{100, 100, 100}, [3]float64{101, 101, 101})

	if !result.Valid() {
		t.Fatal("box-subtracted mesh fails buffer invariants")
	}
	if result.TriangleCount() != cube.TriangleCount() {
		t.Fatalf("expected a non-overlapping box to leave triangle count unchanged, got %d vs %d", result.TriangleCount(), cube.TriangleCount())
	}
}

func TestBoxSubtractFullyContainingBoxErasesMesh(t *testing.T) {
	c := NewClippingProcessor()
	cube := unitCube()

	// A box that fully contains the cube (with margin on every side) means
	// every triangle is "inside" every one of the six planes, so none ever
	// reaches the kept list.
	result := c.BoxSubtract(cube, [3]float64{-1, -1, -1}, [3]float64{2, 2, 2})

	if result.TriangleCount() != 0 {
		t.Fatalf("expected a fully-containing box to erase the mesh, got %d triangles", result.TriangleCount())
	}
}
