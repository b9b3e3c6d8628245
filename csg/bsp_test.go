package csg

import (
	"testing"

	"github.com/ifcgeom/corepipe/mesh"
)

func translatedCube(dx, dy, dz float32) *mesh.Mesh {
	m := unitCube()
	for i := 0; i+2 < len(m.Positions); i += 3 {
		m.Positions[i] += dx
		m.Positions[i+1] += dy
		m.Positions[i+2] += dz
	}
	return m
}

func TestSubtractMeshDisjointVoidLeavesHostUnchanged(t *testing.T) {
	c := NewClippingProcessor()
	host := unitCube()
	void := translatedCube(100, 100, 100)

	result, err := c.SubtractMesh(host, void)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid() {
		t.Fatal("subtracted mesh fails buffer invariants")
	}
	if result.TriangleCount() != host.TriangleCount() {
		t.Fatalf("expected a disjoint void to leave the host's triangle count unchanged, got %d vs %d", result.TriangleCount(), host.TriangleCount())
	}
}

func TestSubtractMeshEmptyOperandsReturnHostUnchanged(t *testing.T) {
	c := NewClippingProcessor()
	host := unitCube()
	empty := mesh.New(0, 0)

	result, err := c.SubtractMesh(host, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TriangleCount() != host.TriangleCount() {
		t.Fatalf("expected an empty void to be a no-op, got %d triangles", result.TriangleCount())
	}

	result, err = c.SubtractMesh(empty, host)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TriangleCount() != 0 {
		t.Fatalf("expected an empty host to stay empty, got %d triangles", result.TriangleCount())
	}
}

func TestSubtractWithFallbackAppliesEachVoidInTurn(t *testing.T) {
	c := NewClippingProcessor()
	host := unitCube()
	voids := []*mesh.Mesh{
		translatedCube(100, 100, 100),
		translatedCube(-200, -200, -200),
	}

	result, diags := c.SubtractWithFallback(host, voids)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for well-formed disjoint voids, got %v", diags)
	}
	if result.TriangleCount() != host.TriangleCount() {
		t.Fatalf("expected disjoint voids to leave triangle count unchanged, got %d vs %d", result.TriangleCount(), host.TriangleCount())
	}
}
