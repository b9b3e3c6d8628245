package mesh

import "testing"

func TestMeshValidEmpty(t *testing.T) {
	var m Mesh
	if !m.Valid() {
		t.Fatal("empty mesh should be valid")
	}
	if !m.Empty() {
		t.Fatal("zero-value mesh should report Empty")
	}
}

func TestAddVertexAndTriangle(t *testing.T) {
	m := New(3, 1)
	a := m.AddVertex(0, 0, 0, 0, 0, 1)
	b := m.AddVertex(1, 0, 0, 0, 0, 1)
	c := m.AddVertex(0, 1, 0, 0, 0, 1)
	m.AddTriangle(a, b, c)

	if m.VertexCount() != 3 {
		t.Fatalf("expected 3 vertices, got %d", m.VertexCount())
	}
	if m.TriangleCount() != 1 {
		t.Fatalf("expected 1 triangle, got %d", m.TriangleCount())
	}
	if !m.Valid() {
		t.Fatal("mesh should be valid")
	}
}

func TestMeshValidRejectsOutOfRangeIndex(t *testing.T) {
	m := New(1, 1)
	m.AddVertex(0, 0, 0, 0, 0, 1)
	m.Indices = append(m.Indices, 0, 1, 2)
	if m.Valid() {
		t.Fatal("mesh with out-of-range index should be invalid")
	}
}

func TestMerge(t *testing.T) {
	m1 := New(3, 1)
	a := m1.AddVertex(0, 0, 0, 0, 0, 1)
	b := m1.AddVertex(1, 0, 0, 0, 0, 1)
	c := m1.AddVertex(0, 1, 0, 0, 0, 1)
	m1.AddTriangle(a, b, c)

	m2 := New(3, 1)
	a2 := m2.AddVertex(5, 5, 5, 0, 0, 1)
	b2 := m2.AddVertex(6, 5, 5, 0, 0, 1)
	c2 := m2.AddVertex(5, 6, 5, 0, 0, 1)
	m2.AddTriangle(a2, b2, c2)

	m1.Merge(m2)
	if m1.VertexCount() != 6 {
		t.Fatalf("expected 6 vertices after merge, got %d", m1.VertexCount())
	}
	if m1.Indices[3] != 3 || m1.Indices[4] != 4 || m1.Indices[5] != 5 {
		t.Fatalf("merged indices not offset correctly: %v", m1.Indices[3:6])
	}
	if !m1.Valid() {
		t.Fatal("merged mesh should be valid")
	}
}

func TestBounds(t *testing.T) {
	m := New(2, 0)
	m.AddVertex(-1, 2, 3, 0, 0, 1)
	m.AddVertex(4, -5, 6, 0, 0, 1)
	min, max, ok := m.Bounds()
	if !ok {
		t.Fatal("expected ok bounds")
	}
	if min != [3]float32{-1, -5, 3} {
		t.Fatalf("unexpected min: %v", min)
	}
	if max != [3]float32{4, 2, 6} {
		t.Fatalf("unexpected max: %v", max)
	}
}

func TestComputeNormalsIdempotent(t *testing.T) {
	m := New(3, 1)
	a := m.AddVertex(0, 0, 0, 0, 0, 0)
	b := m.AddVertex(1, 0, 0, 0, 0, 0)
	c := m.AddVertex(0, 1, 0, 0, 0, 0)
	m.AddTriangle(a, b, c)

	m.ComputeNormals()
	first := append([]float32(nil), m.Normals...)
	m.ComputeNormals()
	for i := range first {
		if first[i] != m.Normals[i] {
			t.Fatalf("normal recomputation not idempotent at %d: %v vs %v", i, first, m.Normals)
		}
	}
	if m.Normals[2] <= 0 {
		t.Fatalf("expected +Z normal for CCW XY triangle, got %v", m.Normals[0:3])
	}
}

func TestApplyRTC(t *testing.T) {
	m := New(1, 0)
	m.AddVertex(2679010.5, 1247000.25, 430, 0, 0, 1)
	m.ApplyRTC(2679000, 1247000, 430)
	if m.Positions[0] < 10 || m.Positions[0] > 11 {
		t.Fatalf("expected small offset position, got %v", m.Positions[0])
	}
}

func TestFlipZUpToYUp(t *testing.T) {
	m := New(1, 0)
	m.AddVertex(1, 2, 3, 0, 1, 0)
	m.FlipZUpToYUp()
	if m.Positions[0] != 1 || m.Positions[1] != 3 || m.Positions[2] != -2 {
		t.Fatalf("unexpected flipped position: %v", m.Positions)
	}
}
