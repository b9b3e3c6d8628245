package voidpipe

import (
	"testing"

	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/profile"
)

// boxMesh builds an axis-aligned box mesh between min and max, matching the
// void-analyzer grounding fixture.
func boxMesh(minX, minY, minZ, maxX, maxY, maxZ float64) *mesh.Mesh {
	m := mesh.New(8, 12)
	v := [8]uint32{}
	corners := [8][3]float64{
		{minX, minY, minZ}, {maxX, minY, minZ}, {maxX, maxY, minZ}, {minX, maxY, minZ},
		{minX, minY, maxZ}, {maxX, minY, maxZ}, {maxX, maxY, maxZ}, {minX, maxY, maxZ},
	}
	for i, c := range corners {
		v[i] = m.AddVertex(float32(c[0]), float32(c[1]), float32(c[2]), 0, 0, 1)
	}
	quads := [6][4]uint32{
		{v[0], v[1], v[2], v[3]},
		{v[4], v[6], v[5], v[7]},
		{v[0], v[3], v[7], v[4]},
		{v[1], v[5], v[6], v[2]},
		{v[0], v[4], v[5], v[1]},
		{v[3], v[2], v[6], v[7]},
	}
	for _, q := range quads {
		m.AddTriangle(q[0], q[1], q[2])
		m.AddTriangle(q[0], q[2], q[3])
	}
	return m
}

func TestClassifyThroughVoidIsCoplanarAndThrough(t *testing.T) {
	voidMesh := boxMesh(2, 2, 0, 4, 4, 10)
	c := NewClassifier()

	result := c.Classify(voidMesh, placement.Identity(), [3]float64{0, 0, 1}, 10)

	if result.Kind != Coplanar {
		t.Fatalf("expected Coplanar, got %v", result.Kind)
	}
	if !result.IsThrough {
		t.Fatal("expected a full-depth box void to be classified as through")
	}
}

func TestClassifyPartialDepthVoid(t *testing.T) {
	voidMesh := boxMesh(2, 2, 2, 4, 4, 8)
	c := NewClassifier()

	result := c.Classify(voidMesh, placement.Identity(), [3]float64{0, 0, 1}, 10)

	if result.Kind != Coplanar {
		t.Fatalf("expected Coplanar, got %v", result.Kind)
	}
	if result.IsThrough {
		t.Fatal("expected a half-depth box void to not be through")
	}
	if result.DepthStart < 1.9 || result.DepthStart > 2.1 {
		t.Fatalf("expected depth start ~2.0, got %v", result.DepthStart)
	}
	if result.DepthEnd < 7.9 || result.DepthEnd > 8.1 {
		t.Fatalf("expected depth end ~8.0, got %v", result.DepthEnd)
	}
}

func TestClassifyEmptyMeshIsNonIntersecting(t *testing.T) {
	c := NewClassifier()
	result := c.Classify(&mesh.Mesh{}, placement.Identity(), [3]float64{0, 0, 1}, 10)
	if result.Kind != NonIntersecting {
		t.Fatalf("expected NonIntersecting for an empty mesh, got %v", result.Kind)
	}
}

func TestSplitCoplanarPartitionsThroughAndPartial(t *testing.T) {
	classifications := []Classification{
		{Kind: Coplanar, IsThrough: true, Footprint: square()},
		{Kind: Coplanar, IsThrough: false, Footprint: square(), DepthStart: 1, DepthEnd: 2},
		{Kind: NonPlanar, Mesh: &mesh.Mesh{}},
		{Kind: NonIntersecting},
	}

	through, partials := SplitCoplanar(classifications)
	if len(through) != 1 {
		t.Fatalf("expected 1 through contour, got %d", len(through))
	}
	if len(partials) != 1 {
		t.Fatalf("expected 1 partial void, got %d", len(partials))
	}

	nonPlanar := NonPlanarMeshes(classifications)
	if len(nonPlanar) != 1 {
		t.Fatalf("expected 1 non-planar mesh, got %d", len(nonPlanar))
	}
}

func square() []profile.Point2D {
	return []profile.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
}
