package voidpipe

import (
	"testing"

	"github.com/ifcgeom/corepipe/profile"
)

func TestSubtractMultiple2DAddsContainedHole(t *testing.T) {
	base := profile.Profile{Outer: []profile.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}}
	windowHole := []profile.Point2D{
		{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4},
	}

	result := SubtractMultiple2D(base, [][]profile.Point2D{windowHole})

	if len(result.Holes) != 1 {
		t.Fatalf("expected 1 hole, got %d", len(result.Holes))
	}
	if profile.IsCCW(result.Holes[0]) {
		t.Fatal("expected the added hole to wind clockwise")
	}
}

func TestSubtractMultiple2DClipsPartiallyOutsideHole(t *testing.T) {
	base := profile.Profile{Outer: []profile.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}}
	// Extends past the right edge of the outer boundary.
	overhangingHole := []profile.Point2D{
		{X: 8, Y: 2}, {X: 14, Y: 2}, {X: 14, Y: 4}, {X: 8, Y: 4},
	}

	result := SubtractMultiple2D(base, [][]profile.Point2D{overhangingHole})

	if len(result.Holes) != 1 {
		t.Fatalf("expected the overhanging hole to be clipped and kept, got %d holes", len(result.Holes))
	}
	_, _, maxX, _ := bounds(result.Holes[0])
	if maxX > 10.0001 {
		t.Fatalf("expected the clipped hole to stay within the outer boundary, got maxX=%v", maxX)
	}
}

func TestSubtractMultiple2DDropsFullyOutsideHole(t *testing.T) {
	base := profile.Profile{Outer: []profile.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}}
	farAway := []profile.Point2D{
		{X: 100, Y: 100}, {X: 102, Y: 100}, {X: 102, Y: 102}, {X: 100, Y: 102},
	}

	result := SubtractMultiple2D(base, [][]profile.Point2D{farAway})

	if len(result.Holes) != 0 {
		t.Fatalf("expected a fully-outside contour to be dropped, got %d holes", len(result.Holes))
	}
}

func TestIsConvexDetectsConcaveLoop(t *testing.T) {
	lShape := []profile.Point2D{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	if isConvex(lShape) {
		t.Fatal("expected an L-shaped loop to be detected as concave")
	}
	square := []profile.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	if !isConvex(square) {
		t.Fatal("expected a square loop to be detected as convex")
	}
}
