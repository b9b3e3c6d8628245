package profile

import (
	"math"
	"testing"
)

func TestRectangleCorners(t *testing.T) {
	p := Rectangle(10, 0.3)
	if len(p.Outer) != 4 {
		t.Fatalf("expected 4 corners, got %d", len(p.Outer))
	}
	if !IsCCW(p.Outer) {
		t.Fatal("expected CCW winding")
	}
	min, max := bounds(p.Outer)
	if min.X != -5 || max.X != 5 || min.Y != -0.15 || max.Y != 0.15 {
		t.Fatalf("unexpected bounds: min=%v max=%v", min, max)
	}
}

func TestCircleSegmentCount(t *testing.T) {
	cfg := DefaultCircleConfig()
	p := Circle(1.0, cfg)
	// circumference ~6.28, target chord 0.08 -> ~79 segments, clamped [24,120].
	if len(p.Outer) < cfg.Min || len(p.Outer) > cfg.Max {
		t.Fatalf("segment count %d out of clamp range", len(p.Outer))
	}

	tiny := Circle(0.01, cfg)
	if len(tiny.Outer) != cfg.Min {
		t.Fatalf("expected min segment clamp for tiny circle, got %d", len(tiny.Outer))
	}

	huge := Circle(1000, cfg)
	if len(huge.Outer) != cfg.Max {
		t.Fatalf("expected max segment clamp for huge circle, got %d", len(huge.Outer))
	}
}

func TestCircleHollowHasHole(t *testing.T) {
	p := CircleHollow(1.0, 0.5, DefaultCircleConfig())
	if len(p.Holes) != 1 {
		t.Fatalf("expected 1 hole, got %d", len(p.Holes))
	}
	if IsCCW(p.Holes[0]) {
		t.Fatal("hole should be CW wound")
	}
}

func TestConvexHullSquare(t *testing.T) {
	pts := []Point2D{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}}
	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("expected 4-point hull, got %d: %v", len(hull), hull)
	}
}

func TestNormalizeWindingReversesCW(t *testing.T) {
	cw := []Point2D{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	outer, _ := NormalizeWinding(cw, nil)
	if !IsCCW(outer) {
		t.Fatal("expected outer to be normalized to CCW")
	}
}

func bounds(pts []Point2D) (min, max Point2D) {
	min = pts[0]
	max = pts[0]
	for _, p := range pts[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return
}
