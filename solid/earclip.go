// Package solid builds triangle meshes from IFC swept, revolved, swept-disk,
// tessellated and boundary-rep representation items (extrusion, revolve,
// sweep, face-set ingestion, faceted b-rep assembly).
package solid

import "github.com/ifcgeom/corepipe/profile"

// Triangulate2D ear-clips a profile (outer loop plus any number of hole
// loops, already wound per profile.NormalizeWinding) into a flat triangle
// list. Holes are bridged into the outer loop one at a time, rightmost hole
// first, via a zero-width channel to the nearest visible outer vertex, then
// the resulting simple ring is ear-clipped directly.
//
// Returns combined, the plain concatenation of outer followed by each hole
// in argument order (outer occupies indices [0, len(outer)), hole i
// occupies the following len(holes[i]) indices) — and triangles, each a
// triple of indices into combined. Bridge vertices used internally to stitch
// holes into the ring never appear in the output: every triangle references
// one of the original, non-duplicated points.
func Triangulate2D(outer []profile.Point2D, holes [][]profile.Point2D) (combined []profile.Point2D, triangles [][3]int) {
	combined = append([]profile.Point2D(nil), outer...)
	for _, h := range holes {
		combined = append(combined, h...)
	}

	ring := make([]int, len(outer))
	for i := range ring {
		ring[i] = i
	}

	holeStart := make([]int, len(holes))
	offset := len(outer)
	for hi, h := range holes {
		holeStart[hi] = offset
		offset += len(h)
	}
	for _, hi := range sortHolesByRightmost(holes) {
		holeIdx := make([]int, len(holes[hi]))
		for i := range holeIdx {
			holeIdx[i] = holeStart[hi] + i
		}
		ring = mergeHoleIntoRing(ring, holeIdx, combined)
	}

	return combined, earClipSimple(ring, combined)
}

// sortHolesByRightmost returns the positions of holes ordered by descending
// X of each hole's rightmost vertex, the standard order for bridge merging
// (processing the rightmost hole first keeps later bridges from crossing
// earlier ones).
func sortHolesByRightmost(holes [][]profile.Point2D) []int {
	out := make([]int, len(holes))
	for i := range out {
		out[i] = i
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && rightmostX(holes[out[j]]) > rightmostX(holes[out[j-1]]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func rightmostX(loop []profile.Point2D) float64 {
	max := loop[0].X
	for _, p := range loop[1:] {
		if p.X > max {
			max = p.X
		}
	}
	return max
}

func rightmostIndex(loopIdx []int, combined []profile.Point2D) int {
	best := 0
	for i, idx := range loopIdx {
		if combined[idx].X > combined[loopIdx[best]].X {
			best = i
		}
	}
	return best
}

// mergeHoleIntoRing splices holeIdx into ring via a bridge edge from the
// hole's rightmost vertex to the nearest ring vertex whose bridge segment
// does not cross any ring or hole edge. ring and holeIdx are sequences of
// indices into combined.
func mergeHoleIntoRing(ring, holeIdx []int, combined []profile.Point2D) []int {
	if len(holeIdx) == 0 {
		return ring
	}
	m := rightmostIndex(holeIdx, combined)
	bridgeTo := nearestVisibleVertex(ring, holeIdx, m, combined)

	loop := rotateClose(holeIdx, m)
	out := make([]int, 0, len(ring)+len(loop)+1)
	out = append(out, ring[:bridgeTo+1]...)
	out = append(out, loop...)
	out = append(out, ring[bridgeTo])
	out = append(out, ring[bridgeTo+1:]...)
	return out
}

// rotateClose returns holeIdx starting and ending at index start
// (len(holeIdx)+1 entries), tracing the hole's full boundary as a closed
// walk beginning and ending at the bridge vertex.
func rotateClose(holeIdx []int, start int) []int {
	n := len(holeIdx)
	out := make([]int, 0, n+1)
	for k := 0; k <= n; k++ {
		out = append(out, holeIdx[(start+k)%n])
	}
	return out
}

// nearestVisibleVertex finds the position within ring whose vertex is
// closest to holeIdx[m]'s point and whose connecting segment crosses
// neither ring nor hole. Falls back to the closest vertex overall if every
// candidate is blocked (can happen on degenerate input; the resulting mesh
// may have a crossing seam but still triangulates without panicking).
func nearestVisibleVertex(ring, holeIdx []int, m int, combined []profile.Point2D) int {
	target := combined[holeIdx[m]]
	best := -1
	bestDist := 0.0
	fallback := 0
	fallbackDist := 0.0
	for i, idx := range ring {
		p := combined[idx]
		d := distSq(p, target)
		if i == 0 || d < fallbackDist {
			fallback, fallbackDist = i, d
		}
		if segmentCrossesLoop(p, target, ring, i, combined) || segmentCrossesLoop(p, target, holeIdx, m, combined) {
			continue
		}
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return fallback
	}
	return best
}

func segmentCrossesLoop(a, b profile.Point2D, loopIdx []int, skipVertex int, combined []profile.Point2D) bool {
	n := len(loopIdx)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if i == skipVertex || j == skipVertex {
			continue
		}
		if segmentsIntersect(a, b, combined[loopIdx[i]], combined[loopIdx[j]]) {
			return true
		}
	}
	return false
}

func distSq(a, b profile.Point2D) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func crossTri(o, a, b profile.Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func segmentsIntersect(p1, p2, p3, p4 profile.Point2D) bool {
	d1 := crossTri(p3, p4, p1)
	d2 := crossTri(p3, p4, p2)
	d3 := crossTri(p1, p2, p3)
	d4 := crossTri(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

// earClipSimple triangulates a simple (non-self-intersecting, CCW-wound)
// polygon given as a sequence of indices into combined, via ear clipping.
// Emitted triangles reference combined directly. On a degenerate remainder
// where no ear can be found, it falls back to fan triangulation so the
// result is always a complete triangle set rather than a partial one.
func earClipSimple(ring []int, combined []profile.Point2D) [][3]int {
	n := len(ring)
	if n < 3 {
		return nil
	}
	idx := append([]int(nil), ring...)
	var tris [][3]int
	for len(idx) > 3 {
		if !clipOneEar(idx, combined, &tris, &idx) {
			break
		}
	}
	for k := 1; k < len(idx)-1; k++ {
		tris = append(tris, [3]int{idx[0], idx[k], idx[k+1]})
	}
	return tris
}

func clipOneEar(cur []int, combined []profile.Point2D, tris *[][3]int, idx *[]int) bool {
	for k := 0; k < len(cur); k++ {
		iPrev := cur[(k-1+len(cur))%len(cur)]
		iCur := cur[k]
		iNext := cur[(k+1)%len(cur)]
		a, b, c := combined[iPrev], combined[iCur], combined[iNext]
		if crossTri(a, b, c) <= 0 {
			continue // reflex or degenerate vertex under CCW winding
		}
		earOK := true
		for _, j := range cur {
			if j == iPrev || j == iCur || j == iNext {
				continue
			}
			if pointInTriangle(combined[j], a, b, c) {
				earOK = false
				break
			}
		}
		if earOK {
			*tris = append(*tris, [3]int{iPrev, iCur, iNext})
			*idx = append(append([]int(nil), cur[:k]...), cur[k+1:]...)
			return true
		}
	}
	return false
}

func pointInTriangle(p, a, b, c profile.Point2D) bool {
	d1 := crossTri(a, b, p)
	d2 := crossTri(b, c, p)
	d3 := crossTri(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
