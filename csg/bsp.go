package csg

import (
	"errors"
	"strconv"

	"github.com/ifcgeom/corepipe/mesh"
)

// MaxBooleanDepth bounds BSP tree construction: a tree deeper than this is
// aborted rather than risk runaway recursion on pathological or degenerate
// input meshes.
const MaxBooleanDepth = 20

var errDepthExceeded = errors.New("csg: BSP nesting depth exceeds MAX_BOOLEAN_DEPTH")

// node is one level of a BSP tree over a triangle soup.
type node struct {
	plane       plane
	front, back *node
	tris        []triangle
}

func buildBSP(tris []triangle, depth int) (*node, error) {
	if len(tris) == 0 {
		return nil, nil
	}
	if depth > MaxBooleanDepth {
		return nil, errDepthExceeded
	}

	pl, ok := planeFromTriangle(tris[0][0].pos, tris[0][1].pos, tris[0][2].pos)
	if !ok {
		// Degenerate splitting triangle; drop it and continue with the rest.
		return buildBSP(tris[1:], depth)
	}

	n := &node{plane: pl, tris: []triangle{tris[0]}}
	var frontTris, backTris []triangle
	for _, t := range tris[1:] {
		f, b := splitTriangle(t, pl)
		frontTris = append(frontTris, f...)
		backTris = append(backTris, b...)
	}

	var err error
	if len(frontTris) > 0 {
		n.front, err = buildBSP(frontTris, depth+1)
		if err != nil {
			return nil, err
		}
	}
	if len(backTris) > 0 {
		n.back, err = buildBSP(backTris, depth+1)
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

// invert flips every plane and all polygon winding in the tree, turning
// "inside" into "outside" — the standard BSP-CSG trick for expressing
// subtraction in terms of union/intersection/clipTo.
func invert(n *node) {
	if n == nil {
		return
	}
	for i := range n.tris {
		n.tris[i] = triangle{n.tris[i][0], n.tris[i][2], n.tris[i][1]}
	}
	n.plane = n.plane.flipped()
	invert(n.front)
	invert(n.back)
	n.front, n.back = n.back, n.front
}

// clipTriangles removes the portions of tris that lie inside n (the solid
// the tree represents), splitting triangles that straddle a node's plane.
func clipTriangles(n *node, tris []triangle) []triangle {
	if n == nil {
		return tris
	}
	var front, back []triangle
	for _, t := range tris {
		f, b := splitTriangle(t, n.plane)
		front = append(front, f...)
		back = append(back, b...)
	}
	if n.front != nil {
		front = clipTriangles(n.front, front)
	}
	if n.back != nil {
		back = clipTriangles(n.back, back)
	} else {
		back = nil
	}
	return append(front, back...)
}

// clipTo discards the parts of n's own triangles that lie inside other.
func clipTo(n, other *node) {
	if n == nil {
		return
	}
	n.tris = clipTriangles(other, n.tris)
	clipTo(n.front, other)
	clipTo(n.back, other)
}

func allTriangles(n *node) []triangle {
	if n == nil {
		return nil
	}
	out := append([]triangle(nil), n.tris...)
	out = append(out, allTriangles(n.front)...)
	out = append(out, allTriangles(n.back)...)
	return out
}

// subtractTriangles computes a - b (the classic invert/clip/invert BSP-CSG
// subtraction sequence), bounded by MaxBooleanDepth on both trees.
func subtractTriangles(a, b []triangle) ([]triangle, error) {
	treeA, err := buildBSP(a, 0)
	if err != nil {
		return nil, err
	}
	treeB, err := buildBSP(b, 0)
	if err != nil {
		return nil, err
	}

	invert(treeA)
	clipTo(treeA, treeB)
	clipTo(treeB, treeA)
	invert(treeB)
	clipTo(treeB, treeA)
	invert(treeB)

	// Graft b's surviving fragments into a, then invert back to the
	// original orientation.
	merged := append(allTriangles(treeA), allTriangles(treeB)...)
	mergedTree, err := buildBSP(merged, 0)
	if err != nil {
		return nil, err
	}
	invert(mergedTree)
	return allTriangles(mergedTree), nil
}

// SubtractMesh subtracts void from host using bounded BSP CSG. It returns an
// error (rather than panicking or recursing unbounded) when either mesh's
// BSP tree would exceed MaxBooleanDepth. An empty host or an empty void
// returns host unchanged with no error.
func (c *ClippingProcessor) SubtractMesh(host, void *mesh.Mesh) (*mesh.Mesh, error) {
	if host.Empty() {
		return host, nil
	}
	if void.Empty() {
		return host, nil
	}

	result, err := subtractTriangles(toTriangles(host), toTriangles(void))
	if err != nil {
		return nil, err
	}
	return fromTriangles(result), nil
}

// SubtractWithFallback subtracts each void mesh from host in turn. A void
// whose CSG fails (depth exceeded, degenerate input) is skipped — the
// un-subtracted host is kept for that void — and a diagnostic is recorded,
// per the hybrid void pipeline's over-approximation-on-failure rule.
func (c *ClippingProcessor) SubtractWithFallback(host *mesh.Mesh, voids []*mesh.Mesh) (*mesh.Mesh, []string) {
	result := host
	var diags []string
	for i, v := range voids {
		subtracted, err := c.SubtractMesh(result, v)
		if err != nil {
			diags = append(diags, "3D boolean subtraction failed for void "+strconv.Itoa(i)+", falling back to un-subtracted mesh: "+err.Error())
			continue
		}
		result = subtracted
	}
	return result, diags
}
