// Package voidpipe classifies opening ("void") geometry relative to a host
// extrusion and performs the 2D profile-level subtraction that lets most
// openings skip full 3D boolean subtraction entirely. A void whose dominant
// faces line up with the host's profile plane or extrusion direction is
// coplanar and reduces to a 2D footprint; anything else is non-planar and
// falls back to 3D CSG.
package voidpipe

import (
	"math"

	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/profile"
)

// Kind distinguishes the three possible classifications of a void relative
// to a host extrusion.
type Kind int

const (
	// NonIntersecting means the void doesn't touch the host geometry.
	NonIntersecting Kind = iota
	// Coplanar means the void can be subtracted at the 2D profile level.
	Coplanar
	// NonPlanar means the void needs full 3D CSG.
	NonPlanar
)

// defaultPlanarityEpsilon is the starting tolerance for the adaptive
// coplanarity check; it is refined down through adaptiveEpsilons until a
// dominant face is found or all of them are exhausted.
const defaultPlanarityEpsilon = 0.02

// throughVoidTolerance is how close a void's depth range must come to
// [0, extrusion depth] to be considered a through-void rather than a
// partial-depth bore.
const throughVoidTolerance = 0.01

var adaptiveEpsilons = []float64{0.02, 0.01, 0.005, 0.001}

// Classification is the result of classifying one opening mesh against a
// host extrusion's profile plane and direction.
type Classification struct {
	Kind Kind

	// Populated when Kind == Coplanar.
	Footprint  []profile.Point2D
	DepthStart float64
	DepthEnd   float64
	IsThrough  bool

	// Populated when Kind == NonPlanar.
	Mesh *mesh.Mesh
}

// Classifier classifies void meshes against a host profile plane and
// extrusion direction.
type Classifier struct {
	// Epsilon overrides the adaptive epsilon schedule with a single fixed
	// value when non-zero.
	Epsilon float64
}

// NewClassifier returns a Classifier using the adaptive epsilon schedule.
func NewClassifier() *Classifier { return &Classifier{} }

// Classify determines how voidMesh relates to a host extrusion whose
// profile-space-to-world transform is profileTransform, extruded along
// extrusionDirection (normalized, world space) to extrusionDepth.
func (c *Classifier) Classify(voidMesh *mesh.Mesh, profileTransform placement.Matrix, extrusionDirection [3]float64, extrusionDepth float64) Classification {
	if voidMesh.Empty() {
		return Classification{Kind: NonIntersecting}
	}

	pnx, pny, pnz := profileTransform.TransformDirection(0, 0, 1)
	profileNormal := [3]float64{pnx, pny, pnz}

	if !c.checkCoplanarity(voidMesh, profileNormal, extrusionDirection) {
		return Classification{Kind: NonPlanar, Mesh: voidMesh}
	}

	inverse, ok := profileTransform.Invert()
	if !ok {
		return Classification{Kind: NonPlanar, Mesh: voidMesh}
	}

	footprint, depthStart, depthEnd, ok := extractFootprint(voidMesh, inverse)
	if !ok || !isValidContour(footprint) {
		return Classification{Kind: NonPlanar, Mesh: voidMesh}
	}

	isThrough := depthStart <= throughVoidTolerance && depthEnd >= extrusionDepth-throughVoidTolerance

	return Classification{
		Kind:       Coplanar,
		Footprint:  footprint,
		DepthStart: depthStart,
		DepthEnd:   depthEnd,
		IsThrough:  isThrough,
	}
}

// ClassifyBatch classifies every void mesh against the same host parameters.
func (c *Classifier) ClassifyBatch(voidMeshes []*mesh.Mesh, profileTransform placement.Matrix, extrusionDirection [3]float64, extrusionDepth float64) []Classification {
	out := make([]Classification, len(voidMeshes))
	for i, vm := range voidMeshes {
		out[i] = c.Classify(vm, profileTransform, extrusionDirection, extrusionDepth)
	}
	return out
}

func (c *Classifier) checkCoplanarity(voidMesh *mesh.Mesh, profileNormal, extrusionDirection [3]float64) bool {
	normals := dominantFaceNormals(voidMesh)
	if len(normals) == 0 {
		return false
	}

	epsilons := adaptiveEpsilons
	if c.Epsilon != 0 {
		epsilons = []float64{c.Epsilon}
	}

	for _, eps := range epsilons {
		for _, n := range normals {
			dotProfile := math.Abs(dot3(n, profileNormal))
			dotExtrusion := math.Abs(dot3(n, extrusionDirection))
			if dotProfile > 1.0-eps {
				return true
			}
			if dotExtrusion < eps {
				return true
			}
		}
	}
	return false
}

type normalKey [3]int32

// dominantFaceNormals computes every triangle's face normal, groups
// quantized-equal normals, and returns the normalized average of each group
// — the void mesh's set of distinct dominant face directions.
func dominantFaceNormals(m *mesh.Mesh) [][3]float64 {
	sums := make(map[normalKey][3]float64)
	counts := make(map[normalKey]int)

	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		v0 := vertexAt(m, a)
		v1 := vertexAt(m, b)
		v2 := vertexAt(m, c)

		e1 := sub3(v1, v0)
		e2 := sub3(v2, v0)
		n, ok := normalize3(cross3(e1, e2))
		if !ok {
			continue
		}

		key := quantizeNormal(n)
		s := sums[key]
		sums[key] = [3]float64{s[0] + n[0], s[1] + n[1], s[2] + n[2]}
		counts[key]++
	}

	out := make([][3]float64, 0, len(sums))
	for key, sum := range sums {
		count := float64(counts[key])
		if avg, ok := normalize3([3]float64{sum[0] / count, sum[1] / count, sum[2] / count}); ok {
			out = append(out, avg)
		}
	}
	return out
}

func quantizeNormal(n [3]float64) normalKey {
	return normalKey{
		int32(math.Round(n[0] * 100)),
		int32(math.Round(n[1] * 100)),
		int32(math.Round(n[2] * 100)),
	}
}

func vertexAt(m *mesh.Mesh, idx uint32) [3]float64 {
	i := int(idx) * 3
	return [3]float64{float64(m.Positions[i]), float64(m.Positions[i+1]), float64(m.Positions[i+2])}
}

// extractFootprint transforms every void vertex into profile space via
// inverse, tracks the Z range as the depth band, and takes the convex hull
// of the projected XY points as the 2D footprint.
func extractFootprint(voidMesh *mesh.Mesh, inverse placement.Matrix) (footprint []profile.Point2D, depthStart, depthEnd float64, ok bool) {
	minZ, maxZ := math.MaxFloat64, -math.MaxFloat64
	pts := make([]profile.Point2D, 0, voidMesh.VertexCount())

	for i := 0; i+2 < len(voidMesh.Positions); i += 3 {
		x, y, z := inverse.TransformPoint(
			float64(voidMesh.Positions[i]),
			float64(voidMesh.Positions[i+1]),
			float64(voidMesh.Positions[i+2]),
		)
		if z < minZ {
			minZ = z
		}
		if z > maxZ {
			maxZ = z
		}
		pts = append(pts, profile.Point2D{X: x, Y: y})
	}

	if len(pts) < 3 {
		return nil, 0, 0, false
	}

	hull := profile.ConvexHull(pts)
	if len(hull) < 3 {
		return nil, 0, 0, false
	}

	depthStart = math.Max(minZ, 0)
	depthEnd = maxZ
	return hull, depthStart, depthEnd, true
}

func isValidContour(pts []profile.Point2D) bool {
	return len(pts) >= 3 && math.Abs(profile.SignedArea(pts)) > 1e-9
}

func dot3(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func sub3(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize3(v [3]float64) ([3]float64, bool) {
	length := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length < 1e-10 {
		return [3]float64{}, false
	}
	return [3]float64{v[0] / length, v[1] / length, v[2] / length}, true
}

// SplitCoplanar partitions coplanar classifications into through-void 2D
// contours (ready for subtraction into the host profile) and partial-depth
// void records (carried forward into the extrusion-with-voids path).
func SplitCoplanar(classifications []Classification) (throughContours [][]profile.Point2D, partials []profile.PartialVoid) {
	for _, c := range classifications {
		if c.Kind != Coplanar {
			continue
		}
		if c.IsThrough {
			throughContours = append(throughContours, c.Footprint)
			continue
		}
		partials = append(partials, profile.PartialVoid{
			Contour:    c.Footprint,
			DepthStart: c.DepthStart,
			DepthEnd:   c.DepthEnd,
			IsThrough:  false,
		})
	}
	return throughContours, partials
}

// NonPlanarMeshes extracts the void meshes that require full 3D CSG.
func NonPlanarMeshes(classifications []Classification) []*mesh.Mesh {
	var out []*mesh.Mesh
	for _, c := range classifications {
		if c.Kind == NonPlanar {
			out = append(out, c.Mesh)
		}
	}
	return out
}
