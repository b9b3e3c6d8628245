package voidpipe

import (
	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/profile"
	"github.com/ifcgeom/corepipe/solid"
)

// Process runs the full 2D-first void pipeline for an extrusion host: it
// classifies every opening mesh, subtracts through-voids from base at the
// profile level, carries partial-depth voids into the extrusion itself, and
// returns the remaining non-planar void meshes for the caller to subtract
// via 3D CSG. Depth is the host's unscaled extrusion depth; direction is the
// local extrusion direction used by solid.Extrude/WithVoids, and
// worldDirection is the same direction transformed to world space, used only
// for classification.
func Process(base profile.Profile, voidMeshes []*mesh.Mesh, profileTransform placement.Matrix, worldDirection [3]float64, direction solid.Vec3, depth float64) (host *mesh.Mesh, nonPlanar []*mesh.Mesh) {
	if len(voidMeshes) == 0 {
		return solid.Extrude(base, direction, depth), nil
	}

	classifier := NewClassifier()
	classifications := classifier.ClassifyBatch(voidMeshes, profileTransform, worldDirection, depth)

	throughContours, partials := SplitCoplanar(classifications)

	reduced := base
	if len(throughContours) > 0 {
		reduced = SubtractMultiple2D(base, throughContours)
	}

	host = solid.WithVoids(profile.WithVoids{Profile: reduced, Partial: partials}, direction, depth)
	nonPlanar = NonPlanarMeshes(classifications)
	return host, nonPlanar
}
