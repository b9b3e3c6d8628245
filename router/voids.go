package router

import (
	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/profile"
	"github.com/ifcgeom/corepipe/solid"
	"github.com/ifcgeom/corepipe/voidpipe"
)

// tryVoidPipeline looks for a single IFCEXTRUDEDAREASOLID item among
// shapeReps and, if found, runs the 2D-first hybrid void pipeline against
// it (C13/C14). ok is false when no such item exists — a boolean result, a
// b-rep, or an explicit mesh host — so the caller falls back to wholesale
// 3D CSG subtraction on the generic merged mesh.
func (r *Router) tryVoidPipeline(shapeReps []decode.DecodedEntity, hostTransform placement.Matrix, openingIDs []int64) (*mesh.Mesh, bool, error) {
	for _, shapeRep := range shapeReps {
		if shapeRep.TypeTag != "IFCSHAPEREPRESENTATION" {
			continue
		}
		for _, item := range r.dec.ResolveRefList(shapeRep.Attr(3)) {
			if item.TypeTag != "IFCEXTRUDEDAREASOLID" {
				continue
			}
			out, err := r.extrudeWithVoids(item, hostTransform, openingIDs)
			return out, true, err
		}
	}
	return nil, false, nil
}

// extrudeWithVoids runs the 2D-first void pipeline against a single
// extrusion item: classify each opening against the extrusion's profile
// plane, subtract coplanar/through contours in 2D before extruding, and
// subtract whatever remains (openings that cut across the extrusion at an
// angle) in 3D after placement.
//
// Every quantity fed into voidpipe.Process is in unscaled world space:
// profileTransform composes hostTransform with the item's own Position, and
// the opening meshes come from openingMeshes, which places but does not
// scale or flip them. That keeps the host and the void meshes in the same
// frame and units at the point of 3D CSG subtraction, deliberately
// departing from the staging in the source this pipeline is modeled on,
// where unit scale and placement are applied to the host before the
// leftover void subtraction but the void meshes are gathered beforehand —
// see the void pipeline design note in the root ledger.
func (r *Router) extrudeWithVoids(item decode.DecodedEntity, hostTransform placement.Matrix, openingIDs []int64) (*mesh.Mesh, error) {
	sweptAreaRef, ok := decode.AsRef(item.Attr(0))
	if !ok {
		return r.extrudedAreaSolid(item)
	}
	base, err := profile.Extract(r.dec, sweptAreaRef, r.circles)
	if err != nil {
		return nil, err
	}

	posMat := placement.Identity()
	if posRef, ok := decode.AsRef(item.Attr(1)); ok {
		posMat = placement.ResolveAxisPlacement3D(r.dec, posRef)
	}
	profileTransform := placement.Multiply(hostTransform, posMat)

	localDir := solid.Vec3{Z: 1}
	if dirRef, ok := decode.AsRef(item.Attr(2)); ok {
		localDir = r.vec3At(dirRef)
	}
	depth, _ := decode.AsFloat(item.Attr(3))

	wx, wy, wz := profileTransform.TransformDirection(localDir.X, localDir.Y, localDir.Z)
	worldDirection := [3]float64{wx, wy, wz}

	voidMeshes := r.openingMeshes(openingIDs)

	host, nonPlanar := voidpipe.Process(base, voidMeshes, profileTransform, worldDirection, localDir, depth)
	host.ApplyTransform(posMat)
	host.ApplyTransform(hostTransform)

	if len(nonPlanar) == 0 {
		return host, nil
	}
	result, diags := r.clipper().SubtractWithFallback(host, nonPlanar)
	r.diags = append(r.diags, diags...)
	return result, nil
}

// openingMesh produces an IfcOpeningElement's mesh in unscaled, un-flipped,
// un-offset world space — the frame extrudeWithVoids needs to compare
// directly against its own host mesh before the final unit/placement pass
// that ProcessElementWithVoids applies exactly once.
func (r *Router) openingMesh(openingID int64) (*mesh.Mesh, error) {
	elem, err := r.dec.DecodeByID(openingID)
	if err != nil {
		return nil, err
	}
	transform := r.elementTransform(elem)
	return r.processRepresentation(elem, transform, nil)
}

// openingMeshes resolves every opening id to its mesh, skipping ids that
// fail to decode or that carry no geometry.
func (r *Router) openingMeshes(openingIDs []int64) []*mesh.Mesh {
	meshes := make([]*mesh.Mesh, 0, len(openingIDs))
	for _, id := range openingIDs {
		m, err := r.openingMesh(id)
		if err != nil {
			r.warn("opening #%d: %v", id, err)
			continue
		}
		if m.Empty() {
			continue
		}
		meshes = append(meshes, m)
	}
	return meshes
}
