package router

import (
	"fmt"

	"github.com/ifcgeom/corepipe/csg"
	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/profile"
	"github.com/ifcgeom/corepipe/solid"
)

// maxMappedItemDepth bounds IFCMAPPEDITEM recursion, the same defensive
// shape as placement.MaxDepth for local-placement chains — mapped items
// pointing to mapped items are rare but not forbidden by the schema.
const maxMappedItemDepth = 10

func (r *Router) clipper() *csg.ClippingProcessor {
	return csg.NewClippingProcessor()
}

// mergeItems dispatches and merges every representation item across
// shapeReps, skipping any IFCSHAPEREPRESENTATION that isn't one and
// recording a diagnostic for any item whose dispatch fails rather than
// aborting the whole element.
func (r *Router) mergeItems(shapeReps []decode.DecodedEntity) *mesh.Mesh {
	out := mesh.New(0, 0)
	for _, shapeRep := range shapeReps {
		if shapeRep.TypeTag != "IFCSHAPEREPRESENTATION" {
			continue
		}
		items := r.dec.ResolveRefList(shapeRep.Attr(3))
		for _, item := range items {
			itemMesh, err := r.dispatchItem(item)
			if err != nil {
				r.warn("item #%d (%s): %v", item.ID, item.TypeTag, err)
				continue
			}
			out.Merge(itemMesh)
		}
	}
	return out
}

// dispatchItem routes one representation item to the processor for its
// type, per the C16 dispatch table.
func (r *Router) dispatchItem(item decode.DecodedEntity) (*mesh.Mesh, error) {
	return r.dispatchItemDepth(item, 0)
}

func (r *Router) dispatchItemDepth(item decode.DecodedEntity, depth int) (*mesh.Mesh, error) {
	switch item.TypeTag {
	case "IFCEXTRUDEDAREASOLID":
		return r.extrudedAreaSolid(item)
	case "IFCREVOLVEDAREASOLID":
		return r.revolvedAreaSolid(item)
	case "IFCSWEPTDISKSOLID":
		return r.sweptDiskSolid(item)
	case "IFCTRIANGULATEDFACESET":
		return solid.TriangulatedFaceSet(r.dec, item.ID)
	case "IFCPOLYGONALFACESET":
		return solid.PolygonalFaceSet(r.dec, item.ID)
	case "IFCFACETEDBREP":
		return solid.FacetedBrep(r.dec, item.ID)
	case "IFCMAPPEDITEM":
		if depth >= maxMappedItemDepth {
			return nil, fmt.Errorf("mapped item nesting exceeds %d", maxMappedItemDepth)
		}
		return r.dispatchMappedItem(item, depth)
	case "IFCBOOLEANRESULT", "IFCBOOLEANCLIPPINGRESULT":
		return r.dispatchBoolean(item, depth)
	default:
		return nil, fmt.Errorf("unsupported representation item type %s", item.TypeTag)
	}
}

// extrudedAreaSolid handles an IFCEXTRUDEDAREASOLID with no associated
// openings: SweptArea(0), Position(1), ExtrudedDirection(2), Depth(3).
func (r *Router) extrudedAreaSolid(item decode.DecodedEntity) (*mesh.Mesh, error) {
	sweptAreaRef, ok := decode.AsRef(item.Attr(0))
	if !ok {
		return nil, fmt.Errorf("extruded area solid #%d: missing SweptArea", item.ID)
	}
	prof, err := profile.Extract(r.dec, sweptAreaRef, r.circles)
	if err != nil {
		return nil, err
	}

	posMat := placement.Identity()
	if posRef, ok := decode.AsRef(item.Attr(1)); ok {
		posMat = placement.ResolveAxisPlacement3D(r.dec, posRef)
	}

	dir := solid.Vec3{Z: 1}
	if dirRef, ok := decode.AsRef(item.Attr(2)); ok {
		dir = r.vec3At(dirRef)
	}
	depth, _ := decode.AsFloat(item.Attr(3))

	m := solid.Extrude(prof, dir, depth)
	m.ApplyTransform(posMat)
	return m, nil
}

// revolvedAreaSolid handles IFCREVOLVEDAREASOLID: SweptArea(0), Position(1),
// Axis(2, an IFCAXIS1PLACEMENT: Location(0), Axis(1)), Angle(3, radians).
// Holes in the swept area are not supported by solid.Revolve and are
// dropped — profiles with voids revolved around an axis are rare enough
// that no teacher or pack example models general surfaces of revolution
// with holes.
func (r *Router) revolvedAreaSolid(item decode.DecodedEntity) (*mesh.Mesh, error) {
	sweptAreaRef, ok := decode.AsRef(item.Attr(0))
	if !ok {
		return nil, fmt.Errorf("revolved area solid #%d: missing SweptArea", item.ID)
	}
	prof, err := profile.Extract(r.dec, sweptAreaRef, r.circles)
	if err != nil {
		return nil, err
	}

	posMat := placement.Identity()
	if posRef, ok := decode.AsRef(item.Attr(1)); ok {
		posMat = placement.ResolveAxisPlacement3D(r.dec, posRef)
	}

	axisRef, ok := decode.AsRef(item.Attr(2))
	if !ok {
		return nil, fmt.Errorf("revolved area solid #%d: missing Axis", item.ID)
	}
	axis, err := r.dec.DecodeByID(axisRef)
	if err != nil {
		return nil, fmt.Errorf("revolved area solid #%d: resolve Axis: %w", item.ID, err)
	}
	axisLoc := solid.Vec3{}
	if locRef, ok := decode.AsRef(axis.Attr(0)); ok {
		axisLoc = r.vec3At(locRef)
	}
	axisDir := solid.Vec3{Z: 1}
	if dirRef, ok := decode.AsRef(axis.Attr(1)); ok {
		axisDir = r.vec3At(dirRef)
	}

	angle, _ := decode.AsFloat(item.Attr(3))

	m := solid.Revolve(prof.Outer, axisLoc, axisDir, angle)
	m.ApplyTransform(posMat)
	return m, nil
}

// sweptDiskSolid handles IFCSWEPTDISKSOLID: Directrix(0), Radius(1). It
// carries no Position attribute of its own — the directrix points are
// already expressed in the item's local frame.
func (r *Router) sweptDiskSolid(item decode.DecodedEntity) (*mesh.Mesh, error) {
	directrixRef, ok := decode.AsRef(item.Attr(0))
	if !ok {
		return nil, fmt.Errorf("swept disk solid #%d: missing Directrix", item.ID)
	}
	pts, err := r.directrixPoints(directrixRef)
	if err != nil {
		return nil, err
	}
	radius, _ := decode.AsFloat(item.Attr(1))
	return solid.SweepDisk(pts, radius), nil
}

// directrixPoints samples a directrix curve into a polyline. Only
// IFCPOLYLINE is supported; other curve kinds (composite, trimmed) would
// need the full curve sampler in profile.SampleCurve, which operates in 2D
// and isn't a fit for a 3D directrix.
func (r *Router) directrixPoints(curveID int64) ([]solid.Vec3, error) {
	e, err := r.dec.DecodeByID(curveID)
	if err != nil {
		return nil, fmt.Errorf("directrix #%d: %w", curveID, err)
	}
	if e.TypeTag != "IFCPOLYLINE" {
		return nil, fmt.Errorf("directrix #%d: unsupported curve type %s", curveID, e.TypeTag)
	}
	ptRefs, _ := decode.AsList(e.Attr(0))
	pts := make([]solid.Vec3, 0, len(ptRefs))
	for _, item := range ptRefs {
		ref, ok := decode.AsRef(item)
		if !ok {
			continue
		}
		pts = append(pts, r.vec3At(ref))
	}
	return pts, nil
}

// vec3At resolves an IFCCARTESIANPOINT or IFCDIRECTION's coordinate list
// (both attribute 0) into a solid.Vec3, missing trailing components
// defaulting to zero.
func (r *Router) vec3At(entityID int64) solid.Vec3 {
	e, err := r.dec.DecodeByID(entityID)
	if err != nil {
		return solid.Vec3{}
	}
	coords, ok := decode.AsList(e.Attr(0))
	if !ok {
		return solid.Vec3{}
	}
	var v solid.Vec3
	if len(coords) > 0 {
		v.X, _ = decode.AsFloat(coords[0])
	}
	if len(coords) > 1 {
		v.Y, _ = decode.AsFloat(coords[1])
	}
	if len(coords) > 2 {
		v.Z, _ = decode.AsFloat(coords[2])
	}
	return v
}

// dispatchMappedItem handles IFCMAPPEDITEM: MappingSource(0, an
// IFCREPRESENTATIONMAP), MappingTarget(1, an
// IFCCARTESIANTRANSFORMATIONOPERATOR3D). The mapped representation's items
// are dispatched and merged, placed by the representation map's own
// MappingOrigin, then by the mapped item's target operator.
func (r *Router) dispatchMappedItem(item decode.DecodedEntity, depth int) (*mesh.Mesh, error) {
	sourceRef, ok := decode.AsRef(item.Attr(0))
	if !ok {
		return nil, fmt.Errorf("mapped item #%d: missing MappingSource", item.ID)
	}
	source, err := r.dec.DecodeByID(sourceRef)
	if err != nil {
		return nil, fmt.Errorf("mapped item #%d: resolve MappingSource: %w", item.ID, err)
	}

	originMat := placement.Identity()
	if originRef, ok := decode.AsRef(source.Attr(0)); ok {
		originMat = placement.ResolveAxisPlacement3D(r.dec, originRef)
	}

	mappedRepRef, ok := decode.AsRef(source.Attr(1))
	if !ok {
		return nil, fmt.Errorf("representation map #%d: missing MappedRepresentation", source.ID)
	}
	mappedRep, err := r.dec.DecodeByID(mappedRepRef)
	if err != nil {
		return nil, fmt.Errorf("representation map #%d: resolve MappedRepresentation: %w", source.ID, err)
	}

	out := mesh.New(0, 0)
	for _, mappedItem := range r.dec.ResolveRefList(mappedRep.Attr(3)) {
		itemMesh, err := r.dispatchItemDepth(mappedItem, depth+1)
		if err != nil {
			r.warn("mapped item #%d: inner item #%d (%s): %v", item.ID, mappedItem.ID, mappedItem.TypeTag, err)
			continue
		}
		out.Merge(itemMesh)
	}
	out.ApplyTransform(originMat)

	if targetEntity, ok := r.dec.ResolveRef(item.Attr(1)); ok {
		targetMat := placement.CartesianTransformOperator(r.dec, targetEntity)
		out.ApplyTransform(targetMat)
	}
	return out, nil
}

// dispatchBoolean handles IFCBOOLEANRESULT/IFCBOOLEANCLIPPINGRESULT:
// Operator(0), FirstOperand(1), SecondOperand(2). Only DIFFERENCE is
// subtracted; UNION and INTERSECTION are rare as geometry-generating
// booleans in practice (most IFC exporters only emit DIFFERENCE for
// openings and clipping) and fall back to returning the first operand
// unchanged, an accepted over-approximation matching the bounded-CSG
// package's documented scope.
func (r *Router) dispatchBoolean(item decode.DecodedEntity, depth int) (*mesh.Mesh, error) {
	firstRef, ok := decode.AsRef(item.Attr(1))
	if !ok {
		return nil, fmt.Errorf("boolean result #%d: missing FirstOperand", item.ID)
	}
	first, err := r.dec.DecodeByID(firstRef)
	if err != nil {
		return nil, fmt.Errorf("boolean result #%d: resolve FirstOperand: %w", item.ID, err)
	}
	firstMesh, err := r.dispatchItemDepth(first, depth+1)
	if err != nil {
		return nil, err
	}

	if enumSymbol(item.Attr(0)) != "DIFFERENCE" {
		return firstMesh, nil
	}

	secondRef, ok := decode.AsRef(item.Attr(2))
	if !ok {
		return firstMesh, nil
	}
	second, err := r.dec.DecodeByID(secondRef)
	if err != nil {
		r.warn("boolean result #%d: resolve SecondOperand: %v", item.ID, err)
		return firstMesh, nil
	}

	switch second.TypeTag {
	case "IFCHALFSPACESOLID", "IFCPOLYGONALBOUNDEDHALFSPACE":
		pl, err := r.halfSpacePlane(second)
		if err != nil {
			r.warn("boolean result #%d: %v", item.ID, err)
			return firstMesh, nil
		}
		return r.clipper().ClipMesh(firstMesh, pl), nil
	default:
		secondMesh, err := r.dispatchItemDepth(second, depth+1)
		if err != nil {
			r.warn("boolean result #%d: SecondOperand: %v", item.ID, err)
			return firstMesh, nil
		}
		result, csgErr := r.clipper().SubtractMesh(firstMesh, secondMesh)
		if csgErr != nil {
			r.warn("boolean result #%d: 3D subtraction failed, falling back to FirstOperand: %v", item.ID, csgErr)
			return firstMesh, nil
		}
		return result, nil
	}
}

// halfSpacePlane resolves an IFCHALFSPACESOLID/IFCPOLYGONALBOUNDEDHALFSPACE
// to the clipping plane it represents: BaseSurface(0, an IFCPLANE),
// AgreementFlag(1). AgreementFlag true means the surface's own normal
// points at the material (solid) side, so ClipMesh's "keep the back side"
// convention already matches; false means the opposite side is solid, so
// the normal is flipped before clipping. A polygonal boundary on
// IFCPOLYGONALBOUNDEDHALFSPACE is not applied — the unbounded half-space
// cut is used as an over-approximation, matching the bounded-CSG package's
// documented scope.
func (r *Router) halfSpacePlane(e decode.DecodedEntity) (csg.Plane, error) {
	baseSurfaceRef, ok := decode.AsRef(e.Attr(0))
	if !ok {
		return csg.Plane{}, fmt.Errorf("half space #%d: missing BaseSurface", e.ID)
	}
	surface, err := r.dec.DecodeByID(baseSurfaceRef)
	if err != nil {
		return csg.Plane{}, fmt.Errorf("half space #%d: resolve BaseSurface: %w", e.ID, err)
	}
	posRef, ok := decode.AsRef(surface.Attr(0))
	if !ok {
		return csg.Plane{}, fmt.Errorf("plane #%d: missing Position", surface.ID)
	}
	mat := placement.ResolveAxisPlacement3D(r.dec, posRef)

	px, py, pz := mat.Translation()
	nx, ny, nz := mat.TransformDirection(0, 0, 1)
	if enumSymbol(e.Attr(1)) == "F" {
		nx, ny, nz = -nx, -ny, -nz
	}
	return csg.NewPlane([3]float64{px, py, pz}, [3]float64{nx, ny, nz}), nil
}

func enumSymbol(v decode.Value) string {
	if e, ok := v.(decode.EnumVal); ok {
		return e.Symbol
	}
	return ""
}
