// Package router dispatches IFC representation items to the geometry
// processor that understands their type, merges the results into one mesh
// per element, and applies unit scale, placement, and large-coordinate
// offset corrections uniformly regardless of which processor produced the
// geometry. No coordinate-frame conversion is applied; output stays Z-up.
package router

import (
	"fmt"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/placement"
	"github.com/ifcgeom/corepipe/profile"
	"github.com/ifcgeom/corepipe/schema"
	"github.com/ifcgeom/corepipe/voidpipe"
)

// Router turns an element id into its final mesh: representation lookup,
// per-item dispatch, merge, unit scale, placement, and large-coordinate
// offsetting. Output stays in the native Z-up frame; a display or rendering
// consumer that needs Y-up applies corepipe.ToDisplayFrame itself, since
// that's an adapter-layer concern, not the core's.
type Router struct {
	dec        *decode.Decoder
	catalog    *schema.Catalog
	placement  *placement.Resolver
	classifier *voidpipe.Classifier
	circles    profile.CircleConfig
	styles     *StyleIndex

	unitScale float64

	rtcEnabled       bool
	rtcX, rtcY, rtcZ float64

	diags []string
}

// New returns a Router with a unit scale of 1.0 (file units == output
// units). Use NewRouterWithUnits for files whose length unit isn't meters.
func New(dec *decode.Decoder, catalog *schema.Catalog) *Router {
	return &Router{
		dec:        dec,
		catalog:    catalog,
		placement:  placement.NewResolver(dec),
		classifier: voidpipe.NewClassifier(),
		circles:    profile.DefaultCircleConfig(),
		styles:     NewStyleIndex(dec, catalog),
		unitScale:  1.0,
	}
}

// NewRouterWithUnits returns a Router that scales every output length by
// unitScale (C19), matching spec.md's Core API constructor.
func NewRouterWithUnits(dec *decode.Decoder, catalog *schema.Catalog, unitScale float64) *Router {
	r := New(dec, catalog)
	r.unitScale = unitScale
	return r
}

// NewWithStyles is NewRouterWithUnits for a caller that already built (and,
// for concurrent use, precomputed) a StyleIndex elsewhere — the streaming
// scheduler's batch workers (C20), which each need their own Router (own
// decoder, own placement cache) but must not each rescan every IFCSTYLEDITEM
// to rebuild an identical StyleIndex.
func NewWithStyles(dec *decode.Decoder, catalog *schema.Catalog, unitScale float64, styles *StyleIndex) *Router {
	return &Router{
		dec:        dec,
		catalog:    catalog,
		placement:  placement.NewResolver(dec),
		classifier: voidpipe.NewClassifier(),
		circles:    profile.DefaultCircleConfig(),
		styles:     styles,
		unitScale:  unitScale,
	}
}

// WithCircleConfig overrides the segment-count tuning used for circular and
// other parametric profiles, returning r for chaining. Callers that honor a
// Config's CircleSegmentsMin/Max/TargetChordM (rather than the package
// defaults DefaultCircleConfig returns) use this after New/NewRouterWithUnits.
func (r *Router) WithCircleConfig(cfg profile.CircleConfig) *Router {
	r.circles = cfg
	return r
}

// WithRTC sets the large-coordinate offset (C18), returning r for chaining.
// Each element's own world translation still decides whether the offset is
// actually applied to that element's mesh (spec.md's uniform-per-mesh rule).
func (r *Router) WithRTC(ox, oy, oz float64) *Router {
	r.rtcEnabled = true
	r.rtcX, r.rtcY, r.rtcZ = ox, oy, oz
	return r
}

// Diagnostics returns every diagnostic message recorded across all
// processing done through this Router, including the underlying placement
// resolver's.
func (r *Router) Diagnostics() []string {
	all := append([]string(nil), r.placement.Diagnostics()...)
	return append(all, r.diags...)
}

func (r *Router) warn(format string, args ...any) {
	r.diags = append(r.diags, fmt.Sprintf(format, args...))
}

// ProcessElement produces the final mesh for a geometry-bearing element:
// IfcProduct attribute 5 (ObjectPlacement) and attribute 6 (Representation).
func (r *Router) ProcessElement(elementID int64) (*mesh.Mesh, error) {
	return r.ProcessElementWithVoids(elementID, nil)
}

// ProcessElementWithVoids is ProcessElement for a host element that has
// associated opening ids (C13/C14 hybrid void pipeline). An empty
// openingIDs behaves exactly like ProcessElement.
func (r *Router) ProcessElementWithVoids(elementID int64, openingIDs []int64) (*mesh.Mesh, error) {
	elem, err := r.dec.DecodeByID(elementID)
	if err != nil {
		return nil, fmt.Errorf("router: element #%d: %w", elementID, err)
	}

	hostTransform := r.elementTransform(elem)

	out, err := r.processRepresentation(elem, hostTransform, openingIDs)
	if err != nil {
		return nil, err
	}
	if out.Empty() {
		return out, nil
	}

	out.ScaleUnits(r.unitScale)
	r.maybeApplyRTC(out, hostTransform)
	return out, nil
}

// ColorOf returns elementID's resolved color (C17): its own style if one
// can be found by walking its representation items, otherwise the schema
// catalog's per-type default.
func (r *Router) ColorOf(elementID int64) schema.RGBA {
	elem, err := r.dec.DecodeByID(elementID)
	if err != nil {
		return r.catalog.DefaultColorOf("")
	}
	return r.styles.ColorOf(elementID, elem.TypeTag)
}

// elementTransform resolves an IfcProduct's ObjectPlacement (attribute 5) to
// its composed world transform.
func (r *Router) elementTransform(elem decode.DecodedEntity) placement.Matrix {
	placementID, ok := decode.AsRef(elem.Attr(5))
	if !ok {
		return placement.Identity()
	}
	return r.placement.Transform(placementID)
}

// processRepresentation walks IfcProduct.Representation (attribute 6) ->
// IfcProductDefinitionShape.Representations (attribute 2) ->
// IfcShapeRepresentation.Items (attribute 3), dispatching and merging every
// item, then applying hostTransform once to the merged result.
//
// When the element has openings, the hybrid void pipeline (C13/C14/C15)
// tries to find a single extrusion item to run the 2D-first path against; if
// none is found (a boolean result, a b-rep, an explicit mesh host), the
// openings are instead subtracted wholesale via bounded 3D CSG from the
// generic merged mesh. Either way hostTransform is applied exactly once.
func (r *Router) processRepresentation(elem decode.DecodedEntity, hostTransform placement.Matrix, openingIDs []int64) (*mesh.Mesh, error) {
	repAttr := elem.Attr(6)
	if decode.IsNull(repAttr) {
		return mesh.New(0, 0), nil
	}
	repEntity, ok := r.dec.ResolveRef(repAttr)
	if !ok || repEntity.TypeTag != "IFCPRODUCTDEFINITIONSHAPE" {
		return mesh.New(0, 0), nil
	}

	shapeReps := r.dec.ResolveRefList(repEntity.Attr(2))

	if len(openingIDs) > 0 {
		if out, ok, err := r.tryVoidPipeline(shapeReps, hostTransform, openingIDs); ok {
			return out, err
		}

		out := r.mergeItems(shapeReps)
		out.ApplyTransform(hostTransform)

		voidMeshes := r.openingMeshes(openingIDs)
		if len(voidMeshes) == 0 {
			return out, nil
		}
		result, diags := r.clipper().SubtractWithFallback(out, voidMeshes)
		r.diags = append(r.diags, diags...)
		return result, nil
	}

	out := r.mergeItems(shapeReps)
	out.ApplyTransform(hostTransform)
	return out, nil
}

// maybeApplyRTC subtracts the RTC offset from out when hostTransform's
// translation exceeds LargeCoordThreshold in any axis — the per-mesh
// decision the uniform-per-mesh rule requires, made once per element from
// the same transform used to place its geometry.
func (r *Router) maybeApplyRTC(out *mesh.Mesh, hostTransform placement.Matrix) {
	if !r.rtcEnabled {
		return
	}
	tx, ty, tz := hostTransform.Translation()
	if isLargeCoordinate(tx) || isLargeCoordinate(ty) || isLargeCoordinate(tz) {
		out.ApplyRTC(r.rtcX, r.rtcY, r.rtcZ)
	}
}
