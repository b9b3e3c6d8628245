package router

import (
	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/schema"
)

// maxStyleMapDepth bounds IFCMAPPEDITEM recursion while chasing a style
// through a mapped representation, the same guard dispatch.go applies when
// actually building geometry for one.
const maxStyleMapDepth = 10

// StyleIndex resolves an element's color in two phases: a geometry-item ->
// color map built once from every IFCSTYLEDITEM, and an element -> color
// lookup derived from it on demand, recursing through IFCMAPPEDITEM the
// same way geometry dispatch does. The geometry map is immutable once
// built; the element map is filled by ColorOf and Precompute. The index is
// shared by reference for the session (spec.md's lifecycle rule for
// style/void/placement caches).
type StyleIndex struct {
	dec     *decode.Decoder
	catalog *schema.Catalog

	geometryStyles map[int64]schema.RGBA
	elementStyles  map[int64]schema.RGBA
}

// NewStyleIndex scans every IFCSTYLEDITEM in dec's index and builds the
// geometry-item style map (phase 1). Element colors (phase 2) are resolved
// lazily per element and cached.
func NewStyleIndex(dec *decode.Decoder, catalog *schema.Catalog) *StyleIndex {
	idx := &StyleIndex{
		dec:            dec,
		catalog:        catalog,
		geometryStyles: make(map[int64]schema.RGBA, 64),
		elementStyles:  make(map[int64]schema.RGBA, 64),
	}
	idx.buildGeometryStyles()
	return idx
}

// buildGeometryStyles scans every IFCSTYLEDITEM: Item(0, the geometry
// reference), Styles(1, a style assignment or a list of them). The first
// color found per geometry item wins; later styled items for the same
// geometry are ignored, matching the source's "skip if already present"
// rule.
func (s *StyleIndex) buildGeometryStyles() {
	for _, id := range s.dec.Index().IDs() {
		rec, ok := s.dec.Index().Lookup(id)
		if !ok || rec.TypeTag != "IFCSTYLEDITEM" {
			continue
		}
		e, err := s.dec.DecodeByID(id)
		if err != nil {
			continue
		}
		geomID, ok := decode.AsRef(e.Attr(0))
		if !ok {
			continue
		}
		if _, exists := s.geometryStyles[geomID]; exists {
			continue
		}
		if color, ok := s.extractColorFromStyles(e.Attr(1)); ok {
			s.geometryStyles[geomID] = color
		}
	}
}

// ColorOf returns elementID's resolved color: its own style if one can be
// found by walking its representation items (recursing through mapped
// items), otherwise the per-type default from the schema catalog.
func (s *StyleIndex) ColorOf(elementID int64, typeTag string) schema.RGBA {
	if c, ok := s.elementStyles[elementID]; ok {
		return c
	}

	if c, ok := s.resolveElementColor(elementID); ok {
		s.elementStyles[elementID] = c
		return c
	}
	return s.catalog.DefaultColorOf(typeTag)
}

// Precompute resolves and caches elementIDs' colors up front. Call it once,
// single-threaded, before any concurrent use of ColorOfReadOnly — it is the
// only method on StyleIndex that mutates elementStyles besides ColorOf
// itself, matching spec.md's "style index ... immutable after prepare
// phase, shared by reference" rule for the streaming scheduler (C20), whose
// batch workers call ColorOfReadOnly concurrently afterward.
func (s *StyleIndex) Precompute(elementIDs []int64) {
	for _, id := range elementIDs {
		if _, ok := s.elementStyles[id]; ok {
			continue
		}
		if c, ok := s.resolveElementColor(id); ok {
			s.elementStyles[id] = c
		}
	}
}

// ColorOfReadOnly is ColorOf without the cache-on-miss write, safe to call
// from multiple goroutines once Precompute has already populated every id
// they will ask for. A miss (an id Precompute never resolved a color for)
// falls back to the schema default rather than re-walking the
// representation tree, since that walk would race with other readers.
func (s *StyleIndex) ColorOfReadOnly(elementID int64, typeTag string) schema.RGBA {
	if c, ok := s.elementStyles[elementID]; ok {
		return c
	}
	return s.catalog.DefaultColorOf(typeTag)
}

// resolveElementColor walks ObjectDefinition.Representation(6) ->
// IfcProductDefinitionShape.Representations(2) ->
// IfcShapeRepresentation.Items(3), returning the first item's color found.
func (s *StyleIndex) resolveElementColor(elementID int64) (schema.RGBA, bool) {
	elem, err := s.dec.DecodeByID(elementID)
	if err != nil {
		return schema.RGBA{}, false
	}
	repEntity, ok := s.dec.ResolveRef(elem.Attr(6))
	if !ok || repEntity.TypeTag != "IFCPRODUCTDEFINITIONSHAPE" {
		return schema.RGBA{}, false
	}

	for _, shapeRep := range s.dec.ResolveRefList(repEntity.Attr(2)) {
		if shapeRep.TypeTag != "IFCSHAPEREPRESENTATION" {
			continue
		}
		for _, item := range s.dec.ResolveRefList(shapeRep.Attr(3)) {
			if color, ok := s.findColorForGeometry(item.ID, 0); ok {
				return color, true
			}
		}
	}
	return schema.RGBA{}, false
}

// findColorForGeometry looks geomID up directly in the geometry-style map;
// failing that, if geomID is an IFCMAPPEDITEM, it recurses into the mapped
// representation's own items, since a styled item commonly points inside a
// mapped representation rather than at the mapped item itself.
func (s *StyleIndex) findColorForGeometry(geomID int64, depth int) (schema.RGBA, bool) {
	if c, ok := s.geometryStyles[geomID]; ok {
		return c, true
	}
	if depth >= maxStyleMapDepth {
		return schema.RGBA{}, false
	}

	geom, err := s.dec.DecodeByID(geomID)
	if err != nil || geom.TypeTag != "IFCMAPPEDITEM" {
		return schema.RGBA{}, false
	}

	sourceRef, ok := decode.AsRef(geom.Attr(0))
	if !ok {
		return schema.RGBA{}, false
	}
	source, err := s.dec.DecodeByID(sourceRef)
	if err != nil {
		return schema.RGBA{}, false
	}
	mappedRepRef, ok := decode.AsRef(source.Attr(1))
	if !ok {
		return schema.RGBA{}, false
	}
	mappedRep, err := s.dec.DecodeByID(mappedRepRef)
	if err != nil {
		return schema.RGBA{}, false
	}

	for _, item := range s.dec.ResolveRefList(mappedRep.Attr(3)) {
		if c, ok := s.findColorForGeometry(item.ID, depth+1); ok {
			return c, true
		}
	}
	return schema.RGBA{}, false
}

// extractColorFromStyles handles IfcStyledItem.Styles, which can be a
// single style reference or a list of them; the first one that resolves to
// a color wins.
func (s *StyleIndex) extractColorFromStyles(stylesAttr decode.Value) (schema.RGBA, bool) {
	if list, ok := decode.AsList(stylesAttr); ok {
		for _, item := range list {
			if styleRef, ok := decode.AsRef(item); ok {
				if color, ok := s.extractColorFromStyleAssignment(styleRef); ok {
					return color, true
				}
			}
		}
		return schema.RGBA{}, false
	}
	if styleRef, ok := decode.AsRef(stylesAttr); ok {
		return s.extractColorFromStyleAssignment(styleRef)
	}
	return schema.RGBA{}, false
}

// extractColorFromStyleAssignment handles both IFCPRESENTATIONSTYLE(ASSIGNMENT)
// forms: IFCSURFACESTYLE directly, or an indirection (IFC4's
// IFCPRESENTATIONSTYLEASSIGNMENT, or IFC2x3's entity of the same name) whose
// attribute 0 is itself a list of style refs. Both shapes carry the style
// list at attribute 0 before reaching an IFCSURFACESTYLE, so the same walk
// handles the IFC2x3 fallback without a separate code path.
func (s *StyleIndex) extractColorFromStyleAssignment(styleID int64) (schema.RGBA, bool) {
	style, err := s.dec.DecodeByID(styleID)
	if err != nil {
		return schema.RGBA{}, false
	}

	if style.TypeTag == "IFCSURFACESTYLE" {
		return s.extractColorFromSurfaceStyle(styleID)
	}

	// IFCPRESENTATIONSTYLEASSIGNMENT (IFC2x3) and any other indirection
	// wrapper carry their nested styles at attribute 0.
	list, ok := decode.AsList(style.Attr(0))
	if !ok {
		return schema.RGBA{}, false
	}
	for _, item := range list {
		if innerRef, ok := decode.AsRef(item); ok {
			if color, ok := s.extractColorFromSurfaceStyle(innerRef); ok {
				return color, true
			}
		}
	}
	return schema.RGBA{}, false
}

// extractColorFromSurfaceStyle reads IFCSURFACESTYLE.Styles(2), a list of
// rendering/shading style elements.
func (s *StyleIndex) extractColorFromSurfaceStyle(styleID int64) (schema.RGBA, bool) {
	style, err := s.dec.DecodeByID(styleID)
	if err != nil || style.TypeTag != "IFCSURFACESTYLE" {
		return schema.RGBA{}, false
	}

	list, ok := decode.AsList(style.Attr(2))
	if !ok {
		return schema.RGBA{}, false
	}
	for _, item := range list {
		if renderingRef, ok := decode.AsRef(item); ok {
			if color, ok := s.extractColorFromRendering(renderingRef); ok {
				return color, true
			}
		}
	}
	return schema.RGBA{}, false
}

// extractColorFromRendering handles IFCSURFACESTYLERENDERING and
// IFCSURFACESTYLESHADING, which share SurfaceColour(0)/Transparency(1).
// Transparency is 0 (opaque) to 1 (fully transparent); alpha is its
// complement, clamped to [0, 1].
func (s *StyleIndex) extractColorFromRendering(renderingID int64) (schema.RGBA, bool) {
	rendering, err := s.dec.DecodeByID(renderingID)
	if err != nil {
		return schema.RGBA{}, false
	}
	switch rendering.TypeTag {
	case "IFCSURFACESTYLERENDERING", "IFCSURFACESTYLESHADING":
	default:
		return schema.RGBA{}, false
	}

	colorRef, ok := decode.AsRef(rendering.Attr(0))
	if !ok {
		return schema.RGBA{}, false
	}
	r, g, b, ok := s.extractColourRgb(colorRef)
	if !ok {
		return schema.RGBA{}, false
	}

	transparency, _ := decode.AsFloat(rendering.Attr(1))
	alpha := float32(1 - transparency)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return schema.RGBA{R: r, G: g, B: b, A: alpha}, true
}

// extractColourRgb reads IFCCOLOURRGB: Name(0), Red(1), Green(2), Blue(3).
func (s *StyleIndex) extractColourRgb(colorID int64) (r, g, b float32, ok bool) {
	color, err := s.dec.DecodeByID(colorID)
	if err != nil || color.TypeTag != "IFCCOLOURRGB" {
		return 0, 0, 0, false
	}
	red, _ := decode.AsFloat(color.Attr(1))
	green, _ := decode.AsFloat(color.Attr(2))
	blue, _ := decode.AsFloat(color.Attr(3))
	return float32(red), float32(green), float32(blue), true
}
