// Package schema provides the static, closed enumeration of recognized IFC
// type tags together with the classification tables the router, profile
// extractor, and style resolver use to decide how to handle an entity.
// The catalog is allocated once and never mutated; lookups are O(1).
package schema

// GeometryCategory classifies a representation item's processing strategy.
type GeometryCategory uint8

const (
	GeometryUnknown GeometryCategory = iota
	GeometrySweptSolid
	GeometryBoolean
	GeometryExplicitMesh
	GeometryMappedItem
	GeometrySurface
	GeometryCurve
)

// ProfileCategory classifies a profile definition.
type ProfileCategory uint8

const (
	ProfileUnknown ProfileCategory = iota
	ProfileParametric
	ProfileArbitrary
	ProfileComposite
)

// ElementPriority ranks a geometry-bearing element for the streaming
// scheduler's priority queue (C20): lower value is scheduled first.
type ElementPriority uint8

const (
	PrioritySimple  ElementPriority = 0
	PriorityMedium  ElementPriority = 1
	PriorityComplex ElementPriority = 2
)

// RGBA is a default or resolved color, components in [0,1].
type RGBA struct{ R, G, B, A float32 }

// Catalog is the static schema lookup table. Its zero value is unusable;
// use Default().
type Catalog struct {
	hasGeometry     map[string]bool
	geometryCat     map[string]GeometryCategory
	profileCat      map[string]ProfileCategory
	priority        map[string]ElementPriority
	defaultColors   map[string]RGBA
}

var defaultCatalog = buildDefault()

// Default returns the shared, read-only catalog instance.
func Default() *Catalog { return defaultCatalog }

// HasGeometryByName reports whether tag names a product type that
// participates in visualization.
func (c *Catalog) HasGeometryByName(tag string) bool {
	return c.hasGeometry[tag]
}

// GeometryCategoryOf maps a representation item's type tag to its
// processing strategy.
func (c *Catalog) GeometryCategoryOf(tag string) GeometryCategory {
	if cat, ok := c.geometryCat[tag]; ok {
		return cat
	}
	return GeometryUnknown
}

// ProfileCategoryOf maps a profile definition's type tag to its family.
func (c *Catalog) ProfileCategoryOf(tag string) ProfileCategory {
	if cat, ok := c.profileCat[tag]; ok {
		return cat
	}
	return ProfileUnknown
}

// PriorityOf returns the scheduling priority for a building-element type
// tag. Unknown tags default to PriorityMedium.
func (c *Catalog) PriorityOf(tag string) ElementPriority {
	if p, ok := c.priority[tag]; ok {
		return p
	}
	return PriorityMedium
}

// DefaultColorOf returns the per-type default color, used when an element
// carries no explicit style (C17).
func (c *Catalog) DefaultColorOf(tag string) RGBA {
	if rgba, ok := c.defaultColors[tag]; ok {
		return rgba
	}
	return RGBA{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func buildDefault() *Catalog {
	c := &Catalog{
		hasGeometry:   make(map[string]bool, 64),
		geometryCat:   make(map[string]GeometryCategory, 32),
		profileCat:    make(map[string]ProfileCategory, 32),
		priority:      make(map[string]ElementPriority, 64),
		defaultColors: make(map[string]RGBA, 32),
	}

	simple := []string{
		"IFCWALL", "IFCWALLSTANDARDCASE", "IFCSLAB", "IFCCOLUMN", "IFCBEAM",
		"IFCPLATE", "IFCROOF", "IFCSTAIR", "IFCSTAIRFLIGHT", "IFCFOOTING",
		"IFCCOVERING", "IFCRAMP", "IFCRAMPFLIGHT",
	}
	complex := []string{
		"IFCFURNISHINGELEMENT", "IFCPROXY", "IFCBUILDINGELEMENTPROXY",
		"IFCFLOWSEGMENT", "IFCFLOWFITTING", "IFCFLOWTERMINAL",
		"IFCFASTENER", "IFCMECHANICALFASTENER", "IFCDISCRETEACCESSORY",
		"IFCSANITARYTERMINAL", "IFCPIPESEGMENT", "IFCPIPEFITTING",
	}
	medium := []string{
		"IFCDOOR", "IFCWINDOW", "IFCRAILING",
		"IFCCURTAINWALL", "IFCMEMBER", "IFCPLATESTANDARDCASE",
		"IFCBUILDINGELEMENTPART", "IFCSPACE",
	}

	for _, tag := range simple {
		c.hasGeometry[tag] = true
		c.priority[tag] = PrioritySimple
	}
	for _, tag := range medium {
		c.hasGeometry[tag] = true
		c.priority[tag] = PriorityMedium
	}
	for _, tag := range complex {
		c.hasGeometry[tag] = true
		c.priority[tag] = PriorityComplex
	}
	// IfcOpeningElement participates in the void pipeline but is not itself
	// rendered; it still needs geometry decoding to produce a void mesh.
	c.priority["IFCOPENINGELEMENT"] = PriorityMedium

	geomItems := map[string]GeometryCategory{
		"IFCEXTRUDEDAREASOLID":        GeometrySweptSolid,
		"IFCREVOLVEDAREASOLID":        GeometrySweptSolid,
		"IFCSURFACECURVESWEPTAREASOLID": GeometrySweptSolid,
		"IFCSWEPTDISKSOLID":           GeometrySweptSolid,
		"IFCBOOLEANRESULT":            GeometryBoolean,
		"IFCBOOLEANCLIPPINGRESULT":    GeometryBoolean,
		"IFCTRIANGULATEDFACESET":      GeometryExplicitMesh,
		"IFCPOLYGONALFACESET":         GeometryExplicitMesh,
		"IFCFACETEDBREP":              GeometryExplicitMesh,
		"IFCMAPPEDITEM":               GeometryMappedItem,
		"IFCCURVEBOUNDEDPLANE":        GeometrySurface,
		"IFCPLANE":                    GeometrySurface,
		"IFCPOLYLINE":                 GeometryCurve,
		"IFCINDEXEDPOLYCURVE":         GeometryCurve,
		"IFCCOMPOSITECURVE":           GeometryCurve,
		"IFCTRIMMEDCURVE":             GeometryCurve,
		"IFCCIRCLE":                   GeometryCurve,
		"IFCELLIPSE":                  GeometryCurve,
	}
	for tag, cat := range geomItems {
		c.geometryCat[tag] = cat
	}

	profileItems := map[string]ProfileCategory{
		"IFCRECTANGLEPROFILEDEF":          ProfileParametric,
		"IFCRECTANGLEHOLLOWPROFILEDEF":    ProfileParametric,
		"IFCCIRCLEPROFILEDEF":             ProfileParametric,
		"IFCCIRCLEHOLLOWPROFILEDEF":       ProfileParametric,
		"IFCISHAPEPROFILEDEF":             ProfileParametric,
		"IFCLSHAPEPROFILEDEF":             ProfileParametric,
		"IFCTSHAPEPROFILEDEF":             ProfileParametric,
		"IFCUSHAPEPROFILEDEF":             ProfileParametric,
		"IFCCSHAPEPROFILEDEF":             ProfileParametric,
		"IFCZSHAPEPROFILEDEF":             ProfileParametric,
		"IFCARBITRARYCLOSEDPROFILEDEF":    ProfileArbitrary,
		"IFCARBITRARYPROFILEDEFWITHVOIDS": ProfileArbitrary,
		"IFCCOMPOSITEPROFILEDEF":          ProfileComposite,
		"IFCDERIVEDPROFILEDEF":            ProfileComposite,
	}
	for tag, cat := range profileItems {
		c.profileCat[tag] = cat
	}

	defaults := map[string]RGBA{
		"IFCWALL":       {R: 0.85, G: 0.85, B: 0.80, A: 1.0},
		"IFCSLAB":       {R: 0.75, G: 0.75, B: 0.75, A: 1.0},
		"IFCCOLUMN":     {R: 0.60, G: 0.60, B: 0.65, A: 1.0},
		"IFCBEAM":       {R: 0.60, G: 0.60, B: 0.65, A: 1.0},
		"IFCDOOR":       {R: 0.55, G: 0.35, B: 0.20, A: 1.0},
		"IFCWINDOW":     {R: 0.60, G: 0.80, B: 0.95, A: 0.35},
		"IFCROOF":       {R: 0.55, G: 0.25, B: 0.20, A: 1.0},
		"IFCFOOTING":    {R: 0.40, G: 0.40, B: 0.40, A: 1.0},
		"IFCSTAIR":      {R: 0.70, G: 0.70, B: 0.70, A: 1.0},
		"IFCSPACE":      {R: 0.40, G: 0.80, B: 0.40, A: 0.15},
	}
	for tag, rgba := range defaults {
		c.defaultColors[tag] = rgba
	}

	return c
}
