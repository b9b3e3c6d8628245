package profile

import (
	"fmt"
	"math"

	"github.com/ifcgeom/corepipe/decode"
)

// Extract decodes a profile definition entity into a Profile, dispatching
// on its type tag. Parametric shapes are generated analytically;
// IFCARBITRARYCLOSEDPROFILEDEF/IFCARBITRARYPROFILEDEFWITHVOIDS are sampled
// through the curve sampler (C7). The profile's own Position attribute
// (axis2placement2d), when present, is applied to every resulting point.
func Extract(dec *decode.Decoder, profileID int64, cfg CircleConfig) (Profile, error) {
	e, err := dec.DecodeByID(profileID)
	if err != nil {
		return Profile{}, fmt.Errorf("extract profile #%d: %w", profileID, err)
	}

	var prof Profile
	switch e.TypeTag {
	case "IFCRECTANGLEPROFILEDEF":
		xDim, _ := decode.AsFloat(e.Attr(3))
		yDim, _ := decode.AsFloat(e.Attr(4))
		prof = Rectangle(xDim, yDim)
	case "IFCRECTANGLEHOLLOWPROFILEDEF":
		xDim, _ := decode.AsFloat(e.Attr(3))
		yDim, _ := decode.AsFloat(e.Attr(4))
		wall, _ := decode.AsFloat(e.Attr(5))
		prof = RectangleHollow(xDim, yDim, wall)
	case "IFCCIRCLEPROFILEDEF":
		radius, _ := decode.AsFloat(e.Attr(3))
		prof = Circle(radius, cfg)
	case "IFCCIRCLEHOLLOWPROFILEDEF":
		radius, _ := decode.AsFloat(e.Attr(3))
		wall, _ := decode.AsFloat(e.Attr(4))
		prof = CircleHollow(radius, radius-wall, cfg)
	case "IFCISHAPEPROFILEDEF":
		w, _ := decode.AsFloat(e.Attr(3))
		d, _ := decode.AsFloat(e.Attr(4))
		tw, _ := decode.AsFloat(e.Attr(5))
		tf, _ := decode.AsFloat(e.Attr(6))
		prof = IShape(IShapeParams{OverallWidth: w, OverallDepth: d, WebThickness: tw, FlangeThickness: tf})
	case "IFCLSHAPEPROFILEDEF":
		depth, _ := decode.AsFloat(e.Attr(3))
		width, _ := decode.AsFloat(e.Attr(4))
		thick, _ := decode.AsFloat(e.Attr(5))
		prof = LShape(LShapeParams{Depth: depth, Width: width, Thickness: thick})
	case "IFCTSHAPEPROFILEDEF":
		depth, _ := decode.AsFloat(e.Attr(3))
		flangeW, _ := decode.AsFloat(e.Attr(4))
		tw, _ := decode.AsFloat(e.Attr(5))
		tf, _ := decode.AsFloat(e.Attr(6))
		prof = TShape(TShapeParams{Depth: depth, FlangeWidth: flangeW, WebThickness: tw, FlangeThickness: tf})
	case "IFCUSHAPEPROFILEDEF":
		depth, _ := decode.AsFloat(e.Attr(3))
		flangeW, _ := decode.AsFloat(e.Attr(4))
		tw, _ := decode.AsFloat(e.Attr(5))
		tf, _ := decode.AsFloat(e.Attr(6))
		prof = UShape(UShapeParams{Depth: depth, FlangeWidth: flangeW, WebThickness: tw, FlangeThickness: tf})
	case "IFCCSHAPEPROFILEDEF":
		depth, _ := decode.AsFloat(e.Attr(3))
		width, _ := decode.AsFloat(e.Attr(4))
		tw, _ := decode.AsFloat(e.Attr(5))
		girth, _ := decode.AsFloat(e.Attr(6))
		prof = CShape(CShapeParams{Depth: depth, Width: width, WebThickness: tw, Girth: girth})
	case "IFCZSHAPEPROFILEDEF":
		depth, _ := decode.AsFloat(e.Attr(3))
		flangeW, _ := decode.AsFloat(e.Attr(4))
		tw, _ := decode.AsFloat(e.Attr(5))
		tf, _ := decode.AsFloat(e.Attr(6))
		prof = ZShape(ZShapeParams{Depth: depth, FlangeWidth: flangeW, WebThickness: tw, FlangeThickness: tf})
	case "IFCARBITRARYCLOSEDPROFILEDEF":
		curveRef, ok := decode.AsRef(e.Attr(2))
		if !ok {
			return Profile{}, fmt.Errorf("profile #%d: missing outer curve", profileID)
		}
		outer, err := SampleCurve(dec, curveRef, cfg)
		if err != nil {
			return Profile{}, err
		}
		prof = Profile{Outer: outer}
	case "IFCARBITRARYPROFILEDEFWITHVOIDS":
		withVoids, err := extractArbitraryWithVoids(dec, e, cfg)
		if err != nil {
			return Profile{}, err
		}
		prof = withVoids
	default:
		return Profile{}, fmt.Errorf("extract profile #%d: unsupported profile type %s", profileID, e.TypeTag)
	}

	prof.Outer, prof.Holes = NormalizeWinding(prof.Outer, prof.Holes)

	if isParametricProfile(e.TypeTag) {
		if posRef, ok := decode.AsRef(e.Attr(2)); ok {
			xf, err := placement2DTransform(dec, posRef)
			if err == nil {
				prof = applyTransform2D(prof, xf)
			}
		}
	}
	return prof, nil
}

// isParametricProfile reports whether tag is one of the parametric profile
// definitions whose attribute 2 is a Position (axis2placement2d), as
// opposed to the arbitrary profile definitions whose attribute 2/3 carry
// curve references instead.
func isParametricProfile(tag string) bool {
	switch tag {
	case "IFCARBITRARYCLOSEDPROFILEDEF", "IFCARBITRARYPROFILEDEFWITHVOIDS":
		return false
	default:
		return true
	}
}

func extractArbitraryWithVoids(dec *decode.Decoder, e decode.DecodedEntity, cfg CircleConfig) (Profile, error) {
	outerRef, ok := decode.AsRef(e.Attr(2))
	if !ok {
		return Profile{}, fmt.Errorf("profile #%d: missing outer curve", e.ID)
	}
	outer, err := SampleCurve(dec, outerRef, cfg)
	if err != nil {
		return Profile{}, err
	}
	innerItems, _ := decode.AsList(e.Attr(3))
	holes := make([][]Point2D, 0, len(innerItems))
	for _, item := range innerItems {
		innerRef, ok := decode.AsRef(item)
		if !ok {
			continue
		}
		inner, err := SampleCurve(dec, innerRef, cfg)
		if err != nil {
			return Profile{}, err
		}
		holes = append(holes, inner)
	}
	return Profile{Outer: outer, Holes: holes}, nil
}

// transform2D is a rigid 2D transform: rotation by Angle radians then
// translation by (TX, TY).
type transform2D struct {
	TX, TY, Angle float64
}

func placement2DTransform(dec *decode.Decoder, posID int64) (transform2D, error) {
	pos, err := dec.DecodeByID(posID)
	if err != nil {
		return transform2D{}, err
	}
	loc, err := point2DOf(dec, mustRef(pos.Attr(0)))
	if err != nil {
		return transform2D{}, err
	}
	angle := 0.0
	if refDirRef, ok := decode.AsRef(pos.Attr(1)); ok {
		dir, err := point2DOf(dec, refDirRef)
		if err == nil {
			angle = math.Atan2(dir.Y, dir.X)
		}
	}
	return transform2D{TX: loc.X, TY: loc.Y, Angle: angle}, nil
}

func applyTransform2D(p Profile, xf transform2D) Profile {
	apply := func(loop []Point2D) []Point2D {
		out := make([]Point2D, len(loop))
		cosA, sinA := math.Cos(xf.Angle), math.Sin(xf.Angle)
		for i, pt := range loop {
			out[i] = Point2D{
				X: pt.X*cosA-pt.Y*sinA + xf.TX,
				Y: pt.X*sinA+pt.Y*cosA + xf.TY,
			}
		}
		return out
	}
	holes := make([][]Point2D, len(p.Holes))
	for i, h := range p.Holes {
		holes[i] = apply(h)
	}
	return Profile{Outer: apply(p.Outer), Holes: holes}
}
