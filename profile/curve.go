package profile

import (
	"fmt"
	"math"

	"github.com/ifcgeom/corepipe/decode"
)

// SampleCurve discretizes a 2D curve entity into an ordered point loop/path.
// Supported forms: polyline (IFCPOLYLINE), indexed poly-curve
// (IFCINDEXEDPOLYCURVE; every segment, line or arc, contributes only its
// indexed points, so arcs are not tessellated),
// composite curve (IFCCOMPOSITECURVE, by recursing into each segment and
// respecting its SameSense flag), and trimmed circle/ellipse
// (IFCTRIMMEDCURVE over IFCCIRCLE/IFCELLIPSE).
func SampleCurve(dec *decode.Decoder, curveID int64, cfg CircleConfig) ([]Point2D, error) {
	e, err := dec.DecodeByID(curveID)
	if err != nil {
		return nil, fmt.Errorf("sample curve #%d: %w", curveID, err)
	}

	switch e.TypeTag {
	case "IFCPOLYLINE":
		return samplePolyline(dec, e)
	case "IFCINDEXEDPOLYCURVE":
		return sampleIndexedPolyCurve(dec, e)
	case "IFCCOMPOSITECURVE":
		return sampleCompositeCurve(dec, e, cfg)
	case "IFCTRIMMEDCURVE":
		return sampleTrimmedCurve(dec, e, cfg)
	case "IFCCIRCLE":
		radius, center, err := circleParams(dec, e)
		if err != nil {
			return nil, err
		}
		pts := Circle(radius, cfg).Outer
		return translate(pts, center), nil
	default:
		return nil, fmt.Errorf("sample curve #%d: unsupported curve type %s", curveID, e.TypeTag)
	}
}

func samplePolyline(dec *decode.Decoder, e decode.DecodedEntity) ([]Point2D, error) {
	items, ok := decode.AsList(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("polyline #%d: missing points list", e.ID)
	}
	pts := make([]Point2D, 0, len(items))
	for _, item := range items {
		ref, ok := decode.AsRef(item)
		if !ok {
			continue
		}
		p, err := point2DOf(dec, ref)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// sampleIndexedPolyCurve handles IFCINDEXEDPOLYCURVE: attribute 0 is a ref
// to an IFCCARTESIANPOINTLIST2D (coordinates), attribute 1 is an optional
// list of line (2-index) or arc (3-index) segments. When the segment list
// is absent, the coordinate list is used directly in order.
func sampleIndexedPolyCurve(dec *decode.Decoder, e decode.DecodedEntity) ([]Point2D, error) {
	coordsRef, ok := decode.AsRef(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("indexed poly-curve #%d: missing coordinate list", e.ID)
	}
	coords, err := decode2DCoordList(dec, coordsRef)
	if err != nil {
		return nil, err
	}

	segItems, hasSegments := decode.AsList(e.Attr(1))
	if !hasSegments {
		return coords, nil
	}

	var pts []Point2D
	for _, seg := range segItems {
		typed, ok := seg.(decode.Typed)
		if !ok {
			continue
		}
		indices, _ := decode.AsList(typed.Args[0])
		idx := make([]int, 0, len(indices))
		for _, iv := range indices {
			n, _ := decode.AsInt(iv)
			idx = append(idx, int(n)-1) // 1-based -> 0-based
		}
		for _, i := range idx {
			if i >= 0 && i < len(coords) {
				pts = append(pts, coords[i])
			}
		}
	}
	return pts, nil
}

func decode2DCoordList(dec *decode.Decoder, id int64) ([]Point2D, error) {
	e, err := dec.DecodeByID(id)
	if err != nil {
		return nil, err
	}
	items, ok := decode.AsList(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("coordinate list #%d: missing points attribute", id)
	}
	pts := make([]Point2D, 0, len(items))
	for _, item := range items {
		coords, ok := decode.AsList(item)
		if !ok || len(coords) < 2 {
			continue
		}
		x, _ := decode.AsFloat(coords[0])
		y, _ := decode.AsFloat(coords[1])
		pts = append(pts, Point2D{X: x, Y: y})
	}
	return pts, nil
}

func sampleCompositeCurve(dec *decode.Decoder, e decode.DecodedEntity, cfg CircleConfig) ([]Point2D, error) {
	segItems, ok := decode.AsList(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("composite curve #%d: missing segments", e.ID)
	}
	var pts []Point2D
	for _, segVal := range segItems {
		ref, ok := decode.AsRef(segVal)
		if !ok {
			continue
		}
		seg, err := dec.DecodeByID(ref)
		if err != nil {
			continue
		}
		sameSense := true
		if enum, ok := seg.Attr(0).(decode.EnumVal); ok {
			sameSense = enum.Symbol == "T"
		}
		parentRef, ok := decode.AsRef(seg.Attr(2))
		if !ok {
			continue
		}
		sub, err := SampleCurve(dec, parentRef, cfg)
		if err != nil {
			return nil, err
		}
		if !sameSense {
			sub = Reversed(sub)
		}
		pts = append(pts, sub...)
	}
	return pts, nil
}

// sampleTrimmedCurve handles IFCTRIMMEDCURVE over a circle/ellipse basis
// curve, sampling the arc between Trim1 and Trim2 (treated as angles in
// degrees; sampleArc converts them to radians).
func sampleTrimmedCurve(dec *decode.Decoder, e decode.DecodedEntity, cfg CircleConfig) ([]Point2D, error) {
	basisRef, ok := decode.AsRef(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("trimmed curve #%d: missing basis curve", e.ID)
	}
	basis, err := dec.DecodeByID(basisRef)
	if err != nil {
		return nil, err
	}

	trim1, ok1 := decode.AsList(e.Attr(1))
	trim2, ok2 := decode.AsList(e.Attr(2))
	if !ok1 || !ok2 || len(trim1) == 0 || len(trim2) == 0 {
		return nil, fmt.Errorf("trimmed curve #%d: malformed trim parameters", e.ID)
	}
	a1, ok := decode.AsFloat(trim1[0])
	if !ok {
		return nil, fmt.Errorf("trimmed curve #%d: trim1 is not a parameter angle", e.ID)
	}
	a2, ok := decode.AsFloat(trim2[0])
	if !ok {
		return nil, fmt.Errorf("trimmed curve #%d: trim2 is not a parameter angle", e.ID)
	}

	switch basis.TypeTag {
	case "IFCCIRCLE":
		radius, center, err := circleParams(dec, basis)
		if err != nil {
			return nil, err
		}
		return sampleArc(radius, radius, center, a1, a2, cfg), nil
	case "IFCELLIPSE":
		rx, ry, center, err := ellipseParams(dec, basis)
		if err != nil {
			return nil, err
		}
		return sampleArc(rx, ry, center, a1, a2, cfg), nil
	default:
		return nil, fmt.Errorf("trimmed curve #%d: unsupported basis curve %s", e.ID, basis.TypeTag)
	}
}

func sampleArc(rx, ry float64, center Point2D, startDeg, endDeg float64, cfg CircleConfig) []Point2D {
	start := startDeg * math.Pi / 180
	end := endDeg * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	avgR := (rx + ry) / 2
	n := cfg.segmentCount(avgR)
	steps := int(math.Ceil(float64(n) * (end - start) / (2 * math.Pi)))
	if steps < 2 {
		steps = 2
	}
	pts := make([]Point2D, steps+1)
	for i := 0; i <= steps; i++ {
		theta := start + (end-start)*float64(i)/float64(steps)
		pts[i] = Point2D{X: center.X + rx*math.Cos(theta), Y: center.Y + ry*math.Sin(theta)}
	}
	return pts
}

func circleParams(dec *decode.Decoder, e decode.DecodedEntity) (radius float64, center Point2D, err error) {
	radius, ok := decode.AsFloat(e.Attr(1))
	if !ok {
		return 0, Point2D{}, fmt.Errorf("circle #%d: missing radius", e.ID)
	}
	center, err = placement2DOrigin(dec, e.Attr(0))
	return radius, center, err
}

func ellipseParams(dec *decode.Decoder, e decode.DecodedEntity) (rx, ry float64, center Point2D, err error) {
	rx, _ = decode.AsFloat(e.Attr(1))
	ry, _ = decode.AsFloat(e.Attr(2))
	center, err = placement2DOrigin(dec, e.Attr(0))
	return rx, ry, center, err
}

func placement2DOrigin(dec *decode.Decoder, posAttr decode.Value) (Point2D, error) {
	ref, ok := decode.AsRef(posAttr)
	if !ok {
		return Point2D{}, nil // no placement: origin-centered
	}
	pos, err := dec.DecodeByID(ref)
	if err != nil {
		return Point2D{}, err
	}
	return point2DOf(dec, mustRef(pos.Attr(0)))
}

func mustRef(v decode.Value) int64 {
	id, _ := decode.AsRef(v)
	return id
}

func point2DOf(dec *decode.Decoder, ptID int64) (Point2D, error) {
	pt, err := dec.DecodeByID(ptID)
	if err != nil {
		return Point2D{}, err
	}
	coords, ok := decode.AsList(pt.Attr(0))
	if !ok || len(coords) < 2 {
		return Point2D{}, fmt.Errorf("point #%d: malformed coordinates", ptID)
	}
	x, _ := decode.AsFloat(coords[0])
	y, _ := decode.AsFloat(coords[1])
	return Point2D{X: x, Y: y}, nil
}

func translate(pts []Point2D, by Point2D) []Point2D {
	out := make([]Point2D, len(pts))
	for i, p := range pts {
		out[i] = Point2D{X: p.X + by.X, Y: p.Y + by.Y}
	}
	return out
}
