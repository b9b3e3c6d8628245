package router

import "github.com/ifcgeom/corepipe/decode"

// siPrefixScale maps an IfcSIUnit Prefix enumeration to its multiplier
// against the unprefixed SI unit (metres, for length).
var siPrefixScale = map[string]float64{
	"EXA": 1e18, "PETA": 1e15, "TERA": 1e12, "GIGA": 1e9, "MEGA": 1e6,
	"KILO": 1e3, "HECTO": 1e2, "DECA": 1e1, "DECI": 1e-1, "CENTI": 1e-2,
	"MILLI": 1e-3, "MICRO": 1e-6, "NANO": 1e-9, "PICO": 1e-12,
	"FEMTO": 1e-15, "ATTO": 1e-18,
}

// maxUnitIndirection bounds IFCCONVERSIONBASEDUNIT -> IFCMEASUREWITHUNIT ->
// IFCSIUNIT chasing, the same defensive-depth style placement.go and
// dispatch.go use for their own indirections.
const maxUnitIndirection = 4

// ExtractUnitScale scans dec's index for IFCUNITASSIGNMENT and returns the
// multiplier (C19) that converts the file's declared length unit to meters.
// A file with no unit assignment, or whose units list carries no length
// unit, uses the IFC default of 1.0 (meters).
func ExtractUnitScale(dec *decode.Decoder) float64 {
	idx := dec.Index()
	for _, id := range idx.IDs() {
		rec, ok := idx.Lookup(id)
		if !ok || rec.TypeTag != "IFCUNITASSIGNMENT" {
			continue
		}
		e, err := dec.DecodeByID(id)
		if err != nil {
			continue
		}
		units, ok := decode.AsList(e.Attr(0))
		if !ok {
			continue
		}
		for _, u := range units {
			ref, ok := decode.AsRef(u)
			if !ok {
				continue
			}
			if scale, ok := lengthUnitScale(dec, ref, 0); ok {
				return scale
			}
		}
	}
	return 1.0
}

// lengthUnitScale resolves unitID's scale to meters if it is (directly or,
// for a conversion-based unit, indirectly) a length unit; ok is false for
// any other unit kind (area, volume, plane angle, ...), which the caller
// skips in favor of the next entry in the assignment's unit list.
func lengthUnitScale(dec *decode.Decoder, unitID int64, depth int) (float64, bool) {
	if depth > maxUnitIndirection {
		return 0, false
	}
	u, err := dec.DecodeByID(unitID)
	if err != nil {
		return 0, false
	}

	switch u.TypeTag {
	case "IFCSIUNIT":
		if enumSymbol(u.Attr(1)) != "LENGTHUNIT" {
			return 0, false
		}
		prefix := enumSymbol(u.Attr(2))
		if prefix == "" {
			return 1.0, true
		}
		if scale, ok := siPrefixScale[prefix]; ok {
			return scale, true
		}
		return 1.0, true

	case "IFCCONVERSIONBASEDUNIT", "IFCCONVERSIONBASEDUNITWITHOFFSET":
		if enumSymbol(u.Attr(1)) != "LENGTHUNIT" {
			return 0, false
		}
		factorRef, ok := decode.AsRef(u.Attr(3))
		if !ok {
			return 0, false
		}
		factor, err := dec.DecodeByID(factorRef)
		if err != nil || factor.TypeTag != "IFCMEASUREWITHUNIT" {
			return 0, false
		}
		value, ok := decode.AsFloat(factor.Attr(0))
		if !ok {
			return 0, false
		}
		baseRef, ok := decode.AsRef(factor.Attr(1))
		if !ok {
			return value, true
		}
		baseScale, ok := lengthUnitScale(dec, baseRef, depth+1)
		if !ok {
			baseScale = 1.0
		}
		return value * baseScale, true

	default:
		return 0, false
	}
}
