package solid

import (
	"fmt"
	"math"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/profile"
)

// TriangulatedFaceSet ingests an IFCTRIANGULATEDFACESET entity directly: its
// Coordinates attribute (attribute 0, an IFCCARTESIANPOINTLIST3D reference)
// and CoordIndex attribute (attribute 3, a list of 1-based triangle index
// triples) map onto a mesh with no triangulation work, via the fast byte
// paths in decode when available.
func TriangulatedFaceSet(dec *decode.Decoder, entityID int64) (*mesh.Mesh, error) {
	e, err := dec.DecodeByID(entityID)
	if err != nil {
		return nil, fmt.Errorf("triangulated face set #%d: %w", entityID, err)
	}
	coordsRef, ok := decode.AsRef(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("triangulated face set #%d: missing Coordinates", entityID)
	}

	positions, err := coordinateList3D(dec, coordsRef)
	if err != nil {
		return nil, err
	}

	indices, err := triangleIndexList(dec, entityID, 3)
	if err != nil {
		return nil, err
	}

	return &mesh.Mesh{
		Positions: positions,
		Normals:   make([]float32, len(positions)),
		Indices:   indices,
	}, nil
}

// coordinateList3D decodes an IFCCARTESIANPOINTLIST3D's CoordList (attribute
// 0) into a flat xyz buffer, preferring the direct byte-scan fast path (C4)
// over the general decode tree.
func coordinateList3D(dec *decode.Decoder, id int64) ([]float32, error) {
	if fast, err := dec.FastFloatTriples(id, 0); err == nil {
		return fast, nil
	}
	e, err := dec.DecodeByID(id)
	if err != nil {
		return nil, fmt.Errorf("coordinate list #%d: %w", id, err)
	}
	items, ok := decode.AsList(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("coordinate list #%d: CoordList is not a list", id)
	}
	out := make([]float32, 0, len(items)*3)
	for _, item := range items {
		triple, ok := decode.AsList(item)
		if !ok || len(triple) != 3 {
			return nil, fmt.Errorf("coordinate list #%d: expected xyz triple", id)
		}
		for _, v := range triple {
			f, _ := decode.AsFloat(v)
			out = append(out, float32(f))
		}
	}
	return out, nil
}

// triangleIndexList decodes entity's attribute attrIndex as a 1-based
// triangle index list, preferring the direct byte-scan fast path.
func triangleIndexList(dec *decode.Decoder, entityID int64, attrIndex int) ([]uint32, error) {
	if fast, err := dec.FastIndexTriples(entityID, attrIndex); err == nil {
		return fast, nil
	}
	e, err := dec.DecodeByID(entityID)
	if err != nil {
		return nil, err
	}
	items, ok := decode.AsList(e.Attr(attrIndex))
	if !ok {
		return nil, fmt.Errorf("entity #%d: CoordIndex is not a list", entityID)
	}
	out := make([]uint32, 0, len(items)*3)
	for _, item := range items {
		triple, ok := decode.AsList(item)
		if !ok || len(triple) != 3 {
			return nil, fmt.Errorf("entity #%d: expected index triple", entityID)
		}
		for _, v := range triple {
			n, _ := decode.AsInt(v)
			out = append(out, uint32(n-1))
		}
	}
	return out, nil
}

// PolygonalFaceSet ingests an IFCPOLYGONALFACESET: its Coordinates
// (attribute 0) plus a list of IFCINDEXEDPOLYGONALFACE entries (attribute
// 2) whose faces may be arbitrary polygons, not just triangles. Triangles
// and quads take a direct fan shortcut; 5+-vertex faces are ear-clipped
// after projecting onto the dominant axis plane of the face's Newell
// normal, matching the teacher corpus's earcut-via-2D-projection approach
// for non-planar-safe triangulation of concave faces (opening cutouts among
// them).
func PolygonalFaceSet(dec *decode.Decoder, entityID int64) (*mesh.Mesh, error) {
	e, err := dec.DecodeByID(entityID)
	if err != nil {
		return nil, fmt.Errorf("polygonal face set #%d: %w", entityID, err)
	}
	coordsRef, ok := decode.AsRef(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("polygonal face set #%d: missing Coordinates", entityID)
	}
	positions, err := coordinateList3D(dec, coordsRef)
	if err != nil {
		return nil, err
	}

	faceRefs, _ := decode.AsList(e.Attr(2))
	var indices []uint32
	for _, item := range faceRefs {
		faceRef, ok := decode.AsRef(item)
		if !ok {
			continue
		}
		face, err := dec.DecodeByID(faceRef)
		if err != nil {
			continue
		}
		faceIndices := faceCoordIndex(face)
		indices = append(indices, TriangulatePolygonFace(positions, faceIndices)...)
	}

	return &mesh.Mesh{
		Positions: positions,
		Normals:   make([]float32, len(positions)),
		Indices:   indices,
	}, nil
}

// faceCoordIndex reads an IFCINDEXEDPOLYGONALFACE's CoordIndex (attribute
// 0), 1-based.
func faceCoordIndex(face decode.DecodedEntity) []uint32 {
	items, _ := decode.AsList(face.Attr(0))
	out := make([]uint32, 0, len(items))
	for _, v := range items {
		n, ok := decode.AsInt(v)
		if !ok {
			continue
		}
		out = append(out, uint32(n-1))
	}
	return out
}

// TriangulatePolygonFace triangulates one polygon face given 0-based
// indices into positions (flat xyz triples). Triangle/quad faces use a
// direct fan; 5+-vertex faces are projected onto their Newell-normal's
// dominant axis plane and ear-clipped there.
func TriangulatePolygonFace(positions []float32, faceIndices []uint32) []uint32 {
	n := len(faceIndices)
	if n < 3 {
		return nil
	}
	if n == 3 {
		return []uint32{faceIndices[0], faceIndices[1], faceIndices[2]}
	}
	if n == 4 {
		a, b, c, d := faceIndices[0], faceIndices[1], faceIndices[2], faceIndices[3]
		return []uint32{a, b, c, a, c, d}
	}

	pts := make([]Vec3, n)
	ok := true
	for i, idx := range faceIndices {
		base := int(idx) * 3
		if base+2 >= len(positions) {
			ok = false
			break
		}
		pts[i] = Vec3{float64(positions[base]), float64(positions[base+1]), float64(positions[base+2])}
	}
	if !ok {
		return fanTriangulate(faceIndices)
	}

	axis := dominantAxis(newellNormal(pts))
	flat := projectToPlane(pts, axis)

	_, tris := Triangulate2D(flat, nil)
	if len(tris) == 0 {
		return fanTriangulate(faceIndices)
	}
	out := make([]uint32, 0, len(tris)*3)
	for _, t := range tris {
		out = append(out, faceIndices[t[0]], faceIndices[t[1]], faceIndices[t[2]])
	}
	return out
}

func fanTriangulate(faceIndices []uint32) []uint32 {
	out := make([]uint32, 0, (len(faceIndices)-2)*3)
	first := faceIndices[0]
	for j := 1; j < len(faceIndices)-1; j++ {
		out = append(out, first, faceIndices[j], faceIndices[j+1])
	}
	return out
}

// newellNormal computes a face normal for a possibly non-planar polygon via
// Newell's method, robust to noisy or slightly warped vertex data.
func newellNormal(pts []Vec3) Vec3 {
	var n Vec3
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// dominantAxis returns the index (0=X, 1=Y, 2=Z) of n's largest-magnitude
// component — the axis to drop when projecting the polygon to 2D.
func dominantAxis(n Vec3) int {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= ax && ay >= az:
		return 1
	default:
		return 2
	}
}

func projectToPlane(pts []Vec3, dropAxis int) []profile.Point2D {
	out := make([]profile.Point2D, len(pts))
	for i, p := range pts {
		switch dropAxis {
		case 0:
			out[i] = profile.Point2D{X: p.Y, Y: p.Z}
		case 1:
			out[i] = profile.Point2D{X: p.X, Y: p.Z}
		default:
			out[i] = profile.Point2D{X: p.X, Y: p.Y}
		}
	}
	return out
}
