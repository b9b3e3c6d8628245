package solid

import (
	"fmt"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/mesh"
	"github.com/ifcgeom/corepipe/profile"
)

// FacetedBrep ingests an IFCFACETEDBREP: its Outer attribute (an
// IFCCLOSEDSHELL) lists IFCFACE entities, each with one outer
// IFCFACEOUTERBOUND (and any number of inner IFCFACEBOUND holes) whose
// IFCPOLYLOOP gives a loop of IFCCARTESIANPOINT references. Each face is
// triangulated independently via the dominant-axis projection shared with
// tessellated face-set ingestion, since b-rep faces are not guaranteed
// planar in malformed input.
func FacetedBrep(dec *decode.Decoder, entityID int64) (*mesh.Mesh, error) {
	e, err := dec.DecodeByID(entityID)
	if err != nil {
		return nil, fmt.Errorf("faceted brep #%d: %w", entityID, err)
	}
	shellRef, ok := decode.AsRef(e.Attr(0))
	if !ok {
		return nil, fmt.Errorf("faceted brep #%d: missing Outer", entityID)
	}
	shell, err := dec.DecodeByID(shellRef)
	if err != nil {
		return nil, fmt.Errorf("faceted brep #%d: resolve closed shell: %w", entityID, err)
	}
	faceRefs, _ := decode.AsList(shell.Attr(0))

	out := mesh.New(len(faceRefs)*4, len(faceRefs)*2)
	for _, item := range faceRefs {
		faceRef, ok := decode.AsRef(item)
		if !ok {
			continue
		}
		face, err := dec.DecodeByID(faceRef)
		if err != nil {
			continue
		}
		faceMesh, err := triangulateBrepFace(dec, face)
		if err != nil {
			continue
		}
		out.Merge(faceMesh)
	}
	return out, nil
}

func triangulateBrepFace(dec *decode.Decoder, face decode.DecodedEntity) (*mesh.Mesh, error) {
	bounds, _ := decode.AsList(face.Attr(0))

	var outer []Vec3
	var holes [][]Vec3
	for i, item := range bounds {
		boundRef, ok := decode.AsRef(item)
		if !ok {
			continue
		}
		bound, err := dec.DecodeByID(boundRef)
		if err != nil {
			continue
		}
		loop, isOuter, err := polyLoopOf(dec, bound)
		if err != nil || len(loop) < 3 {
			continue
		}
		if outer == nil && (isOuter || i == 0) {
			outer = loop
		} else {
			holes = append(holes, loop)
		}
	}
	if len(outer) < 3 {
		return mesh.New(0, 0), nil
	}

	normal := newellNormal(outer)
	axis := dominantAxis(normal)

	flatOuter := projectToPlane(outer, axis)
	flatHoles := make([][]profile.Point2D, len(holes))
	for i, h := range holes {
		flatHoles[i] = projectToPlane(h, axis)
	}

	// Reverse the 3D loop alongside its projection whenever winding
	// normalization reverses the 2D one, so vertexOf's index order stays in
	// lockstep with Triangulate2D's combined-index order.
	if !profile.IsCCW(flatOuter) {
		flatOuter = profile.Reversed(flatOuter)
		outer = reverseVec3(outer)
	}
	for i := range flatHoles {
		if profile.IsCCW(flatHoles[i]) {
			flatHoles[i] = profile.Reversed(flatHoles[i])
			holes[i] = reverseVec3(holes[i])
		}
	}

	ring3D := append([]Vec3(nil), outer...)
	for _, h := range holes {
		ring3D = append(ring3D, h...)
	}

	m := mesh.New(len(ring3D), len(ring3D)-2)
	vertexOf := make([]uint32, len(ring3D))
	for i, p := range ring3D {
		vertexOf[i] = m.AddVertex(float32(p.X), float32(p.Y), float32(p.Z), float32(normal.X), float32(normal.Y), float32(normal.Z))
	}

	_, tris := Triangulate2D(flatOuter, flatHoles)
	for _, t := range tris {
		m.AddTriangle(vertexOf[t[0]], vertexOf[t[1]], vertexOf[t[2]])
	}
	return m, nil
}

// polyLoopOf resolves an IFCFACEOUTERBOUND/IFCFACEBOUND's Bound attribute
// (attribute 0, an IFCPOLYLOOP) into a point loop, plus whether the bound's
// type tag marks it as the face's outer boundary.
func polyLoopOf(dec *decode.Decoder, bound decode.DecodedEntity) ([]Vec3, bool, error) {
	loopRef, ok := decode.AsRef(bound.Attr(0))
	if !ok {
		return nil, false, fmt.Errorf("face bound missing Bound")
	}
	loop, err := dec.DecodeByID(loopRef)
	if err != nil {
		return nil, false, err
	}
	ptRefs, _ := decode.AsList(loop.Attr(0))
	pts := make([]Vec3, 0, len(ptRefs))
	for _, item := range ptRefs {
		ref, ok := decode.AsRef(item)
		if !ok {
			continue
		}
		pt, err := dec.DecodeByID(ref)
		if err != nil {
			continue
		}
		coords, ok := decode.AsList(pt.Attr(0))
		if !ok {
			continue
		}
		var v Vec3
		if len(coords) > 0 {
			v.X, _ = decode.AsFloat(coords[0])
		}
		if len(coords) > 1 {
			v.Y, _ = decode.AsFloat(coords[1])
		}
		if len(coords) > 2 {
			v.Z, _ = decode.AsFloat(coords[2])
		}
		pts = append(pts, v)
	}
	isOuter := bound.TypeTag == "IFCFACEOUTERBOUND"
	return pts, isOuter, nil
}

func reverseVec3(loop []Vec3) []Vec3 {
	out := make([]Vec3, len(loop))
	for i, p := range loop {
		out[len(loop)-1-i] = p
	}
	return out
}
