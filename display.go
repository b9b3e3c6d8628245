package corepipe

// ToDisplayFrame returns a copy of m with its native Z-up frame (the core's
// output, and IFC's own convention) converted to Y-up: X unchanged, new-Y =
// old-Z, new-Z = -old-Y. The core itself never applies this conversion —
// only a caller feeding a Y-up display or rendering pipeline should, at the
// boundary where its meshes leave corepipe.
func ToDisplayFrame(m Mesh) Mesh {
	out := Mesh{
		ElementID: m.ElementID,
		TypeTag:   m.TypeTag,
		Positions: append([]float32(nil), m.Positions...),
		Normals:   append([]float32(nil), m.Normals...),
		Indices:   m.Indices,
		Color:     m.Color,
	}
	flipZUpToYUp(out.Positions)
	flipZUpToYUp(out.Normals)
	return out
}

func flipZUpToYUp(buf []float32) {
	for i := 0; i < len(buf); i += 3 {
		y, z := buf[i+1], buf[i+2]
		buf[i+1] = z
		buf[i+2] = -y
	}
}
