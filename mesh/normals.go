package mesh

import "math"

// ComputeNormals overwrites m.Normals with per-vertex accumulated face
// normals: for every triangle, the (unnormalized) face normal is added to
// each of its three vertices' accumulators, then every accumulator is
// normalized. Degenerate triangles (near-zero area) do not contribute,
// which keeps isolated degenerate faces from corrupting otherwise valid
// vertex normals. Running this twice leaves the mesh unchanged (C23
// idempotence).
func (m *Mesh) ComputeNormals() {
	verts := m.VertexCount()
	if verts == 0 {
		return
	}
	acc := make([][3]float64, verts)

	for t := 0; t+2 < len(m.Indices); t += 3 {
		ia, ib, ic := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		ax, ay, az := m.pos64(ia)
		bx, by, bz := m.pos64(ib)
		cx, cy, cz := m.pos64(ic)

		ux, uy, uz := bx-ax, by-ay, bz-az
		vx, vy, vz := cx-ax, cy-ay, cz-az

		nx := uy*vz - uz*vy
		ny := uz*vx - ux*vz
		nz := ux*vy - uy*vx

		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if length < 1e-20 {
			continue // degenerate triangle, no contribution
		}

		acc[ia][0] += nx
		acc[ia][1] += ny
		acc[ia][2] += nz
		acc[ib][0] += nx
		acc[ib][1] += ny
		acc[ib][2] += nz
		acc[ic][0] += nx
		acc[ic][1] += ny
		acc[ic][2] += nz
	}

	if len(m.Normals) != verts*3 {
		m.Normals = make([]float32, verts*3)
	}
	for i := 0; i < verts; i++ {
		nx, ny, nz := acc[i][0], acc[i][1], acc[i][2]
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if length < 1e-20 {
			// No contributing face; leave a stable default rather than NaN.
			m.Normals[i*3] = 0
			m.Normals[i*3+1] = 0
			m.Normals[i*3+2] = 1
			continue
		}
		m.Normals[i*3] = float32(nx / length)
		m.Normals[i*3+1] = float32(ny / length)
		m.Normals[i*3+2] = float32(nz / length)
	}
}

func (m *Mesh) pos64(i uint32) (x, y, z float64) {
	base := int(i) * 3
	return float64(m.Positions[base]), float64(m.Positions[base+1]), float64(m.Positions[base+2])
}
