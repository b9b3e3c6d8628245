// Package placement resolves IFC local-placement hierarchies to composed
// 4x4 transforms and handles the mapped-item cartesian transformation
// operator used by mapped representations.
package placement

import (
	"math"

	"github.com/ifcgeom/corepipe/decode"
)

// MaxDepth bounds placement-chain recursion to guard against cyclic parent
// references in malformed files (spec invariant: depth <= 100).
const MaxDepth = 100

// Matrix is a 4x4 row-major transform, identity by default.
type Matrix [16]float64

// Identity returns the 4x4 identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Resolver resolves local-placement entities to world transforms, caching
// results for the lifetime of a processing session (placement caches live
// for the session per spec.md's data-model lifecycle rules).
type Resolver struct {
	dec   *decode.Decoder
	cache map[int64]Matrix
	diags []string
}

// NewResolver creates a placement Resolver over dec.
func NewResolver(dec *decode.Decoder) *Resolver {
	return &Resolver{dec: dec, cache: make(map[int64]Matrix, 64)}
}

// Diagnostics returns messages recorded when depth bounds were hit.
func (r *Resolver) Diagnostics() []string { return r.diags }

// Transform resolves a local-placement entity's composed world transform,
// parent_transform * local_transform, recursively. Exceeding MaxDepth
// returns identity and records a diagnostic (spec.md testable property 5).
func (r *Resolver) Transform(placementID int64) Matrix {
	if placementID == 0 {
		return Identity()
	}
	if m, ok := r.cache[placementID]; ok {
		return m
	}
	m, exceeded := r.resolve(placementID, 0)
	if exceeded {
		r.diags = append(r.diags, "placement depth exceeded MAX_PLACEMENT_DEPTH, returning identity")
		m = Identity()
	}
	r.cache[placementID] = m
	return m
}

// resolve composes the chain starting at placementID. When the chain
// exceeds MaxDepth, exceeded is true and the whole composition (not just
// the deepest link) is discarded in favor of identity by the caller, per
// spec.md testable property 5.
func (r *Resolver) resolve(placementID int64, depth int) (m Matrix, exceeded bool) {
	if depth > MaxDepth {
		return Identity(), true
	}
	e, err := r.dec.DecodeByID(placementID)
	if err != nil || e.TypeTag != "IFCLOCALPLACEMENT" {
		return Identity(), false
	}

	parent := Identity()
	if parentRef, ok := decode.AsRef(e.Attr(0)); ok {
		p, exceeded := r.resolve(parentRef, depth+1)
		if exceeded {
			return Identity(), true
		}
		parent = p
	}

	local := Identity()
	if axisRef, ok := decode.AsRef(e.Attr(1)); ok {
		axisEntity, err := r.dec.DecodeByID(axisRef)
		if err == nil && axisEntity.TypeTag == "IFCAXIS2PLACEMENT3D" {
			local = axis2Placement3D(r.dec, axisEntity)
		}
	}

	return Multiply(parent, local), false
}

// axis2Placement3D builds a right-handed 4x4 transform from an
// IFCAXIS2PLACEMENT3D: Location, optional Axis (Z direction), optional
// RefDirection. The third axis is the cross product of Z and the
// re-orthogonalized reference direction.
func axis2Placement3D(dec *decode.Decoder, e decode.DecodedEntity) Matrix {
	loc := vec3Of(dec, e.Attr(0))

	zAxis := [3]float64{0, 0, 1}
	if axisRef, ok := decode.AsRef(e.Attr(1)); ok {
		zAxis = normalize(vec3Of(dec, decode.Ref{ID: axisRef}))
	}

	xRef := [3]float64{1, 0, 0}
	if refRef, ok := decode.AsRef(e.Attr(2)); ok {
		xRef = vec3Of(dec, decode.Ref{ID: refRef})
	}
	xAxis := orthogonalize(xRef, zAxis)
	yAxis := cross(zAxis, xAxis)

	return Matrix{
		xAxis[0], yAxis[0], zAxis[0], loc[0],
		xAxis[1], yAxis[1], zAxis[1], loc[1],
		xAxis[2], yAxis[2], zAxis[2], loc[2],
		0, 0, 0, 1,
	}
}

// ResolveAxisPlacement3D decodes entityID and, if it is an
// IFCAXIS2PLACEMENT3D, returns its transform. Used wherever an attribute
// refers directly to an axis placement rather than through an
// IFCLOCALPLACEMENT chain (IfcExtrudedAreaSolid.Position,
// IfcRevolvedAreaSolid.Position, IfcPlane.Position,
// IfcRepresentationMap.MappingOrigin). A non-axis-placement entity or a
// decode failure yields Identity.
func ResolveAxisPlacement3D(dec *decode.Decoder, entityID int64) Matrix {
	if entityID == 0 {
		return Identity()
	}
	e, err := dec.DecodeByID(entityID)
	if err != nil || e.TypeTag != "IFCAXIS2PLACEMENT3D" {
		return Identity()
	}
	return axis2Placement3D(dec, e)
}

// CartesianTransformOperator handles the mapped-item transform: an optional
// X and Z axis (Y derived), optional uniform scale, and a local origin.
func CartesianTransformOperator(dec *decode.Decoder, e decode.DecodedEntity) Matrix {
	xAxis := [3]float64{1, 0, 0}
	if ref, ok := decode.AsRef(e.Attr(0)); ok {
		xAxis = normalize(vec3Of(dec, decode.Ref{ID: ref}))
	}
	zAxis := [3]float64{0, 0, 1}
	if ref, ok := decode.AsRef(e.Attr(1)); ok {
		zAxis = normalize(vec3Of(dec, decode.Ref{ID: ref}))
	}
	loc := vec3Of(dec, e.Attr(2))

	scale := 1.0
	if s, ok := decode.AsFloat(e.Attr(3)); ok {
		scale = s
	}

	xAxis = orthogonalize(xAxis, zAxis)
	yAxis := cross(zAxis, xAxis)

	return Matrix{
		xAxis[0] * scale, yAxis[0] * scale, zAxis[0] * scale, loc[0],
		xAxis[1] * scale, yAxis[1] * scale, zAxis[1] * scale, loc[1],
		xAxis[2] * scale, yAxis[2] * scale, zAxis[2] * scale, loc[2],
		0, 0, 0, 1,
	}
}

func vec3Of(dec *decode.Decoder, v decode.Value) [3]float64 {
	ref, ok := decode.AsRef(v)
	if !ok {
		return [3]float64{}
	}
	e, err := dec.DecodeByID(ref)
	if err != nil {
		return [3]float64{}
	}
	coords, ok := decode.AsList(e.Attr(0))
	if !ok {
		return [3]float64{}
	}
	var out [3]float64
	for i := 0; i < len(coords) && i < 3; i++ {
		out[i], _ = decode.AsFloat(coords[i])
	}
	return out
}

func normalize(v [3]float64) [3]float64 {
	length := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length < 1e-12 {
		return [3]float64{0, 0, 1}
	}
	return [3]float64{v[0] / length, v[1] / length, v[2] / length}
}

func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// orthogonalize removes the component of ref parallel to z, then
// normalizes, so the reference direction is exactly perpendicular to z.
func orthogonalize(ref, z [3]float64) [3]float64 {
	z = normalize(z)
	d := dot(ref, z)
	ortho := [3]float64{ref[0] - d*z[0], ref[1] - d*z[1], ref[2] - d*z[2]}
	length := math.Sqrt(ortho[0]*ortho[0] + ortho[1]*ortho[1] + ortho[2]*ortho[2])
	if length < 1e-12 {
		// ref was parallel to z; fall back to any vector perpendicular to z.
		fallback := [3]float64{1, 0, 0}
		if math.Abs(z[0]) > 0.9 {
			fallback = [3]float64{0, 1, 0}
		}
		return orthogonalize(fallback, z)
	}
	return [3]float64{ortho[0] / length, ortho[1] / length, ortho[2] / length}
}

// Multiply returns a*b in row-major 4x4 form (a applied after b, i.e. a is
// the outer/parent transform).
func Multiply(a, b Matrix) Matrix {
	var out Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[row*4+k] * b[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// Translation returns the matrix's translation column (x, y, z).
func (m Matrix) Translation() (x, y, z float64) {
	return m[3], m[7], m[11]
}

// TransformPoint applies m to a point, including translation.
func (m Matrix) TransformPoint(x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[1]*y + m[2]*z + m[3],
		m[4]*x + m[5]*y + m[6]*z + m[7],
		m[8]*x + m[9]*y + m[10]*z + m[11]
}

// TransformDirection applies m's 3x3 rotation block to a direction vector,
// ignoring translation, and returns it normalized.
func (m Matrix) TransformDirection(x, y, z float64) (float64, float64, float64) {
	nx := m[0]*x + m[1]*y + m[2]*z
	ny := m[4]*x + m[5]*y + m[6]*z
	nz := m[8]*x + m[9]*y + m[10]*z
	v := normalize([3]float64{nx, ny, nz})
	return v[0], v[1], v[2]
}

// Invert computes m's inverse via Gauss-Jordan elimination on the augmented
// 4x8 matrix. ok is false if m is singular (within a small tolerance), in
// which case the zero Matrix is returned.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	var a [4][8]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			a[r][c] = m[r*4+c]
		}
		a[r][4+r] = 1
	}
	for col := 0; col < 4; col++ {
		pivot := col
		best := math.Abs(a[col][col])
		for r := col + 1; r < 4; r++ {
			if v := math.Abs(a[r][col]); v > best {
				pivot, best = r, v
			}
		}
		if best < 1e-12 {
			return Matrix{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]

		pv := a[col][col]
		for c := 0; c < 8; c++ {
			a[col][c] /= pv
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			factor := a[r][col]
			for c := 0; c < 8; c++ {
				a[r][c] -= factor * a[col][c]
			}
		}
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			inv[r*4+c] = a[r][4+c]
		}
	}
	return inv, true
}
