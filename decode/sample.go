// Package decode turns raw splat bytes (PLY or packed-Gaussian "NGSP") into
// a flat list of oriented point samples that the reconstruction pipeline
// consumes. Decoding is format-agnostic from the caller's perspective: both
// paths converge on the same Sample shape.
package decode

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is one decoded splat: a position, a derived unit normal, the
// per-axis Gaussian extents ("scale"), and an opacity in [0,1]. Samples are
// immutable once decoded.
type Sample struct {
	Position r3.Vec
	Normal   r3.Vec
	Scale    r3.Vec
	Opacity  float64
}

// deriveNormal rotates the canonical +Z axis by the unit quaternion
// (w, x, y, z), matching the splat's own training-frame convention. The
// caller is responsible for normalizing the quaternion first.
//
// Parameters:
//   - w, x, y, z: quaternion components
//
// Returns:
//   - r3.Vec: the rotated (0,0,1) axis, used as the splat's surface normal
func deriveNormal(w, x, y, z float64) r3.Vec {
	return r3.Vec{
		X: 2 * (x*z + y*w),
		Y: 2 * (y*z - x*w),
		Z: 1 - 2*(x*x+y*y),
	}
}

// normalizeQuaternion returns a unit quaternion for (w,x,y,z). If the
// magnitude is zero (degenerate input), it returns the identity quaternion
// so deriveNormal yields (0,0,1) rather than NaN.
func normalizeQuaternion(w, x, y, z float64) (nw, nx, ny, nz float64) {
	mag := w*w + x*x + y*y + z*z
	if mag <= 0 {
		return 1, 0, 0, 0
	}
	inv := 1.0 / math.Sqrt(mag)
	return w * inv, x * inv, y * inv, z * inv
}

// isNaNVec reports whether any component of p is NaN.
func isNaNVec(p r3.Vec) bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z)
}
