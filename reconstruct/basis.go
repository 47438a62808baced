package reconstruct

import "gonum.org/v1/gonum/spatial/r3"

// Plane is a plane in Hessian normal form: a unit Normal and an offset D
// such that, for any point p on the plane, Dot(Normal, p) + D == 0.
type Plane struct {
	Normal r3.Vec
	D      float64
}

// distance returns the unsigned distance from p to the plane.
func (pl Plane) distance(p r3.Vec) float64 {
	v := r3.Dot(pl.Normal, p) + pl.D
	if v < 0 {
		return -v
	}
	return v
}

// planeFromPoints fits the plane through three points. It returns ok=false
// if the points are (nearly) colinear, since no plane normal can be derived
// from a minimal RANSAC sample in that case.
func planeFromPoints(p1, p2, p3 r3.Vec) (Plane, bool) {
	v1 := r3.Sub(p2, p1)
	v2 := r3.Sub(p3, p1)
	cross := r3.Cross(v1, v2)
	if r3.Norm(cross) < 1e-6 {
		return Plane{}, false
	}
	normal := r3.Unit(cross)
	d := -r3.Dot(normal, p1)
	return Plane{Normal: normal, D: d}, true
}

// Basis is an orthonormal (Tangent, Bitangent, Up) frame built from a ground
// plane normal, used to project 3D samples onto a 2D grid.
type Basis struct {
	Tangent, Bitangent, Up r3.Vec
}

// computeBasis builds the projection basis for a given up vector: the
// tangent seed is the X axis unless up is nearly parallel to it
// (|up.X| >= 0.9), in which case Y is used instead.
func computeBasis(up r3.Vec) Basis {
	seed := r3.Vec{X: 1, Y: 0, Z: 0}
	if abs(up.X) >= 0.9 {
		seed = r3.Vec{X: 0, Y: 1, Z: 0}
	}
	tangent := r3.Unit(r3.Sub(seed, r3.Scale(r3.Dot(up, seed), up)))
	bitangent := r3.Cross(up, tangent)
	return Basis{Tangent: tangent, Bitangent: bitangent, Up: up}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
