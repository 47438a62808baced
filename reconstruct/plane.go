package reconstruct

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/EricEisaman/splatwalk/decode"
)

// planeRANSACThreshold and planeRANSACIterations are mode 1's fixed RANSAC
// parameters, distinct from the NavMesh ground search.
const (
	planeRANSACThreshold  = 0.2
	planeRANSACIterations = 2000
)

// ReconstructPlane implements mode 1: fit a single dominant plane by RANSAC
// and emit an axis-aligned (in plane-space) bounding quad over its inliers.
// Returns an empty mesh if RANSAC never finds a plane.
func ReconstructPlane(samples []decode.Sample, rng *rand.Rand) Mesh {
	positions := make([]r3.Vec, 0, len(samples))
	for _, s := range samples {
		positions = append(positions, s.Position)
	}
	if len(positions) < 3 {
		return emptyMesh()
	}

	plane, ok := fitPlaneRANSAC(positions, ransacParams{threshold: planeRANSACThreshold, iterations: planeRANSACIterations}, rng)
	if !ok {
		return emptyMesh()
	}

	basis := computeBasis(plane.Normal)

	minU, maxU := math.MaxFloat64, -math.MaxFloat64
	minV, maxV := math.MaxFloat64, -math.MaxFloat64
	count := 0
	for _, p := range positions {
		if plane.distance(p) >= planeRANSACThreshold {
			continue
		}
		u := r3.Dot(p, basis.Tangent)
		v := r3.Dot(p, basis.Bitangent)
		minU, maxU = math.Min(minU, u), math.Max(maxU, u)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		count++
	}
	if count == 0 {
		return emptyMesh()
	}

	origin := r3.Scale(-plane.D, plane.Normal)
	corner := func(u, v float64) r3.Vec {
		p := r3.Add(r3.Add(r3.Scale(u, basis.Tangent), r3.Scale(v, basis.Bitangent)), origin)
		return p
	}

	corners := []r3.Vec{
		corner(minU, minV),
		corner(maxU, minV),
		corner(maxU, maxV),
		corner(minU, maxV),
	}

	// Y is negated on emit to match the shared, left-handed output
	// contract all three reconstruction modes share.
	vertices := make([]float32, 0, 12)
	for _, c := range corners {
		vertices = append(vertices, float32(c.X), float32(-c.Y), float32(c.Z))
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	return newMesh(vertices, indices)
}
