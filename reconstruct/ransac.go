package reconstruct

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// ransacParams configures one run of plane RANSAC. Two distinct parameter
// sets are used in this repository: the standalone plane mode uses a loose
// threshold and large iteration budget, while the NavMesh ground-plane
// search uses the caller-tunable RANSACThreshold with fewer iterations.
type ransacParams struct {
	threshold  float64
	iterations int
}

// fitPlaneRANSAC runs randomized minimal-sample plane fitting over points,
// returning the plane with the most inliers (|Normal.p + D| < threshold)
// across params.iterations trials. Samples that are (nearly) colinear are
// skipped without consuming an extra trial's worth of signal; they simply
// can't win. Ties are broken by keeping the first plane seen with the
// maximum count: a strict ">" comparison against the running best achieves
// this since later equal-inlier planes never replace it.
//
// Returns ok=false if no trial ever produced a valid (non-colinear) plane.
func fitPlaneRANSAC(points []r3.Vec, params ransacParams, rng *rand.Rand) (Plane, bool) {
	n := len(points)
	if n < 3 {
		return Plane{}, false
	}

	var best Plane
	found := false
	maxInliers := -1

	for trial := 0; trial < params.iterations; trial++ {
		i1, i2, i3 := rng.Intn(n), rng.Intn(n), rng.Intn(n)
		if i1 == i2 || i2 == i3 || i1 == i3 {
			continue
		}
		plane, ok := planeFromPoints(points[i1], points[i2], points[i3])
		if !ok {
			continue
		}

		inliers := 0
		for _, p := range points {
			if plane.distance(p) < params.threshold {
				inliers++
			}
		}
		if inliers > maxInliers {
			maxInliers = inliers
			best = plane
			found = true
		}
	}

	return best, found
}
