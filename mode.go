package splatwalk

// Mode selects which reconstruction algorithm Convert runs over the
// decoded samples.
type Mode uint8

const (
	// ModePoisson forwards samples to an externally configured
	// PoissonSolver and returns its mesh verbatim.
	ModePoisson Mode = iota
	// ModePlane fits a single dominant plane by RANSAC and emits a
	// bounding quad over its inliers.
	ModePlane
	// ModeNavMesh runs the full height-field NavMesh pipeline.
	ModeNavMesh
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModePoisson:
		return "poisson"
	case ModePlane:
		return "plane"
	case ModeNavMesh:
		return "navmesh"
	default:
		return "unknown mode"
	}
}
