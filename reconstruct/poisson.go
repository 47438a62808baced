package reconstruct

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/EricEisaman/splatwalk/decode"
)

// ErrNoPoissonSolver is returned by ReconstructPoisson when mode 0 is
// invoked without a PoissonSolver configured. The screened-Poisson solver
// itself is an external collaborator; this package defines only the
// adapter seam, not a reimplementation, so calling mode 0 unwired is a
// caller configuration error rather than something to silently approximate.
var ErrNoPoissonSolver = errors.New("reconstruct: mode 0 requires a PoissonSolver (see splatwalk.WithPoissonSolver)")

// PoissonParams is the fixed parameter set passed to the screened-Poisson
// library: screening weight, reconstruction depth, full-depth, and
// samples-per-node.
type PoissonParams struct {
	Screening      float64
	Depth          int
	FullDepth      int
	SamplesPerNode int
}

// DefaultPoissonParams are the screened-Poisson parameters known to produce
// stable reconstructions for splat-density point clouds: no screening bias,
// depth 4 on both the adaptive and full octree levels, and 10 samples per
// node.
var DefaultPoissonParams = PoissonParams{Screening: 0.0, Depth: 4, FullDepth: 4, SamplesPerNode: 10}

// PoissonSolver is the seam over the external screened-Poisson library,
// treated as a black box with a known signature; callers wire a real
// implementation (a cgo binding, a WASM module, an RPC client) via the
// root package's WithPoissonSolver option.
type PoissonSolver interface {
	Reconstruct(points, normals []r3.Vec, params PoissonParams) (vertices []r3.Vec, indices []uint32, err error)
}

// ReconstructPoisson implements mode 0: it forwards surviving samples'
// positions and normals to the configured PoissonSolver and returns its
// mesh verbatim (with the Y-negation the shared output contract requires,
// since external solvers operate in the splat's native right-handed frame).
// Returns ErrNoPoissonSolver if solver is nil.
func ReconstructPoisson(samples []decode.Sample, solver PoissonSolver, params PoissonParams) (Mesh, error) {
	if solver == nil {
		return Mesh{}, ErrNoPoissonSolver
	}

	points := make([]r3.Vec, 0, len(samples))
	normals := make([]r3.Vec, 0, len(samples))
	for _, s := range samples {
		points = append(points, s.Position)
		normals = append(normals, s.Normal)
	}
	if len(points) == 0 {
		return emptyMesh(), nil
	}

	rawVertices, indices, err := solver.Reconstruct(points, normals, params)
	if err != nil {
		return Mesh{}, err
	}

	vertices := make([]float32, 0, len(rawVertices)*3)
	for _, v := range rawVertices {
		vertices = append(vertices, float32(v.X), float32(-v.Y), float32(v.Z))
	}

	return newMesh(vertices, indices), nil
}
