package splatwalk

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/EricEisaman/splatwalk/reconstruct"
)

// Settings configures one Convert call. Mode is the only required field;
// everything else falls back to the defaults below when left at its zero
// value.
type Settings struct {
	Mode Mode

	VoxelTarget  float64
	MinAlpha     float64
	MaxScale     float64
	NormalAlign  float64
	RANSACThresh float64

	Rotation  *[3]float64
	RegionMin *r3.Vec
	RegionMax *r3.Vec

	Rand          *rand.Rand
	PoissonSolver reconstruct.PoissonSolver
	PoissonParams *reconstruct.PoissonParams
}

// Default scalar values applied to any Settings field left at its zero
// value before a pipeline runs.
const (
	DefaultVoxelTarget  = 4000.0
	DefaultMinAlpha     = 0.05
	DefaultMaxScale     = 5.0
	DefaultNormalAlign  = 0.05
	DefaultRANSACThresh = 0.1
)

// SettingsOption is a functional option for building a Settings value.
// Use the With* functions to construct one, following the same
// option-builder convention as the rest of this module's constructors.
type SettingsOption func(*Settings)

// NewSettings builds a Settings for the given mode, applying options in
// order and then filling any zero-valued scalar field with its default.
func NewSettings(mode Mode, opts ...SettingsOption) Settings {
	s := Settings{Mode: mode}
	for _, opt := range opts {
		opt(&s)
	}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.VoxelTarget == 0 {
		s.VoxelTarget = DefaultVoxelTarget
	}
	if s.MinAlpha == 0 {
		s.MinAlpha = DefaultMinAlpha
	}
	if s.MaxScale == 0 {
		s.MaxScale = DefaultMaxScale
	}
	if s.NormalAlign == 0 {
		s.NormalAlign = DefaultNormalAlign
	}
	if s.RANSACThresh == 0 {
		s.RANSACThresh = DefaultRANSACThresh
	}
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(1))
	}
	if s.PoissonParams == nil {
		p := reconstruct.DefaultPoissonParams
		s.PoissonParams = &p
	}
}

// WithVoxelTarget sets the target grid cell count for NavMesh mode.
func WithVoxelTarget(v float64) SettingsOption {
	return func(s *Settings) { s.VoxelTarget = v }
}

// WithMinAlpha sets the opacity lower cutoff below which samples are
// dropped as noise.
func WithMinAlpha(v float64) SettingsOption {
	return func(s *Settings) { s.MinAlpha = v }
}

// WithMaxScale sets the upper cutoff on any scale axis above which samples
// are dropped as elongated artifacts.
func WithMaxScale(v float64) SettingsOption {
	return func(s *Settings) { s.MaxScale = v }
}

// WithNormalAlign sets the |normal . up| cutoff below which a sample does
// not contribute to height splatting.
func WithNormalAlign(v float64) SettingsOption {
	return func(s *Settings) { s.NormalAlign = v }
}

// WithRANSACThreshold sets the ground-plane inlier distance threshold.
func WithRANSACThreshold(v float64) SettingsOption {
	return func(s *Settings) { s.RANSACThresh = v }
}

// WithRotation sets an optional pre-rotation applied to every sample
// before orientation-dependent processing, as Euler angles (pitch, yaw,
// roll) in radians.
func WithRotation(pitch, yaw, roll float64) SettingsOption {
	return func(s *Settings) { s.Rotation = &[3]float64{pitch, yaw, roll} }
}

// WithRegion sets an optional axis-aligned region box; samples whose
// oriented, Y-negated position falls outside [min,max] are dropped.
func WithRegion(min, max r3.Vec) SettingsOption {
	return func(s *Settings) {
		s.RegionMin = &min
		s.RegionMax = &max
	}
}

// WithRand sets the random source driving every RANSAC trial. Supplying a
// seeded *rand.Rand makes Convert's output deterministic across calls.
func WithRand(r *rand.Rand) SettingsOption {
	return func(s *Settings) { s.Rand = r }
}

// WithPoissonSolver wires an implementation of the external
// screened-Poisson collaborator for mode 0. Convert returns
// reconstruct.ErrNoPoissonSolver if mode 0 runs without one.
func WithPoissonSolver(solver reconstruct.PoissonSolver) SettingsOption {
	return func(s *Settings) { s.PoissonSolver = solver }
}

// WithPoissonParams overrides the screened-Poisson reconstruction
// parameters forwarded to the configured PoissonSolver.
func WithPoissonParams(params reconstruct.PoissonParams) SettingsOption {
	return func(s *Settings) { s.PoissonParams = &params }
}
