// Package splatwalk converts 3D Gaussian-splat point clouds into meshes:
// a screened-Poisson surface, a single dominant plane, or a walkable
// height-field NavMesh, selected by Settings.Mode.
package splatwalk

import (
	"fmt"

	"github.com/EricEisaman/splatwalk/decode"
	"github.com/EricEisaman/splatwalk/reconstruct"
)

// converter implements Converter.
type converter struct {
	settings Settings
}

// Converter runs repeated conversions against a fixed configuration,
// avoiding the need to re-specify a random source or Poisson solver on
// every call.
type Converter interface {
	// Convert decodes data and reconstructs a mesh under the Converter's
	// configured Settings.
	//
	// Parameters:
	//   - data: the full contents of a PLY or packed-Gaussian splat file
	//
	// Returns:
	//   - Mesh: the reconstructed mesh (zero-valued, not an error, on
	//     empty or fully-filtered input)
	//   - error: a *decode.Error, reconstruct.ErrNoPoissonSolver, any
	//     error returned by a configured PoissonSolver, or an error for an
	//     unknown Mode
	Convert(data []byte) (Mesh, error)

	// Settings returns the Converter's configuration.
	Settings() Settings
}

// NewConverter builds a Converter from the given mode and options.
func NewConverter(mode Mode, opts ...SettingsOption) Converter {
	return &converter{settings: NewSettings(mode, opts...)}
}

// NewConverterFromSettings builds a Converter from an already-assembled
// Settings value, applying defaults to any zero-valued field.
func NewConverterFromSettings(settings Settings) Converter {
	settings.applyDefaults()
	return &converter{settings: settings}
}

func (c *converter) Settings() Settings {
	return c.settings
}

func (c *converter) Convert(data []byte) (Mesh, error) {
	return convert(data, c.settings)
}

// Convert is the package-level convenience entry point: it decodes data
// and reconstructs a mesh in one call, applying Settings' defaults to any
// field left at its zero value.
func Convert(data []byte, settings Settings) (Mesh, error) {
	settings.applyDefaults()
	return convert(data, settings)
}

func convert(data []byte, settings Settings) (Mesh, error) {
	samples, err := decode.Decode(data)
	if err != nil {
		return Mesh{}, err
	}
	if len(samples) == 0 {
		return Mesh{}, nil
	}

	switch settings.Mode {
	case ModePoisson:
		params := reconstruct.DefaultPoissonParams
		if settings.PoissonParams != nil {
			params = *settings.PoissonParams
		}
		return reconstruct.ReconstructPoisson(samples, settings.PoissonSolver, params)
	case ModePlane:
		return reconstruct.ReconstructPlane(samples, settings.Rand), nil
	case ModeNavMesh:
		return reconstruct.ReconstructNavMesh(samples, navMeshParams(settings)), nil
	default:
		return Mesh{}, fmt.Errorf("splatwalk: unknown mode %d", settings.Mode)
	}
}

func navMeshParams(settings Settings) reconstruct.NavMeshParams {
	return reconstruct.NavMeshParams{
		VoxelTarget:  settings.VoxelTarget,
		MinAlpha:     settings.MinAlpha,
		MaxScale:     settings.MaxScale,
		NormalAlign:  settings.NormalAlign,
		RANSACThresh: settings.RANSACThresh,
		Rotation:     settings.Rotation,
		RegionMin:    settings.RegionMin,
		RegionMax:    settings.RegionMax,
		Rand:         settings.Rand,
	}
}
