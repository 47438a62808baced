package reconstruct

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/EricEisaman/splatwalk/decode"
)

// minFaceUpDot is cos(45deg): a NavMesh triangle's unit normal must have at
// least this dot product with true vertical (so the face is tilted no more
// than 45 degrees from horizontal) to be emitted as walkable.
const minFaceUpDot = 0.707

// worldUp is the fixed vertical reference (gravity, after any configured
// pre-orientation) that walkability is measured against. It is deliberately
// distinct from the ground-plane normal findGroundUp recovers: that normal
// drives basis construction and height splatting, but a scene with no real
// floor (a lone wall, say) would otherwise reconstruct a surface that is
// trivially "flat" -- and so trivially walkable -- in its own basis. Pinning
// the steepness test to worldUp is what lets a vertical wall still come out
// rejected.
var worldUp = r3.Vec{X: 0, Y: 1, Z: 0}

// navMeshGroundIterations is the NavMesh ground-plane search budget,
// distinct from the standalone plane mode's RANSAC parameters.
const navMeshGroundIterations = 1000

// NavMeshParams configures the Voxel NavMesh reconstructor. The zero value
// is intentionally NOT a valid configuration: VoxelTarget, MinAlpha,
// MaxScale, NormalAlign, RANSACThresh, and Rand must all be set by the
// caller -- see the root package's Settings defaults.
type NavMeshParams struct {
	VoxelTarget    float64
	MinAlpha       float64
	MaxScale       float64
	NormalAlign    float64
	RANSACThresh   float64
	Rotation       *[3]float64 // pitch, yaw, roll, radians
	RegionMin      *r3.Vec
	RegionMax      *r3.Vec
	Rand           *rand.Rand
}

// ReconstructNavMesh runs the full NavMesh pipeline: pre-orientation, region
// filtering, floater filtering, ground-plane RANSAC, basis construction,
// grid sizing, height splatting, corner resolution, face emission with
// walkability rejection, and finally connectivity filtering to the single
// largest component.
func ReconstructNavMesh(samples []decode.Sample, params NavMeshParams) Mesh {
	if len(samples) == 0 {
		return emptyMesh()
	}

	points := make([]point, 0, len(samples))
	for _, s := range samples {
		pos, normal := s.Position, s.Normal
		if params.Rotation != nil {
			pitch, yaw, roll := params.Rotation[0], params.Rotation[1], params.Rotation[2]
			pos = rotateEuler(pos, pitch, yaw, roll)
			normal = rotateEuler(normal, pitch, yaw, roll)
		}
		points = append(points, point{pos: pos, normal: normal, scale: s.Scale, opacity: s.Opacity})
	}

	if params.RegionMin != nil && params.RegionMax != nil {
		points = filterRegion(points, *params.RegionMin, *params.RegionMax)
	}
	points = filterFloaters(points, params.MinAlpha, params.MaxScale)
	if len(points) == 0 {
		return emptyMesh()
	}

	up := findGroundUp(points, params.RANSACThresh, params.Rand)
	basis := computeBasis(up)

	projected := projectPoints(points, basis)
	if len(projected) == 0 {
		return emptyMesh()
	}

	g := buildGridFromProjection(projected, params.VoxelTarget)
	g.upVec = basis.Up
	splatHeights(g, projected, params.NormalAlign)

	vertices, indices := emitFaces(g, basis)
	if len(indices) == 0 {
		return emptyMesh()
	}

	return filterLargestComponent(vertices, indices)
}

// point is the pipeline's working representation of a sample after
// pre-orientation: position, normal, per-axis scale, and opacity.
type point struct {
	pos, normal r3.Vec
	scale       r3.Vec
	opacity     float64
}

// rotateEuler applies R = Rx * Ry * Rz (intrinsic pitch, yaw, roll order) to
// v.
func rotateEuler(v r3.Vec, pitch, yaw, roll float64) r3.Vec {
	v = rotateZ(v, roll)
	v = rotateY(v, yaw)
	v = rotateX(v, pitch)
	return v
}

func rotateX(v r3.Vec, a float64) r3.Vec {
	c, s := math.Cos(a), math.Sin(a)
	return r3.Vec{X: v.X, Y: c*v.Y - s*v.Z, Z: s*v.Y + c*v.Z}
}

func rotateY(v r3.Vec, a float64) r3.Vec {
	c, s := math.Cos(a), math.Sin(a)
	return r3.Vec{X: c*v.X + s*v.Z, Y: v.Y, Z: -s*v.X + c*v.Z}
}

func rotateZ(v r3.Vec, a float64) r3.Vec {
	c, s := math.Cos(a), math.Sin(a)
	return r3.Vec{X: c*v.X - s*v.Y, Y: s*v.X + c*v.Y, Z: v.Z}
}

// filterRegion drops samples whose oriented position, after Y-negation to
// match the downstream renderer's convention, falls outside [min,max]. The
// negation is local to this check only -- it is not carried into the rest
// of the pipeline, which works in the sample's native orientation until
// final mesh emission.
func filterRegion(points []point, min, max r3.Vec) []point {
	kept := points[:0:0]
	for _, p := range points {
		check := r3.Vec{X: p.pos.X, Y: -p.pos.Y, Z: p.pos.Z}
		if check.X < min.X || check.X > max.X {
			continue
		}
		if check.Y < min.Y || check.Y > max.Y {
			continue
		}
		if check.Z < min.Z || check.Z > max.Z {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// filterFloaters drops low-opacity noise and overly elongated artifacts.
func filterFloaters(points []point, minAlpha, maxScale float64) []point {
	kept := points[:0:0]
	for _, p := range points {
		if p.opacity <= minAlpha {
			continue
		}
		if maxAxis(p.scale) >= maxScale {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func maxAxis(v r3.Vec) float64 {
	m := v.X
	if v.Y > m {
		m = v.Y
	}
	if v.Z > m {
		m = v.Z
	}
	return m
}

// findGroundUp runs ground-plane RANSAC and returns the up vector, flipped
// so up.Y >= 0. Falls back to +Y on RANSAC failure.
func findGroundUp(points []point, threshold float64, rng *rand.Rand) r3.Vec {
	positions := make([]r3.Vec, len(points))
	for i, p := range points {
		positions[i] = p.pos
	}

	plane, ok := fitPlaneRANSAC(positions, ransacParams{threshold: threshold, iterations: navMeshGroundIterations}, rng)
	if !ok {
		return r3.Vec{X: 0, Y: 1, Z: 0}
	}
	up := plane.Normal
	if up.Y < 0 {
		up = r3.Scale(-1, up)
	}
	return up
}

// projectedPoint is a point projected into the ground basis's (u, v, h)
// coordinates, retained alongside the data splatting needs.
type projectedPoint struct {
	u, v, h float64
	normal  r3.Vec
	scale   r3.Vec
	opacity float64
}

func projectPoints(points []point, basis Basis) []projectedPoint {
	out := make([]projectedPoint, len(points))
	for i, p := range points {
		out[i] = projectedPoint{
			u:       r3.Dot(p.pos, basis.Tangent),
			v:       r3.Dot(p.pos, basis.Bitangent),
			h:       r3.Dot(p.pos, basis.Up),
			normal:  p.normal,
			scale:   p.scale,
			opacity: p.opacity,
		}
	}
	return out
}

func buildGridFromProjection(points []projectedPoint, voxelTarget float64) *heightGrid {
	minU, maxU := points[0].u, points[0].u
	minV, maxV := points[0].v, points[0].v
	for _, p := range points[1:] {
		minU, maxU = math.Min(minU, p.u), math.Max(maxU, p.u)
		minV, maxV = math.Min(minV, p.v), math.Max(maxV, p.v)
	}
	return newHeightGrid(minU, maxU, minV, maxV, voxelTarget)
}

// splatHeights splats each sufficiently up-aligned point's height to nearby
// grid corners with Gaussian falloff.
func splatHeights(g *heightGrid, points []projectedPoint, normalAlign float64) {
	for _, p := range points {
		align := abs(r3.Dot(p.normal, g.up()))
		if align < normalAlign {
			continue
		}
		uNorm, vNorm, col, row := g.project(p.u, p.v)
		baseWeight := p.opacity * align * align

		meanScale := (p.scale.X + p.scale.Y + p.scale.Z) / 3.0
		radius := int(math.Ceil(meanScale / g.cellSize))
		if radius < 0 {
			radius = 0
		}
		if radius > 3 {
			radius = 3
		}

		g.splat(col, row, uNorm, vNorm, p.h, baseWeight, radius)
	}
}

// up returns the ground normal that ReconstructNavMesh stores in upVec right
// after building the grid, so splatHeights doesn't need the Basis threaded
// through separately. emitFaces does not use it: it takes the Basis as an
// argument and measures walkability against worldUp.
func (g *heightGrid) up() r3.Vec {
	return g.upVec
}

// emitFaces reconstructs 3D corner positions, rejects cells with missing
// coverage, degenerate triangles, or insufficient steepness, deduplicates
// corner vertices, and winds each surviving quad's two triangles clockwise
// as seen from +up with Y negated to match the left-handed downstream
// renderer.
func emitFaces(g *heightGrid, basis Basis) ([]float32, []uint32) {
	vertexOf := make(map[int]uint32)
	var vertices []float32
	var indices []uint32

	cornerPos := func(c, r int) (r3.Vec, bool) {
		h, ok := g.height(c, r)
		if !ok {
			return r3.Vec{}, false
		}
		u := g.minU + float64(c)*g.cellSize
		v := g.minV + float64(r)*g.cellSize
		p := r3.Add(r3.Add(r3.Scale(u, basis.Tangent), r3.Scale(v, basis.Bitangent)), r3.Scale(h, basis.Up))
		return p, true
	}

	vertexIndex := func(c, r int, p r3.Vec) uint32 {
		key := r*(g.cols+2) + c
		if idx, ok := vertexOf[key]; ok {
			return idx
		}
		idx := uint32(len(vertices) / 3)
		vertices = append(vertices, float32(p.X), float32(-p.Y), float32(p.Z))
		vertexOf[key] = idx
		return idx
	}

	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			p00, ok00 := cornerPos(col, row)
			p10, ok10 := cornerPos(col+1, row)
			p11, ok11 := cornerPos(col+1, row+1)
			p01, ok01 := cornerPos(col, row+1)
			if !ok00 || !ok10 || !ok11 || !ok01 {
				continue
			}

			if !validTriangle(p00, p11, p10, worldUp) || !validTriangle(p00, p01, p11, worldUp) {
				continue
			}

			i00 := vertexIndex(col, row, p00)
			i10 := vertexIndex(col+1, row, p10)
			i11 := vertexIndex(col+1, row+1, p11)
			i01 := vertexIndex(col, row+1, p01)

			indices = append(indices, i00, i11, i10)
			indices = append(indices, i00, i01, i11)
		}
	}

	return vertices, indices
}

// validTriangle rejects degenerate triangles (near-zero area) and triangles
// that aren't steep enough to be walkable. a, b, c must be in the clockwise
// (as seen from +up) winding order emitFaces uses; the cross product is
// taken edge-reversed so a flat, upward-facing triangle yields +up rather
// than the -up a naive Cross(b-a, c-a) would give for that winding.
func validTriangle(a, b, c, up r3.Vec) bool {
	normal := r3.Cross(r3.Sub(c, a), r3.Sub(b, a))
	mag := r3.Norm(normal)
	if mag < 1e-6 {
		return false
	}
	unit := r3.Scale(1.0/mag, normal)
	return r3.Dot(unit, up) >= minFaceUpDot
}
