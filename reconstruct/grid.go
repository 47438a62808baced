package reconstruct

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// minVertexWeight is the minimum accumulated splat weight a grid corner
// needs before it is considered to have valid coverage.
const minVertexWeight = 0.01

// cellSizeMin and cellSizeMax bound the derived cell size so a sparse or
// degenerate projected footprint never allocates a pathologically large
// grid.
const (
	cellSizeMin = 0.05
	cellSizeMax = 2.0
)

// corner accumulates a weighted running height average for one grid vertex.
// Both fields are float64: height accumulation is the one place in the
// pipeline that needs double precision to avoid drift across many splats.
type corner struct {
	weightedHeightSum float64
	weightSum         float64
}

// heightGrid is the corner accumulator for the NavMesh height field: a 2D
// grid of (cols+1) x (rows+1) corners spanning the projected footprint
// [minU,maxU] x [minV,maxV]. It is owned exclusively by one NavMesh
// reconstruction call and discarded after face emission.
type heightGrid struct {
	cols, rows int
	cellSize   float64
	minU, minV float64
	corners    []corner

	// upVec is set once by the NavMesh pipeline after grid construction so
	// splatHeights can read the ground normal without the Basis being
	// threaded through the call.
	upVec r3.Vec
}

// newHeightGrid sizes a grid to cover [minU,maxU] x [minV,maxV] with
// approximately voxelTarget cells.
func newHeightGrid(minU, maxU, minV, maxV, voxelTarget float64) *heightGrid {
	width := maxU - minU
	depth := maxV - minV
	area := width * depth
	if area < 0 {
		area = 0
	}
	if voxelTarget <= 0 {
		voxelTarget = 1
	}
	cellSize := math.Sqrt(area / voxelTarget)
	cellSize = math.Max(cellSizeMin, math.Min(cellSizeMax, cellSize))

	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(depth / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	return &heightGrid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		minU:     minU,
		minV:     minV,
		corners:  make([]corner, (cols+1)*(rows+1)),
	}
}

// index returns the flat corner-array offset for grid coordinates (c, r).
func (g *heightGrid) index(c, r int) int {
	return r*(g.cols+1) + c
}

// inBounds reports whether (c, r) names a valid corner.
func (g *heightGrid) inBounds(c, r int) bool {
	return c >= 0 && c <= g.cols && r >= 0 && r <= g.rows
}

// project maps a world (u, v) projection onto continuous grid coordinates
// and the containing cell's (col, row).
func (g *heightGrid) project(u, v float64) (uNorm, vNorm float64, col, row int) {
	uNorm = (u - g.minU) / g.cellSize
	vNorm = (v - g.minV) / g.cellSize
	return uNorm, vNorm, int(math.Floor(uNorm)), int(math.Floor(vNorm))
}

// splat distributes one sample's height contribution to every corner within
// radius (in grid units) of (col, row), using an isotropic Gaussian falloff
// in grid-unit distance.
func (g *heightGrid) splat(col, row int, uNorm, vNorm, height, baseWeight float64, radius int) {
	for r := row - radius; r <= row+radius; r++ {
		for c := col - radius; c <= col+radius; c++ {
			if !g.inBounds(c, r) {
				continue
			}
			du := float64(c) - uNorm
			dv := float64(r) - vNorm
			w := baseWeight * math.Exp(-0.5*(du*du+dv*dv))
			idx := g.index(c, r)
			g.corners[idx].weightedHeightSum += height * w
			g.corners[idx].weightSum += w
		}
	}
}

// height resolves a corner's final elevation. ok is false if the corner
// never accumulated enough weight to be considered covered, in which case
// every cell touching it is rejected during face emission.
func (g *heightGrid) height(c, r int) (h float64, ok bool) {
	cell := g.corners[g.index(c, r)]
	if cell.weightSum < minVertexWeight {
		return 0, false
	}
	return cell.weightedHeightSum / cell.weightSum, true
}
