// Package reconstruct implements the three mesh-reconstruction modes this
// repository supports: a screened-Poisson adapter (mode 0), a single-plane
// RANSAC quad emitter (mode 1), and the Voxel NavMesh reconstructor (mode 2,
// the core of this repository). All three share the Mesh output shape and
// the Plane/Basis geometry primitives.
package reconstruct

// Mesh is an indexed triangle mesh: a flat, interleaved position buffer and
// a triangle index buffer. VertexCount is len(Vertices)/3 and FaceCount is
// len(Indices)/3; both are cached on the struct so callers don't recompute
// them.
type Mesh struct {
	Vertices    []float32
	Indices     []uint32
	VertexCount int
	FaceCount   int
}

// newMesh builds a Mesh from raw position/index slices, deriving the counts.
func newMesh(vertices []float32, indices []uint32) Mesh {
	return Mesh{
		Vertices:    vertices,
		Indices:     indices,
		VertexCount: len(vertices) / 3,
		FaceCount:   len(indices) / 3,
	}
}

// emptyMesh is the canonical empty result for EmptyInput/DegenerateGeometry
// fallbacks — zero vertices and faces, never an error.
func emptyMesh() Mesh {
	return Mesh{}
}
