package reconstruct

import "sort"

// filterLargestComponent keeps only the triangles of the largest connected
// component of the face-adjacency graph (two faces are adjacent if they
// share a vertex index), compacting the vertex buffer to match. Ties in
// component size are broken by lowest component id: the first-seen island
// wins.
//
// vertices is the flat position buffer (3 floats per vertex); indices is the
// flat triangle index buffer (3 indices per face).
func filterLargestComponent(vertices []float32, indices []uint32) Mesh {
	faceCount := len(indices) / 3
	if faceCount == 0 {
		return emptyMesh()
	}

	vertexFaces := buildVertexFaceMap(indices, len(vertices)/3)
	faceNeighbors := buildFaceAdjacency(indices, vertexFaces, faceCount)
	componentOf, componentSizes := labelComponents(faceNeighbors)

	largest := 0
	for c := 1; c < len(componentSizes); c++ {
		if componentSizes[c] > componentSizes[largest] {
			largest = c
		}
	}

	keptIndices := make([]uint32, 0, len(indices))
	for face := 0; face < faceCount; face++ {
		if componentOf[face] != largest {
			continue
		}
		keptIndices = append(keptIndices, indices[face*3], indices[face*3+1], indices[face*3+2])
	}

	return compactVertices(vertices, keptIndices)
}

// buildVertexFaceMap maps each vertex index to the list of faces it
// participates in.
func buildVertexFaceMap(indices []uint32, vertexCount int) [][]int {
	vertexFaces := make([][]int, vertexCount)
	faceCount := len(indices) / 3
	for face := 0; face < faceCount; face++ {
		for k := 0; k < 3; k++ {
			v := indices[face*3+k]
			vertexFaces[v] = append(vertexFaces[v], face)
		}
	}
	return vertexFaces
}

// buildFaceAdjacency unions, for each face, the face sets of its three
// vertices (minus itself), producing a flat neighbor list per face.
func buildFaceAdjacency(indices []uint32, vertexFaces [][]int, faceCount int) [][]int {
	neighbors := make([][]int, faceCount)
	for face := 0; face < faceCount; face++ {
		seen := make(map[int]struct{})
		for k := 0; k < 3; k++ {
			v := indices[face*3+k]
			for _, other := range vertexFaces[v] {
				if other == face {
					continue
				}
				seen[other] = struct{}{}
			}
		}
		list := make([]int, 0, len(seen))
		for other := range seen {
			list = append(list, other)
		}
		neighbors[face] = list
	}
	return neighbors
}

// labelComponents runs BFS over the face-adjacency graph, returning each
// face's component id and each component's face count.
func labelComponents(neighbors [][]int) (componentOf []int, sizes []int) {
	faceCount := len(neighbors)
	componentOf = make([]int, faceCount)
	for i := range componentOf {
		componentOf[i] = -1
	}

	for start := 0; start < faceCount; start++ {
		if componentOf[start] != -1 {
			continue
		}
		id := len(sizes)
		queue := []int{start}
		componentOf[start] = id
		size := 0
		for len(queue) > 0 {
			face := queue[0]
			queue = queue[1:]
			size++
			for _, next := range neighbors[face] {
				if componentOf[next] == -1 {
					componentOf[next] = id
					queue = append(queue, next)
				}
			}
		}
		sizes = append(sizes, size)
	}

	return componentOf, sizes
}

// compactVertices renumbers the vertices referenced by indices to a
// contiguous 0..k-1 range, sorted ascending by original index, and rewrites
// indices accordingly.
func compactVertices(vertices []float32, indices []uint32) Mesh {
	used := make(map[uint32]struct{})
	for _, idx := range indices {
		used[idx] = struct{}{}
	}

	ordered := make([]uint32, 0, len(used))
	for idx := range used {
		ordered = append(ordered, idx)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	remap := make(map[uint32]uint32, len(ordered))
	newVertices := make([]float32, 0, len(ordered)*3)
	for newIdx, oldIdx := range ordered {
		remap[oldIdx] = uint32(newIdx)
		newVertices = append(newVertices, vertices[oldIdx*3], vertices[oldIdx*3+1], vertices[oldIdx*3+2])
	}

	newIndices := make([]uint32, len(indices))
	for i, idx := range indices {
		newIndices[i] = remap[idx]
	}

	return newMesh(newVertices, newIndices)
}
