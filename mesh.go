package splatwalk

import "github.com/EricEisaman/splatwalk/reconstruct"

// Mesh is an indexed triangle mesh: a flat, interleaved position buffer
// and a triangle index buffer, with VertexCount and FaceCount cached for
// convenience.
type Mesh = reconstruct.Mesh
