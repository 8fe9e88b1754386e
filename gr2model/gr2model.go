// lslib.dev/go/lslib - a library for reading and writing Larian file formats
// Copyright (C) 2026  The lslib.dev Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package gr2model reconstructs mesh, skeleton, and model tables from a
// parsed GR2 container and writes them back through the constrained
// five-section writer. It walks the decompressed section graph starting
// at the header's root-node reference, following the pointer slots the
// container layer resolved into (section, offset) pairs.
//
// Section roles in the written topology: section 0 holds the root node
// and the mesh/skeleton/bone/model record arrays; section 1 holds
// vertex buffers, index buffers, and model mesh-index arrays; section 2
// holds null-terminated name strings; section 3 holds inverse world
// transform matrices; section 4 holds the root type descriptor.
package gr2model

// Record sizes in the section 0 layout. Every 8-byte pointer slot in a
// record is a relocation target holding a resolved (section, offset)
// pair.
const (
	rootNodeSize       = 48
	meshRecordSize     = 48
	skeletonRecordSize = 24
	boneRecordSize     = 64
	modelRecordSize    = 24
	vertexSize         = 40
)

// Section indices within the fixed five-section topology.
const (
	secRecords  = 0
	secBuffers  = 1
	secStrings  = 2
	secMatrix   = 3
	secRootType = 4
)

// rootTypeVersion versions the root type descriptor in section 4: a
// version word followed by the record sizes the data graph was laid
// out with, so a reader can reject a file written under a different
// layout.
const rootTypeVersion = 1

// Vertex is one mesh vertex in the GR2 vertex layout: position,
// quaternion-packed normal/tangent, texture coordinate, color, and four
// bone influences.
type Vertex struct {
	Position    [3]float32
	QTangent    [4]int16
	UV          [2]float32
	Color       [4]uint8
	BoneIndices [4]uint8
	BoneWeights [4]uint8
}

// Mesh is a vertex array plus an index array with its declared on-disk
// width (2 or 4 bytes per index).
type Mesh struct {
	Name          string
	Vertices      []Vertex
	Indices       []uint32
	IndexWidth    int
	MaterialIndex int32
}

// Bone is one joint in a skeleton: a parent reference (-1 for the
// root), a local TRS transform, and the inverse world transform as a
// column-major 4x4 matrix.
type Bone struct {
	Name         string
	ParentIndex  int32
	Translation  [3]float32
	Rotation     [4]float32
	Scale        [3]float32
	InverseWorld [16]float32
}

// Skeleton is a named bone hierarchy.
type Skeleton struct {
	Name  string
	Bones []Bone
}

// Model ties meshes to a skeleton. SkeletonIndex is -1 for a static
// model.
type Model struct {
	Name          string
	SkeletonIndex int32
	MeshIndices   []uint32
}

// Scene is the full extracted content of a GR2 file.
type Scene struct {
	Meshes    []*Mesh
	Skeletons []*Skeleton
	Models    []*Model
}
