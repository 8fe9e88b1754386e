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

package gr2model

import (
	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/gltf"
)

// GR2 source data is mirrored relative to glTF's right-handed Y-up
// space: every vertex position gets an X-axis negation with a matching
// triangle winding flip, normals get Y and Z negated, tangents get X
// negated, and the bitangent handedness sign survives unchanged. Bone
// transforms conjugate through the same mirror: translation X negated,
// rotation (x,-y,-z,w), and inverse bind matrices M -> S*M*S with
// S = diag(-1,1,1,1).

// ToGLTF assembles a glTF 2.0 document from an extracted scene. The
// returned binary buffer is fully owned; nothing borrows from the GR2
// section data.
func ToGLTF(scene *Scene) (*gltf.Document, []byte, error) {
	b := gltf.NewBuilder()

	skinIndex := make([]int, len(scene.Skeletons))
	for si, skel := range scene.Skeletons {
		skinIndex[si] = addSkeleton(b, skel)
	}

	// A mesh referenced by a skinned model carries JOINTS_0/WEIGHTS_0;
	// plain meshes do not.
	skinned := make([]bool, len(scene.Meshes))
	for _, model := range scene.Models {
		if model.SkeletonIndex < 0 {
			continue
		}
		for _, mi := range model.MeshIndices {
			if int(mi) < len(skinned) {
				skinned[mi] = true
			}
		}
	}

	meshIndex := make([]int, len(scene.Meshes))
	for mi, m := range scene.Meshes {
		idx, err := addMesh(b, m, skinned[mi])
		if err != nil {
			return nil, nil, err
		}
		meshIndex[mi] = idx
	}

	referenced := make([]bool, len(scene.Meshes))
	for _, model := range scene.Models {
		for _, mi := range model.MeshIndices {
			if int(mi) >= len(scene.Meshes) {
				return nil, nil, lslib.NewError(lslib.KindMalformedValue, "gr2model: model references a nonexistent mesh")
			}
			referenced[mi] = true
			node := gltf.Node{Name: model.Name, Mesh: &meshIndex[mi]}
			if model.SkeletonIndex >= 0 {
				if int(model.SkeletonIndex) >= len(scene.Skeletons) {
					return nil, nil, lslib.NewError(lslib.KindMalformedValue, "gr2model: model references a nonexistent skeleton")
				}
				skin := skinIndex[model.SkeletonIndex]
				node.Skin = &skin
			}
			b.AddNode(node)
		}
	}
	for mi, m := range scene.Meshes {
		if !referenced[mi] {
			b.AddNode(gltf.Node{Name: m.Name, Mesh: &meshIndex[mi]})
		}
	}

	doc, bin := b.Finish()
	return doc, bin, nil
}

// ExportGLB converts scene and packs it as a single GLB byte stream.
func ExportGLB(scene *Scene) ([]byte, error) {
	doc, bin, err := ToGLTF(scene)
	if err != nil {
		return nil, err
	}
	return gltf.EncodeGLB(doc, bin)
}

// ExportText converts scene into the .gltf+.bin pair, with the JSON
// referencing "<stem>.bin".
func ExportText(scene *Scene, stem string) (gltfJSON, bin []byte, err error) {
	doc, binBuf, err := ToGLTF(scene)
	if err != nil {
		return nil, nil, err
	}
	return gltf.EncodeText(doc, binBuf, stem)
}

func addSkeleton(b *gltf.Builder, skel *Skeleton) int {
	nodeIdx := make([]int, len(skel.Bones))
	ibms := make([]float32, 0, 16*len(skel.Bones))
	for bi, bone := range skel.Bones {
		node := gltf.Node{
			Name:        bone.Name,
			Translation: mirrorTranslation(bone.Translation),
			Rotation:    mirrorRotation(bone.Rotation),
			Scale:       nonIdentityScale(bone.Scale),
		}
		nodeIdx[bi] = b.AddNode(node)
		ibms = append(ibms, mirrorMatrix(bone.InverseWorld)...)
	}
	rootJoint := 0
	if len(nodeIdx) > 0 {
		rootJoint = nodeIdx[firstRoot(skel)]
	}
	nodes := b.Nodes()
	for bi, bone := range skel.Bones {
		if bone.ParentIndex >= 0 {
			p := nodeIdx[bone.ParentIndex]
			nodes[p].Children = append(nodes[p].Children, nodeIdx[bi])
		}
	}
	ibmAcc := b.AddFloatAccessor(ibms, gltf.Mat4, 0, false)
	return b.AddSkin(gltf.Skin{
		Name:                skel.Name,
		InverseBindMatrices: &ibmAcc,
		Skeleton:            &rootJoint,
		Joints:              nodeIdx,
	})
}

func firstRoot(skel *Skeleton) int {
	for bi, bone := range skel.Bones {
		if bone.ParentIndex < 0 {
			return bi
		}
	}
	return 0
}

func addMesh(b *gltf.Builder, m *Mesh, skinned bool) (int, error) {
	nv := len(m.Vertices)
	positions := make([]float32, 0, 3*nv)
	normals := make([]float32, 0, 3*nv)
	tangents := make([]float32, 0, 4*nv)
	uvs := make([]float32, 0, 2*nv)
	colors := make([]uint8, 0, 4*nv)
	joints := make([]uint8, 0, 4*nv)
	weights := make([]uint8, 0, 4*nv)
	hasColor := false

	for _, v := range m.Vertices {
		positions = append(positions, -v.Position[0], v.Position[1], v.Position[2])

		normal, tangent, handedness := DecodeQTangent(v.QTangent)
		normals = append(normals, normal[0], -normal[1], -normal[2])
		tangents = append(tangents, -tangent[0], tangent[1], tangent[2], handedness)

		uvs = append(uvs, v.UV[0], v.UV[1])

		if v.Color != [4]uint8{255, 255, 255, 255} {
			hasColor = true
		}
		colors = append(colors, v.Color[0], v.Color[1], v.Color[2], v.Color[3])

		// glTF validators reject a nonzero joint index paired with a
		// zero weight.
		for c := 0; c < 4; c++ {
			j := v.BoneIndices[c]
			if v.BoneWeights[c] == 0 {
				j = 0
			}
			joints = append(joints, j)
			weights = append(weights, v.BoneWeights[c])
		}
	}

	attrs := map[string]int{
		"POSITION":   b.AddFloatAccessor(positions, gltf.Vec3, gltf.TargetArrayBuffer, true),
		"NORMAL":     b.AddFloatAccessor(normals, gltf.Vec3, gltf.TargetArrayBuffer, false),
		"TANGENT":    b.AddFloatAccessor(tangents, gltf.Vec4, gltf.TargetArrayBuffer, false),
		"TEXCOORD_0": b.AddFloatAccessor(uvs, gltf.Vec2, gltf.TargetArrayBuffer, false),
	}
	if hasColor {
		attrs["COLOR_0"] = b.AddUint8Accessor(colors, gltf.Vec4, gltf.TargetArrayBuffer, true)
	}
	if skinned {
		attrs["JOINTS_0"] = b.AddUint8Accessor(joints, gltf.Vec4, gltf.TargetArrayBuffer, false)
		attrs["WEIGHTS_0"] = b.AddUint8Accessor(weights, gltf.Vec4, gltf.TargetArrayBuffer, true)
	}

	if len(m.Indices)%3 != 0 {
		return 0, lslib.NewError(lslib.KindMalformedValue, "gr2model: mesh index count is not a multiple of 3")
	}
	flipped := make([]uint32, len(m.Indices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		flipped[i] = m.Indices[i]
		flipped[i+1] = m.Indices[i+2]
		flipped[i+2] = m.Indices[i+1]
	}
	var indices int
	if m.IndexWidth == 2 {
		shorts := make([]uint16, len(flipped))
		for i, v := range flipped {
			shorts[i] = uint16(v)
		}
		indices = b.AddUint16Accessor(shorts, gltf.Scalar, gltf.TargetElementArrayBuffer, false)
	} else {
		indices = b.AddUint32Accessor(flipped, gltf.Scalar, gltf.TargetElementArrayBuffer)
	}

	prim := gltf.Primitive{Attributes: attrs, Indices: &indices, Mode: gltf.ModeTriangles}
	if m.MaterialIndex >= 0 {
		mat := int(m.MaterialIndex)
		prim.Material = &mat
	}
	return b.AddMesh(gltf.Mesh{Name: m.Name, Primitives: []gltf.Primitive{prim}}), nil
}

func mirrorTranslation(t [3]float32) []float32 {
	if t == [3]float32{} {
		return nil
	}
	return []float32{-t[0], t[1], t[2]}
}

func mirrorRotation(q [4]float32) []float32 {
	if q == [4]float32{} || q == [4]float32{0, 0, 0, 1} {
		return nil
	}
	return []float32{q[0], -q[1], -q[2], q[3]}
}

func nonIdentityScale(s [3]float32) []float32 {
	if s == [3]float32{} || s == [3]float32{1, 1, 1} {
		return nil
	}
	return []float32{s[0], s[1], s[2]}
}

// mirrorMatrix conjugates a column-major 4x4 matrix through
// S = diag(-1,1,1,1): entries with exactly one index in the X row or
// column change sign.
func mirrorMatrix(m [16]float32) []float32 {
	out := make([]float32, 16)
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			v := m[col*4+row]
			if (col == 0) != (row == 0) {
				v = -v
			}
			out[col*4+row] = v
		}
	}
	return out
}
