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
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lslib.dev/go/lslib/gltf"
	"lslib.dev/go/lslib/gr2"
)

func TestQTangentIdentity(t *testing.T) {
	normal, tangent, handedness := DecodeQTangent([4]int16{0, 0, 0, qtangentScale})
	if !close3(normal, [3]float32{0, 0, 1}) {
		t.Errorf("identity normal = %v", normal)
	}
	if !close3(tangent, [3]float32{1, 0, 0}) {
		t.Errorf("identity tangent = %v", tangent)
	}
	if handedness != 1 {
		t.Errorf("identity handedness = %v", handedness)
	}
}

func TestQTangentRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		normal     [3]float32
		tangent    [3]float32
		handedness float32
	}{
		{"identity", [3]float32{0, 0, 1}, [3]float32{1, 0, 0}, 1},
		{"mirrored identity", [3]float32{0, 0, 1}, [3]float32{1, 0, 0}, -1},
		{"y up", [3]float32{0, 1, 0}, [3]float32{1, 0, 0}, 1},
		{"tilted", norm3(0.3, 0.4, 0.866), norm3(0.92, 0, -0.32), -1},
	}
	for _, tc := range cases {
		q := EncodeQTangent(tc.normal, tc.tangent, tc.handedness)
		if tc.handedness < 0 && q[3] > 0 {
			t.Errorf("%s: W = %d, want W < 0 for negative handedness", tc.name, q[3])
		}
		if tc.handedness > 0 && q[3] < 0 {
			t.Errorf("%s: W = %d, want W >= 0 for positive handedness", tc.name, q[3])
		}
		normal, tangent, handedness := DecodeQTangent(q)
		if !close3(normal, tc.normal) || handedness != tc.handedness {
			t.Errorf("%s: decoded normal %v handedness %v, want %v %v", tc.name, normal, handedness, tc.normal, tc.handedness)
		}
		// Tangents are only defined up to re-orthogonalization against
		// the normal, but these fixtures are already orthonormal.
		if !close3(tangent, tc.tangent) {
			t.Errorf("%s: decoded tangent %v, want %v", tc.name, tangent, tc.tangent)
		}
	}
}

func norm3(x, y, z float32) [3]float32 {
	n := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	return [3]float32{x / n, y / n, z / n}
}

func close3(a, b [3]float32) bool {
	const eps = 2e-3
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}

func testScene() *Scene {
	return &Scene{
		Meshes: []*Mesh{{
			Name: "Body",
			Vertices: []Vertex{
				{Position: [3]float32{0, 0, 0}, QTangent: [4]int16{0, 0, 0, qtangentScale}, UV: [2]float32{0, 0},
					Color: [4]uint8{255, 255, 255, 255}, BoneIndices: [4]uint8{0, 0, 0, 0}, BoneWeights: [4]uint8{255, 0, 0, 0}},
				{Position: [3]float32{1, 0, 0}, QTangent: [4]int16{0, 0, 0, qtangentScale}, UV: [2]float32{1, 0},
					Color: [4]uint8{255, 255, 255, 255}, BoneIndices: [4]uint8{1, 0, 0, 0}, BoneWeights: [4]uint8{255, 0, 0, 0}},
				{Position: [3]float32{0, 1, 0}, QTangent: [4]int16{0, 0, 0, qtangentScale}, UV: [2]float32{0, 1},
					Color: [4]uint8{255, 255, 255, 255}, BoneIndices: [4]uint8{1, 7, 0, 0}, BoneWeights: [4]uint8{255, 0, 0, 0}},
			},
			Indices:       []uint32{0, 1, 2},
			IndexWidth:    2,
			MaterialIndex: -1,
		}},
		Skeletons: []*Skeleton{{
			Name: "Rig",
			Bones: []Bone{
				{Name: "Root", ParentIndex: -1, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1},
					InverseWorld: identity4()},
				{Name: "Spine", ParentIndex: 0, Translation: [3]float32{0, 1, 0},
					Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1},
					InverseWorld: translate4(0, -1, 0)},
			},
		}},
		Models: []*Model{{Name: "Hero", SkeletonIndex: 0, MeshIndices: []uint32{0}}},
	}
}

func identity4() [16]float32 {
	var m [16]float32
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

func translate4(x, y, z float32) [16]float32 {
	m := identity4()
	m[12], m[13], m[14] = x, y, z
	return m
}

func TestSceneRoundTrip(t *testing.T) {
	scene := testScene()
	data, err := Write(scene, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := gr2.Parse(data)
	if err != nil {
		t.Fatalf("gr2.Parse: %v", err)
	}
	got, err := Extract(f)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff(scene, got); diff != "" {
		t.Errorf("scene round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRejectsOverflowingIndexWidth(t *testing.T) {
	scene := testScene()
	scene.Meshes[0].Indices = []uint32{0, 1, 1 << 17}
	if _, err := Write(scene, nil); err == nil {
		t.Fatal("Write accepted a 17-bit index under a 16-bit width")
	}
}

func TestWriteRejectsForwardBoneParent(t *testing.T) {
	scene := testScene()
	scene.Skeletons[0].Bones[0].ParentIndex = 1
	if _, err := Write(scene, nil); err == nil {
		t.Fatal("Write accepted a bone whose parent follows it")
	}
}

// decodeGLB splits a GLB into its parsed JSON document and binary
// chunk.
func decodeGLB(t *testing.T, glb []byte) (gltf.Document, []byte) {
	t.Helper()
	if got := binary.LittleEndian.Uint32(glb[0:]); got != 0x46546C67 {
		t.Fatalf("GLB magic = 0x%08X", got)
	}
	if got := binary.LittleEndian.Uint32(glb[4:]); got != 2 {
		t.Fatalf("GLB version = %d", got)
	}
	jsonLen := binary.LittleEndian.Uint32(glb[12:])
	var doc gltf.Document
	if err := json.Unmarshal(glb[20:20+jsonLen], &doc); err != nil {
		t.Fatalf("GLB JSON chunk: %v", err)
	}
	binStart := 20 + int(jsonLen)
	binLen := binary.LittleEndian.Uint32(glb[binStart:])
	return doc, glb[binStart+8 : binStart+8+int(binLen)]
}

// TestExportGLBTriangleScene exercises the GR2 -> glTF end-to-end
// scenario: one triangle mesh with identity QTangents and a two-bone
// skeleton (root + child at 1 unit Y).
func TestExportGLBTriangleScene(t *testing.T) {
	glb, err := ExportGLB(testScene())
	if err != nil {
		t.Fatalf("ExportGLB: %v", err)
	}
	doc, bin := decodeGLB(t, glb)

	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("meshes = %+v", doc.Meshes)
	}
	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{"POSITION", "NORMAL", "TANGENT", "TEXCOORD_0", "JOINTS_0", "WEIGHTS_0"} {
		if _, ok := prim.Attributes[attr]; !ok {
			t.Errorf("primitive missing %s accessor", attr)
		}
	}
	if prim.Indices == nil {
		t.Fatal("primitive has no indices accessor")
	}

	if len(doc.Skins) != 1 || len(doc.Skins[0].Joints) != 2 {
		t.Fatalf("skins = %+v", doc.Skins)
	}
	if len(doc.Nodes) != 3 {
		t.Fatalf("node count = %d, want 2 bones + 1 mesh", len(doc.Nodes))
	}
	var meshNodes, boneNodes int
	for _, n := range doc.Nodes {
		if n.Mesh != nil {
			meshNodes++
			if n.Skin == nil {
				t.Error("mesh node has no skin reference")
			}
		} else {
			boneNodes++
		}
	}
	if meshNodes != 1 || boneNodes != 2 {
		t.Errorf("mesh/bone nodes = %d/%d", meshNodes, boneNodes)
	}

	// Positions are X-negated: source (0,0,0),(1,0,0),(0,1,0).
	pos := readVec3Accessor(t, doc, bin, prim.Attributes["POSITION"])
	want := [][3]float32{{0, 0, 0}, {-1, 0, 0}, {0, 1, 0}}
	for i, w := range want {
		if pos[i] != w {
			t.Errorf("position %d = %v, want %v", i, pos[i], w)
		}
	}

	// Identity QTangent normal (0,0,1) converts to (0,0,-1).
	normals := readVec3Accessor(t, doc, bin, prim.Attributes["NORMAL"])
	if !close3(normals[0], [3]float32{0, 0, -1}) {
		t.Errorf("normal = %v, want (0,0,-1)", normals[0])
	}

	// Triangle winding flips: (0,1,2) -> (0,2,1) as 16-bit indices.
	idxAcc := doc.Accessors[*prim.Indices]
	view := doc.BufferViews[*idxAcc.BufferView]
	raw := bin[view.ByteOffset : view.ByteOffset+view.ByteLength]
	indices := [3]uint16{
		binary.LittleEndian.Uint16(raw[0:]),
		binary.LittleEndian.Uint16(raw[2:]),
		binary.LittleEndian.Uint16(raw[4:]),
	}
	if indices != [3]uint16{0, 2, 1} {
		t.Errorf("indices = %v, want [0 2 1]", indices)
	}

	// Vertex 2 pairs joint 7 with weight 0; sanitation zeroes the
	// joint.
	joints := readRawAccessor(t, doc, bin, prim.Attributes["JOINTS_0"])
	if joints[2*4+1] != 0 {
		t.Errorf("zero-weight joint survived sanitation: %v", joints[8:12])
	}
}

func readVec3Accessor(t *testing.T, doc gltf.Document, bin []byte, acc int) [][3]float32 {
	t.Helper()
	a := doc.Accessors[acc]
	view := doc.BufferViews[*a.BufferView]
	raw := bin[view.ByteOffset : view.ByteOffset+view.ByteLength]
	out := make([][3]float32, a.Count)
	for i := range out {
		for c := 0; c < 3; c++ {
			bits := binary.LittleEndian.Uint32(raw[(i*3+c)*4:])
			out[i][c] = math.Float32frombits(bits)
		}
	}
	return out
}

func readRawAccessor(t *testing.T, doc gltf.Document, bin []byte, acc int) []byte {
	t.Helper()
	a := doc.Accessors[acc]
	view := doc.BufferViews[*a.BufferView]
	return bin[view.ByteOffset : view.ByteOffset+view.ByteLength]
}
