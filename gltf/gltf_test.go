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

package gltf

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"
)

func buildTriangle(t *testing.T) (*Document, []byte) {
	t.Helper()
	b := NewBuilder()
	pos := b.AddFloatAccessor([]float32{
		0, 0, 0,
		-1, 0, 0,
		0, 1, 0,
	}, Vec3, TargetArrayBuffer, true)
	idx := b.AddUint16Accessor([]uint16{0, 2, 1}, Scalar, TargetElementArrayBuffer, false)
	mesh := b.AddMesh(Mesh{Primitives: []Primitive{{
		Attributes: map[string]int{"POSITION": pos},
		Indices:    &idx,
		Mode:       ModeTriangles,
	}}})
	b.AddNode(Node{Name: "tri", Mesh: &mesh})
	return b.Finish()
}

func TestBuilderDocumentShape(t *testing.T) {
	doc, bin := buildTriangle(t)
	if doc.Asset.Version != "2.0" {
		t.Errorf("asset version = %q", doc.Asset.Version)
	}
	if len(doc.Accessors) != 2 || len(doc.BufferViews) != 2 {
		t.Fatalf("accessors/views = %d/%d, want 2/2", len(doc.Accessors), len(doc.BufferViews))
	}
	if doc.Accessors[0].Count != 3 || doc.Accessors[0].Type != Vec3 {
		t.Errorf("position accessor = %+v", doc.Accessors[0])
	}
	if doc.Accessors[0].Min == nil || doc.Accessors[0].Max == nil {
		t.Error("position accessor missing min/max bounds")
	}
	if doc.Accessors[0].Min[0] != -1 || doc.Accessors[0].Max[1] != 1 {
		t.Errorf("bounds = %v / %v", doc.Accessors[0].Min, doc.Accessors[0].Max)
	}
	if len(doc.Buffers) != 1 || doc.Buffers[0].ByteLength != len(bin) {
		t.Errorf("buffers = %+v with %d binary bytes", doc.Buffers, len(bin))
	}
	if doc.Scene == nil || len(doc.Scenes) != 1 || len(doc.Scenes[0].Nodes) != 1 {
		t.Errorf("default scene not synthesized: %+v", doc.Scenes)
	}
	// Index view starts 4-aligned; the 36 bytes of position data before
	// it already end on a 4-byte boundary.
	if doc.BufferViews[1].ByteOffset%4 != 0 {
		t.Errorf("index view offset %d not aligned", doc.BufferViews[1].ByteOffset)
	}
}

func TestEncodeGLBLayout(t *testing.T) {
	doc, bin := buildTriangle(t)
	glb, err := EncodeGLB(doc, bin)
	if err != nil {
		t.Fatalf("EncodeGLB: %v", err)
	}
	if len(glb) < 12 {
		t.Fatal("GLB shorter than its container header")
	}
	if got := binary.LittleEndian.Uint32(glb[0:]); got != glbMagic {
		t.Errorf("magic = 0x%08X", got)
	}
	if got := binary.LittleEndian.Uint32(glb[4:]); got != 2 {
		t.Errorf("container version = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(glb[8:]); int(got) != len(glb) {
		t.Errorf("declared length %d != actual %d", got, len(glb))
	}

	jsonLen := binary.LittleEndian.Uint32(glb[12:])
	if jsonLen%4 != 0 {
		t.Errorf("JSON chunk length %d not 4-aligned", jsonLen)
	}
	if got := binary.LittleEndian.Uint32(glb[16:]); got != chunkJSON {
		t.Errorf("first chunk type = 0x%08X, want JSON", got)
	}
	var doc2 Document
	if err := json.Unmarshal(glb[20:20+jsonLen], &doc2); err != nil {
		t.Fatalf("JSON chunk does not parse: %v", err)
	}
	if doc2.Buffers[0].URI != "" {
		t.Errorf("GLB buffer carries URI %q", doc2.Buffers[0].URI)
	}

	binStart := 20 + int(jsonLen)
	binLen := binary.LittleEndian.Uint32(glb[binStart:])
	if got := binary.LittleEndian.Uint32(glb[binStart+4:]); got != chunkBIN {
		t.Errorf("second chunk type = 0x%08X, want BIN", got)
	}
	if binStart+8+int(binLen) != len(glb) {
		t.Errorf("BIN chunk does not end the file: %d+8+%d != %d", binStart, binLen, len(glb))
	}
}

func TestEncodeTextReferencesExternalBin(t *testing.T) {
	doc, bin := buildTriangle(t)
	jsonBytes, binOut, err := EncodeText(doc, bin, "model")
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	if !strings.Contains(string(jsonBytes), `"uri": "model.bin"`) {
		t.Errorf("JSON does not reference model.bin:\n%s", jsonBytes)
	}
	if len(binOut) != len(bin) {
		t.Errorf("bin length %d != %d", len(binOut), len(bin))
	}
	var doc2 Document
	if err := json.Unmarshal(jsonBytes, &doc2); err != nil {
		t.Fatalf("pretty JSON does not parse: %v", err)
	}
}
