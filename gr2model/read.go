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
	"fmt"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/gr2"
	"lslib.dev/go/lslib/internal/binstream"
)

func errBounds(detail string) error {
	return lslib.NewError(lslib.KindInvalidRelocation, detail)
}

// pointer is a resolved (section, offset) pair read out of an 8-byte
// slot the container layer rewrote.
type pointer struct {
	section uint32
	offset  uint32
}

// extractor wraps the parsed container with bounds-checked section
// reads.
type extractor struct {
	f *gr2.File
}

func (e *extractor) record(p pointer, size int) (*binstream.Reader, error) {
	sec := e.f.SectionBytes(p.section)
	if sec == nil {
		return nil, errBounds(fmt.Sprintf("gr2model: pointer into nonexistent section %d", p.section))
	}
	end := int(p.offset) + size
	if end > len(sec) {
		return nil, errBounds(fmt.Sprintf("gr2model: record at %d+%d exceeds section %d's %d bytes", p.offset, size, p.section, len(sec)))
	}
	return binstream.NewReader(sec[p.offset:end]), nil
}

func (e *extractor) bytes(p pointer, size int) ([]byte, error) {
	r, err := e.record(p, size)
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(size)
}

func (e *extractor) str(p pointer) (string, error) {
	sec := e.f.SectionBytes(p.section)
	if sec == nil || int(p.offset) > len(sec) {
		return "", errBounds(fmt.Sprintf("gr2model: string pointer %d/%d out of range", p.section, p.offset))
	}
	b := sec[p.offset:]
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return "", errBounds("gr2model: unterminated string in string section")
}

func readPointer(r *binstream.Reader) (pointer, error) {
	sec, err := r.U32()
	if err != nil {
		return pointer{}, err
	}
	off, err := r.U32()
	if err != nil {
		return pointer{}, err
	}
	return pointer{section: sec, offset: off}, nil
}

// Extract walks the decompressed section graph from the header's
// root-node reference and reconstructs the mesh, skeleton, and model
// tables.
func Extract(f *gr2.File) (*Scene, error) {
	e := &extractor{f: f}

	if err := e.checkRootType(); err != nil {
		return nil, err
	}

	root := pointer{section: f.Header.RootNode.Section, offset: f.Header.RootNode.Offset}
	r, err := e.record(root, rootNodeSize)
	if err != nil {
		return nil, err
	}
	meshCount, _ := r.U32()
	r.U32()
	meshesPtr, _ := readPointer(r)
	skeletonCount, _ := r.U32()
	r.U32()
	skeletonsPtr, _ := readPointer(r)
	modelCount, _ := r.U32()
	r.U32()
	modelsPtr, err := readPointer(r)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}

	scene := &Scene{}
	for i := uint32(0); i < meshCount; i++ {
		m, err := e.readMesh(pointer{meshesPtr.section, meshesPtr.offset + i*meshRecordSize})
		if err != nil {
			return nil, err
		}
		scene.Meshes = append(scene.Meshes, m)
	}
	for i := uint32(0); i < skeletonCount; i++ {
		s, err := e.readSkeleton(pointer{skeletonsPtr.section, skeletonsPtr.offset + i*skeletonRecordSize})
		if err != nil {
			return nil, err
		}
		scene.Skeletons = append(scene.Skeletons, s)
	}
	for i := uint32(0); i < modelCount; i++ {
		m, err := e.readModel(pointer{modelsPtr.section, modelsPtr.offset + i*modelRecordSize})
		if err != nil {
			return nil, err
		}
		scene.Models = append(scene.Models, m)
	}
	return scene, nil
}

// checkRootType validates the root type descriptor in the section the
// header's root-type reference names.
func (e *extractor) checkRootType() error {
	p := pointer{section: e.f.Header.RootType.Section, offset: e.f.Header.RootType.Offset}
	r, err := e.record(p, 16)
	if err != nil {
		return err
	}
	version, _ := r.U32()
	meshSize, _ := r.U32()
	boneSize, err := r.U32()
	if err != nil {
		return lslib.Wrap(lslib.KindIO, err)
	}
	if version != rootTypeVersion {
		return lslib.NewError(lslib.KindUnsupportedVersion,
			fmt.Sprintf("gr2model: root type descriptor version %d, want %d", version, rootTypeVersion))
	}
	if meshSize != meshRecordSize || boneSize != boneRecordSize {
		return lslib.NewError(lslib.KindUnsupportedVersion,
			fmt.Sprintf("gr2model: descriptor record sizes %d/%d do not match layout %d/%d",
				meshSize, boneSize, meshRecordSize, boneRecordSize))
	}
	return nil
}

func (e *extractor) readMesh(p pointer) (*Mesh, error) {
	r, err := e.record(p, meshRecordSize)
	if err != nil {
		return nil, err
	}
	namePtr, _ := readPointer(r)
	vertexCount, _ := r.U32()
	indexCount, _ := r.U32()
	indexWidth, _ := r.U32()
	materialIndex, _ := r.I32()
	verticesPtr, _ := readPointer(r)
	indicesPtr, err := readPointer(r)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}

	if indexWidth != 2 && indexWidth != 4 {
		return nil, lslib.NewError(lslib.KindMalformedValue,
			fmt.Sprintf("gr2model: mesh index width %d, want 2 or 4", indexWidth))
	}

	m := &Mesh{IndexWidth: int(indexWidth), MaterialIndex: materialIndex}
	if m.Name, err = e.str(namePtr); err != nil {
		return nil, err
	}

	vraw, err := e.bytes(verticesPtr, int(vertexCount)*vertexSize)
	if err != nil {
		return nil, err
	}
	vr := binstream.NewReader(vraw)
	m.Vertices = make([]Vertex, vertexCount)
	for i := range m.Vertices {
		if m.Vertices[i], err = readVertex(vr); err != nil {
			return nil, lslib.Wrap(lslib.KindIO, err)
		}
	}

	iraw, err := e.bytes(indicesPtr, int(indexCount)*int(indexWidth))
	if err != nil {
		return nil, err
	}
	ir := binstream.NewReader(iraw)
	m.Indices = make([]uint32, indexCount)
	for i := range m.Indices {
		if indexWidth == 2 {
			v, err := ir.U16()
			if err != nil {
				return nil, lslib.Wrap(lslib.KindIO, err)
			}
			m.Indices[i] = uint32(v)
		} else {
			v, err := ir.U32()
			if err != nil {
				return nil, lslib.Wrap(lslib.KindIO, err)
			}
			m.Indices[i] = v
		}
	}
	return m, nil
}

func readVertex(r *binstream.Reader) (Vertex, error) {
	var v Vertex
	var err error
	for i := range v.Position {
		if v.Position[i], err = r.F32(); err != nil {
			return v, err
		}
	}
	for i := range v.QTangent {
		u, err := r.U16()
		if err != nil {
			return v, err
		}
		v.QTangent[i] = int16(u)
	}
	for i := range v.UV {
		if v.UV[i], err = r.F32(); err != nil {
			return v, err
		}
	}
	for i := range v.Color {
		if v.Color[i], err = r.U8(); err != nil {
			return v, err
		}
	}
	for i := range v.BoneIndices {
		if v.BoneIndices[i], err = r.U8(); err != nil {
			return v, err
		}
	}
	for i := range v.BoneWeights {
		if v.BoneWeights[i], err = r.U8(); err != nil {
			return v, err
		}
	}
	return v, nil
}

func (e *extractor) readSkeleton(p pointer) (*Skeleton, error) {
	r, err := e.record(p, skeletonRecordSize)
	if err != nil {
		return nil, err
	}
	namePtr, _ := readPointer(r)
	boneCount, _ := r.U32()
	r.U32()
	bonesPtr, err := readPointer(r)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}

	s := &Skeleton{}
	if s.Name, err = e.str(namePtr); err != nil {
		return nil, err
	}
	s.Bones = make([]Bone, boneCount)
	for i := range s.Bones {
		b, err := e.readBone(pointer{bonesPtr.section, bonesPtr.offset + uint32(i)*boneRecordSize})
		if err != nil {
			return nil, err
		}
		// A parent must precede its child so consumers can build the
		// hierarchy in one pass.
		if b.ParentIndex >= int32(i) {
			return nil, lslib.NewError(lslib.KindMalformedValue,
				fmt.Sprintf("gr2model: bone %d has parent %d, want -1 or an earlier bone", i, b.ParentIndex))
		}
		s.Bones[i] = b
	}
	return s, nil
}

func (e *extractor) readBone(p pointer) (Bone, error) {
	var b Bone
	r, err := e.record(p, boneRecordSize)
	if err != nil {
		return b, err
	}
	namePtr, _ := readPointer(r)
	b.ParentIndex, _ = r.I32()
	r.U32()
	for i := range b.Translation {
		b.Translation[i], _ = r.F32()
	}
	for i := range b.Rotation {
		b.Rotation[i], _ = r.F32()
	}
	for i := range b.Scale {
		b.Scale[i], _ = r.F32()
	}
	invPtr, err := readPointer(r)
	if err != nil {
		return b, lslib.Wrap(lslib.KindIO, err)
	}
	if b.Name, err = e.str(namePtr); err != nil {
		return b, err
	}
	mraw, err := e.bytes(invPtr, 64)
	if err != nil {
		return b, err
	}
	mr := binstream.NewReader(mraw)
	for i := range b.InverseWorld {
		b.InverseWorld[i], _ = mr.F32()
	}
	return b, nil
}

func (e *extractor) readModel(p pointer) (*Model, error) {
	r, err := e.record(p, modelRecordSize)
	if err != nil {
		return nil, err
	}
	namePtr, _ := readPointer(r)
	skeletonIndex, _ := r.I32()
	meshCount, _ := r.U32()
	meshesPtr, err := readPointer(r)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}

	m := &Model{SkeletonIndex: skeletonIndex}
	if m.Name, err = e.str(namePtr); err != nil {
		return nil, err
	}
	raw, err := e.bytes(meshesPtr, int(meshCount)*4)
	if err != nil {
		return nil, err
	}
	mr := binstream.NewReader(raw)
	m.MeshIndices = make([]uint32, meshCount)
	for i := range m.MeshIndices {
		m.MeshIndices[i], _ = mr.U32()
	}
	return m, nil
}
