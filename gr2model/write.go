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

// sectionBuilder accumulates one section's bytes plus the relocations
// for pointer slots written into it.
type sectionBuilder struct {
	w      *binstream.Writer
	relocs []gr2.Relocation
}

func newSectionBuilder() *sectionBuilder {
	return &sectionBuilder{w: binstream.NewWriter()}
}

// ptr writes an 8-byte pointer slot holding the resolved pair and
// records the matching relocation entry.
func (b *sectionBuilder) ptr(targetSection, targetOffset uint32) {
	b.relocs = append(b.relocs, gr2.Relocation{
		OffsetInSource: uint32(b.w.Len()),
		TargetSection:  targetSection,
		TargetOffset:   targetOffset,
	})
	b.w.U32(targetSection)
	b.w.U32(targetOffset)
}

func (b *sectionBuilder) finish() gr2.WriteSection {
	return gr2.WriteSection{Data: b.w.Bytes(), Relocations: b.relocs}
}

// stringSection interns null-terminated names.
type stringSection struct {
	w       *binstream.Writer
	offsets map[string]uint32
}

func newStringSection() *stringSection {
	return &stringSection{w: binstream.NewWriter(), offsets: make(map[string]uint32)}
}

func (s *stringSection) intern(name string) uint32 {
	if off, ok := s.offsets[name]; ok {
		return off
	}
	off := uint32(s.w.Len())
	s.offsets[name] = off
	s.w.WriteBytes([]byte(name))
	s.w.U8(0)
	return off
}

// Write serializes scene as an uncompressed BG3-compatible GR2 across
// the fixed five-section topology.
func Write(scene *Scene, progress lslib.ProgressFunc) ([]byte, error) {
	for mi, m := range scene.Meshes {
		if m.IndexWidth != 2 && m.IndexWidth != 4 {
			return nil, lslib.NewError(lslib.KindWriteError,
				fmt.Sprintf("gr2model: mesh %d index width %d, want 2 or 4", mi, m.IndexWidth))
		}
		if m.IndexWidth == 2 {
			for _, idx := range m.Indices {
				if idx > 0xFFFF {
					return nil, lslib.NewError(lslib.KindWriteError,
						fmt.Sprintf("gr2model: mesh %d index %d does not fit its declared 16-bit width", mi, idx))
				}
			}
		}
	}
	for si, s := range scene.Skeletons {
		for bi, b := range s.Bones {
			if b.ParentIndex >= int32(bi) {
				return nil, lslib.NewError(lslib.KindWriteError,
					fmt.Sprintf("gr2model: skeleton %d bone %d has parent %d, want -1 or an earlier bone", si, bi, b.ParentIndex))
			}
		}
	}

	records := newSectionBuilder()
	buffers := newSectionBuilder()
	strings := newStringSection()
	matrices := newSectionBuilder()
	rootType := newSectionBuilder()

	// Section 0 layout: root node, mesh records, skeleton records,
	// model records, then per-skeleton bone record arrays. Offsets are
	// fixed by the record sizes, so they can be computed before any
	// record is emitted.
	meshArr := uint32(rootNodeSize)
	skelArr := meshArr + uint32(len(scene.Meshes))*meshRecordSize
	modelArr := skelArr + uint32(len(scene.Skeletons))*skeletonRecordSize
	boneArr := make([]uint32, len(scene.Skeletons))
	next := modelArr + uint32(len(scene.Models))*modelRecordSize
	for i, s := range scene.Skeletons {
		boneArr[i] = next
		next += uint32(len(s.Bones)) * boneRecordSize
	}

	records.w.U32(uint32(len(scene.Meshes)))
	records.w.U32(0)
	records.ptr(secRecords, meshArr)
	records.w.U32(uint32(len(scene.Skeletons)))
	records.w.U32(0)
	records.ptr(secRecords, skelArr)
	records.w.U32(uint32(len(scene.Models)))
	records.w.U32(0)
	records.ptr(secRecords, modelArr)

	for _, m := range scene.Meshes {
		writeMeshRecord(records, buffers, strings, m)
	}
	for i, s := range scene.Skeletons {
		records.ptr(secStrings, strings.intern(s.Name))
		records.w.U32(uint32(len(s.Bones)))
		records.w.U32(0)
		records.ptr(secRecords, boneArr[i])
	}
	for _, m := range scene.Models {
		records.ptr(secStrings, strings.intern(m.Name))
		records.w.I32(m.SkeletonIndex)
		records.w.U32(uint32(len(m.MeshIndices)))
		off := uint32(buffers.w.Len())
		for _, idx := range m.MeshIndices {
			buffers.w.U32(idx)
		}
		records.ptr(secBuffers, off)
	}
	for _, s := range scene.Skeletons {
		for _, b := range s.Bones {
			writeBoneRecord(records, matrices, strings, b)
		}
	}

	rootType.w.U32(rootTypeVersion)
	rootType.w.U32(meshRecordSize)
	rootType.w.U32(boneRecordSize)
	rootType.w.U32(0)

	sections := []gr2.WriteSection{
		records.finish(),
		buffers.finish(),
		{Data: strings.w.Bytes()},
		matrices.finish(),
		rootType.finish(),
	}
	return gr2.Write(sections,
		gr2.SectionRef{Section: secRootType, Offset: 0},
		gr2.SectionRef{Section: secRecords, Offset: 0},
		progress)
}

func writeMeshRecord(records, buffers *sectionBuilder, strings *stringSection, m *Mesh) {
	records.ptr(secStrings, strings.intern(m.Name))
	records.w.U32(uint32(len(m.Vertices)))
	records.w.U32(uint32(len(m.Indices)))
	records.w.U32(uint32(m.IndexWidth))
	records.w.I32(m.MaterialIndex)

	voff := uint32(buffers.w.Len())
	for _, v := range m.Vertices {
		writeVertex(buffers.w, v)
	}
	records.ptr(secBuffers, voff)

	ioff := uint32(buffers.w.Len())
	for _, idx := range m.Indices {
		if m.IndexWidth == 2 {
			buffers.w.U16(uint16(idx))
		} else {
			buffers.w.U32(idx)
		}
	}
	records.ptr(secBuffers, ioff)
	records.w.U32(0)
	records.w.U32(0)
}

func writeVertex(w *binstream.Writer, v Vertex) {
	for _, p := range v.Position {
		w.F32(p)
	}
	for _, q := range v.QTangent {
		w.U16(uint16(q))
	}
	for _, t := range v.UV {
		w.F32(t)
	}
	for _, c := range v.Color {
		w.U8(c)
	}
	for _, b := range v.BoneIndices {
		w.U8(b)
	}
	for _, b := range v.BoneWeights {
		w.U8(b)
	}
}

func writeBoneRecord(records, matrices *sectionBuilder, strings *stringSection, b Bone) {
	records.ptr(secStrings, strings.intern(b.Name))
	records.w.I32(b.ParentIndex)
	records.w.U32(0)
	for _, t := range b.Translation {
		records.w.F32(t)
	}
	for _, r := range b.Rotation {
		records.w.F32(r)
	}
	for _, s := range b.Scale {
		records.w.F32(s)
	}
	moff := uint32(matrices.w.Len())
	for _, m := range b.InverseWorld {
		matrices.w.F32(m)
	}
	records.ptr(secMatrix, moff)
}
