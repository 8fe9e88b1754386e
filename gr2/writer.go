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

package gr2

import (
	"fmt"
	"hash/crc32"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/internal/binstream"
)

// WriterSections is the fixed section topology the writer emits:
// section 0 holds the root node (mesh/skeleton data structures),
// sections 1-3 hold auxiliary data, section 4 holds the root type
// descriptor. Arbitrary relocation layouts are not synthesized; callers
// (gr2model) fill this shape.
const WriterSections = 5

// sectionAlignment is the file alignment every emitted section's data
// starts on.
const sectionAlignment = 16

// WriteSection is one section's content handed to Write: its
// decompressed bytes and the relocation entries whose OffsetInSource
// values point into Data.
type WriteSection struct {
	Data        []byte
	Relocations []Relocation
}

func errWrite(detail string) error { return lslib.NewError(lslib.KindWriteError, detail) }

// Write emits a BG3-compatible GR2: version 7, BG3 tag, all sections
// uncompressed, each aligned to 16 bytes, relocation tables following
// the data blobs, and the header CRC finalized over everything after
// the magic block (computed with the CRC field itself zeroed).
//
// Pointer slots named by the relocation entries are emitted holding the
// little-endian (TargetSection, TargetOffset) pair, the same resolved
// form Parse rewrites them into, so a written file parses back to
// identical section bytes.
func Write(sections []WriteSection, rootType, rootNode SectionRef, progress lslib.ProgressFunc) ([]byte, error) {
	if len(sections) != WriterSections {
		return nil, errWrite(fmt.Sprintf("gr2: writer requires exactly %d sections, got %d", WriterSections, len(sections)))
	}
	for i, s := range sections {
		for _, rel := range s.Relocations {
			if int(rel.OffsetInSource)+8 > len(s.Data) {
				return nil, errWrite(fmt.Sprintf("gr2: relocation slot at %d exceeds section %d's %d bytes", rel.OffsetInSource, i, len(s.Data)))
			}
			if int(rel.TargetSection) >= len(sections) {
				return nil, errWrite(fmt.Sprintf("gr2: relocation in section %d targets nonexistent section %d", i, rel.TargetSection))
			}
			if int(rel.TargetOffset) > len(sections[rel.TargetSection].Data) {
				return nil, errWrite(fmt.Sprintf("gr2: relocation in section %d targets offset %d beyond section %d's %d bytes",
					i, rel.TargetOffset, rel.TargetSection, len(sections[rel.TargetSection].Data)))
			}
		}
	}

	// Lay out data blobs after the section-header table, then the
	// relocation tables after all data.
	tableStart := magicBlockSize + headerSize
	pos := tableStart + len(sections)*sectionHeaderSize
	headers := make([]SectionHeader, len(sections))
	for i, s := range sections {
		pos = align(pos, sectionAlignment)
		headers[i] = SectionHeader{
			Compression:      CompressionNone,
			DataOffset:       uint32(pos),
			CompressedSize:   uint32(len(s.Data)),
			DecompressedSize: uint32(len(s.Data)),
			Alignment:        sectionAlignment,
			RelocationCount:  uint32(len(s.Relocations)),
		}
		pos += len(s.Data)
	}
	for i, s := range sections {
		headers[i].RelocationOffset = uint32(pos)
		pos += len(s.Relocations) * relocationEntrySize
	}
	totalSize := pos

	w := binstream.NewWriter()
	w.WriteBytes(Signature[:])
	for i := len(Signature); i < magicBlockSize; i++ {
		w.U8(0)
	}

	h := Header{
		Version:      SupportedVersion,
		TotalSize:    uint32(totalSize),
		SectionCount: uint32(len(sections)),
		RootType:     rootType,
		RootNode:     rootNode,
		Tag:          BG3Tag,
	}
	writeHeader(w, h)
	for _, sh := range headers {
		writeSectionHeader(w, sh)
	}
	for i, s := range sections {
		progress.Report(lslib.Progress{Phase: lslib.PhaseWrite, Current: i + 1, Total: len(sections)})
		pad(w, int(headers[i].DataOffset))
		data := make([]byte, len(s.Data))
		copy(data, s.Data)
		for _, rel := range s.Relocations {
			putUint32(data[rel.OffsetInSource:], rel.TargetSection)
			putUint32(data[rel.OffsetInSource+4:], rel.TargetOffset)
		}
		w.WriteBytes(data)
	}
	for _, s := range sections {
		for _, rel := range s.Relocations {
			w.U32(rel.OffsetInSource)
			w.U32(rel.TargetSection)
			w.U32(rel.TargetOffset)
		}
	}

	out := w.Bytes()
	putUint32(out[magicBlockSize+8:], CRC32Body(out))
	return out, nil
}

func align(pos, to int) int {
	if rem := pos % to; rem != 0 {
		return pos + to - rem
	}
	return pos
}

func pad(w *binstream.Writer, to int) {
	for w.Len() < to {
		w.U8(0)
	}
}

func writeHeader(w *binstream.Writer, h Header) {
	w.U32(h.Version)
	w.U32(h.TotalSize)
	w.U32(h.CRC32)
	w.U32(h.SectionCount)
	w.U32(h.RootType.Section)
	w.U32(h.RootType.Offset)
	w.U32(h.RootNode.Section)
	w.U32(h.RootNode.Offset)
	w.U32(h.Tag)
	for n := 9 * 4; n < headerSize; n += 4 {
		w.U32(0)
	}
}

func writeSectionHeader(w *binstream.Writer, sh SectionHeader) {
	w.U32(uint32(sh.Compression))
	w.U32(sh.DataOffset)
	w.U32(sh.CompressedSize)
	w.U32(sh.DecompressedSize)
	w.U32(sh.Alignment)
	w.U32(sh.First16BitOffset)
	w.U32(sh.First8BitOffset)
	w.U32(sh.RelocationOffset)
	w.U32(sh.RelocationCount)
	w.U32(sh.MixedMarshallingOffset)
	w.U32(sh.MixedMarshallingCount)
}
