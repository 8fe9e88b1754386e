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

// Package gr2 implements the GR2 (Granny 3D) skeletal-mesh container:
// magic block, versioned header, section table, and cross-section
// relocation tables. Sections are stored uncompressed or BitKnit-
// compressed; after decompression, per-section relocation lists patch
// the 64-bit pointer slots embedded in the section data.
//
// Fixed record widths: 32-byte magic block, 72-byte v7 header, 44-byte
// section-header entries, 12-byte relocation entries. The BitKnit
// decoder is a documented partial implementation (see bitknit.go).
package gr2

import (
	"fmt"
	"hash/crc32"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/internal/binstream"
)

// PointerSize selects 32- or 64-bit pointer width, encoded in the
// magic signature.
type PointerSize int

const (
	Pointer32 PointerSize = iota
	Pointer64
)

// Endian selects the byte order the magic signature encodes.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// Signature is the canonical 8-byte magic this package reads and
// writes: 64-bit pointers, little-endian, the only variant BG3 ships.
var Signature = [8]byte{0xB8, 0x67, 0xB0, 0xCA, 0xF8, 0x6D, 0xB1, 0x0F}

const magicBlockSize = 32
const headerSize = 72
const sectionHeaderSize = 44
const relocationEntrySize = 12

// SupportedVersion is the only GR2 format version this package reads
// or writes.
const SupportedVersion = 7

// BG3Tag identifies the BG3 content schema in the header's Tag field.
const BG3Tag uint32 = 0x80000037

// Compression identifies a section's on-disk compression.
type Compression uint32

const (
	CompressionNone Compression = 0
	CompressionBitKnit Compression = 0x80000039
)

// SectionRef is a (section, offset) pointer into another section's
// decompressed data, used for the header's root-type and root-node
// references.
type SectionRef struct {
	Section uint32
	Offset  uint32
}

// Header is the fixed 72-byte v7 header following the magic block.
type Header struct {
	Version        uint32
	TotalSize      uint32
	CRC32          uint32
	SectionCount   uint32
	RootType       SectionRef
	RootNode       SectionRef
	Tag            uint32
}

// SectionHeader is one 44-byte entry in the section-header table.
type SectionHeader struct {
	Compression           Compression
	DataOffset             uint32
	CompressedSize         uint32
	DecompressedSize       uint32
	Alignment              uint32
	First16BitOffset       uint32
	First8BitOffset        uint32
	RelocationOffset       uint32
	RelocationCount        uint32
	MixedMarshallingOffset uint32
	MixedMarshallingCount  uint32
}

// Relocation is one pointer-patch instruction: the 64-bit pointer slot
// at OffsetInSource, once its section is decompressed, should resolve
// to (TargetSection, TargetOffset).
type Relocation struct {
	OffsetInSource uint32
	TargetSection  uint32
	TargetOffset   uint32
}

// File is a fully parsed and decompressed GR2 container: every
// section's bytes with its relocations already applied in place (the
// 8-byte slot at each relocation's OffsetInSource now holds the
// little-endian pair (TargetSection, TargetOffset) rather than a
// runtime pointer).
type File struct {
	Header       Header
	PointerSize  PointerSize
	Endian       Endian
	Sections     []SectionHeader
	SectionData  [][]byte
	Relocations  [][]Relocation
}

func errMagic(detail string) error   { return lslib.NewError(lslib.KindInvalidMagic, detail) }
func errVersion(detail string) error { return lslib.NewError(lslib.KindUnsupportedVersion, detail) }

// Parse reads, decompresses, and relocation-fixes a GR2 file.
func Parse(data []byte) (*File, error) {
	if len(data) < magicBlockSize+headerSize {
		return nil, lslib.NewError(lslib.KindIO, "gr2: file too short for magic+header")
	}
	sig := data[:8]
	if !bytesEqual(sig, Signature[:]) {
		return nil, errMagic(fmt.Sprintf("gr2: magic signature %x not recognized", sig))
	}

	r := binstream.NewReader(data[magicBlockSize:])
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Version != SupportedVersion {
		return nil, errVersion(fmt.Sprintf("gr2: version %d, want %d", h.Version, SupportedVersion))
	}
	if h.Tag != BG3Tag {
		return nil, errVersion(fmt.Sprintf("gr2: content tag 0x%08X, want BG3 tag 0x%08X", h.Tag, BG3Tag))
	}
	// A zero CRC field marks a file written without a checksum.
	if h.CRC32 != 0 {
		if got := CRC32Body(data); got != h.CRC32 {
			return nil, lslib.NewError(lslib.KindIO,
				fmt.Sprintf("gr2: body CRC32 0x%08X does not match header 0x%08X", got, h.CRC32))
		}
	}

	sections := make([]SectionHeader, h.SectionCount)
	for i := range sections {
		sh, err := readSectionHeader(r)
		if err != nil {
			return nil, err
		}
		sections[i] = sh
	}

	f := &File{
		Header:      h,
		PointerSize: Pointer64,
		Endian:      LittleEndian,
		Sections:    sections,
		SectionData: make([][]byte, len(sections)),
		Relocations: make([][]Relocation, len(sections)),
	}

	for i, sh := range sections {
		compEnd := int(sh.DataOffset) + int(sh.CompressedSize)
		if compEnd > len(data) {
			return nil, lslib.NewError(lslib.KindIO, fmt.Sprintf("gr2: section %d data out of range", i))
		}
		compressed := data[sh.DataOffset:compEnd]
		decompressed, err := decompressSection(compressed, sh)
		if err != nil {
			return nil, err
		}
		f.SectionData[i] = decompressed

		relocs, err := readRelocations(data, sh)
		if err != nil {
			return nil, err
		}
		f.Relocations[i] = relocs
	}

	if err := f.applyRelocations(); err != nil {
		return nil, err
	}
	return f, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func readHeader(r *binstream.Reader) (Header, error) {
	var h Header
	var err error
	if h.Version, err = r.U32(); err != nil {
		return h, err
	}
	if h.TotalSize, err = r.U32(); err != nil {
		return h, err
	}
	if h.CRC32, err = r.U32(); err != nil {
		return h, err
	}
	if h.SectionCount, err = r.U32(); err != nil {
		return h, err
	}
	if h.RootType.Section, err = r.U32(); err != nil {
		return h, err
	}
	if h.RootType.Offset, err = r.U32(); err != nil {
		return h, err
	}
	if h.RootNode.Section, err = r.U32(); err != nil {
		return h, err
	}
	if h.RootNode.Offset, err = r.U32(); err != nil {
		return h, err
	}
	if h.Tag, err = r.U32(); err != nil {
		return h, err
	}
	// Remaining header bytes up to headerSize are reserved padding.
	consumed := 9 * 4
	if headerSize > consumed {
		if _, err := r.ReadBytes(headerSize - consumed); err != nil {
			return h, err
		}
	}
	return h, nil
}

func readSectionHeader(r *binstream.Reader) (SectionHeader, error) {
	var sh SectionHeader
	var err error
	var compression uint32
	if compression, err = r.U32(); err != nil {
		return sh, err
	}
	sh.Compression = Compression(compression)
	for _, p := range []*uint32{
		&sh.DataOffset, &sh.CompressedSize, &sh.DecompressedSize, &sh.Alignment,
		&sh.First16BitOffset, &sh.First8BitOffset,
		&sh.RelocationOffset, &sh.RelocationCount,
		&sh.MixedMarshallingOffset, &sh.MixedMarshallingCount,
	} {
		if *p, err = r.U32(); err != nil {
			return sh, err
		}
	}
	return sh, nil
}

func readRelocations(data []byte, sh SectionHeader) ([]Relocation, error) {
	out := make([]Relocation, 0, sh.RelocationCount)
	off := int(sh.RelocationOffset)
	for i := uint32(0); i < sh.RelocationCount; i++ {
		if off+relocationEntrySize > len(data) {
			return nil, lslib.NewError(lslib.KindInvalidRelocation, "gr2: relocation table out of range")
		}
		r := binstream.NewReader(data[off : off+relocationEntrySize])
		srcOff, _ := r.U32()
		tgtSec, _ := r.U32()
		tgtOff, _ := r.U32()
		out = append(out, Relocation{OffsetInSource: srcOff, TargetSection: tgtSec, TargetOffset: tgtOff})
		off += relocationEntrySize
	}
	return out, nil
}

// applyRelocations walks every section's relocation list and rewrites
// the 8-byte pointer slot at each entry's OffsetInSource to hold the
// little-endian pair (TargetSection u32, TargetOffset u32), validating
// that the target lands inside its section's decompressed bounds.
func (f *File) applyRelocations() error {
	for i, relocs := range f.Relocations {
		for _, reloc := range relocs {
			if int(reloc.TargetSection) >= len(f.SectionData) {
				return lslib.NewError(lslib.KindInvalidRelocation,
					fmt.Sprintf("gr2: relocation in section %d targets nonexistent section %d", i, reloc.TargetSection))
			}
			targetSec := f.SectionData[reloc.TargetSection]
			if int(reloc.TargetOffset) > len(targetSec) {
				return lslib.NewError(lslib.KindInvalidRelocation,
					fmt.Sprintf("gr2: relocation in section %d targets offset %d beyond section %d's %d bytes",
						i, reloc.TargetOffset, reloc.TargetSection, len(targetSec)))
			}
			sec := f.SectionData[i]
			if int(reloc.OffsetInSource)+8 > len(sec) {
				return lslib.NewError(lslib.KindInvalidRelocation,
					fmt.Sprintf("gr2: relocation slot at %d exceeds section %d's %d bytes", reloc.OffsetInSource, i, len(sec)))
			}
			putUint32(sec[reloc.OffsetInSource:], reloc.TargetSection)
			putUint32(sec[reloc.OffsetInSource+4:], reloc.TargetOffset)
		}
	}
	return nil
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// ResolvePointer reads the (section, offset) pair a relocation wrote
// into the 8-byte slot at (section, offset), for the model codec to
// follow without re-walking the relocation table.
func (f *File) ResolvePointer(section, offset uint32) (targetSection, targetOffset uint32, ok bool) {
	if int(section) >= len(f.SectionData) {
		return 0, 0, false
	}
	sec := f.SectionData[section]
	if int(offset)+8 > len(sec) {
		return 0, 0, false
	}
	targetSection = uint32(sec[offset]) | uint32(sec[offset+1])<<8 | uint32(sec[offset+2])<<16 | uint32(sec[offset+3])<<24
	targetOffset = uint32(sec[offset+4]) | uint32(sec[offset+5])<<8 | uint32(sec[offset+6])<<16 | uint32(sec[offset+7])<<24
	return targetSection, targetOffset, true
}

// SectionBytes returns section i's fully decompressed and
// relocation-fixed bytes.
func (f *File) SectionBytes(i uint32) []byte {
	if int(i) >= len(f.SectionData) {
		return nil
	}
	return f.SectionData[i]
}

// CRC32Body computes the CRC32 the header's CRC32 field covers:
// everything in the file after the 32-byte magic block, with the CRC
// field itself treated as zero (it cannot cover its own final value).
func CRC32Body(data []byte) uint32 {
	if len(data) <= magicBlockSize {
		return 0
	}
	crcField := magicBlockSize + 8
	crc := crc32.Update(0, crc32.IEEETable, data[magicBlockSize:crcField])
	crc = crc32.Update(crc, crc32.IEEETable, []byte{0, 0, 0, 0})
	return crc32.Update(crc, crc32.IEEETable, data[crcField+4:])
}
