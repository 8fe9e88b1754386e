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

// Package lsf implements the binary LSF document format: a
// name-interned, section-addressed encoding of the same tagged tree
// that lsx and lsj represent as XML and JSON respectively.
//
// Section layout: names / nodes / attributes / values, plus an
// optional keys-adjacency section. Attribute records pack their type
// into a type_info word (type_id = type_info & 0x3F, value length =
// type_info >> 6).
package lsf

import (
	"fmt"

	"lslib.dev/go/lslib/internal/binstream"
)

// Magic is the 4-byte file signature, "LSOF" in ASCII, written at
// offset 0 of every LSF file.
var Magic = [4]byte{'L', 'S', 'O', 'F'}

// Supported version range. Versions below MinVersion are rejected as
// UnsupportedVersion; versions above MaxVersion are accepted for
// reading (future-format tolerance) but always written as MaxVersion.
const (
	MinVersion = 7
	MaxVersion = 7
)

// Flag bits in the header's Flags word.
const (
	FlagZlibCompressed uint32 = 1 << iota
	FlagLZ4Compressed
	FlagHasSectionSizes
)

// header is the fixed file header, 64 bytes on disk: the magic, the
// u32 version, the u64 engine version and the twelve u32 words below.
// No reserved or padding bytes follow them.
type header struct {
	Version            uint32
	EngineVersion       uint64 // packed major/minor/revision/build, see packEngineVersion
	NamesSize           uint32
	NamesCompressedSize uint32
	NodesSize           uint32
	NodesCompressedSize uint32
	AttributesSize      uint32
	AttributesCompressedSize uint32
	ValuesSize          uint32
	ValuesCompressedSize uint32
	Flags               uint32
	HasKeysAdjacency    uint32
	KeysSize            uint32
	KeysCompressedSize  uint32
}

func readHeader(r *binstream.Reader) (header, error) {
	var h header
	magic, err := r.ReadBytes(4)
	if err != nil {
		return h, err
	}
	if magic[0] != Magic[0] || magic[1] != Magic[1] || magic[2] != Magic[2] || magic[3] != Magic[3] {
		return h, errInvalidMagic(fmt.Sprintf("got %x, want LSOF", magic))
	}
	if h.Version, err = r.U32(); err != nil {
		return h, err
	}
	if h.EngineVersion, err = r.U64(); err != nil {
		return h, err
	}
	for _, p := range []*uint32{
		&h.NamesSize, &h.NamesCompressedSize,
		&h.NodesSize, &h.NodesCompressedSize,
		&h.AttributesSize, &h.AttributesCompressedSize,
		&h.ValuesSize, &h.ValuesCompressedSize,
		&h.Flags, &h.HasKeysAdjacency,
		&h.KeysSize, &h.KeysCompressedSize,
	} {
		if *p, err = r.U32(); err != nil {
			return h, err
		}
	}
	return h, nil
}

func writeHeader(w *binstream.Writer, h header) {
	w.WriteBytes(Magic[:])
	w.U32(h.Version)
	w.U64(h.EngineVersion)
	for _, v := range []uint32{
		h.NamesSize, h.NamesCompressedSize,
		h.NodesSize, h.NodesCompressedSize,
		h.AttributesSize, h.AttributesCompressedSize,
		h.ValuesSize, h.ValuesCompressedSize,
		h.Flags, h.HasKeysAdjacency,
		h.KeysSize, h.KeysCompressedSize,
	} {
		w.U32(v)
	}
}

// packEngineVersion bit-packs a four-part version into the header's
// 64-bit EngineVersion word: major in bits 55-61, minor in 47-54,
// revision in 31-46, build in 0-30.
func packEngineVersion(major, minor, revision, build uint32) uint64 {
	return (uint64(major&0x7F) << 55) |
		(uint64(minor&0xFF) << 47) |
		(uint64(revision&0xFFFF) << 31) |
		uint64(build&0x7FFFFFFF)
}

// NamesCompressedSizeOr returns the on-disk byte count to read for the
// names section: the compressed size if the section was compressed,
// otherwise the raw size (compressedSize == 0 signals "stored as-is").
func (h header) NamesCompressedSizeOr(rawSize uint32) uint32 {
	if h.NamesCompressedSize == 0 {
		return rawSize
	}
	return h.NamesCompressedSize
}

func (h header) NodesCompressedSizeOr(rawSize uint32) uint32 {
	if h.NodesCompressedSize == 0 {
		return rawSize
	}
	return h.NodesCompressedSize
}

func (h header) AttributesCompressedSizeOr(rawSize uint32) uint32 {
	if h.AttributesCompressedSize == 0 {
		return rawSize
	}
	return h.AttributesCompressedSize
}

func (h header) ValuesCompressedSizeOr(rawSize uint32) uint32 {
	if h.ValuesCompressedSize == 0 {
		return rawSize
	}
	return h.ValuesCompressedSize
}

func (h header) KeysCompressedSizeOr(rawSize uint32) uint32 {
	if h.KeysCompressedSize == 0 {
		return rawSize
	}
	return h.KeysCompressedSize
}

func unpackEngineVersion(v uint64) (major, minor, revision, build uint32) {
	major = uint32((v >> 55) & 0x7F)
	minor = uint32((v >> 47) & 0xFF)
	revision = uint32((v >> 31) & 0xFFFF)
	build = uint32(v & 0x7FFFFFFF)
	return
}
