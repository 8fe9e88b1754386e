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

// Package lspk implements the LSPK archive container: the compressed,
// possibly multi-part package format every other Larian asset is
// shipped inside.
//
// On-disk layout: 32-byte magic block, versioned header, concatenated
// per-file compressed blobs, LZ4-compressed file table, footer. Zlib
// entries use stdlib compress/zlib; LZ4 entries use
// github.com/pierrec/lz4/v4 with a four-strategy fallback chain
// (decompress.go) because archives in the wild mix block- and
// frame-format output.
package lspk

import (
	"fmt"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/internal/binstream"
)

// Magic is the 4-byte LSPK signature.
var Magic = [4]byte{'L', 'S', 'P', 'K'}

// Supported versions: written as 18; read from 10 upward, with no
// upper bound checked.
const (
	MinReadVersion = 10
	WriteVersion   = 18
)

// Codec selects the per-file compression method, packed in the low
// nibble of a file-table entry's flags byte.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecZlib
	CodecLZ4
)

// codecFromFlags extracts the codec from a flags byte. Any nibble value
// outside the enumeration is treated as CodecNone for forward
// compatibility; callers needing to surface a warning can inspect
// Entry.UnknownCodec.
func codecFromFlags(flags uint8) (Codec, bool) {
	switch flags & 0x0F {
	case 0:
		return CodecNone, true
	case 1:
		return CodecZlib, true
	case 2:
		return CodecLZ4, true
	default:
		return CodecNone, false
	}
}

func (c Codec) flagsNibble() uint8 {
	switch c {
	case CodecZlib:
		return 1
	case CodecLZ4:
		return 2
	default:
		return 0
	}
}

// Entry describes one file in the archive's file table.
type Entry struct {
	Path             string
	Offset           uint64
	CompressedSize   uint32
	DecompressedSize uint32
	Codec            Codec
	UnknownCodec     bool
	ArchivePart      uint8
	CRC32            uint32
}

// header is the fixed 32-byte magic/version block: signature, format
// version, footer offset, header size.
type header struct {
	Version      uint32
	FooterOffset uint64
	HeaderSize   uint32
}

func readHeader(r *binstream.Reader) (header, error) {
	var h header
	magic, err := r.ReadBytes(4)
	if err != nil {
		return h, lslib.Wrap(lslib.KindIO, err)
	}
	if magic[0] != Magic[0] || magic[1] != Magic[1] || magic[2] != Magic[2] || magic[3] != Magic[3] {
		return h, lslib.NewError(lslib.KindInvalidMagic, fmt.Sprintf("got %x, want LSPK", magic))
	}
	if h.Version, err = r.U32(); err != nil {
		return h, lslib.Wrap(lslib.KindIO, err)
	}
	if h.FooterOffset, err = r.U64(); err != nil {
		return h, lslib.Wrap(lslib.KindIO, err)
	}
	if h.HeaderSize, err = r.U32(); err != nil {
		return h, lslib.Wrap(lslib.KindIO, err)
	}
	// Remaining bytes up to the 32-byte magic block are reserved/
	// version-dependent padding; skip to a fixed offset rather than
	// parse fields this engine never needs.
	r.Seek(32)
	if h.Version < MinReadVersion {
		return h, lslib.NewError(lslib.KindUnsupportedVersion,
			fmt.Sprintf("lspk version %d is below minimum supported %d", h.Version, MinReadVersion))
	}
	return h, nil
}

func writeHeader(w *binstream.Writer, footerOffset uint64) {
	w.WriteBytes(Magic[:])
	w.U32(WriteVersion)
	w.U64(footerOffset)
	w.U32(32) // header size
	for w.Len() < 32 {
		w.U8(0)
	}
}
