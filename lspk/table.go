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

package lspk

import (
	"fmt"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/internal/binstream"
)

// footer carries the entry count and the compressed file table's byte
// sizes, needed to locate and inflate the table without a separate
// index.
type footer struct {
	NumFiles            uint32
	TableSizeCompressed uint32
	TableSizeRaw        uint32
}

func writeEntry(w *binstream.Writer, e Entry) {
	pathBytes := []byte(e.Path)
	w.U16(uint16(len(pathBytes)))
	w.WriteBytes(pathBytes)
	w.U64(e.Offset)
	w.U32(e.CompressedSize)
	w.U32(e.DecompressedSize)
	flags := e.Codec.flagsNibble()
	w.U8(flags)
	w.U8(e.ArchivePart)
	w.U32(e.CRC32)
}

func readEntry(r *binstream.Reader) (Entry, error) {
	var e Entry
	pathLen, err := r.U16()
	if err != nil {
		return e, err
	}
	pathBytes, err := r.ReadBytes(int(pathLen))
	if err != nil {
		return e, err
	}
	e.Path = string(pathBytes)
	if e.Offset, err = r.U64(); err != nil {
		return e, err
	}
	if e.CompressedSize, err = r.U32(); err != nil {
		return e, err
	}
	if e.DecompressedSize, err = r.U32(); err != nil {
		return e, err
	}
	flags, err := r.U8()
	if err != nil {
		return e, err
	}
	codec, ok := codecFromFlags(flags)
	e.Codec = codec
	e.UnknownCodec = !ok
	if e.ArchivePart, err = r.U8(); err != nil {
		return e, err
	}
	if e.CRC32, err = r.U32(); err != nil {
		return e, err
	}
	return e, nil
}

// writeTable serializes entries and LZ4-compresses the result, the
// file table's mandatory codec.
func writeTable(entries []Entry) (compressed []byte, rawSize int, err error) {
	w := binstream.NewWriter()
	w.U32(uint32(len(entries)))
	for _, e := range entries {
		writeEntry(w, e)
	}
	raw := w.Bytes()
	comp, cerr := compressLZ4HC(raw)
	if cerr != nil {
		// Incompressible table: store raw with CodecNone semantics by
		// returning it unchanged; readTable's decompress call treats a
		// rawSize==compressedSize table as already-inflated.
		return raw, len(raw), nil
	}
	return comp, len(raw), nil
}

func readTable(compressed []byte, rawSize int) ([]Entry, error) {
	raw := compressed
	if len(compressed) != rawSize {
		decompressed, err := decompressLZ4(compressed, rawSize)
		if err != nil {
			return nil, lslib.Wrap(lslib.KindDecompressionError, err)
		}
		raw = decompressed
	}
	r := binstream.NewReader(raw)
	count, err := r.U32()
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	entries := make([]Entry, count)
	for i := range entries {
		e, err := readEntry(r)
		if err != nil {
			return nil, lslib.Wrap(lslib.KindIO, fmt.Errorf("file table entry %d: %w", i, err))
		}
		entries[i] = e
	}
	return entries, nil
}
