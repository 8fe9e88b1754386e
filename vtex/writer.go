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

package vtex

import "encoding/binary"

// Chunk is one tile's compressed bytes awaiting assignment to a
// page.
type Chunk struct {
	Codec            Codec
	ParameterBlockID uint32
	Data             []byte
}

type page struct {
	chunks   []Chunk
	usedSize uint32
}

// Writer packs chunks into fixed-size GTP pages, finalizing a page
// once the next chunk would overflow PageSize.
type Writer struct {
	guid        [16]byte
	pageSize    uint32
	pages       []page
	currentPage int
}

// NewWriter starts a fresh GTP writer for the given archive GUID and
// page size.
func NewWriter(guid [16]byte, pageSize uint32) *Writer {
	return &Writer{guid: guid, pageSize: pageSize, pages: []page{{}}}
}

// AddChunk appends a chunk, opening a new page first if it would not
// fit in the current one, and returns its (pageIndex, chunkIndex).
func (w *Writer) AddChunk(c Chunk) (pageIndex, chunkIndex uint16) {
	chunkSize := uint32(12 + len(c.Data))
	cur := &w.pages[w.currentPage]
	newHeaderSize := uint32(4 + 4*(len(cur.chunks)+1))
	if w.currentPage == 0 {
		newHeaderSize += uint32(gtpHeaderSize)
	}
	totalNeeded := newHeaderSize + cur.usedSize + chunkSize

	if totalNeeded > w.pageSize && len(cur.chunks) > 0 {
		w.pages = append(w.pages, page{})
		w.currentPage = len(w.pages) - 1
		cur = &w.pages[w.currentPage]
	}

	pageIndex = uint16(w.currentPage)
	chunkIndex = uint16(len(cur.chunks))
	cur.usedSize += chunkSize
	cur.chunks = append(cur.chunks, c)
	return pageIndex, chunkIndex
}

// NumPages returns the number of pages accumulated so far.
func (w *Writer) NumPages() int { return len(w.pages) }

// Write serializes every page into one GTP file, with the 24-byte
// header occupying the start of page 0 and each page zero-padded to
// PageSize.
func (w *Writer) Write() []byte {
	totalSize := len(w.pages) * int(w.pageSize)
	out := make([]byte, totalSize)

	binary.LittleEndian.PutUint32(out[0:], GTPMagic)
	binary.LittleEndian.PutUint32(out[4:], 4)
	copy(out[8:24], w.guid[:])

	for pageIdx, p := range w.pages {
		pageStart := pageIdx * int(w.pageSize)
		headerSize := 0
		if pageIdx == 0 {
			headerSize = gtpHeaderSize
		}
		dataStart := pageStart + headerSize

		binary.LittleEndian.PutUint32(out[dataStart:], uint32(len(p.chunks)))
		chunkTableSize := 4 + 4*len(p.chunks)
		offset := uint32(headerSize + chunkTableSize)
		offTable := dataStart + 4
		for _, c := range p.chunks {
			binary.LittleEndian.PutUint32(out[offTable:], offset)
			offTable += 4
			offset += uint32(12 + len(c.Data))
		}

		pos := dataStart + chunkTableSize
		for _, c := range p.chunks {
			binary.LittleEndian.PutUint32(out[pos:], uint32(c.Codec))
			binary.LittleEndian.PutUint32(out[pos+4:], c.ParameterBlockID)
			binary.LittleEndian.PutUint32(out[pos+8:], uint32(len(c.Data)))
			pos += 12
			copy(out[pos:], c.Data)
			pos += len(c.Data)
		}
	}
	return out
}
