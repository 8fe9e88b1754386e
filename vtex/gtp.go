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

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/pierrec/lz4/v4"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/dds"
)

// GTPMagic is the 4-byte little-endian magic for a GTP page file,
// "GVTP" read as a little-endian uint32 (the GTS-matching sibling of
// GTSMagic).
const GTPMagic uint32 = 0x50545647

const gtpHeaderSize = 24 // magic(4) + version(4) + GUID(16)

// GTPHeader is the 24-byte fixed header at the start of a GTP file.
type GTPHeader struct {
	Magic   uint32
	Version uint32
	GUID    [16]byte
}

// ChunkHeader precedes each chunk's compressed bytes within a page.
type ChunkHeader struct {
	Codec            Codec
	ParameterBlockID uint32
	Size             uint32
}

// GTPFile is a parsed GTP page file: its header and, for every page,
// the chunk count and per-chunk byte offsets relative to the page
// start.
type GTPFile struct {
	Header        GTPHeader
	data          []byte
	pageSize      uint32
	chunkOffsets  [][]uint32
	tileW, tileH  int32
}

// OpenGTP parses a GTP file's header and pre-scans every page's chunk
// offset table.
func OpenGTP(data []byte, gts *File) (*GTPFile, error) {
	if len(data) < gtpHeaderSize {
		return nil, lslib.NewError(lslib.KindIO, "vtex: gtp file too short for header")
	}
	h := GTPHeader{
		Magic:   binary.LittleEndian.Uint32(data[0:]),
		Version: binary.LittleEndian.Uint32(data[4:]),
	}
	copy(h.GUID[:], data[8:24])
	if h.Magic != GTPMagic {
		return nil, lslib.NewError(lslib.KindInvalidMagic,
			fmt.Sprintf("vtex: gtp magic 0x%08X, want 0x%08X", h.Magic, GTPMagic))
	}

	pageSize := gts.Header.PageSize
	if pageSize == 0 {
		return nil, lslib.NewError(lslib.KindIO, "vtex: gts page size is zero")
	}
	numPages := len(data) / int(pageSize)

	f := &GTPFile{
		Header:   h,
		data:     data,
		pageSize: pageSize,
		tileW:    gts.Header.TileWidth,
		tileH:    gts.Header.TileHeight,
	}
	f.chunkOffsets = make([][]uint32, numPages)
	for p := 0; p < numPages; p++ {
		pageStart := p * int(pageSize)
		// Page 0 begins with the GTP header; its chunk table follows it.
		tableStart := pageStart
		if p == 0 {
			tableStart += gtpHeaderSize
		}
		if tableStart+4 > len(data) {
			break
		}
		count := binary.LittleEndian.Uint32(data[tableStart:])
		offs := make([]uint32, 0, count)
		off := tableStart + 4
		for c := uint32(0); c < count; c++ {
			if off+4 > len(data) {
				break
			}
			offs = append(offs, binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		f.chunkOffsets[p] = offs
	}
	return f, nil
}

// ExtractChunk decompresses one chunk's tile bytes.
func (f *GTPFile) ExtractChunk(pageIndex, chunkIndex int, gts *File) ([]byte, error) {
	if pageIndex < 0 || pageIndex >= len(f.chunkOffsets) {
		return nil, lslib.NewError(lslib.KindInvalidRelocation,
			fmt.Sprintf("vtex: invalid page index %d", pageIndex))
	}
	offsets := f.chunkOffsets[pageIndex]
	if chunkIndex < 0 || chunkIndex >= len(offsets) {
		return nil, lslib.NewError(lslib.KindInvalidRelocation,
			fmt.Sprintf("vtex: invalid chunk index %d in page %d", chunkIndex, pageIndex))
	}

	pageStart := pageIndex * int(f.pageSize)
	absOffset := pageStart + int(offsets[chunkIndex])
	if absOffset+12 > len(f.data) {
		return nil, lslib.NewError(lslib.KindIO, "vtex: chunk header past end of file")
	}

	ch := ChunkHeader{
		Codec:            codecFromU32(binary.LittleEndian.Uint32(f.data[absOffset:])),
		ParameterBlockID: binary.LittleEndian.Uint32(f.data[absOffset+4:]),
		Size:             binary.LittleEndian.Uint32(f.data[absOffset+8:]),
	}
	dataStart := absOffset + 12
	dataEnd := dataStart + int(ch.Size)
	if dataEnd > len(f.data) {
		return nil, lslib.NewError(lslib.KindIO, "vtex: chunk data past end of file")
	}
	compressed := f.data[dataStart:dataEnd]

	switch ch.Codec {
	case CodecBC:
		method := gts.CompressionMethod(ch.ParameterBlockID)
		outputSize := bcTileOutputSize(int(f.tileW), int(f.tileH))
		return decompressTile(compressed, outputSize, method)
	case CodecUniform:
		return make([]byte, bcTileOutputSize(int(f.tileW), int(f.tileH))), nil
	default:
		return compressed, nil
	}
}

// bcTileOutputSize computes a BC tile's decompressed byte size: a full
// tile plus its embedded half-resolution mip, at 16 bytes per 4x4
// block. The size assumes 16-byte blocks for every layer, including
// the DXT1 and ATI1 layers that the FourCC table in gts.go maps to the
// 8-byte-block BC1 and BC4 formats.
func bcTileOutputSize(w, h int) int {
	main := 16 * ceilDiv(w, 4) * ceilDiv(h, 4)
	mip := 16 * ceilDiv(w, 8) * ceilDiv(h, 8)
	return main + mip
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func decompressTile(compressed []byte, outputSize int, method TileCompression) ([]byte, error) {
	switch method {
	case TileRaw:
		return compressed, nil
	case TileLZ4:
		dst := make([]byte, outputSize)
		n, err := lz4.UncompressBlock(compressed, dst)
		if err != nil {
			return nil, lslib.Wrap(lslib.KindDecompressionError, err)
		}
		return dst[:n], nil
	case TileFastLZ:
		return fastlzDecompress(compressed, outputSize)
	default:
		return compressed, nil
	}
}

// ExtractLayerImage composites every tile belonging to one layer of a
// page file into a single RGBA image at that layer's tiled resolution,
// decoding each tile's BC-compressed main mip and trimming the
// per-tile border.
func (f *GTPFile) ExtractLayerImage(gts *File, pageFileIndex uint16, layer int) (*image.NRGBA, error) {
	tiles := gts.TilesForPageFile(pageFileIndex)
	if layer < 0 || layer >= len(tiles) {
		return nil, lslib.NewError(lslib.KindInvalidRelocation, "vtex: layer index out of range")
	}
	locs := tiles[layer]
	if len(locs) == 0 {
		return nil, lslib.NewError(lslib.KindInvalidRelocation, "vtex: layer has no tiles in this page file")
	}
	format := gts.LayerFormat(layer)
	if format == dds.FormatUnknown {
		return nil, lslib.NewError(lslib.KindUnsupportedVersion, "vtex: layer has no recognized BC format")
	}

	contentW, contentH := int(gts.ContentWidth()), int(gts.ContentHeight())
	border := int(gts.Header.TileBorder)

	maxX, maxY := 0, 0
	for _, l := range locs {
		if int(l.X) > maxX {
			maxX = int(l.X)
		}
		if int(l.Y) > maxY {
			maxY = int(l.Y)
		}
	}
	out := image.NewNRGBA(image.Rect(0, 0, (maxX+1)*contentW, (maxY+1)*contentH))

	mainSize := 16 * ceilDiv(int(f.tileW), 4) * ceilDiv(int(f.tileH), 4)

	for _, loc := range locs {
		chunkBytes, err := f.ExtractChunk(int(loc.Page), int(loc.Chunk), gts)
		if err != nil {
			return nil, err
		}
		if len(chunkBytes) < mainSize {
			continue
		}
		tileImg := &dds.Image{
			Width:  int(f.tileW),
			Height: int(f.tileH),
			Format: format,
			Data:   chunkBytes[:mainSize],
		}
		rgba, err := tileImg.ToRGBA()
		if err != nil {
			return nil, err
		}
		compositeTile(out, rgba, int(loc.X)*contentW, int(loc.Y)*contentH, border)
	}
	return out, nil
}

// compositeTile copies src's border-trimmed interior into dst at
// (dstX, dstY).
func compositeTile(dst *image.NRGBA, src *image.NRGBA, dstX, dstY, border int) {
	b := src.Bounds()
	w, h := b.Dx()-2*border, b.Dy()-2*border
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x+border, y+border
			si := src.PixOffset(sx, sy)
			di := dst.PixOffset(dstX+x, dstY+y)
			if si+4 > len(src.Pix) || di+4 > len(dst.Pix) {
				continue
			}
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
}
