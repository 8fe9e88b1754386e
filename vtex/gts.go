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

// Package vtex implements Game Texture Set (GTS) metadata and Game
// Texture Page (GTP) tile storage, the virtual-texture format pair
// behind BG3's terrain/world textures.
//
// A GTS file carries the metadata (parameter blocks, mip levels,
// page-file list, packed tile IDs, flat tile infos); one or more GTP
// files carry the page-aligned chunk data. Tile decompression uses
// github.com/pierrec/lz4/v4 for the LZ4 path and a FastLZ level-1
// decoder (fastlz.go) for the FastLZ path.
package vtex

import (
	"encoding/binary"
	"fmt"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/dds"
)

// GTSMagic is the 4-byte little-endian magic at the start of a GTS file.
const GTSMagic uint32 = 0x53545647 // "GVTS" as a little-endian uint32 read

// Header mirrors the on-disk GTS header. The single-letter field
// names are fields reverse-engineering never assigned semantic meaning
// to; this decoder keeps them rather than inventing meaning it doesn't
// have.
type Header struct {
	Magic                      uint32
	Version                    uint32
	Unused                     uint32
	GUID                       [16]byte
	NumLayers                  uint32
	LayersOffset               uint64
	NumLevels                  uint32
	LevelsOffset               uint64
	TileWidth                  int32
	TileHeight                 int32
	TileBorder                 int32
	I2                         uint32
	NumFlatTileInfos           uint32
	FlatTileInfoOffset         uint64
	I6                         uint32
	I7                         uint32
	NumPackedTileIDs           uint32
	PackedTileIDsOffset        uint64
	M, N, O, P, Q, R, S        uint32
	PageSize                   uint32
	NumPageFiles               uint32
	PageFileMetadataOffset     uint64
	FourCCListSize             uint32
	FourCCListOffset           uint64
	ParameterBlockHeadersCount uint32
	ParameterBlockHeadersOffset uint64
	ThumbnailsOffset           uint64
	XJJ, XKK, XLL, XMM         uint32
}

const headerSize = 4 + 4 + 4 + 16 + 4 + 8 + 4 + 8 + 4 + 4 + 4 + 4 + 4 + 8 + 4 + 4 +
	4 + 8 + 4*7 + 4 + 4 + 8 + 4 + 8 + 4 + 8 + 8 + 4*4

// TileCompression identifies the byte-level codec a BC-layer tile is
// wrapped in, independent of the BC format itself.
type TileCompression int

const (
	TileRaw TileCompression = iota
	TileLZ4
	TileFastLZ
)

// Codec identifies a GTP chunk's content interpretation.
type Codec uint32

const (
	CodecBC      Codec = 0
	CodecUniform Codec = 1
	CodecUnknown Codec = 0xFFFFFFFF
)

func codecFromU32(v uint32) Codec {
	switch v {
	case 0:
		return CodecBC
	case 1:
		return CodecUniform
	default:
		return Codec(v)
	}
}

// ParameterBlock is a per-codec configuration block; only the BC
// variant is decoded. For any other variant only ID is set when a GTS
// file is parsed; RawOpaque is left empty.
type ParameterBlock struct {
	ID          uint32
	BC          *BCParameterBlock
	RawOpaque   []byte
}

// BCParameterBlock carries the tile compression method for BC chunks
// referencing this parameter block.
type BCParameterBlock struct {
	Compression TileCompression
}

func (b *BCParameterBlock) method() TileCompression { return b.Compression }

// LevelInfo is one mip-level descriptor; this package does not
// currently consult it for tile lookup (flat tile infos plus packed
// tile IDs carry the information tile extraction needs directly).
type LevelInfo struct {
	Width, Height int32
}

// PageFileInfo names one .gtp page file belonging to this GTS.
type PageFileInfo struct {
	Filename string
}

// PackedTileID records a tile's layer/level/grid position.
type PackedTileID struct {
	Layer uint8
	Level uint8
	X, Y  uint16
}

// FlatTileInfo maps one packed tile ID to its physical page/chunk
// location within a specific page file.
type FlatTileInfo struct {
	PageFileIndex    uint16
	PageIndex        uint32
	ChunkIndex       uint32
	PackedTileIDIdx  uint32
}

// TileLocation is the page/chunk/grid-position tuple tiles are
// grouped into, per layer, for a given page file.
type TileLocation struct {
	Page, Chunk uint32
	X, Y        uint16
}

// File is a parsed GTS metadata file.
type File struct {
	Header          Header
	ParameterBlocks map[uint32]ParameterBlock
	Levels          []LevelInfo
	PageFiles       []PageFileInfo
	PackedTiles     []PackedTileID
	FlatTileInfos   []FlatTileInfo
	LayerFourCC     []string
}

// layerFormats maps a layer's 4-byte FourCC code to the dds BC format
// it identifies, covering the legacy FourCCs BG3's virtual-texture
// layers use (albedo+alpha as DXT5/BC3, normal maps as ATI2/BC5, the
// material/SRM layer as either DXT5/BC3 or BC7 depending on mod
// origin). Unrecognized codes fall back to FormatUnknown and the
// caller skips compositing that layer rather than guessing.
var layerFormats = map[string]dds.Format{
	"DXT1": dds.FormatBC1,
	"DXT3": dds.FormatBC2,
	"DXT5": dds.FormatBC3,
	"ATI1": dds.FormatBC4,
	"ATI2": dds.FormatBC5,
	"BC7 ": dds.FormatBC7,
	"BC7\x00": dds.FormatBC7,
}

// parseFourCCList reads NumLayers 4-byte FourCC codes starting at
// FourCCListOffset, one per texture layer.
func parseFourCCList(data []byte, h Header) []string {
	out := make([]string, 0, h.NumLayers)
	off := int(h.FourCCListOffset)
	for i := uint32(0); i < h.NumLayers; i++ {
		if off+4 > len(data) {
			break
		}
		out = append(out, string(data[off:off+4]))
		off += 4
	}
	return out
}

// LayerFormat returns the BC format for the given layer index, or
// FormatUnknown if the layer's FourCC is unrecognized or the index is
// out of range.
func (f *File) LayerFormat(layer int) dds.Format {
	if layer < 0 || layer >= len(f.LayerFourCC) {
		return dds.FormatUnknown
	}
	if bcFormat, ok := layerFormats[f.LayerFourCC[layer]]; ok {
		return bcFormat
	}
	return dds.FormatUnknown
}

// Parse reads a GTS file's header and every metadata section it
// references.
func Parse(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, lslib.NewError(lslib.KindIO, "vtex: gts file too short for header")
	}
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Magic != GTSMagic {
		return nil, lslib.NewError(lslib.KindInvalidMagic,
			fmt.Sprintf("vtex: gts magic 0x%08X, want 0x%08X", h.Magic, GTSMagic))
	}

	f := &File{Header: h, ParameterBlocks: map[uint32]ParameterBlock{}}
	f.ParameterBlocks = parseParameterBlocks(data, h)
	f.Levels = parseLevels(data, h)
	f.PageFiles = parsePageFiles(data, h)
	f.PackedTiles = parsePackedTiles(data, h)
	f.FlatTileInfos = parseFlatTileInfos(data, h)
	f.LayerFourCC = parseFourCCList(data, h)
	return f, nil
}

func parseHeader(b []byte) (Header, error) {
	var h Header
	var off int
	u32 := func() uint32 { v := binary.LittleEndian.Uint32(b[off:]); off += 4; return v }
	u64 := func() uint64 { v := binary.LittleEndian.Uint64(b[off:]); off += 8; return v }

	h.Magic = u32()
	h.Version = u32()
	h.Unused = u32()
	copy(h.GUID[:], b[off:off+16])
	off += 16
	h.NumLayers = u32()
	h.LayersOffset = u64()
	h.NumLevels = u32()
	h.LevelsOffset = u64()
	h.TileWidth = int32(u32())
	h.TileHeight = int32(u32())
	h.TileBorder = int32(u32())
	h.I2 = u32()
	h.NumFlatTileInfos = u32()
	h.FlatTileInfoOffset = u64()
	h.I6 = u32()
	h.I7 = u32()
	h.NumPackedTileIDs = u32()
	h.PackedTileIDsOffset = u64()
	h.M, h.N, h.O, h.P, h.Q, h.R, h.S = u32(), u32(), u32(), u32(), u32(), u32(), u32()
	h.PageSize = u32()
	h.NumPageFiles = u32()
	h.PageFileMetadataOffset = u64()
	h.FourCCListSize = u32()
	h.FourCCListOffset = u64()
	h.ParameterBlockHeadersCount = u32()
	h.ParameterBlockHeadersOffset = u64()
	h.ThumbnailsOffset = u64()
	h.XJJ, h.XKK, h.XLL, h.XMM = u32(), u32(), u32(), u32()
	return h, nil
}

// parameterBlockEntry layout: a u32 id, a u32 codec discriminator
// (0 = BC), and for BC entries a trailing u32 compression-method code
// (0=Raw,1=Lz4,2=FastLZ).
func parseParameterBlocks(data []byte, h Header) map[uint32]ParameterBlock {
	out := map[uint32]ParameterBlock{}
	off := int(h.ParameterBlockHeadersOffset)
	for i := uint32(0); i < h.ParameterBlockHeadersCount; i++ {
		if off+12 > len(data) {
			break
		}
		id := binary.LittleEndian.Uint32(data[off:])
		kind := binary.LittleEndian.Uint32(data[off+4:])
		method := binary.LittleEndian.Uint32(data[off+8:])
		off += 12
		if kind == 0 {
			out[id] = ParameterBlock{ID: id, BC: &BCParameterBlock{Compression: TileCompression(method)}}
		} else {
			out[id] = ParameterBlock{ID: id}
		}
	}
	return out
}

func parseLevels(data []byte, h Header) []LevelInfo {
	out := make([]LevelInfo, 0, h.NumLevels)
	off := int(h.LevelsOffset)
	for i := uint32(0); i < h.NumLevels; i++ {
		if off+8 > len(data) {
			break
		}
		out = append(out, LevelInfo{
			Width:  int32(binary.LittleEndian.Uint32(data[off:])),
			Height: int32(binary.LittleEndian.Uint32(data[off+4:])),
		})
		off += 8
	}
	return out
}

// parsePageFiles reads NumPageFiles null-terminated, fixed-width (256
// byte) filename records starting at PageFileMetadataOffset.
func parsePageFiles(data []byte, h Header) []PageFileInfo {
	const recordSize = 256
	out := make([]PageFileInfo, 0, h.NumPageFiles)
	off := int(h.PageFileMetadataOffset)
	for i := uint32(0); i < h.NumPageFiles; i++ {
		if off+recordSize > len(data) {
			break
		}
		raw := data[off : off+recordSize]
		n := 0
		for n < len(raw) && raw[n] != 0 {
			n++
		}
		out = append(out, PageFileInfo{Filename: string(raw[:n])})
		off += recordSize
	}
	return out
}

func parsePackedTiles(data []byte, h Header) []PackedTileID {
	out := make([]PackedTileID, 0, h.NumPackedTileIDs)
	off := int(h.PackedTileIDsOffset)
	for i := uint32(0); i < h.NumPackedTileIDs; i++ {
		if off+8 > len(data) {
			break
		}
		out = append(out, PackedTileID{
			Layer: data[off],
			Level: data[off+1],
			X:     binary.LittleEndian.Uint16(data[off+2:]),
			Y:     binary.LittleEndian.Uint16(data[off+4:]),
		})
		off += 8
	}
	return out
}

func parseFlatTileInfos(data []byte, h Header) []FlatTileInfo {
	out := make([]FlatTileInfo, 0, h.NumFlatTileInfos)
	off := int(h.FlatTileInfoOffset)
	for i := uint32(0); i < h.NumFlatTileInfos; i++ {
		if off+14 > len(data) {
			break
		}
		out = append(out, FlatTileInfo{
			PageFileIndex:   binary.LittleEndian.Uint16(data[off:]),
			PageIndex:       binary.LittleEndian.Uint32(data[off+2:]),
			ChunkIndex:      binary.LittleEndian.Uint32(data[off+6:]),
			PackedTileIDIdx: binary.LittleEndian.Uint32(data[off+10:]),
		})
		off += 14
	}
	return out
}

// CompressionMethod returns the tile compression for a BC parameter
// block, defaulting to Raw for anything else.
func (f *File) CompressionMethod(paramBlockID uint32) TileCompression {
	if pb, ok := f.ParameterBlocks[paramBlockID]; ok && pb.BC != nil {
		return pb.BC.method()
	}
	return TileRaw
}

// FindPageFileIndex finds a page file whose name contains hash.
func (f *File) FindPageFileIndex(hash string) (int, bool) {
	for i, pf := range f.PageFiles {
		if contains(pf.Filename, hash) {
			return i, true
		}
	}
	return 0, false
}

// FindPageFileIndexByName finds a page file by exact name match, used
// for mod GTP files without a content hash in their filename.
func (f *File) FindPageFileIndexByName(name string) (int, bool) {
	for i, pf := range f.PageFiles {
		if pf.Filename == name {
			return i, true
		}
	}
	return 0, false
}

func contains(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// TilesForPageFile groups every tile belonging to the given page file
// by layer (0..2), preferring level 0 and falling back to the lowest
// available level per layer (some layers ship only at reduced
// resolution).
func (f *File) TilesForPageFile(pageFileIndex uint16) [3][]TileLocation {
	byLayerLevel := [3]map[uint8][]TileLocation{{}, {}, {}}
	for l := range byLayerLevel {
		byLayerLevel[l] = map[uint8][]TileLocation{}
	}

	for _, t := range f.FlatTileInfos {
		if t.PageFileIndex != pageFileIndex {
			continue
		}
		idx := int(t.PackedTileIDIdx)
		if idx >= len(f.PackedTiles) {
			continue
		}
		packed := f.PackedTiles[idx]
		if int(packed.Layer) >= 3 {
			continue
		}
		byLayerLevel[packed.Layer][packed.Level] = append(byLayerLevel[packed.Layer][packed.Level], TileLocation{
			Page: t.PageIndex, Chunk: t.ChunkIndex, X: packed.X, Y: packed.Y,
		})
	}

	var out [3][]TileLocation
	for layer, levelMap := range byLayerLevel {
		if len(levelMap) == 0 {
			continue
		}
		best := uint8(255)
		for level := range levelMap {
			if level < best {
				best = level
			}
		}
		out[layer] = levelMap[best]
	}
	return out
}

// ContentWidth and ContentHeight report tile dimensions with the
// border trimmed off.
func (f *File) ContentWidth() int32  { return f.Header.TileWidth - f.Header.TileBorder*2 }
func (f *File) ContentHeight() int32 { return f.Header.TileHeight - f.Header.TileBorder*2 }
