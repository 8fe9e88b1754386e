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

// WriteGTS serializes f back into GTS bytes: the fixed header followed
// by each metadata section in header-offset order. Offsets are
// computed fresh rather than trusting f.Header's, since a writer
// composing a new GTS from scratch does not inherit a prior layout.
func WriteGTS(f *File) []byte {
	h := f.Header
	off := uint64(headerSize)

	h.LayersOffset = off
	off += uint64(h.NumLayers) * 4 // layer entries not separately tracked by File; reserved space only

	h.LevelsOffset = off
	off += uint64(len(f.Levels)) * 8

	h.PageFileMetadataOffset = off
	off += uint64(len(f.PageFiles)) * 256

	h.PackedTileIDsOffset = off
	off += uint64(len(f.PackedTiles)) * 8

	h.FlatTileInfoOffset = off
	off += uint64(len(f.FlatTileInfos)) * 14

	h.ParameterBlockHeadersOffset = off
	off += uint64(len(f.ParameterBlocks)) * 12

	h.FourCCListOffset = off
	off += uint64(len(f.LayerFourCC)) * 4

	h.NumLevels = uint32(len(f.Levels))
	h.NumPageFiles = uint32(len(f.PageFiles))
	h.NumPackedTileIDs = uint32(len(f.PackedTiles))
	h.NumFlatTileInfos = uint32(len(f.FlatTileInfos))
	h.ParameterBlockHeadersCount = uint32(len(f.ParameterBlocks))

	out := make([]byte, off)
	writeGTSHeader(out, h)

	p := int(h.LevelsOffset)
	for _, lvl := range f.Levels {
		binary.LittleEndian.PutUint32(out[p:], uint32(lvl.Width))
		binary.LittleEndian.PutUint32(out[p+4:], uint32(lvl.Height))
		p += 8
	}

	p = int(h.PageFileMetadataOffset)
	for _, pf := range f.PageFiles {
		copy(out[p:p+256], pf.Filename)
		p += 256
	}

	p = int(h.PackedTileIDsOffset)
	for _, t := range f.PackedTiles {
		out[p] = t.Layer
		out[p+1] = t.Level
		binary.LittleEndian.PutUint16(out[p+2:], t.X)
		binary.LittleEndian.PutUint16(out[p+4:], t.Y)
		p += 8
	}

	p = int(h.FlatTileInfoOffset)
	for _, t := range f.FlatTileInfos {
		binary.LittleEndian.PutUint16(out[p:], t.PageFileIndex)
		binary.LittleEndian.PutUint32(out[p+2:], t.PageIndex)
		binary.LittleEndian.PutUint32(out[p+6:], t.ChunkIndex)
		binary.LittleEndian.PutUint32(out[p+10:], t.PackedTileIDIdx)
		p += 14
	}

	p = int(h.ParameterBlockHeadersOffset)
	for id, pb := range f.ParameterBlocks {
		binary.LittleEndian.PutUint32(out[p:], id)
		if pb.BC != nil {
			binary.LittleEndian.PutUint32(out[p+4:], 0)
			binary.LittleEndian.PutUint32(out[p+8:], uint32(pb.BC.Compression))
		} else {
			binary.LittleEndian.PutUint32(out[p+4:], 1)
		}
		p += 12
	}

	p = int(h.FourCCListOffset)
	for _, fourCC := range f.LayerFourCC {
		copy(out[p:p+4], fourCC)
		p += 4
	}

	return out
}

func writeGTSHeader(out []byte, h Header) {
	binary.LittleEndian.PutUint32(out[0:], GTSMagic)
	binary.LittleEndian.PutUint32(out[4:], h.Version)
	binary.LittleEndian.PutUint32(out[8:], h.Unused)
	copy(out[12:28], h.GUID[:])
	binary.LittleEndian.PutUint32(out[28:], h.NumLayers)
	binary.LittleEndian.PutUint64(out[32:], h.LayersOffset)
	binary.LittleEndian.PutUint32(out[40:], h.NumLevels)
	binary.LittleEndian.PutUint64(out[44:], h.LevelsOffset)
	binary.LittleEndian.PutUint32(out[52:], uint32(h.TileWidth))
	binary.LittleEndian.PutUint32(out[56:], uint32(h.TileHeight))
	binary.LittleEndian.PutUint32(out[60:], uint32(h.TileBorder))
	binary.LittleEndian.PutUint32(out[64:], h.I2)
	binary.LittleEndian.PutUint32(out[68:], h.NumFlatTileInfos)
	binary.LittleEndian.PutUint64(out[72:], h.FlatTileInfoOffset)
	binary.LittleEndian.PutUint32(out[80:], h.I6)
	binary.LittleEndian.PutUint32(out[84:], h.I7)
	binary.LittleEndian.PutUint32(out[88:], h.NumPackedTileIDs)
	binary.LittleEndian.PutUint64(out[92:], h.PackedTileIDsOffset)
	pos := 100
	for _, v := range []uint32{h.M, h.N, h.O, h.P, h.Q, h.R, h.S} {
		binary.LittleEndian.PutUint32(out[pos:], v)
		pos += 4
	}
	binary.LittleEndian.PutUint32(out[pos:], h.PageSize)
	binary.LittleEndian.PutUint32(out[pos+4:], h.NumPageFiles)
	binary.LittleEndian.PutUint64(out[pos+8:], h.PageFileMetadataOffset)
	binary.LittleEndian.PutUint32(out[pos+16:], h.FourCCListSize)
	binary.LittleEndian.PutUint64(out[pos+20:], h.FourCCListOffset)
	binary.LittleEndian.PutUint32(out[pos+28:], h.ParameterBlockHeadersCount)
	binary.LittleEndian.PutUint64(out[pos+32:], h.ParameterBlockHeadersOffset)
	binary.LittleEndian.PutUint64(out[pos+40:], h.ThumbnailsOffset)
	pos += 48
	for _, v := range []uint32{h.XJJ, h.XKK, h.XLL, h.XMM} {
		binary.LittleEndian.PutUint32(out[pos:], v)
		pos += 4
	}
}
