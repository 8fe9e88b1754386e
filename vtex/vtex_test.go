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
	"bytes"
	"testing"

	"lslib.dev/go/lslib/dds"
)

func TestFastLZRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("a"),
		bytes.Repeat([]byte("hello world"), 10),
		bytes.Repeat([]byte{0xAB}, 500),
	}
	for _, src := range cases {
		compressed := fastlzCompress(src)
		got, err := fastlzDecompress(compressed, len(src))
		if err != nil {
			t.Fatalf("fastlzDecompress: %v", err)
		}
		if !bytes.Equal(got, src) {
			t.Errorf("round trip mismatch: got %v, want %v", got, src)
		}
	}
}

func TestGTPWriterPagePacking(t *testing.T) {
	w := NewWriter([16]byte{1, 2, 3}, 100)
	for i := 0; i < 10; i++ {
		w.AddChunk(Chunk{Codec: CodecBC, Data: bytes.Repeat([]byte{byte(i)}, 20)})
	}
	if w.NumPages() <= 1 {
		t.Fatalf("NumPages() = %d, want > 1 for tiny page size", w.NumPages())
	}
}

func TestGTPWriteOpenChunkRoundTrip(t *testing.T) {
	guid := [16]byte{9, 9, 9}
	w := NewWriter(guid, 0x10000)
	tileData := bytes.Repeat([]byte{0x42}, 16*4*4+16*2*2) // sized as a 16x16 BC3 tile + half-res mip
	pageIdx, chunkIdx := w.AddChunk(Chunk{Codec: CodecBC, ParameterBlockID: 7, Data: tileData})
	gtpBytes := w.Write()

	gts := &File{
		Header: Header{
			Magic:     GTSMagic,
			PageSize:  0x10000,
			TileWidth: 8, TileHeight: 8,
		},
		ParameterBlocks: map[uint32]ParameterBlock{
			7: {ID: 7, BC: &BCParameterBlock{Compression: TileRaw}},
		},
	}

	gtp, err := OpenGTP(gtpBytes, gts)
	if err != nil {
		t.Fatalf("OpenGTP: %v", err)
	}
	if gtp.Header.Magic != GTPMagic {
		t.Fatalf("Header.Magic = %x, want %x", gtp.Header.Magic, GTPMagic)
	}

	got, err := gtp.ExtractChunk(int(pageIdx), int(chunkIdx), gts)
	if err != nil {
		t.Fatalf("ExtractChunk: %v", err)
	}
	if !bytes.Equal(got, tileData) {
		t.Errorf("ExtractChunk round trip mismatch: got %d bytes, want %d", len(got), len(tileData))
	}
}

func TestGTSParseRejectsBadMagic(t *testing.T) {
	data := make([]byte, headerSize)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestGTSWriteParseRoundTrip(t *testing.T) {
	f := &File{
		Header: Header{
			Version:   1,
			NumLayers: 3,
			TileWidth: 256, TileHeight: 256, TileBorder: 4,
			PageSize: 0x10000,
		},
		ParameterBlocks: map[uint32]ParameterBlock{
			0: {ID: 0, BC: &BCParameterBlock{Compression: TileLZ4}},
		},
		Levels:      []LevelInfo{{Width: 256, Height: 256}, {Width: 128, Height: 128}},
		PageFiles:   []PageFileInfo{{Filename: "terrain_00000000.gtp"}},
		PackedTiles: []PackedTileID{{Layer: 0, Level: 0, X: 0, Y: 0}},
		FlatTileInfos: []FlatTileInfo{
			{PageFileIndex: 0, PageIndex: 0, ChunkIndex: 0, PackedTileIDIdx: 0},
		},
		LayerFourCC: []string{"DXT5", "ATI2", "DXT5"},
	}

	out := WriteGTS(f)
	got, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got.Header.NumLevels != 2 || got.Header.NumPageFiles != 1 {
		t.Fatalf("unexpected header counts: %+v", got.Header)
	}
	if len(got.PageFiles) != 1 || got.PageFiles[0].Filename != "terrain_00000000.gtp" {
		t.Fatalf("PageFiles = %+v", got.PageFiles)
	}
	if len(got.PackedTiles) != 1 || got.PackedTiles[0].X != 0 {
		t.Fatalf("PackedTiles = %+v", got.PackedTiles)
	}
	if len(got.LayerFourCC) != 3 || got.LayerFourCC[1] != "ATI2" {
		t.Fatalf("LayerFourCC = %v", got.LayerFourCC)
	}
	if got.LayerFormat(1) != dds.FormatBC5 {
		t.Fatalf("LayerFormat(1) = %v, want BC5 for ATI2", got.LayerFormat(1))
	}
}
