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
	"bytes"
	"fmt"
	"hash/crc32"
	"testing"

	"lslib.dev/go/lslib/internal/binstream"
)

// TestMultiPartMixedCodecs assembles a two-part archive by hand: one
// uncompressed file in the primary part, one LZ4 file in the primary
// part, and one Zlib file in part 1.
func TestMultiPartMixedCodecs(t *testing.T) {
	plain := []byte("uncompressed payload")
	lz4Src := bytes.Repeat([]byte("compress me please "), 64)
	zlibSrc := bytes.Repeat([]byte("part one zlib data "), 32)

	lz4Comp, err := compressLZ4HC(lz4Src)
	if err != nil {
		t.Fatalf("compressLZ4HC: %v", err)
	}
	zlibComp := compressZlib(zlibSrc)

	w := binstream.NewWriter()
	writeHeader(w, 0)
	plainOff := uint64(w.Len())
	w.WriteBytes(plain)
	lz4Off := uint64(w.Len())
	w.WriteBytes(lz4Comp)

	entries := []Entry{
		{Path: "raw.bin", Offset: plainOff, CompressedSize: uint32(len(plain)), DecompressedSize: uint32(len(plain)),
			Codec: CodecNone, CRC32: crc32.ChecksumIEEE(plain)},
		{Path: "packed.lsf", Offset: lz4Off, CompressedSize: uint32(len(lz4Comp)), DecompressedSize: uint32(len(lz4Src)),
			Codec: CodecLZ4, CRC32: crc32.ChecksumIEEE(lz4Src)},
		{Path: "sibling.loca", Offset: 0, CompressedSize: uint32(len(zlibComp)), DecompressedSize: uint32(len(zlibSrc)),
			Codec: CodecZlib, ArchivePart: 1, CRC32: crc32.ChecksumIEEE(zlibSrc)},
	}
	tableComp, rawSize, err := writeTable(entries)
	if err != nil {
		t.Fatalf("writeTable: %v", err)
	}
	w.WriteBytes(tableComp)
	footerOffset := uint64(w.Len())
	w.U32(uint32(len(entries)))
	w.U32(uint32(len(tableComp)))
	w.U32(uint32(rawSize))
	primary := w.Bytes()
	patchFooterOffset(primary, footerOffset)

	r, err := OpenReader(primary, func(part uint8) ([]byte, error) {
		if part != 1 {
			return nil, fmt.Errorf("no such part %d", part)
		}
		return zlibComp, nil
	})
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}

	wantOrder := []string{"raw.bin", "packed.lsf", "sibling.loca"}
	gotOrder := r.List()
	for i, want := range wantOrder {
		if gotOrder[i] != want {
			t.Errorf("List()[%d] = %q, want %q", i, gotOrder[i], want)
		}
	}
	for path, want := range map[string][]byte{
		"raw.bin":      plain,
		"packed.lsf":   lz4Src,
		"sibling.loca": zlibSrc,
	} {
		got, err := r.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%q): %v", path, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("ReadFile(%q) returned %d bytes, want %d", path, len(got), len(want))
		}
	}
}

func TestWriteOpenReadFileRoundTrip(t *testing.T) {
	files := []SourceFile{
		{Path: "Mods/Test/meta.lsx", Data: bytes.Repeat([]byte("abcdefgh"), 200)},
		{Path: "Mods/Test/Public/icon.png", Data: []byte{0x89, 'P', 'N', 'G', 1, 2, 3, 4}},
		{Path: "empty.bin", Data: nil},
	}

	archive, _, err := Write(files, WriteOptions{Codec: CodecLZ4}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	r, err := OpenReader(archive, func(part uint8) ([]byte, error) {
		t.Fatalf("unexpected request for part %d in single-part archive", part)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}

	gotList := r.List()
	if len(gotList) != len(files) {
		t.Fatalf("List() = %v, want %d entries", gotList, len(files))
	}
	for i, f := range files {
		if gotList[i] != f.Path {
			t.Errorf("List()[%d] = %q, want %q (declared order)", i, gotList[i], f.Path)
		}
	}

	for _, f := range files {
		got, err := r.ReadFile(f.Path)
		if err != nil {
			t.Fatalf("ReadFile(%q): %v", f.Path, err)
		}
		if !bytes.Equal(got, f.Data) {
			t.Errorf("ReadFile(%q) = %v, want %v", f.Path, got, f.Data)
		}
	}
}

func TestReadFileUnknownPath(t *testing.T) {
	archive, _, err := Write(nil, WriteOptions{}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	r, err := OpenReader(archive, nil)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if _, err := r.ReadFile("nope"); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestExtractAllIsolatesPerEntryFailure(t *testing.T) {
	files := []SourceFile{
		{Path: "good.txt", Data: []byte("hello")},
	}
	archive, _, err := Write(files, WriteOptions{}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	r, err := OpenReader(archive, nil)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	// Corrupt the CRC of the in-memory entry to force a per-entry failure
	// without touching the archive bytes, exercising the isolation path.
	r.entries[0].CRC32 ^= 0xFFFFFFFF
	outcomes := r.ExtractAll(nil)
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(outcomes))
	}
	if outcomes[0].Err == nil {
		t.Fatal("expected CRC mismatch error")
	}
}

func TestParseMetaLSX(t *testing.T) {
	metaXML := "\ufeff" + `<?xml version="1.0" encoding="utf-8"?>
<save>
	<version major="4" minor="0" revision="9" build="330" lslib_meta="v1,bswap_guids" />
	<region id="Config">
		<node id="root">
			<children>
				<node id="ModuleInfo">
					<attribute id="Name" type="LSString" value="Test Mod" />
					<attribute id="Folder" type="LSString" value="TestMod" />
					<attribute id="UUID" type="guid" value="550e8400-e29b-41d4-a716-446655440000" />
					<attribute id="Author" type="LSString" value="someone" />
					<attribute id="Version64" type="int64" value="36028797018963968" />
				</node>
			</children>
		</node>
	</region>
</save>`
	meta, err := ParseMetaLSX([]byte(metaXML))
	if err != nil {
		t.Fatalf("ParseMetaLSX: %v", err)
	}
	if meta.Name != "Test Mod" || meta.Folder != "TestMod" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.UUID != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("UUID = %q", meta.UUID)
	}
	if meta.Version64 != 36028797018963968 {
		t.Errorf("Version64 = %d", meta.Version64)
	}
}

func TestGenerateInfoJSON(t *testing.T) {
	files := []SourceFile{{Path: "a.txt", Data: []byte("x")}}
	_, info, err := Write(files, WriteOptions{
		GenerateInfoJSON: true,
		ModMeta:          ModMeta{Name: "Test Mod", Folder: "TestMod", UUID: "00000000-0000-0000-0000-000000000000"},
	}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if info == nil {
		t.Fatal("expected info.json bytes")
	}
	if !bytes.Contains(info, []byte("Test Mod")) {
		t.Errorf("info.json missing mod name: %s", info)
	}
}
