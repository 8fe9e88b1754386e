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

package gr2

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	lslib "lslib.dev/go/lslib"
)

// fiveSections builds a writer input with cross-section pointers:
// section 0 carries two 8-byte pointer slots, one into section 1 and
// one into section 4.
func fiveSections() []WriteSection {
	s0 := make([]byte, 32)
	s1 := []byte("vertex buffer bytes")
	s4 := []byte("root type descriptor")
	return []WriteSection{
		{Data: s0, Relocations: []Relocation{
			{OffsetInSource: 0, TargetSection: 1, TargetOffset: 7},
			{OffsetInSource: 16, TargetSection: 4, TargetOffset: 0},
		}},
		{Data: s1},
		{Data: []byte{1, 2, 3}},
		{},
		{Data: s4},
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	sections := fiveSections()
	out, err := Write(sections, SectionRef{Section: 4}, SectionRef{Section: 0}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Header.Version != SupportedVersion || f.Header.Tag != BG3Tag {
		t.Errorf("header version/tag = %d/0x%08X", f.Header.Version, f.Header.Tag)
	}
	if got, want := len(f.SectionData), WriterSections; got != want {
		t.Fatalf("section count = %d, want %d", got, want)
	}
	for i, s := range sections {
		got := f.SectionBytes(uint32(i))
		// The writer emits the pointer slots pre-resolved, so the
		// parsed bytes match the input with slots filled in.
		want := make([]byte, len(s.Data))
		copy(want, s.Data)
		for _, rel := range s.Relocations {
			binary.LittleEndian.PutUint32(want[rel.OffsetInSource:], rel.TargetSection)
			binary.LittleEndian.PutUint32(want[rel.OffsetInSource+4:], rel.TargetOffset)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("section %d bytes mismatch (-want +got):\n%s", i, diff)
		}
	}

	sec, off, ok := f.ResolvePointer(0, 0)
	if !ok || sec != 1 || off != 7 {
		t.Errorf("ResolvePointer(0,0) = (%d,%d,%v), want (1,7,true)", sec, off, ok)
	}
	sec, off, ok = f.ResolvePointer(0, 16)
	if !ok || sec != 4 || off != 0 {
		t.Errorf("ResolvePointer(0,16) = (%d,%d,%v), want (4,0,true)", sec, off, ok)
	}
}

// Section data starts on 16-byte file offsets and every relocation
// target lands inside its section's decompressed bounds.
func TestSectionAlignmentAndRelocationBounds(t *testing.T) {
	out, err := Write(fiveSections(), SectionRef{Section: 4}, SectionRef{}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i, sh := range f.Sections {
		if sh.DataOffset%sectionAlignment != 0 {
			t.Errorf("section %d data offset %d not %d-aligned", i, sh.DataOffset, sectionAlignment)
		}
		for _, rel := range f.Relocations[i] {
			if rel.TargetOffset > f.Sections[rel.TargetSection].DecompressedSize {
				t.Errorf("section %d relocation targets %d/%d beyond decompressed size %d",
					i, rel.TargetSection, rel.TargetOffset, f.Sections[rel.TargetSection].DecompressedSize)
			}
		}
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	out, err := Write(fiveSections(), SectionRef{}, SectionRef{}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	out[0] ^= 0xFF
	_, err = Parse(out)
	var lerr *lslib.Error
	if !errors.As(err, &lerr) || lerr.Kind != lslib.KindInvalidMagic {
		t.Fatalf("Parse with bad magic: got %v, want KindInvalidMagic", err)
	}
}

func TestParseRejectsCorruptedBody(t *testing.T) {
	out, err := Write(fiveSections(), SectionRef{}, SectionRef{}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	out[len(out)-1] ^= 0xFF
	if _, err := Parse(out); err == nil {
		t.Fatal("Parse accepted a file with a mismatched body CRC")
	}
}

func TestWriteRejectsBadRelocation(t *testing.T) {
	sections := fiveSections()
	sections[0].Relocations[0].TargetOffset = 1 << 20
	_, err := Write(sections, SectionRef{}, SectionRef{}, nil)
	var lerr *lslib.Error
	if !errors.As(err, &lerr) || lerr.Kind != lslib.KindWriteError {
		t.Fatalf("Write with out-of-range relocation: got %v, want KindWriteError", err)
	}
}

func TestWriteRejectsWrongSectionCount(t *testing.T) {
	if _, err := Write(make([]WriteSection, 3), SectionRef{}, SectionRef{}, nil); err == nil {
		t.Fatal("Write accepted a 3-section topology")
	}
}

func TestBitKnitSectionReportsUnsupported(t *testing.T) {
	out, err := Write(fiveSections(), SectionRef{}, SectionRef{}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Flip section 2's compression tag to BitKnit and re-finalize the
	// CRC so the parser reaches the decompressor.
	shOffset := magicBlockSize + headerSize + 2*sectionHeaderSize
	binary.LittleEndian.PutUint32(out[shOffset:], uint32(CompressionBitKnit))
	binary.LittleEndian.PutUint32(out[magicBlockSize+8:], CRC32Body(out))

	_, err = Parse(out)
	var lerr *lslib.Error
	if !errors.As(err, &lerr) || lerr.Kind != lslib.KindDecompressionError {
		t.Fatalf("Parse of BitKnit section: got %v, want KindDecompressionError", err)
	}
}
