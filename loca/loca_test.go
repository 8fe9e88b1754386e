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

package loca

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTripBinary(t *testing.T) {
	table := &Table{Entries: []Entry{
		{Key: "h1a2b3c4", Version: 1, Text: "Hello, traveler."},
		{Key: "h5d6e7f8", Version: 3, Text: ""},
		{Key: "h9a0b1c2", Version: 0, Text: "Another line with unicode: café"},
	}}

	data := Write(table)
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(table, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyTable(t *testing.T) {
	data := Write(&Table{})
	if len(data) != 12 {
		t.Fatalf("empty table = %d bytes, want 12-byte header only", len(data))
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(got.Entries))
	}
}

func TestWriteXMLSelfClosesEmptyEntries(t *testing.T) {
	data := WriteXML(&Table{Entries: []Entry{
		{Key: "h123", Version: 1, Text: "Hello"},
		{Key: "h456", Version: 2},
	}})
	s := string(data)
	if want := `<content contentuid="h123" version="1">Hello</content>`; !strings.Contains(s, want) {
		t.Errorf("missing %q in:\n%s", want, s)
	}
	if want := `<content contentuid="h456" version="2"/>`; !strings.Contains(s, want) {
		t.Errorf("empty entry not self-closed in:\n%s", s)
	}
}

func TestReadRejectsBadSignature(t *testing.T) {
	data := Write(&Table{Entries: []Entry{{Key: "k", Version: 1, Text: "x"}}})
	data[0] ^= 0xFF
	if _, err := Read(data); err == nil {
		t.Fatal("expected error for corrupted signature")
	}
}

func TestRoundTripXML(t *testing.T) {
	table := &Table{Entries: []Entry{
		{Key: "h1a2b3c4", Version: 1, Text: "Tom & Jerry <3"},
		{Key: "h5d6e7f8", Version: 2, Text: ""},
	}}
	data := WriteXML(table)
	got, err := ReadXML(data)
	if err != nil {
		t.Fatalf("ReadXML: %v", err)
	}
	if diff := cmp.Diff(table, got); diff != "" {
		t.Errorf("xml round trip mismatch (-want +got):\n%s", diff)
	}
}
