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

package lsx

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/attribute"
)

func sampleDoc() *lslib.Document {
	key := "MyKey"
	return &lslib.Document{
		Version: lslib.Version{Major: 4, Minor: 0, Revision: 9, Build: 0},
		Regions: []*lslib.Region{
			{ID: "TestRegion", Nodes: []*lslib.Node{
				{
					ID:  "root",
					Key: &key,
					Attributes: []lslib.Attribute{
						{Name: "Name", Type: attribute.String, Value: attribute.Str{Value: "hello", Kind: attribute.String}},
						{Name: "Count", Type: attribute.Int32, Value: attribute.Int{Signed: 7, IsSigned: true}},
						{Name: "Handle", Type: attribute.TranslatedString, Value: attribute.TranslatedStringValue{
							Handle: "hfoo", HasValue: true, Value: "Greetings",
						}},
					},
					Children: []*lslib.Node{
						{ID: "child", Attributes: []lslib.Attribute{
							{Name: "Flag", Type: attribute.Bool, Value: attribute.Bool(true)},
						}},
					},
				},
			}},
		},
	}
}

func TestWriteFormat(t *testing.T) {
	out, err := Write(sampleDoc())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "\ufeff<?xml") {
		t.Errorf("expected UTF-8 BOM + xml decl prefix, got %q", s[:20])
	}
	if !strings.Contains(s, "\r\n") {
		t.Errorf("expected CRLF line endings")
	}
	if !strings.Contains(s, "lslib_meta=\"v1,bswap_guids,lsf_keys_adjacency\"") {
		t.Errorf("expected full meta flag set for major>=4, got: %s", s)
	}
	if strings.Contains(s, "\"/>") {
		t.Errorf("self-closing tag missing its leading space:\n%s", s)
	}
	if !strings.Contains(s, "<attribute id=\"Flag\" type=\"bool\" value=\"True\" />") {
		t.Errorf("bool attribute not rendered as True with spaced self-close:\n%s", s)
	}
}

func TestTranslatedFSStringArgumentsRoundTrip(t *testing.T) {
	doc := &lslib.Document{
		Version: lslib.Version{Major: 4},
		Regions: []*lslib.Region{{
			ID: "R",
			Nodes: []*lslib.Node{{
				ID: "N",
				Attributes: []lslib.Attribute{
					{Name: "Line", Type: attribute.TranslatedFSString, Value: attribute.TranslatedFSStringValue{
						Handle: "hbase", HasVersion: true, Version: 2,
						Arguments: []attribute.TranslatedFSArgument{
							{Key: "Player", Value: attribute.TranslatedStringValue{Handle: "harg1", HasValue: true, Value: "Tav"}},
							{Key: "Item", Value: attribute.TranslatedStringValue{Handle: "harg2", HasVersion: true, Version: 5}},
						},
					}},
				},
			}},
		}},
	}
	out, err := Write(doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `<attribute id="Line" type="TranslatedFSString" handle="hbase" version="2">`) {
		t.Errorf("attribute element not opened with handle/version:\n%s", s)
	}
	if !strings.Contains(s, `<argument key="Player" handle="harg1" value="Tav" />`) {
		t.Errorf("inline argument missing:\n%s", s)
	}
	if !strings.Contains(s, `<argument key="Item" handle="harg2" version="5" />`) {
		t.Errorf("referenced argument missing:\n%s", s)
	}

	got, err := Read(out)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	doc := sampleDoc()
	out, err := Write(doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(out)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
