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

package convert

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/attribute"
	"lslib.dev/go/lslib/lsf"
)

func sampleDoc() *lslib.Document {
	key := "mat_torso"
	return &lslib.Document{
		Version: lslib.Version{Major: 4, Minor: 7, Revision: 1, Build: 3},
		Regions: []*lslib.Region{
			{
				ID: "CharacterVisualBank",
				Nodes: []*lslib.Node{
					{
						ID: "CharacterVisual",
						Attributes: []lslib.Attribute{
							{Name: "UUID", Type: attribute.GUID, Value: attribute.GUIDValue("550e8400-e29b-41d4-a716-446655440000")},
						},
						Children: []*lslib.Node{
							{
								ID:  "Slots",
								Key: &key,
								Attributes: []lslib.Attribute{
									{Name: "MaterialID", Type: attribute.FixedString, Value: attribute.Str{Value: "mat_torso", Kind: attribute.FixedString}},
								},
							},
						},
					},
				},
			},
		},
	}
}

// TestLSFLSXLSJLSXLSFPreservesTree exercises the strongest round-trip
// chain: LSF -> LSX -> LSJ -> LSX -> LSF must preserve every
// non-translated attribute's value exactly (the binary output may
// differ in name-table bucket assignments, so this compares document
// trees, not raw bytes).
func TestLSFLSXLSJLSXLSFPreservesTree(t *testing.T) {
	doc := sampleDoc()
	lsfBytes, err := lsf.Write(doc)
	if err != nil {
		t.Fatalf("lsf.Write: %v", err)
	}

	var calls []lslib.Progress
	progress := func(p lslib.Progress) { calls = append(calls, p) }

	lsxBytes, err := LSFToLSX(lsfBytes, progress)
	if err != nil {
		t.Fatalf("LSFToLSX: %v", err)
	}
	lsjBytes, err := LSXToLSJ(lsxBytes, progress)
	if err != nil {
		t.Fatalf("LSXToLSJ: %v", err)
	}
	lsxBytes2, err := LSJToLSX(lsjBytes, progress)
	if err != nil {
		t.Fatalf("LSJToLSX: %v", err)
	}
	lsfBytes2, err := LSXToLSF(lsxBytes2, progress)
	if err != nil {
		t.Fatalf("LSXToLSF: %v", err)
	}

	finalDoc, err := lsf.Read(lsfBytes2)
	if err != nil {
		t.Fatalf("lsf.Read(final): %v", err)
	}
	if diff := cmp.Diff(doc, finalDoc); diff != "" {
		t.Errorf("round trip tree mismatch (-want +got):\n%s", diff)
	}

	if len(calls) == 0 {
		t.Error("expected progress callbacks to be invoked")
	}
}

func TestLSFToLSJComposesThroughLSX(t *testing.T) {
	doc := sampleDoc()
	lsfBytes, err := lsf.Write(doc)
	if err != nil {
		t.Fatalf("lsf.Write: %v", err)
	}
	lsjBytes, err := LSFToLSJ(lsfBytes, nil)
	if err != nil {
		t.Fatalf("LSFToLSJ: %v", err)
	}
	back, err := LSJToLSF(lsjBytes, nil)
	if err != nil {
		t.Fatalf("LSJToLSF: %v", err)
	}
	finalDoc, err := lsf.Read(back)
	if err != nil {
		t.Fatalf("lsf.Read: %v", err)
	}
	if diff := cmp.Diff(doc, finalDoc); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
