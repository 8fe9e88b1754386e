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

package lsj

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/attribute"
)

// TestLSXToLSJScenario converts a small character-visual document to
// JSON, covering the region-is-root-node collapse and the
// key-lifted-to-sibling-field rule.
func TestLSXToLSJScenario(t *testing.T) {
	key := "mat_torso"
	doc := &lslib.Document{
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

	out, err := Write(doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}

	save := parsed["save"].(map[string]any)
	header := save["header"].(map[string]any)
	if header["version"] != "4.7.1.3" {
		t.Errorf("header.version = %v, want 4.7.1.3", header["version"])
	}
	regions := save["regions"].(map[string]any)
	bank := regions["CharacterVisualBank"].(map[string]any)

	uuidAttr := bank["UUID"].(map[string]any)
	if uuidAttr["type"] != "guid" || uuidAttr["value"] != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("UUID attribute = %v", uuidAttr)
	}
	// "CharacterVisual" the node's own id must NOT appear anywhere: the
	// region-root collapse discards it.
	if _, ok := bank["CharacterVisual"]; ok {
		t.Error("collapsed node id leaked into JSON output")
	}

	slots, ok := bank["Slots"].([]any)
	if !ok || len(slots) != 1 {
		t.Fatalf("Slots = %v, want a one-element array", bank["Slots"])
	}
	slot := slots[0].(map[string]any)
	if slot["key"] != "mat_torso" {
		t.Errorf("slot key = %v, want mat_torso (lifted out of attributes)", slot["key"])
	}
	matID := slot["MaterialID"].(map[string]any)
	if matID["type"] != "FixedString" || matID["value"] != "mat_torso" {
		t.Errorf("MaterialID attribute = %v", matID)
	}

	// Round trip back through Read and re-Write; must be byte-identical
	// modulo nothing (LSJ has no whitespace slack once both sides agree
	// on json.Marshal's compact form).
	back, err := Read(out)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	out2, err := Write(back)
	if err != nil {
		t.Fatalf("re-Write: %v", err)
	}
	if string(out) != string(out2) {
		t.Errorf("round trip mismatch:\n%s\nvs\n%s", out, out2)
	}
}

func TestVectorsAreSpaceSeparatedStringsNotArrays(t *testing.T) {
	doc := &lslib.Document{
		Regions: []*lslib.Region{{
			ID: "R",
			Nodes: []*lslib.Node{{
				ID: "N",
				Attributes: []lslib.Attribute{
					{Name: "Pos", Type: attribute.FVec3, Value: attribute.Vector{Floats: []float32{1, 2, 3}, IsFloat: true}},
				},
			}},
		}},
	}
	out, err := Write(doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	save := parsed["save"].(map[string]any)
	regions := save["regions"].(map[string]any)
	r := regions["R"].(map[string]any)
	pos := r["Pos"].(map[string]any)
	val, ok := pos["value"].(string)
	if !ok {
		t.Fatalf("Pos.value = %#v (%T), want a space-separated string, not an array", pos["value"], pos["value"])
	}
	if val != "1 2 3" {
		t.Errorf("Pos.value = %q, want %q", val, "1 2 3")
	}

	back, err := Read(out)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	attr, ok := back.Regions[0].Nodes[0].Attr("Pos")
	if !ok {
		t.Fatal("Pos attribute missing after round trip")
	}
	vec := attr.Value.(attribute.Vector)
	if len(vec.Floats) != 3 || vec.Floats[0] != 1 || vec.Floats[2] != 3 {
		t.Errorf("round-tripped vector = %+v", vec)
	}
}

func TestTranslatedFSStringRoundTrip(t *testing.T) {
	doc := &lslib.Document{
		Regions: []*lslib.Region{{
			ID: "R",
			Nodes: []*lslib.Node{{
				ID: "N",
				Attributes: []lslib.Attribute{
					{Name: "Line", Type: attribute.TranslatedFSString, Value: attribute.TranslatedFSStringValue{
						Handle: "hbase", HasVersion: true, Version: 2,
						Arguments: []attribute.TranslatedFSArgument{
							{Key: "Player", Value: attribute.TranslatedStringValue{Handle: "harg1", HasValue: true, Value: "Tav"}},
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

	var parsed map[string]any
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	save := parsed["save"].(map[string]any)
	regions := save["regions"].(map[string]any)
	line := regions["R"].(map[string]any)["Line"].(map[string]any)
	if line["version"] != float64(2) {
		t.Errorf("version = %v, want 2", line["version"])
	}
	args, ok := line["arguments"].([]any)
	if !ok || len(args) != 1 {
		t.Fatalf("arguments = %v, want a one-element array", line["arguments"])
	}
	arg := args[0].(map[string]any)
	if arg["key"] != "Player" {
		t.Errorf("argument key = %v", arg["key"])
	}

	back, err := Read(out)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyRegionSurvivesRoundTrip(t *testing.T) {
	doc := &lslib.Document{Regions: []*lslib.Region{{ID: "Empty"}}}
	out, err := Write(doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	back, err := Read(out)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(back.Regions) != 1 || back.Regions[0].ID != "Empty" {
		t.Fatalf("got %+v", back.Regions)
	}
}
