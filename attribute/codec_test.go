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

package attribute

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		val  Value
	}{
		{"uint8", UInt8, Int{Unsigned: 200}},
		{"int16", Int16, Int{Signed: -1234, IsSigned: true}},
		{"int32", Int32, Int{Signed: -70000, IsSigned: true}},
		{"uint64", UInt64, Int{Unsigned: 1 << 40}},
		{"float", Float, Float{Value: 3.5}},
		{"double", Double, Float{Value: 3.14159265358979, IsDouble: true}},
		{"bool true", Bool, Value(BoolTrue())},
		{"ivec3", IVec3, Vector{Ints: []int32{1, -2, 3}}},
		{"fvec4", FVec4, Vector{Floats: []float32{1.5, -2.5, 0, 9}, IsFloat: true}},
		{"mat3x3", Mat3x3, Matrix{Rows: 3, Columns: 3, Elements: []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}}},
		{"string", String, Str{Value: "hello world", Kind: String}},
		{"fixedstring", FixedString, Str{Value: "fixed", Kind: FixedString}},
		{"wstring", WString, Str{Value: "wide café", Kind: WString}},
		{"guid", GUID, GUIDValue("3f2504e0-4f89-11d3-9a0c-0305e82c3301")},
		{"scratchbuffer", ScratchBuffer, ScratchBufferValue{0xDE, 0xAD, 0xBE, 0xEF}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded, err := Encode(c.typ, c.val)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, err := Decode(c.typ, encoded)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			reencoded, err := Encode(c.typ, decoded)
			if err != nil {
				t.Fatalf("re-Encode: %v", err)
			}
			if string(encoded) != string(reencoded) {
				t.Errorf("round trip bytes mismatch: %v vs %v", encoded, reencoded)
			}
		})
	}
}

func BoolTrue() Bool { return Bool(true) }

func TestTranslatedStringInlineRoundTrip(t *testing.T) {
	ts := TranslatedStringValue{Handle: "h123", HasValue: true, Value: "Hello"}
	b := encodeTranslatedString(ts)
	got, err := decodeTranslatedString(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gotTS := got.(TranslatedStringValue)
	if gotTS != ts {
		t.Errorf("got %+v, want %+v", gotTS, ts)
	}
}

func TestTranslatedStringReferencedRoundTrip(t *testing.T) {
	ts := TranslatedStringValue{Handle: "h123", HasVersion: true, Version: 7}
	b := encodeTranslatedString(ts)
	got, err := decodeTranslatedString(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gotTS := got.(TranslatedStringValue)
	if gotTS != ts {
		t.Errorf("got %+v, want %+v", gotTS, ts)
	}
}

func TestTranslatedFSStringRoundTrip(t *testing.T) {
	fs := TranslatedFSStringValue{
		Handle: "hab12cd34", HasVersion: true, Version: 3,
		Arguments: []TranslatedFSArgument{
			{Key: "Player", Value: TranslatedStringValue{Handle: "harg1", HasValue: true, Value: "Tav"}},
			{Key: "Item", Value: TranslatedStringValue{Handle: "harg2", HasVersion: true, Version: 9}},
		},
	}
	b, err := Encode(TranslatedFSString, fs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(TranslatedFSString, b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(fs, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslatedFSStringNoArguments(t *testing.T) {
	fs := TranslatedFSStringValue{Handle: "h999", HasValue: true, Value: "plain"}
	b, err := Encode(TranslatedFSString, fs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(TranslatedFSString, b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(fs, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStringifyParseRoundTrip(t *testing.T) {
	cases := []struct {
		typ Type
		val Value
	}{
		{Int32, Int{Signed: -42, IsSigned: true}},
		{UInt32, Int{Unsigned: 42}},
		{Float, Float{Value: 1.25}},
		{Bool, Bool(true)},
		{Bool, Bool(false)},
		{FVec3, Vector{Floats: []float32{1, 2, 3}, IsFloat: true}},
		{GUID, GUIDValue("00000000-0000-0000-0000-000000000000")},
	}
	for _, c := range cases {
		s, err := Stringify(c.typ, c.val)
		if err != nil {
			t.Fatalf("Stringify(%v): %v", c.typ, err)
		}
		got, err := Parse(c.typ, s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		s2, err := Stringify(c.typ, got)
		if err != nil {
			t.Fatalf("re-Stringify: %v", err)
		}
		if s != s2 {
			t.Errorf("stringify/parse/stringify mismatch: %q vs %q", s, s2)
		}
	}
}

func TestParseBoolAcceptsLegacyForms(t *testing.T) {
	for _, s := range []string{"true", "True", "1"} {
		v, err := Parse(Bool, s)
		if err != nil || v != Bool(true) {
			t.Errorf("Parse(Bool, %q) = %v, %v; want true", s, v, err)
		}
	}
	for _, s := range []string{"false", "False", "0"} {
		v, err := Parse(Bool, s)
		if err != nil || v != Bool(false) {
			t.Errorf("Parse(Bool, %q) = %v, %v; want false", s, v, err)
		}
	}
}

func TestNameLookupRoundTripsEveryType(t *testing.T) {
	for id := uint8(0); IsValid(id); id++ {
		n := Name(Type(id))
		got, ok := Lookup(n)
		if !ok || got != Type(id) {
			t.Errorf("Lookup(Name(%d)) = %v, %v; want %d", id, got, ok, id)
		}
	}
}

func TestLookupAliases(t *testing.T) {
	for name, want := range map[string]Type{
		"Byte": UInt8, "Short": Int16, "Int": Int32, "UUID": GUID, "Vec3": FVec3,
	} {
		got, ok := Lookup(name)
		if !ok || got != want {
			t.Errorf("Lookup(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
}
