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

import "fmt"

// Value is the tagged union of every possible decoded attribute value.
// Exactly one of the concrete types below is stored per Attribute; the
// Type field on the owning attribute record says which.
type Value interface {
	isValue()
}

// Int is the value of any fixed-width signed or unsigned integer type
// (UInt8, Int16, UInt16, Int32, UInt32, UInt64, OldInt64, Int8, Int64).
// It is stored widened to int64/uint64 depending on signedness; IsSigned
// reports which field is meaningful.
type Int struct {
	Signed   int64
	Unsigned uint64
	IsSigned bool
}

func (Int) isValue() {}

// Int64Value returns the value as a signed int64 regardless of the
// original width or signedness (widening, not truncating, for unsigned
// values that fit).
func (v Int) Int64Value() int64 {
	if v.IsSigned {
		return v.Signed
	}
	return int64(v.Unsigned)
}

// Float is the value of a Float (float32) or Double (float64) type.
type Float struct {
	Value    float64
	IsDouble bool
}

func (Float) isValue() {}

// Bool is the value of a Bool attribute.
type Bool bool

func (Bool) isValue() {}

// Vector is the value of an IVec2/3/4 or FVec2/3/4 type: Columns
// components, each either an int32 or a float32 depending on the type.
type Vector struct {
	Ints    []int32
	Floats  []float32
	IsFloat bool
}

func (Vector) isValue() {}

// Matrix is the value of a MatNxM type: Rows*Columns float32 elements,
// stored row-major.
type Matrix struct {
	Rows, Columns int
	Elements      []float32
}

func (Matrix) isValue() {}

// Str is the value of a String, Path, FixedString, LSString, WString,
// or LSWString type. Kind distinguishes them for round-trip fidelity
// (e.g. fixed strings are never null-terminated on the wire, wide
// strings are UTF-16LE on the wire but normalized to a Go string here).
type Str struct {
	Value string
	Kind  Type
}

func (Str) isValue() {}

// GUIDValue is the value of a GUID attribute, held as the canonical
// hyphenated lowercase text form; wire-level byte-swapping is applied
// by the lsf package at decode/encode time, not here.
type GUIDValue string

func (GUIDValue) isValue() {}

// ScratchBufferValue is the value of a ScratchBuffer attribute: an
// opaque byte blob with no further type structure.
type ScratchBufferValue []byte

func (ScratchBufferValue) isValue() {}

// TranslatedStringValue is the value of a TranslatedString attribute:
// either an inline value accompanies the handle, or a version integer
// does, never both and never neither.
type TranslatedStringValue struct {
	Handle string
	// Exactly one of HasValue or HasVersion is true.
	HasValue   bool
	Value      string
	HasVersion bool
	Version    uint16
}

func (TranslatedStringValue) isValue() {}

// TranslatedFSStringValue is the value of a TranslatedFSString
// attribute: a translated string plus an ordered list of substitution
// arguments, each itself a translated string keyed by parameter name.
// The base string follows the same inline/referenced duality as
// TranslatedStringValue: exactly one of HasValue or HasVersion is true.
type TranslatedFSStringValue struct {
	Handle     string
	HasValue   bool
	Value      string
	HasVersion bool
	Version    uint16
	Arguments  []TranslatedFSArgument
}

// base returns the translated-string view of the record's handle/value/
// version fields, the form the wire and XML codecs share with plain
// TranslatedString.
func (v TranslatedFSStringValue) base() TranslatedStringValue {
	return TranslatedStringValue{
		Handle:     v.Handle,
		HasValue:   v.HasValue,
		Value:      v.Value,
		HasVersion: v.HasVersion,
		Version:    v.Version,
	}
}

func (TranslatedFSStringValue) isValue() {}

// TranslatedFSArgument is one positional/named argument of a
// TranslatedFSString.
type TranslatedFSArgument struct {
	Key   string
	Value TranslatedStringValue
}

// String renders a human-readable summary, used only by diagnostics —
// never by a wire or text encoder, which each have their own precise
// rendering rules (see text.go).
func (v TranslatedStringValue) String() string {
	if v.HasValue {
		return fmt.Sprintf("%s:%q", v.Handle, v.Value)
	}
	return fmt.Sprintf("%s@v%d", v.Handle, v.Version)
}
