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

// Package attribute implements the LSF/LSX/LSJ attribute type registry
// and the codec that decodes typed values from LSF bytes, encodes them
// back, and stringifies/parses them for the text formats.
//
// The enumeration is closed: integer IDs fit in the 6-bit field the
// LSF wire format packs them into. Most types also accept one
// backwards-compatible alias name for older schemas (see aliases);
// None, FixedString, LSString, ScratchBuffer, TranslatedString,
// WString, LSWString and TranslatedFSString accept only their
// canonical name.
package attribute

// Type is the 6-bit attribute type ID shared by the LSF wire format and
// the LSX/LSJ "type" fields.
type Type uint8

const (
	None Type = iota
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Float
	Double
	IVec2
	IVec3
	IVec4
	FVec2
	FVec3
	FVec4
	Mat2x2
	Mat3x3
	Mat3x4
	Mat4x3
	Mat4x4
	Bool
	String
	Path
	FixedString
	LSString
	UInt64
	ScratchBuffer
	OldInt64
	Int8
	TranslatedString
	WString
	LSWString
	GUID
	Int64
	TranslatedFSString

	typeCount
)

// name holds the canonical text name for each type, in ID order.
var name = [typeCount]string{
	None:               "None",
	UInt8:              "uint8",
	Int16:              "int16",
	UInt16:             "uint16",
	Int32:              "int32",
	UInt32:             "uint32",
	Float:              "float",
	Double:             "double",
	IVec2:              "ivec2",
	IVec3:              "ivec3",
	IVec4:              "ivec4",
	FVec2:              "fvec2",
	FVec3:              "fvec3",
	FVec4:              "fvec4",
	Mat2x2:             "mat2x2",
	Mat3x3:             "mat3x3",
	Mat3x4:             "mat3x4",
	Mat4x3:             "mat4x3",
	Mat4x4:             "mat4x4",
	Bool:               "bool",
	String:             "string",
	Path:               "path",
	FixedString:        "FixedString",
	LSString:           "LSString",
	UInt64:             "uint64",
	ScratchBuffer:      "ScratchBuffer",
	OldInt64:           "old_int64",
	Int8:               "int8",
	TranslatedString:   "TranslatedString",
	WString:            "WString",
	LSWString:          "LSWString",
	GUID:               "guid",
	Int64:              "int64",
	TranslatedFSString: "TranslatedFSString",
}

// aliases maps every accepted text name (including backwards-compatible
// schema aliases) onto its Type.
var aliases = map[string]Type{
	"None":               None,
	"uint8":              UInt8,
	"Byte":               UInt8,
	"int16":              Int16,
	"Short":              Int16,
	"uint16":             UInt16,
	"UShort":             UInt16,
	"int32":              Int32,
	"Int":                Int32,
	"uint32":             UInt32,
	"UInt":               UInt32,
	"float":              Float,
	"Float":              Float,
	"double":             Double,
	"Double":             Double,
	"ivec2":              IVec2,
	"IVec2":               IVec2,
	"ivec3":              IVec3,
	"IVec3":               IVec3,
	"ivec4":              IVec4,
	"IVec4":               IVec4,
	"fvec2":              FVec2,
	"Vec2":               FVec2,
	"fvec3":              FVec3,
	"Vec3":               FVec3,
	"fvec4":              FVec4,
	"Vec4":               FVec4,
	"mat2x2":             Mat2x2,
	"Mat2":               Mat2x2,
	"mat3x3":             Mat3x3,
	"Mat3":               Mat3x3,
	"mat3x4":             Mat3x4,
	"Mat3x4":             Mat3x4,
	"mat4x3":             Mat4x3,
	"Mat4x3":             Mat4x3,
	"mat4x4":             Mat4x4,
	"Mat4":               Mat4x4,
	"bool":               Bool,
	"Bool":                Bool,
	"string":             String,
	"String":              String,
	"path":               Path,
	"Path":                Path,
	"FixedString":        FixedString,
	"LSString":           LSString,
	"uint64":             UInt64,
	"ULongLong":          UInt64,
	"ScratchBuffer":      ScratchBuffer,
	"old_int64":          OldInt64,
	"Long":               OldInt64,
	"int8":               Int8,
	"Int8":                Int8,
	"TranslatedString":   TranslatedString,
	"WString":            WString,
	"LSWString":          LSWString,
	"guid":               GUID,
	"UUID":               GUID,
	"int64":              Int64,
	"Int64":               Int64,
	"TranslatedFSString": TranslatedFSString,
}

// Name returns the canonical text name for t. Unknown type IDs map to
// "Unknown" rather than panicking, so callers formatting diagnostics
// never need a second type check.
func Name(t Type) string {
	if t < typeCount {
		return name[t]
	}
	return "Unknown"
}

// Lookup returns the Type for a text name (including any accepted
// alias), and false if the name is not recognized.
func Lookup(s string) (Type, bool) {
	t, ok := aliases[s]
	return t, ok
}

// IsValid reports whether id names a type in the registry — the
// boundary check a binary-type byte must pass before any decode call.
func IsValid(id uint8) bool {
	return Type(id) < typeCount
}

// IsNumeric reports whether t is one of the fixed-width integer or
// floating-point scalar types.
func IsNumeric(t Type) bool {
	switch t {
	case UInt8, Int16, UInt16, Int32, UInt32, Float, Double, UInt64, OldInt64, Int8, Int64:
		return true
	default:
		return false
	}
}

// Columns returns the component count for vector/matrix types, or 0 for
// scalars and non-numeric types.
func Columns(t Type) int {
	switch t {
	case IVec2, FVec2, Mat2x2:
		return 2
	case IVec3, FVec3, Mat3x3, Mat4x3:
		return 3
	case IVec4, FVec4, Mat3x4, Mat4x4:
		return 4
	default:
		return 0
	}
}

// Rows returns the row count for matrix types (1 for vectors), or 0 for
// scalars and non-numeric types.
func Rows(t Type) int {
	switch t {
	case IVec2, IVec3, IVec4, FVec2, FVec3, FVec4:
		return 1
	case Mat2x2:
		return 2
	case Mat3x3, Mat3x4:
		return 3
	case Mat4x3, Mat4x4:
		return 4
	default:
		return 0
	}
}

// IsFloatVector reports whether t's components are float32 rather than
// int32 (used by the codec to pick an element decoder for vector/matrix
// types; all matrix types are float).
func IsFloatVector(t Type) bool {
	switch t {
	case FVec2, FVec3, FVec4, Mat2x2, Mat3x3, Mat3x4, Mat4x3, Mat4x4:
		return true
	default:
		return false
	}
}
