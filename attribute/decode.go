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
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeError reports why Decode could not interpret a byte slice as a
// value of the declared type. Callers that need the closed
// lslib.ErrorKind taxonomy wrap DecodeError themselves (the attribute
// package sits below the root package and cannot import it without a
// cycle).
type DecodeError struct {
	Type   Type
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("attribute: cannot decode %s: %s", Name(e.Type), e.Reason)
}

// Decode interprets b as the wire encoding of a value of type t. b
// must contain exactly the attribute's declared value
// bytes (the caller has already sliced the values section at the
// attribute's offset for its declared length). Plain string types take
// their length from len(b); only the translated-string types carry
// embedded lengths, for their components, inside the encoding.
func Decode(t Type, b []byte) (Value, error) {
	switch {
	case t == Bool:
		if len(b) < 1 {
			return nil, &DecodeError{t, "empty payload"}
		}
		return Bool(b[0] != 0), nil

	case t == Float || t == Double:
		return decodeFloat(t, b)

	case IsNumeric(t):
		return decodeInt(t, b)

	case Columns(t) > 0 && Rows(t) <= 1:
		return decodeVector(t, b)

	case Rows(t) > 1:
		return decodeMatrix(t, b)

	case t == GUID:
		if len(b) != 16 {
			return nil, &DecodeError{t, "guid payload must be 16 bytes"}
		}
		var raw [16]byte
		copy(raw[:], b)
		return GUIDValue(formatGUID(raw)), nil

	case t == String || t == Path || t == LSString || t == FixedString:
		return decodeNarrowString(t, b)

	case t == WString || t == LSWString:
		return decodeWideString(t, b)

	case t == ScratchBuffer:
		out := make([]byte, len(b))
		copy(out, b)
		return ScratchBufferValue(out), nil

	case t == TranslatedString:
		return decodeTranslatedString(b)

	case t == TranslatedFSString:
		return decodeTranslatedFSString(b)

	case t == None:
		return nil, nil

	default:
		return nil, &DecodeError{t, "unknown type id"}
	}
}

func decodeInt(t Type, b []byte) (Value, error) {
	switch t {
	case UInt8:
		if len(b) < 1 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Int{Unsigned: uint64(b[0])}, nil
	case Int8:
		if len(b) < 1 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Int{Signed: int64(int8(b[0])), IsSigned: true}, nil
	case Int16:
		if len(b) < 2 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Int{Signed: int64(int16(binary.LittleEndian.Uint16(b))), IsSigned: true}, nil
	case UInt16:
		if len(b) < 2 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Int{Unsigned: uint64(binary.LittleEndian.Uint16(b))}, nil
	case Int32:
		if len(b) < 4 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Int{Signed: int64(int32(binary.LittleEndian.Uint32(b))), IsSigned: true}, nil
	case UInt32:
		if len(b) < 4 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Int{Unsigned: uint64(binary.LittleEndian.Uint32(b))}, nil
	case UInt64:
		if len(b) < 8 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Int{Unsigned: binary.LittleEndian.Uint64(b)}, nil
	case Int64, OldInt64:
		if len(b) < 8 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Int{Signed: int64(binary.LittleEndian.Uint64(b)), IsSigned: true}, nil
	default:
		return nil, &DecodeError{t, "not an integer type"}
	}
}

func decodeFloat(t Type, b []byte) (Value, error) {
	switch t {
	case Float:
		if len(b) < 4 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Float{Value: float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))}, nil
	case Double:
		if len(b) < 8 {
			return nil, &DecodeError{t, "short payload"}
		}
		return Float{Value: math.Float64frombits(binary.LittleEndian.Uint64(b)), IsDouble: true}, nil
	default:
		return nil, &DecodeError{t, "not a float type"}
	}
}

func decodeVector(t Type, b []byte) (Value, error) {
	n := Columns(t)
	if IsFloatVector(t) {
		if len(b) < n*4 {
			return nil, &DecodeError{t, "short payload"}
		}
		vals := make([]float32, n)
		for i := 0; i < n; i++ {
			vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
		return Vector{Floats: vals, IsFloat: true}, nil
	}
	if len(b) < n*4 {
		return nil, &DecodeError{t, "short payload"}
	}
	vals := make([]int32, n)
	for i := 0; i < n; i++ {
		vals[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return Vector{Ints: vals}, nil
}

func decodeMatrix(t Type, b []byte) (Value, error) {
	rows, cols := Rows(t), Columns(t)
	n := rows * cols
	if len(b) < n*4 {
		return nil, &DecodeError{t, "short payload"}
	}
	vals := make([]float32, n)
	for i := 0; i < n; i++ {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return Matrix{Rows: rows, Columns: cols, Elements: vals}, nil
}

// decodeNarrowString handles String/Path/LSString (no length prefix;
// null-terminated on the wire, length given by the caller via the
// attribute's declared payload length) and FixedString (same, but
// never null-terminated).
func decodeNarrowString(t Type, b []byte) (Value, error) {
	s := b
	if t != FixedString && len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return Str{Value: string(s), Kind: t}, nil
}

func decodeWideString(t Type, b []byte) (Value, error) {
	if len(b)%2 != 0 {
		return nil, &DecodeError{t, "odd-length UTF-16LE payload"}
	}
	n := len(b) / 2
	if n > 0 && binary.LittleEndian.Uint16(b[(n-1)*2:]) == 0 {
		n--
	}
	runes := make([]uint16, n)
	for i := 0; i < n; i++ {
		runes[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return Str{Value: utf16ToString(runes), Kind: t}, nil
}

// decodeTranslatedStringAt parses one translated-string record starting
// at b[0] and reports how many bytes it consumed, so a caller embedding
// the record (TranslatedFSString) can continue past it. Wire shape: two
// LE u16 lengths (handle length, inline-value length) followed by the
// handle text, then the inline value text (may be zero-length), then a
// trailing version u16 when no inline value was present.
func decodeTranslatedStringAt(b []byte) (TranslatedStringValue, int, error) {
	var result TranslatedStringValue
	if len(b) < 4 {
		return result, 0, &DecodeError{TranslatedString, "short header"}
	}
	handleLen := int(binary.LittleEndian.Uint16(b[0:2]))
	valueLen := int(binary.LittleEndian.Uint16(b[2:4]))
	pos := 4
	if len(b) < pos+handleLen {
		return result, 0, &DecodeError{TranslatedString, "truncated handle"}
	}
	result.Handle = string(b[pos : pos+handleLen])
	pos += handleLen

	if valueLen > 0 {
		if len(b) < pos+valueLen {
			return result, 0, &DecodeError{TranslatedString, "truncated inline value"}
		}
		result.HasValue = true
		result.Value = string(b[pos : pos+valueLen])
		pos += valueLen
	} else {
		if len(b) < pos+2 {
			return result, 0, &DecodeError{TranslatedString, "missing version"}
		}
		result.HasVersion = true
		result.Version = binary.LittleEndian.Uint16(b[pos : pos+2])
		pos += 2
	}
	return result, pos, nil
}

func decodeTranslatedString(b []byte) (Value, error) {
	ts, _, err := decodeTranslatedStringAt(b)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// decodeTranslatedFSString parses a translated string followed by a
// u8 argument count and, per argument, a u16-length-prefixed key
// string and a nested translated string.
func decodeTranslatedFSString(b []byte) (Value, error) {
	base, pos, err := decodeTranslatedStringAt(b)
	if err != nil {
		return nil, err
	}
	result := TranslatedFSStringValue{
		Handle:     base.Handle,
		HasValue:   base.HasValue,
		Value:      base.Value,
		HasVersion: base.HasVersion,
		Version:    base.Version,
	}
	// A record that ends after the base string has no argument block;
	// treat it as zero arguments.
	if pos >= len(b) {
		return result, nil
	}
	count := int(b[pos])
	pos++
	for i := 0; i < count; i++ {
		if pos+2 > len(b) {
			return nil, &DecodeError{TranslatedFSString, "truncated argument key length"}
		}
		keyLen := int(binary.LittleEndian.Uint16(b[pos:]))
		pos += 2
		if pos+keyLen > len(b) {
			return nil, &DecodeError{TranslatedFSString, "truncated argument key"}
		}
		key := string(b[pos : pos+keyLen])
		pos += keyLen
		val, n, err := decodeTranslatedStringAt(b[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		result.Arguments = append(result.Arguments, TranslatedFSArgument{Key: key, Value: val})
	}
	return result, nil
}

func utf16ToString(u []uint16) string {
	return string(utf16Decode(u))
}
