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

// EncodeError reports why Encode could not serialize a value as its
// declared type.
type EncodeError struct {
	Type   Type
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("attribute: cannot encode %s: %s", Name(e.Type), e.Reason)
}

// Encode serializes v as the wire encoding of type t, the inverse of
// Decode. It does not prefix the result with a length or type word;
// callers (the lsf writer) own the attribute's type_info and offset
// bookkeeping.
func Encode(t Type, v Value) ([]byte, error) {
	switch {
	case t == Bool:
		b, ok := v.(Bool)
		if !ok {
			return nil, &EncodeError{t, "value is not Bool"}
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case IsNumeric(t):
		iv, ok := v.(Int)
		if ok {
			return encodeInt(t, iv)
		}
		fv, ok := v.(Float)
		if ok {
			return encodeFloat(t, fv)
		}
		return nil, &EncodeError{t, "value is not Int or Float"}

	case Columns(t) > 0 && Rows(t) <= 1:
		vec, ok := v.(Vector)
		if !ok {
			return nil, &EncodeError{t, "value is not Vector"}
		}
		return encodeVector(t, vec)

	case Rows(t) > 1:
		m, ok := v.(Matrix)
		if !ok {
			return nil, &EncodeError{t, "value is not Matrix"}
		}
		return encodeMatrix(t, m)

	case t == GUID:
		g, ok := v.(GUIDValue)
		if !ok {
			return nil, &EncodeError{t, "value is not GUIDValue"}
		}
		raw, err := ParseGUID(string(g))
		if err != nil {
			return nil, &EncodeError{t, err.Error()}
		}
		return raw[:], nil

	case t == String || t == Path || t == LSString || t == FixedString:
		s, ok := v.(Str)
		if !ok {
			return nil, &EncodeError{t, "value is not Str"}
		}
		return encodeNarrowString(t, s), nil

	case t == WString || t == LSWString:
		s, ok := v.(Str)
		if !ok {
			return nil, &EncodeError{t, "value is not Str"}
		}
		return encodeWideString(s), nil

	case t == ScratchBuffer:
		sb, ok := v.(ScratchBufferValue)
		if !ok {
			return nil, &EncodeError{t, "value is not ScratchBufferValue"}
		}
		out := make([]byte, len(sb))
		copy(out, sb)
		return out, nil

	case t == TranslatedString:
		ts, ok := v.(TranslatedStringValue)
		if !ok {
			return nil, &EncodeError{t, "value is not TranslatedStringValue"}
		}
		return encodeTranslatedString(ts), nil

	case t == TranslatedFSString:
		fs, ok := v.(TranslatedFSStringValue)
		if !ok {
			return nil, &EncodeError{t, "value is not TranslatedFSStringValue"}
		}
		return encodeTranslatedFSString(fs), nil

	case t == None:
		return nil, nil

	default:
		return nil, &EncodeError{t, "unknown type id"}
	}
}

func encodeInt(t Type, v Int) ([]byte, error) {
	switch t {
	case UInt8:
		return []byte{byte(v.Unsigned)}, nil
	case Int8:
		return []byte{byte(v.Signed)}, nil
	case Int16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(int16(v.Signed)))
		return b, nil
	case UInt16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v.Unsigned))
		return b, nil
	case Int32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(v.Signed)))
		return b, nil
	case UInt32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v.Unsigned))
		return b, nil
	case UInt64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v.Unsigned)
		return b, nil
	case Int64, OldInt64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v.Signed))
		return b, nil
	default:
		return nil, &EncodeError{t, "not an integer type"}
	}
}

func encodeFloat(t Type, v Float) ([]byte, error) {
	switch t {
	case Float:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v.Value)))
		return b, nil
	case Double:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(v.Value))
		return b, nil
	default:
		return nil, &EncodeError{t, "not a float type"}
	}
}

func encodeVector(t Type, v Vector) ([]byte, error) {
	n := Columns(t)
	b := make([]byte, n*4)
	if IsFloatVector(t) {
		if len(v.Floats) != n {
			return nil, &EncodeError{t, "wrong component count"}
		}
		for i, f := range v.Floats {
			binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
		}
		return b, nil
	}
	if len(v.Ints) != n {
		return nil, &EncodeError{t, "wrong component count"}
	}
	for i, x := range v.Ints {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(x))
	}
	return b, nil
}

func encodeMatrix(t Type, m Matrix) ([]byte, error) {
	rows, cols := Rows(t), Columns(t)
	if m.Rows != rows || m.Columns != cols || len(m.Elements) != rows*cols {
		return nil, &EncodeError{t, "wrong matrix shape"}
	}
	b := make([]byte, len(m.Elements)*4)
	for i, f := range m.Elements {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b, nil
}

func encodeNarrowString(t Type, s Str) []byte {
	if t == FixedString {
		return []byte(s.Value)
	}
	b := make([]byte, len(s.Value)+1)
	copy(b, s.Value)
	return b
}

func encodeWideString(s Str) []byte {
	units := utf16Encode(s.Value)
	b := make([]byte, (len(units)+1)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[i*2:], u)
	}
	return b
}

// encodeTranslatedFSString writes the base translated string, a u8
// argument count, and per argument a u16-length-prefixed key followed
// by the argument's own translated-string record — the inverse of
// decodeTranslatedFSString.
func encodeTranslatedFSString(fs TranslatedFSStringValue) []byte {
	out := encodeTranslatedString(fs.base())
	out = append(out, byte(len(fs.Arguments)))
	for _, arg := range fs.Arguments {
		var keyLen [2]byte
		binary.LittleEndian.PutUint16(keyLen[:], uint16(len(arg.Key)))
		out = append(out, keyLen[:]...)
		out = append(out, arg.Key...)
		out = append(out, encodeTranslatedString(arg.Value)...)
	}
	return out
}

func encodeTranslatedString(ts TranslatedStringValue) []byte {
	handle := []byte(ts.Handle)
	var valueBytes []byte
	if ts.HasValue {
		valueBytes = []byte(ts.Value)
	}
	out := make([]byte, 4+len(handle)+len(valueBytes))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(handle)))
	binary.LittleEndian.PutUint16(out[2:4], uint16(len(valueBytes)))
	pos := 4
	copy(out[pos:], handle)
	pos += len(handle)
	copy(out[pos:], valueBytes)
	if !ts.HasValue {
		verBuf := make([]byte, 2)
		binary.LittleEndian.PutUint16(verBuf, ts.Version)
		out = append(out, verBuf...)
	}
	return out
}
