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
	"fmt"
	"strconv"
	"strings"
)

// Stringify renders v as the text form used by LSX attribute value=""
// strings and by plain-scalar LSJ values. It is the inverse of Parse.
//
// Scalars render as minimal decimal (no trailing zeros, no leading
// "+", Go's default float formatting for Float/Double). Vectors and
// matrices render as their components space-separated, matrices
// row-major in element order. Bool renders as "True"/"False",
// matching the case the text formats use; Parse accepts that, lowercase
// "true"/"false", and "1"/"0" on the way back in. GUIDs render
// hyphenated lowercase (see guid.go). TranslatedString and
// TranslatedFSString do not have a plain-text rendering in the wire
// formats — LSX encodes them as a pair of extra attributes
// (handle/version) managed by the lsx package, not through Stringify.
func Stringify(t Type, v Value) (string, error) {
	switch val := v.(type) {
	case Bool:
		if val {
			return "True", nil
		}
		return "False", nil

	case Int:
		if val.IsSigned {
			return strconv.FormatInt(val.Signed, 10), nil
		}
		return strconv.FormatUint(val.Unsigned, 10), nil

	case Float:
		bits := 32
		if val.IsDouble {
			bits = 64
		}
		return strconv.FormatFloat(val.Value, 'g', -1, bits), nil

	case Vector:
		parts := make([]string, 0, len(val.Ints)+len(val.Floats))
		if val.IsFloat {
			for _, f := range val.Floats {
				parts = append(parts, strconv.FormatFloat(float64(f), 'g', -1, 32))
			}
		} else {
			for _, i := range val.Ints {
				parts = append(parts, strconv.FormatInt(int64(i), 10))
			}
		}
		return strings.Join(parts, " "), nil

	case Matrix:
		parts := make([]string, len(val.Elements))
		for i, f := range val.Elements {
			parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
		return strings.Join(parts, " "), nil

	case Str:
		return val.Value, nil

	case GUIDValue:
		return string(val), nil

	case ScratchBufferValue:
		return encodeHexString(val), nil

	default:
		return "", &EncodeError{t, fmt.Sprintf("no text rendering for %T", v)}
	}
}

// Parse converts text (as found in an LSX value="" attribute or a
// plain-scalar LSJ value) back into a Value of type t.
func Parse(t Type, s string) (Value, error) {
	switch {
	case t == Bool:
		switch strings.ToLower(s) {
		case "true", "1":
			return Bool(true), nil
		case "false", "0":
			return Bool(false), nil
		default:
			return nil, &DecodeError{t, fmt.Sprintf("invalid bool text %q", s)}
		}

	case IsNumeric(t) && t != Float && t != Double:
		return parseIntText(t, s)

	case t == Float || t == Double:
		bits := 32
		if t == Double {
			bits = 64
		}
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return nil, &DecodeError{t, fmt.Sprintf("invalid float text %q", s)}
		}
		return Float{Value: f, IsDouble: t == Double}, nil

	case Columns(t) > 0 && Rows(t) <= 1:
		return parseVectorText(t, s)

	case Rows(t) > 1:
		return parseMatrixText(t, s)

	case t == GUID:
		if _, err := ParseGUID(s); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		return GUIDValue(s), nil

	case t == String || t == Path || t == FixedString || t == LSString ||
		t == WString || t == LSWString:
		return Str{Value: s, Kind: t}, nil

	case t == ScratchBuffer:
		b, err := decodeHexString(s)
		if err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		return ScratchBufferValue(b), nil

	default:
		return nil, &DecodeError{t, "no text parser for this type"}
	}
}

func parseIntText(t Type, s string) (Value, error) {
	switch t {
	case UInt8, UInt16, UInt32, UInt64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, &DecodeError{t, fmt.Sprintf("invalid unsigned int text %q", s)}
		}
		return Int{Unsigned: n}, nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &DecodeError{t, fmt.Sprintf("invalid int text %q", s)}
		}
		return Int{Signed: n, IsSigned: true}, nil
	}
}

func parseVectorText(t Type, s string) (Value, error) {
	n := Columns(t)
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, &DecodeError{t, fmt.Sprintf("expected %d components, got %d", n, len(fields))}
	}
	if IsFloatVector(t) {
		vals := make([]float32, n)
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, &DecodeError{t, fmt.Sprintf("invalid vector component %q", f)}
			}
			vals[i] = float32(x)
		}
		return Vector{Floats: vals, IsFloat: true}, nil
	}
	vals := make([]int32, n)
	for i, f := range fields {
		x, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, &DecodeError{t, fmt.Sprintf("invalid vector component %q", f)}
		}
		vals[i] = int32(x)
	}
	return Vector{Ints: vals}, nil
}

func parseMatrixText(t Type, s string) (Value, error) {
	rows, cols := Rows(t), Columns(t)
	fields := strings.Fields(s)
	if len(fields) != rows*cols {
		return nil, &DecodeError{t, fmt.Sprintf("expected %d components, got %d", rows*cols, len(fields))}
	}
	vals := make([]float32, rows*cols)
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, &DecodeError{t, fmt.Sprintf("invalid matrix component %q", f)}
		}
		vals[i] = float32(x)
	}
	return Matrix{Rows: rows, Columns: cols, Elements: vals}, nil
}

const hexDigits = "0123456789abcdef"

func encodeHexString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0xf])
	}
	return sb.String()
}

func decodeHexString(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err1 := hexVal(s[i*2])
		lo, err2 := hexVal(s[i*2+1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid hex digit in %q", s)
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexVal(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit %q", c)
	}
}
