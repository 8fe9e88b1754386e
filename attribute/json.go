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
	"encoding/json"
	"fmt"
)

// jsonTranslatedString is the LSJ object shape for a TranslatedString:
// either {"handle":..,"value":..} or {"handle":..,"version":..}.
type jsonTranslatedString struct {
	Handle  string  `json:"handle"`
	Value   *string `json:"value,omitempty"`
	Version *uint16 `json:"version,omitempty"`
}

// jsonFSArgument is one entry of a TranslatedFSString's "arguments"
// array.
type jsonFSArgument struct {
	Key   string               `json:"key"`
	Value jsonTranslatedString `json:"value"`
}

type jsonTranslatedFSString struct {
	Handle    string           `json:"handle"`
	Value     *string          `json:"value,omitempty"`
	Version   *uint16          `json:"version,omitempty"`
	Arguments []jsonFSArgument `json:"arguments"`
}

// MarshalJSONValue converts a decoded Value into its type's
// JSON-native shape: scalars marshal as JSON
// number/bool/string, vectors/matrices as space-separated strings (a
// format contract, never JSON arrays), ScratchBuffer as a hex string,
// and the two translated-string types as small objects (never as a
// bare string — that would make a Referenced translated string
// indistinguishable from an inline one with no handle).
func MarshalJSONValue(t Type, v Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil

	case Bool:
		return bool(val), nil

	case Int:
		if val.IsSigned {
			return val.Signed, nil
		}
		return val.Unsigned, nil

	case Float:
		return val.Value, nil

	case Vector:
		return Stringify(t, val)

	case Matrix:
		return Stringify(t, val)

	case Str:
		return val.Value, nil

	case GUIDValue:
		return string(val), nil

	case ScratchBufferValue:
		return encodeHexString(val), nil

	case TranslatedStringValue:
		out := jsonTranslatedString{Handle: val.Handle}
		if val.HasValue {
			out.Value = &val.Value
		}
		if val.HasVersion {
			v := val.Version
			out.Version = &v
		}
		return out, nil

	case TranslatedFSStringValue:
		out := jsonTranslatedFSString{Handle: val.Handle, Arguments: []jsonFSArgument{}}
		if val.HasValue {
			out.Value = &val.Value
		}
		if val.HasVersion {
			ver := val.Version
			out.Version = &ver
		}
		for _, arg := range val.Arguments {
			jv := jsonTranslatedString{Handle: arg.Value.Handle}
			if arg.Value.HasValue {
				jv.Value = &arg.Value.Value
			}
			if arg.Value.HasVersion {
				ver := arg.Value.Version
				jv.Version = &ver
			}
			out.Arguments = append(out.Arguments, jsonFSArgument{Key: arg.Key, Value: jv})
		}
		return out, nil

	default:
		return nil, &EncodeError{t, fmt.Sprintf("no JSON rendering for %T", v)}
	}
}

// UnmarshalJSONValue is the inverse of MarshalJSONValue: it interprets
// raw (already isolated by the lsj package's ordered-map decoder) as a
// value of type t.
func UnmarshalJSONValue(t Type, raw json.RawMessage) (Value, error) {
	switch {
	case t == Bool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		return Bool(b), nil

	case IsNumeric(t) && t != Float && t != Double:
		switch t {
		case UInt8, UInt16, UInt32, UInt64:
			var n uint64
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, &DecodeError{t, err.Error()}
			}
			return Int{Unsigned: n}, nil
		default:
			var n int64
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, &DecodeError{t, err.Error()}
			}
			return Int{Signed: n, IsSigned: true}, nil
		}

	case t == Float || t == Double:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		return Float{Value: f, IsDouble: t == Double}, nil

	case Columns(t) > 0 && Rows(t) <= 1:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &DecodeError{t, "vector values are space-separated strings, not arrays: " + err.Error()}
		}
		return Parse(t, s)

	case Rows(t) > 1:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &DecodeError{t, "matrix values are space-separated strings, not arrays: " + err.Error()}
		}
		return Parse(t, s)

	case t == GUID:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		if _, err := ParseGUID(s); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		return GUIDValue(s), nil

	case t == String || t == Path || t == FixedString || t == LSString ||
		t == WString || t == LSWString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		return Str{Value: s, Kind: t}, nil

	case t == ScratchBuffer:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		b, err := decodeHexString(s)
		if err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		return ScratchBufferValue(b), nil

	case t == TranslatedString:
		var jt jsonTranslatedString
		if err := json.Unmarshal(raw, &jt); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		return translatedFromJSON(jt), nil

	case t == TranslatedFSString:
		var jt jsonTranslatedFSString
		if err := json.Unmarshal(raw, &jt); err != nil {
			return nil, &DecodeError{t, err.Error()}
		}
		result := TranslatedFSStringValue{Handle: jt.Handle}
		if jt.Value != nil {
			result.HasValue = true
			result.Value = *jt.Value
		} else if jt.Version != nil {
			result.HasVersion = true
			result.Version = *jt.Version
		}
		for _, arg := range jt.Arguments {
			result.Arguments = append(result.Arguments, TranslatedFSArgument{
				Key:   arg.Key,
				Value: translatedFromJSON(arg.Value),
			})
		}
		return result, nil

	default:
		return nil, &DecodeError{t, "no JSON parser for this type"}
	}
}

func translatedFromJSON(jt jsonTranslatedString) TranslatedStringValue {
	out := TranslatedStringValue{Handle: jt.Handle}
	if jt.Value != nil {
		out.HasValue = true
		out.Value = *jt.Value
	} else if jt.Version != nil {
		out.HasVersion = true
		out.Version = *jt.Version
	}
	return out
}
