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

import "unicode/utf16"

// utf16Decode converts UTF-16LE code units (already byte-order-decoded
// by the caller) into runes, handling surrogate pairs.
func utf16Decode(u []uint16) []rune {
	return utf16.Decode(u)
}

// utf16Encode converts a Go string into UTF-16 code units, for the wide
// string encoders (WString, LSWString).
func utf16Encode(s string) []uint16 {
	return utf16.Encode([]rune(s))
}
