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
	"encoding/hex"
	"fmt"
)

// formatGUID renders a 16-byte GUID payload as canonical hyphenated
// lowercase text, e.g. "3f2504e0-4f89-11d3-9a0c-0305e82c3301". raw is
// already in the byte order the caller wants displayed; any wire-level
// Microsoft byte-swap is applied by the caller before formatting (see
// the lsf package, which gates the swap on Version.BswapGUIDs).
func formatGUID(raw [16]byte) string {
	var buf [36]byte
	hex.Encode(buf[0:8], raw[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], raw[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], raw[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], raw[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], raw[10:16])
	return string(buf[:])
}

// ParseGUID parses canonical hyphenated GUID text back into its 16 raw
// bytes, with no byte-swap applied (the lsf package applies the
// version-gated swap on top of this when writing).
func ParseGUID(s string) ([16]byte, error) {
	var raw [16]byte
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return raw, fmt.Errorf("attribute: malformed guid %q", s)
	}
	groups := [5]string{s[0:8], s[9:13], s[14:18], s[19:23], s[24:36]}
	offsets := [5]int{0, 4, 6, 8, 10}
	for i, g := range groups {
		n, err := hex.Decode(raw[offsets[i]:], []byte(g))
		if err != nil || n != len(g)/2 {
			return raw, fmt.Errorf("attribute: malformed guid %q: %w", s, err)
		}
	}
	return raw, nil
}

// SwapGUIDBytes applies the Microsoft GUID byte-swap in place: the first
// three fields (32-bit, 16-bit, 16-bit) are reversed; the trailing 8
// bytes are left as-is. Calling it twice restores the original bytes.
func SwapGUIDBytes(raw *[16]byte) {
	reverse(raw[0:4])
	reverse(raw[4:6])
	reverse(raw[6:8])
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
