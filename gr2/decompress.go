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

package gr2

import (
	"fmt"

	lslib "lslib.dev/go/lslib"
)

// decompressSection copies an uncompressed section verbatim or routes
// a BitKnit-compressed one through the entropy decoder.
func decompressSection(compressed []byte, sh SectionHeader) ([]byte, error) {
	switch sh.Compression {
	case CompressionNone:
		if uint32(len(compressed)) != sh.DecompressedSize {
			return nil, lslib.NewError(lslib.KindLengthMismatch,
				fmt.Sprintf("gr2: uncompressed section size %d != declared %d", len(compressed), sh.DecompressedSize))
		}
		out := make([]byte, len(compressed))
		copy(out, compressed)
		return out, nil
	case CompressionBitKnit:
		return decompressBitKnit(compressed, int(sh.DecompressedSize))
	default:
		return nil, lslib.NewError(lslib.KindDecompressionError,
			fmt.Sprintf("gr2: unsupported compression tag 0x%08X (expected BitKnit 0x%08X)", uint32(sh.Compression), uint32(CompressionBitKnit)))
	}
}
