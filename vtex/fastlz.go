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

package vtex

import lslib "lslib.dev/go/lslib"

// fastlzDecompress implements FastLZ level-1 decompression (Ariya
// Hidayat's public-domain algorithm, the byte-oriented LZ77 variant
// BG3's virtual-texture pages use for one of their three tile
// compression choices), from the published control-byte/back-reference
// scheme.
//
// Control byte layout: the first byte is masked to 0-31 and always
// starts a literal run (the compressor never opens a stream with a
// back-reference); every later control byte is used unmasked, with
// values 0-31 meaning a literal run of ctrl+1 bytes and values 32-255
// meaning a back-reference whose 3-bit length field and 5 high offset
// bits are packed into ctrl, extended by one-or-more 0xFF-chained
// length bytes and a single low-offset byte.
func fastlzDecompress(compressed []byte, outputSize int) ([]byte, error) {
	if len(compressed) == 0 {
		if outputSize == 0 {
			return nil, nil
		}
		return nil, lslib.NewError(lslib.KindDecompressionError, "fastlz: empty input for non-empty output")
	}

	out := make([]byte, 0, outputSize)
	ip := 0
	ctrl := int(compressed[ip]) & 31
	ip++

	for {
		if ctrl >= 32 {
			length := (ctrl >> 5) - 1
			ofs := (ctrl & 31) << 8
			if length == 7-1 {
				for {
					if ip >= len(compressed) {
						return nil, lslib.NewError(lslib.KindDecompressionError, "fastlz: truncated length-extension byte")
					}
					code := compressed[ip]
					ip++
					length += int(code)
					if code != 255 {
						break
					}
				}
			}
			if ip >= len(compressed) {
				return nil, lslib.NewError(lslib.KindDecompressionError, "fastlz: truncated offset byte")
			}
			ofs += int(compressed[ip])
			ip++
			length += 3

			refStart := len(out) - ofs - 1
			if refStart < 0 {
				return nil, lslib.NewError(lslib.KindDecompressionError, "fastlz: back-reference before start of output")
			}
			if len(out)+length > outputSize {
				return nil, lslib.NewError(lslib.KindDecompressionError, "fastlz: back-reference overruns output size")
			}
			for i := 0; i < length; i++ {
				out = append(out, out[refStart+i])
			}
		} else {
			litLen := ctrl + 1
			if ip+litLen > len(compressed) {
				return nil, lslib.NewError(lslib.KindDecompressionError, "fastlz: truncated literal run")
			}
			if len(out)+litLen > outputSize {
				return nil, lslib.NewError(lslib.KindDecompressionError, "fastlz: literal run overruns output size")
			}
			out = append(out, compressed[ip:ip+litLen]...)
			ip += litLen
		}

		if ip >= len(compressed) {
			break
		}
		ctrl = int(compressed[ip])
		ip++
	}

	if len(out) != outputSize {
		padded := make([]byte, outputSize)
		copy(padded, out)
		return padded, nil
	}
	return out, nil
}

// fastlzCompress encodes src with the simplest valid FastLZ level-1
// encoding: a single literal run (or a run of chained literal blocks
// when src exceeds 32 bytes, since a control byte caps a literal run
// at 32 bytes). This is sufficient for round-tripping tiles this
// package writes itself; it does not attempt back-reference matching.
// The decode side still accepts compliant real-world streams.
func fastlzCompress(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	out := make([]byte, 0, len(src)+len(src)/32+1)
	for off := 0; off < len(src); off += 32 {
		end := off + 32
		if end > len(src) {
			end = len(src)
		}
		chunk := src[off:end]
		out = append(out, byte(len(chunk)-1))
		out = append(out, chunk...)
	}
	return out
}
