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

package lspk

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pierrec/lz4/v4"

	lslib "lslib.dev/go/lslib"
)

// decompressLZ4 cycles through four decompression strategies before
// reporting failure: archives in the wild mix LZ4 block-format and LZ4
// frame-format output, so the first strategy that succeeds wins rather
// than trusting a single declared shape.
func decompressLZ4(compressed []byte, expectedSize int) ([]byte, error) {
	// 1. Block format, known decompressed size.
	if expectedSize > 0 {
		dst := make([]byte, expectedSize)
		if n, err := lz4.UncompressBlock(compressed, dst); err == nil {
			return dst[:n], nil
		}
	}

	// 2. Block format, doubled buffer (some encoders under-report size).
	larger := expectedSize * 2
	if larger < 65536 {
		larger = 65536
	}
	dst := make([]byte, larger)
	if n, err := lz4.UncompressBlock(compressed, dst); err == nil {
		return dst[:n], nil
	}

	// 3. Size-prepended block format.
	if len(compressed) > 4 {
		n := int(compressed[0]) | int(compressed[1])<<8 | int(compressed[2])<<16 | int(compressed[3])<<24
		if n > 0 && n < 1<<31 {
			dst := make([]byte, n)
			if got, err := lz4.UncompressBlock(compressed[4:], dst); err == nil {
				return dst[:got], nil
			}
		}
	}

	// 4. Frame format.
	var out bytes.Buffer
	zr := lz4.NewReader(bytes.NewReader(compressed))
	if _, err := io.Copy(&out, zr); err == nil && out.Len() > 0 {
		return out.Bytes(), nil
	}

	return nil, lslib.NewError(lslib.KindDecompressionError,
		"lz4: all four decompression strategies failed")
}

func decompressZlib(compressed []byte, expectedSize int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, lslib.Wrap(lslib.KindDecompressionError, err)
	}
	defer zr.Close()
	var out bytes.Buffer
	out.Grow(expectedSize)
	if _, err := io.Copy(&out, zr); err != nil {
		return nil, lslib.Wrap(lslib.KindDecompressionError, err)
	}
	return out.Bytes(), nil
}

// decompress dispatches on the codec from the entry's flags nibble.
func decompress(compressed []byte, codec Codec, decompressedSize uint32) ([]byte, error) {
	if codec == CodecNone || decompressedSize == 0 {
		return compressed, nil
	}
	switch codec {
	case CodecLZ4:
		return decompressLZ4(compressed, int(decompressedSize))
	case CodecZlib:
		return decompressZlib(compressed, int(decompressedSize))
	default:
		return compressed, nil
	}
}

// compressLZ4HC compresses src with the LZ4 high-compression path, the
// writer's default codec.
func compressLZ4HC(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.CompressorHC
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindWriteError, err)
	}
	if n == 0 {
		// Incompressible input: lz4 reports n==0 rather than a literal
		// block; archives in the wild store these files uncompressed.
		return nil, errIncompressible
	}
	return dst[:n], nil
}

func compressZlib(src []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(src)
	_ = zw.Close()
	return buf.Bytes()
}

var errIncompressible = lslib.NewError(lslib.KindWriteError, "lz4: input did not compress")
