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

package lsf

import (
	"bytes"
	"compress/zlib"
	"io"

	lslib "lslib.dev/go/lslib"
)

// decompressSection returns raw unchanged if compressedSize == 0 (the
// section was stored uncompressed), otherwise zlib-inflates it to
// rawSize bytes. Every LSF section shares the same per-section
// compression scheme.
func decompressSection(raw []byte, rawSize, compressedSize uint32) ([]byte, error) {
	if compressedSize == 0 {
		return raw, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, lslib.Wrap(lslib.KindDecompressionError, err)
	}
	defer zr.Close()
	out := make([]byte, 0, rawSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, lslib.Wrap(lslib.KindDecompressionError, err)
	}
	if uint32(buf.Len()) != rawSize {
		return nil, lslib.NewError(lslib.KindLengthMismatch, "decompressed section size does not match header")
	}
	return buf.Bytes(), nil
}

// compressSection zlib-deflates raw. The writer always compresses
// rather than picking per-section.
func compressSection(raw []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(raw)
	_ = zw.Close()
	return buf.Bytes()
}
