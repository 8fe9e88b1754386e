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

package gltf

import (
	"encoding/binary"
	"encoding/json"

	lslib "lslib.dev/go/lslib"
)

// GLB container constants, per the glTF 2.0 binary container spec.
const (
	glbMagic   = 0x46546C67 // "glTF"
	glbVersion = 2
	chunkJSON  = 0x4E4F534A // "JSON"
	chunkBIN   = 0x004E4942 // "BIN\0"
)

// EncodeGLB packs doc and bin into a single GLB byte stream: 12-byte
// container header, 4-byte-aligned JSON chunk (space-padded), and
// 4-byte-aligned binary chunk (zero-padded). The buffer entry must not
// carry a URI in GLB form; EncodeGLB clears it on a copy.
func EncodeGLB(doc *Document, bin []byte) ([]byte, error) {
	d := *doc
	if len(bin) > 0 {
		d.Buffers = []Buffer{{ByteLength: len(bin)}}
	}
	jsonBytes, err := json.Marshal(&d)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindWriteError, err)
	}
	for len(jsonBytes)%4 != 0 {
		jsonBytes = append(jsonBytes, ' ')
	}
	binPadded := bin
	for len(binPadded)%4 != 0 {
		binPadded = append(binPadded, 0)
	}

	total := 12 + 8 + len(jsonBytes)
	if len(binPadded) > 0 {
		total += 8 + len(binPadded)
	}

	out := make([]byte, 0, total)
	out = appendU32(out, glbMagic)
	out = appendU32(out, glbVersion)
	out = appendU32(out, uint32(total))
	out = appendU32(out, uint32(len(jsonBytes)))
	out = appendU32(out, chunkJSON)
	out = append(out, jsonBytes...)
	if len(binPadded) > 0 {
		out = appendU32(out, uint32(len(binPadded)))
		out = appendU32(out, chunkBIN)
		out = append(out, binPadded...)
	}
	return out, nil
}

// EncodeText emits the .gltf+.bin pair: pretty-printed JSON referencing
// an external "<stem>.bin" buffer, and the buffer bytes themselves.
func EncodeText(doc *Document, bin []byte, stem string) (gltfJSON, binOut []byte, err error) {
	d := *doc
	if len(bin) > 0 {
		d.Buffers = []Buffer{{URI: stem + ".bin", ByteLength: len(bin)}}
	}
	jsonBytes, err := json.MarshalIndent(&d, "", "  ")
	if err != nil {
		return nil, nil, lslib.Wrap(lslib.KindWriteError, err)
	}
	jsonBytes = append(jsonBytes, '\n')
	return jsonBytes, bin, nil
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}
