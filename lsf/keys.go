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

import "lslib.dev/go/lslib/internal/binstream"

// readKeys parses the optional keys-adjacency section: one (outer,
// inner) name reference per node, in node-index order, giving that
// node's <key=""> value without having to scan its attribute list for
// a synthetic "key" attribute. A zero-length section (HasKeysAdjacency
// false, or Version.KeysAdjacency() false) means no node in this
// document declared a key.
func readKeys(buf []byte, nodeCount int) ([]*[2]uint32, error) {
	if len(buf) == 0 {
		return make([]*[2]uint32, nodeCount), nil
	}
	const recordSize = 8
	if len(buf)%recordSize != 0 {
		return nil, errLengthMismatch("keys", len(buf), recordSize)
	}
	r := binstream.NewReader(buf)
	out := make([]*[2]uint32, len(buf)/recordSize)
	for i := range out {
		outer, err := r.U32()
		if err != nil {
			return nil, err
		}
		inner, err := r.U32()
		if err != nil {
			return nil, err
		}
		if outer == 0xFFFFFFFF && inner == 0xFFFFFFFF {
			continue
		}
		ref := [2]uint32{outer, inner}
		out[i] = &ref
	}
	return out, nil
}

func writeKeys(refs []*[2]uint32) []byte {
	w := binstream.NewWriter()
	for _, ref := range refs {
		if ref == nil {
			w.U32(0xFFFFFFFF)
			w.U32(0xFFFFFFFF)
			continue
		}
		w.U32(ref[0])
		w.U32(ref[1])
	}
	return w.Bytes()
}
