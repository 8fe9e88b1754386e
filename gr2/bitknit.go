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

import lslib "lslib.dev/go/lslib"

// bitknitQuantumSize is BitKnit's fixed compression block size.
const bitknitQuantumSize = 0x4000

// bitknitState tracks the eight-slot recent-offset cache BitKnit's
// LZ77 matches reuse across a section's quanta. It is retained here,
// unused by the stub decoder below, as the entry point a completed
// rANS state machine would thread state through one quantum at a time.
type bitknitState struct {
	recentOffsets [8]uint32
}

func newBitknitState() *bitknitState {
	s := &bitknitState{}
	for i := range s.recentOffsets {
		s.recentOffsets[i] = 8
	}
	return s
}

// decompressBitKnit is the entry point for a raw BitKnit stream (no
// Oodle container framing): 16KB quanta, three rANS-coded probability models
// (literals over 300 symbols, distance-lsb over 40, distance-extra-bits
// over 21), LZ77 matches against an 8-slot recent-offset cache.
//
// This is a documented partial implementation, not a completed one:
// the probability-model tables are still being reverse-engineered (see
// Fabian Giesen's BitKnit write-up and powzix/ooz for the published
// material a full rANS state machine would be built from). Rather than
// guess at an entropy-coded stream's contents, the decoder returns a
// typed KindDecompressionError with a diagnostic detail. The
// uncompressed-section path (decompress.go's CompressionNone case, the
// only compression this package's own writer emits) carries the full
// round trip and is what this package's tests exercise.
func decompressBitKnit(compressed []byte, decompressedSize int) ([]byte, error) {
	return nil, lslib.NewError(lslib.KindDecompressionError,
		"gr2: bitknit decompression is not implemented (clean-room rANS state machine pending; see bitknit.go)")
}
