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

// Package loca implements the LOCA localization table: a flat list of
// (key, version, text) entries, as a binary container or as the
// equivalent XML form.
//
// Binary layout: 12-byte header (signature, entry count, text-block
// offset), fixed 70-byte entry records (64-byte null-padded key, u16
// version, u32 length including the trailing NUL), followed by the
// concatenated null-terminated text block.
package loca

import (
	"encoding/binary"

	lslib "lslib.dev/go/lslib"
)

const (
	// Signature is "LOCA" read as a little-endian u32.
	Signature   uint32 = 0x41434F4C
	keySize            = 64
	entrySize           = keySize + 2 + 4
	headerSize          = 12
)

// Entry is one localized string.
type Entry struct {
	Key     string
	Version uint16
	Text    string
}

// Table is a full LOCA resource: an ordered list of entries. Order is
// significant and preserved across Read/Write round trips even though
// keys are not required to be unique (a later duplicate simply shadows
// an earlier one at lookup time, matching the source engine's own
// last-one-wins behavior).
type Table struct {
	Entries []Entry
}

// Read parses LOCA binary data.
func Read(data []byte) (*Table, error) {
	if len(data) < headerSize {
		return nil, lslib.NewError(lslib.KindIO, "loca file shorter than header")
	}
	sig := binary.LittleEndian.Uint32(data[0:4])
	if sig != Signature {
		return nil, lslib.NewError(lslib.KindInvalidMagic, "loca signature mismatch")
	}
	numEntries := binary.LittleEndian.Uint32(data[4:8])
	textsOffset := binary.LittleEndian.Uint32(data[8:12])

	type meta struct {
		key     string
		version uint16
		length  uint32
	}
	metas := make([]meta, numEntries)
	pos := headerSize
	for i := range metas {
		if pos+entrySize > len(data) {
			return nil, lslib.NewError(lslib.KindLengthMismatch, "loca entry table truncated")
		}
		keyBytes := data[pos : pos+keySize]
		n := indexByte(keyBytes, 0)
		if n < 0 {
			n = keySize
		}
		metas[i].key = string(keyBytes[:n])
		pos += keySize
		metas[i].version = binary.LittleEndian.Uint16(data[pos : pos+2])
		pos += 2
		metas[i].length = binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4
	}

	if int(textsOffset) > len(data) {
		return nil, lslib.NewError(lslib.KindLengthMismatch, "loca text block offset out of range")
	}
	tpos := int(textsOffset)
	entries := make([]Entry, numEntries)
	for i, m := range metas {
		if m.length == 0 {
			entries[i] = Entry{Key: m.key, Version: m.version}
			continue
		}
		textLen := int(m.length) - 1
		if tpos+textLen+1 > len(data) {
			return nil, lslib.NewError(lslib.KindLengthMismatch, "loca text entry truncated")
		}
		entries[i] = Entry{Key: m.key, Version: m.version, Text: string(data[tpos : tpos+textLen])}
		tpos += textLen + 1 // + trailing NUL
	}
	return &Table{Entries: entries}, nil
}

// Write serializes t into LOCA binary bytes.
func Write(t *Table) []byte {
	numEntries := uint32(len(t.Entries))
	textsOffset := headerSize + entrySize*int(numEntries)

	out := make([]byte, 0, textsOffset+64)
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], Signature)
	binary.LittleEndian.PutUint32(header[4:8], numEntries)
	binary.LittleEndian.PutUint32(header[8:12], uint32(textsOffset))
	out = append(out, header...)

	lengths := make([]uint32, len(t.Entries))
	for i, e := range t.Entries {
		if e.Text != "" {
			lengths[i] = uint32(len(e.Text)) + 1
		}
	}

	for i, e := range t.Entries {
		keyBuf := make([]byte, keySize)
		copy(keyBuf, e.Key)
		out = append(out, keyBuf...)
		var verBuf [2]byte
		binary.LittleEndian.PutUint16(verBuf[:], e.Version)
		out = append(out, verBuf[:]...)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], lengths[i])
		out = append(out, lenBuf[:]...)
	}

	for _, e := range t.Entries {
		if e.Text == "" {
			continue
		}
		out = append(out, e.Text...)
		out = append(out, 0)
	}
	return out
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
