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

// nodeRecord is one fixed-width entry of the nodes section: 16 bytes
// (two u32 name reference halves, first-attribute index, parent
// index). ParentIndex == -1 marks a region root.
type nodeRecord struct {
	NameOuter          uint32
	NameInner          uint32
	FirstAttributeIndex int32
	ParentIndex         int32
}

const nodeRecordSize = 16

func readNodeRecords(buf []byte) ([]nodeRecord, error) {
	if len(buf)%nodeRecordSize != 0 {
		return nil, errLengthMismatch("nodes", len(buf), nodeRecordSize)
	}
	r := binstream.NewReader(buf)
	count := len(buf) / nodeRecordSize
	out := make([]nodeRecord, count)
	for i := range out {
		var err error
		if out[i].NameOuter, err = r.U32(); err != nil {
			return nil, err
		}
		if out[i].NameInner, err = r.U32(); err != nil {
			return nil, err
		}
		if out[i].FirstAttributeIndex, err = r.I32(); err != nil {
			return nil, err
		}
		if out[i].ParentIndex, err = r.I32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeNodeRecords(records []nodeRecord) []byte {
	w := binstream.NewWriter()
	for _, n := range records {
		w.U32(n.NameOuter)
		w.U32(n.NameInner)
		w.I32(n.FirstAttributeIndex)
		w.I32(n.ParentIndex)
	}
	return w.Bytes()
}

// attributeRecord is one fixed-width entry of the attributes section:
// name reference, packed type_info (6-bit type id in the low bits,
// value length in the remaining bits), values-section byte offset, and
// the index of the next attribute on the same node (-1 if this is the
// last).
type attributeRecord struct {
	NameOuter   uint32
	NameInner   uint32
	TypeInfo    uint32
	Offset      uint32
	NextIndex   int32
}

const attributeRecordSize = 20

func readAttributeRecords(buf []byte) ([]attributeRecord, error) {
	if len(buf)%attributeRecordSize != 0 {
		return nil, errLengthMismatch("attributes", len(buf), attributeRecordSize)
	}
	r := binstream.NewReader(buf)
	count := len(buf) / attributeRecordSize
	out := make([]attributeRecord, count)
	for i := range out {
		var err error
		if out[i].NameOuter, err = r.U32(); err != nil {
			return nil, err
		}
		if out[i].NameInner, err = r.U32(); err != nil {
			return nil, err
		}
		if out[i].TypeInfo, err = r.U32(); err != nil {
			return nil, err
		}
		if out[i].Offset, err = r.U32(); err != nil {
			return nil, err
		}
		if out[i].NextIndex, err = r.I32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeAttributeRecords(records []attributeRecord) []byte {
	w := binstream.NewWriter()
	for _, a := range records {
		w.U32(a.NameOuter)
		w.U32(a.NameInner)
		w.U32(a.TypeInfo)
		w.U32(a.Offset)
		w.I32(a.NextIndex)
	}
	return w.Bytes()
}

// packTypeInfo combines a 6-bit type id and a value byte length into
// the attribute record's TypeInfo word (type_id = type_info & 0x3F,
// length = type_info >> 6).
func packTypeInfo(typeID uint8, length uint32) uint32 {
	return uint32(typeID&0x3F) | (length << 6)
}

func unpackTypeInfo(info uint32) (typeID uint8, length uint32) {
	return uint8(info & 0x3F), info >> 6
}
