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
	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/attribute"
	"lslib.dev/go/lslib/internal/binstream"
)

// Read parses a complete LSF file into a lslib.Document. The five
// sections (names, nodes, attributes, values, and the optional
// keys-adjacency table) are each independently zlib-compressed; Read
// inflates each before interpreting it.
func Read(data []byte) (*lslib.Document, error) {
	r := binstream.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	if h.Version < MinVersion {
		return nil, errUnsupportedVersion("lsf version below minimum supported")
	}

	namesRaw, err := r.ReadBytes(int(h.NamesCompressedSizeOr(h.NamesSize)))
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	nodesRaw, err := r.ReadBytes(int(h.NodesCompressedSizeOr(h.NodesSize)))
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	attrsRaw, err := r.ReadBytes(int(h.AttributesCompressedSizeOr(h.AttributesSize)))
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	valuesRaw, err := r.ReadBytes(int(h.ValuesCompressedSizeOr(h.ValuesSize)))
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	var keysRaw []byte
	if h.HasKeysAdjacency != 0 {
		keysRaw, err = r.ReadBytes(int(h.KeysCompressedSizeOr(h.KeysSize)))
		if err != nil {
			return nil, lslib.Wrap(lslib.KindIO, err)
		}
	}

	namesBuf, err := decompressSection(namesRaw, h.NamesSize, h.NamesCompressedSize)
	if err != nil {
		return nil, err
	}
	nodesBuf, err := decompressSection(nodesRaw, h.NodesSize, h.NodesCompressedSize)
	if err != nil {
		return nil, err
	}
	attrsBuf, err := decompressSection(attrsRaw, h.AttributesSize, h.AttributesCompressedSize)
	if err != nil {
		return nil, err
	}
	valuesBuf, err := decompressSection(valuesRaw, h.ValuesSize, h.ValuesCompressedSize)
	if err != nil {
		return nil, err
	}
	var keysBuf []byte
	if h.HasKeysAdjacency != 0 {
		keysBuf, err = decompressSection(keysRaw, h.KeysSize, h.KeysCompressedSize)
		if err != nil {
			return nil, err
		}
	}

	nameTable, err := readNames(namesBuf)
	if err != nil {
		return nil, err
	}
	nodeRecords, err := readNodeRecords(nodesBuf)
	if err != nil {
		return nil, err
	}
	attrRecords, err := readAttributeRecords(attrsBuf)
	if err != nil {
		return nil, err
	}
	keyRefs, err := readKeys(keysBuf, len(nodeRecords))
	if err != nil {
		return nil, err
	}

	major, minor, revision, build := unpackEngineVersion(h.EngineVersion)
	version := lslib.Version{Major: major, Minor: minor, Revision: revision, Build: build}

	doc := &lslib.Document{Version: version}
	nodes := make([]*lslib.Node, len(nodeRecords))
	for i, rec := range nodeRecords {
		id, ok := nameTable.get(rec.NameOuter, rec.NameInner)
		if !ok {
			return nil, errInvalidRelocation("node name reference out of range")
		}
		node := &lslib.Node{ID: id}
		if i < len(keyRefs) && keyRefs[i] != nil {
			key, ok := nameTable.get(keyRefs[i][0], keyRefs[i][1])
			if ok {
				node.Key = &key
			}
		}
		if rec.FirstAttributeIndex >= 0 {
			attrs, err := readAttributeChain(attrRecords, valuesBuf, nameTable, int(rec.FirstAttributeIndex), version)
			if err != nil {
				return nil, err
			}
			node.Attributes = attrs
		}
		nodes[i] = node
	}

	// Link children to parents; parent_index == -1 marks a region root.
	var regionIDs []string
	regionByID := make(map[string]*lslib.Region)
	for i, rec := range nodeRecords {
		if rec.ParentIndex < 0 {
			n := nodes[i]
			region, ok := regionByID[n.ID]
			if !ok {
				region = &lslib.Region{ID: n.ID}
				regionByID[n.ID] = region
				regionIDs = append(regionIDs, n.ID)
			}
			region.Nodes = append(region.Nodes, n)
			continue
		}
		if int(rec.ParentIndex) >= len(nodes) {
			return nil, errInvalidRelocation("node parent index out of range")
		}
		parent := nodes[rec.ParentIndex]
		parent.Children = append(parent.Children, nodes[i])
	}
	for _, id := range regionIDs {
		doc.Regions = append(doc.Regions, regionByID[id])
	}
	return doc, nil
}

func readAttributeChain(records []attributeRecord, valuesBuf []byte, nameTable *names, first int, version lslib.Version) ([]lslib.Attribute, error) {
	var out []lslib.Attribute
	idx := first
	seen := make(map[int]bool)
	for idx >= 0 {
		if idx >= len(records) {
			return nil, errInvalidRelocation("attribute index out of range")
		}
		if seen[idx] {
			return nil, errInvalidRelocation("cyclic attribute chain")
		}
		seen[idx] = true
		rec := records[idx]
		name, ok := nameTable.get(rec.NameOuter, rec.NameInner)
		if !ok {
			return nil, errInvalidRelocation("attribute name reference out of range")
		}
		typeID, length := unpackTypeInfo(rec.TypeInfo)
		if !attribute.IsValid(typeID) {
			return nil, errUnknownTypeID(typeID)
		}
		t := attribute.Type(typeID)
		start := int(rec.Offset)
		end := start + int(length)
		if start < 0 || end > len(valuesBuf) || start > end {
			return nil, errMalformedValue("attribute value offset/length out of range")
		}
		payload := valuesBuf[start:end]
		if t == attribute.GUID && version.BswapGUIDs() {
			payload = swapGUIDPayload(payload)
		}
		val, err := attribute.Decode(t, payload)
		if err != nil {
			return nil, lslib.Wrap(lslib.KindMalformedValue, err)
		}
		out = append(out, lslib.Attribute{Name: name, Type: t, Value: val})
		idx = int(rec.NextIndex)
	}
	return out, nil
}

func swapGUIDPayload(b []byte) []byte {
	if len(b) != 16 {
		return b
	}
	var raw [16]byte
	copy(raw[:], b)
	attribute.SwapGUIDBytes(&raw)
	return raw[:]
}

// Write serializes doc into LSF bytes at MaxVersion.
func Write(doc *lslib.Document) ([]byte, error) {
	nb := newNameBuilder()
	var nodeList []*lslib.Node
	var parentIndex []int32

	var walk func(n *lslib.Node, parent int32)
	walk = func(n *lslib.Node, parent int32) {
		nb.add(n.ID)
		if n.Key != nil {
			nb.add(*n.Key)
		}
		for _, a := range n.Attributes {
			nb.add(a.Name)
		}
		myIndex := int32(len(nodeList))
		nodeList = append(nodeList, n)
		parentIndex = append(parentIndex, parent)
		for _, c := range n.Children {
			walk(c, myIndex)
		}
	}
	for _, region := range doc.Regions {
		for _, n := range region.Nodes {
			walk(n, -1)
		}
	}

	nameTable, refs := nb.build()

	valuesBuf := binstream.NewWriter()
	var attrRecords []attributeRecord
	nodeRecords := make([]nodeRecord, len(nodeList))
	keyRefs := make([]*[2]uint32, len(nodeList))

	for i, n := range nodeList {
		ref := refs[n.ID]
		firstAttr := int32(-1)
		var prevAttrIdx = -1
		for _, a := range n.Attributes {
			payload, err := attribute.Encode(a.Type, a.Value)
			if err != nil {
				return nil, lslib.Wrap(lslib.KindWriteError, err)
			}
			if a.Type == attribute.GUID && doc.Version.BswapGUIDs() {
				payload = swapGUIDPayload(payload)
			}
			offset := uint32(valuesBuf.Len())
			valuesBuf.WriteBytes(payload)
			attrRef := refs[a.Name]
			rec := attributeRecord{
				NameOuter: attrRef[0],
				NameInner: attrRef[1],
				TypeInfo:  packTypeInfo(uint8(a.Type), uint32(len(payload))),
				Offset:    offset,
				NextIndex: -1,
			}
			idx := len(attrRecords)
			attrRecords = append(attrRecords, rec)
			if firstAttr < 0 {
				firstAttr = int32(idx)
			}
			if prevAttrIdx >= 0 {
				attrRecords[prevAttrIdx].NextIndex = int32(idx)
			}
			prevAttrIdx = idx
		}
		nodeRecords[i] = nodeRecord{
			NameOuter:           ref[0],
			NameInner:           ref[1],
			FirstAttributeIndex: firstAttr,
			ParentIndex:         parentIndex[i],
		}
		if n.Key != nil {
			keyRef := refs[*n.Key]
			keyRefs[i] = &keyRef
		}
	}

	namesRaw := writeNames(nameTable)
	nodesRaw := writeNodeRecords(nodeRecords)
	attrsRaw := writeAttributeRecords(attrRecords)
	valuesRaw := valuesBuf.Bytes()

	hasKeys := uint32(0)
	var keysRaw []byte
	if doc.Version.KeysAdjacency() {
		hasKeys = 1
		keysRaw = writeKeys(keyRefs)
	}

	namesComp := compressSection(namesRaw)
	nodesComp := compressSection(nodesRaw)
	attrsComp := compressSection(attrsRaw)
	valuesComp := compressSection(valuesRaw)
	var keysComp []byte
	if hasKeys != 0 {
		keysComp = compressSection(keysRaw)
	}

	h := header{
		Version:       MaxVersion,
		EngineVersion: packEngineVersion(doc.Version.Major, doc.Version.Minor, doc.Version.Revision, doc.Version.Build),

		NamesSize: uint32(len(namesRaw)), NamesCompressedSize: uint32(len(namesComp)),
		NodesSize: uint32(len(nodesRaw)), NodesCompressedSize: uint32(len(nodesComp)),
		AttributesSize: uint32(len(attrsRaw)), AttributesCompressedSize: uint32(len(attrsComp)),
		ValuesSize: uint32(len(valuesRaw)), ValuesCompressedSize: uint32(len(valuesComp)),
		Flags:            FlagZlibCompressed,
		HasKeysAdjacency: hasKeys,
		KeysSize:         uint32(len(keysRaw)), KeysCompressedSize: uint32(len(keysComp)),
	}

	w := binstream.NewWriter()
	writeHeader(w, h)
	w.WriteBytes(namesComp)
	w.WriteBytes(nodesComp)
	w.WriteBytes(attrsComp)
	w.WriteBytes(valuesComp)
	if hasKeys != 0 {
		w.WriteBytes(keysComp)
	}
	return w.Bytes(), nil
}

