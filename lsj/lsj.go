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

// Package lsj implements the LSJ JSON encoding of the LSF/LSX document
// tree. Its one structural wrinkle: the region *is* the root node
// rather than wrapping it, and a node's "key" attribute is lifted out
// into a sibling field rather than left in the attribute map.
//
// Attribute and child declaration order is preserved using
// internal/ojson rather than a native Go map, whose iteration order is
// undefined.
package lsj

import (
	"encoding/json"
	"fmt"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/attribute"
	"lslib.dev/go/lslib/internal/ojson"
)

// keyField is the JSON field name a node's Key is lifted into, sibling
// to its attribute map — never left inside the attribute set itself.
const keyField = "key"

// typeField and valueField name the two JSON keys every non-translated
// attribute object carries.
const (
	typeField  = "type"
	valueField = "value"
)

type jsonDoc struct {
	Save struct {
		Header struct {
			Version string `json:"version"`
		} `json:"header"`
		Regions *ojson.Object `json:"regions"`
	} `json:"save"`
}

// Read parses LSJ bytes into a lslib.Document.
func Read(data []byte) (*lslib.Document, error) {
	var jd jsonDoc
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, lslib.Wrap(lslib.KindMalformedValue, err)
	}
	version, err := parseVersionString(jd.Save.Header.Version)
	if err != nil {
		return nil, err
	}
	doc := &lslib.Document{Version: version}
	if jd.Save.Regions == nil {
		return doc, nil
	}
	for _, regionID := range jd.Save.Regions.Keys() {
		raw, _ := jd.Save.Regions.Get(regionID)
		region := &lslib.Region{ID: regionID}
		var probe ojson.Object
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("region %q: %w", regionID, lslib.Wrap(lslib.KindMalformedValue, err))
		}
		if probe.Len() > 0 {
			node, err := decodeNodeObject(raw, regionID)
			if err != nil {
				return nil, fmt.Errorf("region %q: %w", regionID, err)
			}
			region.Nodes = []*lslib.Node{node}
		}
		// An empty "{}" region object has no root node to unwrap — it
		// represents a region with zero nodes, not a node with no
		// attributes and no key.
		doc.Regions = append(doc.Regions, region)
	}
	return doc, nil
}

// decodeNodeObject parses one JSON object (a region's content, or one
// element of a children array) into a Node with the given id. A "key"
// field is lifted back into Node.Key; every other field is either an
// attribute object ({"type":..,"value":..}) or a children-group array.
func decodeNodeObject(raw json.RawMessage, id string) (*lslib.Node, error) {
	var obj ojson.Object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, lslib.Wrap(lslib.KindMalformedValue, err)
	}
	node := &lslib.Node{ID: id}
	for _, field := range obj.Keys() {
		fieldRaw, _ := obj.Get(field)
		if field == keyField {
			var k string
			if err := json.Unmarshal(fieldRaw, &k); err != nil {
				return nil, lslib.Wrap(lslib.KindMalformedValue, err)
			}
			node.Key = &k
			continue
		}

		// Disambiguate an attribute object ({"type":...}) from a
		// children-group array ([{...}, {...}]) by sniffing the raw
		// JSON's first non-whitespace byte.
		if isJSONArray(fieldRaw) {
			var group []json.RawMessage
			if err := json.Unmarshal(fieldRaw, &group); err != nil {
				return nil, lslib.Wrap(lslib.KindMalformedValue, err)
			}
			for _, childRaw := range group {
				child, err := decodeNodeObject(childRaw, field)
				if err != nil {
					return nil, err
				}
				node.Children = append(node.Children, child)
			}
			continue
		}

		attr, err := decodeAttributeObject(field, fieldRaw)
		if err != nil {
			return nil, err
		}
		node.Attributes = append(node.Attributes, attr)
	}
	return node, nil
}

func decodeAttributeObject(name string, raw json.RawMessage) (lslib.Attribute, error) {
	var shape struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return lslib.Attribute{}, lslib.Wrap(lslib.KindMalformedValue, err)
	}
	t, ok := attribute.Lookup(shape.Type)
	if !ok {
		return lslib.Attribute{}, lslib.NewError(lslib.KindUnknownTypeID,
			fmt.Sprintf("attribute %q: unrecognized type name %q", name, shape.Type))
	}

	if t == attribute.TranslatedString || t == attribute.TranslatedFSString {
		val, err := attribute.UnmarshalJSONValue(t, raw)
		if err != nil {
			return lslib.Attribute{}, lslib.Wrap(lslib.KindMalformedValue, err)
		}
		return lslib.Attribute{Name: name, Type: t, Value: val}, nil
	}

	var withValue struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &withValue); err != nil {
		return lslib.Attribute{}, lslib.Wrap(lslib.KindMalformedValue, err)
	}
	val, err := attribute.UnmarshalJSONValue(t, withValue.Value)
	if err != nil {
		return lslib.Attribute{}, lslib.Wrap(lslib.KindMalformedValue,
			fmt.Errorf("attribute %q: %w", name, err))
	}
	return lslib.Attribute{Name: name, Type: t, Value: val}, nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// Write renders doc as LSJ JSON bytes. Each region's first node is
// collapsed into the region's own JSON object (the node's own id is
// discarded as redundant); a region with more than one top-level node
// is not representable in LSJ and Write uses the first node.
func Write(doc *lslib.Document) ([]byte, error) {
	out := ojson.New()
	save := ojson.New()

	header := ojson.New()
	if err := header.SetValue("version", formatVersionString(doc.Version)); err != nil {
		return nil, lslib.Wrap(lslib.KindWriteError, err)
	}
	if err := save.SetValue("header", header); err != nil {
		return nil, lslib.Wrap(lslib.KindWriteError, err)
	}

	regions := ojson.New()
	for _, region := range doc.Regions {
		if len(region.Nodes) == 0 {
			regions.Set(region.ID, json.RawMessage("{}"))
			continue
		}
		obj, err := encodeNodeObject(region.Nodes[0])
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", region.ID, err)
		}
		raw, err := json.Marshal(obj)
		if err != nil {
			return nil, lslib.Wrap(lslib.KindWriteError, err)
		}
		regions.Set(region.ID, raw)
	}
	regionsRaw, err := json.Marshal(regions)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindWriteError, err)
	}
	save.Set("regions", regionsRaw)

	if err := out.SetValue("save", save); err != nil {
		return nil, lslib.Wrap(lslib.KindWriteError, err)
	}
	return json.Marshal(out)
}

func encodeNodeObject(n *lslib.Node) (*ojson.Object, error) {
	obj := ojson.New()
	if n.Key != nil {
		if err := obj.SetValue(keyField, *n.Key); err != nil {
			return nil, err
		}
	}
	for _, a := range n.Attributes {
		raw, err := encodeAttributeObject(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		obj.Set(a.Name, raw)
	}
	childOrder, groups := groupedChildren(n)
	for _, childID := range childOrder {
		var arr []json.RawMessage
		for _, c := range groups[childID] {
			childObj, err := encodeNodeObject(c)
			if err != nil {
				return nil, err
			}
			raw, err := json.Marshal(childObj)
			if err != nil {
				return nil, lslib.Wrap(lslib.KindWriteError, err)
			}
			arr = append(arr, raw)
		}
		raw, err := json.Marshal(arr)
		if err != nil {
			return nil, lslib.Wrap(lslib.KindWriteError, err)
		}
		obj.Set(childID, raw)
	}
	return obj, nil
}

func groupedChildren(n *lslib.Node) ([]string, map[string][]*lslib.Node) {
	return n.ChildrenByID()
}

func encodeAttributeObject(a lslib.Attribute) (json.RawMessage, error) {
	shape := ojson.New()
	if err := shape.SetValue(typeField, attribute.Name(a.Type)); err != nil {
		return nil, err
	}

	switch val := a.Value.(type) {
	case attribute.TranslatedStringValue, attribute.TranslatedFSStringValue:
		jv, err := attribute.MarshalJSONValue(a.Type, val)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(jv)
		if err != nil {
			return nil, err
		}
		// jv already carries handle/value/version/arguments fields as a
		// flat object; merge them alongside "type" rather than nesting
		// under "value".
		var merged ojson.Object
		if err := json.Unmarshal(b, &merged); err != nil {
			return nil, err
		}
		for _, k := range merged.Keys() {
			raw, _ := merged.Get(k)
			shape.Set(k, raw)
		}
	default:
		jv, err := attribute.MarshalJSONValue(a.Type, a.Value)
		if err != nil {
			return nil, err
		}
		if err := shape.SetValue(valueField, jv); err != nil {
			return nil, err
		}
	}

	return json.Marshal(shape)
}
