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

package lsx

import (
	"encoding/xml"
	"fmt"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/attribute"
)

type xmlSave struct {
	XMLName xml.Name    `xml:"save"`
	Version xmlVersion  `xml:"version"`
	Regions []xmlRegion `xml:"region"`
}

type xmlVersion struct {
	Major    uint32 `xml:"major,attr"`
	Minor    uint32 `xml:"minor,attr"`
	Revision uint32 `xml:"revision,attr"`
	Build    uint32 `xml:"build,attr"`
}

type xmlRegion struct {
	ID    string    `xml:"id,attr"`
	Nodes []xmlNode `xml:"node"`
}

type xmlNode struct {
	ID         string         `xml:"id,attr"`
	Key        *string        `xml:"key,attr"`
	Attributes []xmlAttribute `xml:"attribute"`
	Children   struct {
		Nodes []xmlNode `xml:"node"`
	} `xml:"children"`
}

type xmlAttribute struct {
	ID        string        `xml:"id,attr"`
	Type      string        `xml:"type,attr"`
	Value     *string       `xml:"value,attr"`
	Handle    *string       `xml:"handle,attr"`
	Version   *uint16       `xml:"version,attr"`
	Arguments []xmlArgument `xml:"arguments>argument"`
}

// xmlArgument is one substitution argument of a TranslatedFSString
// attribute, nested inside an <arguments> wrapper.
type xmlArgument struct {
	Key     string  `xml:"key,attr"`
	Handle  string  `xml:"handle,attr"`
	Value   *string `xml:"value,attr"`
	Version *uint16 `xml:"version,attr"`
}

// Read parses LSX XML bytes (with or without a UTF-8 BOM) into a
// lslib.Document.
func Read(data []byte) (*lslib.Document, error) {
	data = stripBOM(data)
	var save xmlSave
	if err := xml.Unmarshal(data, &save); err != nil {
		return nil, lslib.Wrap(lslib.KindMalformedValue, err)
	}

	doc := &lslib.Document{Version: lslib.Version{
		Major: save.Version.Major, Minor: save.Version.Minor,
		Revision: save.Version.Revision, Build: save.Version.Build,
	}}
	for _, r := range save.Regions {
		region := &lslib.Region{ID: r.ID}
		for _, n := range r.Nodes {
			node, err := convertNode(n)
			if err != nil {
				return nil, err
			}
			region.Nodes = append(region.Nodes, node)
		}
		doc.Regions = append(doc.Regions, region)
	}
	return doc, nil
}

func convertNode(n xmlNode) (*lslib.Node, error) {
	node := &lslib.Node{ID: n.ID, Key: n.Key}
	for _, a := range n.Attributes {
		attr, err := convertAttribute(a)
		if err != nil {
			return nil, err
		}
		node.Attributes = append(node.Attributes, attr)
	}
	for _, c := range n.Children.Nodes {
		child, err := convertNode(c)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func convertAttribute(a xmlAttribute) (lslib.Attribute, error) {
	t, ok := attribute.Lookup(a.Type)
	if !ok {
		return lslib.Attribute{}, lslib.NewError(lslib.KindUnknownTypeID,
			fmt.Sprintf("unrecognized attribute type name %q", a.Type))
	}

	if a.Handle != nil {
		ts := attribute.TranslatedStringValue{Handle: *a.Handle}
		if a.Value != nil {
			ts.HasValue = true
			ts.Value = *a.Value
		}
		if a.Version != nil {
			ts.HasVersion = true
			ts.Version = *a.Version
		}
		if t == attribute.TranslatedFSString {
			fs := attribute.TranslatedFSStringValue{
				Handle:     ts.Handle,
				HasValue:   ts.HasValue,
				Value:      ts.Value,
				HasVersion: ts.HasVersion,
				Version:    ts.Version,
			}
			for _, arg := range a.Arguments {
				av := attribute.TranslatedStringValue{Handle: arg.Handle}
				if arg.Value != nil {
					av.HasValue = true
					av.Value = *arg.Value
				}
				if arg.Version != nil {
					av.HasVersion = true
					av.Version = *arg.Version
				}
				fs.Arguments = append(fs.Arguments, attribute.TranslatedFSArgument{Key: arg.Key, Value: av})
			}
			return lslib.Attribute{Name: a.ID, Type: t, Value: fs}, nil
		}
		return lslib.Attribute{Name: a.ID, Type: t, Value: ts}, nil
	}

	text := ""
	if a.Value != nil {
		text = *a.Value
	}
	val, err := attribute.Parse(t, text)
	if err != nil {
		return lslib.Attribute{}, lslib.Wrap(lslib.KindMalformedValue, err)
	}
	return lslib.Attribute{Name: a.ID, Type: t, Value: val}, nil
}

func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
