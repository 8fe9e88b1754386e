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
	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/attribute"
	"lslib.dev/go/lslib/lsx"
)

// ParseMetaLSX extracts the ModuleInfo fields an info.json sidecar
// needs from a mod's meta.lsx document. The node walk mirrors the
// document shape BG3 mods ship: a Config region whose root node carries
// a ModuleInfo child with Name/Folder/UUID/Author/Description/Version64
// attributes.
func ParseMetaLSX(data []byte) (ModMeta, error) {
	var meta ModMeta
	doc, err := lsx.Read(data)
	if err != nil {
		return meta, err
	}
	info := findNode(doc, "ModuleInfo")
	if info == nil {
		return meta, lslib.NewError(lslib.KindMalformedValue, "meta.lsx has no ModuleInfo node")
	}
	meta.Name = stringAttr(info, "Name")
	meta.Folder = stringAttr(info, "Folder")
	meta.UUID = stringAttr(info, "UUID")
	meta.Author = stringAttr(info, "Author")
	meta.Description = stringAttr(info, "Description")
	if a, ok := info.Attr("Version64"); ok {
		if iv, ok := a.Value.(attribute.Int); ok {
			meta.Version64 = uint64(iv.Int64Value())
		}
	}
	return meta, nil
}

func findNode(doc *lslib.Document, id string) *lslib.Node {
	var walk func(n *lslib.Node) *lslib.Node
	walk = func(n *lslib.Node) *lslib.Node {
		if n.ID == id {
			return n
		}
		for _, c := range n.Children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	for _, region := range doc.Regions {
		for _, n := range region.Nodes {
			if found := walk(n); found != nil {
				return found
			}
		}
	}
	return nil
}

func stringAttr(n *lslib.Node, name string) string {
	a, ok := n.Attr(name)
	if !ok {
		return ""
	}
	switch v := a.Value.(type) {
	case attribute.Str:
		return v.Value
	case attribute.GUIDValue:
		return string(v)
	default:
		return ""
	}
}
