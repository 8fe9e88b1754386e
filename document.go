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

package lslib

import "lslib.dev/go/lslib/attribute"

// Version is the four-part engine version tuple carried by every
// document (LSX <version major= minor= revision= build=>, LSJ's dotted
// "major.minor.revision.build" string, and LSF's packed 64-bit engine
// version word).
type Version struct {
	Major    uint32
	Minor    uint32
	Revision uint32
	Build    uint32
}

// BswapGUIDs reports whether UUID attributes in this version's LSF/LSX
// encoding are stored byte-swapped (Microsoft GUID convention).
func (v Version) BswapGUIDs() bool {
	return v.Major >= 4
}

// KeysAdjacency reports whether this version's LSF encoding carries the
// parallel keys section alongside the node table.
func (v Version) KeysAdjacency() bool {
	return v.Major >= 4
}

// Document is a forest of regions: the shared in-memory representation
// produced by the lsf, lsx, and lsj readers and consumed by their
// writers and by the convert package. The format engine never mutates a
// Document in place on behalf of a caller; conversions operate on a
// freshly built copy.
type Document struct {
	Version Version
	Regions []*Region
}

// Region is a named root of one or more nodes.
type Region struct {
	ID    string
	Nodes []*Node
}

// Node is a single tagged-tree node: an identifier, an optional key
// attribute used as the primary sort key for ordered collections, a
// set of named attributes in declaration order, and children grouped by
// child ID but stored here in overall declaration order (the grouping
// is a presentation detail applied by the lsj writer only).
type Node struct {
	ID         string
	Key        *string
	Attributes []Attribute
	Children   []*Node
}

// Attribute is one named, typed value on a Node. Attribute ordering
// within a Node is preserved across every conversion.
type Attribute struct {
	Name  string
	Type  attribute.Type
	Value attribute.Value
}

// ChildrenByID returns n's children grouped by ID, preserving the
// relative order of each group and of the groups themselves as they
// first appear — the shape the lsj writer needs for its
// "ChildId": [ ... ] arrays.
func (n *Node) ChildrenByID() (order []string, groups map[string][]*Node) {
	groups = make(map[string][]*Node)
	for _, c := range n.Children {
		if _, ok := groups[c.ID]; !ok {
			order = append(order, c.ID)
		}
		groups[c.ID] = append(groups[c.ID], c)
	}
	return order, groups
}

// Attr looks up an attribute by name, returning ok=false if absent.
func (n *Node) Attr(name string) (Attribute, bool) {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}
