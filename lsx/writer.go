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

// Package lsx implements the LSX XML document format: the same
// region/node/attribute tree as lsf, serialized as indented XML with a
// UTF-8 BOM and CRLF line endings.
//
// Parsing uses encoding/xml's decoder; serialization is a hand-rolled
// byte-buffer writer because the format's exact quirks (tab
// indentation, space before self-closing tags, the lslib_meta flag
// string) are part of the on-disk contract and no general-purpose XML
// encoder exposes that level of control.
package lsx

import (
	"fmt"
	"strconv"
	"strings"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/attribute"
)

// Write renders doc as LSX XML bytes: UTF-8 BOM, XML declaration, tab
// indentation, CRLF line endings, and a trailing space before every
// self-closing tag.
func Write(doc *lslib.Document) ([]byte, error) {
	var b strings.Builder
	b.WriteString("﻿")
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString("<save>\n")

	meta := "v1"
	if doc.Version.BswapGUIDs() {
		meta += ",bswap_guids"
	}
	if doc.Version.KeysAdjacency() {
		meta += ",lsf_keys_adjacency"
	}
	b.WriteString(fmt.Sprintf(
		"\t<version major=\"%d\" minor=\"%d\" revision=\"%d\" build=\"%d\" lslib_meta=\"%s\" />\n",
		doc.Version.Major, doc.Version.Minor, doc.Version.Revision, doc.Version.Build, meta))

	for _, region := range doc.Regions {
		b.WriteString(fmt.Sprintf("\t<region id=\"%s\">\n", escapeAttr(region.ID)))
		for _, n := range region.Nodes {
			if err := writeNode(&b, n, 2); err != nil {
				return nil, lslib.Wrap(lslib.KindWriteError, err)
			}
		}
		b.WriteString("\t</region>\n")
	}

	b.WriteString("</save>")

	out := strings.ReplaceAll(b.String(), "\n", "\r\n")
	return []byte(out), nil
}

func writeNode(b *strings.Builder, n *lslib.Node, depth int) error {
	indent := strings.Repeat("\t", depth)
	hasAttrs := len(n.Attributes) > 0
	hasChildren := len(n.Children) > 0

	open := indent + "<node id=\"" + escapeAttr(n.ID) + "\""
	if n.Key != nil {
		open += " key=\"" + escapeAttr(*n.Key) + "\""
	}
	if !hasAttrs && !hasChildren {
		b.WriteString(open + " />\n")
		return nil
	}
	b.WriteString(open + ">\n")

	attrIndent := strings.Repeat("\t", depth+1)
	for _, a := range n.Attributes {
		if err := writeAttribute(b, a, depth+1); err != nil {
			return err
		}
	}

	if hasChildren {
		b.WriteString(attrIndent + "<children>\n")
		for _, c := range n.Children {
			if err := writeNode(b, c, depth+2); err != nil {
				return err
			}
		}
		b.WriteString(attrIndent + "</children>\n")
	}

	b.WriteString(indent + "</node>\n")
	return nil
}

// writeAttribute emits one <attribute> element. Most attributes are a
// single self-closing line; a TranslatedFSString with arguments opens
// the element and nests its <arguments> list inside.
func writeAttribute(b *strings.Builder, a lslib.Attribute, depth int) error {
	indent := strings.Repeat("\t", depth)
	if fs, ok := a.Value.(attribute.TranslatedFSStringValue); ok && len(fs.Arguments) > 0 {
		b.WriteString(indent + "<attribute id=\"" + escapeAttr(a.Name) + "\" type=\"" + attribute.Name(a.Type) + "\"" +
			translatedAttrs(fs.Handle, fs.HasValue, fs.Value, fs.HasVersion, fs.Version) + ">\n")
		b.WriteString(indent + "\t<arguments>\n")
		for _, arg := range fs.Arguments {
			b.WriteString(indent + "\t\t<argument key=\"" + escapeAttr(arg.Key) + "\"" +
				translatedAttrs(arg.Value.Handle, arg.Value.HasValue, arg.Value.Value, arg.Value.HasVersion, arg.Value.Version) + " />\n")
		}
		b.WriteString(indent + "\t</arguments>\n")
		b.WriteString(indent + "</attribute>\n")
		return nil
	}
	line, err := renderAttribute(a)
	if err != nil {
		return err
	}
	b.WriteString(indent + line + "\n")
	return nil
}

func renderAttribute(a lslib.Attribute) (string, error) {
	open := "<attribute id=\"" + escapeAttr(a.Name) + "\" type=\"" + attribute.Name(a.Type) + "\""
	switch v := a.Value.(type) {
	case attribute.TranslatedStringValue:
		open += translatedAttrs(v.Handle, v.HasValue, v.Value, v.HasVersion, v.Version)
	case attribute.TranslatedFSStringValue:
		open += translatedAttrs(v.Handle, v.HasValue, v.Value, v.HasVersion, v.Version)
	default:
		text, err := attribute.Stringify(a.Type, a.Value)
		if err != nil {
			return "", err
		}
		open += " value=\"" + escapeAttr(text) + "\""
	}
	return open + " />", nil
}

// translatedAttrs renders the handle/value/version XML attributes a
// translated string carries, on both <attribute> and <argument>
// elements.
func translatedAttrs(handle string, hasValue bool, value string, hasVersion bool, version uint16) string {
	s := " handle=\"" + escapeAttr(handle) + "\""
	if hasValue {
		s += " value=\"" + escapeAttr(value) + "\""
	}
	if hasVersion {
		s += " version=\"" + strconv.FormatUint(uint64(version), 10) + "\""
	}
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
