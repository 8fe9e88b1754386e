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

package loca

import (
	"fmt"
	"strconv"
	"strings"

	lslib "lslib.dev/go/lslib"
)

// ReadXML parses the LOCA XML form:
//
//	<contentList>
//	  <content contentuid="Key" version="1">text</content>
//	  ...
//	</contentList>
//
// It uses a narrow hand-rolled scanner rather than encoding/xml because
// the format is a flat list of one element kind with no nesting, and
// the text body needs only the two-entity escaping the writer applies
// (see escapeXML); a general-purpose decoder buys nothing here over
// the lsx package's richer XML needs.
func ReadXML(data []byte) (*Table, error) {
	s := string(data)
	var entries []Entry
	for {
		start := strings.Index(s, "<content ")
		if start < 0 {
			break
		}
		s = s[start:]
		tagEnd := strings.Index(s, ">")
		if tagEnd < 0 {
			return nil, lslib.NewError(lslib.KindMalformedValue, "unterminated <content> tag")
		}
		tag := s[:tagEnd]
		uid, ok := attrValue(tag, "contentuid")
		if !ok {
			return nil, lslib.NewError(lslib.KindMalformedValue, "content element missing contentuid")
		}
		verStr, _ := attrValue(tag, "version")
		version := uint64(0)
		if verStr != "" {
			v, err := strconv.ParseUint(verStr, 10, 16)
			if err != nil {
				return nil, lslib.NewError(lslib.KindMalformedValue, fmt.Sprintf("invalid version %q", verStr))
			}
			version = v
		}
		rest := s[tagEnd+1:]
		if strings.HasSuffix(tag, "/") {
			entries = append(entries, Entry{Key: uid, Version: uint16(version)})
			s = rest
			continue
		}
		closeIdx := strings.Index(rest, "</content>")
		if closeIdx < 0 {
			return nil, lslib.NewError(lslib.KindMalformedValue, "missing </content>")
		}
		text := unescapeXML(rest[:closeIdx])
		entries = append(entries, Entry{Key: uid, Version: uint16(version), Text: text})
		s = rest[closeIdx+len("</content>"):]
	}
	return &Table{Entries: entries}, nil
}

// WriteXML renders t in the LOCA XML form.
func WriteXML(t *Table) []byte {
	var sb strings.Builder
	sb.WriteString("<contentList>\n")
	for _, e := range t.Entries {
		sb.WriteString("  <content contentuid=\"")
		sb.WriteString(escapeXML(e.Key))
		sb.WriteString("\" version=\"")
		sb.WriteString(strconv.FormatUint(uint64(e.Version), 10))
		// Empty entries use the self-closing form.
		if e.Text == "" {
			sb.WriteString("\"/>\n")
			continue
		}
		sb.WriteString("\">")
		sb.WriteString(escapeXML(e.Text))
		sb.WriteString("</content>\n")
	}
	sb.WriteString("</contentList>\n")
	return []byte(sb.String())
}

func attrValue(tag, name string) (string, bool) {
	needle := name + "=\""
	i := strings.Index(tag, needle)
	if i < 0 {
		return "", false
	}
	rest := tag[i+len(needle):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return "", false
	}
	return unescapeXML(rest[:j]), true
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return s
}

func unescapeXML(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
