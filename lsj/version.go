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

package lsj

import (
	"fmt"
	"strconv"
	"strings"

	lslib "lslib.dev/go/lslib"
)

// formatVersionString renders v as the dotted "major.minor.revision.build"
// string LSJ uses for its header.version field.
func formatVersionString(v lslib.Version) string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Revision, v.Build)
}

// parseVersionString is the inverse of formatVersionString. An empty
// string (a region-less document with no header, or a minimal test
// fixture) parses as the zero Version.
func parseVersionString(s string) (lslib.Version, error) {
	if s == "" {
		return lslib.Version{}, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return lslib.Version{}, lslib.NewError(lslib.KindMalformedValue,
			fmt.Sprintf("version string %q must have 4 dot-separated parts", s))
	}
	var nums [4]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return lslib.Version{}, lslib.NewError(lslib.KindMalformedValue,
				fmt.Sprintf("version string %q: invalid component %q", s, p))
		}
		nums[i] = uint32(n)
	}
	return lslib.Version{Major: nums[0], Minor: nums[1], Revision: nums[2], Build: nums[3]}, nil
}
