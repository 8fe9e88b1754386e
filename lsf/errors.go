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
	"fmt"

	lslib "lslib.dev/go/lslib"
)

func errLengthMismatch(section string, got, unit int) error {
	return lslib.NewError(lslib.KindLengthMismatch,
		fmt.Sprintf("%s section length %d is not a multiple of %d", section, got, unit))
}

func errInvalidRelocation(detail string) error {
	return lslib.NewError(lslib.KindInvalidRelocation, detail)
}

func errMalformedValue(detail string) error {
	return lslib.NewError(lslib.KindMalformedValue, detail)
}

func errUnknownTypeID(id uint8) error {
	return lslib.NewError(lslib.KindUnknownTypeID, fmt.Sprintf("attribute type id %d", id))
}

func errInvalidMagic(detail string) error {
	return lslib.NewError(lslib.KindInvalidMagic, detail)
}

func errUnsupportedVersion(detail string) error {
	return lslib.NewError(lslib.KindUnsupportedVersion, detail)
}
