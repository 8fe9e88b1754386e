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

import "fmt"

// ErrorKind is the closed taxonomy of failures the format engine can
// report (spec §7).
type ErrorKind int

const (
	// KindIO wraps an underlying OS/file error.
	KindIO ErrorKind = iota
	// KindInvalidMagic indicates a container's magic signature did not match.
	KindInvalidMagic
	// KindUnsupportedVersion indicates a recognized container with a
	// version outside the supported range.
	KindUnsupportedVersion
	// KindUnknownTypeID indicates a binary type byte outside the
	// attribute type enumeration.
	KindUnknownTypeID
	// KindLengthMismatch indicates a declared length and an actual
	// payload length disagree.
	KindLengthMismatch
	// KindDecompressionError indicates a codec failed to decompress a
	// stream, or the stream used an unsupported codec variant.
	KindDecompressionError
	// KindInvalidRelocation indicates a GR2 relocation or LSPK table
	// entry pointed outside its target's bounds.
	KindInvalidRelocation
	// KindMalformedValue indicates a text or JSON value could not be
	// parsed into its declared attribute type.
	KindMalformedValue
	// KindWriteError indicates a writer failed to serialize a document.
	KindWriteError
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidMagic:
		return "invalid magic"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindUnknownTypeID:
		return "unknown type id"
	case KindLengthMismatch:
		return "length mismatch"
	case KindDecompressionError:
		return "decompression error"
	case KindInvalidRelocation:
		return "invalid relocation"
	case KindMalformedValue:
		return "malformed value"
	case KindWriteError:
		return "write error"
	default:
		return "unknown error"
	}
}

// Error is the single error type returned by every package in the
// module. It carries enough context (kind, path, byte offset, detail)
// for a caller to present a useful message without re-deriving it from
// a bare error string.
type Error struct {
	Kind   ErrorKind
	Path   string
	Offset int64
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (file %q)", e.Path)
	}
	if e.Offset != 0 {
		msg += fmt.Sprintf(" (at byte %d)", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError constructs an *Error with the given kind and detail message.
func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap constructs an *Error of the given kind wrapping err. A nil err
// yields nil, and an err that is already an *Error is returned
// unchanged, keeping its own kind.
func Wrap(kind ErrorKind, err error) *Error {
	if err == nil {
		return nil
	}
	if le, ok := err.(*Error); ok {
		return le
	}
	return &Error{Kind: kind, Err: err}
}

// WithPath returns a copy of e with Path set, for errors surfaced by
// batch operations that need to attribute a failure to a specific file.
func (e *Error) WithPath(path string) *Error {
	cp := *e
	cp.Path = path
	return &cp
}

// WithOffset returns a copy of e with Offset set.
func (e *Error) WithOffset(offset int64) *Error {
	cp := *e
	cp.Offset = offset
	return &cp
}
