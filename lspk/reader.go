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
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/internal/binstream"
)

// PartLoader loads the raw bytes of one archive part (0 = the primary
// .pak; N>0 = the sibling "<stem>_<N>.pak"). Open derives a
// filesystem-backed PartLoader automatically; tests and in-memory
// callers can supply their own.
type PartLoader func(part uint8) ([]byte, error)

// Reader holds a parsed file table for a (possibly multi-part) LSPK
// archive. The table is parsed once and then treated as immutable;
// ReadFile loads each archive part on first use and keeps it in a
// cache shared by later calls on the same Reader.
type Reader struct {
	Version int
	entries []Entry
	loadPart PartLoader
	partCache map[uint8][]byte
}

// Open parses path as the primary .pak of an LSPK archive, deriving
// sibling part paths ("<stem>_<N>.pak") from it on demand.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err).WithPath(path)
	}
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	loader := func(part uint8) ([]byte, error) {
		if part == 0 {
			return data, nil
		}
		partPath := filepath.Join(dir, fmt.Sprintf("%s_%d.pak", stem, part))
		b, err := os.ReadFile(partPath)
		if err != nil {
			return nil, lslib.Wrap(lslib.KindIO, err).WithPath(partPath)
		}
		return b, nil
	}
	return OpenReader(data, loader)
}

// OpenReader parses primary (the bytes of archive part 0) using loader
// to fetch any additional parts a file table entry references. This is
// the entry point for in-memory and test use.
func OpenReader(primary []byte, loader PartLoader) (*Reader, error) {
	r := binstream.NewReader(primary)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if int(h.FooterOffset) > len(primary) {
		return nil, lslib.NewError(lslib.KindInvalidMagic, "footer offset beyond end of file")
	}
	fr := binstream.NewReader(primary)
	fr.Seek(int(h.FooterOffset))
	numFiles, err := fr.U32()
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	tableSizeCompressed, err := fr.U32()
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	tableSizeRaw, err := fr.U32()
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}
	tableStart := int(h.FooterOffset) - int(tableSizeCompressed)
	if tableStart < 0 || tableStart+int(tableSizeCompressed) > len(primary) {
		return nil, lslib.NewError(lslib.KindInvalidMagic, "file table extends outside archive")
	}
	tableBytes, err := func() ([]byte, error) {
		tr := binstream.NewReader(primary)
		tr.Seek(tableStart)
		return tr.ReadBytes(int(tableSizeCompressed))
	}()
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err)
	}

	entries, err := readTable(tableBytes, int(tableSizeRaw))
	if err != nil {
		return nil, err
	}
	if len(entries) != int(numFiles) {
		return nil, lslib.NewError(lslib.KindLengthMismatch,
			fmt.Sprintf("footer declares %d files, table has %d", numFiles, len(entries)))
	}

	return &Reader{
		Version:   int(h.Version),
		entries:   entries,
		loadPart:  loader,
		partCache: make(map[uint8][]byte),
	}, nil
}

// List returns every internal path in the order declared in the file
// table.
func (r *Reader) List() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Path
	}
	return out
}

// Entries returns the parsed file table, for callers that need offsets
// or codec information (e.g. a "verify" tool checking the quantified
// invariant that every entry fits within its part file).
func (r *Reader) Entries() []Entry {
	return r.entries
}

func (r *Reader) entry(internalPath string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Path == internalPath {
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Reader) part(n uint8) ([]byte, error) {
	if b, ok := r.partCache[n]; ok {
		return b, nil
	}
	b, err := r.loadPart(n)
	if err != nil {
		return nil, err
	}
	r.partCache[n] = b
	return b, nil
}

// ReadFile locates internalPath in the file table, opens its archive
// part, seeks to its offset, and decompresses it per its codec. CRC32
// of the returned bytes is validated against the table entry.
func (r *Reader) ReadFile(internalPath string) ([]byte, error) {
	e, ok := r.entry(internalPath)
	if !ok {
		return nil, lslib.NewError(lslib.KindIO, fmt.Sprintf("no such file in archive: %q", internalPath)).WithPath(internalPath)
	}
	return r.readEntry(e)
}

func (r *Reader) readEntry(e Entry) ([]byte, error) {
	part, err := r.part(e.ArchivePart)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err).WithPath(e.Path)
	}
	if int(e.Offset)+int(e.CompressedSize) > len(part) {
		return nil, lslib.NewError(lslib.KindInvalidRelocation,
			fmt.Sprintf("entry %q offset+size exceeds part %d size", e.Path, e.ArchivePart)).WithPath(e.Path)
	}
	compressed := part[e.Offset : e.Offset+uint64(e.CompressedSize)]
	data, err := decompress(compressed, e.Codec, e.DecompressedSize)
	if err != nil {
		return nil, lslib.Wrap(lslib.KindDecompressionError, err).WithPath(e.Path)
	}
	if crc32.ChecksumIEEE(data) != e.CRC32 {
		return nil, lslib.NewError(lslib.KindLengthMismatch,
			fmt.Sprintf("CRC32 mismatch for %q", e.Path)).WithPath(e.Path)
	}
	return data, nil
}

// Outcome is one file's extraction result in a batch/streaming read:
// a corrupt entry fails only that file.
type Outcome struct {
	Path string
	Data []byte
	Err  error
}

// ExtractAll decompresses every file in the archive, reporting progress
// per file and isolating per-entry failures into the returned slice
// rather than aborting the whole extraction.
func (r *Reader) ExtractAll(progress lslib.ProgressFunc) []Outcome {
	out := make([]Outcome, len(r.entries))
	total := len(r.entries)
	for i, e := range r.entries {
		progress.Report(lslib.Progress{Phase: lslib.PhaseReadSource, Current: i + 1, Total: total, CurrentFile: e.Path})
		data, err := r.readEntry(e)
		out[i] = Outcome{Path: e.Path, Data: data, Err: err}
	}
	return out
}
