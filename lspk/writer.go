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
	"crypto/md5"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/internal/binstream"
)

// SourceFile is one file to be packed, as produced by WalkDir or
// supplied directly by a caller that already has file contents in
// memory (e.g. a GUI staging area).
type SourceFile struct {
	Path string // internal archive path, forward-slash separated
	Data []byte
}

// WalkDir walks root producing ordered relative, forward-slash internal
// paths and their contents, the shape Write expects. Ordering is
// lexicographic by path, giving deterministic archive layout across
// runs on different filesystems.
func WalkDir(root string) ([]SourceFile, error) {
	var files []SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{Path: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return nil, lslib.Wrap(lslib.KindIO, err).WithPath(root)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// WriteOptions controls Write's codec choice and optional info.json
// sidecar emission.
type WriteOptions struct {
	Codec Codec // default CodecLZ4

	// GenerateInfoJSON, when true, additionally returns a sidecar
	// descriptor with the archive's MD5, filename, load priority, and
	// mod metadata.
	GenerateInfoJSON bool
	ModMeta          ModMeta
}

// ModMeta is the subset of a mod's meta.lsx ModuleInfo node that the
// info.json sidecar carries.
type ModMeta struct {
	Name         string
	Folder       string
	UUID         string
	Author       string
	Description  string
	Version64    uint64
	LoadPriority int
}

// infoJSON is the sidecar's serialized shape.
type infoJSON struct {
	MD5          string `json:"md5"`
	Filename     string `json:"filename"`
	LoadPriority int    `json:"loadPriority"`
	Name         string `json:"name"`
	Folder       string `json:"folder"`
	UUID         string `json:"uuid"`
	Author       string `json:"author,omitempty"`
	Description  string `json:"description,omitempty"`
	Version64    uint64 `json:"version64"`
}

// Write packs files into a single-part LSPK archive, returning the
// archive bytes and, if requested, the info.json sidecar bytes.
// Entry offsets are computed in one forward pass over the data region;
// only the header's footer offset is patched after the fact.
func Write(files []SourceFile, opts WriteOptions, progress lslib.ProgressFunc) (archive []byte, infoJSONBytes []byte, err error) {
	codec := opts.Codec
	if codec == CodecNone {
		codec = CodecLZ4
	}

	w := binstream.NewWriter()
	writeHeader(w, 0) // footer offset patched below

	entries := make([]Entry, len(files))
	total := len(files)
	for i, f := range files {
		progress.Report(lslib.Progress{Phase: lslib.PhaseWrite, Current: i + 1, Total: total, CurrentFile: f.Path})
		crc := crc32.ChecksumIEEE(f.Data)
		compressed, fileCodec, err := compressEntry(f.Data, codec)
		if err != nil {
			return nil, nil, lslib.Wrap(lslib.KindWriteError, err).WithPath(f.Path)
		}
		entries[i] = Entry{
			Path:             f.Path,
			Offset:           uint64(w.Len()),
			CompressedSize:   uint32(len(compressed)),
			DecompressedSize: uint32(len(f.Data)),
			Codec:            fileCodec,
			ArchivePart:      0,
			CRC32:            crc,
		}
		w.WriteBytes(compressed)
	}

	tableCompressed, tableRawSize, err := writeTable(entries)
	if err != nil {
		return nil, nil, lslib.Wrap(lslib.KindWriteError, err)
	}
	w.WriteBytes(tableCompressed)
	footerOffset := uint64(w.Len())
	w.U32(uint32(len(entries)))
	w.U32(uint32(len(tableCompressed)))
	w.U32(uint32(tableRawSize))

	out := w.Bytes()
	patchFooterOffset(out, footerOffset)

	if opts.GenerateInfoJSON {
		sum := md5.Sum(out)
		info := infoJSON{
			MD5:          fmt.Sprintf("%x", sum),
			Filename:     opts.ModMeta.Folder + ".pak",
			LoadPriority: opts.ModMeta.LoadPriority,
			Name:         opts.ModMeta.Name,
			Folder:       opts.ModMeta.Folder,
			UUID:         opts.ModMeta.UUID,
			Author:       opts.ModMeta.Author,
			Description:  opts.ModMeta.Description,
			Version64:    opts.ModMeta.Version64,
		}
		b, jerr := json.MarshalIndent(info, "", "  ")
		if jerr != nil {
			return nil, nil, lslib.Wrap(lslib.KindWriteError, jerr)
		}
		infoJSONBytes = b
	}

	return out, infoJSONBytes, nil
}

// compressEntry compresses data with codec, falling back to storing it
// uncompressed (CodecNone) if the chosen codec's compressor reports the
// input as incompressible (small or already-dense files).
func compressEntry(data []byte, codec Codec) ([]byte, Codec, error) {
	switch codec {
	case CodecLZ4:
		c, err := compressLZ4HC(data)
		if err == nil {
			return c, CodecLZ4, nil
		}
		return data, CodecNone, nil
	case CodecZlib:
		return compressZlib(data), CodecZlib, nil
	default:
		return data, CodecNone, nil
	}
}

func patchFooterOffset(out []byte, footerOffset uint64) {
	// FooterOffset sits immediately after the 4-byte magic and 4-byte
	// version field, per writeHeader's field order.
	const pos = 8
	for i := 0; i < 8; i++ {
		out[pos+i] = byte(footerOffset >> (8 * i))
	}
}

// WriteToFile is a convenience wrapper around Write that stages the
// archive to a temporary file and renames it into place on success, so
// a failed write never leaves a partial archive.
func WriteToFile(path string, files []SourceFile, opts WriteOptions, progress lslib.ProgressFunc) error {
	archive, info, err := Write(files, opts, progress)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, archive, 0o644); err != nil {
		return lslib.Wrap(lslib.KindIO, err).WithPath(path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return lslib.Wrap(lslib.KindIO, err).WithPath(path)
	}
	if info != nil {
		if err := os.WriteFile(strings.TrimSuffix(path, ".pak")+".pak.json", info, 0o644); err != nil {
			return lslib.Wrap(lslib.KindIO, err).WithPath(path)
		}
	}
	return nil
}
