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

// Package batch fans independent per-file operations out across a
// bounded pool of worker goroutines. Work items never share state; the
// only synchronized resources are the results slice and the caller's
// progress callback, both guarded per spec §5. The results slice
// reflects completion order, not submission order.
package batch

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/lspk"
)

// Outcome records one work item's result: its input path and the error
// it produced, nil on success.
type Outcome struct {
	Path string
	Err  error
}

// Run applies op to every path on up to workers goroutines (the number
// of CPUs when workers <= 0). Each completion reports progress with the
// finished path; the callback may be invoked from any worker and must
// tolerate concurrent calls from the caller's other operations.
func Run(paths []string, workers int, op func(path string) error, progress lslib.ProgressFunc) []Outcome {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	tasks := make(chan string)
	var mu sync.Mutex
	results := make([]Outcome, 0, len(paths))
	done := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				err := op(path)
				mu.Lock()
				if lerr, ok := err.(*lslib.Error); ok && lerr.Path == "" {
					err = lerr.WithPath(path)
				}
				results = append(results, Outcome{Path: path, Err: err})
				done++
				progress.Report(lslib.Progress{Phase: lslib.PhaseWrite, Current: done, Total: len(paths), CurrentFile: path})
				mu.Unlock()
			}
		}()
	}
	for _, p := range paths {
		tasks <- p
	}
	close(tasks)
	wg.Wait()
	return results
}

// ExtractArchive extracts every file of an LSPK archive under destDir,
// one work item per archive entry. Per-entry failures are isolated; the
// rest of the archive proceeds.
func ExtractArchive(archivePath, destDir string, workers int, progress lslib.ProgressFunc) ([]Outcome, error) {
	r, err := lspk.Open(archivePath)
	if err != nil {
		return nil, err
	}
	return Run(r.List(), workers, func(internal string) error {
		data, err := r.ReadFile(internal)
		if err != nil {
			return err
		}
		out := filepath.Join(destDir, filepath.FromSlash(internal))
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return lslib.Wrap(lslib.KindIO, err)
		}
		return writeFileAtomic(out, data)
	}, progress), nil
}

// ConvertFiles runs convertFn over every input path, writing each
// result next to its input with newExt (".lsx", ".lsj", ...) replacing
// the old extension.
func ConvertFiles(paths []string, newExt string, workers int, convertFn func(src []byte) ([]byte, error), progress lslib.ProgressFunc) []Outcome {
	return Run(paths, workers, func(path string) error {
		src, err := os.ReadFile(path)
		if err != nil {
			return lslib.Wrap(lslib.KindIO, err)
		}
		out, err := convertFn(src)
		if err != nil {
			return err
		}
		dest := path[:len(path)-len(filepath.Ext(path))] + newExt
		return writeFileAtomic(dest, out)
	}, progress)
}

// writeFileAtomic stages to a temporary file in the destination
// directory and renames into place, so a failed conversion never leaves
// a partial output.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return lslib.Wrap(lslib.KindIO, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return lslib.Wrap(lslib.KindIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return lslib.Wrap(lslib.KindIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return lslib.Wrap(lslib.KindIO, err)
	}
	return nil
}
