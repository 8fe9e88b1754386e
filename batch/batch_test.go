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

package batch

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	lslib "lslib.dev/go/lslib"
)

func TestRunIsolatesFailures(t *testing.T) {
	paths := []string{"a", "b", "c", "d"}
	results := Run(paths, 2, func(path string) error {
		if path == "c" {
			return lslib.NewError(lslib.KindMalformedValue, "boom")
		}
		return nil
	}, nil)

	if len(results) != len(paths) {
		t.Fatalf("got %d outcomes, want %d", len(results), len(paths))
	}
	byPath := make(map[string]error)
	for _, r := range results {
		byPath[r.Path] = r.Err
	}
	for _, p := range paths {
		err, ok := byPath[p]
		if !ok {
			t.Errorf("no outcome for %q", p)
			continue
		}
		if p == "c" && err == nil {
			t.Error("failure for c was dropped")
		}
		if p != "c" && err != nil {
			t.Errorf("unexpected error for %q: %v", p, err)
		}
	}
	// The failing outcome is attributed to its input path.
	if lerr, ok := byPath["c"].(*lslib.Error); !ok || lerr.Path != "c" {
		t.Errorf("error for c = %#v, want *lslib.Error with Path=c", byPath["c"])
	}
}

func TestRunReportsEveryCompletion(t *testing.T) {
	paths := []string{"1", "2", "3", "4", "5"}
	var mu sync.Mutex
	var currents []int
	results := Run(paths, 3, func(string) error { return nil }, func(p lslib.Progress) {
		mu.Lock()
		currents = append(currents, p.Current)
		mu.Unlock()
		if p.Total != len(paths) {
			t.Errorf("progress total = %d, want %d", p.Total, len(paths))
		}
	})
	if len(results) != len(paths) {
		t.Fatalf("got %d outcomes", len(results))
	}
	sort.Ints(currents)
	for i, c := range currents {
		if c != i+1 {
			t.Fatalf("completion counters = %v, want 1..%d", currents, len(paths))
		}
	}
}

func TestConvertFilesWritesSiblingOutputs(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"one.lsx", "two.lsx"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	results := ConvertFiles(paths, ".lsj", 2, func(src []byte) ([]byte, error) {
		return bytes.ToUpper(src), nil
	}, nil)
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Path, r.Err)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, "one.lsj"))
	if err != nil {
		t.Fatalf("converted output missing: %v", err)
	}
	if string(got) != "ONE.LSX" {
		t.Errorf("converted content = %q", got)
	}
	// No temporary staging files survive.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents = %v, want exactly inputs+outputs", names)
	}
}
