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
	"hash/fnv"

	"lslib.dev/go/lslib/internal/binstream"
)

// names is the bucketed hash-intern table: bucket index comes from an
// FNV-1a hash of the string mod the bucket count, and within a bucket
// strings are stored in insertion order. Every name reference elsewhere
// in the file is an (outer, inner) pair: outer selects the bucket,
// inner selects the position within it.
type names struct {
	buckets [][]string
}

// get resolves an (outer, inner) reference back to its string.
func (n *names) get(outer, inner uint32) (string, bool) {
	if int(outer) >= len(n.buckets) {
		return "", false
	}
	bucket := n.buckets[outer]
	if int(inner) >= len(bucket) {
		return "", false
	}
	return bucket[inner], true
}

func fnvBucket(s string, bucketCount int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(bucketCount))
}

// nameBuilder accumulates the distinct strings a writer needs to
// intern, in first-seen order, and only assigns bucket positions once
// the full set is known (build), matching the original writer's
// two-pass shape: collect every name while walking the tree, then size
// the table once from the total count.
type nameBuilder struct {
	order []string
	seen  map[string]bool
}

func newNameBuilder() *nameBuilder {
	return &nameBuilder{seen: make(map[string]bool)}
}

func (b *nameBuilder) add(s string) {
	if !b.seen[s] {
		b.seen[s] = true
		b.order = append(b.order, s)
	}
}

// build buckets the collected names and returns the table plus a
// lookup from string to its (outer, inner) reference.
func (b *nameBuilder) build() (*names, map[string][2]uint32) {
	bucketCount := len(b.order)/4 + 1
	table := &names{buckets: make([][]string, bucketCount)}
	refs := make(map[string][2]uint32, len(b.order))
	for _, s := range b.order {
		bucket := fnvBucket(s, bucketCount)
		table.buckets[bucket] = append(table.buckets[bucket], s)
		refs[s] = [2]uint32{uint32(bucket), uint32(len(table.buckets[bucket]) - 1)}
	}
	return table, refs
}

func readNames(buf []byte) (*names, error) {
	r := binstream.NewReader(buf)
	bucketCount, err := r.U32()
	if err != nil {
		return nil, err
	}
	n := &names{buckets: make([][]string, bucketCount)}
	for b := uint32(0); b < bucketCount; b++ {
		count, err := r.U32()
		if err != nil {
			return nil, err
		}
		entries := make([]string, count)
		for i := range entries {
			length, err := r.U16()
			if err != nil {
				return nil, err
			}
			s, err := r.ReadBytes(int(length))
			if err != nil {
				return nil, err
			}
			entries[i] = string(s)
		}
		n.buckets[b] = entries
	}
	return n, nil
}

func writeNames(n *names) []byte {
	w := binstream.NewWriter()
	w.U32(uint32(len(n.buckets)))
	for _, bucket := range n.buckets {
		w.U32(uint32(len(bucket)))
		for _, s := range bucket {
			w.U16(uint16(len(s)))
			w.WriteBytes([]byte(s))
		}
	}
	return w.Bytes()
}
