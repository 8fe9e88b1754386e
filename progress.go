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

// Phase identifies a stage within a long-running operation for progress
// reporting (spec §6): a conversion reports five phases, an LSPK
// extraction or batch operation reports one entry per file.
type Phase int

const (
	PhaseReadSource Phase = iota
	PhaseParse
	PhaseConvertStructure
	PhaseConvertEmit
	PhaseWrite
)

func (p Phase) String() string {
	switch p {
	case PhaseReadSource:
		return "reading source"
	case PhaseParse:
		return "parsing"
	case PhaseConvertStructure:
		return "converting structure"
	case PhaseConvertEmit:
		return "converting/emitting output"
	case PhaseWrite:
		return "writing"
	default:
		return "unknown phase"
	}
}

// Progress is the payload delivered to a caller-supplied progress
// callback. Callbacks must tolerate invocation from any worker
// goroutine in a batch operation.
type Progress struct {
	Phase       Phase
	Current     int
	Total       int
	CurrentFile string
}

// ProgressFunc is the callback signature accepted by every long-running
// operation in the module. A nil ProgressFunc is always safe to pass.
type ProgressFunc func(Progress)

// Report invokes f with p if f is non-nil. Long-running operations call
// this rather than f directly so a nil callback never needs a guard at
// the call site.
func (f ProgressFunc) Report(p Progress) {
	if f != nil {
		f(p)
	}
}
