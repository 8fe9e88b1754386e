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

// Package convert implements the document conversion matrix:
// lsf<->lsx directly, lsx<->lsj directly, and lsf<->lsj composed
// through lsx. Every conversion reports the same five phases through a
// caller-supplied lslib.ProgressFunc.
package convert

import (
	lslib "lslib.dev/go/lslib"
	"lslib.dev/go/lslib/lsf"
	"lslib.dev/go/lslib/lsj"
	"lslib.dev/go/lslib/lsx"
)

func report(p lslib.ProgressFunc, phase lslib.Phase, file string) {
	p.Report(lslib.Progress{Phase: phase, Current: 1, Total: 1, CurrentFile: file})
}

// LSFToLSX parses src as LSF and re-serializes it as LSX bytes.
func LSFToLSX(src []byte, progress lslib.ProgressFunc) ([]byte, error) {
	report(progress, lslib.PhaseReadSource, "")
	report(progress, lslib.PhaseParse, "")
	doc, err := lsf.Read(src)
	if err != nil {
		return nil, err
	}
	report(progress, lslib.PhaseConvertStructure, "")
	report(progress, lslib.PhaseConvertEmit, "")
	out, err := lsx.Write(doc)
	if err != nil {
		return nil, err
	}
	report(progress, lslib.PhaseWrite, "")
	return out, nil
}

// LSXToLSF parses src as LSX and re-serializes it as LSF bytes.
func LSXToLSF(src []byte, progress lslib.ProgressFunc) ([]byte, error) {
	report(progress, lslib.PhaseReadSource, "")
	report(progress, lslib.PhaseParse, "")
	doc, err := lsx.Read(src)
	if err != nil {
		return nil, err
	}
	report(progress, lslib.PhaseConvertStructure, "")
	report(progress, lslib.PhaseConvertEmit, "")
	out, err := lsf.Write(doc)
	if err != nil {
		return nil, err
	}
	report(progress, lslib.PhaseWrite, "")
	return out, nil
}

// LSXToLSJ parses src as LSX and re-serializes it as LSJ bytes. The
// lslib_meta flags are not round-tripped to LSJ: only the version tuple
// is carried, and LSJToLSX reconstructs the flags from it
// (major >= 4 => bswap_guids).
func LSXToLSJ(src []byte, progress lslib.ProgressFunc) ([]byte, error) {
	report(progress, lslib.PhaseReadSource, "")
	report(progress, lslib.PhaseParse, "")
	doc, err := lsx.Read(src)
	if err != nil {
		return nil, err
	}
	report(progress, lslib.PhaseConvertStructure, "")
	report(progress, lslib.PhaseConvertEmit, "")
	out, err := lsj.Write(doc)
	if err != nil {
		return nil, err
	}
	report(progress, lslib.PhaseWrite, "")
	return out, nil
}

// LSJToLSX parses src as LSJ and re-serializes it as LSX bytes.
func LSJToLSX(src []byte, progress lslib.ProgressFunc) ([]byte, error) {
	report(progress, lslib.PhaseReadSource, "")
	report(progress, lslib.PhaseParse, "")
	doc, err := lsj.Read(src)
	if err != nil {
		return nil, err
	}
	report(progress, lslib.PhaseConvertStructure, "")
	report(progress, lslib.PhaseConvertEmit, "")
	out, err := lsx.Write(doc)
	if err != nil {
		return nil, err
	}
	report(progress, lslib.PhaseWrite, "")
	return out, nil
}

// LSFToLSJ converts LSF to LSJ by literal composition through LSX: it
// is not merely the same document tree re-emitted, it is the actual
// LSX byte form parsed back, so any LSX-specific normalization (e.g.
// lslib_meta reconstruction) is exercised on both legs.
func LSFToLSJ(src []byte, progress lslib.ProgressFunc) ([]byte, error) {
	lsxBytes, err := LSFToLSX(src, progress)
	if err != nil {
		return nil, err
	}
	return LSXToLSJ(lsxBytes, progress)
}

// LSJToLSF converts LSJ to LSF by literal composition through LSX.
func LSJToLSF(src []byte, progress lslib.ProgressFunc) ([]byte, error) {
	lsxBytes, err := LSJToLSX(src, progress)
	if err != nil {
		return nil, err
	}
	return LSXToLSF(lsxBytes, progress)
}
