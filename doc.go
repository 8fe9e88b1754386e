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

// Package lslib reads, writes, and converts the binary and text file
// formats used by Baldur's Gate 3 and its sibling Larian titles: LSPK
// archives, the LSF/LSX/LSJ document trio, LOCA localization tables,
// GR2 skeletal meshes, GTS/GTP virtual textures, and DDS textures.
//
// The root package holds the document tree shared by the lsf, lsx, lsj
// and convert packages, and the error taxonomy shared by every package
// in the module. Format-specific parsing and serialization live in
// their own subpackages (lsf, lsx, lsj, lspk, loca, dds, vtex, gr2,
// gr2model, gltf), with parallel multi-file operations in batch.
package lslib
