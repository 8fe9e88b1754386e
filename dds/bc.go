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

package dds

import "encoding/binary"

// decodeRGB565 expands a 16-bit 5:6:5 color to 8-bit RGB.
func decodeRGB565(c uint16) (r, g, b uint8) {
	r = uint8((c >> 11 & 0x1F) * 255 / 31)
	g = uint8((c >> 5 & 0x3F) * 255 / 63)
	b = uint8((c & 0x1F) * 255 / 31)
	return
}

// bc1Colors builds the 4-entry palette for one BC1 block from its two
// 16-bit endpoints, including the "transparent black" 4th entry used
// when color0 <= color1 (the 1-bit-alpha DXT1 mode).
func bc1Colors(c0, c1 uint16) (pal [4][4]uint8) {
	r0, g0, b0 := decodeRGB565(c0)
	r1, g1, b1 := decodeRGB565(c1)
	pal[0] = [4]uint8{r0, g0, b0, 255}
	pal[1] = [4]uint8{r1, g1, b1, 255}
	if c0 > c1 {
		pal[2] = [4]uint8{
			uint8((2*int(r0) + int(r1)) / 3),
			uint8((2*int(g0) + int(g1)) / 3),
			uint8((2*int(b0) + int(b1)) / 3),
			255,
		}
		pal[3] = [4]uint8{
			uint8((int(r0) + 2*int(r1)) / 3),
			uint8((int(g0) + 2*int(g1)) / 3),
			uint8((int(b0) + 2*int(b1)) / 3),
			255,
		}
	} else {
		pal[2] = [4]uint8{
			uint8((int(r0) + int(r1)) / 2),
			uint8((int(g0) + int(g1)) / 2),
			uint8((int(b0) + int(b1)) / 2),
			255,
		}
		pal[3] = [4]uint8{0, 0, 0, 0}
	}
	return
}

// decodeBC1Block decodes one 8-byte BC1/DXT1 block to 16 RGBA pixels.
func decodeBC1Block(block []byte) (rgba [64]byte) {
	if len(block) < 8 {
		return
	}
	c0 := binary.LittleEndian.Uint16(block[0:])
	c1 := binary.LittleEndian.Uint16(block[2:])
	indices := binary.LittleEndian.Uint32(block[4:])
	pal := bc1Colors(c0, c1)
	for i := 0; i < 16; i++ {
		idx := (indices >> (2 * uint(i))) & 0x3
		copy(rgba[i*4:i*4+4], pal[idx][:])
	}
	return
}

// decodeBC2Block decodes one 16-byte BC2/DXT3 block: 8 bytes of 4-bit
// explicit alpha followed by a BC1 color block.
func decodeBC2Block(block []byte) (rgba [64]byte) {
	if len(block) < 16 {
		return
	}
	rgba = decodeBC1Block(block[8:])
	for i := 0; i < 16; i++ {
		byteIdx := i / 2
		var a4 uint8
		if i%2 == 0 {
			a4 = block[byteIdx] & 0xF
		} else {
			a4 = block[byteIdx] >> 4
		}
		rgba[i*4+3] = a4 * 17 // 4-bit -> 8-bit, 0xF*17 = 255
	}
	return
}

// bc4Alphas builds the 8-entry interpolated palette for one BC3 alpha
// block or BC4 single-channel block from its two endpoints.
func bc4Alphas(a0, a1 uint8) (pal [8]uint8) {
	pal[0], pal[1] = a0, a1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			pal[1+i] = uint8((int(a0)*(7-i) + int(a1)*i) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			pal[1+i] = uint8((int(a0)*(5-i) + int(a1)*i) / 5)
		}
		pal[6] = 0
		pal[7] = 255
	}
	return
}

func decode3BitIndices(block []byte) [16]uint8 {
	var idx [16]uint8
	bits := uint64(0)
	for i := 0; i < 6; i++ {
		bits |= uint64(block[i]) << (8 * uint(i))
	}
	for i := 0; i < 16; i++ {
		idx[i] = uint8((bits >> (3 * uint(i))) & 0x7)
	}
	return idx
}

// decodeBC3Block decodes one 16-byte BC3/DXT5 block: 8 bytes of
// interpolated alpha followed by a BC1 color block.
func decodeBC3Block(block []byte) (rgba [64]byte) {
	if len(block) < 16 {
		return
	}
	rgba = decodeBC1Block(block[8:])
	pal := bc4Alphas(block[0], block[1])
	idx := decode3BitIndices(block[2:8])
	for i := 0; i < 16; i++ {
		rgba[i*4+3] = pal[idx[i]]
	}
	return
}

// decodeBC4Block decodes one 8-byte BC4 single-channel block, expanded
// to grayscale RGBA with alpha 255.
func decodeBC4Block(block []byte) (rgba [64]byte) {
	if len(block) < 8 {
		return
	}
	pal := bc4Alphas(block[0], block[1])
	idx := decode3BitIndices(block[2:8])
	for i := 0; i < 16; i++ {
		v := pal[idx[i]]
		rgba[i*4+0] = v
		rgba[i*4+1] = v
		rgba[i*4+2] = v
		rgba[i*4+3] = 255
	}
	return
}

// decodeBC5Block decodes one 16-byte BC5 two-channel block (two BC4
// lanes, typically tangent-space normal X/Y) into R/G, with B=0 and
// alpha 255.
func decodeBC5Block(block []byte) (rgba [64]byte) {
	if len(block) < 16 {
		return
	}
	palR := bc4Alphas(block[0], block[1])
	idxR := decode3BitIndices(block[2:8])
	palG := bc4Alphas(block[8], block[9])
	idxG := decode3BitIndices(block[10:16])
	for i := 0; i < 16; i++ {
		rgba[i*4+0] = palR[idxR[i]]
		rgba[i*4+1] = palG[idxG[i]]
		rgba[i*4+2] = 0
		rgba[i*4+3] = 255
	}
	return
}

// encodeBC1Block encodes one 4x4 RGBA tile (ignoring alpha) to an
// 8-byte BC1 block, choosing the min/max-luminance pixels as endpoints
// and mapping each pixel to its nearest palette entry by squared
// distance. This is a quality-adequate, non-exhaustive encoder in the
// spirit of a reference implementation rather than a rate-optimal one.
func encodeBC1Block(rgba [64]byte) []byte {
	c0, c1 := pickEndpoints(rgba)
	pal := bc1Colors(c0, c1)
	var indices uint32
	for i := 0; i < 16; i++ {
		px := [3]uint8{rgba[i*4], rgba[i*4+1], rgba[i*4+2]}
		best, bestDist := 0, int(1<<30)
		for p := 0; p < 4; p++ {
			d := colorDist(px, [3]uint8{pal[p][0], pal[p][1], pal[p][2]})
			if d < bestDist {
				bestDist, best = d, p
			}
		}
		indices |= uint32(best) << (2 * uint(i))
	}
	out := make([]byte, 8)
	binary.LittleEndian.PutUint16(out[0:], c0)
	binary.LittleEndian.PutUint16(out[2:], c1)
	binary.LittleEndian.PutUint32(out[4:], indices)
	return out
}

func encodeBC2Block(rgba [64]byte) []byte {
	out := make([]byte, 16)
	for i := 0; i < 16; i++ {
		a4 := rgba[i*4+3] / 17
		byteIdx := i / 2
		if i%2 == 0 {
			out[byteIdx] = (out[byteIdx] &^ 0xF) | a4
		} else {
			out[byteIdx] = (out[byteIdx] &^ 0xF0) | (a4 << 4)
		}
	}
	copy(out[8:], encodeBC1Block(rgba))
	return out
}

func encodeBC3Block(rgba [64]byte) []byte {
	minA, maxA := rgba[3], rgba[3]
	for i := 1; i < 16; i++ {
		a := rgba[i*4+3]
		if a < minA {
			minA = a
		}
		if a > maxA {
			maxA = a
		}
	}
	out := make([]byte, 16)
	out[0], out[1] = maxA, minA
	pal := bc4Alphas(maxA, minA)
	var bits uint64
	for i := 0; i < 16; i++ {
		a := rgba[i*4+3]
		best, bestDist := 0, 1<<30
		for p := 0; p < 8; p++ {
			d := int(a) - int(pal[p])
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				bestDist, best = d, p
			}
		}
		bits |= uint64(best) << (3 * uint(i))
	}
	for i := 0; i < 6; i++ {
		out[2+i] = byte(bits >> (8 * uint(i)))
	}
	copy(out[8:], encodeBC1Block(rgba))
	return out
}

func colorDist(a, b [3]uint8) int {
	dr := int(a[0]) - int(b[0])
	dg := int(a[1]) - int(b[1])
	db := int(a[2]) - int(b[2])
	return dr*dr + dg*dg + db*db
}

// pickEndpoints chooses the two pixels of greatest and least luminance
// in the block as the BC1 color0/color1 endpoints.
func pickEndpoints(rgba [64]byte) (c0, c1 uint16) {
	minL, maxL := 1<<30, -1
	var minPx, maxPx [3]uint8
	for i := 0; i < 16; i++ {
		r, g, b := rgba[i*4], rgba[i*4+1], rgba[i*4+2]
		l := 299*int(r) + 587*int(g) + 114*int(b)
		if l < minL {
			minL = l
			minPx = [3]uint8{r, g, b}
		}
		if l > maxL {
			maxL = l
			maxPx = [3]uint8{r, g, b}
		}
	}
	c0 = encodeRGB565(maxPx)
	c1 = encodeRGB565(minPx)
	if c0 == c1 {
		// Keep the opaque 4-color mode rather than accidentally enabling
		// the 1-bit-alpha path when the block is flat.
		if c0 > 0 {
			c1 = c0 - 1
		} else {
			c0 = 1
		}
	}
	return
}

func encodeRGB565(px [3]uint8) uint16 {
	r := uint16(px[0]) >> 3
	g := uint16(px[1]) >> 2
	b := uint16(px[2]) >> 3
	return r<<11 | g<<5 | b
}
