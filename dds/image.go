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

import (
	"bytes"
	"image"
	"image/png"
	"io"

	lslib "lslib.dev/go/lslib"
)

func init() {
	image.RegisterFormat("dds", "DDS ", decodeImage, decodeConfig)
}

func decodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dds, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return dds.ToRGBA()
}

func decodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	dds, err := Parse(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: image.NRGBAColorModel, Width: dds.Width, Height: dds.Height}, nil
}

// DecodePNG decodes DDS bytes straight to PNG bytes, the bridge
// between the block codec and ordinary image tooling.
func DecodePNG(ddsData []byte) ([]byte, error) {
	img, err := Parse(ddsData)
	if err != nil {
		return nil, err
	}
	rgba, err := img.ToRGBA()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, lslib.Wrap(lslib.KindWriteError, err)
	}
	return buf.Bytes(), nil
}

// EncodeDDS reads a PNG (or any image.Image) and produces a DDS file
// using the given block format, with a minimal legacy (non-DX10)
// header sufficient for the BC1/BC2/BC3/RGBA8 formats FromRGBA
// supports.
func EncodeDDS(pngData []byte, format Format) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, lslib.Wrap(lslib.KindMalformedValue, err)
	}
	body, err := FromRGBA(img, format)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return encodeHeader(b.Dx(), b.Dy(), format, body), nil
}

func encodeHeader(w, h int, format Format, body []byte) []byte {
	out := make([]byte, 4+headerSize)
	copy(out[0:4], Magic[:])
	putU32 := func(off int, v uint32) { out[off] = byte(v); out[off+1] = byte(v >> 8); out[off+2] = byte(v >> 16); out[off+3] = byte(v >> 24) }
	putU32(4, headerSize)
	putU32(8, 0x1 | 0x2 | 0x4 | 0x1000) // CAPS | HEIGHT | WIDTH | PIXELFORMAT
	putU32(12, uint32(h))
	putU32(16, uint32(w))
	putU32(20, uint32(len(body)))
	putU32(24, 1) // depth
	putU32(28, 1) // mip count

	pfOff := 4 + 72
	putU32(pfOff, pixelFormatSize)
	var fourCC string
	switch format {
	case FormatBC1:
		fourCC = "DXT1"
		putU32(pfOff+4, pfFlagFourCC)
	case FormatBC2:
		fourCC = "DXT3"
		putU32(pfOff+4, pfFlagFourCC)
	case FormatBC3:
		fourCC = "DXT5"
		putU32(pfOff+4, pfFlagFourCC)
	default:
		putU32(pfOff+4, pfFlagRGBA)
		putU32(pfOff+12, 32)
		putU32(pfOff+16, 0xFF)
		putU32(pfOff+28, 0xFF000000)
	}
	copy(out[pfOff+8:pfOff+12], fourCC)

	capsOff := 4 + 104
	putU32(capsOff, 0x1000) // DDSCAPS_TEXTURE

	return append(out, body...)
}
