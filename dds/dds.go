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

// Package dds implements the DDS texture container (DirectDraw
// Surface) and the BC1-BC7 block-compression codec: BC1-7 decode to
// RGBA and BC1-3 encode from RGBA.
//
// The container parser is a manual header struct with dispatch to a
// per-format decode function, registered via image.RegisterFormat so
// image.Decode picks up ".dds" transparently. Both the legacy FourCC
// header and the DX10 extension resolve to one Format enumeration.
package dds

import (
	"encoding/binary"
	"fmt"
	"image"

	lslib "lslib.dev/go/lslib"
)

// Magic is the 4-byte DDS file signature.
var Magic = [4]byte{'D', 'D', 'S', ' '}

const headerSize = 124 // bytes following the 4-byte magic
const pixelFormatSize = 32

// ddsPixelFormat mirrors the on-disk DDS_PIXELFORMAT struct.
type ddsPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

const (
	pfFlagFourCC  = 0x4
	pfFlagRGB     = 0x40
	pfFlagAlpha   = 0x1
	pfFlagRGBA    = pfFlagRGB | pfFlagAlpha
)

// Header mirrors the on-disk DDS_HEADER struct (without the leading
// magic, which Parse validates separately).
type Header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       ddsPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// DX10Header mirrors the optional DDS_HEADER_DXT10 extension, present
// when PixelFormat.FourCC == "DX10".
type DX10Header struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// Format identifies the pixel encoding of the mip-0 data block, after
// resolving both the legacy FourCC path and the DX10 extension to one
// common enumeration.
type Format int

const (
	FormatUnknown Format = iota
	FormatRGBA8
	FormatBGRA8
	FormatARGB8
	FormatBC1
	FormatBC2
	FormatBC3
	FormatBC4
	FormatBC5
	FormatBC7
)

// Image is a parsed DDS file: its dimensions, resolved pixel Format,
// and the raw mip-0 data block (further mips, depth slices, and array
// layers are not decoded by this package; mip 0 of the base layer is
// what every consumer in this module needs).
type Image struct {
	Width, Height int
	Depth         int
	MipCount      int
	ArraySize     int
	Format        Format
	Data          []byte
}

// Parse reads a DDS file's header(s) and extracts width, height, depth,
// mip count, array layer count, format discriminator, and the mip-0
// data block.
func Parse(data []byte) (*Image, error) {
	if len(data) < 4+headerSize {
		return nil, lslib.NewError(lslib.KindIO, "dds: file too short for header")
	}
	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return nil, lslib.NewError(lslib.KindInvalidMagic, fmt.Sprintf("got %q, want \"DDS \"", data[:4]))
	}
	h, err := parseHeader(data[4:])
	if err != nil {
		return nil, err
	}

	pos := 4 + headerSize
	var dx10 *DX10Header
	if h.PixelFormat.Flags&pfFlagFourCC != 0 && string(h.PixelFormat.FourCC[:]) == "DX10" {
		if len(data) < pos+20 {
			return nil, lslib.NewError(lslib.KindIO, "dds: truncated DX10 header")
		}
		dx10 = &DX10Header{
			DXGIFormat:        binary.LittleEndian.Uint32(data[pos:]),
			ResourceDimension: binary.LittleEndian.Uint32(data[pos+4:]),
			MiscFlag:          binary.LittleEndian.Uint32(data[pos+8:]),
			ArraySize:         binary.LittleEndian.Uint32(data[pos+12:]),
			MiscFlags2:        binary.LittleEndian.Uint32(data[pos+16:]),
		}
		pos += 20
	}

	format, err := resolveFormat(h, dx10)
	if err != nil {
		return nil, err
	}

	width := int(h.Width)
	height := int(h.Height)
	depth := int(h.Depth)
	if depth == 0 {
		depth = 1
	}
	mipCount := int(h.MipMapCount)
	if mipCount == 0 {
		mipCount = 1
	}
	arraySize := 1
	if dx10 != nil && dx10.ArraySize > 0 {
		arraySize = int(dx10.ArraySize)
	}

	mip0Size := mipDataSize(format, width, height)
	if pos+mip0Size > len(data) {
		return nil, lslib.NewError(lslib.KindIO,
			fmt.Sprintf("dds: mip-0 data (%d bytes) extends past end of file", mip0Size))
	}

	return &Image{
		Width: width, Height: height, Depth: depth,
		MipCount: mipCount, ArraySize: arraySize,
		Format: format,
		Data:   data[pos : pos+mip0Size],
	}, nil
}

func parseHeader(b []byte) (Header, error) {
	var h Header
	if len(b) < headerSize {
		return h, lslib.NewError(lslib.KindIO, "dds: truncated header")
	}
	h.Size = binary.LittleEndian.Uint32(b[0:])
	h.Flags = binary.LittleEndian.Uint32(b[4:])
	h.Height = binary.LittleEndian.Uint32(b[8:])
	h.Width = binary.LittleEndian.Uint32(b[12:])
	h.PitchOrLinearSize = binary.LittleEndian.Uint32(b[16:])
	h.Depth = binary.LittleEndian.Uint32(b[20:])
	h.MipMapCount = binary.LittleEndian.Uint32(b[24:])
	// b[28:72] is the 11-uint32 reserved block.
	pf := b[72:104]
	h.PixelFormat = ddsPixelFormat{
		Size:        binary.LittleEndian.Uint32(pf[0:]),
		Flags:       binary.LittleEndian.Uint32(pf[4:]),
		RGBBitCount: binary.LittleEndian.Uint32(pf[12:]),
		RBitMask:    binary.LittleEndian.Uint32(pf[16:]),
		GBitMask:    binary.LittleEndian.Uint32(pf[20:]),
		BBitMask:    binary.LittleEndian.Uint32(pf[24:]),
		ABitMask:    binary.LittleEndian.Uint32(pf[28:]),
	}
	copy(h.PixelFormat.FourCC[:], pf[8:12])
	h.Caps = binary.LittleEndian.Uint32(b[104:])
	h.Caps2 = binary.LittleEndian.Uint32(b[108:])
	h.Caps3 = binary.LittleEndian.Uint32(b[112:])
	h.Caps4 = binary.LittleEndian.Uint32(b[116:])
	h.Reserved2 = binary.LittleEndian.Uint32(b[120:])
	return h, nil
}

func resolveFormat(h Header, dx10 *DX10Header) (Format, error) {
	if dx10 != nil {
		switch dx10.DXGIFormat {
		case 28, 29: // R8G8B8A8_UNorm, R8G8B8A8_UNorm_sRGB
			return FormatRGBA8, nil
		case 87, 91: // B8G8R8A8_UNorm, B8G8R8A8_UNorm_sRGB
			return FormatBGRA8, nil
		case 71, 72: // BC1_UNorm[_sRGB]
			return FormatBC1, nil
		case 74, 75: // BC2_UNorm[_sRGB]
			return FormatBC2, nil
		case 77, 78: // BC3_UNorm[_sRGB]
			return FormatBC3, nil
		case 80: // BC4_UNorm
			return FormatBC4, nil
		case 83: // BC5_UNorm
			return FormatBC5, nil
		case 98, 99: // BC7_UNorm[_sRGB]
			return FormatBC7, nil
		default:
			return FormatUnknown, lslib.NewError(lslib.KindUnsupportedVersion,
				fmt.Sprintf("dds: unsupported DXGI format %d", dx10.DXGIFormat))
		}
	}

	if h.PixelFormat.Flags&pfFlagFourCC != 0 {
		switch string(h.PixelFormat.FourCC[:]) {
		case "DXT1":
			return FormatBC1, nil
		case "DXT3":
			return FormatBC2, nil
		case "DXT5":
			return FormatBC3, nil
		case "BC4U", "ATI1":
			return FormatBC4, nil
		case "ATI2":
			return FormatBC5, nil
		default:
			return FormatUnknown, lslib.NewError(lslib.KindUnsupportedVersion,
				fmt.Sprintf("dds: unsupported FourCC %q", h.PixelFormat.FourCC))
		}
	}

	if h.PixelFormat.Flags&pfFlagRGBA != 0 && h.PixelFormat.RGBBitCount == 32 {
		switch {
		case h.PixelFormat.RBitMask == 0xFF0000 && h.PixelFormat.ABitMask == 0xFF000000:
			return FormatARGB8, nil
		case h.PixelFormat.RBitMask == 0xFF && h.PixelFormat.ABitMask == 0xFF000000:
			return FormatRGBA8, nil
		case h.PixelFormat.BBitMask == 0xFF && h.PixelFormat.RBitMask == 0xFF0000:
			return FormatBGRA8, nil
		}
	}

	return FormatUnknown, lslib.NewError(lslib.KindUnsupportedVersion, "dds: unrecognized pixel format")
}

func blockDim(n int) int {
	return (n + 3) / 4
}

func mipDataSize(f Format, w, h int) int {
	switch f {
	case FormatBC1, FormatBC4:
		return blockDim(w) * blockDim(h) * 8
	case FormatBC2, FormatBC3, FormatBC5, FormatBC7:
		return blockDim(w) * blockDim(h) * 16
	default:
		return w * h * 4
	}
}

// ToRGBA decodes img's mip-0 data to a fully materialized RGBA image
// trimmed to the logical (possibly non-multiple-of-4) dimensions.
func (img *Image) ToRGBA() (*image.NRGBA, error) {
	switch img.Format {
	case FormatRGBA8:
		return copyDirect(img.Data, img.Width, img.Height), nil
	case FormatBGRA8:
		return copySwapRB(img.Data, img.Width, img.Height), nil
	case FormatARGB8:
		return copyARGB(img.Data, img.Width, img.Height), nil
	case FormatBC1:
		return decodeBCBlocks(img.Data, img.Width, img.Height, decodeBC1Block), nil
	case FormatBC2:
		return decodeBCBlocks(img.Data, img.Width, img.Height, decodeBC2Block), nil
	case FormatBC3:
		return decodeBCBlocks(img.Data, img.Width, img.Height, decodeBC3Block), nil
	case FormatBC4:
		return decodeBCBlocks(img.Data, img.Width, img.Height, decodeBC4Block), nil
	case FormatBC5:
		return decodeBCBlocks(img.Data, img.Width, img.Height, decodeBC5Block), nil
	case FormatBC7:
		return decodeBCBlocks(img.Data, img.Width, img.Height, decodeBC7Block), nil
	default:
		return nil, lslib.NewError(lslib.KindUnsupportedVersion, "dds: no decoder for this format")
	}
}

func copyDirect(data []byte, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := w * h * 4
	if n > len(data) {
		n = len(data)
	}
	copy(out.Pix, data[:n])
	return out
}

func copySwapRB(data []byte, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := w * h
	for i := 0; i < n && i*4+3 < len(data); i++ {
		b := data[i*4 : i*4+4]
		out.Pix[i*4+0] = b[2]
		out.Pix[i*4+1] = b[1]
		out.Pix[i*4+2] = b[0]
		out.Pix[i*4+3] = b[3]
	}
	return out
}

func copyARGB(data []byte, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := w * h
	for i := 0; i < n && i*4+3 < len(data); i++ {
		b := data[i*4 : i*4+4]
		// Little-endian A8R8G8B8 words (R mask 0xFF0000, A mask
		// 0xFF000000) lie in memory as B, G, R, A.
		out.Pix[i*4+0] = b[2] // R
		out.Pix[i*4+1] = b[1] // G
		out.Pix[i*4+2] = b[0] // B
		out.Pix[i*4+3] = b[3] // A
	}
	return out
}

// blockDecoder decodes one 4x4 block's encoded bytes into rgba (64
// bytes, row-major); decodeBCBlocks slices each block out of the input.
type blockDecoder func(block []byte) (rgba [64]byte)

// decodeBCBlocks walks blocks row-major within the block and
// block-major within the image, compositing each decoded 4x4 tile into
// the output, cropped to w x h.
func decodeBCBlocks(data []byte, w, h int, decode blockDecoder) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	bw, bh := blockDim(w), blockDim(h)
	blockBytes := len(data) / maxInt(bw*bh, 1)
	pos := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			end := pos + blockBytes
			if end > len(data) {
				end = len(data)
			}
			rgba := decode(data[pos:end])
			pos = end
			for y := 0; y < 4; y++ {
				py := by*4 + y
				if py >= h {
					continue
				}
				for x := 0; x < 4; x++ {
					px := bx*4 + x
					if px >= w {
						continue
					}
					si := (y*4 + x) * 4
					di := (py*w + px) * 4
					copy(out.Pix[di:di+4], rgba[si:si+4])
				}
			}
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FromRGBA encodes an image.Image as one of the BC1/BC2/BC3 formats
// (or RGBA8 pass-through). BC4/BC5/BC7 encoding is out of scope.
func FromRGBA(src image.Image, format Format) ([]byte, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	nrgba := toNRGBA(src)
	switch format {
	case FormatRGBA8:
		return append([]byte(nil), nrgba.Pix...), nil
	case FormatBC1:
		return encodeBCBlocks(nrgba, w, h, encodeBC1Block, 8), nil
	case FormatBC2:
		return encodeBCBlocks(nrgba, w, h, encodeBC2Block, 16), nil
	case FormatBC3:
		return encodeBCBlocks(nrgba, w, h, encodeBC3Block, 16), nil
	default:
		return nil, lslib.NewError(lslib.KindUnsupportedVersion,
			"dds: encoding is limited to BC1/BC2/BC3 and RGBA pass-through")
	}
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, src.At(x, y))
		}
	}
	return out
}

type blockEncoder func(rgba [64]byte) []byte

// encodeBCBlocks tiles the image into 4x4 blocks, padding with
// duplicated edge pixels when the dimensions are not multiples of 4,
// and encodes each with enc.
func encodeBCBlocks(src *image.NRGBA, w, h int, enc blockEncoder, blockBytes int) []byte {
	bw, bh := blockDim(w), blockDim(h)
	out := make([]byte, 0, bw*bh*blockBytes)
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			var rgba [64]byte
			for y := 0; y < 4; y++ {
				py := by*4 + y
				if py >= h {
					py = h - 1
				}
				for x := 0; x < 4; x++ {
					px := bx*4 + x
					if px >= w {
						px = w - 1
					}
					c := src.NRGBAAt(px, py)
					i := (y*4 + x) * 4
					rgba[i+0], rgba[i+1], rgba[i+2], rgba[i+3] = c.R, c.G, c.B, c.A
				}
			}
			out = append(out, enc(rgba)...)
		}
	}
	return out
}
