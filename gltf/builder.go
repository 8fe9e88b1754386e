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

package gltf

import (
	"encoding/binary"
	"math"
)

// Builder accumulates a glTF document and its single binary buffer.
// Index-returning Add methods follow the document's array-of-things
// referencing scheme: every cross-reference in the emitted JSON is an
// index returned by an earlier Add call.
type Builder struct {
	doc Document
	bin []byte

	defaultSampler *int
}

// NewBuilder returns a Builder with the mandatory asset block filled
// in.
func NewBuilder() *Builder {
	return &Builder{
		doc: Document{
			Asset: Asset{Version: "2.0", Generator: "lslib"},
		},
	}
}

// Finish returns the assembled document and binary buffer. The buffer
// entry's URI is left empty; the emitters fill it for the .gltf+.bin
// form and leave it unset for GLB.
func (b *Builder) Finish() (*Document, []byte) {
	doc := b.doc
	if len(b.bin) > 0 {
		doc.Buffers = []Buffer{{ByteLength: len(b.bin)}}
	}
	if len(doc.Scenes) == 0 && len(doc.Nodes) > 0 {
		roots := rootNodes(doc.Nodes)
		doc.Scenes = []Scene{{Nodes: roots}}
		zero := 0
		doc.Scene = &zero
	}
	return &doc, b.bin
}

func rootNodes(nodes []Node) []int {
	child := make([]bool, len(nodes))
	for _, n := range nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(nodes) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i := range nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (b *Builder) pad4() {
	for len(b.bin)%4 != 0 {
		b.bin = append(b.bin, 0)
	}
}

// AddBufferView appends data to the binary buffer (4-byte aligned) and
// records a view over it. target is a GL buffer target or 0 for none.
func (b *Builder) AddBufferView(data []byte, target int) int {
	b.pad4()
	offset := len(b.bin)
	b.bin = append(b.bin, data...)
	view := BufferView{Buffer: 0, ByteOffset: offset, ByteLength: len(data)}
	if target != 0 {
		t := target
		view.Target = &t
	}
	b.doc.BufferViews = append(b.doc.BufferViews, view)
	return len(b.doc.BufferViews) - 1
}

// AddFloatAccessor writes values as little-endian float32s into a new
// buffer view and records an accessor over it. For POSITION accessors
// (t == Vec3 with withBounds set) glTF requires min/max; withBounds
// computes them per component.
func (b *Builder) AddFloatAccessor(values []float32, t AccessorType, target int, withBounds bool) int {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	view := b.AddBufferView(raw, target)
	acc := Accessor{
		BufferView:    &view,
		ComponentType: Float,
		Count:         len(values) / t.NumComponents(),
		Type:          t,
	}
	if withBounds {
		acc.Min, acc.Max = bounds(values, t.NumComponents())
	}
	b.doc.Accessors = append(b.doc.Accessors, acc)
	return len(b.doc.Accessors) - 1
}

func bounds(values []float32, stride int) (min, max []float32) {
	min = make([]float32, stride)
	max = make([]float32, stride)
	for c := 0; c < stride; c++ {
		min[c] = float32(math.Inf(1))
		max[c] = float32(math.Inf(-1))
	}
	for i, v := range values {
		c := i % stride
		if v < min[c] {
			min[c] = v
		}
		if v > max[c] {
			max[c] = v
		}
	}
	if len(values) == 0 {
		for c := 0; c < stride; c++ {
			min[c], max[c] = 0, 0
		}
	}
	return min, max
}

// AddUint8Accessor writes values as bytes; normalized marks integer
// data to be renormalized to [0,1] on the GPU (vertex colors, weights).
func (b *Builder) AddUint8Accessor(values []uint8, t AccessorType, target int, normalized bool) int {
	view := b.AddBufferView(values, target)
	b.doc.Accessors = append(b.doc.Accessors, Accessor{
		BufferView:    &view,
		ComponentType: UnsignedByte,
		Normalized:    normalized,
		Count:         len(values) / t.NumComponents(),
		Type:          t,
	})
	return len(b.doc.Accessors) - 1
}

// AddUint16Accessor writes values as little-endian uint16s.
func (b *Builder) AddUint16Accessor(values []uint16, t AccessorType, target int, normalized bool) int {
	raw := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(raw[2*i:], v)
	}
	view := b.AddBufferView(raw, target)
	b.doc.Accessors = append(b.doc.Accessors, Accessor{
		BufferView:    &view,
		ComponentType: UnsignedShort,
		Normalized:    normalized,
		Count:         len(values) / t.NumComponents(),
		Type:          t,
	})
	return len(b.doc.Accessors) - 1
}

// AddUint32Accessor writes values as little-endian uint32s.
func (b *Builder) AddUint32Accessor(values []uint32, t AccessorType, target int) int {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], v)
	}
	view := b.AddBufferView(raw, target)
	b.doc.Accessors = append(b.doc.Accessors, Accessor{
		BufferView:    &view,
		ComponentType: UnsignedInt,
		Count:         len(values) / t.NumComponents(),
		Type:          t,
	})
	return len(b.doc.Accessors) - 1
}

// AddMesh records a mesh and returns its index.
func (b *Builder) AddMesh(m Mesh) int {
	b.doc.Meshes = append(b.doc.Meshes, m)
	return len(b.doc.Meshes) - 1
}

// AddNode records a node and returns its index.
func (b *Builder) AddNode(n Node) int {
	b.doc.Nodes = append(b.doc.Nodes, n)
	return len(b.doc.Nodes) - 1
}

// Nodes gives mutable access to the node list, for linking children
// after all nodes have been added.
func (b *Builder) Nodes() []Node {
	return b.doc.Nodes
}

// AddSkin records a skin and returns its index.
func (b *Builder) AddSkin(s Skin) int {
	b.doc.Skins = append(b.doc.Skins, s)
	return len(b.doc.Skins) - 1
}

// AddMaterial records a material and returns its index.
func (b *Builder) AddMaterial(m Material) int {
	b.doc.Materials = append(b.doc.Materials, m)
	return len(b.doc.Materials) - 1
}

// AddImagePNG embeds an already-encoded PNG via a buffer view and
// returns the image index.
func (b *Builder) AddImagePNG(png []byte) int {
	view := b.AddBufferView(png, 0)
	b.doc.Images = append(b.doc.Images, Image{MimeType: "image/png", BufferView: &view})
	return len(b.doc.Images) - 1
}

// AddTexture records a texture over image index source using the
// default sampler.
func (b *Builder) AddTexture(source int) int {
	sampler := b.DefaultSampler()
	b.doc.Textures = append(b.doc.Textures, Texture{Sampler: &sampler, Source: &source})
	return len(b.doc.Textures) - 1
}

// DefaultSampler returns the shared linear/linear-mipmap-linear,
// repeat/repeat sampler, creating it on first use.
func (b *Builder) DefaultSampler() int {
	if b.defaultSampler == nil {
		b.doc.Samplers = append(b.doc.Samplers, Sampler{
			MagFilter: FilterLinear,
			MinFilter: FilterLinearMipmapLinear,
			WrapS:     WrapRepeat,
			WrapT:     WrapRepeat,
		})
		idx := len(b.doc.Samplers) - 1
		b.defaultSampler = &idx
	}
	return *b.defaultSampler
}

// UseExtension declares an extension in extensionsUsed, once.
func (b *Builder) UseExtension(name string) {
	for _, e := range b.doc.ExtensionsUsed {
		if e == name {
			return
		}
	}
	b.doc.ExtensionsUsed = append(b.doc.ExtensionsUsed, name)
}
