// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uidraw renders immediate-mode 2D UI draw lists through the
// gpu render core. The UI layer builds [DrawList]s fresh each frame;
// [Renderer.Draw] converts them into minimal GPU state changes and
// indexed draws, with cached per-texture resource sets and per-format
// pipelines.
package uidraw

import (
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/gpu"
)

// Vertex is one 2D UI vertex: position, texture coordinate, and a
// packed RGBA color. 20 bytes, matching the pipeline's vertex layout.
type Vertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color uint32
}

// VertexSize is the byte stride of one [Vertex].
const VertexSize = 20

// ColorRGBA packs a color into the vertex color format.
func ColorRGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// ColorWhite is the neutral vertex color.
var ColorWhite = ColorRGBA(255, 255, 255, 255)

// DrawCommand is one draw within a list: an element range, the clip
// rectangle in effect, and the texture to sample (nil = default font
// atlas).
type DrawCommand struct {
	// ClipRect is x0, y0, x1, y1 in unscaled display coordinates.
	ClipRect [4]float32

	// Texture sampled by this range; nil means the default atlas.
	Texture *gpu.Texture

	// IndexOffset is the first index of this command's range.
	IndexOffset uint32

	// ElemCount is how many indexes this command draws.
	ElemCount uint32
}

// DrawList is an ordered batch of 2D geometry built fresh each frame:
// vertices, indexes, and draw commands carrying clip and texture
// state. Consecutive primitives with the same clip and texture
// coalesce into one command.
type DrawList struct {
	Vertices []Vertex
	Indices  []uint32
	Commands []DrawCommand

	clipStack [][4]float32
	texture   *gpu.Texture
}

// noClip is the clip rectangle in effect with an empty clip stack.
var noClip = [4]float32{0, 0, math.MaxFloat32, math.MaxFloat32}

// Clear resets the list for reuse without freeing its storage.
func (dl *DrawList) Clear() {
	dl.Vertices = dl.Vertices[:0]
	dl.Indices = dl.Indices[:0]
	dl.Commands = dl.Commands[:0]
	dl.clipStack = dl.clipStack[:0]
	dl.texture = nil
}

// PushClip pushes a clip rectangle, intersected with the current one.
func (dl *DrawList) PushClip(x0, y0, x1, y1 float32) {
	cur := dl.CurrentClip()
	dl.clipStack = append(dl.clipStack, [4]float32{
		max(x0, cur[0]), max(y0, cur[1]),
		min(x1, cur[2]), min(y1, cur[3]),
	})
}

// PopClip pops the top clip rectangle.
func (dl *DrawList) PopClip() {
	if len(dl.clipStack) > 0 {
		dl.clipStack = dl.clipStack[:len(dl.clipStack)-1]
	}
}

// CurrentClip returns the clip rectangle in effect.
func (dl *DrawList) CurrentClip() [4]float32 {
	if len(dl.clipStack) == 0 {
		return noClip
	}
	return dl.clipStack[len(dl.clipStack)-1]
}

// SetTexture sets the texture for subsequent primitives.
// nil selects the default font atlas.
func (dl *DrawList) SetTexture(tx *gpu.Texture) {
	dl.texture = tx
}

// command returns the command to append indexes to, coalescing with
// the last one when clip and texture match.
func (dl *DrawList) command() *DrawCommand {
	clip := dl.CurrentClip()
	if n := len(dl.Commands); n > 0 {
		last := &dl.Commands[n-1]
		if last.ClipRect == clip && last.Texture == dl.texture {
			return last
		}
	}
	dl.Commands = append(dl.Commands, DrawCommand{
		ClipRect:    clip,
		Texture:     dl.texture,
		IndexOffset: uint32(len(dl.Indices)),
	})
	return &dl.Commands[len(dl.Commands)-1]
}

// addQuad appends one textured quad.
func (dl *DrawList) addQuad(x0, y0, x1, y1, u0, v0, u1, v1 float32, color uint32) {
	cmd := dl.command()
	base := uint32(len(dl.Vertices))
	dl.Vertices = append(dl.Vertices,
		Vertex{Pos: [2]float32{x0, y0}, UV: [2]float32{u0, v0}, Color: color},
		Vertex{Pos: [2]float32{x1, y0}, UV: [2]float32{u1, v0}, Color: color},
		Vertex{Pos: [2]float32{x1, y1}, UV: [2]float32{u1, v1}, Color: color},
		Vertex{Pos: [2]float32{x0, y1}, UV: [2]float32{u0, v1}, Color: color},
	)
	dl.Indices = append(dl.Indices, base, base+1, base+2, base, base+2, base+3)
	cmd.ElemCount += 6
}

// AddRect appends a solid rectangle, sampling the white texel
// reserved at the default atlas origin so fills and text batch into
// the same command.
func (dl *DrawList) AddRect(x0, y0, x1, y1 float32, color uint32) {
	dl.addQuad(x0, y0, x1, y1, whiteU, whiteV, whiteU, whiteV, color)
}

// AddImage appends a textured rectangle using the given UV range.
// The texture set by [DrawList.SetTexture] applies.
func (dl *DrawList) AddImage(x0, y0, x1, y1, u0, v0, u1, v1 float32, color uint32) {
	dl.addQuad(x0, y0, x1, y1, u0, v0, u1, v1, color)
}

// AddText appends the string's glyph quads from the atlas, with the
// pen starting at (x, y) as the line top. Returns the pen x after the
// last glyph. The caller must have selected the atlas texture.
func (dl *DrawList) AddText(fa *FontAtlas, x, y float32, color uint32, text string) float32 {
	for _, r := range text {
		gi := fa.Glyph(r)
		if r != ' ' {
			dl.addQuad(x, y, x+gi.Width, y+gi.Height, gi.U0, gi.V0, gi.U1, gi.V1, color)
		}
		x += gi.Advance
	}
	return x
}

// AddRawIndexed appends pre-built geometry as one command range,
// rebasing the given indexes onto this list's vertices.
func (dl *DrawList) AddRawIndexed(verts []Vertex, idxs []uint32) {
	cmd := dl.command()
	base := uint32(len(dl.Vertices))
	dl.Vertices = append(dl.Vertices, verts...)
	for _, ix := range idxs {
		dl.Indices = append(dl.Indices, base+ix)
	}
	cmd.ElemCount += uint32(len(idxs))
}

// VertexBytes returns the byte size of the list's vertex data.
func (dl *DrawList) VertexBytes() int { return len(dl.Vertices) * VertexSize }

// IndexBytes returns the byte size of the list's index data.
func (dl *DrawList) IndexBytes() int { return len(dl.Indices) * 4 }

// vertexBytes returns the vertex data as raw bytes for upload.
func (dl *DrawList) vertexBytes() []byte { return wgpu.ToBytes(dl.Vertices) }

// indexBytes returns the index data as raw bytes for upload.
func (dl *DrawList) indexBytes() []byte { return wgpu.ToBytes(dl.Indices) }
