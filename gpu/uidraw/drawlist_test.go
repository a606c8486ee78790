// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uidraw

import (
	"testing"

	"github.com/ember3d/ember/gpu"
	"github.com/stretchr/testify/assert"
)

func TestAddRect(t *testing.T) {
	dl := &DrawList{}
	dl.AddRect(0, 0, 100, 50, ColorWhite)
	assert.Len(t, dl.Vertices, 4)
	assert.Len(t, dl.Indices, 6)
	assert.Len(t, dl.Commands, 1)
	assert.Equal(t, uint32(6), dl.Commands[0].ElemCount)
	assert.Equal(t, uint32(0), dl.Commands[0].IndexOffset)
}

func TestCommandCoalescing(t *testing.T) {
	dl := &DrawList{}
	dl.AddRect(0, 0, 10, 10, ColorWhite)
	dl.AddRect(20, 0, 30, 10, ColorWhite)
	// same clip and texture: one command covering both
	assert.Len(t, dl.Commands, 1)
	assert.Equal(t, uint32(12), dl.Commands[0].ElemCount)

	// changing clip state splits the command
	dl.PushClip(0, 0, 50, 50)
	dl.AddRect(0, 0, 10, 10, ColorWhite)
	assert.Len(t, dl.Commands, 2)
	assert.Equal(t, uint32(12), dl.Commands[1].IndexOffset)
	assert.Equal(t, uint32(6), dl.Commands[1].ElemCount)

	// changing texture splits too
	tx := &gpu.Texture{}
	dl.SetTexture(tx)
	dl.AddRect(0, 0, 10, 10, ColorWhite)
	assert.Len(t, dl.Commands, 3)
	assert.Same(t, tx, dl.Commands[2].Texture)
}

func TestClipStack(t *testing.T) {
	dl := &DrawList{}
	assert.Equal(t, noClip, dl.CurrentClip())

	dl.PushClip(10, 10, 100, 100)
	assert.Equal(t, [4]float32{10, 10, 100, 100}, dl.CurrentClip())

	// nested clips intersect
	dl.PushClip(0, 50, 80, 200)
	assert.Equal(t, [4]float32{10, 50, 80, 100}, dl.CurrentClip())

	dl.PopClip()
	assert.Equal(t, [4]float32{10, 10, 100, 100}, dl.CurrentClip())
	dl.PopClip()
	assert.Equal(t, noClip, dl.CurrentClip())

	// popping an empty stack is safe
	dl.PopClip()
	assert.Equal(t, noClip, dl.CurrentClip())
}

func TestAddText(t *testing.T) {
	fa := NewBasicFontAtlas()
	dl := &DrawList{}
	endX := dl.AddText(fa, 5, 5, ColorWhite, "ab c")
	assert.Equal(t, 5+4*7, int(endX))
	// space adds no quad
	assert.Len(t, dl.Vertices, 3*4)
	assert.Len(t, dl.Indices, 3*6)
	assert.Len(t, dl.Commands, 1)
}

func TestAddRawIndexed(t *testing.T) {
	dl := &DrawList{}
	dl.AddRect(0, 0, 10, 10, ColorWhite)
	verts := []Vertex{
		{Pos: [2]float32{0, 0}},
		{Pos: [2]float32{1, 0}},
		{Pos: [2]float32{0, 1}},
	}
	dl.AddRawIndexed(verts, []uint32{0, 1, 2})
	assert.Len(t, dl.Vertices, 7)
	// indexes rebased past the rect's 4 vertices
	assert.Equal(t, uint32(4), dl.Indices[6])
	assert.Equal(t, uint32(6), dl.Indices[8])
	assert.Equal(t, uint32(9), dl.Commands[0].ElemCount)
}

func TestByteSizes(t *testing.T) {
	dl := &DrawList{}
	dl.AddRect(0, 0, 10, 10, ColorWhite)
	assert.Equal(t, 4*VertexSize, dl.VertexBytes())
	assert.Equal(t, 6*4, dl.IndexBytes())

	// a list with geometry but no commands still reports sizes
	empty := &DrawList{Vertices: make([]Vertex, 8), Indices: make([]uint32, 12)}
	assert.Equal(t, 8*VertexSize, empty.VertexBytes())
	assert.Equal(t, 12*4, empty.IndexBytes())
	assert.Empty(t, empty.Commands)
}

func TestClear(t *testing.T) {
	dl := &DrawList{}
	dl.PushClip(0, 0, 10, 10)
	dl.SetTexture(&gpu.Texture{})
	dl.AddRect(0, 0, 5, 5, ColorWhite)
	dl.Clear()
	assert.Empty(t, dl.Vertices)
	assert.Empty(t, dl.Indices)
	assert.Empty(t, dl.Commands)
	assert.Equal(t, noClip, dl.CurrentClip())
	assert.Nil(t, dl.texture)
}
