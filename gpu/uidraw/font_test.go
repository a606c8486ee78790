// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uidraw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicFontAtlas(t *testing.T) {
	fa := NewBasicFontAtlas()
	assert.Len(t, fa.Glyphs, atlasLastRune-atlasFirstRune+1)
	assert.Equal(t, float32(13), fa.Height)

	gi := fa.Glyph('A')
	assert.Equal(t, float32(7), gi.Advance)
	assert.Less(t, gi.U0, gi.U1)
	assert.Less(t, gi.V0, gi.V1)

	// runes outside the atlas substitute '?'
	assert.Equal(t, fa.Glyph('?'), fa.Glyph('世'))

	// glyphs actually rendered: 'A' cell has opaque pixels
	found := false
	b := fa.Image.Rect
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if fa.Image.RGBAAt(x, y).A > 0 {
				found = true
				break
			}
		}
	}
	assert.True(t, found)

	// white texel reserved for solid fills
	px := fa.Image.RGBAAt(0, 0)
	assert.Equal(t, uint8(255), px.R)
	assert.Equal(t, uint8(255), px.A)
	assert.Greater(t, whiteU, float32(0))
	assert.Greater(t, whiteV, float32(0))
}

func TestMeasureText(t *testing.T) {
	fa := NewBasicFontAtlas()
	assert.Equal(t, float32(0), fa.MeasureText(""))
	assert.Equal(t, float32(5*7), fa.MeasureText("hello"))
}
