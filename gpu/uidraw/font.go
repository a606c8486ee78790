// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uidraw

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// GlyphInfo locates one glyph in a font atlas.
type GlyphInfo struct {
	// U0, V0, U1, V1 are the glyph's normalized atlas coordinates.
	U0, V0, U1, V1 float32

	// Width and Height of the glyph quad, in pixels.
	Width, Height float32

	// Advance is the horizontal pen advance, in pixels.
	Advance float32
}

// FontAtlas is a glyph atlas image plus per-rune placement info,
// used by [DrawList.AddText]. The default atlas renders the fixed
// basicfont face covering printable ASCII.
type FontAtlas struct {
	// Image holds the white-on-transparent glyph atlas.
	Image *image.RGBA

	// Glyphs maps runes to their atlas placement.
	Glyphs map[rune]GlyphInfo

	// Height is the line height in pixels.
	Height float32

	// Ascent is the baseline offset from the line top, in pixels.
	Ascent float32
}

const (
	atlasFirstRune = 32  // space
	atlasLastRune  = 126 // tilde
	atlasCols      = 16
)

// whiteU, whiteV address the solid white texel reserved at the atlas
// origin, used by solid-fill rectangles. Set when the default atlas
// is built.
var whiteU, whiteV float32

// NewBasicFontAtlas builds the default glyph atlas from the fixed
// 7x13 basicfont face, covering printable ASCII.
func NewBasicFontAtlas() *FontAtlas {
	face := basicfont.Face7x13
	cw := face.Advance + 1
	ch := face.Height + 1
	n := atlasLastRune - atlasFirstRune + 1
	rows := (n + atlasCols - 1) / atlasCols
	img := image.NewRGBA(image.Rect(0, 0, atlasCols*cw, rows*ch))
	fa := &FontAtlas{
		Image:  img,
		Glyphs: make(map[rune]GlyphInfo, n),
		Height: float32(face.Height),
		Ascent: float32(face.Ascent),
	}
	aw := float32(img.Rect.Dx())
	ah := float32(img.Rect.Dy())
	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	for i := range n {
		r := rune(atlasFirstRune + i)
		col := i % atlasCols
		row := i / atlasCols
		x := col * cw
		y := row * ch
		dr.Dot = fixed.P(x, y+face.Ascent)
		dr.DrawString(string(r))
		fa.Glyphs[r] = GlyphInfo{
			U0:      float32(x) / aw,
			V0:      float32(y) / ah,
			U1:      float32(x+face.Advance) / aw,
			V1:      float32(y+face.Height) / ah,
			Width:   float32(face.Advance),
			Height:  float32(face.Height),
			Advance: float32(face.Advance),
		}
	}
	// reserve a white texel in the space glyph's (empty) cell for
	// solid fills.
	img.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	whiteU = 0.5 / aw
	whiteV = 0.5 / ah
	return fa
}

// Glyph returns placement for the rune, substituting '?' for runes
// outside the atlas.
func (fa *FontAtlas) Glyph(r rune) GlyphInfo {
	if gi, ok := fa.Glyphs[r]; ok {
		return gi
	}
	return fa.Glyphs['?']
}

// MeasureText returns the pixel width of the string in this atlas.
func (fa *FontAtlas) MeasureText(text string) float32 {
	w := float32(0)
	for _, r := range text {
		w += fa.Glyph(r).Advance
	}
	return w
}
