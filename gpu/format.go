// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureDimension is the dimensionality of a texture resource.
type TextureDimension int32

const (
	Texture2D TextureDimension = iota
	Texture1D
	Texture3D
	TextureCube
)

func (td TextureDimension) String() string {
	switch td {
	case Texture1D:
		return "1D"
	case Texture3D:
		return "3D"
	case TextureCube:
		return "Cube"
	default:
		return "2D"
	}
}

// Dimension returns the WebGPU texture dimension. Cube textures are
// 2D textures with six array layers at the resource level.
func (td TextureDimension) Dimension() wgpu.TextureDimension {
	switch td {
	case Texture1D:
		return wgpu.TextureDimension1D
	case Texture3D:
		return wgpu.TextureDimension3D
	default:
		return wgpu.TextureDimension2D
	}
}

// TextureUsages are the usage flags a texture is created with.
// Flags combine with bitwise OR.
type TextureUsages int32

const (
	// TextureSampled allows binding the texture to a shader sampler.
	TextureSampled TextureUsages = 1 << iota

	// TextureRenderTarget allows rendering into the texture.
	TextureRenderTarget

	// TextureStaging allows CPU read/write transfer through the
	// staging path.
	TextureStaging

	// TextureMipmaps allows mipmap generation on the texture.
	TextureMipmaps
)

// HasFlags reports whether all the given flags are set.
func (tu TextureUsages) HasFlags(flags TextureUsages) bool {
	return tu&flags == flags
}

// Usage returns the WebGPU usage bits implied by these flags.
func (tu TextureUsages) Usage() wgpu.TextureUsage {
	us := wgpu.TextureUsageNone
	if tu.HasFlags(TextureSampled) {
		us |= wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	}
	if tu.HasFlags(TextureRenderTarget) {
		us |= wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc
	}
	if tu.HasFlags(TextureStaging) {
		us |= wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst
	}
	if tu.HasFlags(TextureMipmaps) {
		us |= wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst
	}
	return us
}

// TextureFormatSizes gives the size in bytes of one pixel for the
// texture formats this core supports. A format missing from this
// table is rejected at validation.
var TextureFormatSizes = map[wgpu.TextureFormat]int{
	wgpu.TextureFormatR8Unorm:         1,
	wgpu.TextureFormatR16Uint:         2,
	wgpu.TextureFormatR16Sint:         2,
	wgpu.TextureFormatR32Uint:         4,
	wgpu.TextureFormatR32Sint:         4,
	wgpu.TextureFormatR32Float:        4,
	wgpu.TextureFormatRG32Float:       8,
	wgpu.TextureFormatRGBA8Unorm:      4,
	wgpu.TextureFormatRGBA8UnormSrgb:  4,
	wgpu.TextureFormatBGRA8Unorm:      4,
	wgpu.TextureFormatBGRA8UnormSrgb:  4,
	wgpu.TextureFormatRGBA16Float:     8,
	wgpu.TextureFormatRGBA32Float:     16,
	wgpu.TextureFormatDepth32Float:    4,
	wgpu.TextureFormatDepth24Plus:     4,
}

// TextureFormat describes the shape, pixel format, and usage of a
// texture resource.
type TextureFormat struct {
	// Dimension is the dimensionality: 1D, 2D, 3D, or cube.
	Dimension TextureDimension

	// Size of one layer, in pixels.
	Size image.Point

	// Depth for 3D textures; 1 otherwise.
	Depth int

	// Layers is the number of array layers (6 per face set for cubes).
	Layers int

	// Levels is the number of mip levels.
	Levels int

	// Samples is the MSAA sample count; 1 = no multisampling.
	Samples int

	// Format is the pixel format; RGBA8UnormSrgb is the default.
	Format wgpu.TextureFormat

	// Usage flags the texture is created with.
	Usage TextureUsages
}

// NewTextureFormat returns a 2D sampled TextureFormat of given size,
// with one layer, one mip level, and no multisampling.
func NewTextureFormat(width, height int) *TextureFormat {
	tf := &TextureFormat{}
	tf.Defaults()
	tf.Size = image.Point{width, height}
	tf.Clamp()
	return tf
}

// Defaults sets default format: 2D, RGBA8UnormSrgb, sampled,
// single layer / level / sample.
func (tf *TextureFormat) Defaults() {
	tf.Dimension = Texture2D
	tf.Format = wgpu.TextureFormatRGBA8UnormSrgb
	tf.Usage = TextureSampled | TextureStaging
	tf.Size = image.Point{1, 1}
	tf.Depth = 1
	tf.Layers = 1
	tf.Levels = 1
	tf.Samples = 1
}

// Clamp raises every extent, layer, level, and sample field to a
// minimum of 1. Requested zero extents are silently promoted before
// validation, never rejected.
func (tf *TextureFormat) Clamp() {
	tf.Size.X = max(tf.Size.X, 1)
	tf.Size.Y = max(tf.Size.Y, 1)
	tf.Depth = max(tf.Depth, 1)
	tf.Layers = max(tf.Layers, 1)
	tf.Levels = max(tf.Levels, 1)
	tf.Samples = max(tf.Samples, 1)
}

// Validate checks that the (already clamped) description is one the
// backend supports, returning an error wrapping [ErrValidation]
// otherwise.
func (tf *TextureFormat) Validate() error {
	if _, ok := TextureFormatSizes[tf.Format]; !ok {
		return fmt.Errorf("%w: unsupported pixel format %v", ErrValidation, tf.Format)
	}
	switch tf.Samples {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("%w: sample count %d not supported", ErrValidation, tf.Samples)
	}
	if tf.Samples > 1 && tf.Levels > 1 {
		return fmt.Errorf("%w: multisampled texture cannot have mip levels", ErrValidation)
	}
	if tf.Levels > tf.MaxLevels() {
		return fmt.Errorf("%w: %d mip levels exceeds maximum %d for %dx%d",
			ErrValidation, tf.Levels, tf.MaxLevels(), tf.Size.X, tf.Size.Y)
	}
	switch tf.Dimension {
	case Texture1D:
		if tf.Size.Y != 1 || tf.Depth != 1 {
			return fmt.Errorf("%w: 1D texture must have height and depth 1", ErrValidation)
		}
	case Texture3D:
		if tf.Layers != 1 {
			return fmt.Errorf("%w: 3D texture cannot be arrayed", ErrValidation)
		}
		if tf.Samples != 1 {
			return fmt.Errorf("%w: 3D texture cannot be multisampled", ErrValidation)
		}
	case TextureCube:
		if tf.Layers%6 != 0 {
			return fmt.Errorf("%w: cube texture needs a multiple of 6 layers, has %d", ErrValidation, tf.Layers)
		}
		if tf.Size.X != tf.Size.Y {
			return fmt.Errorf("%w: cube texture must be square", ErrValidation)
		}
	default:
		if tf.Depth != 1 {
			return fmt.Errorf("%w: 2D texture must have depth 1", ErrValidation)
		}
	}
	return nil
}

// MaxLevels returns the length of the full mip chain for the
// current extents.
func (tf *TextureFormat) MaxLevels() int {
	mx := max(tf.Size.X, tf.Size.Y, tf.Depth)
	if mx <= 1 {
		return 1
	}
	return int(math32.Floor(math32.Log2(float32(mx)))) + 1
}

// LevelSize returns the extents of the given mip level.
func (tf *TextureFormat) LevelSize(level int) (w, h, d int) {
	w = max(tf.Size.X>>level, 1)
	h = max(tf.Size.Y>>level, 1)
	d = max(tf.Depth>>level, 1)
	return
}

// BytesPerPixel returns the size of one pixel in bytes,
// or 0 for an unsupported format.
func (tf *TextureFormat) BytesPerPixel() int {
	return TextureFormatSizes[tf.Format]
}

// TotalByteSize returns the total memory footprint of mip level 0
// across all layers: width * height * depth * layers * bytes-per-pixel.
func (tf *TextureFormat) TotalByteSize() int {
	return tf.Size.X * tf.Size.Y * tf.Depth * tf.Layers * tf.BytesPerPixel()
}

// Bounds returns the 2D bounds of mip level 0.
func (tf *TextureFormat) Bounds() image.Rectangle {
	return image.Rectangle{Max: tf.Size}
}

// Extent3D returns the WebGPU extent for mip level 0.
// For 2D textures the third extent carries the layer count.
func (tf *TextureFormat) Extent3D() wgpu.Extent3D {
	dal := tf.Layers
	if tf.Dimension == Texture3D {
		dal = tf.Depth
	}
	return wgpu.Extent3D{
		Width:              uint32(tf.Size.X),
		Height:             uint32(tf.Size.Y),
		DepthOrArrayLayers: uint32(dal),
	}
}

// SetMultisample sets the sample count, clamped to a supported value.
func (tf *TextureFormat) SetMultisample(samples int) {
	switch {
	case samples >= 8:
		tf.Samples = 8
	case samples >= 4:
		tf.Samples = 4
	case samples >= 2:
		tf.Samples = 2
	default:
		tf.Samples = 1
	}
}

// Equal reports whether the two formats are structurally compatible:
// same dimensions, depth, layers, mip levels, and pixel format.
// Sample counts are compared only when compareSamples is set.
func (tf *TextureFormat) Equal(other *TextureFormat, compareSamples bool) bool {
	if other == nil {
		return false
	}
	if tf.Dimension != other.Dimension || tf.Size != other.Size ||
		tf.Depth != other.Depth || tf.Layers != other.Layers ||
		tf.Levels != other.Levels || tf.Format != other.Format {
		return false
	}
	if compareSamples && tf.Samples != other.Samples {
		return false
	}
	return true
}

func (tf *TextureFormat) String() string {
	return fmt.Sprintf("%s %dx%dx%d layers: %d levels: %d samples: %d format: %v",
		tf.Dimension, tf.Size.X, tf.Size.Y, tf.Depth, tf.Layers, tf.Levels, tf.Samples, tf.Format)
}

// Region is a 3D sub-region of a texture, used by the read / write
// transfer operations. Depth is 1 for 2D textures.
type Region struct {
	X, Y, Z             int
	Width, Height, Depth int
}

// RegionRect returns a depth-1 Region covering the given rectangle.
func RegionRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy(), Depth: 1}
}

// ByteSize returns the tightly packed byte size of the region for
// the given format.
func (rg Region) ByteSize(tf *TextureFormat) int {
	return rg.Width * rg.Height * rg.Depth * tf.BytesPerPixel()
}

// ValidateRegion checks that the region lies within the given mip
// level of the format, has strictly positive extents, and that layer
// and level indexes are in range. Violations wrap [ErrRange].
func (tf *TextureFormat) ValidateRegion(rg Region, layer, level int) error {
	if layer < 0 || layer >= tf.Layers {
		return fmt.Errorf("%w: layer %d not in [0, %d)", ErrRange, layer, tf.Layers)
	}
	if level < 0 || level >= tf.Levels {
		return fmt.Errorf("%w: mip level %d not in [0, %d)", ErrRange, level, tf.Levels)
	}
	if rg.Width <= 0 || rg.Height <= 0 || rg.Depth <= 0 {
		return fmt.Errorf("%w: region extents must be positive, got %dx%dx%d",
			ErrRange, rg.Width, rg.Height, rg.Depth)
	}
	w, h, d := tf.LevelSize(level)
	if rg.X < 0 || rg.Y < 0 || rg.Z < 0 ||
		rg.X+rg.Width > w || rg.Y+rg.Height > h || rg.Z+rg.Depth > d {
		return fmt.Errorf("%w: region %dx%dx%d at (%d,%d,%d) outside %dx%dx%d level %d",
			ErrRange, rg.Width, rg.Height, rg.Depth, rg.X, rg.Y, rg.Z, w, h, d, level)
	}
	return nil
}
