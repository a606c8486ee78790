// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
	"github.com/ember3d/ember/base/slicesx"
)

// Texture wraps a WebGPU texture resource with its format, sampler,
// and CPU transfer machinery. Textures created by [NewTexture] are
// owned: the wrapper created the underlying resource and will release
// it. Textures wrapping an externally created resource
// ([AdoptTexture]) are not owned and reject mutating operations.
type Texture struct {
	Name string

	// Format describes the shape, pixel format, and usage.
	Format TextureFormat

	// Sampler is how shaders sample this texture.
	Sampler Sampler

	device  *Device
	texture *wgpu.Texture
	view    *wgpu.TextureView

	// owned is set when this wrapper created the resource.
	owned bool

	// mipmapped is set once mip levels hold generated content.
	mipmapped bool

	released bool

	// readback staging buffer, reused across reads of the same shape.
	staging         *wgpu.Buffer
	stagingRowBytes int
	stagingSize     int
}

// NewTexture creates a texture on the device per the given format.
// The format is clamped (zero extents are promoted to 1) and then
// validated; validation failures wrap [ErrValidation].
func NewTexture(dev *Device, name string, tf *TextureFormat) (*Texture, error) {
	f := *tf
	f.Clamp()
	if err := f.Validate(); err != nil {
		return nil, errors.Log(err)
	}
	wt, err := dev.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         name,
		Size:          f.Extent3D(),
		MipLevelCount: uint32(f.Levels),
		SampleCount:   uint32(f.Samples),
		Dimension:     f.Dimension.Dimension(),
		Format:        f.Format,
		Usage:         f.Usage.Usage(),
	})
	if err != nil {
		return nil, errors.Log(errors.Wrap(err, "gpu: texture creation failed"))
	}
	tx := &Texture{Name: name, Format: f, device: dev, texture: wt, owned: true}
	tx.Sampler.Defaults()
	if err := tx.configView(); err != nil {
		wt.Release()
		return nil, err
	}
	return tx, nil
}

// AdoptTexture wraps an externally created WebGPU texture, for
// example one produced by a video decoder or a surface. The wrapper
// does not own the resource: it will never release it, and mutating
// operations on it fail with [ErrOwnership]. The given format must
// describe the actual resource; a dimensionality different from
// expect fails with [ErrTypeMismatch].
func AdoptTexture(dev *Device, wt *wgpu.Texture, tf *TextureFormat, expect TextureDimension) (*Texture, error) {
	if tf.Dimension != expect {
		return nil, errors.Log(fmt.Errorf("%w: have %s, expected %s",
			ErrTypeMismatch, tf.Dimension, expect))
	}
	tx := &Texture{Name: "adopted", Format: *tf, device: dev, texture: wt, owned: false}
	tx.Sampler.Defaults()
	if err := tx.configView(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Texture) configView() error {
	view, err := tx.texture.CreateView(nil)
	if err != nil {
		return errors.Log(errors.Wrap(err, "gpu: texture view failed"))
	}
	tx.view = view
	return nil
}

// Texture returns the underlying WebGPU texture handle.
func (tx *Texture) Texture() *wgpu.Texture { return tx.texture }

// View returns the full-resource texture view.
func (tx *Texture) View() *wgpu.TextureView { return tx.view }

// Owned reports whether this wrapper owns the underlying resource.
func (tx *Texture) Owned() bool { return tx.owned }

// Mipmapped reports whether mip levels hold generated content.
func (tx *Texture) Mipmapped() bool { return tx.mipmapped }

// Bounds returns the 2D bounds of mip level 0.
func (tx *Texture) Bounds() image.Rectangle { return tx.Format.Bounds() }

// Equal reports whether the two textures are structurally
// compatible: same dimensions, depth, layers, mip levels, and pixel
// format, comparing sample counts only when compareSamples is set.
// A nil other is never equal. Identity is not considered.
func (tx *Texture) Equal(other *Texture, compareSamples bool) bool {
	if other == nil {
		return false
	}
	return tx.Format.Equal(&other.Format, compareSamples)
}

// MemoryUsage returns the resource's total byte footprint,
// including the full mip chain when mipmaps were generated.
func (tx *Texture) MemoryUsage() int {
	sz := tx.Format.TotalByteSize()
	if !tx.mipmapped {
		return sz
	}
	total := 0
	for lv := range tx.Format.Levels {
		w, h, d := tx.Format.LevelSize(lv)
		total += w * h * d * tx.Format.Layers * tx.Format.BytesPerPixel()
	}
	return total
}

func (tx *Texture) checkWritable() error {
	if tx.released {
		return errors.Log(fmt.Errorf("%w: texture %q", ErrReleased, tx.Name))
	}
	if !tx.owned {
		return errors.Log(fmt.Errorf("%w: texture %q is adopted", ErrOwnership, tx.Name))
	}
	return nil
}

// WriteRegion writes tightly packed pixel data into a sub-region of
// the given layer and mip level. The data must hold at least the
// region's byte size ([ErrInsufficientBuffer] otherwise); region and
// index bounds violations wrap [ErrRange]; writing to an adopted
// texture wraps [ErrOwnership].
func (tx *Texture) WriteRegion(data []byte, rg Region, layer, level int) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	if err := tx.Format.ValidateRegion(rg, layer, level); err != nil {
		return errors.Log(err)
	}
	need := rg.ByteSize(&tx.Format)
	if len(data) < need {
		return errors.Log(fmt.Errorf("%w: have %d bytes, region needs %d",
			ErrInsufficientBuffer, len(data), need))
	}
	bpp := tx.Format.BytesPerPixel()
	org := wgpu.Origin3D{X: uint32(rg.X), Y: uint32(rg.Y), Z: uint32(rg.Z)}
	if tx.Format.Dimension != Texture3D {
		org.Z = uint32(layer)
	}
	tx.device.Queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Aspect:   wgpu.TextureAspectAll,
			Texture:  tx.texture,
			MipLevel: uint32(level),
			Origin:   org,
		},
		data[:need],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rg.Width * bpp),
			RowsPerImage: uint32(rg.Height),
		},
		&wgpu.Extent3D{
			Width:              uint32(rg.Width),
			Height:             uint32(rg.Height),
			DepthOrArrayLayers: uint32(rg.Depth),
		})
	return nil
}

// Write writes tightly packed pixel data covering all of mip level 0
// of the given layer.
func (tx *Texture) Write(data []byte, layer int) error {
	return tx.WriteRegion(data, Region{Width: tx.Format.Size.X, Height: tx.Format.Size.Y,
		Depth: tx.Format.Depth}, layer, 0)
}

// WriteImage writes the given image into layer 0, mip level 0.
// The image is converted to RGBA if needed.
func (tx *Texture) WriteImage(img image.Image) error {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*rgba.Rect.Dx() {
		b := img.Bounds()
		nr := image.NewRGBA(image.Rectangle{Max: b.Size()})
		for y := range b.Dy() {
			for x := range b.Dx() {
				nr.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
		rgba = nr
	}
	return tx.Write(rgba.Pix, 0)
}

// WriteRegionFrom writes a region from a slice of any fixed-size
// element type, e.g. float32 pixels for float formats.
func WriteRegionFrom[E any](tx *Texture, data []E, rg Region, layer, level int) error {
	return tx.WriteRegion(wgpu.ToBytes(data), rg, layer, level)
}

// stagingRowAlign is the required row pitch alignment for
// texture-to-buffer copies.
const stagingRowAlign = 256

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// configStaging ensures the readback buffer covers the given
// row-aligned transfer size, reusing the prior buffer when it fits.
func (tx *Texture) configStaging(rowBytes, rows int) error {
	need := rowBytes * rows
	if tx.staging != nil && tx.stagingSize >= need {
		tx.stagingRowBytes = rowBytes
		return nil
	}
	if tx.staging != nil {
		tx.staging.Release()
		tx.staging = nil
	}
	buf, err := tx.device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: tx.Name + "-staging",
		Size:  uint64(need),
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return errors.Log(errors.Wrap(err, "gpu: staging buffer failed"))
	}
	tx.staging = buf
	tx.stagingRowBytes = rowBytes
	tx.stagingSize = need
	return nil
}

// ReadRegion reads a sub-region of the given layer and mip level into
// dst, tightly packed. It is synchronous: the call blocks until the
// GPU has produced the data. dst must hold at least the region's byte
// size ([ErrInsufficientBuffer] otherwise). The texture must have been
// created with a usage that allows GPU-to-CPU transfer:
// [TextureStaging], [TextureRenderTarget], or [TextureMipmaps].
func (tx *Texture) ReadRegion(dst []byte, rg Region, layer, level int) error {
	if tx.released {
		return errors.Log(fmt.Errorf("%w: texture %q", ErrReleased, tx.Name))
	}
	if tx.Format.Usage.Usage()&wgpu.TextureUsageCopySrc == 0 {
		return errors.Log(fmt.Errorf("%w: texture %q not created for readback", ErrUnsupported, tx.Name))
	}
	if err := tx.Format.ValidateRegion(rg, layer, level); err != nil {
		return errors.Log(err)
	}
	need := rg.ByteSize(&tx.Format)
	if len(dst) < need {
		return errors.Log(fmt.Errorf("%w: have %d bytes, region needs %d",
			ErrInsufficientBuffer, len(dst), need))
	}
	bpp := tx.Format.BytesPerPixel()
	rowBytes := alignUp(rg.Width*bpp, stagingRowAlign)
	rows := rg.Height * rg.Depth
	if err := tx.configStaging(rowBytes, rows); err != nil {
		return err
	}
	enc, err := tx.device.Device.CreateCommandEncoder(nil)
	if err != nil {
		return errors.Log(err)
	}
	defer enc.Release()
	org := wgpu.Origin3D{X: uint32(rg.X), Y: uint32(rg.Y), Z: uint32(rg.Z)}
	if tx.Format.Dimension != Texture3D {
		org.Z = uint32(layer)
	}
	enc.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Aspect:   wgpu.TextureAspectAll,
			Texture:  tx.texture,
			MipLevel: uint32(level),
			Origin:   org,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: tx.staging,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(rowBytes),
				RowsPerImage: uint32(rg.Height),
			},
		},
		&wgpu.Extent3D{
			Width:              uint32(rg.Width),
			Height:             uint32(rg.Height),
			DepthOrArrayLayers: uint32(rg.Depth),
		})
	cmd, err := enc.Finish(nil)
	if err != nil {
		return errors.Log(err)
	}
	defer cmd.Release()
	tx.device.Queue.Submit(cmd)

	var mapErr error
	mapped := false
	tx.staging.MapAsync(wgpu.MapModeRead, 0, uint64(rowBytes*rows),
		func(status wgpu.BufferMapAsyncStatus) {
			if status != wgpu.BufferMapAsyncStatusSuccess {
				mapErr = fmt.Errorf("gpu: readback map failed: %v", status)
			}
			mapped = true
		})
	tx.device.WaitDone()
	if !mapped || mapErr != nil {
		if mapErr == nil {
			mapErr = fmt.Errorf("gpu: readback map never completed")
		}
		return errors.Log(mapErr)
	}
	defer tx.staging.Unmap()
	src := tx.staging.GetMappedRange(0, uint(rowBytes*rows))
	tight := rg.Width * bpp
	for r := range rows {
		copy(dst[r*tight:(r+1)*tight], src[r*rowBytes:r*rowBytes+tight])
	}
	return nil
}

// ReadRegionTo reads a region into a slice of any fixed-size element
// type. The slice must hold at least the region's byte size.
func ReadRegionTo[E any](tx *Texture, dst []E, rg Region, layer, level int) error {
	return tx.ReadRegion(wgpu.ToBytes(dst), rg, layer, level)
}

// ReadPixel reads one pixel at (x, y) of layer 0, mip level 0,
// returning its raw bytes. Synchronous.
func (tx *Texture) ReadPixel(x, y int) ([]byte, error) {
	px := make([]byte, tx.Format.BytesPerPixel())
	err := tx.ReadRegion(px, Region{X: x, Y: y, Width: 1, Height: 1, Depth: 1}, 0, 0)
	if err != nil {
		return nil, err
	}
	return px, nil
}

// GenerateMipmaps fills mip levels 1..Levels-1 from level 0 by
// successive box filtering, uploading each level, and blocks until
// the uploads complete. The texture must have been created with
// [TextureMipmaps] usage ([ErrUnsupported] otherwise) and more than
// one mip level. Only 2D byte-per-channel formats are supported.
func (tx *Texture) GenerateMipmaps() error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	if !tx.Format.Usage.HasFlags(TextureMipmaps) {
		return errors.Log(fmt.Errorf("%w: texture %q lacks mipmap usage", ErrUnsupported, tx.Name))
	}
	if tx.Format.Levels <= 1 {
		return errors.Log(fmt.Errorf("%w: texture %q has a single mip level", ErrUnsupported, tx.Name))
	}
	if tx.Format.Dimension != Texture2D || tx.Format.BytesPerPixel() != 4 {
		return errors.Log(fmt.Errorf("%w: mipmap generation needs a 2D 4-byte format", ErrUnsupported))
	}
	var cur, next []byte
	for layer := range tx.Format.Layers {
		w, h := tx.Format.Size.X, tx.Format.Size.Y
		cur = slicesx.SetLength(cur, w*h*4)
		if err := tx.ReadRegion(cur, Region{Width: w, Height: h, Depth: 1}, layer, 0); err != nil {
			return err
		}
		for lv := 1; lv < tx.Format.Levels; lv++ {
			nw, nh := max(w/2, 1), max(h/2, 1)
			next = slicesx.SetLength(next, nw*nh*4)
			downsampleBox(next, cur, w, h, nw, nh)
			if err := tx.WriteRegion(next, Region{Width: nw, Height: nh, Depth: 1}, layer, lv); err != nil {
				return err
			}
			cur, next = next, cur
			w, h = nw, nh
		}
	}
	tx.device.WaitDone()
	tx.mipmapped = true
	return nil
}

// downsampleBox halves an RGBA8 image with a 2x2 box filter,
// writing into dst, which must hold nw*nh*4 bytes.
func downsampleBox(dst, src []byte, w, h, nw, nh int) {
	for y := range nh {
		sy0 := min(y*2, h-1)
		sy1 := min(sy0+1, h-1)
		for x := range nw {
			sx0 := min(x*2, w-1)
			sx1 := min(sx0+1, w-1)
			di := (y*nw + x) * 4
			for c := range 4 {
				sum := int(src[(sy0*w+sx0)*4+c]) + int(src[(sy0*w+sx1)*4+c]) +
					int(src[(sy1*w+sx0)*4+c]) + int(src[(sy1*w+sx1)*4+c])
				dst[di+c] = byte(sum / 4)
			}
		}
	}
}

// Release releases the texture's view, sampler, staging buffer, and,
// when owned, the underlying WebGPU texture. Idempotent: repeated
// calls are no-ops, and an adopted texture's resource is never
// released by its wrapper.
func (tx *Texture) Release() {
	if tx.released {
		return
	}
	tx.released = true
	if tx.view != nil {
		tx.view.Release()
		tx.view = nil
	}
	tx.Sampler.Release()
	if tx.staging != nil {
		tx.staging.Release()
		tx.staging = nil
	}
	if tx.owned && tx.texture != nil {
		tx.texture.Release()
	}
	tx.texture = nil
}
