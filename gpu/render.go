// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"image/color"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

// Render manages the auxiliary attachments and clear state for
// rendering to a target: the depth buffer and, when multisampling,
// the intermediate multisampled color texture that resolves into the
// frame's view.
type Render struct {
	// Format of the color target. Samples > 1 enables the
	// multisample path.
	Format TextureFormat

	// ClearColor is the color the pass clears to.
	ClearColor color.Color

	// ClearDepth is the depth the pass clears to.
	ClearDepth float32

	// ClearStencil is the stencil value the pass clears to.
	ClearStencil uint32

	// Depth is the depth attachment; nil when DepthFormat is undefined.
	Depth *Texture

	// Multi is the multisampled color texture, when Samples > 1.
	Multi *Texture

	// DepthFormat is the depth buffer format;
	// TextureFormatUndefined disables the depth attachment.
	DepthFormat wgpu.TextureFormat

	device *Device
}

// Config initializes the render state for the given color format and
// depth format (TextureFormatUndefined for none).
func (rd *Render) Config(dev *Device, tf *TextureFormat, depthFmt wgpu.TextureFormat) {
	rd.device = dev
	rd.Format = *tf
	rd.DepthFormat = depthFmt
	rd.ClearColor = color.RGBA{50, 50, 50, 255}
	rd.ClearDepth = 1
	rd.ClearStencil = 0
	errors.Log(rd.SetSize(rd.Format.Size))
}

// SetSize reallocates the depth and multisample attachments for the
// given size, if it changed.
func (rd *Render) SetSize(sz image.Point) error {
	if rd.Depth != nil && rd.Format.Size == sz {
		return nil
	}
	rd.Format.Size = sz
	rd.releaseAttachments()
	if rd.DepthFormat != wgpu.TextureFormatUndefined {
		df := TextureFormat{Dimension: Texture2D, Size: sz, Depth: 1, Layers: 1, Levels: 1,
			Samples: rd.Format.Samples, Format: rd.DepthFormat, Usage: TextureRenderTarget}
		dt, err := NewTexture(rd.device, "render-depth", &df)
		if err != nil {
			return err
		}
		rd.Depth = dt
	}
	if rd.Format.Samples > 1 {
		mf := rd.Format
		mf.Usage = TextureRenderTarget
		mt, err := NewTexture(rd.device, "render-msaa", &mf)
		if err != nil {
			return err
		}
		rd.Multi = mt
	}
	return nil
}

// BeginRenderPass begins a pass that clears the attachments.
func (rd *Render) BeginRenderPass(enc *wgpu.CommandEncoder, view *wgpu.TextureView) *wgpu.RenderPassEncoder {
	return rd.beginRenderPass(enc, view, wgpu.LoadOpClear)
}

// BeginRenderPassNoClear begins a pass that preserves prior contents.
func (rd *Render) BeginRenderPassNoClear(enc *wgpu.CommandEncoder, view *wgpu.TextureView) *wgpu.RenderPassEncoder {
	return rd.beginRenderPass(enc, view, wgpu.LoadOpLoad)
}

func (rd *Render) beginRenderPass(enc *wgpu.CommandEncoder, view *wgpu.TextureView, load wgpu.LoadOp) *wgpu.RenderPassEncoder {
	r, g, b, a := rd.ClearColor.RGBA()
	clear := wgpu.Color{R: float64(r) / 0xffff, G: float64(g) / 0xffff,
		B: float64(b) / 0xffff, A: float64(a) / 0xffff}
	ca := wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     load,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clear,
	}
	if rd.Multi != nil {
		ca.View = rd.Multi.View()
		ca.ResolveTarget = view
	}
	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{ca},
	}
	if rd.Depth != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            rd.Depth.View(),
			DepthLoadOp:     load,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: rd.ClearDepth,
		}
	}
	return enc.BeginRenderPass(desc)
}

func (rd *Render) releaseAttachments() {
	if rd.Depth != nil {
		rd.Depth.Release()
		rd.Depth = nil
	}
	if rd.Multi != nil {
		rd.Multi.Release()
		rd.Multi = nil
	}
}

func (rd *Render) Release() {
	rd.releaseAttachments()
}
