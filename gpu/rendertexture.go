// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

// RenderTexture is a Renderer that renders into offscreen textures
// instead of a window, for headless rendering and tests. It cycles
// through a small set of frame textures the way a swapchain would.
type RenderTexture struct {
	// Format of the frame textures.
	Format TextureFormat

	// NFrames is how many frame textures to cycle through.
	NFrames int

	// Frames are the frame textures.
	Frames []*Texture

	render  Render
	device  *Device
	ownDev  bool
	current int
	curView *wgpu.TextureView

	// pending resize, applied at the next frame boundary.
	pendingSize image.Point

	sync.Mutex
}

// NewRenderTexture creates an offscreen render target of given size
// on its own device. samples > 1 enables multisampling; depthFmt of
// TextureFormatUndefined disables the depth attachment.
func NewRenderTexture(gp *GPU, size image.Point, samples int, depthFmt wgpu.TextureFormat) (*RenderTexture, error) {
	dev, err := NewDevice(gp)
	if err != nil {
		return nil, err
	}
	rt, err := NewRenderTextureOnDevice(dev, size, samples, depthFmt)
	if err != nil {
		dev.Release()
		return nil, err
	}
	rt.ownDev = true
	return rt, nil
}

// NewRenderTextureOnDevice is like [NewRenderTexture] using an
// existing device, which the caller retains ownership of.
func NewRenderTextureOnDevice(dev *Device, size image.Point, samples int, depthFmt wgpu.TextureFormat) (*RenderTexture, error) {
	rt := &RenderTexture{device: dev, NFrames: 2}
	rt.Format.Defaults()
	rt.Format.Size = size
	rt.Format.Usage = TextureRenderTarget | TextureSampled | TextureStaging
	rt.Format.SetMultisample(samples)
	if err := rt.configFrames(); err != nil {
		return nil, err
	}
	rt.render.Config(dev, &rt.Format, depthFmt)
	return rt, nil
}

func (rt *RenderTexture) configFrames() error {
	rt.releaseFrames()
	rt.Frames = make([]*Texture, rt.NFrames)
	ff := rt.Format
	ff.Samples = 1 // frames are the resolve targets
	for i := range rt.Frames {
		fr, err := NewTexture(rt.device, "render-frame", &ff)
		if err != nil {
			return err
		}
		rt.Frames[i] = fr
	}
	rt.current = 0
	return nil
}

func (rt *RenderTexture) Device() *Device    { return rt.device }
func (rt *RenderTexture) Render() *Render   { return &rt.render }
func (rt *RenderTexture) Size() image.Point { return rt.Format.Size }

// SetSize records a resize request, applied at the next frame
// boundary.
func (rt *RenderTexture) SetSize(sz image.Point) {
	rt.Lock()
	defer rt.Unlock()
	if sz == rt.Format.Size {
		return
	}
	rt.pendingSize = sz
}

func (rt *RenderTexture) applyPending() {
	rt.Lock()
	sz := rt.pendingSize
	rt.pendingSize = image.Point{}
	rt.Unlock()
	if sz == (image.Point{}) || sz == rt.Format.Size {
		return
	}
	rt.Format.Size = sz
	errors.Log(rt.configFrames())
	errors.Log(rt.render.SetSize(sz))
}

// GetCurrentTexture returns the view of the current frame texture.
func (rt *RenderTexture) GetCurrentTexture() (*wgpu.TextureView, error) {
	fr := rt.Frames[rt.current]
	view, err := fr.texture.CreateView(nil)
	if err != nil {
		return nil, errors.Log(err)
	}
	rt.curView = view
	return view, nil
}

// CurrentFrame returns the frame texture being rendered this frame,
// readable through its staging path after the frame completes.
func (rt *RenderTexture) CurrentFrame() *Texture {
	return rt.Frames[rt.current]
}

// Present advances to the next frame texture. Nothing is displayed.
func (rt *RenderTexture) Present() {
	if rt.curView != nil {
		rt.curView.Release()
		rt.curView = nil
	}
	rt.current = (rt.current + 1) % rt.NFrames
}

func (rt *RenderTexture) releaseFrames() {
	for _, fr := range rt.Frames {
		if fr != nil {
			fr.Release()
		}
	}
	rt.Frames = nil
}

func (rt *RenderTexture) Release() {
	rt.render.Release()
	if rt.curView != nil {
		rt.curView.Release()
		rt.curView = nil
	}
	rt.releaseFrames()
	if rt.ownDev && rt.device != nil {
		rt.device.Release()
	}
	rt.device = nil
}
