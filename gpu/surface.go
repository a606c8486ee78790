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

// Renderer is a render target with a frame lifecycle: a window
// surface ([Surface]) or an offscreen target ([RenderTexture]).
type Renderer interface {
	// Device returns the device this target renders on.
	Device() *Device

	// Render returns the render state (attachments, clear values).
	Render() *Render

	// Size returns the current target size in pixels.
	Size() image.Point

	// SetSize requests a resize. The resize takes effect at the next
	// frame boundary, never mid-frame.
	SetSize(sz image.Point)

	// GetCurrentTexture returns the view to render this frame into.
	GetCurrentTexture() (*wgpu.TextureView, error)

	// Present presents the current frame to the target.
	Present()

	// applyPending applies any pending resize. Called at the frame
	// boundary with no frame outstanding.
	applyPending()

	// Release releases the target's resources.
	Release()
}

// Surface is a Renderer that presents to a platform window through a
// WebGPU surface and its swapchain.
type Surface struct {
	GPU *GPU

	// Format of the surface frames; Samples > 1 enables MSAA
	// through the render state.
	Format TextureFormat

	render  Render
	device  *Device
	surface *wgpu.Surface
	current *wgpu.Texture
	curView *wgpu.TextureView
	vsync   bool

	// pending resize, applied at the next frame boundary.
	pendingSize image.Point

	sync.Mutex
}

// NewSurface creates a Surface for the given WebGPU surface handle
// and initial size, configuring its swapchain. samples > 1 enables
// multisampling; depthFmt of TextureFormatUndefined disables depth.
func NewSurface(gp *GPU, wsf *wgpu.Surface, size image.Point, samples int, depthFmt wgpu.TextureFormat, vsync bool) (*Surface, error) {
	dev, err := NewDevice(gp)
	if err != nil {
		return nil, err
	}
	sf := &Surface{GPU: gp, device: dev, surface: wsf, vsync: vsync}
	sf.Format.Defaults()
	sf.Format.Size = size
	sf.Format.Format = wgpu.TextureFormatBGRA8UnormSrgb
	sf.Format.Usage = TextureRenderTarget
	sf.Format.SetMultisample(samples)
	if err := sf.configSwapchain(); err != nil {
		return nil, err
	}
	sf.render.Config(dev, &sf.Format, depthFmt)
	return sf, nil
}

func (sf *Surface) configSwapchain() error {
	mode := wgpu.PresentModeImmediate
	if sf.vsync {
		mode = wgpu.PresentModeFifo
	}
	sf.surface.Configure(sf.GPU.Adapter, sf.device.Device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      sf.Format.Format,
		Width:       uint32(sf.Format.Size.X),
		Height:      uint32(sf.Format.Size.Y),
		PresentMode: mode,
		AlphaMode:   wgpu.CompositeAlphaModeAuto,
	})
	return nil
}

func (sf *Surface) Device() *Device   { return sf.device }
func (sf *Surface) Render() *Render   { return &sf.render }
func (sf *Surface) Size() image.Point { return sf.Format.Size }

// SetSize records a resize request. The swapchain is reconfigured at
// the next frame boundary by [Surface.applyPending], never mid-frame.
func (sf *Surface) SetSize(sz image.Point) {
	sf.Lock()
	defer sf.Unlock()
	if sz == sf.Format.Size {
		return
	}
	sf.pendingSize = sz
}

// applyPending reconfigures the swapchain for a pending resize.
// Called at the frame boundary with no frame outstanding.
func (sf *Surface) applyPending() {
	sf.Lock()
	sz := sf.pendingSize
	sf.pendingSize = image.Point{}
	sf.Unlock()
	if sz == (image.Point{}) || sz == sf.Format.Size {
		return
	}
	// reconfiguring invalidates an acquired frame; drop it.
	if sf.curView != nil {
		sf.curView.Release()
		sf.curView = nil
	}
	if sf.current != nil {
		sf.current.Release()
		sf.current = nil
	}
	sf.Format.Size = sz
	errors.Log(sf.configSwapchain())
	errors.Log(sf.render.SetSize(sz))
}

// GetCurrentTexture acquires the next swapchain frame and returns its
// view. Valid until the matching [Surface.Present].
func (sf *Surface) GetCurrentTexture() (*wgpu.TextureView, error) {
	tex, err := sf.surface.GetCurrentTexture()
	if err != nil {
		return nil, errors.Log(errors.Wrap(err, "gpu: acquire frame failed"))
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, errors.Log(err)
	}
	sf.current = tex
	sf.curView = view
	return view, nil
}

// Present presents the acquired frame to the window. A no-op when no
// frame is acquired, e.g. when a resize dropped the frame.
func (sf *Surface) Present() {
	if sf.current == nil {
		return
	}
	if sf.curView != nil {
		sf.curView.Release()
		sf.curView = nil
	}
	sf.surface.Present()
	sf.current.Release()
	sf.current = nil
}

func (sf *Surface) Release() {
	sf.render.Release()
	if sf.curView != nil {
		sf.curView.Release()
		sf.curView = nil
	}
	if sf.current != nil {
		sf.current.Release()
		sf.current = nil
	}
	if sf.surface != nil {
		sf.surface.Release()
		sf.surface = nil
	}
	if sf.device != nil {
		sf.device.Release()
		sf.device = nil
	}
}
