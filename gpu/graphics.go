// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

//go:embed shaders/blit.wgsl
var blitShaderSrc string

// Releaser is anything holding GPU resources that Release frees.
type Releaser interface {
	Release()
}

// Graphics is the render context: the application-owned access point
// for frame lifecycle, draw registration, command submission, fences,
// and deferred disposal. It is created explicitly at startup and
// passed to everything that renders; there is no package-level
// graphics state.
type Graphics struct {
	// GPU is the instance / adapter pair.
	GPU *GPU

	// Renderer is the frame target: a window surface or an
	// offscreen render texture.
	Renderer Renderer

	// Pipeline collects per-frame renderables for batched drawing.
	Pipeline RenderPipeline

	// Pool recycles transient render-target textures across frames.
	Pool *TexturePool

	device   *Device
	frame    uint64
	disposal disposalArena

	// ui is the draw-list renderer registered via SetUI,
	// released at teardown.
	ui Releaser

	// blit pipelines cached per destination format.
	blitPipes  map[wgpu.TextureFormat]*wgpu.RenderPipeline
	blitShader *wgpu.ShaderModule

	released bool
}

// NewGraphics creates the render context on the given GPU and frame
// target. The target supplies the device everything runs on.
func NewGraphics(gp *GPU, rd Renderer) *Graphics {
	gx := &Graphics{
		GPU:      gp,
		Renderer: rd,
		Pipeline: NewRenderQueue(),
		device:   rd.Device(),
	}
	gx.Pool = newTexturePool(gx.device)
	gx.blitPipes = map[wgpu.TextureFormat]*wgpu.RenderPipeline{}
	return gx
}

// Device returns the device the context renders on.
func (gx *Graphics) Device() *Device { return gx.device }

// Frame returns the current frame index, incremented at each
// [Graphics.EndFrame].
func (gx *Graphics) Frame() uint64 { return gx.frame }

// SetUI registers the UI draw-list renderer so teardown releases it
// with the rest of the context.
func (gx *Graphics) SetUI(ui Releaser) { gx.ui = ui }

// NewCommandList starts recording a new command list. The caller owns
// it until [Graphics.Submit].
func (gx *Graphics) NewCommandList(name string) (*CommandList, error) {
	return NewCommandList(gx.device, name)
}

// DrawMesh registers a renderable with the active render pipeline for
// batched drawing later in the frame; nothing is submitted here.
// Optional [DrawOptions] override material properties for this draw.
func (gx *Graphics) DrawMesh(mesh *Mesh, mat *Material, transform [16]float32, opts ...*DrawOptions) {
	rb := &Renderable{Mesh: mesh, Material: mat, Transform: transform}
	if len(opts) > 0 {
		rb.Options = opts[0]
	}
	gx.Pipeline.AddRenderable(rb)
}

// Submit finishes the command list if still recording and hands it to
// the device queue. When signal is set, it returns a fence that
// signals once the submitted work completes.
func (gx *Graphics) Submit(cl *CommandList, signal bool) (*Fence, error) {
	if err := cl.Finish(); err != nil {
		return nil, err
	}
	if err := cl.submit(); err != nil {
		return nil, err
	}
	if !signal {
		return nil, nil
	}
	return &Fence{Name: cl.Name, device: gx.device}, nil
}

// WaitFor blocks until all given fences signal or the timeout
// elapses, returning an error wrapping [ErrTimeout] on expiry.
// A zero timeout waits indefinitely.
func (gx *Graphics) WaitFor(timeout time.Duration, fences ...*Fence) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for _, fc := range fences {
		remain := time.Duration(0)
		if timeout > 0 {
			remain = time.Until(deadline)
			if remain <= 0 {
				return errors.Log(fmt.Errorf("%w: waiting for %d fences", ErrTimeout, len(fences)))
			}
		}
		if err := fc.wait(remain); err != nil {
			return err
		}
	}
	return nil
}

// WaitAny blocks until any one of the given fences signals, returning
// its index, or an error wrapping [ErrTimeout] on expiry. A zero
// timeout waits indefinitely.
func (gx *Graphics) WaitAny(timeout time.Duration, fences ...*Fence) (int, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		for i, fc := range fences {
			if fc.Signaled() {
				return i, nil
			}
		}
		if timeout > 0 && time.Now().After(deadline) {
			return -1, errors.Log(fmt.Errorf("%w: waiting for any of %d fences", ErrTimeout, len(fences)))
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// DisposeLater queues a release function to run at the next end of
// frame, once the device has gone idle, so GPU objects are never
// destroyed while in-flight commands might still reference them.
func (gx *Graphics) DisposeLater(release func()) {
	gx.disposal.add(gx.frame, release)
}

// DisposeTexture queues a texture for deferred release.
func (gx *Graphics) DisposeTexture(tx *Texture) {
	if tx == nil {
		return
	}
	gx.DisposeLater(tx.Release)
}

// EndFrame ends the current frame. In order: return expired pooled
// targets, clear the per-frame renderables, apply any pending target
// resize, block until the device is idle, run the deferred-disposal
// queue, and present. The idle-wait makes this a hard synchronization
// point: no GPU work overlaps across frames.
func (gx *Graphics) EndFrame() {
	gx.Pool.update(gx.frame)
	gx.Pipeline.ClearRenderables()
	gx.Renderer.applyPending()
	gx.device.WaitDone()
	n := gx.disposal.collect(gx.frame)
	if Debug && n > 0 {
		slog.Info("gpu: deferred disposals collected", "n", n, "frame", gx.frame)
	}
	gx.Renderer.Present()
	gx.frame++
}

// RenderFrame acquires the frame target, records the queued
// renderables into one render pass, and submits. UI draw lists are
// drawn by the UI renderer into their own lists before EndFrame.
func (gx *Graphics) RenderFrame() error {
	view, err := gx.Renderer.GetCurrentTexture()
	if err != nil {
		return err
	}
	cl, err := gx.NewCommandList("frame")
	if err != nil {
		return err
	}
	rp, err := cl.BeginRenderPass(gx.Renderer.Render(), view)
	if err != nil {
		cl.Release()
		return err
	}
	gx.Pipeline.RecordDraws(rp)
	rp.End()
	rp.Release()
	if _, err := gx.Submit(cl, false); err != nil {
		return err
	}
	return nil
}

func (gx *Graphics) blitPipeline(dstFormat wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	if pl, ok := gx.blitPipes[dstFormat]; ok {
		return pl, nil
	}
	if gx.blitShader == nil {
		sh, err := gx.device.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          "blit",
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: blitShaderSrc},
		})
		if err != nil {
			return nil, errors.Log(err)
		}
		gx.blitShader = sh
	}
	pl, err := gx.device.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "blit",
		Vertex: wgpu.VertexState{
			Module:     gx.blitShader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     gx.blitShader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    dstFormat,
				Blend:     &wgpu.BlendStateReplace,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, errors.Log(err)
	}
	gx.blitPipes[dstFormat] = pl
	return pl, nil
}

// Blit copies src full-screen into dst by sampling it through src's
// sampler configuration, handling format conversion and scaling.
// Synchronous: the copy has completed when Blit returns.
func (gx *Graphics) Blit(dst, src *Texture) error {
	if !dst.Format.Usage.HasFlags(TextureRenderTarget) {
		return errors.Log(fmt.Errorf("%w: blit destination %q is not a render target",
			ErrValidation, dst.Name))
	}
	pl, err := gx.blitPipeline(dst.Format.Format)
	if err != nil {
		return err
	}
	samp, err := src.Sampler.Sampler(gx.device)
	if err != nil {
		return err
	}
	bg, err := gx.device.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "blit",
		Layout: pl.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: src.View()},
			{Binding: 1, Sampler: samp},
		},
	})
	if err != nil {
		return errors.Log(err)
	}
	defer bg.Release()
	cl, err := gx.NewCommandList("blit")
	if err != nil {
		return err
	}
	rp := cl.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    dst.View(),
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	rp.SetPipeline(pl)
	rp.SetBindGroup(0, bg, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()
	rp.Release()
	fc, err := gx.Submit(cl, true)
	if err != nil {
		return err
	}
	return fc.wait(0)
}

// Release tears down the context: the UI renderer, cached blit
// pipelines, pooled textures, any pending disposals, and the device.
// Terminal: no further graphics operations are valid afterward.
func (gx *Graphics) Release() {
	if gx.released {
		return
	}
	gx.released = true
	gx.device.WaitDone()
	if gx.ui != nil {
		gx.ui.Release()
		gx.ui = nil
	}
	for _, pl := range gx.blitPipes {
		pl.Release()
	}
	gx.blitPipes = nil
	if gx.blitShader != nil {
		gx.blitShader.Release()
		gx.blitShader = nil
	}
	gx.disposal.collectAll()
	gx.Pool.Release()
	gx.Renderer.Release()
}
