// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uidraw

import (
	"embed"
	"fmt"
	"image"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
	"github.com/ember3d/ember/gpu"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// ColorSpace selects how vertex colors are handled for the output
// target's colorspace.
type ColorSpace int32

const (
	// ColorSpaceSrgb passes vertex colors through, for sRGB targets.
	ColorSpaceSrgb ColorSpace = iota

	// ColorSpaceLinear linearizes vertex colors in the shader, for
	// linear targets.
	ColorSpaceLinear
)

// shaderVariant returns the embedded shader source for the base name
// and colorspace, composed as baseName[-linear].wgsl. A missing
// variant fails with [gpu.ErrUnsupported].
func shaderVariant(base string, cs ColorSpace) (string, error) {
	name := base + ".wgsl"
	if cs == ColorSpaceLinear {
		name = base + "-linear.wgsl"
	}
	b, err := shaderFS.ReadFile("shaders/" + name)
	if err != nil {
		return "", errors.Log(fmt.Errorf("%w: shader variant %q", gpu.ErrUnsupported, name))
	}
	return string(b), nil
}

// CacheLimit is the default entry-count threshold for the texture
// resource-set and pipeline caches. Crossing it clears the whole
// cache. Override with [Renderer.SetCacheLimit].
const CacheLimit = 500

// Renderer converts per-frame UI draw lists into GPU draw calls.
// Vertex, index, and uniform buffers grow to the largest size seen
// and are never shrunk; per-texture resource sets and per-format
// pipelines are cached up to [CacheLimit] entries.
type Renderer struct {
	gx *gpu.Graphics

	// Font is the default glyph atlas, bound for commands with no
	// texture.
	Font *FontAtlas

	colorSpace  ColorSpace
	initialized bool
	cacheLimit  int

	// dispose defers release of replaced GPU objects to end of frame.
	dispose func(func())

	shader  *wgpu.ShaderModule
	sampler *wgpu.Sampler
	uniform *wgpu.Buffer
	fontTex *gpu.Texture

	vtxBuf *wgpu.Buffer
	idxBuf *wgpu.Buffer
	vtxCap int
	idxCap int

	group0Layout *wgpu.BindGroupLayout
	group1Layout *wgpu.BindGroupLayout
	pipeLayout   *wgpu.PipelineLayout
	bindGroup0   *wgpu.BindGroup

	pipelines *boundedCache[wgpu.TextureFormat, *wgpu.RenderPipeline]
	texSets   *boundedCache[*gpu.Texture, *wgpu.BindGroup]
}

// New returns a Renderer on the given graphics context and registers
// it for release at context teardown. Call [Renderer.Init] before
// drawing, or the first Draw initializes with defaults.
func New(gx *gpu.Graphics) *Renderer {
	ur := &Renderer{gx: gx, dispose: gx.DisposeLater}
	gx.SetUI(ur)
	return ur
}

// SetCacheLimit overrides [CacheLimit] for the resource-set and
// pipeline caches; 0 restores the default. Takes effect at
// [Renderer.Init].
func (ur *Renderer) SetCacheLimit(n int) { ur.cacheLimit = n }

func (ur *Renderer) limit() int {
	if ur.cacheLimit > 0 {
		return ur.cacheLimit
	}
	return CacheLimit
}

// Init builds the renderer's GPU state for the given colorspace
// handling: shader, sampler, layouts, caches, and the default font
// resource set. Idempotent.
func (ur *Renderer) Init(cs ColorSpace) error {
	if ur.initialized {
		return nil
	}
	dev := ur.gx.Device()
	src, err := shaderVariant("draw", cs)
	if err != nil {
		return err
	}
	sh, err := dev.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "uidraw",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
	})
	if err != nil {
		return errors.Log(err)
	}
	ur.shader = sh
	ur.colorSpace = cs

	samp, err := dev.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "uidraw",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return errors.Log(err)
	}
	ur.sampler = samp

	ub, err := dev.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "uidraw-uniform",
		Size:  64,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return errors.Log(err)
	}
	ur.uniform = ub

	if err := ur.configLayouts(dev); err != nil {
		return err
	}

	ur.pipelines = newBoundedCache(ur.limit(), ur.disposePipelines)
	ur.texSets = newBoundedCache(ur.limit(), ur.disposeTexSets)

	if err := ur.configFont(dev); err != nil {
		return err
	}
	ur.initialized = true
	return nil
}

// disposePipelines and disposeTexSets run at wholesale cache clears.
// Evicted objects may still be referenced by a command list recorded
// this frame, so release is deferred to end of frame.
func (ur *Renderer) disposePipelines(m map[wgpu.TextureFormat]*wgpu.RenderPipeline) {
	for _, pl := range m {
		ur.dispose(pl.Release)
	}
}

func (ur *Renderer) disposeTexSets(m map[*gpu.Texture]*wgpu.BindGroup) {
	for _, bg := range m {
		ur.dispose(bg.Release)
	}
}

func (ur *Renderer) configLayouts(dev *gpu.Device) error {
	g0, err := dev.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "uidraw-group0",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return errors.Log(err)
	}
	ur.group0Layout = g0
	g1, err := dev.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "uidraw-group1",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return errors.Log(err)
	}
	ur.group1Layout = g1
	pl, err := dev.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "uidraw",
		BindGroupLayouts: []*wgpu.BindGroupLayout{g0, g1},
	})
	if err != nil {
		return errors.Log(err)
	}
	ur.pipeLayout = pl
	bg0, err := dev.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "uidraw-group0",
		Layout: g0,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: ur.uniform, Size: 64},
			{Binding: 1, Sampler: ur.sampler},
		},
	})
	if err != nil {
		return errors.Log(err)
	}
	ur.bindGroup0 = bg0
	return nil
}

func (ur *Renderer) configFont(dev *gpu.Device) error {
	ur.Font = NewBasicFontAtlas()
	sz := ur.Font.Image.Rect.Size()
	tf := gpu.NewTextureFormat(sz.X, sz.Y)
	tf.Format = wgpu.TextureFormatRGBA8Unorm
	ft, err := gpu.NewTexture(dev, "uidraw-font", tf)
	if err != nil {
		return err
	}
	if err := ft.WriteImage(ur.Font.Image); err != nil {
		ft.Release()
		return err
	}
	ur.fontTex = ft
	_, err = ur.texSet(ft)
	return err
}

func (ur *Renderer) makeTexSet(tx *gpu.Texture) (*wgpu.BindGroup, error) {
	bg, err := ur.gx.Device().Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "uidraw-tex",
		Layout: ur.group1Layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: tx.View()},
		},
	})
	if err != nil {
		return nil, errors.Log(err)
	}
	return bg, nil
}

// texSet returns the cached resource set for the texture, creating
// it on first use. A wholesale cache clear re-registers the default
// font's set immediately.
func (ur *Renderer) texSet(tx *gpu.Texture) (*wgpu.BindGroup, error) {
	if tx == nil {
		tx = ur.fontTex
	}
	if bg, ok := ur.texSets.get(tx); ok {
		return bg, nil
	}
	bg, err := ur.makeTexSet(tx)
	if err != nil {
		return nil, err
	}
	cleared := ur.texSets.add(tx, bg)
	if cleared && tx != ur.fontTex {
		fbg, err := ur.makeTexSet(ur.fontTex)
		if err != nil {
			return nil, err
		}
		ur.texSets.add(ur.fontTex, fbg)
	}
	return bg, nil
}

// pipeline returns the cached pipeline for the output format,
// creating it on first use.
func (ur *Renderer) pipeline(format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	if pl, ok := ur.pipelines.get(format); ok {
		return pl, nil
	}
	pl, err := ur.gx.Device().Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "uidraw",
		Layout: ur.pipeLayout,
		Vertex: wgpu.VertexState{
			Module:     ur.shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: VertexSize,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     ur.shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCW,
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
	ur.pipelines.add(format, pl)
	return pl, nil
}

// ensureBuffer grows a vertex or index buffer to at least need bytes,
// never shrinking. The replaced buffer is disposed at end of frame,
// since in-flight commands may still reference it.
func (ur *Renderer) ensureBuffer(buf **wgpu.Buffer, cp *int, need int, usage wgpu.BufferUsage, label string) error {
	if need <= *cp && *buf != nil {
		return nil
	}
	if *buf != nil {
		old := *buf
		ur.gx.DisposeLater(old.Release)
	}
	// pad to the next multiple of 4 for WriteBuffer alignment.
	need = (need + 3) &^ 3
	nb, err := ur.gx.Device().Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(need),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return errors.Log(err)
	}
	*buf = nb
	*cp = need
	return nil
}

// orthoProjection returns a column-major projection mapping
// (0,0)..(w,h) to clip space with y down.
func orthoProjection(sz image.Point) [16]float32 {
	w := float32(max(sz.X, 1))
	h := float32(max(sz.Y, 1))
	return [16]float32{
		2 / w, 0, 0, 0,
		0, -2 / h, 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1,
	}
}

// cullClip scales a clip rectangle and intersects it with the
// display, returning the scissor rectangle and whether the command
// lies fully outside the visible area.
func cullClip(clip [4]float32, scale float32, sz image.Point) (x, y, w, h uint32, culled bool) {
	fw := float32(sz.X)
	fh := float32(sz.Y)
	x0 := max(clip[0]*scale, 0)
	y0 := max(clip[1]*scale, 0)
	x1 := min(clip[2]*scale, fw)
	y1 := min(clip[3]*scale, fh)
	if x0 >= fw || y0 >= fh || x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0, true
	}
	return uint32(x0), uint32(y0), uint32(x1 - x0), uint32(y1 - y0), false
}

// Draw records the draw lists into the command list, targeting the
// given frame view and output format. Buffers grow to the total size
// across all lists; each list renders in its own pass, preserving
// list order; commands whose scaled clip rectangle lies outside the
// display are culled. Returns the number of draw calls issued.
//
// Auto-initializes with sRGB defaults, with a warning, if called
// before [Renderer.Init].
func (ur *Renderer) Draw(cl *gpu.CommandList, view *wgpu.TextureView, format wgpu.TextureFormat, lists []*DrawList, displaySize image.Point, clipScale float32) (int, error) {
	if !ur.initialized {
		slog.Warn("uidraw: Draw called before Init, initializing with sRGB defaults")
		if err := ur.Init(ColorSpaceSrgb); err != nil {
			return 0, err
		}
	}
	totV, totI := 0, 0
	for _, dl := range lists {
		totV += dl.VertexBytes()
		totI += dl.IndexBytes()
	}
	if totV == 0 || totI == 0 {
		return 0, nil
	}
	if err := ur.ensureBuffer(&ur.vtxBuf, &ur.vtxCap, totV, wgpu.BufferUsageVertex, "uidraw-vtx"); err != nil {
		return 0, err
	}
	if err := ur.ensureBuffer(&ur.idxBuf, &ur.idxCap, totI, wgpu.BufferUsageIndex, "uidraw-idx"); err != nil {
		return 0, err
	}
	dev := ur.gx.Device()
	proj := orthoProjection(displaySize)
	if err := dev.Queue.WriteBuffer(ur.uniform, 0, wgpu.ToBytes(proj[:])); err != nil {
		return 0, errors.Log(err)
	}
	pl, err := ur.pipeline(format)
	if err != nil {
		return 0, err
	}

	ndraws := 0
	vtxOff, idxOff := 0, 0
	for _, dl := range lists {
		nv := dl.VertexBytes()
		ni := dl.IndexBytes()
		if nv > 0 {
			if err := dev.Queue.WriteBuffer(ur.vtxBuf, uint64(vtxOff), dl.vertexBytes()); err != nil {
				return ndraws, errors.Log(err)
			}
		}
		if ni > 0 {
			if err := dev.Queue.WriteBuffer(ur.idxBuf, uint64(idxOff), dl.indexBytes()); err != nil {
				return ndraws, errors.Log(err)
			}
		}
		if len(dl.Commands) > 0 && ni > 0 {
			rp := cl.Encoder().BeginRenderPass(&wgpu.RenderPassDescriptor{
				Label: "uidraw",
				ColorAttachments: []wgpu.RenderPassColorAttachment{{
					View:    view,
					LoadOp:  wgpu.LoadOpLoad,
					StoreOp: wgpu.StoreOpStore,
				}},
			})
			rp.SetPipeline(pl)
			rp.SetBindGroup(0, ur.bindGroup0, nil)
			rp.SetVertexBuffer(0, ur.vtxBuf, uint64(vtxOff), uint64(nv))
			rp.SetIndexBuffer(ur.idxBuf, wgpu.IndexFormatUint32, uint64(idxOff), uint64(ni))
			for _, cmd := range dl.Commands {
				if cmd.ElemCount == 0 {
					continue
				}
				sx, sy, sw, sh, culled := cullClip(cmd.ClipRect, clipScale, displaySize)
				if culled {
					continue
				}
				bg, err := ur.texSet(cmd.Texture)
				if err != nil {
					rp.End()
					rp.Release()
					return ndraws, err
				}
				rp.SetBindGroup(1, bg, nil)
				rp.SetScissorRect(sx, sy, sw, sh)
				rp.DrawIndexed(cmd.ElemCount, 1, cmd.IndexOffset, 0, 0)
				ndraws++
			}
			rp.End()
			rp.Release()
		}
		vtxOff += nv
		idxOff += ni
	}
	return ndraws, nil
}

// TexSetCount returns the number of cached texture resource sets.
func (ur *Renderer) TexSetCount() int {
	if ur.texSets == nil {
		return 0
	}
	return ur.texSets.len()
}

// Release frees every owned buffer, shader, layout, resource set, and
// all cached pipelines and texture sets.
func (ur *Renderer) Release() {
	if ur.pipelines != nil {
		ur.pipelines.clear()
		ur.pipelines = nil
	}
	if ur.texSets != nil {
		ur.texSets.clear()
		ur.texSets = nil
	}
	if ur.bindGroup0 != nil {
		ur.bindGroup0.Release()
		ur.bindGroup0 = nil
	}
	if ur.pipeLayout != nil {
		ur.pipeLayout.Release()
		ur.pipeLayout = nil
	}
	if ur.group0Layout != nil {
		ur.group0Layout.Release()
		ur.group0Layout = nil
	}
	if ur.group1Layout != nil {
		ur.group1Layout.Release()
		ur.group1Layout = nil
	}
	if ur.fontTex != nil {
		ur.fontTex.Release()
		ur.fontTex = nil
	}
	if ur.uniform != nil {
		ur.uniform.Release()
		ur.uniform = nil
	}
	if ur.sampler != nil {
		ur.sampler.Release()
		ur.sampler = nil
	}
	if ur.shader != nil {
		ur.shader.Release()
		ur.shader = nil
	}
	if ur.vtxBuf != nil {
		ur.vtxBuf.Release()
		ur.vtxBuf = nil
	}
	if ur.idxBuf != nil {
		ur.idxBuf.Release()
		ur.idxBuf = nil
	}
	ur.initialized = false
}
