// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

// Mesh holds the vertex and index buffers for a drawable mesh.
type Mesh struct {
	Name string

	// Vertex buffer, with layout defined by the material's pipeline.
	Vertex *wgpu.Buffer

	// Index buffer of uint32 indexes.
	Index *wgpu.Buffer

	// NIndex is the number of indexes to draw.
	NIndex int
}

// NewMesh creates a mesh from raw vertex data and uint32 indexes.
func NewMesh(dev *Device, name string, verts []byte, idxs []uint32) (*Mesh, error) {
	vb, err := dev.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    name + "-vtx",
		Contents: verts,
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Log(err)
	}
	ib, err := dev.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    name + "-idx",
		Contents: wgpu.ToBytes(idxs),
		Usage:    wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, errors.Log(err)
	}
	return &Mesh{Name: name, Vertex: vb, Index: ib, NIndex: len(idxs)}, nil
}

func (ms *Mesh) Release() {
	if ms.Vertex != nil {
		ms.Vertex.Release()
		ms.Vertex = nil
	}
	if ms.Index != nil {
		ms.Index.Release()
		ms.Index = nil
	}
}

// Material binds a render pipeline and its resource bindings
// (textures, samplers, uniforms) for drawing meshes.
type Material struct {
	Name string

	// Pipeline draws meshes using this material.
	Pipeline *wgpu.RenderPipeline

	// BindGroup holds the material's resource bindings, or nil.
	BindGroup *wgpu.BindGroup

	// Texture sampled by the material, or nil.
	Texture *Texture
}

func (mt *Material) Release() {
	if mt.BindGroup != nil {
		mt.BindGroup.Release()
		mt.BindGroup = nil
	}
	if mt.Pipeline != nil {
		mt.Pipeline.Release()
		mt.Pipeline = nil
	}
}

// DrawOptions optionally overrides material properties for a single
// queued draw.
type DrawOptions struct {
	// BindGroup replaces the material's resource bindings.
	BindGroup *wgpu.BindGroup
}

// Renderable is one mesh draw queued for the current frame.
type Renderable struct {
	Mesh     *Mesh
	Material *Material

	// Transform is a column-major 4x4 model matrix.
	Transform [16]float32

	// Options are per-draw overrides of material properties, or nil.
	Options *DrawOptions
}

// RenderPipeline collects renderables over a frame and records the
// draws for them into a render pass. The queue is cleared at end of
// frame.
type RenderPipeline interface {
	// AddRenderable queues one draw for the current frame.
	AddRenderable(rb *Renderable)

	// RecordDraws records the queued draws into the pass.
	RecordDraws(rp *wgpu.RenderPassEncoder)

	// ClearRenderables drops all queued draws.
	ClearRenderables()
}

// RenderQueue is the basic RenderPipeline: it records queued draws in
// submission order with no sorting or batching.
type RenderQueue struct {
	renderables []*Renderable
}

func NewRenderQueue() *RenderQueue { return &RenderQueue{} }

func (rq *RenderQueue) AddRenderable(rb *Renderable) {
	rq.renderables = append(rq.renderables, rb)
}

func (rq *RenderQueue) RecordDraws(rp *wgpu.RenderPassEncoder) {
	var pipe *wgpu.RenderPipeline
	for _, rb := range rq.renderables {
		if rb.Mesh == nil || rb.Material == nil || rb.Material.Pipeline == nil {
			continue
		}
		if rb.Material.Pipeline != pipe {
			pipe = rb.Material.Pipeline
			rp.SetPipeline(pipe)
		}
		bg := rb.Material.BindGroup
		if rb.Options != nil && rb.Options.BindGroup != nil {
			bg = rb.Options.BindGroup
		}
		if bg != nil {
			rp.SetBindGroup(0, bg, nil)
		}
		rp.SetVertexBuffer(0, rb.Mesh.Vertex, 0, wgpu.WholeSize)
		rp.SetIndexBuffer(rb.Mesh.Index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		rp.DrawIndexed(uint32(rb.Mesh.NIndex), 1, 0, 0, 0)
	}
}

func (rq *RenderQueue) ClearRenderables() {
	rq.renderables = rq.renderables[:0]
}

// Len returns how many renderables are queued.
func (rq *RenderQueue) Len() int { return len(rq.renderables) }
