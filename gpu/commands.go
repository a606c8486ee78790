// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

// CommandList records GPU work for later submission through
// [Graphics.Submit]. It wraps a WebGPU command encoder; recording is
// not thread safe, and a list must be finished before submission.
type CommandList struct {
	Name string

	device  *Device
	encoder *wgpu.CommandEncoder
	cmd     *wgpu.CommandBuffer

	// temp buffers created during recording, released after submit.
	temps []*wgpu.Buffer
}

// NewCommandList starts recording a new command list on the device.
func NewCommandList(dev *Device, name string) (*CommandList, error) {
	enc, err := dev.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: name})
	if err != nil {
		return nil, errors.Log(errors.Wrap(err, "gpu: command encoder failed"))
	}
	return &CommandList{Name: name, device: dev, encoder: enc}, nil
}

// Finished reports whether recording has ended.
func (cl *CommandList) Finished() bool { return cl.encoder == nil }

// Encoder returns the underlying encoder for recording custom passes;
// nil once the list is finished.
func (cl *CommandList) Encoder() *wgpu.CommandEncoder { return cl.encoder }

func (cl *CommandList) checkRecording() error {
	if cl.encoder == nil {
		return errors.Log(fmt.Errorf("%w: command list %q already finished", ErrValidation, cl.Name))
	}
	return nil
}

// CopyTexture records a full-resource copy from src to dst. The two
// textures must have equal formats, not counting sample counts.
func (cl *CommandList) CopyTexture(dst, src *Texture) error {
	if err := cl.checkRecording(); err != nil {
		return err
	}
	if !src.Format.Equal(&dst.Format, false) {
		return errors.Log(fmt.Errorf("%w: copy between %s and %s",
			ErrValidation, src.Format.String(), dst.Format.String()))
	}
	sz := src.Format.Extent3D()
	cl.encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Aspect: wgpu.TextureAspectAll, Texture: src.texture},
		&wgpu.ImageCopyTexture{Aspect: wgpu.TextureAspectAll, Texture: dst.texture},
		&sz)
	return nil
}

// UpdateBuffer records a write of data into dst at the given offset.
// The data is staged through a temporary GPU buffer so the write
// executes in submission order with the rest of the list.
func (cl *CommandList) UpdateBuffer(dst *wgpu.Buffer, offset int, data []byte) error {
	if err := cl.checkRecording(); err != nil {
		return err
	}
	if offset < 0 || uint64(offset+len(data)) > dst.GetSize() {
		return errors.Log(fmt.Errorf("%w: %d bytes at offset %d in %d-byte buffer",
			ErrRange, len(data), offset, dst.GetSize()))
	}
	tmp, err := cl.device.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    cl.Name + "-upload",
		Contents: data,
		Usage:    wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return errors.Log(err)
	}
	cl.temps = append(cl.temps, tmp)
	cl.encoder.CopyBufferToBuffer(tmp, 0, dst, uint64(offset), uint64(len(data)))
	return nil
}

// BeginRenderPass begins a render pass targeting the given render
// state and frame view. The caller must End and Release the returned
// pass encoder before finishing the list.
func (cl *CommandList) BeginRenderPass(rd *Render, view *wgpu.TextureView) (*wgpu.RenderPassEncoder, error) {
	if err := cl.checkRecording(); err != nil {
		return nil, err
	}
	return rd.BeginRenderPass(cl.encoder, view), nil
}

// Finish ends recording. Idempotent: finishing a finished list is a
// no-op. After Finish, the list can be submitted exactly once.
func (cl *CommandList) Finish() error {
	if cl.encoder == nil {
		return nil
	}
	cmd, err := cl.encoder.Finish(nil)
	cl.encoder.Release()
	cl.encoder = nil
	if err != nil {
		return errors.Log(errors.Wrap(err, "gpu: command list finish failed"))
	}
	cl.cmd = cmd
	return nil
}

// submit hands the recorded buffer to the queue and releases it.
func (cl *CommandList) submit() error {
	if cl.cmd == nil {
		return errors.Log(fmt.Errorf("%w: command list %q has nothing to submit", ErrValidation, cl.Name))
	}
	cl.device.Queue.Submit(cl.cmd)
	cl.cmd.Release()
	cl.cmd = nil
	for _, tmp := range cl.temps {
		tmp.Release()
	}
	cl.temps = nil
	return nil
}

// Release drops any unfinished or unsubmitted state.
func (cl *CommandList) Release() {
	if cl.encoder != nil {
		cl.encoder.Release()
		cl.encoder = nil
	}
	if cl.cmd != nil {
		cl.cmd.Release()
		cl.cmd = nil
	}
	for _, tmp := range cl.temps {
		tmp.Release()
	}
	cl.temps = nil
}
