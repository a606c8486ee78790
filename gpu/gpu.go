// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpu implements the render-resource and draw-submission core
// of the Ember engine, as a policy layer over the WebGPU graphics
// abstraction. It owns texture resources, the graphics context with
// its frame lifecycle and deferred disposal, command-list recording,
// and render targets; pipelines, shaders and the device itself are
// supplied by WebGPU.
package gpu

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

// Debug enables additional logging of GPU diagnostics
// (adapter info, resource creation, cache clears).
var Debug = false

// Backends enumerates the platform graphics APIs that can be
// requested at initialization. The adapter actually selected is
// reported by [GPU.Backend] afterward.
type Backends int32

const (
	// BackendDefault lets the WebGPU implementation pick the best
	// backend for the platform.
	BackendDefault Backends = iota
	BackendVulkan
	BackendMetal
	BackendD3D12
	BackendD3D11
	BackendOpenGL
)

func (b Backends) String() string {
	switch b {
	case BackendVulkan:
		return "Vulkan"
	case BackendMetal:
		return "Metal"
	case BackendD3D12:
		return "D3D12"
	case BackendD3D11:
		return "D3D11"
	case BackendOpenGL:
		return "OpenGL"
	default:
		return "Default"
	}
}

// BackendType returns the WebGPU backend type for this backend.
func (b Backends) BackendType() wgpu.BackendType {
	switch b {
	case BackendVulkan:
		return wgpu.BackendTypeVulkan
	case BackendMetal:
		return wgpu.BackendTypeMetal
	case BackendD3D12:
		return wgpu.BackendTypeD3D12
	case BackendD3D11:
		return wgpu.BackendTypeD3D11
	case BackendOpenGL:
		return wgpu.BackendTypeOpenGL
	default:
		return wgpu.BackendTypeUndefined
	}
}

func backendFromType(bt wgpu.BackendType) Backends {
	switch bt {
	case wgpu.BackendTypeVulkan:
		return BackendVulkan
	case wgpu.BackendTypeMetal:
		return BackendMetal
	case wgpu.BackendTypeD3D12:
		return BackendD3D12
	case wgpu.BackendTypeD3D11:
		return BackendD3D11
	case wgpu.BackendTypeOpenGL:
		return BackendOpenGL
	default:
		return BackendDefault
	}
}

// GPU represents the WebGPU instance and the physical adapter
// selected from it. It is created once by the application and passed
// explicitly to everything that needs it; there is no ambient
// process-wide GPU state in this package.
type GPU struct {
	// Instance is the top-level WebGPU instance handle.
	Instance *wgpu.Instance

	// Adapter is the physical GPU adapter selected at init.
	Adapter *wgpu.Adapter

	// DeviceName is the name of the adapter, for diagnostics.
	DeviceName string

	// backend actually selected, which can differ from the
	// requested one when the request was unavailable.
	backend Backends
}

// NewGPU creates the WebGPU instance and selects an adapter,
// preferring the given backend (BackendDefault lets the platform
// decide) and, when non-nil, compatibility with the given surface.
func NewGPU(sf *wgpu.Surface, backend Backends) (*GPU, error) {
	gp := &GPU{}
	gp.Instance = wgpu.CreateInstance(nil)
	opts := &wgpu.RequestAdapterOptions{
		CompatibleSurface: sf,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	}
	if backend != BackendDefault {
		opts.BackendType = backend.BackendType()
	}
	ad, err := gp.Instance.RequestAdapter(opts)
	if err != nil {
		gp.Instance.Release()
		gp.Instance = nil
		return nil, errors.Log(errors.Wrap(err, "gpu: no adapter"))
	}
	gp.Adapter = ad
	info := ad.GetInfo()
	gp.DeviceName = info.Name
	gp.backend = backendFromType(info.BackendType)
	if Debug {
		slog.Info("gpu: adapter selected", "name", info.Name,
			"backend", gp.backend.String(), "driver", info.DriverDescription)
	}
	return gp, nil
}

// NoDisplayGPU creates a GPU and Device without any display surface,
// for offscreen rendering and tests.
func NoDisplayGPU() (*GPU, *Device, error) {
	gp, err := NewGPU(nil, BackendDefault)
	if err != nil {
		return nil, nil, err
	}
	dev, err := NewDevice(gp)
	if err != nil {
		return nil, nil, err
	}
	return gp, dev, nil
}

// Backend returns the graphics backend actually selected,
// which can differ from the one requested.
func (gp *GPU) Backend() Backends { return gp.backend }

// Release releases the adapter and instance. Call once at shutdown,
// after all devices and resources have been released.
func (gp *GPU) Release() {
	if gp.Adapter != nil {
		gp.Adapter.Release()
		gp.Adapter = nil
	}
	if gp.Instance != nil {
		gp.Instance.Release()
		gp.Instance = nil
	}
}
