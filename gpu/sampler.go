// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

// FilterModes are the texture minification / magnification filters.
type FilterModes int32

const (
	FilterNearest FilterModes = iota
	FilterLinear
)

func (fm FilterModes) Mode() wgpu.FilterMode {
	if fm == FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

// WrapModes are the texture coordinate addressing modes.
type WrapModes int32

const (
	Repeat WrapModes = iota
	MirroredRepeat
	ClampToEdge
)

func (wm WrapModes) Mode() wgpu.AddressMode {
	switch wm {
	case MirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	case ClampToEdge:
		return wgpu.AddressModeClampToEdge
	default:
		return wgpu.AddressModeRepeat
	}
}

// Sampler describes how a texture is sampled in shaders.
type Sampler struct {
	Name string

	// MagFilter is the filter for when the texture is magnified.
	MagFilter FilterModes

	// MinFilter is the filter for when the texture is minified.
	MinFilter FilterModes

	// UMode, VMode, WMode are the addressing modes per coordinate.
	UMode, VMode, WMode WrapModes

	sampler *wgpu.Sampler
}

// Defaults sets linear filtering and repeat addressing.
func (sm *Sampler) Defaults() {
	sm.MagFilter = FilterLinear
	sm.MinFilter = FilterLinear
	sm.UMode = Repeat
	sm.VMode = Repeat
	sm.WMode = Repeat
}

// Config creates the underlying sampler on the device,
// releasing any prior one.
func (sm *Sampler) Config(dev *Device) error {
	sm.Release()
	samp, err := dev.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         sm.Name,
		AddressModeU:  sm.UMode.Mode(),
		AddressModeV:  sm.VMode.Mode(),
		AddressModeW:  sm.WMode.Mode(),
		MagFilter:     sm.MagFilter.Mode(),
		MinFilter:     sm.MinFilter.Mode(),
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return errors.Log(err)
	}
	sm.sampler = samp
	return nil
}

// Sampler returns the device sampler, configuring it on first use.
func (sm *Sampler) Sampler(dev *Device) (*wgpu.Sampler, error) {
	if sm.sampler == nil {
		if err := sm.Config(dev); err != nil {
			return nil, err
		}
	}
	return sm.sampler, nil
}

func (sm *Sampler) Release() {
	if sm.sampler != nil {
		sm.sampler.Release()
		sm.sampler = nil
	}
}
