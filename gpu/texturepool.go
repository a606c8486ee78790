// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

// poolExpiry is how many frames an unused pooled target survives
// before it is released.
const poolExpiry = 8

type poolKey struct {
	width, height int
	format        wgpu.TextureFormat
	samples       int
}

type poolEntry struct {
	tex      *Texture
	lastUsed uint64
}

// TexturePool recycles transient render-target textures across
// frames, keyed by size, format, and sample count, so per-frame
// intermediate targets do not allocate every frame. Entries unused
// for [poolExpiry] frames are released at end of frame.
type TexturePool struct {
	device *Device
	free   map[poolKey][]poolEntry
	frame  uint64

	// newTarget creates a pooled target; tests inject a fake.
	newTarget func(dev *Device, tf *TextureFormat) (*Texture, error)
}

func newTexturePool(dev *Device) *TexturePool {
	return &TexturePool{
		device: dev,
		free:   map[poolKey][]poolEntry{},
		newTarget: func(dev *Device, tf *TextureFormat) (*Texture, error) {
			return NewTexture(dev, "pooled-target", tf)
		},
	}
}

// Get returns a render-target texture of the given shape, reusing a
// pooled one when available. Return it with [TexturePool.Return] when
// the frame no longer needs it.
func (tp *TexturePool) Get(width, height int, format wgpu.TextureFormat, samples int) (*Texture, error) {
	key := poolKey{width: width, height: height, format: format, samples: samples}
	if list := tp.free[key]; len(list) > 0 {
		ent := list[len(list)-1]
		tp.free[key] = list[:len(list)-1]
		return ent.tex, nil
	}
	tf := &TextureFormat{Dimension: Texture2D, Depth: 1, Layers: 1, Levels: 1,
		Samples: samples, Format: format,
		Usage: TextureRenderTarget | TextureSampled | TextureStaging}
	tf.Size.X, tf.Size.Y = width, height
	tf.Clamp()
	tex, err := tp.newTarget(tp.device, tf)
	if err != nil {
		return nil, errors.Log(err)
	}
	return tex, nil
}

// Return gives a texture back to the pool for reuse.
func (tp *TexturePool) Return(tex *Texture) {
	if tex == nil {
		return
	}
	key := poolKey{width: tex.Format.Size.X, height: tex.Format.Size.Y,
		format: tex.Format.Format, samples: tex.Format.Samples}
	tp.free[key] = append(tp.free[key], poolEntry{tex: tex, lastUsed: tp.frame})
}

// update advances the pool's frame counter and releases entries that
// have sat unused past the expiry window. Called at end of frame.
func (tp *TexturePool) update(frame uint64) {
	tp.frame = frame
	for key, list := range tp.free {
		keep := list[:0]
		for _, ent := range list {
			if frame-ent.lastUsed > poolExpiry {
				ent.tex.Release()
			} else {
				keep = append(keep, ent)
			}
		}
		if len(keep) == 0 {
			delete(tp.free, key)
		} else {
			tp.free[key] = keep
		}
	}
}

// Release releases all pooled textures.
func (tp *TexturePool) Release() {
	for _, list := range tp.free {
		for _, ent := range list {
			ent.tex.Release()
		}
	}
	tp.free = map[poolKey][]poolEntry{}
}
