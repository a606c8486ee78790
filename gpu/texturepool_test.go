// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

// fakePool returns a pool whose targets carry no GPU resource.
func fakePool() (*TexturePool, *int) {
	created := 0
	tp := &TexturePool{free: map[poolKey][]poolEntry{}}
	tp.newTarget = func(dev *Device, tf *TextureFormat) (*Texture, error) {
		created++
		return &Texture{Name: "fake", Format: *tf, owned: true}, nil
	}
	return tp, &created
}

func TestPoolReuse(t *testing.T) {
	tp, created := fakePool()
	tx, err := tp.Get(512, 512, wgpu.TextureFormatRGBA8UnormSrgb, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, *created)

	tp.Return(tx)
	tx2, err := tp.Get(512, 512, wgpu.TextureFormatRGBA8UnormSrgb, 1)
	assert.NoError(t, err)
	assert.Same(t, tx, tx2)
	assert.Equal(t, 1, *created)

	// different shape allocates fresh
	_, err = tp.Get(256, 256, wgpu.TextureFormatRGBA8UnormSrgb, 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, *created)

	// different samples allocate fresh even at the same size
	tp.Return(tx2)
	_, err = tp.Get(512, 512, wgpu.TextureFormatRGBA8UnormSrgb, 4)
	assert.NoError(t, err)
	assert.Equal(t, 3, *created)
}

func TestPoolExpiry(t *testing.T) {
	tp, created := fakePool()
	tx, _ := tp.Get(128, 128, wgpu.TextureFormatRGBA8UnormSrgb, 1)
	tp.Return(tx)

	// within the expiry window the entry survives
	tp.update(poolExpiry)
	assert.Len(t, tp.free, 1)

	// past the window it is released
	tp.update(poolExpiry + 1)
	assert.Empty(t, tp.free)
	assert.True(t, tx.released)

	// a fresh Get reallocates
	_, err := tp.Get(128, 128, wgpu.TextureFormatRGBA8UnormSrgb, 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, *created)
}

func TestPoolRelease(t *testing.T) {
	tp, _ := fakePool()
	tx, _ := tp.Get(64, 64, wgpu.TextureFormatRGBA8UnormSrgb, 1)
	tp.Return(tx)
	tp.Release()
	assert.True(t, tx.released)
	assert.Empty(t, tp.free)
}
