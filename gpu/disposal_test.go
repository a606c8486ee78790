// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisposalFrames(t *testing.T) {
	da := &disposalArena{}
	var order []int
	da.add(0, func() { order = append(order, 0) })
	da.add(1, func() { order = append(order, 1) })
	da.add(2, func() { order = append(order, 2) })
	da.add(1, nil) // ignored

	n := da.collect(1)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{0, 1}, order)
	assert.Len(t, da.pending, 1)

	// collecting the same frame again runs nothing
	assert.Equal(t, 0, da.collect(1))

	assert.Equal(t, 1, da.collect(2))
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Empty(t, da.pending)
}

func TestDisposalCollectAll(t *testing.T) {
	da := &disposalArena{}
	ran := 0
	for i := range 5 {
		da.add(uint64(i), func() { ran++ })
	}
	assert.Equal(t, 5, da.collectAll())
	assert.Equal(t, 5, ran)
	assert.Empty(t, da.pending)
}
