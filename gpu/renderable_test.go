// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawMeshQueues(t *testing.T) {
	gx := &Graphics{Pipeline: NewRenderQueue()}
	ident := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

	gx.DrawMesh(&Mesh{Name: "a"}, &Material{Name: "flat"}, ident)
	gx.DrawMesh(&Mesh{Name: "b"}, &Material{Name: "flat"}, ident, &DrawOptions{})

	rq := gx.Pipeline.(*RenderQueue)
	require.Equal(t, 2, rq.Len())
	assert.Nil(t, rq.renderables[0].Options)
	assert.NotNil(t, rq.renderables[1].Options)

	gx.Pipeline.ClearRenderables()
	assert.Equal(t, 0, rq.Len())
}

func TestRecordDrawsSkipsIncomplete(t *testing.T) {
	rq := NewRenderQueue()
	// no mesh, no material, no pipeline: all skipped
	rq.AddRenderable(&Renderable{})
	rq.AddRenderable(&Renderable{Mesh: &Mesh{}})
	rq.AddRenderable(&Renderable{Mesh: &Mesh{}, Material: &Material{}})

	// every renderable is skipped, so the pass is never touched
	assert.NotPanics(t, func() { rq.RecordDraws(nil) })
}
