// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !offscreen

package gpu

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/ember3d/ember/base/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// GLFWCreateWindow creates a glfw window of given size and title and
// the WebGPU surface for it, for demos and interactive testing.
// The caller must have called glfw.Init.
func GLFWCreateWindow(gp *GPU, width, height int, title string) (*glfw.Window, *wgpu.Surface, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, nil, errors.Log(err)
	}
	sf := gp.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))
	return window, sf, nil
}

// WindowContentScale queries the window's DPI content scale, used to
// scale UI clip rectangles. A failed query logs and returns 1, since
// DPI adjustment is non-fatal to rendering.
func WindowContentScale(window *glfw.Window) float32 {
	return safeContentScale(func() float32 {
		sx, _ := window.GetContentScale()
		return sx
	})
}

// safeContentScale runs the scale query, returning 1 when it panics
// or reports a non-positive scale.
func safeContentScale(query func() float32) (scale float32) {
	scale = 1
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("gpu: content scale query failed", "err", r)
			scale = 1
		}
	}()
	sx := query()
	if sx <= 0 {
		slog.Warn("gpu: content scale query returned non-positive scale", "scale", sx)
		return 1
	}
	return sx
}
