// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// drawlists opens a window and renders immediate-mode UI draw lists:
// filled rectangles, an image quad, and text from the default atlas.
package main

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/gpu"
	"github.com/ember3d/ember/gpu/uidraw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		slog.Error("drawlists", "err", err)
		os.Exit(1)
	}
}

func run() error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	cfg, _ := gpu.OpenConfig("drawlists.toml")
	gpu.Debug = cfg.Debug

	gp, err := gpu.NewGPU(nil, cfg.BackendValue())
	if err != nil {
		return err
	}
	defer gp.Release()

	window, wsf, err := gpu.GLFWCreateWindow(gp, 1024, 768, "ember draw lists")
	if err != nil {
		return err
	}
	defer window.Destroy()

	width, height := window.GetSize()
	sf, err := gpu.NewSurface(gp, wsf, image.Point{width, height}, cfg.Samples,
		wgpu.TextureFormatUndefined, cfg.VSync)
	if err != nil {
		return err
	}
	gx := gpu.NewGraphics(gp, sf)
	defer gx.Release()

	ui := uidraw.New(gx)
	ui.SetCacheLimit(cfg.CacheLimit)
	if err := ui.Init(uidraw.ColorSpaceSrgb); err != nil {
		return err
	}
	scale := gpu.WindowContentScale(window)

	window.SetSizeCallback(func(_ *glfw.Window, w, h int) {
		sf.SetSize(image.Point{w, h})
	})

	list := &uidraw.DrawList{}
	for !window.ShouldClose() {
		glfw.PollEvents()
		frame := gx.Frame()
		sz := sf.Size()

		list.Clear()
		list.AddRect(20, 20, 320, 120, uidraw.ColorRGBA(40, 90, 180, 255))
		list.AddRect(40, 140, 360, 180, uidraw.ColorRGBA(200, 120, 30, 200))
		list.PushClip(0, 0, float32(sz.X)/2, float32(sz.Y))
		list.AddRect(300, 200, 700, 400, uidraw.ColorRGBA(60, 160, 80, 255))
		list.PopClip()
		list.AddText(ui.Font, 30, 50, uidraw.ColorWhite,
			fmt.Sprintf("frame %d  %dx%d", frame, sz.X, sz.Y))

		view, err := sf.GetCurrentTexture()
		if err != nil {
			return err
		}
		cl, err := gx.NewCommandList("ui")
		if err != nil {
			return err
		}
		rp, err := cl.BeginRenderPass(sf.Render(), view)
		if err != nil {
			return err
		}
		rp.End()
		rp.Release()
		if _, err := ui.Draw(cl, view, sf.Format.Format,
			[]*uidraw.DrawList{list}, sz, scale); err != nil {
			return err
		}
		if _, err := gx.Submit(cl, false); err != nil {
			return err
		}
		gx.EndFrame()
	}
	return nil
}
