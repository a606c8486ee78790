// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"bytes"
	"image"
	"os"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDevice returns a headless GPU and device, skipping when no GPU
// is available in the environment.
func testDevice(t *testing.T) (*GPU, *Device) {
	t.Helper()
	if os.Getenv("EMBER_TEST_GPU") == "" {
		t.Skip("Need software GPU on CI; set EMBER_TEST_GPU=1 to run")
	}
	gp, dev, err := NoDisplayGPU()
	require.NoError(t, err)
	return gp, dev
}

func TestTextureRoundTrip(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()
	defer dev.Release()

	tf := NewTextureFormat(256, 256)
	tx, err := NewTexture(dev, "roundtrip", tf)
	require.NoError(t, err)
	defer tx.Release()

	wr := make([]byte, 64*64*4)
	for i := 0; i < len(wr); i += 4 {
		wr[i], wr[i+1], wr[i+2], wr[i+3] = 200, 60, 20, 255
	}
	rg := Region{Width: 64, Height: 64, Depth: 1}
	require.NoError(t, tx.WriteRegion(wr, rg, 0, 0))

	rd := make([]byte, len(wr))
	require.NoError(t, tx.ReadRegion(rd, rg, 0, 0))
	assert.True(t, bytes.Equal(wr, rd))

	px, err := tx.ReadPixel(10, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte{200, 60, 20, 255}, px)
}

func TestTextureClampCreate(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()
	defer dev.Release()

	tf := &TextureFormat{Format: wgpu.TextureFormatRGBA8UnormSrgb, Usage: TextureSampled | TextureStaging}
	tx, err := NewTexture(dev, "clamped", tf)
	require.NoError(t, err)
	defer tx.Release()
	assert.Equal(t, image.Point{1, 1}, tx.Format.Size)
	assert.Equal(t, 1, tx.Format.Levels)
}

func TestGenerateMipmaps(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()
	defer dev.Release()

	tf := NewTextureFormat(64, 64)
	tf.Format = wgpu.TextureFormatRGBA8Unorm
	// no staging usage: the mipmap flag alone must allow generation
	tf.Usage = TextureSampled | TextureMipmaps
	tf.Levels = tf.MaxLevels()
	tx, err := NewTexture(dev, "mips", tf)
	require.NoError(t, err)
	defer tx.Release()

	solid := make([]byte, 64*64*4)
	for i := range solid {
		solid[i] = 128
	}
	require.NoError(t, tx.Write(solid, 0))
	require.NoError(t, tx.GenerateMipmaps())
	assert.True(t, tx.Mipmapped())
}

func TestGraphicsFrameLifecycle(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()

	rt, err := NewRenderTextureOnDevice(dev, image.Point{320, 240}, 1, wgpu.TextureFormatUndefined)
	require.NoError(t, err)
	gx := NewGraphics(gp, rt)
	defer gx.Release()

	disposed := false
	gx.DisposeLater(func() { disposed = true })
	require.NoError(t, gx.RenderFrame())
	gx.EndFrame()
	assert.True(t, disposed)
	assert.Equal(t, uint64(1), gx.Frame())

	// resize applies at the frame boundary
	rt.SetSize(image.Point{640, 480})
	require.NoError(t, gx.RenderFrame())
	gx.EndFrame()
	assert.Equal(t, image.Point{640, 480}, rt.Size())
}

func TestSubmitFence(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()

	rt, err := NewRenderTextureOnDevice(dev, image.Point{64, 64}, 1, wgpu.TextureFormatUndefined)
	require.NoError(t, err)
	gx := NewGraphics(gp, rt)
	defer gx.Release()

	src, err := NewTexture(dev, "src", NewTextureFormat(64, 64))
	require.NoError(t, err)
	defer src.Release()
	dst, err := NewTexture(dev, "dst", NewTextureFormat(64, 64))
	require.NoError(t, err)
	defer dst.Release()

	cl, err := gx.NewCommandList("copy")
	require.NoError(t, err)
	require.NoError(t, cl.CopyTexture(dst, src))
	fc, err := gx.Submit(cl, true)
	require.NoError(t, err)
	require.NotNil(t, fc)
	assert.NoError(t, gx.WaitFor(5*time.Second, fc))
	assert.True(t, fc.Signaled())
}

func TestBlit(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()

	rt, err := NewRenderTextureOnDevice(dev, image.Point{64, 64}, 1, wgpu.TextureFormatUndefined)
	require.NoError(t, err)
	gx := NewGraphics(gp, rt)
	defer gx.Release()

	src, err := NewTexture(dev, "src", NewTextureFormat(32, 32))
	require.NoError(t, err)
	defer src.Release()
	solid := make([]byte, 32*32*4)
	for i := 0; i < len(solid); i += 4 {
		solid[i], solid[i+3] = 255, 255
	}
	require.NoError(t, src.Write(solid, 0))

	df := NewTextureFormat(64, 64)
	df.Usage |= TextureRenderTarget
	dst, err := NewTexture(dev, "dst", df)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, gx.Blit(dst, src))
	px, err := dst.ReadPixel(32, 32)
	require.NoError(t, err)
	assert.Equal(t, byte(255), px[3])
}

func TestAdoptTexture(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()
	defer dev.Release()

	own, err := NewTexture(dev, "own", NewTextureFormat(32, 32))
	require.NoError(t, err)
	defer own.Release()

	ad, err := AdoptTexture(dev, own.Texture(), &own.Format, Texture2D)
	require.NoError(t, err)
	assert.False(t, ad.Owned())
	assert.True(t, ad.Equal(own, true))

	// adopted textures reject mutation
	err = ad.Write(make([]byte, 32*32*4), 0)
	assert.ErrorIs(t, err, ErrOwnership)

	// releasing the adopter leaves the resource usable by its owner
	ad.Release()
	require.NoError(t, own.Write(make([]byte, 32*32*4), 0))
}

func TestUpdateBuffer(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()
	defer dev.Release()

	buf, err := dev.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "update",
		Size:  16,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	require.NoError(t, err)
	defer buf.Release()

	cl, err := NewCommandList(dev, "update")
	require.NoError(t, err)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, cl.UpdateBuffer(buf, 4, data))

	// past the end of the buffer
	err = cl.UpdateBuffer(buf, 12, data)
	assert.ErrorIs(t, err, ErrRange)

	require.NoError(t, cl.Finish())
	require.NoError(t, cl.submit())
	dev.WaitDone()
}

func TestWaitAny(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()

	rt, err := NewRenderTextureOnDevice(dev, image.Point{64, 64}, 1, wgpu.TextureFormatUndefined)
	require.NoError(t, err)
	gx := NewGraphics(gp, rt)
	defer gx.Release()

	src, err := NewTexture(dev, "src", NewTextureFormat(16, 16))
	require.NoError(t, err)
	defer src.Release()
	dst, err := NewTexture(dev, "dst", NewTextureFormat(16, 16))
	require.NoError(t, err)
	defer dst.Release()

	var fences []*Fence
	for range 2 {
		cl, err := gx.NewCommandList("copy")
		require.NoError(t, err)
		require.NoError(t, cl.CopyTexture(dst, src))
		fc, err := gx.Submit(cl, true)
		require.NoError(t, err)
		fences = append(fences, fc)
	}
	idx, err := gx.WaitAny(5*time.Second, fences...)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, 2)
	assert.NoError(t, gx.WaitFor(5*time.Second, fences...))
}

const testMeshShader = `
@vertex
fn vs_main(@location(0) pos: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestDrawMeshFrame(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()

	rt, err := NewRenderTextureOnDevice(dev, image.Point{64, 64}, 1, wgpu.TextureFormatUndefined)
	require.NoError(t, err)
	gx := NewGraphics(gp, rt)
	defer gx.Release()

	verts := []float32{-0.5, -0.5, 0.5, -0.5, 0, 0.5}
	mesh, err := NewMesh(dev, "tri", wgpu.ToBytes(verts), []uint32{0, 1, 2})
	require.NoError(t, err)
	defer mesh.Release()

	sh, err := dev.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "tri",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: testMeshShader},
	})
	require.NoError(t, err)
	defer sh.Release()
	pl, err := dev.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "tri",
		Vertex: wgpu.VertexState{
			Module:     sh,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: 8,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     sh,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    rt.Format.Format,
				Blend:     &wgpu.BlendStateReplace,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	require.NoError(t, err)
	mat := &Material{Name: "tri", Pipeline: pl}
	defer mat.Release()

	ident := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	gx.DrawMesh(mesh, mat, ident)
	rq := gx.Pipeline.(*RenderQueue)
	assert.Equal(t, 1, rq.Len())

	require.NoError(t, gx.RenderFrame())
	gx.EndFrame()
	assert.Equal(t, 0, rq.Len())
}

func TestCommandListFinishIdempotent(t *testing.T) {
	gp, dev := testDevice(t)
	defer gp.Release()
	defer dev.Release()

	cl, err := NewCommandList(dev, "empty")
	require.NoError(t, err)
	assert.False(t, cl.Finished())
	require.NoError(t, cl.Finish())
	assert.True(t, cl.Finished())
	assert.NoError(t, cl.Finish())
	cl.Release()
}
