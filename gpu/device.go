// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ember3d/ember/base/errors"
)

// Device holds the logical WebGPU device and its queue.
type Device struct {
	// Device is the logical WebGPU device.
	Device *wgpu.Device

	// Queue is the default command queue for the device.
	Queue *wgpu.Queue
}

// NewDevice creates a logical device on the given GPU adapter.
func NewDevice(gp *GPU) (*Device, error) {
	wdev, err := gp.Adapter.RequestDevice(nil)
	if err != nil {
		return nil, errors.Log(errors.Wrap(err, "gpu: device creation failed"))
	}
	return &Device{Device: wdev, Queue: wdev.GetQueue()}, nil
}

// WaitDone blocks until the device is done with all submitted work.
// This is a hard synchronization point: no overlap of GPU work across
// it is possible.
func (dv *Device) WaitDone() {
	if dv.Device == nil {
		return
	}
	dv.Device.Poll(true, nil)
}

// Release waits for the device to go idle and then releases it.
// Terminal: no further graphics operations are valid afterward.
func (dv *Device) Release() {
	if dv.Device == nil {
		return
	}
	dv.WaitDone()
	dv.Device.Release()
	dv.Device = nil
	dv.Queue = nil
}
