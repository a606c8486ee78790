// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"time"

	"github.com/ember3d/ember/base/errors"
)

// Fence tracks completion of a command-list submission. WebGPU has no
// standalone fence primitive, so completion is observed by polling the
// device for queue idleness. A fence is signaled once all work
// submitted up to and including its submission has finished.
type Fence struct {
	Name string

	device   *Device
	signaled bool
}

// Signaled reports whether the fence has been observed as signaled.
// It polls the device without blocking.
func (fc *Fence) Signaled() bool {
	if fc.signaled {
		return true
	}
	if fc.device.Device.Poll(false, nil) {
		fc.signaled = true
	}
	return fc.signaled
}

// wait blocks until the fence signals or the timeout elapses.
// A zero timeout waits indefinitely.
func (fc *Fence) wait(timeout time.Duration) error {
	if fc.signaled {
		return nil
	}
	if timeout == 0 {
		fc.device.WaitDone()
		fc.signaled = true
		return nil
	}
	deadline := time.Now().Add(timeout)
	for {
		if fc.device.Device.Poll(false, nil) {
			fc.signaled = true
			return nil
		}
		if time.Now().After(deadline) {
			return errors.Log(fmt.Errorf("%w: fence %q after %v", ErrTimeout, fc.Name, timeout))
		}
		time.Sleep(100 * time.Microsecond)
	}
}
