// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog(t *testing.T) {
	assert.NoError(t, Log(nil))
	err := New("test error")
	assert.Equal(t, err, Log(err))
}

func TestLog1(t *testing.T) {
	v := Log1(42, nil)
	assert.Equal(t, 42, v)
	v = Log1(7, New("boom"))
	assert.Equal(t, 7, v)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	err := New("inner")
	wrapped := Wrap(err, "outer")
	assert.ErrorIs(t, wrapped, err)
	assert.Contains(t, wrapped.Error(), "outer")
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must(nil) })
	assert.Panics(t, func() { Must(New("fail")) })
	assert.Equal(t, 3, Must1(3, nil))
}
