// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderWatcher(t *testing.T) {
	dir := t.TempDir()
	sw, err := NewShaderWatcher()
	require.NoError(t, err)
	defer sw.Close()
	require.NoError(t, sw.Watch(dir))

	fname := filepath.Join(dir, "draw.wgsl")
	require.NoError(t, os.WriteFile(fname, []byte("// shader"), 0o644))

	assert.Eventually(t, func() bool {
		for _, f := range sw.Dirty() {
			if f == fname {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	// Dirty clears the set
	assert.Empty(t, sw.Dirty())
}

func TestShaderWatcherIgnoresOther(t *testing.T) {
	dir := t.TempDir()
	sw, err := NewShaderWatcher()
	require.NoError(t, err)
	defer sw.Close()
	require.NoError(t, sw.Watch(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	assert.Never(t, func() bool {
		return len(sw.Dirty()) > 0
	}, 300*time.Millisecond, 50*time.Millisecond)
}
