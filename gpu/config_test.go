// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cf := &Config{}
	cf.Defaults()
	assert.True(t, cf.VSync)
	assert.Equal(t, "default", cf.Backend)
	assert.Equal(t, 4, cf.Samples)
	assert.Equal(t, BackendDefault, cf.BackendValue())
}

func TestConfigBackendValue(t *testing.T) {
	cf := &Config{Backend: "vulkan"}
	assert.Equal(t, BackendVulkan, cf.BackendValue())
	cf.Backend = "metal"
	assert.Equal(t, BackendMetal, cf.BackendValue())
	cf.Backend = "d3d12"
	assert.Equal(t, BackendD3D12, cf.BackendValue())
	cf.Backend = "nonsense"
	assert.Equal(t, BackendDefault, cf.BackendValue())
}

func TestConfigRoundTrip(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "render.toml")
	cf := &Config{}
	cf.Defaults()
	cf.VSync = false
	cf.Backend = "vulkan"
	cf.Samples = 8
	cf.CacheLimit = 100
	assert.NoError(t, SaveConfig(cf, fname))

	got, err := OpenConfig(fname)
	assert.NoError(t, err)
	assert.Equal(t, cf, got)
}

func TestConfigPartialFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "render.toml")
	assert.NoError(t, os.WriteFile(fname, []byte("samples = 2\n"), 0o644))

	got, err := OpenConfig(fname)
	assert.NoError(t, err)
	assert.Equal(t, 2, got.Samples)
	// missing fields keep defaults
	assert.True(t, got.VSync)
	assert.Equal(t, "default", got.Backend)
}

func TestConfigMissingFile(t *testing.T) {
	got, err := OpenConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
	// defaults still returned
	assert.True(t, got.VSync)
}
