// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"os"

	"github.com/ember3d/ember/base/errors"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the render settings an application loads at startup,
// stored as TOML.
type Config struct {
	// VSync synchronizes presentation to the display refresh.
	VSync bool `toml:"vsync"`

	// Backend is the preferred graphics backend:
	// default, vulkan, metal, d3d12, d3d11, opengl.
	Backend string `toml:"backend"`

	// Samples is the MSAA sample count for the frame target.
	Samples int `toml:"samples"`

	// CacheLimit bounds the UI renderer's resource caches; the
	// renderer's default applies when 0.
	CacheLimit int `toml:"cache-limit"`

	// Debug enables extra GPU diagnostics logging.
	Debug bool `toml:"debug"`
}

// Defaults returns the default configuration: vsync on, platform
// backend, 4x MSAA.
func (cf *Config) Defaults() {
	cf.VSync = true
	cf.Backend = "default"
	cf.Samples = 4
	cf.CacheLimit = 0
	cf.Debug = false
}

// BackendValue parses the backend name, falling back to
// BackendDefault for anything unrecognized.
func (cf *Config) BackendValue() Backends {
	switch cf.Backend {
	case "vulkan":
		return BackendVulkan
	case "metal":
		return BackendMetal
	case "d3d12":
		return BackendD3D12
	case "d3d11":
		return BackendD3D11
	case "opengl":
		return BackendOpenGL
	default:
		return BackendDefault
	}
}

// OpenConfig loads a Config from the given TOML file, applying
// defaults first so missing fields keep their default values.
func OpenConfig(fname string) (*Config, error) {
	cf := &Config{}
	cf.Defaults()
	b, err := os.ReadFile(fname)
	if err != nil {
		return cf, errors.Log(err)
	}
	if err := toml.Unmarshal(b, cf); err != nil {
		return cf, errors.Log(err)
	}
	return cf, nil
}

// SaveConfig writes the Config to the given file as TOML.
func SaveConfig(cf *Config, fname string) error {
	b, err := toml.Marshal(cf)
	if err != nil {
		return errors.Log(err)
	}
	return errors.Log(os.WriteFile(fname, b, 0o644))
}
