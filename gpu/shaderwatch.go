// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/ember3d/ember/base/errors"
	"github.com/fsnotify/fsnotify"
)

// ShaderWatcher watches directories of .wgsl shader sources during
// development and reports when any changed, so callers can rebuild
// pipelines on the next frame instead of restarting.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	dirty map[string]bool
	done  chan struct{}
}

// NewShaderWatcher starts a watcher; add directories with
// [ShaderWatcher.Watch].
func NewShaderWatcher() (*ShaderWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Log(err)
	}
	sw := &ShaderWatcher{
		watcher: fw,
		dirty:   map[string]bool{},
		done:    make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

// Watch adds a directory whose .wgsl files are watched for changes.
func (sw *ShaderWatcher) Watch(dir string) error {
	return errors.Log(sw.watcher.Add(dir))
}

func (sw *ShaderWatcher) run() {
	for {
		select {
		case <-sw.done:
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if strings.ToLower(filepath.Ext(ev.Name)) != ".wgsl" {
				continue
			}
			sw.mu.Lock()
			sw.dirty[ev.Name] = true
			sw.mu.Unlock()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			errors.Log(err)
		}
	}
}

// Dirty returns the shader files changed since the last call, and
// clears the set. An empty result means nothing changed.
func (sw *ShaderWatcher) Dirty() []string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if len(sw.dirty) == 0 {
		return nil
	}
	files := make([]string, 0, len(sw.dirty))
	for f := range sw.dirty {
		files = append(files, f)
	}
	sw.dirty = map[string]bool{}
	return files
}

// Close stops the watcher.
func (sw *ShaderWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}
