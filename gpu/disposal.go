// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

// disposalArena holds resources queued for deferred release, tagged
// with the frame in which they were retired. Releases run only once
// the GPU can no longer reference the resource, at end of frame after
// device idle.
type disposalArena struct {
	pending []disposalEntry
}

type disposalEntry struct {
	frame   uint64
	release func()
}

// add queues a release function, tagged with the current frame.
func (da *disposalArena) add(frame uint64, release func()) {
	if release == nil {
		return
	}
	da.pending = append(da.pending, disposalEntry{frame: frame, release: release})
}

// collect runs and removes every release queued at or before the
// given retired frame, returning how many ran.
func (da *disposalArena) collect(retired uint64) int {
	n := 0
	keep := da.pending[:0]
	for _, de := range da.pending {
		if de.frame <= retired {
			de.release()
			n++
		} else {
			keep = append(keep, de)
		}
	}
	da.pending = keep
	return n
}

// collectAll runs every pending release regardless of frame.
func (da *disposalArena) collectAll() int {
	n := len(da.pending)
	for _, de := range da.pending {
		de.release()
	}
	da.pending = da.pending[:0]
	return n
}
