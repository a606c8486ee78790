// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uidraw

// boundedCache memoizes GPU objects with a hard entry-count bound.
// When an insert would push the count past the limit, the whole cache
// is cleared (onClear releases the evicted values) and rebuilt from
// scratch. Simple wholesale clearing bounds GPU-object growth over a
// long session at the cost of a latency spike on the clearing frame.
type boundedCache[K comparable, V any] struct {
	limit   int
	entries map[K]V

	// onClear releases evicted values at wholesale clear time.
	onClear func(map[K]V)
}

func newBoundedCache[K comparable, V any](limit int, onClear func(map[K]V)) *boundedCache[K, V] {
	return &boundedCache[K, V]{limit: limit, entries: map[K]V{}, onClear: onClear}
}

func (bc *boundedCache[K, V]) get(key K) (V, bool) {
	v, ok := bc.entries[key]
	return v, ok
}

// add inserts the value, clearing the whole cache first when the
// insert would exceed the limit. Reports whether a clear ran.
func (bc *boundedCache[K, V]) add(key K, v V) bool {
	cleared := false
	if len(bc.entries) >= bc.limit {
		bc.clear()
		cleared = true
	}
	bc.entries[key] = v
	return cleared
}

func (bc *boundedCache[K, V]) len() int { return len(bc.entries) }

func (bc *boundedCache[K, V]) clear() {
	if bc.onClear != nil {
		bc.onClear(bc.entries)
	}
	bc.entries = map[K]V{}
}
