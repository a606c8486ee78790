// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slicesx provides additional slice functions
// beyond those in the standard [slices] package.
package slicesx

// SetLength sets the length of the given slice, re-using
// existing capacity where possible and preserving existing
// data up to the new length.
func SetLength[E any](s []E, n int) []E {
	if n <= cap(s) {
		return s[:n]
	}
	ns := make([]E, n)
	copy(ns, s)
	return ns
}
