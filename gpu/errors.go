// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import "errors"

// Error taxonomy for the render core. All errors returned from this
// package wrap one of these sentinels, so callers can classify
// failures with [errors.Is] without string matching.
var (
	// ErrValidation indicates a malformed resource description or a
	// format / usage / sample-count combination the backend rejects.
	ErrValidation = errors.New("gpu: validation failed")

	// ErrRange indicates an out-of-bounds rectangle, layer, or
	// mip-level argument.
	ErrRange = errors.New("gpu: argument out of range")

	// ErrOwnership indicates a mutating operation on a resource that
	// is not owned by its wrapper (e.g., an adopted texture).
	ErrOwnership = errors.New("gpu: resource not owned")

	// ErrTypeMismatch indicates adopting a resource whose
	// dimensionality does not match the expected type.
	ErrTypeMismatch = errors.New("gpu: resource type mismatch")

	// ErrInsufficientBuffer indicates a caller-provided buffer that is
	// too small for the requested transfer.
	ErrInsufficientBuffer = errors.New("gpu: buffer too small")

	// ErrUnsupported indicates an operation the resource was not
	// created for (e.g., mipmap generation without the mipmap usage
	// flag) or a missing shader variant.
	ErrUnsupported = errors.New("gpu: operation not supported")

	// ErrTimeout indicates a fence wait that elapsed before the GPU
	// signaled completion.
	ErrTimeout = errors.New("gpu: wait timed out")

	// ErrReleased indicates an operation on a resource after it has
	// been released. Such operations fail defensively instead of
	// touching freed GPU handles.
	ErrReleased = errors.New("gpu: resource already released")
)
