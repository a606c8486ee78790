// Copyright (c) 2026, Ember 3D. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides a logging wrapper around the standard
// [errors] package, so that errors are both returned and recorded
// at the point where they first occur.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// New returns an error that formats as the given text.
// It is a direct pass-through to [errors.New].
func New(text string) error {
	return errors.New(text)
}

// Newf returns a formatted error, like [fmt.Errorf].
func Newf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Is reports whether any error in err's tree matches target.
// It is a direct pass-through to [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// It is a direct pass-through to [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join wraps the given errors into one error.
// It is a direct pass-through to [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Wrap returns an error wrapping the given error with the given
// message, using the %w verb. It returns nil if err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CallerInfo returns string information about the caller
// of the function that called CallerInfo.
func CallerInfo() string {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	name := ""
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
	}
	return fmt.Sprintf("%s (%s:%d)", name, file, line)
}

// Log takes the given error and logs it if it is non-nil,
// returning it either way. Use it for inline error handling
// where the error should be recorded but handling continues
// in the caller:
//
//	return errors.Log(tx.CreateTexture())
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error(), "from", CallerInfo())
	}
	return err
}

// Log1 is a version of [Log] for functions that return a value
// in addition to an error.
func Log1[T any](v T, err error) T {
	if err != nil {
		slog.Error(err.Error(), "from", CallerInfo())
	}
	return v
}

// Must panics if the given error is non-nil.
// Use only where an error is truly impossible or unrecoverable.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 is a version of [Must] for functions that return a value
// in addition to an error.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Ignore1 ignores the error and returns just the value.
// Use only where the error genuinely does not matter.
func Ignore1[T any](v T, err error) T {
	return v
}
