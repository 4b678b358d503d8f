// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// ErrNotFound means that a requested block does not exist in the block
// store.
var ErrNotFound = errors.New("ctable: not found")

// ErrCorruption is a marker to indicate that data in a superblock or
// row-set descriptor isn't in the expected format.
var ErrCorruption = errors.New("ctable: corruption")

// CorruptionErrorf formats according to a format specifier and returns
// the string as an error value that is marked as a corruption error.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruption)
}

// MarkCorruptionError marks the given error as a corruption error.
func MarkCorruptionError(err error) error {
	if IsCorruptionError(err) {
		return err
	}
	return errors.Mark(err, ErrCorruption)
}

// IsCorruptionError returns true if the given error indicates metadata
// corruption.
func IsCorruptionError(err error) bool {
	return errors.Is(err, ErrCorruption)
}

// ErrInvariantViolation is a marker for errors caused by caller misuse:
// reassigning a set-once block, appending a column block out of schema
// order, or passing overlapping remove/add sets to a commit. These
// indicate a bug in the caller rather than an environmental fault.
var ErrInvariantViolation = errors.New("ctable: invariant violation")

// InvariantErrorf formats according to a format specifier and returns
// the string as an error value that is marked as an invariant
// violation.
func InvariantErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedf(format, args...), ErrInvariantViolation)
}

// IsInvariantViolation returns true if the given error indicates caller
// misuse of the metadata layer.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}
