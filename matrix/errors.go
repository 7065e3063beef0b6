// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All constructors and accessors return these sentinels (optionally
// wrapped with call-site context) and tests check them via errors.Is.
// No exported function panics on user-triggered error conditions.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." so log lines are easy to grep.
// Context is attached with fmt.Errorf("ctx: %w", ErrX) at the detection site;
// callers still match with errors.Is.
//
// ERROR PRIORITY (enforced in tests):
// nil -> shape -> index -> numeric policy.

var (
	// ErrInvalidDimensions indicates that requested dimensions are non-positive,
	// or that a row-slice literal was empty.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	// At/Set/Row return this instead of panicking.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions: a ragged row
	// literal, a non-square matrix where a square one is required, or a
	// vector of the wrong length.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNaNInf signals a NaN or +Inf score. -Inf is never reported: in
	// log-space it is the legal "unreachable" value.
	ErrNaNInf = errors.New("matrix: NaN or +Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")
)
