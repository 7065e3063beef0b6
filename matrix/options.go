// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the numeric policy.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors,
//   - gatherOptions helper (internal) that resolves the effective policy.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//
// Notes:
//   - Scores live in log-space. -Inf is the "unreachable" sentinel and is
//     always accepted. NaN and +Inf carry no meaning for a decoder and are
//     rejected while validation is on.
package matrix

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultValidateScores toggles NaN/+Inf rejection on NewDenseFrom and Set.
	DefaultValidateScores = true
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept `...Option` and resolve
// them via gatherOptions.
type Options struct {
	validateScores bool // DefaultValidateScores
}

// WithValidateScores enables NaN/+Inf rejection (the default).
//
// Complexity:
//   - Time O(1), Space O(1).
func WithValidateScores() Option {
	return func(o *Options) { o.validateScores = true }
}

// WithNoValidateScores disables NaN/+Inf rejection on newly created matrices.
// Existing matrices keep the policy they were created with.
//
// Complexity:
//   - Time O(1), Space O(1).
func WithNoValidateScores() Option {
	return func(o *Options) { o.validateScores = false }
}

// NewOptions resolves opts on top of the documented defaults.
func NewOptions(opts ...Option) Options {
	return gatherOptions(opts...)
}

// ValidatesScores reports whether the resolved policy rejects NaN/+Inf.
func (o Options) ValidatesScores() bool { return o.validateScores }

// gatherOptions applies user-provided Option setters on top of defaults.
// Implementation:
//   - Stage 1: start from Default* constants.
//   - Stage 2: apply setters in order (last-writer-wins).
//
// Complexity:
//   - Time O(k), Space O(1) for k=len(user).
func gatherOptions(user ...Option) Options {
	o := Options{
		validateScores: DefaultValidateScores,
	}
	for _, set := range user {
		set(&o) // apply in order; last-writer-wins semantics
	}

	return o
}
