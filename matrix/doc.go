// Package matrix offers the dense score tables used by the decoder.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked accessors.
//   - A log-space numeric policy: -Inf ("unreachable") is always legal,
//     NaN and +Inf are rejected unless WithNoValidateScores is given.
//   - Validators (ValidateSquare, ValidateVecLen, ...) that return
//     sentinel errors usable with errors.Is.
//
// Transition matrices and initial-score vectors are loaded once per model
// and shared read-only; see the viterbi and params packages.
package matrix
