// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/lvlabel/matrix"
	"github.com/stretchr/testify/assert"
)

// TestOptionsDefaults pins the documented defaults.
func TestOptionsDefaults(t *testing.T) {
	o := matrix.NewOptions()
	assert.Equal(t, matrix.DefaultValidateScores, o.ValidatesScores())
}

// TestOptionsLastWriterWins verifies setters apply in order.
func TestOptionsLastWriterWins(t *testing.T) {
	o := matrix.NewOptions(matrix.WithNoValidateScores())
	assert.False(t, o.ValidatesScores())

	o = matrix.NewOptions(matrix.WithNoValidateScores(), matrix.WithValidateScores())
	assert.True(t, o.ValidatesScores())
}
