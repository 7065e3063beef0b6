package params_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/lvlabel/matrix"
	"github.com/katalvlaran/lvlabel/params"
)

var negInf = math.Inf(-1)

const handWritten = `
trans_matrix:
  - [-.inf, -.inf, -.inf]
  - [-.inf, 0, 1]
  - [-.inf, 0.5, 0]
init_matrix:
  - [-.inf, 0, -.inf]
`

// TestRead_HandWritten parses a flow-style document with -.inf entries.
func TestRead_HandWritten(t *testing.T) {
	p, err := params.Read(strings.NewReader(handWritten))
	require.NoError(t, err)
	assert.Equal(t, []string{params.KeyInitial, params.KeyTransitions}, p.Names())

	trans, err := p.Matrix(params.KeyTransitions)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{
		{negInf, negInf, negInf},
		{negInf, 0, 1},
		{negInf, 0.5, 0},
	}, trans.ToRows())

	initial, err := p.Vector(params.KeyInitial)
	require.NoError(t, err)
	assert.Equal(t, []float64{negInf, 0, negInf}, initial)
}

// TestWriteRead_PreservesNegInf round-trips a table containing -Inf.
func TestWriteRead_PreservesNegInf(t *testing.T) {
	p := params.Params{}
	require.NoError(t, p.SetVector(params.KeyInitial, []float64{negInf, 0.25, -3}))

	var buf bytes.Buffer
	require.NoError(t, params.Write(&buf, p))
	assert.Contains(t, buf.String(), "-.inf")

	back, err := params.Read(&buf)
	require.NoError(t, err)
	v, err := back.Vector(params.KeyInitial)
	require.NoError(t, err)
	assert.Equal(t, []float64{negInf, 0.25, -3}, v)
}

// TestRead_Errors covers malformed documents.
func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"ragged", "w:\n  - [1, 2]\n  - [3]\n", matrix.ErrDimensionMismatch},
		{"nan", "w:\n  - [1, .nan]\n", matrix.ErrNaNInf},
		{"plus inf", "w:\n  - [.inf]\n", matrix.ErrNaNInf},
		{"empty rows", "w: []\n", matrix.ErrInvalidDimensions},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := params.Read(strings.NewReader(tc.doc))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err := params.Read(strings.NewReader("w: [[1, oops]]\n"))
	require.Error(t, err, "non-numeric entry")

	p, err := params.Read(strings.NewReader(""))
	require.NoError(t, err, "empty document")
	assert.Empty(t, p)
}

// TestVector covers row, column and non-vector parameters.
func TestVector(t *testing.T) {
	col, err := matrix.NewDenseFrom([][]float64{{1}, {2}, {3}})
	require.NoError(t, err)
	sq, err := matrix.NewDenseFrom([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	p := params.Params{"col": col, "sq": sq}

	v, err := p.Vector("col")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, v)

	_, err = p.Vector("sq")
	assert.ErrorIs(t, err, params.ErrNotVector)

	_, err = p.Vector("missing")
	assert.ErrorIs(t, err, params.ErrUnknownParam)

	assert.Error(t, params.Write(&bytes.Buffer{}, params.Params{"nil": nil}))
}

// TestSaveLoadInto persists to disk and overlays onto existing parameters.
func TestSaveLoadInto(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")

	saved := params.Params{}
	require.NoError(t, saved.SetVector(params.KeyInitial, []float64{negInf, 1, 2}))
	require.NoError(t, params.Save(path, saved))

	old, err := matrix.NewDenseFrom([][]float64{{9, 9, 9}})
	require.NoError(t, err)
	keep, err := matrix.NewDenseFrom([][]float64{{7}})
	require.NoError(t, err)
	dst := params.Params{params.KeyInitial: old, "bias": keep}

	core, logs := observer.New(zapcore.InfoLevel)
	got, err := params.LoadInto(path, dst, params.WithLogger(zap.New(core)))
	require.NoError(t, err)

	v, err := got.Vector(params.KeyInitial)
	require.NoError(t, err)
	assert.Equal(t, []float64{negInf, 1, 2}, v, "stored parameter wins")
	assert.Same(t, keep, got["bias"], "unmentioned parameters stay")

	entries := logs.FilterMessage("updating parameter").All()
	require.Len(t, entries, 1)
	assert.Equal(t, params.KeyInitial, entries[0].ContextMap()["name"])

	fresh, err := params.LoadInto(path, nil)
	require.NoError(t, err)
	assert.Len(t, fresh, 1)

	_, err = params.Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
