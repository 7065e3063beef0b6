package labeling_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/lvlabel/labeling"
	"github.com/katalvlaran/lvlabel/matrix"
	"github.com/katalvlaran/lvlabel/viterbi"
)

var negInf = math.Inf(-1)

// fixedPredictor returns canned emissions and counts its calls.
type fixedPredictor struct {
	out   [][][]float64
	err   error
	calls int
}

func (p *fixedPredictor) Predict(_ context.Context, _ [][]int32, _ []int) ([][][]float64, error) {
	p.calls++

	return p.out, p.err
}

// LabelerSuite exercises the batch driver on the S=3 B/I tagset.
type LabelerSuite struct {
	suite.Suite
	trans   *matrix.Dense
	initial []float64
}

func TestLabelerSuite(t *testing.T) {
	suite.Run(t, new(LabelerSuite))
}

func (s *LabelerSuite) SetupTest() {
	trans, err := matrix.NewDenseFrom([][]float64{
		{negInf, negInf, negInf},
		{negInf, 0.0, 1.0},
		{negInf, 0.5, 0.0},
	})
	s.Require().NoError(err)
	s.trans = trans
	s.initial = []float64{negInf, 0.0, negInf}
}

// TestMissingArguments checks each required argument fails before Predict runs.
func (s *LabelerSuite) TestMissingArguments() {
	p := &fixedPredictor{}
	var typedNil *matrix.Dense
	ctx := context.Background()
	sentences := [][]int32{{1, 2}}
	lengths := []int{2}

	_, err := labeling.LabelBatch(ctx, sentences, lengths, nil, s.initial, p)
	s.Require().ErrorIs(err, labeling.ErrMissingArgument)
	s.Contains(err.Error(), "transitions")

	_, err = labeling.LabelBatch(ctx, sentences, lengths, typedNil, s.initial, p)
	s.Require().ErrorIs(err, labeling.ErrMissingArgument)
	s.Contains(err.Error(), "transitions")

	_, err = labeling.LabelBatch(ctx, sentences, lengths, s.trans, nil, p)
	s.Require().ErrorIs(err, labeling.ErrMissingArgument)
	s.Contains(err.Error(), "initial")

	_, err = labeling.LabelBatch(ctx, sentences, lengths, s.trans, s.initial, nil)
	s.Require().ErrorIs(err, labeling.ErrMissingArgument)
	s.Contains(err.Error(), "predictor")

	s.Zero(p.calls, "predictor must not run when arguments are missing")
}

// TestBatchOrderingAndTruncation decodes two items whose padding rows are malformed.
func (s *LabelerSuite) TestBatchOrderingAndTruncation() {
	p := &fixedPredictor{out: [][][]float64{
		{ // item 0: length 2, expected [1 2]
			{negInf, 1.0, 0.0},
			{negInf, 0.0, 1.0},
			{7}, // padding: would be InvalidShape if decoded
		},
		{ // item 1: length 1, expected [1]
			{negInf, 2.0, 5.0},
			{negInf, 9, 9},
			{},
		},
	}}

	got, err := labeling.LabelBatch(context.Background(),
		[][]int32{{4, 5, 0}, {6, 0, 0}}, []int{2, 1}, s.trans, s.initial, p)
	s.Require().NoError(err)
	s.Equal([][]viterbi.State{{1, 2}, {1}}, got)
	s.Equal(1, p.calls, "one Predict call per batch")
}

// TestPredictorErrorPropagates ensures predictor failures are returned unchanged in kind.
func (s *LabelerSuite) TestPredictorErrorPropagates() {
	boom := errors.New("model offline")
	p := &fixedPredictor{err: boom}

	got, err := labeling.LabelBatch(context.Background(), [][]int32{{1}}, []int{1}, s.trans, s.initial, p)
	s.Require().ErrorIs(err, boom)
	s.Nil(got)
}

// TestShapeErrors covers batch-level shape violations.
func (s *LabelerSuite) TestShapeErrors() {
	ctx := context.Background()
	row := []float64{negInf, 1, 0}

	tests := []struct {
		name      string
		out       [][][]float64
		sentences [][]int32
		lengths   []int
	}{
		{"lengths mismatch", [][][]float64{{row}}, [][]int32{{1}}, []int{1, 1}},
		{"short prediction", [][][]float64{{row}}, [][]int32{{1}, {2}}, []int{1, 1}},
		{"length beyond rows", [][][]float64{{row}}, [][]int32{{1, 2}}, []int{2}},
		{"negative length", [][][]float64{{row}}, [][]int32{{1}}, []int{-1}},
		{"empty sentence", [][][]float64{{row}}, [][]int32{{0}}, []int{0}},
		{"short emission row", [][][]float64{{{negInf, 1}}}, [][]int32{{1}}, []int{1}},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			p := &fixedPredictor{out: tc.out}
			_, err := labeling.LabelBatch(ctx, tc.sentences, tc.lengths, s.trans, s.initial, p)
			s.Require().ErrorIs(err, viterbi.ErrInvalidShape)
		})
	}
}

// TestInvalidModel surfaces transition/initial disagreement as InvalidShape.
func (s *LabelerSuite) TestInvalidModel() {
	_, err := labeling.NewLabeler(s.trans, []float64{0, 0}, &fixedPredictor{})
	s.Require().ErrorIs(err, viterbi.ErrInvalidShape)
}

// TestLoggerReceivesBatchDebug checks the injected zap logger is used.
func (s *LabelerSuite) TestLoggerReceivesBatchDebug() {
	core, logs := observer.New(zapcore.DebugLevel)
	p := &fixedPredictor{out: [][][]float64{{{negInf, 1, 0}}}}

	l, err := labeling.NewLabeler(s.trans, s.initial, p, labeling.WithLogger(zap.New(core)))
	s.Require().NoError(err)
	_, err = l.Label(context.Background(), [][]int32{{1}}, []int{1})
	s.Require().NoError(err)

	entries := logs.FilterMessage("predicted batch").All()
	s.Require().Len(entries, 1)
	s.EqualValues(1, entries[0].ContextMap()["items"])
}

// randomBatch builds a batch of items with random lengths and padded emissions.
func randomBatch(rng *rand.Rand, items, size, maxLen int) ([][]int32, []int, [][][]float64) {
	sentences := make([][]int32, items)
	lengths := make([]int, items)
	out := make([][][]float64, items)
	for i := range out {
		lengths[i] = 1 + rng.Intn(maxLen)
		sentences[i] = make([]int32, maxLen)
		out[i] = make([][]float64, maxLen)
		for t := range out[i] {
			out[i][t] = make([]float64, size)
			out[i][t][0] = negInf
			for k := 1; k < size; k++ {
				out[i][t][k] = rng.NormFloat64()
			}
		}
	}

	return sentences, lengths, out
}

// TestParallelMatchesSequential verifies WithWorkers does not change results.
func TestParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const size = 5
	rows := make([][]float64, size)
	for i := range rows {
		rows[i] = make([]float64, size)
		for j := range rows[i] {
			rows[i][j] = rng.NormFloat64()
		}
	}
	trans, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)
	initial := []float64{negInf, 0, 0, 0, 0}

	sentences, lengths, out := randomBatch(rng, 64, size, 20)
	p := labeling.PredictorFunc(func(context.Context, [][]int32, []int) ([][][]float64, error) {
		return out, nil
	})

	seq, err := labeling.LabelBatch(context.Background(), sentences, lengths, trans, initial, p)
	require.NoError(t, err)
	par, err := labeling.LabelBatch(context.Background(), sentences, lengths, trans, initial, p,
		labeling.WithWorkers(8))
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	for i, path := range par {
		assert.Len(t, path, lengths[i])
	}
}

// TestParallelStopsOnError ensures a failing item aborts the parallel batch.
func TestParallelStopsOnError(t *testing.T) {
	trans, err := matrix.NewDenseFrom([][]float64{{0, 0}, {0, 0}})
	require.NoError(t, err)

	out := make([][][]float64, 10)
	lengths := make([]int, 10)
	for i := range out {
		out[i] = [][]float64{{0, 1}}
		lengths[i] = 1
	}
	out[6] = [][]float64{{0}} // malformed
	p := labeling.PredictorFunc(func(context.Context, [][]int32, []int) ([][][]float64, error) {
		return out, nil
	})

	got, err := labeling.LabelBatch(context.Background(), make([][]int32, 10), lengths, trans,
		[]float64{0, 0}, p, labeling.WithWorkers(3))
	require.ErrorIs(t, err, viterbi.ErrInvalidShape)
	assert.Nil(t, got)
}

// TestCanceledContext returns the context error for any worker count.
func TestCanceledContext(t *testing.T) {
	trans, err := matrix.NewDenseFrom([][]float64{{0, 0}, {0, 0}})
	require.NoError(t, err)
	p := labeling.PredictorFunc(func(context.Context, [][]int32, []int) ([][][]float64, error) {
		return [][][]float64{{{0, 1}}, {{0, 1}}}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, workers := range []int{1, 2} {
		got, err := labeling.LabelBatch(ctx, [][]int32{{1}, {1}}, []int{1, 1}, trans, []float64{0, 0}, p,
			labeling.WithWorkers(workers))
		require.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
		assert.Nil(t, got, "workers=%d", workers)
	}
}

// TestWithWorkersPanics pins the programmer-error contract.
func TestWithWorkersPanics(t *testing.T) {
	assert.Panics(t, func() { labeling.WithWorkers(0) })
}
