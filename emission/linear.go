// Package emission provides a reference Predictor for the batch driver: a
// linear tagger that looks up each token's embedding, projects it onto the
// tagset and normalizes with log-softmax.
//
// For token id w the emission row is
//
//	logsoftmax(E[w]·W + b)
//
// where E is V×D, W is D×S and b has S entries. Column 0 of W and b belongs
// to the reserved state; its scores are produced but never read by the
// decoder.
package emission

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvlabel/matrix"
	"github.com/katalvlaran/lvlabel/params"
)

// Parameter names read by FromParams.
const (
	KeyEmbeddings = "emb"
	KeyWeights    = "W"
	KeyBias       = "b"
)

var (
	// ErrShape is returned when embeddings, weights and bias disagree.
	ErrShape = errors.New("emission: incompatible parameter shapes")

	// ErrUnknownToken is returned for a token id outside the embedding table.
	ErrUnknownToken = errors.New("emission: token id out of vocabulary")
)

// LinearModel is immutable after construction and safe for concurrent use.
type LinearModel struct {
	emb  *mat.Dense // V×D
	w    *mat.Dense // D×S
	bias []float64  // S
}

// NewLinearModel validates shapes and keeps private copies of the inputs.
func NewLinearModel(emb, w *mat.Dense, bias []float64) (*LinearModel, error) {
	if emb == nil || w == nil {
		return nil, fmt.Errorf("%w: nil embeddings or weights", ErrShape)
	}
	_, d := emb.Dims()
	wr, s := w.Dims()
	if wr != d {
		return nil, fmt.Errorf("%w: embeddings are %d wide, weights have %d rows", ErrShape, d, wr)
	}
	if len(bias) != s {
		return nil, fmt.Errorf("%w: bias has %d entries, weights %d columns", ErrShape, len(bias), s)
	}

	return &LinearModel{
		emb:  mat.DenseCopyOf(emb),
		w:    mat.DenseCopyOf(w),
		bias: append([]float64(nil), bias...),
	}, nil
}

// FromParams builds a LinearModel from the "emb", "W" and "b" parameters.
func FromParams(p params.Params) (*LinearModel, error) {
	emb, err := p.Matrix(KeyEmbeddings)
	if err != nil {
		return nil, err
	}
	w, err := p.Matrix(KeyWeights)
	if err != nil {
		return nil, err
	}
	bias, err := p.Vector(KeyBias)
	if err != nil {
		return nil, err
	}

	return NewLinearModel(toGonum(emb), toGonum(w), bias)
}

// toGonum copies a score table into a gonum matrix.
func toGonum(m *matrix.Dense) *mat.Dense {
	r, c := m.Shape()
	data := make([]float64, 0, r*c)
	for _, row := range m.ToRows() {
		data = append(data, row...)
	}

	return mat.NewDense(r, c, data)
}

// States returns S, the number of scores per token.
func (m *LinearModel) States() int {
	_, s := m.w.Dims()

	return s
}

// Vocab returns V, the number of embedding rows.
func (m *LinearModel) Vocab() int {
	v, _ := m.emb.Dims()

	return v
}

// Predict returns one len(sentences[i])×S emission matrix per item. Only the
// first lengths[i] tokens are scored; rows past that stay zero.
func (m *LinearModel) Predict(ctx context.Context, sentences [][]int32, lengths []int) ([][][]float64, error) {
	if len(sentences) != len(lengths) {
		return nil, fmt.Errorf("%w: %d sentences but %d lengths", ErrShape, len(sentences), len(lengths))
	}
	vocab := m.Vocab()
	states := m.States()

	out := make([][][]float64, len(sentences))
	for i, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := lengths[i]
		if n < 0 || n > len(sentence) {
			return nil, fmt.Errorf("%w: item %d: length %d of %d tokens", ErrShape, i, n, len(sentence))
		}

		rows := make([][]float64, len(sentence))
		for t := range rows {
			rows[t] = make([]float64, states)
		}
		if n > 0 {
			// Gather embeddings of the real tokens, then project them in one Mul.
			x := mat.NewDense(n, m.emb.RawMatrix().Cols, nil)
			for t, id := range sentence[:n] {
				if id < 0 || int(id) >= vocab {
					return nil, fmt.Errorf("%w: item %d position %d: id %d, vocabulary %d",
						ErrUnknownToken, i, t, id, vocab)
				}
				x.SetRow(t, m.emb.RawRowView(int(id)))
			}
			var logits mat.Dense
			logits.Mul(x, m.w)
			for t := 0; t < n; t++ {
				row := rows[t]
				mat.Row(row, t, &logits)
				floats.Add(row, m.bias)
				logSoftmax(row)
			}
		}
		out[i] = rows
	}

	return out, nil
}

// logSoftmax normalizes x in place: x[k] -= logsumexp(x).
func logSoftmax(x []float64) {
	floats.AddConst(-floats.LogSumExp(x), x)
}
