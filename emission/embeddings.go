package emission

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvlabel/matrix"
	"github.com/katalvlaran/lvlabel/params"
)

// DefaultInitSigma is the standard deviation of the random rows given to
// vocabulary words without a pretrained vector.
const DefaultInitSigma = 1.0

// Embeddings is a lookup table restricted to a vocabulary.
type Embeddings struct {
	// Matrix is (len(vocab)+1)×dim; row i belongs to the word with index i.
	Matrix *mat.Dense

	// SourcePos maps a vocabulary index to the position of its vector in
	// the pretrained source.
	SourcePos map[int32]int

	// NotInVocab counts source vectors skipped because their word is not in
	// the vocabulary.
	NotInVocab int
}

// EmbeddingOption configures BuildEmbeddings.
type EmbeddingOption func(*embeddingOptions)

type embeddingOptions struct {
	sigma  float64
	src    rand.Source
	logger *zap.Logger
}

// WithInitSigma sets the spread of the random rows. Panics if sigma <= 0.
func WithInitSigma(sigma float64) EmbeddingOption {
	if sigma <= 0 {
		panic("emission: WithInitSigma: sigma must be > 0")
	}

	return func(o *embeddingOptions) { o.sigma = sigma }
}

// WithSource seeds the random rows. A nil source keeps the global one.
func WithSource(src rand.Source) EmbeddingOption {
	return func(o *embeddingOptions) { o.src = src }
}

// WithEmbeddingLogger reports the load summary at Info level.
func WithEmbeddingLogger(l *zap.Logger) EmbeddingOption {
	return func(o *embeddingOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// BuildEmbeddings fills a (len(vocab)+1)×dim table from pretrained vectors.
//
// Every row starts as a draw from N(0, sigma²). Each word of vectors that is
// in vocab then overwrites the row of its index; a later vector for the same
// word wins. Vocabulary indices must lie in [0, len(vocab)] and every used
// vector must have exactly dim entries.
func BuildEmbeddings(
	vectors iter.Seq2[string, []float64],
	vocab map[string]int32,
	dim int,
	opts ...EmbeddingOption,
) (*Embeddings, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: embedding dimension %d", ErrShape, dim)
	}
	o := embeddingOptions{sigma: DefaultInitSigma, logger: zap.NewNop()}
	for _, set := range opts {
		set(&o)
	}

	rows := len(vocab) + 1
	for word, idx := range vocab {
		if idx < 0 || int(idx) >= rows {
			return nil, fmt.Errorf("%w: %q has index %d, table has %d rows", ErrUnknownToken, word, idx, rows)
		}
	}

	normal := distuv.Normal{Mu: 0, Sigma: o.sigma, Src: o.src}
	data := make([]float64, rows*dim)
	for i := range data {
		data[i] = normal.Rand()
	}
	emb := &Embeddings{
		Matrix:    mat.NewDense(rows, dim, data),
		SourcePos: make(map[int32]int),
	}

	pos := 0
	for word, vec := range vectors {
		idx, ok := vocab[word]
		if !ok {
			emb.NotInVocab++
			pos++
			continue
		}
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d (%q) has %d entries, want %d", ErrShape, pos, word, len(vec), dim)
		}
		emb.Matrix.SetRow(int(idx), vec)
		emb.SourcePos[idx] = pos
		pos++
	}

	o.logger.Info("loaded embeddings",
		zap.Int("words", pos),
		zap.Int("not_in_vocab", emb.NotInVocab),
		zap.Int("vocab", len(vocab)))

	return emb, nil
}

// Store saves the table under KeyEmbeddings so FromParams can pick it up.
func (e *Embeddings) Store(p params.Params) error {
	r, c := e.Matrix.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, e.Matrix)
	}
	m, err := matrix.NewDenseFrom(rows)
	if err != nil {
		return fmt.Errorf("emission: embeddings %dx%d: %w", r, c, err)
	}
	p[KeyEmbeddings] = m

	return nil
}
