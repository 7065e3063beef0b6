package labeling

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvlabel/matrix"
	"github.com/katalvlaran/lvlabel/viterbi"
)

// ErrMissingArgument is returned when a required argument of the batch
// driver is nil or empty. The wrapped message names the argument.
var ErrMissingArgument = errors.New("labeling: missing argument")

// Predictor produces per-token emission scores for a padded batch.
//
// sentences[i] holds the (padded) token ids of item i and lengths[i] its true
// length. The result must hold one matrix per item; each matrix has at least
// lengths[i] rows of S scores (rows beyond lengths[i] are ignored).
type Predictor interface {
	Predict(ctx context.Context, sentences [][]int32, lengths []int) ([][][]float64, error)
}

// PredictorFunc adapts a plain function to Predictor.
type PredictorFunc func(ctx context.Context, sentences [][]int32, lengths []int) ([][][]float64, error)

// Predict calls f.
func (f PredictorFunc) Predict(ctx context.Context, sentences [][]int32, lengths []int) ([][][]float64, error) {
	return f(ctx, sentences, lengths)
}

// Labeler runs a Predictor over a batch and Viterbi-decodes every item.
// It is safe for concurrent use if its Predictor is.
type Labeler struct {
	model     *viterbi.Model
	predictor Predictor
	opts      Options
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingArgument, name)
}

// NewLabeler checks that every collaborator is present and builds the
// decoding model once.
//
// Errors:
//   - ErrMissingArgument naming "transitions", "initial" or "predictor".
//   - viterbi.ErrInvalidShape when trans and initial disagree.
func NewLabeler(trans matrix.Matrix, initial []float64, predictor Predictor, opts ...Option) (*Labeler, error) {
	if matrix.ValidateNotNil(trans) != nil || trans.Rows() == 0 || trans.Cols() == 0 {
		return nil, missing("transitions")
	}
	if len(initial) == 0 {
		return nil, missing("initial")
	}
	if predictor == nil {
		return nil, missing("predictor")
	}
	model, err := viterbi.NewModel(trans, initial)
	if err != nil {
		return nil, err
	}

	return &Labeler{model: model, predictor: predictor, opts: gatherOptions(opts...)}, nil
}

// Model returns the decoding model built by NewLabeler.
func (l *Labeler) Model() *viterbi.Model { return l.model }

// Label predicts emissions for the whole batch with a single Predict call,
// truncates item i to its first lengths[i] positions and decodes it.
// Results are returned in input order. Any error aborts the whole batch.
func (l *Labeler) Label(ctx context.Context, sentences [][]int32, lengths []int) ([][]viterbi.State, error) {
	if len(sentences) != len(lengths) {
		return nil, fmt.Errorf("%w: %d sentences but %d lengths",
			viterbi.ErrInvalidShape, len(sentences), len(lengths))
	}

	probs, err := l.predictor.Predict(ctx, sentences, lengths)
	if err != nil {
		return nil, fmt.Errorf("labeling: predict: %w", err)
	}
	if len(probs) != len(lengths) {
		return nil, fmt.Errorf("%w: predictor returned %d items for a batch of %d",
			viterbi.ErrInvalidShape, len(probs), len(lengths))
	}
	l.opts.logger.Debug("predicted batch",
		zap.Int("items", len(probs)),
		zap.Int("workers", l.opts.workers))

	labels := make([][]viterbi.State, len(probs))
	decode := func(i int) error {
		n := lengths[i]
		if n < 0 || n > len(probs[i]) {
			return fmt.Errorf("%w: item %d: length %d, %d emission rows",
				viterbi.ErrInvalidShape, i, n, len(probs[i]))
		}
		path, err := l.model.Decode(probs[i][:n])
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		labels[i] = path

		return nil
	}

	if l.opts.workers <= 1 {
		for i := range probs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := decode(i); err != nil {
				return nil, err
			}
		}

		return labels, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.workers)
	for i := range probs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return decode(i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return labels, nil
}

// LabelBatch is NewLabeler followed by a single Label call.
func LabelBatch(
	ctx context.Context,
	sentences [][]int32,
	lengths []int,
	trans matrix.Matrix,
	initial []float64,
	predictor Predictor,
	opts ...Option,
) ([][]viterbi.State, error) {
	l, err := NewLabeler(trans, initial, predictor, opts...)
	if err != nil {
		return nil, err
	}

	return l.Label(ctx, sentences, lengths)
}
