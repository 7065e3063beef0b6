// Package params persists named model parameters (transition matrix, initial
// scores, embedding and projection weights) as a YAML document.
//
// Each parameter is stored as a list of rows; -Inf is written as -.inf so the
// reserved state of a transition matrix survives a round trip. Hand-written
// files may use flow sequences:
//
//	trans_matrix:
//	  - [-.inf, -.inf, -.inf]
//	  - [-.inf, 0, 1]
//	  - [-.inf, 0.5, 0]
package params

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvlabel/matrix"
)

// Well-known parameter names.
const (
	KeyTransitions = "trans_matrix"
	KeyInitial     = "init_matrix"
)

var (
	// ErrUnknownParam is returned when a named parameter is absent.
	ErrUnknownParam = errors.New("params: unknown parameter")

	// ErrNotVector is returned by Vector for a parameter with more than one row and column.
	ErrNotVector = errors.New("params: parameter is not a vector")
)

// Params maps parameter names to dense arrays.
type Params map[string]*matrix.Dense

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Matrix returns the named parameter.
func (p Params) Matrix(name string) (*matrix.Dense, error) {
	m, ok := p[name]
	if !ok || m == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}

	return m, nil
}

// Vector returns the named parameter flattened to a slice. Only 1×n and n×1
// parameters are vectors.
func (p Params) Vector(name string) ([]float64, error) {
	m, err := p.Matrix(name)
	if err != nil {
		return nil, err
	}
	switch {
	case m.Rows() == 1:
		return m.Row(0)
	case m.Cols() == 1:
		out := make([]float64, m.Rows())
		for i := range out {
			if out[i], err = m.At(i, 0); err != nil {
				return nil, fmt.Errorf("params: %q: %w", name, err)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q is %dx%d", ErrNotVector, name, m.Rows(), m.Cols())
	}
}

// SetVector stores v as a 1×len(v) parameter.
func (p Params) SetVector(name string, v []float64) error {
	m, err := matrix.NewDenseFrom([][]float64{v})
	if err != nil {
		return fmt.Errorf("params: %q: %w", name, err)
	}
	p[name] = m

	return nil
}

// Write encodes p as YAML. Keys are emitted in sorted order.
func Write(w io.Writer, p Params) error {
	doc := make(map[string][][]float64, len(p))
	for name, m := range p {
		if m == nil {
			return fmt.Errorf("params: %q: %w", name, matrix.ErrNilMatrix)
		}
		doc[name] = m.ToRows()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("params: encode: %w", err)
	}

	return enc.Close()
}

// Read decodes a YAML parameter document. An empty document yields empty Params.
func Read(r io.Reader) (Params, error) {
	var doc map[string][][]float64
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("params: decode: %w", err)
	}

	p := make(Params, len(doc))
	for name, rows := range doc {
		m, err := matrix.NewDenseFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("params: %q: %w", name, err)
		}
		p[name] = m
	}

	return p, nil
}

// Save writes p to path, replacing any existing file.
func Save(path string, p Params) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Write(f, p)
}

// Load reads the parameter file at path.
func Load(path string) (Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Option configures LoadInto.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger reports each overlaid parameter at info level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// LoadInto reads the file at path and overlays every stored parameter onto
// dst, keeping entries of dst that the file does not mention. A nil dst is
// replaced by a fresh map. The updated map is returned.
func LoadInto(path string, dst Params, opts ...Option) (Params, error) {
	o := options{logger: zap.NewNop()}
	for _, set := range opts {
		set(&o)
	}

	loaded, err := Load(path)
	if err != nil {
		return dst, err
	}
	if dst == nil {
		dst = make(Params, len(loaded))
	}
	for _, name := range loaded.Names() {
		m := loaded[name]
		o.logger.Info("updating parameter",
			zap.String("name", name),
			zap.Int("rows", m.Rows()),
			zap.Int("cols", m.Cols()))
		dst[name] = m
	}

	return dst, nil
}
