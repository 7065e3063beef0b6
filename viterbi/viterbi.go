package viterbi

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvlabel/matrix"
)

// Viterbi: most likely label path
//
// Algorithm Outline:
//  1. Let N = len(emissions), S = number of states. Allocate N×S tables
//     toward (best cumulative score) and backward (best predecessor).
//     toward starts at -∞ everywhere.
//  2. Initialize, for s = 1..S-1:
//     toward[0][s]   = initial[s] + emissions[0][s]
//     backward[0][s] = -1
//  3. For t = 1..N-1, s = 1..S-1:
//     toward[t][s]   = max_i (toward[t-1][i] + trans[i][s]) + emissions[t][s]
//     backward[t][s] = the first i (i = 1..S-1) reaching that max, or 1 when none beats -∞
//  4. End state = first s = 1..S-1 maximizing toward[N-1][s], or 0 when none beats -∞.
//  5. Follow backward from the end state down to t = 0 and reverse.
//
// Complexity:
//
//	Time   = O(N·S²)
//	Memory = O(N·S)
//
// Errors:
//   - ErrInvalidShape: S < 2, N == 0, non-square transitions, initial of the
//     wrong length, or an emission row shorter than S.
var (
	// ErrInvalidShape indicates inputs whose dimensions do not agree.
	ErrInvalidShape = errors.New("viterbi: invalid shape")
)

// Model is the immutable part of a linear-chain decoder: the S×S transition
// scores and the length-S initial scores. It is shared across decode calls
// for the lifetime of a trained model.
type Model struct {
	size    int       // S, including the reserved state
	trans   []float64 // row-major S×S, trans[i*size+j] = score(i → j)
	initial []float64 // len S
}

// NewModel snapshots trans and initial into a Model.
//
// trans must be square with at least 2 rows (the reserved state plus one
// real label) and initial must have exactly trans.Rows() entries. Later
// mutation of the arguments does not affect the Model.
func NewModel(trans matrix.Matrix, initial []float64) (*Model, error) {
	if err := matrix.ValidateSquare(trans); err != nil {
		return nil, fmt.Errorf("%w: transitions: %w", ErrInvalidShape, err)
	}
	size := trans.Rows()
	if size < 2 {
		return nil, fmt.Errorf("%w: need at least 2 states, got %d", ErrInvalidShape, size)
	}
	if err := matrix.ValidateVecLen(initial, size); err != nil {
		return nil, fmt.Errorf("%w: initial: %w", ErrInvalidShape, err)
	}

	m := &Model{
		size:    size,
		trans:   make([]float64, size*size),
		initial: make([]float64, size),
	}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			v, err := trans.At(i, j)
			if err != nil {
				return nil, fmt.Errorf("%w: transitions: %w", ErrInvalidShape, err)
			}
			m.trans[i*size+j] = v
		}
	}
	copy(m.initial, initial)

	return m, nil
}

// Size returns S, the number of states including Reserved.
func (m *Model) Size() int { return m.size }

// Decode returns the highest-scoring label path for emissions.
//
// emissions[t][s] is the score of state s at position t; every row must have
// at least Size() entries (extra trailing columns are ignored). The result
// has len(emissions) entries, each in 1..Size()-1 for any input with at least
// one reachable final state.
func (m *Model) Decode(emissions [][]float64) ([]State, error) {
	path, _, err := m.DecodeScore(emissions)

	return path, err
}

// DecodeScore is Decode that also returns the score of the returned path.
// The score is -Inf when every final state is unreachable; the path is then
// all Reserved.
func (m *Model) DecodeScore(emissions [][]float64) ([]State, float64, error) {
	n := len(emissions)
	if n == 0 {
		return nil, 0, fmt.Errorf("%w: empty sequence", ErrInvalidShape)
	}
	for t, row := range emissions {
		if len(row) < m.size {
			return nil, 0, fmt.Errorf("%w: emissions[%d] has %d scores, need %d",
				ErrInvalidShape, t, len(row), m.size)
		}
	}

	size := m.size
	negInf := math.Inf(-1)

	// Per-call working tables; never shared between calls.
	toward := make([]float64, n*size)
	backward := make([]int, n*size)
	for i := range toward {
		toward[i] = negInf
	}

	// Initialization (t=0)
	for s := 1; s < size; s++ {
		toward[s] = m.initial[s] + emissions[0][s]
		backward[s] = -1
	}

	// Recurrence
	for t := 1; t < n; t++ {
		prev := toward[(t-1)*size : t*size]
		cur := toward[t*size : (t+1)*size]
		back := backward[t*size : (t+1)*size]
		for s := 1; s < size; s++ {
			best := negInf
			bestPrev := int(Outside)
			emission := emissions[t][s]
			for i := 1; i < size; i++ {
				score := prev[i] + m.trans[i*size+s] + emission
				if score > best {
					best = score
					bestPrev = i
				}
			}
			cur[s] = best
			back[s] = bestPrev
		}
	}

	// Termination. The scan starts from Reserved, unlike the per-position
	// fallback above which starts from Outside.
	last := toward[(n-1)*size : n*size]
	bestScore := negInf
	bestEnd := int(Reserved)
	for s := 1; s < size; s++ {
		if last[s] > bestScore {
			bestScore = last[s]
			bestEnd = s
		}
	}

	// Backtrack
	tags := make([]State, 0, n)
	tags = append(tags, State(bestEnd))
	cur := bestEnd
	for t := n - 1; t >= 1; t-- {
		cur = backward[t*size+cur]
		tags = append(tags, State(cur))
	}
	// reverse path in-place
	for l, r := 0, len(tags)-1; l < r; l, r = l+1, r-1 {
		tags[l], tags[r] = tags[r], tags[l]
	}

	return tags, bestScore, nil
}

// Decode is a one-shot form of Model.Decode for callers holding plain slices:
// trans is S×S, initial has S entries and every emission row at least S.
func Decode(emissions, trans [][]float64, initial []float64) ([]State, error) {
	tm, err := matrix.NewDenseFrom(trans, matrix.WithNoValidateScores())
	if err != nil {
		return nil, fmt.Errorf("%w: transitions: %w", ErrInvalidShape, err)
	}
	m, err := NewModel(tm, initial)
	if err != nil {
		return nil, err
	}

	return m.Decode(emissions)
}
