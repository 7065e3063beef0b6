package viterbi

// State is a label-state index into the transition matrix.
//
// Index 0 is Reserved: transition rows, the initial vector and emission rows
// all carry a column for it, but the decoder never reads it as an emission or
// as a transition source. Real labels are 1..S-1, where S is the number of
// rows of the transition matrix.
type State int

const (
	// Reserved is the inert sentinel state. A decode only returns it when
	// every final score is -Inf (see Model.Decode).
	Reserved State = 0

	// Outside is the conventional non-entity label ("O"). The forward pass
	// falls back to it as backpointer when no source state is reachable.
	Outside State = 1
)

// Valid reports whether s is a real label state for a model with size states.
func (s State) Valid(size int) bool {
	return s > Reserved && int(s) < size
}
