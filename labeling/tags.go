package labeling

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvlabel/viterbi"
)

// ErrUnknownState is returned by Tags for a state with no name.
var ErrUnknownState = errors.New("labeling: unknown state")

// Tags maps decoded states to their names; names[s] is the label of state s
// (names[0] belongs to the reserved state and is normally empty).
func Tags(states []viterbi.State, names []string) ([]string, error) {
	out := make([]string, len(states))
	for i, s := range states {
		if s < 0 || int(s) >= len(names) {
			return nil, fmt.Errorf("%w: position %d: state %d of %d", ErrUnknownState, i, s, len(names))
		}
		out[i] = names[s]
	}

	return out, nil
}
