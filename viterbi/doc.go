// Package viterbi decodes the most likely label sequence of a linear-chain
// sequence-labeling model.
//
// 🚀 What is Viterbi decoding?
//
//	Given per-position emission scores, a pairwise transition score matrix
//	and an initial score vector (all in log-space), Viterbi finds the label
//	path with the highest total score by dynamic programming. It is the
//	decoding step of NER, POS tagging and word segmentation models.
//
// ✨ Key properties:
//   - state 0 is reserved: it is never read as an emission, never used as a
//     transition source, and never produced by a well-formed decode
//   - -Inf means "unreachable" and never beats a finite score
//   - ties keep the lowest source state index
//   - Model is immutable after NewModel and safe for concurrent Decode calls;
//     every call allocates its own working tables
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/lvlabel/viterbi"
//
//	m, err := viterbi.NewModel(trans, initial)
//	path, err := m.Decode(emissions)
//
// Performance:
//
//   - Time:   O(N·S²)
//   - Memory: O(N·S)
//
// N is the sequence length, S the number of states including the reserved one.
package viterbi
