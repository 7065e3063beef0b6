// Package lvlabel collects the inference utilities of a neural sequence
// labeler (NER-style tagging).
//
// 🚀 What is inside?
//
//   - viterbi/: Viterbi decoding over a linear-chain transition model
//   - labeling/: batch driver: predict a padded minibatch, truncate, decode
//   - matrix/: dense log-space score tables (-Inf = unreachable)
//   - params/: named parameter persistence as YAML
//   - features/: feature/label padding into fixed-shape int32 arrays
//   - emission/: reference linear emission model (embedding → log-softmax)
//
// Label state 0 is reserved everywhere: transition matrices, initial vectors
// and emission rows carry a column for it, but it is never decoded.
//
// Quick example:
//
//	trans, _ := matrix.NewDenseFrom(rows)
//	paths, err := labeling.LabelBatch(ctx, sentences, lengths, trans, initial, model)
//
// See examples/ner_labeling for an end-to-end program.
package lvlabel
