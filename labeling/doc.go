// Package labeling is the batch driver of the sequence labeler: it asks a
// Predictor for emission scores of a padded minibatch, drops the padding of
// every item and Viterbi-decodes what is left.
//
//	l, err := labeling.NewLabeler(trans, initial, model, labeling.WithWorkers(4))
//	paths, err := l.Label(ctx, sentences, lengths)
//	tags, err := labeling.Tags(paths[0], []string{"", "O", "B-PER", "I-PER"})
//
// Required collaborators are checked before any work starts and reported as
// ErrMissingArgument; shape problems surface as viterbi.ErrInvalidShape and
// predictor failures are returned wrapped. There are no partial results.
package labeling
