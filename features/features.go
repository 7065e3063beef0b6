// Package features turns ragged per-sentence index lists into fixed-shape
// int32 arrays: padded feature tables for every sentence, and padded
// token-id batches (plus true lengths) for a Predictor.
package features

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when parallel inputs differ in length.
	ErrLengthMismatch = errors.New("features: parallel inputs differ in length")

	// ErrEmptySentence is returned for a sentence without tokens.
	ErrEmptySentence = errors.New("features: empty sentence")

	// ErrOutOfRange is returned for a token or slot outside a FeatureTable.
	ErrOutOfRange = errors.New("features: index out of range")
)

// FeatureTable is a row-major Rows×Cols int32 table: one row per token, one
// column per feature slot.
type FeatureTable struct {
	Rows, Cols int
	Data       []int32
}

// At returns the feature index at (token, slot).
func (f FeatureTable) At(token, slot int) (int32, error) {
	if token < 0 || token >= f.Rows || slot < 0 || slot >= f.Cols {
		return 0, fmt.Errorf("%w: At(%d, %d) on %dx%d table", ErrOutOfRange, token, slot, f.Rows, f.Cols)
	}

	return f.Data[token*f.Cols+slot], nil
}

// Row returns the feature slots of one token. The slice aliases Data.
func (f FeatureTable) Row(token int) ([]int32, error) {
	if token < 0 || token >= f.Rows {
		return nil, fmt.Errorf("%w: Row(%d) on %d rows", ErrOutOfRange, token, f.Rows)
	}

	return f.row(token), nil
}

func (f FeatureTable) row(token int) []int32 {
	return f.Data[token*f.Cols : (token+1)*f.Cols]
}

// PadFeatures builds the table of one sentence. Each token's feature list is
// right-padded with pad up to the longest list of the sentence; pad is
// usually the feature vocabulary size, an index no real feature uses.
func PadFeatures(tokens [][]int32, pad int32) (FeatureTable, error) {
	if len(tokens) == 0 {
		return FeatureTable{}, ErrEmptySentence
	}
	width := 0
	for _, feats := range tokens {
		width = max(width, len(feats))
	}

	table := FeatureTable{Rows: len(tokens), Cols: width, Data: make([]int32, len(tokens)*width)}
	for i, feats := range tokens {
		row := table.row(i)
		n := copy(row, feats)
		for j := n; j < width; j++ {
			row[j] = pad
		}
	}

	return table, nil
}

// ConvData converts a corpus of parallel feature, lexicon and label lists.
// feats[i][t] lists the feature indices of token t of sentence i; lexes[i]
// and labels[i] are copied as-is. featSize is the padding feature index.
func ConvData(feats [][][]int32, lexes, labels [][]int32, featSize int32) ([]FeatureTable, [][]int32, [][]int32, error) {
	if len(feats) != len(lexes) || len(feats) != len(labels) {
		return nil, nil, nil, fmt.Errorf("%w: %d features, %d lexes, %d labels",
			ErrLengthMismatch, len(feats), len(lexes), len(labels))
	}

	fv := make([]FeatureTable, len(feats))
	lexv := make([][]int32, len(lexes))
	labv := make([][]int32, len(labels))
	for i := range feats {
		table, err := PadFeatures(feats[i], featSize)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		fv[i] = table
		lexv[i] = append([]int32(nil), lexes[i]...)
		labv[i] = append([]int32(nil), labels[i]...)
	}

	return fv, lexv, labv, nil
}

// PadSequences right-pads every sequence with pad to the longest one and
// returns the padded batch together with the original lengths.
func PadSequences(seqs [][]int32, pad int32) ([][]int32, []int) {
	width := 0
	for _, s := range seqs {
		width = max(width, len(s))
	}

	padded := make([][]int32, len(seqs))
	lengths := make([]int, len(seqs))
	for i, s := range seqs {
		row := make([]int32, width)
		n := copy(row, s)
		for j := n; j < width; j++ {
			row[j] = pad
		}
		padded[i] = row
		lengths[i] = n
	}

	return padded, lengths
}
