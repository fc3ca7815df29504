package model

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/spigell/perf-predictor/internal/encoding"
)

var (
	// ErrLoad is returned when the model artifact is missing or corrupt.
	ErrLoad = errors.New("model artifact unavailable")
	// ErrShapeMismatch is returned when encoded features do not fit what the model expects.
	ErrShapeMismatch = errors.New("feature shape mismatch")
)

// Classifier is a loaded model ready for inference.
type Classifier interface {
	Name() string
	Type() string
	// Features lists the input columns in the order Predict expects them.
	Features() []string
	Classes() []Label
	// Vocabulary is the categorical coding the model was trained with, or
	// nil when the artifact does not carry one.
	Vocabulary() encoding.Vocabulary
	Predict(rows [][]float64) ([]Label, error)
}

// Loader produces a classifier for one prediction request.
type Loader interface {
	Load(ctx context.Context) (Classifier, error)
}

// Matrix lays the encoded batch out in the classifier feature order.
func Matrix(features []string, batch *encoding.Batch) ([][]float64, error) {
	rows := make([][]float64, 0, batch.Len())
	for i, encoded := range batch.Encoded {
		row := make([]float64, len(features))
		for j, name := range features {
			v, ok := encoded.Features[name]
			if !ok {
				return nil, fmt.Errorf("%w: model expects feature %q which row %d does not provide", ErrShapeMismatch, name, i+1)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CheckVocabulary fails when the classifier was trained with a different
// coding than the encoder uses. Attributes the artifact does not list are
// not compared.
func CheckVocabulary(c Classifier, v encoding.Vocabulary) error {
	trained := c.Vocabulary()
	if trained == nil {
		return nil
	}

	var diff []string
	for attr, codes := range trained {
		if !maps.Equal(codes, v[attr]) {
			diff = append(diff, attr)
		}
	}
	if len(diff) > 0 {
		sort.Strings(diff)
		return fmt.Errorf("%w: model was trained with a different coding for %s", ErrShapeMismatch, strings.Join(diff, ", "))
	}
	return nil
}

// header carries the artifact metadata shared by every classifier type.
type header struct {
	name       string
	kind       string
	features   []string
	classes    []Label
	vocabulary encoding.Vocabulary
}

func (h *header) Name() string                    { return h.name }
func (h *header) Type() string                    { return h.kind }
func (h *header) Features() []string              { return append([]string(nil), h.features...) }
func (h *header) Classes() []Label                { return append([]Label(nil), h.classes...) }
func (h *header) Vocabulary() encoding.Vocabulary { return h.vocabulary }

func (h *header) checkWidth(rows [][]float64) error {
	for i, row := range rows {
		if len(row) != len(h.features) {
			return fmt.Errorf("%w: row %d has %d features, model expects %d", ErrShapeMismatch, i+1, len(row), len(h.features))
		}
	}
	return nil
}

func (h *header) hasClass(l Label) bool {
	for _, c := range h.classes {
		if c == l {
			return true
		}
	}
	return false
}
