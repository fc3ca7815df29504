package pipeline

import (
	"fmt"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/encoding"
	"github.com/spigell/perf-predictor/internal/model"
)

// Predictor turns a record into a performance rating in two pure steps.
type Predictor interface {
	Encode(r employee.Record) (encoding.Encoded, error)
	Predict(e encoding.Encoded) (model.Label, error)
}

// ModelPredictor implements Predictor over an encoder and a loaded classifier.
type ModelPredictor struct {
	encoder    *encoding.Encoder
	classifier model.Classifier
}

// NewModelPredictor fails when the classifier was trained with a different
// categorical coding than the encoder uses.
func NewModelPredictor(encoder *encoding.Encoder, classifier model.Classifier) (*ModelPredictor, error) {
	if encoder == nil || classifier == nil {
		return nil, fmt.Errorf("encoder and classifier are required")
	}
	if err := model.CheckVocabulary(classifier, encoder.Vocabulary()); err != nil {
		return nil, err
	}
	return &ModelPredictor{encoder: encoder, classifier: classifier}, nil
}

func (p *ModelPredictor) Encode(r employee.Record) (encoding.Encoded, error) {
	return p.encoder.Encode(r)
}

func (p *ModelPredictor) Predict(e encoding.Encoded) (model.Label, error) {
	labels, err := p.PredictBatch(&encoding.Batch{Rows: []int{0}, Encoded: []encoding.Encoded{e}})
	if err != nil {
		return 0, err
	}
	return labels[0], nil
}

// PredictBatch predicts one label per encoded record, in batch order.
func (p *ModelPredictor) PredictBatch(batch *encoding.Batch) ([]model.Label, error) {
	rows, err := model.Matrix(p.classifier.Features(), batch)
	if err != nil {
		return nil, err
	}

	labels, err := p.classifier.Predict(rows)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(rows) {
		return nil, fmt.Errorf("%w: model returned %d labels for %d rows", model.ErrShapeMismatch, len(labels), len(rows))
	}

	classes := p.classifier.Classes()
	for i, l := range labels {
		if !containsLabel(classes, l) {
			return nil, fmt.Errorf("%w: row %d got label %d outside the model classes", model.ErrShapeMismatch, i+1, l)
		}
	}
	return labels, nil
}

func containsLabel(labels []model.Label, l model.Label) bool {
	for _, c := range labels {
		if c == l {
			return true
		}
	}
	return false
}
