package model

import (
	"fmt"
)

const TypeLinear = "linear"

// LinearSpec is a multinomial linear model. Weights has one row per class,
// in Classes order. Means and Scales optionally standardise the inputs.
type LinearSpec struct {
	Weights    [][]float64 `json:"weights" yaml:"weights"`
	Intercepts []float64   `json:"intercepts" yaml:"intercepts"`
	Means      []float64   `json:"means,omitempty" yaml:"means,omitempty"`
	Scales     []float64   `json:"scales,omitempty" yaml:"scales,omitempty"`
}

type linear struct {
	*header
	spec *LinearSpec
}

func buildLinear(h *header, a *Artifact) (Classifier, error) {
	spec := a.Linear
	if spec == nil {
		return nil, fmt.Errorf("%w: linear artifact has no coefficients", ErrLoad)
	}

	width := len(h.features)
	if len(spec.Weights) != len(h.classes) || len(spec.Intercepts) != len(h.classes) {
		return nil, fmt.Errorf("%w: linear model needs %d weight rows and intercepts, got %d and %d",
			ErrLoad, len(h.classes), len(spec.Weights), len(spec.Intercepts))
	}
	for i, w := range spec.Weights {
		if len(w) != width {
			return nil, fmt.Errorf("%w: weight row %d has %d values, want %d", ErrLoad, i, len(w), width)
		}
	}
	if len(spec.Means) != 0 && len(spec.Means) != width {
		return nil, fmt.Errorf("%w: means must have %d values", ErrLoad, width)
	}
	if len(spec.Scales) != 0 {
		if len(spec.Scales) != width {
			return nil, fmt.Errorf("%w: scales must have %d values", ErrLoad, width)
		}
		for i, s := range spec.Scales {
			if s == 0 {
				return nil, fmt.Errorf("%w: scale %d is zero", ErrLoad, i)
			}
		}
	}

	return &linear{header: h, spec: spec}, nil
}

func (l *linear) Predict(rows [][]float64) ([]Label, error) {
	if err := l.checkWidth(rows); err != nil {
		return nil, err
	}

	labels := make([]Label, 0, len(rows))
	for _, row := range rows {
		x := l.standardise(row)

		best := -1
		var bestScore float64
		for c, weights := range l.spec.Weights {
			score := l.spec.Intercepts[c]
			for j, w := range weights {
				score += w * x[j]
			}
			if best < 0 || score > bestScore || (score == bestScore && l.classes[c] < l.classes[best]) {
				best, bestScore = c, score
			}
		}
		labels = append(labels, l.classes[best])
	}
	return labels, nil
}

func (l *linear) standardise(row []float64) []float64 {
	if len(l.spec.Means) == 0 && len(l.spec.Scales) == 0 {
		return row
	}

	x := make([]float64, len(row))
	for j, v := range row {
		if len(l.spec.Means) > 0 {
			v -= l.spec.Means[j]
		}
		if len(l.spec.Scales) > 0 {
			v /= l.spec.Scales[j]
		}
		x[j] = v
	}
	return x
}
