package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/encoding"
	"github.com/spigell/perf-predictor/internal/model"
)

// Kind groups pipeline errors into the categories shown to the user.
type Kind string

const (
	KindParse      Kind = "parse"
	KindEncoding   Kind = "encoding"
	KindLoad       Kind = "load"
	KindShape      Kind = "shape mismatch"
	KindValidation Kind = "validation"
	KindCanceled   Kind = "canceled"
	KindInternal   Kind = "internal"
)

// Classify maps an error onto its user-facing kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, employee.ErrMissingColumn), errors.Is(err, encoding.ErrUnknownCategory):
		return KindEncoding
	case errors.Is(err, employee.ErrParse):
		return KindParse
	case errors.Is(err, model.ErrLoad):
		return KindLoad
	case errors.Is(err, model.ErrShapeMismatch):
		return KindShape
	case errors.Is(err, employee.ErrValidation):
		return KindValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// Describe renders an error as the message shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s error: %v", Classify(err), err)
}
