package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/logger"
	"github.com/spigell/perf-predictor/internal/report"
)

type encodeStage struct{}

func (encodeStage) Name() string    { return "encode" }
func (encodeStage) IsEnabled() bool { return true }

func (encodeStage) Apply(_ context.Context, deps Deps, s *state) (Step, error) {
	records := s.req.Records()
	initial := len(records)

	batch, err := deps.Encoder.EncodeAll(records)
	if err != nil {
		return Step{}, err
	}

	for _, d := range batch.Dropped {
		deps.Logger.Info("record dropped",
			zap.Int("row", d.Row+1),
			zap.String("emp_number", d.EmpNumber),
			zap.String("reason", d.Reason),
		)
	}

	s.batch = batch
	return Step{Initial: initial, Dropped: len(batch.Dropped), Left: batch.Len()}, nil
}

type loadStage struct{}

func (loadStage) Name() string    { return "load_model" }
func (loadStage) IsEnabled() bool { return true }

func (loadStage) Apply(ctx context.Context, deps Deps, s *state) (Step, error) {
	classifier, err := deps.Loader.Load(ctx)
	if err != nil {
		return Step{}, err
	}

	deps.Logger.Info("model loaded",
		zap.String(logger.FieldModel, classifier.Name()),
		zap.String("type", classifier.Type()),
		zap.Int("features", len(classifier.Features())),
	)

	s.classifier = classifier
	n := s.batch.Len()
	return Step{Initial: n, Left: n}, nil
}

type predictStage struct{}

func (predictStage) Name() string    { return "predict" }
func (predictStage) IsEnabled() bool { return true }

func (predictStage) Apply(_ context.Context, deps Deps, s *state) (Step, error) {
	predictor, err := NewModelPredictor(deps.Encoder, s.classifier)
	if err != nil {
		return Step{}, err
	}

	labels, err := predictor.PredictBatch(s.batch)
	if err != nil {
		return Step{}, err
	}

	s.labels = labels
	return Step{Initial: s.batch.Len(), Left: len(labels)}, nil
}

type assembleStage struct{}

func (assembleStage) Name() string    { return "assemble" }
func (assembleStage) IsEnabled() bool { return true }

func (assembleStage) Apply(_ context.Context, _ Deps, s *state) (Step, error) {
	table, err := report.Assemble(s.req.Records(), s.batch.Rows, s.labels)
	if err != nil {
		return Step{}, err
	}

	table.RequestID = s.req.ID
	table.Origin = s.req.Origin
	table.Model = s.classifier.Name()
	for _, d := range s.batch.Dropped {
		table.Dropped = append(table.Dropped, fmt.Sprintf("row %d (%s): %s", d.Row+1, d.EmpNumber, d.Reason))
	}

	s.table = table
	return Step{Initial: len(s.labels), Left: table.Len()}, nil
}

// narrateStage never fails the request: a narrator error is logged and the
// table is shown without a narrative.
type narrateStage struct {
	enabled bool
}

func (n *narrateStage) Name() string    { return "narrate" }
func (n *narrateStage) IsEnabled() bool { return n.enabled }

func (n *narrateStage) Apply(ctx context.Context, deps Deps, s *state) (Step, error) {
	rows := s.table.Len()

	text, err := deps.Narrator.Summarize(ctx, s.table)
	if err != nil {
		deps.Logger.Info("skipping narrative", zap.Error(err))
		return Step{Initial: rows, Left: rows}, nil
	}

	s.table.Narrative = text
	return Step{Initial: rows, Left: rows}, nil
}
