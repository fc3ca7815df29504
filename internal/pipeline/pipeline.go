package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/ai"
	"github.com/spigell/perf-predictor/internal/encoding"
	"github.com/spigell/perf-predictor/internal/logger"
	"github.com/spigell/perf-predictor/internal/model"
	"github.com/spigell/perf-predictor/internal/report"
)

// Stage is one step of the acquire, encode, load, predict, display flow.
type Stage interface {
	Name() string
	IsEnabled() bool
	Apply(ctx context.Context, deps Deps, s *state) (Step, error)
}

// Deps aggregates dependencies shared across all stages.
type Deps struct {
	Encoder  *encoding.Encoder
	Loader   model.Loader
	Narrator ai.Narrator
	Logger   *zap.Logger
}

// Step describes the result of executing a stage.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// state is what one request accumulates while it moves through the stages.
type state struct {
	req        Request
	batch      *encoding.Batch
	classifier model.Classifier
	labels     []model.Label
	table      *report.Table
}

type Pipeline struct {
	deps   Deps
	stages []Stage
}

func New(deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Pipeline{
		deps: deps,
		stages: []Stage{
			&encodeStage{},
			&loadStage{},
			&predictStage{},
			&assembleStage{},
			&narrateStage{enabled: deps.Narrator != nil},
		},
	}
}

// Run executes every enabled stage for the request and returns the table to display.
func (p *Pipeline) Run(ctx context.Context, req Request) (*report.Table, error) {
	if p.deps.Encoder == nil {
		return nil, fmt.Errorf("encoder is required")
	}
	if p.deps.Loader == nil {
		return nil, fmt.Errorf("model loader is required")
	}

	deps := p.deps
	deps.Logger = logger.WithRequest(deps.Logger, req.ID, string(req.Source), req.Origin)

	if req.HasRating {
		deps.Logger.Info("historical PerformanceRating column is excluded from the model input")
	}

	s := &state{req: req}
	for _, stage := range p.stages {
		if !stage.IsEnabled() {
			deps.Logger.Debug("stage disabled", zap.String("name", stage.Name()))
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := stage.Apply(ctx, deps, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}

		deps.Logger.Info("pipeline step",
			zap.String("name", stage.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	return s.table, nil
}

// Describe returns the names of the enabled stages in execution order.
func (p *Pipeline) Describe() []string {
	names := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		if stage.IsEnabled() {
			names = append(names, stage.Name())
		}
	}
	return names
}
