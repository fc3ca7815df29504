package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/ai"
	"github.com/spigell/perf-predictor/internal/ai/gemini"
	"github.com/spigell/perf-predictor/internal/encoding"
	"github.com/spigell/perf-predictor/internal/logger"
	"github.com/spigell/perf-predictor/internal/model"
	"github.com/spigell/perf-predictor/internal/pipeline"
	"github.com/spigell/perf-predictor/internal/report"
	"github.com/spigell/perf-predictor/internal/secrets"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

// setup builds the logger and the config shared by every prediction command.
func setup(cmd *cobra.Command) (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if err := applyOutputFlags(cmd, config); err != nil {
		logger.Fatal("reading flags", zap.Error(err))
	}

	logger.Debug("starting with config", zap.Any("config", config))

	return logger, config
}

// addOutputFlags registers the flags every command that shows predictions accepts.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "output format: table, csv, json or yaml (default from output.format)")
	cmd.Flags().StringP("output", "o", "", "also write the predictions as JSON to this file")
	cmd.Flags().Bool("dump", false, "also dump the predictions as JSON into a temporary file")
	cmd.Flags().Bool("explain", false, "ask Gemini for a short plain-language summary of the predictions")
}

// applyOutputFlags overrides the config with the flags given on the command line.
func applyOutputFlags(cmd *cobra.Command, config *Config) error {
	flags := cmd.Flags()

	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return err
		}
		config.Output.Format = v
	}
	if flags.Changed("output") {
		v, err := flags.GetString("output")
		if err != nil {
			return err
		}
		config.Output.File = v
	}
	if flags.Changed("dump") {
		v, err := flags.GetBool("dump")
		if err != nil {
			return err
		}
		config.Output.Dump = v
	}
	if flags.Changed("explain") {
		v, err := flags.GetBool("explain")
		if err != nil {
			return err
		}
		config.AI.Enabled = v
	}
	return nil
}

func newEncoder(config *Config) (*encoding.Encoder, error) {
	policy, err := encoding.ParsePolicy(config.Encoding.UnknownPolicy)
	if err != nil {
		return nil, err
	}

	vocabulary := encoding.DefaultVocabulary()
	if path := strings.TrimSpace(config.Encoding.VocabularyFile); path != "" {
		override, err := encoding.LoadVocabulary(path)
		if err != nil {
			return nil, err
		}
		vocabulary = vocabulary.With(override)
	}

	return encoding.NewEncoder(vocabulary, policy)
}

func newLoader(config *Config) (model.Loader, error) {
	path := strings.TrimSpace(config.Model.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: model artifact path is not configured (set --model, PERF_MODEL_FILE or model.path)", model.ErrLoad)
	}
	return model.FileLoader{Path: path}, nil
}

func newNarrator(ctx context.Context, config *GeminiConfig, logger *zap.Logger) (ai.Narrator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  config.APIKeyFile,
		Env:   geminiAPIKeyEnv,
		Value: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Model)
	if err != nil {
		return nil, err
	}

	narratorLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewNarrator(generator, config.MaxLogLength, narratorLogger), nil
}

func newPipeline(ctx context.Context, config *Config, baseLogger *zap.Logger) (*pipeline.Pipeline, error) {
	encoder, err := newEncoder(config)
	if err != nil {
		return nil, fmt.Errorf("configuring the encoder: %w", err)
	}

	loader, err := newLoader(config)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Encoder: encoder,
		Loader:  loader,
		Logger:  baseLogger.With(zap.String(logger.FieldModelPath, config.Model.Path)),
	}

	if config.AI.Enabled {
		narrator, err := newNarrator(ctx, config.AI.Gemini, baseLogger)
		if err != nil {
			baseLogger.Warn("skipping narrative", zap.Error(err))
		} else {
			deps.Narrator = narrator
		}
	}

	p := pipeline.New(deps)
	baseLogger.Debug("pipeline ready",
		zap.Strings("stages", p.Describe()),
		zap.String("unknown_policy", string(encoder.Policy())),
	)

	return p, nil
}

// presenter shows the tables of one command run.
type presenter struct {
	out    io.Writer
	errOut io.Writer
	format report.Format
	output *OutputConfig
	logger *zap.Logger
	// multi is set when one run may produce several tables.
	multi bool
}

func newPresenter(cmd *cobra.Command, config *Config, logger *zap.Logger, multi bool) (*presenter, error) {
	format, err := report.ParseFormat(config.Output.Format)
	if err != nil {
		return nil, err
	}

	return &presenter{
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		format: format,
		output: config.Output,
		logger: logger,
		multi:  multi,
	}, nil
}

// run executes one request and shows its table. A failed request is
// reported and returned; it never stops the caller from taking the next one.
func (p *presenter) run(ctx context.Context, pl *pipeline.Pipeline, req pipeline.Request) error {
	table, err := pl.Run(ctx, req)
	if err != nil {
		p.fail(req.Origin, err)
		return err
	}

	if err := p.show(table); err != nil {
		p.logger.Info("showing predictions", zap.Error(err))
		return err
	}
	return nil
}

func (p *presenter) fail(origin string, err error) {
	p.logger.Info("request failed",
		zap.String(logger.FieldOrigin, origin),
		zap.String("kind", string(pipeline.Classify(err))),
		zap.Error(err),
	)
	fmt.Fprintln(p.errOut, pipeline.Describe(err))
}

func (p *presenter) show(table *report.Table) error {
	if p.multi && table.Origin != "" {
		fmt.Fprintf(p.out, "== %s ==\n", table.Origin)
	}

	if err := report.Render(p.out, table, p.format); err != nil {
		return fmt.Errorf("rendering predictions: %w", err)
	}

	if p.output.File != "" {
		path := p.outputPath(table.Origin)
		if err := table.ToFile(path); err != nil {
			return fmt.Errorf("writing predictions to %q: %w", path, err)
		}
		p.logger.Info("writing predictions to file", zap.String("filename", path))
	}

	if p.output.Dump {
		filename, err := table.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump predictions to file: %w", err)
		}
		p.logger.Info("dumping predictions to file", zap.String("filename", filename))
	}

	return nil
}

// outputPath gives every upload of a multi-file run its own output file.
func (p *presenter) outputPath(origin string) string {
	if !p.multi || origin == "" {
		return p.output.File
	}

	ext := filepath.Ext(p.output.File)
	stem := strings.TrimSuffix(p.output.File, ext)
	source := strings.TrimSuffix(filepath.Base(origin), filepath.Ext(origin))
	return fmt.Sprintf("%s-%s%s", stem, source, ext)
}

// errRequestsFailed is returned when at least one request of a run failed.
var errRequestsFailed = errors.New("some requests failed")
