package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/form"
	"github.com/spigell/perf-predictor/internal/pipeline"
)

var enterCmd = &cobra.Command{
	Use:   "enter",
	Short: "Enter one employee record by hand and predict its performance rating",
	Long: `Enter one employee record field by field. Values may be given with --set
Field=Value or a YAML values file; every missing field is asked interactively
unless --no-prompt is set. Values out of range are rejected, never clamped.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return enter(cmd)
	},
}

func init() {
	rootCmd.AddCommand(enterCmd)

	enterCmd.Flags().StringArray("set", nil, "field value as Field=Value (repeatable)")
	enterCmd.Flags().String("values", "", "YAML file with field values")
	enterCmd.Flags().Bool("no-prompt", false, "fail instead of asking for missing fields")
	addOutputFlags(enterCmd)
}

func enter(cmd *cobra.Command) error {
	ctx := context.Background()

	logger, config := setup(cmd)
	defer logger.Sync()

	values, err := collectValues(cmd)
	if err != nil {
		return err
	}

	var prompter form.Prompter = form.Terminal{}
	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		prompter = nil
	}

	presenter, err := newPresenter(cmd, config, logger, false)
	if err != nil {
		return err
	}

	record, err := form.New(prompter).Submit(values)
	if err != nil {
		presenter.fail(pipeline.FormOrigin, err)
		return errRequestsFailed
	}

	logger.Info("record entered", zap.String("emp_number", record.EmpNumber))

	p, err := newPipeline(ctx, config, logger)
	if err != nil {
		return err
	}

	if err := presenter.run(ctx, p, pipeline.FromForm(record)); err != nil {
		return errRequestsFailed
	}
	return nil
}

// collectValues merges the values file with --set pairs; --set wins.
func collectValues(cmd *cobra.Command) (form.Values, error) {
	values := form.Values{}

	path, err := cmd.Flags().GetString("values")
	if err != nil {
		return nil, err
	}
	if path != "" {
		fromFile, err := form.LoadValues(path)
		if err != nil {
			return nil, err
		}
		values = values.Merge(fromFile)
	}

	pairs, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return nil, err
	}
	fromFlags, err := form.ParseAssignments(pairs)
	if err != nil {
		return nil, fmt.Errorf("parsing --set: %w", err)
	}

	return values.Merge(fromFlags), nil
}
