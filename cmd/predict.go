package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/pipeline"
)

const noInputMessage = "Please upload a CSV file (--file) or fill the form (perf-predictor enter) to get predictions."

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict performance ratings for uploaded CSV files",
	Long: `Predict performance ratings for every employee in the uploaded CSV files.
Each file is handled as its own request; a failing file is reported and the
next one is processed. The command exits non-zero if any file failed.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return predict(cmd)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringSliceP("file", "f", nil, "CSV file or ** glob pattern to upload (repeatable)")
	addOutputFlags(predictCmd)
}

func predict(cmd *cobra.Command) error {
	ctx := context.Background()

	patterns, err := cmd.Flags().GetStringSlice("file")
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), noInputMessage)
		return nil
	}

	logger, config := setup(cmd)
	defer logger.Sync()

	paths, err := employee.ExpandUploads(patterns)
	if err != nil {
		return fmt.Errorf("%w: %v", employee.ErrParse, err)
	}

	logger.Info("starting the predictions", zap.String("version", version), zap.Int("files", len(paths)))

	p, err := newPipeline(ctx, config, logger)
	if err != nil {
		return err
	}

	presenter, err := newPresenter(cmd, config, logger, len(paths) > 1)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range paths {
		req, err := pipeline.ReadUpload(logger, pipeline.SourceUpload, path)
		if err != nil {
			presenter.fail(path, err)
			failed++
			continue
		}

		if err := presenter.run(ctx, p, req); err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d uploads", errRequestsFailed, failed, len(paths))
	}

	logger.Info("predictions finished", zap.Int("files", len(paths)))
	return nil
}
