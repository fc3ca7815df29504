package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/pipeline"
	"github.com/spigell/perf-predictor/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Predict performance ratings for every CSV file dropped into a directory",
	Long: `Watch a directory and handle every matching file written into it as one
upload request, one file at a time. Failed files are reported and watching
continues until the command is interrupted.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return watchInbox(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("dir", "", "directory to watch (default from watch.dir)")
	watchCmd.Flags().String("pattern", "", "file name pattern to pick up (default from watch.pattern)")
	watchCmd.Flags().Bool("existing", false, "also handle files already in the directory")
	addOutputFlags(watchCmd)

	viper.BindPFlag("watch.dir", watchCmd.Flags().Lookup("dir"))
	viper.BindPFlag("watch.pattern", watchCmd.Flags().Lookup("pattern"))
	viper.BindPFlag("watch.existing", watchCmd.Flags().Lookup("existing"))
}

func watchInbox(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup(cmd)
	defer logger.Sync()

	p, err := newPipeline(ctx, config, logger)
	if err != nil {
		return err
	}

	presenter, err := newPresenter(cmd, config, logger, true)
	if err != nil {
		return err
	}

	inbox, err := watch.New(*config.Watch, logger)
	if err != nil {
		return err
	}

	err = inbox.Run(ctx, func(ctx context.Context, path string) error {
		req, err := pipeline.ReadUpload(logger, pipeline.SourceWatch, path)
		if err != nil {
			presenter.fail(path, err)
			return err
		}
		return presenter.run(ctx, p, req)
	})

	logger.Info("stopped watching", zap.String("dir", config.Watch.Dir))
	return err
}
