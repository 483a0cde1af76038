package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"livepop-server/di"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP API and the periodic places refresher.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			container, err := di.NewContainer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer container.Close()

			if cfg.Refresher.Enabled {
				go func() {
					logger.Info("Running initial places refresh")
					if err := container.PlacesRefresherService.RefreshPlaces(ctx); err != nil {
						logger.Warn("Initial places refresh finished with errors", zap.Error(err))
					}
				}()
				container.PlacesRefresherService.StartPeriodicJob(ctx, cfg.Refresher.Interval)
			}

			return container.LivePopHttpServer.Start(ctx)
		},
	}
}
