package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/container"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Billed web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting Billed",
				zap.String("version", container.Version),
				zap.Int("port", cfg.Server.Port),
				zap.String("store", cfg.Store.Backend))

			c, err := container.NewContainer(cfg, logger)
			if err != nil {
				return err
			}
			if err := c.Start(ctx); err != nil {
				return fmt.Errorf("starting container: %w", err)
			}
			defer func() {
				if err := c.Close(); err != nil {
					logger.Error("Failed to close container", zap.Error(err))
				}
			}()

			if err := c.Server().Start(ctx); err != nil {
				return fmt.Errorf("serving http: %w", err)
			}

			logger.Info("Billed stopped")
			return nil
		},
	}
}
