package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/billed/internal/container"
	"github.com/garyjia/billed/pkg/database"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if dir == "" {
				dir = cfg.Database.MigrationsDir
			}

			conn, err := database.New(database.Config{Path: cfg.Database.Path}, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := container.RunMigrations(conn, dir, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to %s\n", applied, cfg.Database.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "read migrations from this directory instead of the embedded set")

	return cmd
}
