// Package commands implements the unionhub-admin CLI
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unionhub/unionhub-api/internal/config"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/storage/postgres"
)

var (
	cfg      *config.Config
	logLevel string
)

// Execute runs the root command with os.Args
func Execute() error {
	return newRoot().Execute()
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "unionhub-admin",
		Short:        "Administrative tasks for the UnionHub API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			if logLevel == "" {
				logLevel = cfg.Log.Level
			}
			logger.Initialize(logLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default from LOG_LEVEL)")

	root.AddCommand(assignGroupsCmd(), tallyCmd(), tokenCmd())
	return root
}

// openContainer connects to the database configured in the environment
func openContainer() (*postgres.Container, error) {
	db, err := postgres.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return postgres.NewContainerWithDB(db), nil
}
