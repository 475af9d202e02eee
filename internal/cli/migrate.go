package cli

import (
	"context"

	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies the schema.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	repo, err := openRepository(cfg, validator.New(), utils.ToSlogLogger(logger))
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("Migrations applied")
	return nil
}
