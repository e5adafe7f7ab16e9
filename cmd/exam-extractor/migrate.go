package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/exam-extractor/internal/common"
	repo "github.com/joseph-ayodele/exam-extractor/internal/repository"
)

func migrateCMD(opts *rootOptions) *cobra.Command {
	var direction string
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run question bank migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return common.InvalidArgumentErrorf("database.dsn (DB_URL) is required for migrate")
			}
			db, err := repo.Open(cmd.Context(), dbConfig(cfg), logger)
			if err != nil {
				return err
			}
			defer db.Close(logger)
			return repo.Migrate(db, direction, steps, logger)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "up", "up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return cmd
}
