package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/export"
	repo "github.com/joseph-ayodele/exam-extractor/internal/repository"
	"github.com/joseph-ayodele/exam-extractor/internal/services/loader"
)

func loadCMD(opts *rootOptions) *cobra.Command {
	var (
		accepted     string
		title        string
		paperType    string
		instructions string
		migrateFirst bool
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Upsert accepted questions into the question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return common.InvalidArgumentErrorf("database.dsn (DB_URL) is required for load")
			}

			qs, err := export.ReadQuestions(accepted)
			if err != nil {
				return err
			}

			db, err := repo.Open(ctx, dbConfig(cfg), logger)
			if err != nil {
				return err
			}
			defer db.Close(logger)
			if err := db.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
				return common.WrapError(err, "database ping")
			}
			if migrateFirst {
				if err := repo.Migrate(db, "up", 0, logger); err != nil {
					return err
				}
			}

			svc := loader.NewService(repo.NewPaperRepository(db, logger), repo.NewQuestionRepository(db, logger), logger)
			_, err = svc.Load(ctx, loader.Request{
				Title:        title,
				Type:         constants.PaperType(paperType),
				Instructions: instructions,
				Questions:    qs,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&accepted, "accepted", "accepted.json", "accepted questions file")
	cmd.Flags().StringVar(&title, "paper", "", "paper title")
	cmd.Flags().StringVar(&paperType, "type", string(constants.PaperTypePractice), "paper type: mock or practice")
	cmd.Flags().StringVar(&instructions, "instructions", "", "paper instructions")
	cmd.Flags().BoolVar(&migrateFirst, "migrate", true, "apply migrations before loading")
	_ = cmd.MarkFlagRequired("paper")
	return cmd
}

func dbConfig(cfg *common.Config) repo.Config {
	return repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}
}
