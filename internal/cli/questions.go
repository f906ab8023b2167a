package cli

import (
	"context"
	"fmt"
	"os"

	"english-quiz-service/internal/domain"
	"english-quiz-service/internal/infra/postgres"
	"english-quiz-service/internal/seed"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd loads the built-in sample questions into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			return loadQuestions(cmd.Context(), *configPath, func() ([]domain.Question, error) {
				return seed.Questions(), nil
			})
		},
	}
}

// NewImportQuestionsCmd imports questions from a CSV file.
func NewImportQuestionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import-questions <file.csv>",
		Short: "Import questions from CSV (level,question,option1..option4,correct)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return loadQuestions(cmd.Context(), *configPath, func() ([]domain.Question, error) {
				f, err := os.Open(args[0])
				if err != nil {
					return nil, err
				}
				defer f.Close()
				return seed.ParseQuestionsCSV(f)
			})
		},
	}
}

func loadQuestions(ctx context.Context, configPath string, source func() ([]domain.Question, error)) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	questions, err := source()
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	inserted, skipped, err := insertQuestions(ctx, postgres.NewQuestionBank(pool), questions)
	if err != nil {
		return err
	}
	log.Info("questions loaded", zap.Int("inserted", inserted), zap.Int("skipped", skipped))
	return nil
}

type questionInserter interface {
	Insert(ctx context.Context, q domain.Question) (bool, error)
}

// insertQuestions counts duplicates and unknown levels as skipped.
func insertQuestions(ctx context.Context, bank questionInserter, questions []domain.Question) (inserted, skipped int, err error) {
	for _, q := range questions {
		ok, err := bank.Insert(ctx, q)
		if err != nil {
			return inserted, skipped, fmt.Errorf("insert %q: %w", q.Text, err)
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}
