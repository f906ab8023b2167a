package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"english-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists finished quizzes in the results table.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Record(ctx context.Context, r domain.QuizResult) error {
	wrong := r.WrongAnswers
	if wrong == nil {
		wrong = []string{}
	}
	wrongJSON, err := json.Marshal(wrong)
	if err != nil {
		return fmt.Errorf("marshal wrong answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO results (id, identity, name, level, requested_level, score, total, percentage, time_taken, wrong_answers, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.Identity, r.Name, string(r.Level), string(r.RequestedLevel),
		r.Score, r.Total, r.Percentage, r.TimeTakenSeconds, wrongJSON, r.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

const selectResults = `SELECT id::text, identity, name, level, requested_level, score, total,
	percentage::float8, time_taken, wrong_answers, completed_at FROM results`

func (s *ResultStore) TopN(ctx context.Context, n int) ([]domain.QuizResult, error) {
	rows, err := s.pool.Query(ctx,
		selectResults+` ORDER BY percentage DESC, time_taken ASC, completed_at ASC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return scanResults(rows)
}

func (s *ResultStore) UserResults(ctx context.Context, identity string, n int) ([]domain.QuizResult, error) {
	rows, err := s.pool.Query(ctx,
		selectResults+` WHERE identity=$1 ORDER BY completed_at DESC LIMIT $2`, identity, n)
	if err != nil {
		return nil, fmt.Errorf("query user results: %w", err)
	}
	return scanResults(rows)
}

func scanResults(rows pgx.Rows) ([]domain.QuizResult, error) {
	defer rows.Close()

	var out []domain.QuizResult
	for rows.Next() {
		var (
			r         domain.QuizResult
			level     string
			requested string
			wrong     []byte
		)
		if err := rows.Scan(&r.ID, &r.Identity, &r.Name, &level, &requested, &r.Score, &r.Total,
			&r.Percentage, &r.TimeTakenSeconds, &wrong, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if len(wrong) > 0 {
			if err := json.Unmarshal(wrong, &r.WrongAnswers); err != nil {
				return nil, fmt.Errorf("unmarshal wrong answers: %w", err)
			}
		}
		r.Level = domain.Level(level)
		r.RequestedLevel = domain.Level(requested)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}
