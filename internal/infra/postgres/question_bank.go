package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"english-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionBank reads questions from Postgres; options are stored as a JSONB array.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

const selectQuestions = `SELECT id, level, text, options, correct_index FROM questions`

func (b *QuestionBank) ByLevel(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx, selectQuestions+` WHERE level=$1 ORDER BY id`, string(level))
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return scanQuestions(rows)
}

func (b *QuestionBank) All(ctx context.Context) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx, selectQuestions+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return scanQuestions(rows)
}

// Insert adds a question unless the same text already exists for its level.
// It reports false when the question was skipped, including for levels the
// database does not know.
func (b *QuestionBank) Insert(ctx context.Context, q domain.Question) (bool, error) {
	if err := q.Validate(); err != nil {
		return false, err
	}
	options, err := json.Marshal(q.Options)
	if err != nil {
		return false, fmt.Errorf("marshal options: %w", err)
	}
	tag, err := b.pool.Exec(ctx, `
		INSERT INTO questions (level, text, options, correct_index)
		SELECT $1::text, $2::text, $3::jsonb, $4::int
		WHERE EXISTS (SELECT 1 FROM levels WHERE code = $1)
		ON CONFLICT (level, text) DO NOTHING`,
		string(q.Level), q.Text, options, q.CorrectIndex,
	)
	if err != nil {
		return false, fmt.Errorf("insert question: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			id    int64
			level string
			q     domain.Question
			raw   []byte
		)
		if err := rows.Scan(&id, &level, &q.Text, &raw, &q.CorrectIndex); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of question %d: %w", id, err)
		}
		q.ID = strconv.FormatInt(id, 10)
		q.Level = domain.Level(level)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}
