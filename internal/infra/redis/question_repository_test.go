package redis

import (
	"context"
	"testing"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"english-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, client := newTestRedis(t)
	loader := &countingBank{QuestionBank: memory.NewStaticQuestionBank(sampleQuestions())}
	repo := NewQuestionRepository(client, loader, time.Minute)
	ctx := context.Background()

	qs, err := repo.ByLevel(ctx, "A1")
	require.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.Equal(t, 1, loader.calls)
	assert.True(t, mr.Exists("quiz:bank:level:A1"))

	// Second call should hit cache, loader not incremented.
	cached, err := repo.ByLevel(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, qs, cached)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 2, loader.calls)
}

func TestQuestionRepositoryDoesNotCacheEmptySets(t *testing.T) {
	mr, client := newTestRedis(t)
	loader := &countingBank{QuestionBank: memory.NewStaticQuestionBank(sampleQuestions())}
	repo := NewQuestionRepository(client, loader, time.Minute)

	qs, err := repo.ByLevel(context.Background(), "C1")
	require.NoError(t, err)
	assert.Empty(t, qs)
	assert.False(t, mr.Exists("quiz:bank:level:C1"))
}

func TestQuestionRepositoryZeroTTLSkipsCache(t *testing.T) {
	mr, client := newTestRedis(t)
	loader := &countingBank{QuestionBank: memory.NewStaticQuestionBank(sampleQuestions())}
	repo := NewQuestionRepository(client, loader, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		qs, err := repo.ByLevel(ctx, "A1")
		require.NoError(t, err)
		assert.Len(t, qs, 2)
	}
	assert.Equal(t, 2, loader.calls)
	assert.False(t, mr.Exists("quiz:bank:level:A1"))
}

type countingBank struct {
	app.QuestionBank
	calls int
}

func (b *countingBank) ByLevel(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	b.calls++
	return b.QuestionBank.ByLevel(ctx, level)
}

func (b *countingBank) All(ctx context.Context) ([]domain.Question, error) {
	b.calls++
	return b.QuestionBank.All(ctx)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Level: "A1", Text: "What color is the sky?", Options: []string{"Blue", "Red"}, CorrectIndex: 0},
		{ID: "q2", Level: "A1", Text: "Where is the door?", Options: []string{"Here", "There"}, CorrectIndex: 1},
		{ID: "q3", Level: "B1", Text: "I wish I ___ taller.", Options: []string{"am", "were"}, CorrectIndex: 1},
	}
}
