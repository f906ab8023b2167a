package memory

import (
	"context"
	"testing"
	"time"

	"english-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStoreTopNOrdersByPercentageThenTime(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, r := range []domain.QuizResult{
		{ID: "slow", Identity: "a", Percentage: 80, TimeTakenSeconds: 120, CompletedAt: base},
		{ID: "best", Identity: "b", Percentage: 95, TimeTakenSeconds: 300, CompletedAt: base},
		{ID: "fast", Identity: "c", Percentage: 80, TimeTakenSeconds: 60, CompletedAt: base},
		{ID: "low", Identity: "d", Percentage: 40, TimeTakenSeconds: 10, CompletedAt: base},
	} {
		require.NoError(t, store.Record(ctx, r))
	}

	top, err := store.TopN(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"best", "fast", "slow"}, []string{top[0].ID, top[1].ID, top[2].ID})
}

func TestResultStoreUserResultsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, domain.QuizResult{ID: "old", Identity: "u1", CompletedAt: base}))
	require.NoError(t, store.Record(ctx, domain.QuizResult{ID: "other", Identity: "u2", CompletedAt: base}))
	require.NoError(t, store.Record(ctx, domain.QuizResult{ID: "new", Identity: "u1", CompletedAt: base.Add(time.Hour)}))

	got, err := store.UserResults(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
}
