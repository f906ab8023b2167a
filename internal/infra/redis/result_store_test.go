package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"english-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStoreRanksByPercentageThenTime(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewResultStore(client)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, r := range []domain.QuizResult{
		{ID: "slow", Identity: "a", Name: "A", Percentage: 66.67, TimeTakenSeconds: 90, CompletedAt: now},
		{ID: "best", Identity: "b", Name: "B", Percentage: 100, TimeTakenSeconds: 500, CompletedAt: now},
		{ID: "fast", Identity: "c", Name: "C", Percentage: 66.67, TimeTakenSeconds: 30, CompletedAt: now},
		{ID: "edge", Identity: "d", Name: "D", Percentage: 66.66, TimeTakenSeconds: 1, CompletedAt: now},
	} {
		require.NoError(t, store.Record(ctx, r))
	}

	top, err := store.TopN(ctx, 10)
	require.NoError(t, err)
	ids := make([]string, len(top))
	for i, r := range top {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"best", "fast", "slow", "edge"}, ids)

	top2, err := store.TopN(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top2, 2)
}

func TestResultStoreUserResultsNewestFirstAndTrimmed(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewResultStore(client)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < userHistory+5; i++ {
		require.NoError(t, store.Record(ctx, domain.QuizResult{
			ID:          fmt.Sprintf("r%d", i),
			Identity:    "u1",
			Score:       i,
			Total:       100,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := store.UserResults(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, fmt.Sprintf("r%d", userHistory+4), got[0].ID)

	all, err := store.UserResults(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, userHistory)

	none, err := store.UserResults(ctx, "u2", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
