package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"english-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	rankKey     = "leaderboard:rank"
	resultsKey  = "leaderboard:results"
	userHistory = 50

	// maxRankedSeconds bounds the time component of the rank score.
	maxRankedSeconds = 9_999_999
)

// ResultStore is a Redis-backed leaderboard.
//   - HSET leaderboard:results {resultID} {json}
//   - ZADD leaderboard:rank {rankScore} {resultID}
//   - LPUSH results:user:{identity} {json}, trimmed to the newest entries
type ResultStore struct {
	client *redis.Client
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

func (s *ResultStore) Record(ctx context.Context, result domain.QuizResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	userKey := s.userKey(result.Identity)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, resultsKey, result.ID, data)
		pipe.ZAdd(ctx, rankKey, redis.Z{Score: rankScore(result), Member: result.ID})
		pipe.LPush(ctx, userKey, data)
		pipe.LTrim(ctx, userKey, 0, userHistory-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func (s *ResultStore) TopN(ctx context.Context, n int) ([]domain.QuizResult, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := s.client.ZRevRange(ctx, rankKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read ranking: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := s.client.HMGet(ctx, resultsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	out := make([]domain.QuizResult, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r domain.QuizResult
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ResultStore) UserResults(ctx context.Context, identity string, n int) ([]domain.QuizResult, error) {
	if n <= 0 || n > userHistory {
		n = userHistory
	}
	raw, err := s.client.LRange(ctx, s.userKey(identity), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read user results: %w", err)
	}
	out := make([]domain.QuizResult, 0, len(raw))
	for _, str := range raw {
		var r domain.QuizResult
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ResultStore) userKey(identity string) string {
	return "results:user:" + identity
}

// rankScore packs percentage (hundredths) and time into one sortable number so
// that ZREVRANGE yields higher percentage first and, among equals, the faster run.
func rankScore(r domain.QuizResult) float64 {
	hundredths := int64(math.Round(r.Percentage * 100))
	t := int64(r.TimeTakenSeconds)
	if t < 0 {
		t = 0
	}
	if t > maxRankedSeconds {
		t = maxRankedSeconds
	}
	return float64(hundredths*(maxRankedSeconds+1) + (maxRankedSeconds - t))
}
