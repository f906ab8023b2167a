package memory

import (
	"context"
	"sort"
	"sync"

	"english-quiz-service/internal/domain"
)

// ResultStore keeps finished results in process memory.
type ResultStore struct {
	mu      sync.RWMutex
	results []domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) Record(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func (s *ResultStore) TopN(_ context.Context, n int) ([]domain.QuizResult, error) {
	s.mu.RLock()
	out := append([]domain.QuizResult(nil), s.results...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return domain.RanksBefore(out[i], out[j]) })
	return limit(out, n), nil
}

func (s *ResultStore) UserResults(_ context.Context, identity string, n int) ([]domain.QuizResult, error) {
	s.mu.RLock()
	var out []domain.QuizResult
	for _, r := range s.results {
		if r.Identity == identity {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return limit(out, n), nil
}

func limit(results []domain.QuizResult, n int) []domain.QuizResult {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
