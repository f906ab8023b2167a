package app

import (
	"context"
	"sync"

	"english-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// LeaderboardHub pushes fresh top-N snapshots to subscribers whenever a result is recorded.
type LeaderboardHub struct {
	results ResultSink
	size    int
	log     *zap.Logger

	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func NewLeaderboardHub(results ResultSink, size int, log *zap.Logger) *LeaderboardHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeaderboardHub{
		results:     results,
		size:        size,
		log:         log,
		subscribers: make(map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// Subscribe returns a channel primed with the current leaderboard.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error) {
	initial, err := h.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.LeaderboardEntry, 8)
	ch <- initial

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel, nil
}

// ResultRecorded implements ResultListener.
func (h *LeaderboardHub) ResultRecorded(ctx context.Context, _ domain.QuizResult) {
	h.mu.Lock()
	idle := len(h.subscribers) == 0
	h.mu.Unlock()
	if idle {
		return
	}

	entries, err := h.snapshot(ctx)
	if err != nil {
		h.log.Warn("leaderboard refresh failed", zap.Error(err))
		return
	}
	h.broadcast(entries)
}

func (h *LeaderboardHub) snapshot(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	results, err := h.results.TopN(ctx, h.size)
	if err != nil {
		return nil, err
	}
	return RankEntries(results), nil
}

func (h *LeaderboardHub) broadcast(entries []domain.LeaderboardEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- entries:
		default:
			// Slow subscriber: drop its oldest snapshot so the newest one fits.
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
