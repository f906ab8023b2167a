package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

const allLevelsKey = "*"

// QuestionRepository caches question sets with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader app.QuestionBank
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader app.QuestionBank, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

func (r *QuestionRepository) ByLevel(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	return r.get(ctx, string(level), func(ctx context.Context) ([]domain.Question, error) {
		return r.loader.ByLevel(ctx, level)
	})
}

func (r *QuestionRepository) All(ctx context.Context) ([]domain.Question, error) {
	return r.get(ctx, allLevelsKey, r.loader.All)
}

func (r *QuestionRepository) get(ctx context.Context, key string, load func(context.Context) ([]domain.Question, error)) ([]domain.Question, error) {
	if qs, ok := r.lookup(key); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if qs, ok := r.lookup(key); ok {
			return qs, nil
		}

		qs, err := load(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cachedQuestions{
			questions: qs,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) lookup(key string) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.questions, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionBank is a simple bank backed by a fixed slice (useful for tests/demos).
type StaticQuestionBank struct {
	questions []domain.Question
}

func NewStaticQuestionBank(questions []domain.Question) *StaticQuestionBank {
	return &StaticQuestionBank{questions: questions}
}

func (b *StaticQuestionBank) ByLevel(_ context.Context, level domain.Level) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range b.questions {
		if q.Level == level {
			out = append(out, q.Clone())
		}
	}
	return out, nil
}

func (b *StaticQuestionBank) All(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(b.questions))
	for _, q := range b.questions {
		out = append(out, q.Clone())
	}
	return out, nil
}
