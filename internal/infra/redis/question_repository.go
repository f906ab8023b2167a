package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionRepository caches question sets in Redis and falls back to a loader on cache miss.
// Sets are stored as JSON: SET quiz:bank:{level} [...] and quiz:bank:all for the whole bank.
type QuestionRepository struct {
	client *redis.Client
	loader app.QuestionBank
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader app.QuestionBank, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) ByLevel(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	return r.get(ctx, r.levelKey(level), func(ctx context.Context) ([]domain.Question, error) {
		return r.loader.ByLevel(ctx, level)
	})
}

func (r *QuestionRepository) All(ctx context.Context) ([]domain.Question, error) {
	return r.get(ctx, r.allKey(), r.loader.All)
}

func (r *QuestionRepository) get(ctx context.Context, key string, load func(context.Context) ([]domain.Question, error)) ([]domain.Question, error) {
	if qs, ok := r.cached(ctx, key); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := r.cached(ctx, key); ok {
			return qs, nil
		}

		qs, err := load(ctx)
		if err != nil {
			return nil, err
		}

		// An empty set is not cached so freshly imported questions show up immediately.
		if len(qs) > 0 && r.ttl > 0 {
			if data, err := json.Marshal(qs); err == nil {
				_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
			}
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// cached treats any Redis failure as a miss; the loader stays authoritative.
func (r *QuestionRepository) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, false
	}
	return qs, true
}

func (r *QuestionRepository) levelKey(level domain.Level) string {
	return "quiz:bank:level:" + string(level)
}

func (r *QuestionRepository) allKey() string {
	return "quiz:bank:all"
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
