package cli

import (
	"context"
	"fmt"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/config"
	amqpinfra "english-quiz-service/internal/infra/amqp"
	"english-quiz-service/internal/infra/memory"
	"english-quiz-service/internal/infra/postgres"
	"english-quiz-service/internal/metrics"
	redisinfra "english-quiz-service/internal/infra/redis"
	"english-quiz-service/internal/seed"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// deps holds the external connections a command opened.
type deps struct {
	redis     *redis.Client
	pool      *pgxpool.Pool
	publisher *amqpinfra.Publisher
}

func openDeps(ctx context.Context, cfg config.Config, log *zap.Logger) (*deps, error) {
	d := &deps{}
	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := d.redis.Ping(ctx).Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.pool = pool
	}
	if cfg.AMQP.URL != "" {
		pub, err := amqpinfra.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			log.Warn("result events disabled", zap.Error(err))
		} else {
			d.publisher = pub
		}
	}
	return d, nil
}

func (d *deps) Close() {
	if d.publisher != nil {
		d.publisher.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

type engine struct {
	service *app.QuizService
	hub     *app.LeaderboardHub
	metrics *metrics.Recorder
}

// buildService picks a backend per concern: postgres, then redis, then process memory.
func buildService(cfg config.Config, d *deps, log *zap.Logger) engine {
	var sessions app.SessionRepository
	sessionTTL := config.TTLDuration(cfg.Redis.SessionTTL, 0)
	if d.redis != nil {
		sessions = redisinfra.NewSessionStore(d.redis, sessionTTL)
	} else {
		sessions = memory.NewSessionStore(sessionTTL)
	}

	var bank app.QuestionBank = memory.NewStaticQuestionBank(seed.Questions())
	if d.pool != nil {
		bank = postgres.NewQuestionBank(d.pool)
	}
	cacheTTL := config.TTLDuration(cfg.Redis.CacheTTL, 5*time.Minute)
	if d.redis != nil {
		bank = redisinfra.NewQuestionRepository(d.redis, bank, cacheTTL)
	} else {
		bank = memory.NewQuestionRepository(bank, cacheTTL)
	}

	var results app.ResultSink
	switch {
	case d.pool != nil:
		results = postgres.NewResultStore(d.pool)
	case d.redis != nil:
		results = redisinfra.NewResultStore(d.redis)
	default:
		results = memory.NewResultStore()
	}

	hub := app.NewLeaderboardHub(results, cfg.Quiz.LeaderboardSize, log)
	recorder := metrics.New()
	listeners := []app.ResultListener{hub, recorder}
	if d.publisher != nil {
		listeners = append(listeners, d.publisher)
	}

	service := app.NewQuizService(sessions, bank, results, cfg.Policy(),
		app.WithListeners(listeners...),
		app.WithLogger(log),
	)
	return engine{service: service, hub: hub, metrics: recorder}
}
