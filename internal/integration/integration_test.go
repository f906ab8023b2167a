package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"english-quiz-service/internal/infra/memory"
	"english-quiz-service/internal/infra/postgres"
	pgmigrations "english-quiz-service/internal/infra/postgres/migrations"
	infraredis "english-quiz-service/internal/infra/redis"
	"english-quiz-service/internal/seed"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	require.NoError(t, err)
	defer pool.Close()

	bank := postgres.NewQuestionBank(pool)
	questions := seed.Questions()
	for _, q := range questions {
		ok, err := bank.Insert(ctx, q)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	again, err := bank.Insert(ctx, questions[0])
	require.NoError(t, err)
	assert.False(t, again, "duplicate insert is skipped")
	unknown, err := bank.Insert(ctx, domain.Question{Level: "Z9", Text: "?", Options: []string{"a", "b"}})
	require.NoError(t, err)
	assert.False(t, unknown, "unknown level is skipped")

	correctOf := make(map[string]int, len(questions))
	for _, q := range questions {
		correctOf[q.Text] = q.CorrectIndex
	}

	redisClient, err := redisClientFromURL(redisURL)
	require.NoError(t, err)
	defer redisClient.Close()

	results := postgres.NewResultStore(pool)
	service := app.NewQuizService(
		infraredis.NewSessionStore(redisClient, time.Hour),
		infraredis.NewQuestionRepository(redisClient, bank, 5*time.Minute),
		results,
		app.DefaultPolicy(),
	)

	play := func(p domain.Player, level domain.Level, rightEvery int) *domain.QuizResult {
		start, err := service.Start(ctx, p, level)
		require.NoError(t, err)
		var out app.AnswerOutcome
		for i := 0; i < start.Total; i++ {
			cur, err := service.Current(ctx, p.ID)
			require.NoError(t, err)
			idx := correctOf[cur.Text]
			if i%rightEvery != 0 {
				idx = (idx + 1) % len(cur.Options)
			}
			out, err = service.SubmitAnswer(ctx, p.ID, idx)
			require.NoError(t, err)
		}
		require.True(t, out.Finished)
		return out.Result
	}

	perfect := play(domain.Player{ID: "u1", Name: "Alice"}, "B2", 1)
	assert.Equal(t, 6, perfect.Total)
	assert.Equal(t, 100.0, perfect.Percentage)
	assert.Equal(t, domain.Level("B2"), perfect.Level)

	half := play(domain.Player{ID: "u2", Name: "Bob"}, domain.LevelFull, 2)
	assert.Equal(t, 30, half.Total)
	assert.Equal(t, 50.0, half.Percentage)
	assert.Equal(t, domain.Level("A1"), half.Level)
	assert.Len(t, half.WrongAnswers, 15)

	top, err := service.Leaderboard(ctx, 20)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Alice", top[0].Name)
	assert.Equal(t, "gold", top[0].Medal)
	assert.Equal(t, "Bob", top[1].Name)

	history, err := results.UserResults(ctx, "u2", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, half.ID, history[0].ID)
	assert.Equal(t, domain.LevelFull, history[0].RequestedLevel)
	assert.ElementsMatch(t, half.WrongAnswers, history[0].WrongAnswers)
}

func TestConcurrentAnswersAgainstRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()
	redisClient, err := redisClientFromURL(redisURL)
	require.NoError(t, err)
	defer redisClient.Close()

	results := infraredis.NewResultStore(redisClient)
	service := app.NewQuizService(
		infraredis.NewSessionStore(redisClient, time.Hour),
		infraredis.NewQuestionRepository(redisClient, memory.NewStaticQuestionBank(seed.Questions()), time.Minute),
		results,
		app.DefaultPolicy(),
	)

	player := domain.Player{ID: "racer", Name: "Racer"}
	start, err := service.Start(ctx, player, "A1")
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		advanced int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.SubmitAnswer(ctx, player.ID, 0)
			if err == nil {
				mu.Lock()
				advanced++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, advanced, start.Total)
	if advanced == start.Total {
		board, err := service.Leaderboard(ctx, 5)
		require.NoError(t, err)
		require.Len(t, board, 1)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err := migrator.Migrate(ctx)
	require.NoError(t, err)
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
