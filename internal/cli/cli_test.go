package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"english-quiz-service/internal/config"
	"english-quiz-service/internal/domain"
	transport "english-quiz-service/internal/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInserter struct {
	seen map[string]bool
	fail string
}

func (f *fakeInserter) Insert(_ context.Context, q domain.Question) (bool, error) {
	if q.Text == f.fail {
		return false, errors.New("boom")
	}
	if f.seen[q.Text] {
		return false, nil
	}
	f.seen[q.Text] = true
	return true, nil
}

func TestInsertQuestionsCountsSkips(t *testing.T) {
	bank := &fakeInserter{seen: map[string]bool{"b": true}}
	qs := []domain.Question{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "a"}}

	inserted, skipped, err := insertQuestions(context.Background(), bank, qs)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 2, skipped)

	bank.fail = "d"
	_, _, err = insertQuestions(context.Background(), bank, []domain.Question{{Text: "d"}})
	assert.Error(t, err)
}

func TestBuildServiceInMemory(t *testing.T) {
	cfg := config.Default()
	eng := buildService(cfg, &deps{}, zap.NewNop())
	require.NotNil(t, eng.hub)

	levels := eng.service.Levels()
	require.Len(t, levels, 5)

	started, err := eng.service.Start(context.Background(), domain.Player{ID: "u1"}, "A1")
	require.NoError(t, err)
	assert.Equal(t, 6, started.Total)

	router := transport.NewRouter(transport.RouterConfig{Service: eng.service, Hub: eng.hub, Metrics: eng.metrics})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestTokenCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: s3cret\nlogger:\n  level: error\n"), 0o600))

	cmd := NewTokenCmd(&path)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--id", "u1", "--name", "Alice"})
	require.NoError(t, cmd.Execute())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(out.String()))
	player, err := transport.NewJWTResolver("s3cret").Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, domain.Player{ID: "u1", Name: "Alice"}, player)
}

func TestSeedRequiresPostgres(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: error\n"), 0o600))

	cmd := NewSeedCmd(&path)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres url not configured")
}
