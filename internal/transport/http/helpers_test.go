package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"english-quiz-service/internal/infra/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router  *gin.Engine
	service *app.QuizService
	results *memory.ResultStore
}

// testBank has two A1 and one B1 question; option 1 is always right.
func testBank() []domain.Question {
	return []domain.Question{
		{ID: "q1", Level: "A1", Text: "How are you?", Options: []string{"Hello", "I am fine", "Blue"}, CorrectIndex: 1},
		{ID: "q2", Level: "A1", Text: "What color is the sky?", Options: []string{"Red", "Blue"}, CorrectIndex: 1},
		{ID: "q3", Level: "B1", Text: "I wish I ___ taller.", Options: []string{"am", "were", "be"}, CorrectIndex: 1},
	}
}

func newTestEnv(t *testing.T, resolver IdentityResolver) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	results := memory.NewResultStore()
	hub := app.NewLeaderboardHub(results, 20, nil)
	service := app.NewQuizService(
		memory.NewSessionStore(0),
		memory.NewStaticQuestionBank(testBank()),
		results,
		app.DefaultPolicy(),
		app.WithListeners(hub),
	)
	router := NewRouter(RouterConfig{
		Service:  service,
		Hub:      hub,
		Resolver: resolver,
	})
	return &testEnv{router: router, service: service, results: results}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func asUser(id, name string) map[string]string {
	return map[string]string{"X-User-ID": id, "X-User-Name": name}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
