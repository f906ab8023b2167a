package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxLeaderboard = 100
	maxHistory     = 50
)

// QuizHandler serves the quiz and leaderboard REST endpoints.
type QuizHandler struct {
	service         *app.QuizService
	leaderboardSize int
	historySize     int
	log             *zap.Logger
}

func NewQuizHandler(service *app.QuizService, leaderboardSize, historySize int, log *zap.Logger) *QuizHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if leaderboardSize <= 0 {
		leaderboardSize = 20
	}
	if historySize <= 0 {
		historySize = 10
	}
	return &QuizHandler{
		service:         service,
		leaderboardSize: leaderboardSize,
		historySize:     historySize,
		log:             log,
	}
}

type startRequest struct {
	Level domain.Level `json:"level"`
}

type answerRequest struct {
	Answer *int `json:"answer" binding:"required"`
}

type startResponse struct {
	Question       app.QuestionView `json:"question"`
	TotalQuestions int              `json:"total_questions"`
}

type resultResponse struct {
	Score        int          `json:"score"`
	Total        int          `json:"total"`
	Percentage   float64      `json:"percentage"`
	Level        domain.Level `json:"level"`
	TimeTaken    int          `json:"time_taken"`
	WrongAnswers []string     `json:"wrong_answers,omitempty"`
}

type answerResponse struct {
	Finished  bool              `json:"finished"`
	IsCorrect bool              `json:"is_correct"`
	Question  *app.ProgressView `json:"question,omitempty"`
	Result    *resultResponse   `json:"result,omitempty"`
}

type historyEntry struct {
	Level      domain.Level `json:"level"`
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage float64      `json:"percentage"`
	TimeTaken  int          `json:"time_taken"`
	Date       time.Time    `json:"date"`
}

func newStartResponse(r app.StartResult) startResponse {
	return startResponse{Question: r.Question, TotalQuestions: r.Total}
}

func newAnswerResponse(out app.AnswerOutcome) answerResponse {
	resp := answerResponse{Finished: out.Finished, IsCorrect: out.Correct, Question: out.Question}
	if out.Result != nil {
		resp.Result = &resultResponse{
			Score:        out.Result.Score,
			Total:        out.Result.Total,
			Percentage:   out.Result.Percentage,
			Level:        out.Result.Level,
			TimeTaken:    out.Result.TimeTakenSeconds,
			WrongAnswers: out.Result.WrongAnswers,
		}
	}
	return resp
}

func (h *QuizHandler) Levels(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Levels())
}

func (h *QuizHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	started, err := h.service.Start(c.Request.Context(), playerFrom(c), req.Level)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newStartResponse(started))
}

func (h *QuizHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answer is required"})
		return
	}
	out, err := h.service.SubmitAnswer(c.Request.Context(), playerFrom(c).ID, *req.Answer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newAnswerResponse(out))
}

func (h *QuizHandler) Current(c *gin.Context) {
	cur, err := h.service.Current(c.Request.Context(), playerFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": cur})
}

func (h *QuizHandler) Leaderboard(c *gin.Context) {
	entries, err := h.service.Leaderboard(c.Request.Context(), queryLimit(c, h.leaderboardSize, maxLeaderboard))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *QuizHandler) UserResults(c *gin.Context) {
	results, err := h.service.UserResults(c.Request.Context(), playerFrom(c).ID, queryLimit(c, h.historySize, maxHistory))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]historyEntry, 0, len(results))
	for _, r := range results {
		out = append(out, historyEntry{
			Level:      r.Level,
			Score:      r.Score,
			Total:      r.Total,
			Percentage: r.Percentage,
			TimeTaken:  r.TimeTakenSeconds,
			Date:       r.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *QuizHandler) fail(c *gin.Context, err error) {
	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": msg})
}

// statusOf maps engine errors to an HTTP status and a client-safe message.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidAnswerIndex),
		errors.Is(err, domain.ErrUnknownLevel),
		errors.Is(err, domain.ErrNoActiveSession):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNoQuestionsAvailable):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrSessionBusy):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// queryLimit reads ?limit=, falling back to def and capping at max.
func queryLimit(c *gin.Context, def, max int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		n = def
	}
	if n > max {
		n = max
	}
	return n
}
