package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"english-quiz-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts how live quiz sessions are stored (in-memory, Redis, etc).
// Each identity holds at most one session.
type SessionRepository interface {
	// Put stores session under its identity, replacing any previous one.
	Put(ctx context.Context, session *Session) error
	// Get returns domain.ErrNoActiveSession when nothing is stored.
	Get(ctx context.Context, identity string) (*Session, error)
	Remove(ctx context.Context, identity string) error
	// Restore stores session only when its identity has none, reporting whether it wrote.
	Restore(ctx context.Context, session *Session) (bool, error)
	// Update runs fn on a copy of the identity's session, serialized against other
	// writers of that identity. The copy is written back when fn returns keep=true and
	// deleted when keep=false. If fn fails nothing is written.
	Update(ctx context.Context, identity string, fn func(*Session) (keep bool, err error)) error
}

// QuestionBank loads question content from a backing store or cache.
type QuestionBank interface {
	ByLevel(ctx context.Context, level domain.Level) ([]domain.Question, error)
	All(ctx context.Context) ([]domain.Question, error)
}

// ResultSink persists finalized results and serves the read side.
type ResultSink interface {
	Record(ctx context.Context, result domain.QuizResult) error
	// TopN returns results ordered by percentage descending, then time taken ascending.
	TopN(ctx context.Context, n int) ([]domain.QuizResult, error)
	// UserResults returns the identity's results, newest first.
	UserResults(ctx context.Context, identity string, n int) ([]domain.QuizResult, error)
}

// ResultListener is told about every result after the sink accepted it.
type ResultListener interface {
	ResultRecorded(ctx context.Context, result domain.QuizResult)
}

// Policy carries the tunable parts of quiz construction and grading.
type Policy struct {
	Levels         []domain.LevelInfo
	Thresholds     ThresholdTable
	LevelQuestions int // per level-specific quiz, 0 = every question of the level
	FullQuestions  int // per full quiz, 0 = whole bank
}

// DefaultPolicy is the CEFR ladder used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		Levels: []domain.LevelInfo{
			{Code: "A1", Description: "Beginner - Basic phrases and vocabulary"},
			{Code: "A2", Description: "Elementary - Simple conversations"},
			{Code: "B1", Description: "Intermediate - Everyday language"},
			{Code: "B2", Description: "Upper Intermediate - Complex topics"},
			{Code: "C1", Description: "Advanced - Fluent and natural"},
		},
		Thresholds: ThresholdTable{
			{Min: 90, Level: "C1"},
			{Min: 80, Level: "B2"},
			{Min: 70, Level: "B1"},
			{Min: 60, Level: "A2"},
			{Min: 0, Level: "A1"},
		},
	}
}

func (p Policy) knows(level domain.Level) bool {
	for _, l := range p.Levels {
		if l.Code == level {
			return true
		}
	}
	return false
}

func (p Policy) order() []domain.Level {
	out := make([]domain.Level, len(p.Levels))
	for i, l := range p.Levels {
		out[i] = l.Code
	}
	return out
}

// QuestionView is a question as shown to the quiz-taker; it never carries the answer.
type QuestionView struct {
	Number  int          `json:"number"`
	Text    string       `json:"text"`
	Options []string     `json:"options"`
	Level   domain.Level `json:"level"`
}

// ProgressView is the next question plus the running score.
type ProgressView struct {
	QuestionView
	Score   int `json:"score"`
	Current int `json:"current"`
	Total   int `json:"total"`
}

// StartResult is returned when a quiz begins.
type StartResult struct {
	Question QuestionView
	Total    int
}

// AnswerOutcome is either the next question or, once finished, the result.
type AnswerOutcome struct {
	Finished bool
	Correct  bool
	Question *ProgressView
	Result   *domain.QuizResult
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionBank
	results   ResultSink
	policy    Policy
	listeners []ResultListener
	now       func() time.Time
	rnd       *shuffler
	log       *zap.Logger
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithClock is used by tests for deterministic timing.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithRandSource fixes the question shuffling source.
func WithRandSource(src rand.Source) Option {
	return func(s *QuizService) { s.rnd = newShuffler(src) }
}

// WithListeners registers result listeners.
func WithListeners(listeners ...ResultListener) Option {
	return func(s *QuizService) { s.listeners = append(s.listeners, listeners...) }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *QuizService) { s.log = log }
}

func NewQuizService(store SessionRepository, questions QuestionBank, results ResultSink, policy Policy, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:  store,
		questions: questions,
		results:   results,
		policy:    policy,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = newShuffler(nil)
	}
	return s
}

// Levels lists the configured levels.
func (s *QuizService) Levels() []domain.LevelInfo {
	return append([]domain.LevelInfo(nil), s.policy.Levels...)
}

// Start draws a fresh question set and replaces any session the player already had.
func (s *QuizService) Start(ctx context.Context, player domain.Player, level domain.Level) (StartResult, error) {
	if level.IsFull() {
		level = domain.LevelFull
	} else if !s.policy.knows(level) {
		return StartResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownLevel, level)
	}

	questions, err := s.draw(ctx, level)
	if err != nil {
		return StartResult{}, err
	}
	if len(questions) == 0 {
		return StartResult{}, domain.ErrNoQuestionsAvailable
	}

	session := NewSession(player, level, questions, s.now())
	if err := s.sessions.Put(ctx, session); err != nil {
		return StartResult{}, fmt.Errorf("store session: %w", err)
	}

	s.log.Info("quiz started",
		zap.String("identity", player.ID),
		zap.String("level", string(level)),
		zap.Int("total", session.Total()),
	)

	first, _ := session.Current()
	return StartResult{Question: viewOf(first, 1), Total: session.Total()}, nil
}

func (s *QuizService) draw(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	if level == domain.LevelFull {
		all, err := s.questions.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
		return s.rnd.sampleMixed(all, s.policy.FullQuestions, s.policy.order()), nil
	}
	qs, err := s.questions.ByLevel(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("load %s questions: %w", level, err)
	}
	return s.rnd.sampleLevel(qs, s.policy.LevelQuestions), nil
}

// SubmitAnswer applies one answer to the player's session. On the last question the
// session is finalized: the result is recorded and the session removed.
func (s *QuizService) SubmitAnswer(ctx context.Context, identity string, answer int) (AnswerOutcome, error) {
	var (
		before  *Session
		after   *Session
		correct bool
	)
	err := s.sessions.Update(ctx, identity, func(session *Session) (bool, error) {
		before = session.Clone()
		ok, err := session.Answer(answer)
		if err != nil {
			return true, err
		}
		correct = ok
		after = session
		return !session.Finished(), nil
	})
	if err != nil {
		return AnswerOutcome{}, err
	}

	if !after.Finished() {
		next := progressOf(after)
		return AnswerOutcome{Correct: correct, Question: &next}, nil
	}

	result := s.finalize(after)
	if err := s.results.Record(ctx, result); err != nil {
		// Put the last question back so the answer can be resubmitted, unless the
		// player already started another quiz.
		restored, restoreErr := s.sessions.Restore(ctx, before)
		switch {
		case restoreErr != nil:
			s.log.Error("restore session after failed record",
				zap.String("identity", identity),
				zap.Error(restoreErr),
			)
		case !restored:
			s.log.Info("newer session kept after failed record", zap.String("identity", identity))
		}
		return AnswerOutcome{}, fmt.Errorf("record result: %w", err)
	}

	s.log.Info("quiz finished",
		zap.String("identity", identity),
		zap.String("level", string(result.Level)),
		zap.Int("score", result.Score),
		zap.Int("total", result.Total),
		zap.Int("time_taken", result.TimeTakenSeconds),
	)
	for _, l := range s.listeners {
		l.ResultRecorded(ctx, result)
	}
	return AnswerOutcome{Finished: true, Correct: correct, Result: &result}, nil
}

func (s *QuizService) finalize(session *Session) domain.QuizResult {
	now := s.now()
	percentage := Percentage(session.Score, session.Total())

	level := session.Level
	if level == domain.LevelFull {
		level = s.policy.Thresholds.Classify(percentage)
	}

	elapsed := int(now.Sub(session.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	return domain.QuizResult{
		ID:               uuid.NewString(),
		Identity:         session.Identity,
		Name:             session.Name,
		Level:            level,
		RequestedLevel:   session.Level,
		Score:            session.Score,
		Total:            session.Total(),
		Percentage:       percentage,
		TimeTakenSeconds: elapsed,
		WrongAnswers:     append([]string(nil), session.WrongAnswers...),
		CompletedAt:      now,
	}
}

// Current returns the question the player must answer next.
func (s *QuizService) Current(ctx context.Context, identity string) (ProgressView, error) {
	session, err := s.sessions.Get(ctx, identity)
	if err != nil {
		return ProgressView{}, err
	}
	if session.Finished() {
		return ProgressView{}, domain.ErrNoActiveSession
	}
	return progressOf(session), nil
}

// Leaderboard returns the top n results ranked for display.
func (s *QuizService) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	results, err := s.results.TopN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return RankEntries(results), nil
}

// UserResults returns the player's past results, newest first.
func (s *QuizService) UserResults(ctx context.Context, identity string, n int) ([]domain.QuizResult, error) {
	results, err := s.results.UserResults(ctx, identity, n)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return results, nil
}

var medals = []string{"gold", "silver", "bronze"}

// RankEntries numbers results from 1 and marks the top three.
func RankEntries(results []domain.QuizResult) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for i, r := range results {
		e := domain.LeaderboardEntry{
			Rank:             i + 1,
			Name:             r.Name,
			Level:            r.Level,
			Percentage:       r.Percentage,
			TimeTakenSeconds: r.TimeTakenSeconds,
			Date:             r.CompletedAt,
		}
		if i < len(medals) {
			e.Medal = medals[i]
		}
		if e.Name == "" {
			e.Name = r.Identity
		}
		entries = append(entries, e)
	}
	return entries
}

func viewOf(q domain.Question, number int) QuestionView {
	return QuestionView{
		Number:  number,
		Text:    q.Text,
		Options: append([]string(nil), q.Options...),
		Level:   q.Level,
	}
}

func progressOf(session *Session) ProgressView {
	q, _ := session.Current()
	return ProgressView{
		QuestionView: viewOf(q, session.Position),
		Score:        session.Score,
		Current:      session.Answered(),
		Total:        session.Total(),
	}
}
