package app

import (
	"time"

	"english-quiz-service/internal/domain"
)

// Session is one in-progress attempt. Position is 1-based and reaches Total()+1 once
// every question has been answered.
type Session struct {
	Identity     string            `json:"identity"`
	Name         string            `json:"name"`
	Level        domain.Level      `json:"level"`
	Questions    []domain.Question `json:"questions"`
	Position     int               `json:"position"`
	Score        int               `json:"score"`
	WrongAnswers []string          `json:"wrongAnswers,omitempty"`
	StartedAt    time.Time         `json:"startedAt"`
}

// NewSession snapshots questions into a fresh session at position 1.
func NewSession(player domain.Player, level domain.Level, questions []domain.Question, startedAt time.Time) *Session {
	snapshot := make([]domain.Question, len(questions))
	for i, q := range questions {
		snapshot[i] = q.Clone()
	}
	return &Session{
		Identity:  player.ID,
		Name:      player.Name,
		Level:     level,
		Questions: snapshot,
		Position:  1,
		StartedAt: startedAt,
	}
}

// Total is the number of questions drawn at start.
func (s *Session) Total() int {
	return len(s.Questions)
}

// Finished reports whether every question has been answered.
func (s *Session) Finished() bool {
	return s.Position > s.Total()
}

// Answered is the number of questions already answered.
func (s *Session) Answered() int {
	return s.Position - 1
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (domain.Question, bool) {
	if s.Position < 1 || s.Finished() {
		return domain.Question{}, false
	}
	return s.Questions[s.Position-1], true
}

// Answer applies a submission: it either scores and advances, or rejects without any change.
func (s *Session) Answer(index int) (bool, error) {
	q, ok := s.Current()
	if !ok {
		return false, domain.ErrNoActiveSession
	}
	if index < 0 || index >= len(q.Options) {
		return false, domain.ErrInvalidAnswerIndex
	}
	correct := index == q.CorrectIndex
	if correct {
		s.Score++
	} else {
		s.WrongAnswers = append(s.WrongAnswers, q.ID)
	}
	s.Position++
	return correct, nil
}

// Clone copies the mutable parts of the session. Question snapshots are never mutated
// after the draw, so they are shared.
func (s *Session) Clone() *Session {
	c := *s
	if s.WrongAnswers != nil {
		c.WrongAnswers = append([]string(nil), s.WrongAnswers...)
	}
	return &c
}
