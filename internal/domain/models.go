package domain

import (
	"fmt"
	"time"
)

// Level is a proficiency tag applied to questions and results.
type Level string

// LevelFull requests a mix across every level.
const LevelFull Level = "full"

// IsFull reports whether l asks for the mixed quiz. An empty level counts as full.
func (l Level) IsFull() bool {
	return l == "" || l == LevelFull
}

// LevelInfo describes a configured level.
type LevelInfo struct {
	Code        Level  `json:"level" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

// Player identifies the quiz-taker as resolved by the auth collaborator.
type Player struct {
	ID   string
	Name string
}

// Question models a multiple-choice question with a 0-based correct option index.
type Question struct {
	ID           string   `json:"id"`
	Level        Level    `json:"level"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Validate checks that the question has at least two options and a usable correct index.
func (q Question) Validate() error {
	if q.Level == "" {
		return fmt.Errorf("%w: missing level", ErrInvalidQuestion)
	}
	if q.Text == "" {
		return fmt.Errorf("%w: missing text", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: need at least 2 options, got %d", ErrInvalidQuestion, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: correct index %d out of range", ErrInvalidQuestion, q.CorrectIndex)
	}
	return nil
}

// Clone returns a copy that shares no memory with q.
func (q Question) Clone() Question {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	q.Options = opts
	return q
}

// QuizResult is the immutable record of a finished attempt.
type QuizResult struct {
	ID               string    `json:"id"`
	Identity         string    `json:"identity"`
	Name             string    `json:"name"`
	Level            Level     `json:"level"`
	RequestedLevel   Level     `json:"requestedLevel"`
	Score            int       `json:"score"`
	Total            int       `json:"total"`
	Percentage       float64   `json:"percentage"`
	TimeTakenSeconds int       `json:"timeTakenSeconds"`
	WrongAnswers     []string  `json:"wrongAnswers,omitempty"`
	CompletedAt      time.Time `json:"completedAt"`
}

// LeaderboardEntry is a ranked, display-ready view of a result.
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	Medal            string    `json:"medal,omitempty"`
	Name             string    `json:"name"`
	Level            Level     `json:"level"`
	Percentage       float64   `json:"percentage"`
	TimeTakenSeconds int       `json:"time_taken"`
	Date             time.Time `json:"date"`
}

// RanksBefore reports leaderboard order: percentage descending,
// then faster time, then earlier completion.
func RanksBefore(a, b QuizResult) bool {
	if a.Percentage != b.Percentage {
		return a.Percentage > b.Percentage
	}
	if a.TimeTakenSeconds != b.TimeTakenSeconds {
		return a.TimeTakenSeconds < b.TimeTakenSeconds
	}
	return a.CompletedAt.Before(b.CompletedAt)
}
