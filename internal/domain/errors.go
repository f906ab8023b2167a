package domain

import "errors"

var (
	// ErrNoQuestionsAvailable is returned when the bank has nothing for the requested level.
	ErrNoQuestionsAvailable = errors.New("no questions available for this level")
	// ErrNoActiveSession is returned when an identity has no quiz in progress.
	ErrNoActiveSession = errors.New("no active quiz")
	// ErrInvalidAnswerIndex indicates the submitted option index is outside the current question's options.
	ErrInvalidAnswerIndex = errors.New("invalid answer index")
	// ErrUnknownLevel indicates a start request named a level that is not configured.
	ErrUnknownLevel = errors.New("unknown level")
	// ErrSessionBusy is returned when concurrent updates to one session kept conflicting.
	ErrSessionBusy = errors.New("quiz session is busy, retry")
	// ErrInvalidQuestion indicates question content failed validation.
	ErrInvalidQuestion = errors.New("invalid question")
)
