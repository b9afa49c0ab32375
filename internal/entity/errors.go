package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrInterviewComplete   = errors.New("all questions are already answered")
	ErrInterviewIncomplete = errors.New("interview is not complete yet")
	ErrNoPendingQuestion   = errors.New("no question has been asked for the current slot")
	ErrNothingToUndo       = errors.New("there is no answer to go back to")
	ErrNoFollowUpQuestion  = errors.New("session report has no follow-up question")
	ErrConcurrentUpdate    = errors.New("session was changed by another request")

	// Answer errors
	ErrEmptyAnswer = errors.New("answer is empty")

	// Generation errors
	ErrEmptyGeneration = errors.New("generator returned empty text")
	ErrMalformedOutput = errors.New("generator returned malformed structured output")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
