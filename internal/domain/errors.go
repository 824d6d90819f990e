package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session does not exist (or was discarded).
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotReady is returned for quiz actions outside the ready state.
	ErrSessionNotReady = errors.New("quiz session not ready")
	// ErrSessionNotFinished is returned when results are requested too early.
	ErrSessionNotFinished = errors.New("quiz session not finished")
	// ErrFetchFailed wraps transport, status and decoding failures of the question provider.
	ErrFetchFailed = errors.New("fetch questions failed")
	// ErrNoQuestions indicates the provider returned an empty batch.
	ErrNoQuestions = errors.New("no questions available")
	// ErrUpstreamRejected marks a well-formed provider reply carrying a non-success response code.
	ErrUpstreamRejected = errors.New("question provider rejected the request")
	// ErrNoSelection is returned when committing without a highlighted option.
	ErrNoSelection = errors.New("no option selected")
	// ErrNoPreviousQuestion is returned when going back from the first question.
	ErrNoPreviousQuestion = errors.New("already at first question")
	// ErrInvalidOption indicates a selected option that the active question does not offer.
	ErrInvalidOption = errors.New("option not found")
)
