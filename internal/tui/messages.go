package tui

import "trivia-quiz-service/internal/domain"

type highScoreMsg struct {
	high int
	err  error
}

type questionsMsg struct {
	questions []domain.Question
	err       error
}

// tickMsg carries the timer generation it was scheduled for; ticks from an
// older generation are ignored.
type tickMsg struct {
	gen int
}

type resultsMsg struct {
	results domain.Results
	err     error
}
