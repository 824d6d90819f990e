package cli

import (
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/trivia"
)

func newProvider(cfg config.Config) *trivia.Provider {
	client := trivia.NewClient(cfg.Trivia.BaseURL, config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second))
	return trivia.NewProvider(client, trivia.Query{
		Amount:     cfg.Trivia.Amount,
		Type:       cfg.Trivia.Type,
		Category:   cfg.Trivia.Category,
		Difficulty: cfg.Trivia.Difficulty,
	}, nil)
}

func quizTiming(cfg config.Config) (app.Timing, time.Duration) {
	timing := app.Timing{
		QuestionSeconds: cfg.Quiz.QuestionSeconds,
		WarningSeconds:  cfg.Quiz.WarningSeconds,
	}
	return timing, config.TTLDuration(cfg.Quiz.TickInterval, time.Second)
}
