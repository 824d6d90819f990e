package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"trivia-quiz-service/internal/domain"
)

// HighScoreKey is the key the high score is persisted under.
const HighScoreKey = "highScore"

// KVStore abstracts the persisted key-value store (memory, Redis, Postgres, SQLite).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// HighScoreTracker keeps a monotonically non-decreasing best score in a KVStore.
type HighScoreTracker struct {
	store  KVStore
	key    string
	logger *slog.Logger
}

func NewHighScoreTracker(store KVStore, key string, logger *slog.Logger) *HighScoreTracker {
	if key == "" {
		key = HighScoreKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HighScoreTracker{store: store, key: key, logger: logger}
}

// Current returns the stored high score, 0 when nothing was stored yet.
func (t *HighScoreTracker) Current(ctx context.Context) (int, error) {
	raw, ok, err := t.store.Get(ctx, t.key)
	if err != nil {
		return 0, fmt.Errorf("read high score: %w", err)
	}
	if !ok {
		return 0, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || value < 0 {
		t.logger.Warn("ignoring unreadable high score", "key", t.key, "value", string(raw))
		return 0, nil
	}
	return value, nil
}

// Record stores score when it beats the stored value and returns the high score to display.
func (t *HighScoreTracker) Record(ctx context.Context, score int) (int, bool, error) {
	current, err := t.Current(ctx)
	if err != nil {
		return 0, false, err
	}
	if score <= current {
		return current, false, nil
	}
	if err := t.store.Set(ctx, t.key, []byte(strconv.Itoa(score))); err != nil {
		return current, false, fmt.Errorf("write high score: %w", err)
	}
	return score, true, nil
}

// BuildResults scores every question of a finished session.
func BuildResults(fs domain.FinishedSession, highScore int, improved bool) domain.Results {
	review := make([]domain.ReviewItem, 0, len(fs.Questions))
	for i, q := range fs.Questions {
		var answer *string
		if i < len(fs.Answers) {
			answer = copyAnswer(fs.Answers[i])
		}
		item := domain.ReviewItem{
			Index:    i,
			Question: q.Text,
			Answer:   answer,
			Answered: answer != nil,
			Correct:  answer != nil && *answer == q.CorrectAnswer,
		}
		if !item.Correct {
			item.CorrectAnswer = q.CorrectAnswer
		}
		review = append(review, item)
	}

	return domain.Results{
		Score:        fs.Score,
		Total:        fs.Total,
		HighScore:    highScore,
		NewHighScore: improved,
		Review:       review,
	}
}
