package app_test

import (
	"context"
	"errors"
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestHighScoreWriteOnImprove(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		stored       string
		score        int
		wantHigh     int
		wantImproved bool
		wantStored   string
	}{
		{name: "nothing stored", stored: "", score: 2, wantHigh: 2, wantImproved: true, wantStored: "2"},
		{name: "beats stored", stored: "2", score: 3, wantHigh: 3, wantImproved: true, wantStored: "3"},
		{name: "ties stored", stored: "3", score: 3, wantHigh: 3, wantImproved: false, wantStored: "3"},
		{name: "below stored", stored: "4", score: 1, wantHigh: 4, wantImproved: false, wantStored: "4"},
		{name: "zero with nothing stored", stored: "", score: 0, wantHigh: 0, wantImproved: false, wantStored: ""},
		{name: "unreadable stored value", stored: "abc", score: 1, wantHigh: 1, wantImproved: true, wantStored: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewKVStore()
			if tt.stored != "" {
				_ = store.Set(ctx, app.HighScoreKey, []byte(tt.stored))
			}
			tracker := app.NewHighScoreTracker(store, "", nil)

			high, improved, err := tracker.Record(ctx, tt.score)
			if err != nil {
				t.Fatalf("record: %v", err)
			}
			if high != tt.wantHigh || improved != tt.wantImproved {
				t.Errorf("record = (%d, %v), want (%d, %v)", high, improved, tt.wantHigh, tt.wantImproved)
			}
			raw, _, _ := store.Get(ctx, app.HighScoreKey)
			if string(raw) != tt.wantStored {
				t.Errorf("stored = %q, want %q", raw, tt.wantStored)
			}
		})
	}
}

func TestHighScoreStoreErrors(t *testing.T) {
	tracker := app.NewHighScoreTracker(failingStore{}, "", nil)
	if _, _, err := tracker.Record(context.Background(), 1); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestBuildResultsReview(t *testing.T) {
	london, paris := "London", "Paris"
	fs := domain.FinishedSession{
		Score:     1,
		Total:     3,
		Answers:   []*string{&paris, &london, nil},
		Questions: sampleQuestions(3),
	}

	results := app.BuildResults(fs, 5, false)
	if results.Score != 1 || results.Total != 3 || results.HighScore != 5 || results.NewHighScore {
		t.Fatalf("unexpected summary %+v", results)
	}
	if len(results.Review) != 3 {
		t.Fatalf("expected 3 review items, got %d", len(results.Review))
	}

	first, second, third := results.Review[0], results.Review[1], results.Review[2]
	if !first.Correct || first.CorrectAnswer != "" {
		t.Fatalf("correct answer must not repeat the solution: %+v", first)
	}
	if second.Correct || second.CorrectAnswer != "Paris" || *second.Answer != "London" {
		t.Fatalf("wrong answer must show the solution: %+v", second)
	}
	if third.Answered || third.Answer != nil || third.Correct || third.CorrectAnswer != "Paris" {
		t.Fatalf("unanswered question must be marked: %+v", third)
	}
}

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errStoreDown
}
