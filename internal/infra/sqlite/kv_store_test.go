package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"trivia-quiz-service/internal/app"
)

func TestKVStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "quiz.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok, err := store.Get(ctx, app.HighScoreKey); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, app.HighScoreKey, []byte("2")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, app.HighScoreKey, []byte("4")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	high, err := app.NewHighScoreTracker(reopened, "", nil).Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if high != 4 {
		t.Fatalf("expected persisted 4, got %d", high)
	}
}
