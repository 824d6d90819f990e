package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/sqlite"
	"trivia-quiz-service/internal/tui"
)

// NewPlayCmd runs the quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath)
		},
	}
}

func runPlay(_ context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !tui.IsTTY() {
		return tui.ErrNotInteractive
	}

	dbPath := cfg.Play.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".trivia-quiz", "quiz.db")
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// the alternate screen owns stdout and stderr while the player runs
	logger := cfg.NewLogger(io.Discard)

	timing, tickInterval := quizTiming(cfg)
	tracker := app.NewHighScoreTracker(store, cfg.HighScore.Key, logger)
	return tui.Run(tui.New(newProvider(cfg), tracker, timing, tickInterval))
}
