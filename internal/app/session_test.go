package app_test

import (
	"errors"
	"math/rand"
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestCommitCorrectsScoreWhenRevisited(t *testing.T) {
	session := readySession(t, sampleQuestions(2))

	mustSelect(t, session, "London")
	mustCommit(t, session)
	assertScore(t, session, 0)

	mustPrevious(t, session)
	mustSelect(t, session, "Paris")
	mustCommit(t, session)
	assertScore(t, session, 1)

	mustPrevious(t, session)
	mustSelect(t, session, "London")
	mustCommit(t, session)
	assertScore(t, session, 0)

	// same -> same leaves the score untouched
	mustPrevious(t, session)
	mustSelect(t, session, "London")
	mustCommit(t, session)
	assertScore(t, session, 0)
}

func TestCorrectAnswerRecommittedKeepsScore(t *testing.T) {
	session := readySession(t, sampleQuestions(2))

	mustSelect(t, session, "Paris")
	mustCommit(t, session)
	assertScore(t, session, 1)

	mustPrevious(t, session)
	mustCommit(t, session) // highlight restored to "Paris"
	assertScore(t, session, 1)
}

func TestSkipNeverMutatesAnswers(t *testing.T) {
	session := readySession(t, sampleQuestions(3))

	mustSelect(t, session, "Paris")
	mustCommit(t, session)
	mustPrevious(t, session)

	// highlight a different option then skip: the committed answer stays
	mustSelect(t, session, "Rome")
	if _, err := session.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}

	answers := session.Answers()
	if answers[0] == nil || *answers[0] != "Paris" {
		t.Fatalf("expected committed answer Paris, got %v", answers[0])
	}
	if answers[1] != nil {
		t.Fatalf("expected second slot untouched, got %q", *answers[1])
	}
	assertScore(t, session, 1)
	if got := session.View().Index; got != 1 {
		t.Fatalf("expected index 1 after skip, got %d", got)
	}
}

func TestTickToZeroMatchesSkip(t *testing.T) {
	timing := app.Timing{QuestionSeconds: 5}
	skipped := app.NewSession("skip", timing)
	ticked := app.NewSession("tick", timing)
	for _, s := range []*app.Session{skipped, ticked} {
		if _, err := s.Load(sampleQuestions(3)); err != nil {
			t.Fatalf("load: %v", err)
		}
		mustSelect(t, s, "Paris")
		mustCommit(t, s)
		mustSelect(t, s, "Rome")
	}

	if _, err := skipped.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	for i := 0; i < 4; i++ {
		view, err := ticked.Tick()
		if err != nil {
			t.Fatalf("tick: %v", err)
		}
		if view.Index != 1 || view.TimeRemaining != 4-i {
			t.Fatalf("tick %d: unexpected view index=%d remaining=%d", i, view.Index, view.TimeRemaining)
		}
	}
	last, err := ticked.Tick()
	if err != nil {
		t.Fatalf("tick: %v", err)
	}

	want := skipped.View()
	if last.Index != want.Index || last.Score != want.Score || last.TimeRemaining != want.TimeRemaining {
		t.Fatalf("tick-out view %+v differs from skip view %+v", last, want)
	}
	if last.TimeRemaining != 5 {
		t.Fatalf("expected countdown reset to 5, got %d", last.TimeRemaining)
	}
	if !equalAnswers(skipped.Answers(), ticked.Answers()) {
		t.Fatalf("answers differ after timeout and skip")
	}
}

func TestPreviousRestoresCommittedHighlight(t *testing.T) {
	session := readySession(t, sampleQuestions(3))

	mustSelect(t, session, "Berlin")
	mustCommit(t, session)
	if _, err := session.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}

	view := mustPrevious(t, session)
	if view.Selected != nil {
		t.Fatalf("expected no highlight on unanswered question, got %q", *view.Selected)
	}
	if view.CanCommit {
		t.Fatalf("commit must be disabled without a highlight")
	}

	view = mustPrevious(t, session)
	if view.Selected == nil || *view.Selected != "Berlin" {
		t.Fatalf("expected restored highlight Berlin, got %v", view.Selected)
	}
	if view.CanPrevious {
		t.Fatalf("previous must be unavailable on the first question")
	}
}

func TestIndexChangeResetsCountdown(t *testing.T) {
	session := readySession(t, sampleQuestions(2))
	for i := 0; i < 7; i++ {
		if _, err := session.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	view := session.View()
	if view.TimeRemaining != app.DefaultQuestionSeconds-7 {
		t.Fatalf("expected %d seconds left, got %d", app.DefaultQuestionSeconds-7, view.TimeRemaining)
	}

	view, _ = session.Skip()
	if view.TimeRemaining != app.DefaultQuestionSeconds {
		t.Fatalf("expected reset countdown, got %d", view.TimeRemaining)
	}
	view = mustPrevious(t, session)
	if view.TimeRemaining != app.DefaultQuestionSeconds {
		t.Fatalf("expected reset countdown after previous, got %d", view.TimeRemaining)
	}
}

func TestWarningThreshold(t *testing.T) {
	session := readySession(t, sampleQuestions(1))
	for i := 0; i < app.DefaultQuestionSeconds-app.DefaultWarningSeconds-1; i++ {
		view, _ := session.Tick()
		if view.Warning {
			t.Fatalf("unexpected warning with %d seconds left", view.TimeRemaining)
		}
	}
	view, _ := session.Tick()
	if view.TimeRemaining != app.DefaultWarningSeconds || !view.Warning {
		t.Fatalf("expected warning at %d seconds, got %+v", app.DefaultWarningSeconds, view)
	}
}

func TestInvalidNavigationIsRejected(t *testing.T) {
	session := readySession(t, sampleQuestions(2))

	if _, err := session.Commit(); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if _, err := session.Previous(); !errors.Is(err, domain.ErrNoPreviousQuestion) {
		t.Fatalf("expected ErrNoPreviousQuestion, got %v", err)
	}
	view, err := session.SelectOption("Atlantis")
	if !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if view.Selected != nil || view.Index != 0 {
		t.Fatalf("rejected actions must not change state, got %+v", view)
	}
}

func TestFinishProducesSnapshotOnce(t *testing.T) {
	questions := sampleQuestions(5)
	session := readySession(t, questions)

	picks := []string{"Paris", "London", "Paris", "Paris", ""}
	for _, pick := range picks {
		if pick == "" {
			if _, err := session.Skip(); err != nil {
				t.Fatalf("skip: %v", err)
			}
			continue
		}
		mustSelect(t, session, pick)
		mustCommit(t, session)
	}

	view := session.View()
	if view.State != domain.StateFinished {
		t.Fatalf("expected finished, got %s", view.State)
	}
	fs, ok := session.Finished()
	if !ok {
		t.Fatalf("expected finished snapshot")
	}
	if fs.Score != 3 || fs.Total != 5 {
		t.Fatalf("expected 3/5, got %d/%d", fs.Score, fs.Total)
	}
	if fs.Answers[4] != nil {
		t.Fatalf("expected skipped last question to be unanswered")
	}
	if _, err := session.Skip(); !errors.Is(err, domain.ErrSessionNotReady) {
		t.Fatalf("expected no actions after finish, got %v", err)
	}
}

func TestCommitOnLastQuestionFinishes(t *testing.T) {
	session := readySession(t, sampleQuestions(1))
	view := session.View()
	if view.CommitLabel != "Finish" || !view.CanSkip {
		t.Fatalf("expected Finish label and skip on last question, got %+v", view)
	}
	mustSelect(t, session, "Paris")
	view = mustCommit(t, session)
	if view.State != domain.StateFinished || view.Finished == nil || view.Finished.Score != 1 {
		t.Fatalf("expected finished 1/1, got %+v", view)
	}
}

func TestEmptyBatchHasNoActions(t *testing.T) {
	session := app.NewSession("empty", app.Timing{})
	view, err := session.Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if view.State != domain.StateNoQuestions {
		t.Fatalf("expected no_questions, got %s", view.State)
	}
	if view.Question != nil || view.CanSkip || view.CanCommit || view.CanPrevious {
		t.Fatalf("expected no quiz actions, got %+v", view)
	}
	for name, op := range map[string]func() (domain.SessionView, error){
		"select":   func() (domain.SessionView, error) { return session.SelectOption("Paris") },
		"commit":   session.Commit,
		"skip":     session.Skip,
		"previous": session.Previous,
		"tick":     session.Tick,
	} {
		if _, err := op(); !errors.Is(err, domain.ErrSessionNotReady) {
			t.Fatalf("%s: expected ErrSessionNotReady, got %v", name, err)
		}
	}
}

func TestRandomWalkKeepsScoreConsistent(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		session := readySession(t, sampleQuestions(5))
		for step := 0; step < 200 && session.View().State == domain.StateReady; step++ {
			view := session.View()
			switch rnd.Intn(5) {
			case 0:
				_, _ = session.SelectOption(view.Question.Options[rnd.Intn(len(view.Question.Options))])
			case 1:
				_, _ = session.Commit()
			case 2:
				_, _ = session.Previous()
			case 3:
				if rnd.Intn(4) == 0 {
					_, _ = session.Skip()
				}
			case 4:
				_, _ = session.Tick()
			}
			if got, want := session.Score(), session.RescanScore(); got != want {
				t.Fatalf("run %d step %d: score %d != rescan %d", run, step, got, want)
			}
		}
	}
}

func readySession(t *testing.T, questions []domain.Question) *app.Session {
	t.Helper()
	session := app.NewSession("s1", app.Timing{})
	view, err := session.Load(questions)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if view.State != domain.StateReady {
		t.Fatalf("expected ready, got %s", view.State)
	}
	return session
}

func mustSelect(t *testing.T, s *app.Session, opt string) domain.SessionView {
	t.Helper()
	view, err := s.SelectOption(opt)
	if err != nil {
		t.Fatalf("select %q: %v", opt, err)
	}
	return view
}

func mustCommit(t *testing.T, s *app.Session) domain.SessionView {
	t.Helper()
	view, err := s.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return view
}

func mustPrevious(t *testing.T, s *app.Session) domain.SessionView {
	t.Helper()
	view, err := s.Previous()
	if err != nil {
		t.Fatalf("previous: %v", err)
	}
	return view
}

func assertScore(t *testing.T, s *app.Session, want int) {
	t.Helper()
	if got := s.Score(); got != want {
		t.Fatalf("expected score %d, got %d", want, got)
	}
	if got := s.RescanScore(); got != want {
		t.Fatalf("expected rescan score %d, got %d", want, got)
	}
}

func equalAnswers(a, b []*string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if (a[i] == nil) != (b[i] == nil) {
			return false
		}
		if a[i] != nil && *a[i] != *b[i] {
			return false
		}
	}
	return true
}

// sampleQuestions returns n capital-city questions whose answer is always Paris.
func sampleQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:            i + 1,
			Text:          "What is the capital of France?",
			Options:       []string{"London", "Paris", "Berlin", "Rome"},
			CorrectAnswer: "Paris",
		}
	}
	return questions
}
