package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

type screen int

const (
	screenLanding screen = iota
	screenLoading
	screenQuiz
	screenNoQuestions
	screenResults
)

// Model is the Bubble Tea model of the terminal player. It drives an
// app.Session directly and runs the countdown with tea.Tick.
type Model struct {
	provider     app.QuestionProvider
	highScores   *app.HighScoreTracker
	timing       app.Timing
	tickInterval time.Duration

	screen    screen
	session   *app.Session
	view      domain.SessionView
	results   domain.Results
	highScore int
	gen       int
	turn      int
	err       error

	spinner spinner.Model
}

// New builds the player. tickInterval defaults to one second.
func New(provider app.QuestionProvider, highScores *app.HighScoreTracker, timing app.Timing, tickInterval time.Duration) Model {
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = warningStyle

	return Model{
		provider:     provider,
		highScores:   highScores,
		timing:       timing,
		tickInterval: tickInterval,
		spinner:      sp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadHighScore()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case highScoreMsg:
		m.highScore = msg.high
		m.err = msg.err
		return m, nil

	case questionsMsg:
		return m.handleQuestions(msg)

	case tickMsg:
		if m.screen != screenQuiz || msg.gen != m.gen {
			return m, nil
		}
		view, err := m.session.Tick()
		if err != nil {
			return m, nil
		}
		gen := m.gen
		var cmd tea.Cmd
		m, cmd = m.apply(view)
		if m.gen == gen {
			cmd = m.tick()
		}
		return m, cmd

	case resultsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.results = msg.results
			m.highScore = msg.results.HighScore
		}
		m.screen = screenResults
		return m, nil

	case spinner.TickMsg:
		if m.screen != screenLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.screen {
	case screenLanding:
		switch key {
		case "enter", "s":
			return m.start()
		case "q", "esc":
			return m, tea.Quit
		}

	case screenQuiz:
		return m.handleQuizKey(key)

	case screenNoQuestions, screenResults:
		switch key {
		case "r":
			return m.restart()
		case "a", "enter":
			return m.start()
		case "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleQuizKey(key string) (tea.Model, tea.Cmd) {
	var (
		view domain.SessionView
		err  error
	)
	switch key {
	case "1", "2", "3", "4":
		idx := int(key[0] - '1')
		if m.view.Question == nil || idx >= len(m.view.Question.Options) {
			return m, nil
		}
		view, err = m.session.SelectOption(m.view.Question.Options[idx])
	case "up", "k":
		view, err = m.session.SelectOption(m.neighbour(-1))
	case "down", "j":
		view, err = m.session.SelectOption(m.neighbour(1))
	case "enter", "n":
		view, err = m.session.Commit()
	case "s", "right":
		view, err = m.session.Skip()
	case "p", "left":
		view, err = m.session.Previous()
	case "r":
		return m.restart()
	default:
		return m, nil
	}
	if err != nil {
		// disabled actions are no-ops
		return m, nil
	}
	return m.apply(view)
}

// neighbour returns the option next to the highlight, wrapping around.
func (m Model) neighbour(step int) string {
	opts := m.view.Question.Options
	cur := -1
	if m.view.Selected != nil {
		for i, o := range opts {
			if o == *m.view.Selected {
				cur = i
			}
		}
	}
	if cur < 0 {
		if step > 0 {
			return opts[0]
		}
		return opts[len(opts)-1]
	}
	return opts[(cur+step+len(opts))%len(opts)]
}

// apply stores a new view, re-arms the timer on question change and records
// results once the quiz is over.
func (m Model) apply(view domain.SessionView) (Model, tea.Cmd) {
	m.view = view
	switch view.State {
	case domain.StateFinished:
		m.gen++
		fs, _ := m.session.Finished()
		return m, m.recordResults(fs)
	case domain.StateReady:
		if view.Turn != m.turn {
			m.turn = view.Turn
			m.gen++
			return m, m.tick()
		}
	}
	return m, nil
}

func (m Model) start() (tea.Model, tea.Cmd) {
	m.gen++
	m.err = nil
	m.results = domain.Results{}
	m.session = app.NewSession(uuid.NewString(), m.timing)
	m.view = m.session.View()
	m.screen = screenLoading
	return m, tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) restart() (tea.Model, tea.Cmd) {
	m.gen++
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
	m.screen = screenLanding
	return m, m.loadHighScore()
}

func (m Model) handleQuestions(msg questionsMsg) (tea.Model, tea.Cmd) {
	if m.screen != screenLoading || m.session == nil {
		return m, nil
	}
	if msg.err != nil {
		if !errors.Is(msg.err, domain.ErrNoQuestions) {
			m.err = msg.err
		}
		m.view = m.session.Fail()
		m.screen = screenNoQuestions
		return m, nil
	}

	view, err := m.session.Load(msg.questions)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.view = view
	if view.State != domain.StateReady {
		m.screen = screenNoQuestions
		return m, nil
	}
	m.screen = screenQuiz
	m.turn = view.Turn
	m.gen++
	return m, m.tick()
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) fetch() tea.Cmd {
	provider := m.provider
	return func() tea.Msg {
		questions, err := provider.FetchQuestions(context.Background())
		return questionsMsg{questions: questions, err: err}
	}
}

func (m Model) loadHighScore() tea.Cmd {
	tracker := m.highScores
	return func() tea.Msg {
		high, err := tracker.Current(context.Background())
		return highScoreMsg{high: high, err: err}
	}
}

func (m Model) recordResults(fs domain.FinishedSession) tea.Cmd {
	tracker := m.highScores
	return func() tea.Msg {
		high, improved, err := tracker.Record(context.Background(), fs.Score)
		if err != nil {
			return resultsMsg{err: err}
		}
		return resultsMsg{results: app.BuildResults(fs, high, improved)}
	}
}
