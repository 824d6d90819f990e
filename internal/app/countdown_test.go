package app_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestCountdownAutoSkipsAndRearms(t *testing.T) {
	session := app.NewSession("s1", app.Timing{QuestionSeconds: 3})
	if _, err := session.Load(sampleQuestions(2)); err != nil {
		t.Fatalf("load: %v", err)
	}

	ticker := newManualTicker()
	countdown := app.NewCountdown(session, time.Second, func(time.Duration) app.Ticker { return ticker })

	done := make(chan error, 1)
	go func() { done <- countdown.Run(context.Background()) }()

	for i := 0; i < 3; i++ {
		ticker.fire()
	}
	waitFor(t, func() bool {
		v := session.View()
		return v.Index == 1 && v.TimeRemaining == 3
	})
	if answers := session.Answers(); answers[0] != nil {
		t.Fatalf("timeout must not record an answer")
	}
	waitFor(t, func() bool { return ticker.resets.Load() >= 2 })

	for i := 0; i < 3; i++ {
		ticker.fire()
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("countdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown did not stop after the session finished")
	}
	if state := session.View().State; state != domain.StateFinished {
		t.Fatalf("expected finished, got %s", state)
	}
}

func TestCountdownStopsOnClose(t *testing.T) {
	session := app.NewSession("s1", app.Timing{})
	if _, err := session.Load(sampleQuestions(2)); err != nil {
		t.Fatalf("load: %v", err)
	}

	ticker := newManualTicker()
	countdown := app.NewCountdown(session, time.Second, func(time.Duration) app.Ticker { return ticker })
	done := make(chan error, 1)
	go func() { done <- countdown.Run(context.Background()) }()

	session.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("countdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown did not stop on close")
	}
}

type manualTicker struct {
	ch     chan time.Time
	resets atomic.Int32
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Reset(time.Duration) { m.resets.Add(1) }
func (m *manualTicker) Stop()               {}

// fire blocks until the countdown has taken the tick.
func (m *manualTicker) fire() {
	m.ch <- time.Now()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
