package app

import (
	"context"
	"errors"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Ticker is the subset of *time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time   { return r.t.C }
func (r realTicker) Reset(d time.Duration) { r.t.Reset(d) }
func (r realTicker) Stop()                 { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Countdown drives Session.Tick once per interval while the session is ready.
// The ticker is re-armed whenever the current question changes so each question
// gets full seconds.
type Countdown struct {
	session   *Session
	interval  time.Duration
	newTicker TickerFactory
}

func NewCountdown(session *Session, interval time.Duration, newTicker TickerFactory) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	return &Countdown{session: session, interval: interval, newTicker: newTicker}
}

// Run blocks until the session leaves the ready state, is closed, or ctx is done.
func (c *Countdown) Run(ctx context.Context) error {
	updates, cancel := c.session.subscribe()
	defer cancel()

	ticker := c.newTicker(c.interval)
	defer ticker.Stop()

	// the subscription always starts with the current snapshot
	turn := -1
	view, ok := <-updates
	if !ok || c.observe(view, &turn, ticker) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case view, ok := <-updates:
			if !ok || c.observe(view, &turn, ticker) {
				return nil
			}
		case <-ticker.C():
			if _, err := c.session.tickAt(turn); err != nil && !errors.Is(err, domain.ErrSessionNotReady) {
				return err
			}
		}
	}
}

// observe re-arms the ticker on a new question and reports whether the
// countdown is over.
func (c *Countdown) observe(view domain.SessionView, turn *int, ticker Ticker) bool {
	switch view.State {
	case domain.StateFinished, domain.StateNoQuestions:
		return true
	case domain.StateReady:
		if view.Turn != *turn {
			*turn = view.Turn
			ticker.Reset(c.interval)
		}
	}
	return false
}
