package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type landingPayload struct {
	HighScore int `json:"highScore"`
}

// ServeWS upgrades the request and runs one player's quiz over the socket.
// A quiz starts on connect; restart returns to the landing screen and
// playAgain (or start) begins a fresh quiz.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	player := &wsPlayer{h: h, ctx: ctx, send: send, writerDone: writerDone}
	player.attach()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		player.dispatch(inbound)
	}

	player.detach()
	close(send)
	<-writerDone
}

// wsPlayer tracks the session currently attached to one connection.
type wsPlayer struct {
	h          *WSHandler
	ctx        context.Context
	send       chan outboundMessage[any]
	writerDone chan struct{}

	sessionID string
	cancel    func()
	forwarded chan struct{}
}

func (p *wsPlayer) emit(msg outboundMessage[any]) bool {
	select {
	case p.send <- msg:
		return true
	case <-p.writerDone:
		return false
	}
}

func (p *wsPlayer) emitError(msg string) {
	p.emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}})
}

// attach starts a session, forwards its states and loads its questions.
func (p *wsPlayer) attach() {
	session, err := p.h.service.Start(p.ctx)
	if err != nil {
		p.emitError(err.Error())
		return
	}
	updates, cancel, err := p.h.service.Subscribe(p.ctx, session.ID())
	if err != nil {
		p.emitError(err.Error())
		return
	}

	p.sessionID = session.ID()
	p.cancel = cancel
	p.forwarded = make(chan struct{})
	go p.forward(session.ID(), updates, p.forwarded)

	if _, err := p.h.service.Load(p.ctx, session.ID()); err != nil {
		p.emitError(err.Error())
	}
}

func (p *wsPlayer) forward(sessionID string, updates <-chan domain.SessionView, done chan struct{}) {
	defer close(done)
	for view := range updates {
		if !p.emit(outboundMessage[any]{Type: "state", Payload: view}) {
			return
		}
		if view.State != domain.StateFinished {
			continue
		}
		results, err := p.h.service.Results(p.ctx, sessionID)
		if err != nil {
			p.h.logger.Error("quiz results failed", "session", sessionID, "error", err)
			p.emitError("could not compute results")
			continue
		}
		if !p.emit(outboundMessage[any]{Type: "results", Payload: results}) {
			return
		}
	}
}

// detach drops the current session and waits for its forwarder.
func (p *wsPlayer) detach() {
	if p.sessionID == "" {
		return
	}
	p.cancel()
	p.h.service.Discard(p.ctx, p.sessionID)
	<-p.forwarded
	p.sessionID, p.cancel, p.forwarded = "", nil, nil
}

func (p *wsPlayer) dispatch(inbound inboundMessage) {
	switch inbound.Type {
	case "restart":
		p.detach()
		high, err := p.h.service.HighScore(p.ctx)
		if err != nil {
			p.h.logger.Error("read high score", "error", err)
		}
		p.emit(outboundMessage[any]{Type: "landing", Payload: landingPayload{HighScore: high}})
		return
	case "start", "playAgain":
		p.detach()
		p.attach()
		return
	}

	if p.sessionID == "" {
		p.emitError("no active quiz")
		return
	}

	var err error
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			p.emitError("invalid select payload")
			return
		}
		_, err = p.h.service.Select(p.ctx, p.sessionID, payload.Option)
		if errors.Is(err, domain.ErrInvalidOption) {
			// unknown options are ignored like clicks outside the option list
			return
		}
	case "next":
		_, err = p.h.service.Commit(p.ctx, p.sessionID)
	case "skip":
		_, err = p.h.service.Skip(p.ctx, p.sessionID)
	case "previous":
		_, err = p.h.service.Previous(p.ctx, p.sessionID)
	default:
		p.emitError("unknown message type")
		return
	}
	if err != nil {
		p.emitError(err.Error())
	}
}
