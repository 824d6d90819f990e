package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/trivia"
)

// DefaultProxyAmount is the batch size of /quiz/ when amount is omitted.
const DefaultProxyAmount = 4

// QuestionSource fetches a normalized batch for an explicit query.
type QuestionSource interface {
	Questions(ctx context.Context, q trivia.Query) ([]domain.Question, error)
}

// API serves the REST rendition of the quiz flow.
type API struct {
	service *app.QuizService
	logger  *slog.Logger
}

func NewAPI(service *app.QuizService, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{service: service, logger: logger}
}

type landingResponse struct {
	Message   string `json:"message"`
	HighScore int    `json:"highScore"`
}

type highScoreResponse struct {
	HighScore int `json:"highScore"`
}

type selectRequest struct {
	Option string `json:"option"`
}

func (a *API) handleLanding(w http.ResponseWriter, r *http.Request) {
	high, err := a.service.HighScore(r.Context())
	if err != nil {
		a.logger.Error("read high score", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, landingResponse{Message: "Quiz API running", HighScore: high})
}

func (a *API) handleHighScore(w http.ResponseWriter, r *http.Request) {
	high, err := a.service.HighScore(r.Context())
	if err != nil {
		a.logger.Error("read high score", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, highScoreResponse{HighScore: high})
}

func (a *API) handleStart(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.StartAndLoad(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (a *API) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.View(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := a.service.Select(r.Context(), chi.URLParam(r, "sessionID"), req.Option)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleCommit(w http.ResponseWriter, r *http.Request) {
	a.navigate(w, r, a.service.Commit)
}

func (a *API) handleSkip(w http.ResponseWriter, r *http.Request) {
	a.navigate(w, r, a.service.Skip)
}

func (a *API) handlePrevious(w http.ResponseWriter, r *http.Request) {
	a.navigate(w, r, a.service.Previous)
}

func (a *API) navigate(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (domain.SessionView, error)) {
	view, err := op(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.service.Results(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) handleDiscard(w http.ResponseWriter, r *http.Request) {
	a.service.Discard(r.Context(), chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlayAgain(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.PlayAgain(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (a *API) writeErr(w http.ResponseWriter, err error) {
	if !isClientError(err) {
		a.logger.Error("quiz request failed", "error", err)
	}
	writeDomainError(w, err)
}

func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrSessionNotFound,
		domain.ErrSessionNotReady,
		domain.ErrSessionNotFinished,
		domain.ErrNoSelection,
		domain.ErrNoPreviousQuestion,
		domain.ErrInvalidOption,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type proxyError struct {
	Detail string `json:"detail"`
}

type proxyResponse struct {
	Questions []domain.Question `json:"questions"`
}

// handleTriviaProxy fetches and normalizes a batch for any client.
func handleTriviaProxy(source QuestionSource, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := proxyQuery(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, proxyError{Detail: err.Error()})
			return
		}

		questions, err := source.Questions(r.Context(), q)
		switch {
		case errors.Is(err, domain.ErrNoQuestions), errors.Is(err, domain.ErrUpstreamRejected):
			writeJSON(w, http.StatusBadRequest, proxyError{Detail: "No questions found."})
		case err != nil:
			logger.Error("trivia proxy failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, proxyError{Detail: fmt.Sprintf("Error fetching trivia: %v", err)})
		default:
			writeJSON(w, http.StatusOK, proxyResponse{Questions: questions})
		}
	}
}

func proxyQuery(r *http.Request) (trivia.Query, error) {
	params := r.URL.Query()
	q := trivia.Query{
		Amount:     DefaultProxyAmount,
		Type:       trivia.TypeMultiple,
		Difficulty: params.Get("difficulty"),
	}
	if raw := params.Get("amount"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return q, fmt.Errorf("invalid amount %q", raw)
		}
		q.Amount = n
	}
	if raw := params.Get("category"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid category %q", raw)
		}
		q.Category = n
	}
	return q, nil
}
