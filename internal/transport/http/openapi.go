package http

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"trivia-quiz-service/internal/domain"
)

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type selectOperation struct {
	SessionID string `path:"sessionID"`
	Option    string `json:"option"`
}

type proxyParams struct {
	Amount     int    `query:"amount"`
	Category   int    `query:"category"`
	Difficulty string `query:"difficulty"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Trivia Quiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Timed multiple-choice trivia quiz backed by Open Trivia DB.")

	landing, _ := r.NewOperationContext(http.MethodGet, "/")
	landing.SetSummary("Landing")
	landing.AddRespStructure(landingResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(landing)

	healthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	healthz.SetSummary("Health check")
	healthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK), openapi.WithContentType("text/plain"))
	_ = r.AddOperation(healthz)

	proxy, _ := r.NewOperationContext(http.MethodGet, "/quiz/")
	proxy.SetSummary("Fetch trivia questions")
	proxy.SetDescription("Fetches a batch from Open Trivia DB with decoded text and shuffled options.")
	proxy.AddReqStructure(proxyParams{})
	proxy.AddRespStructure(proxyResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	proxy.AddRespStructure(proxyError{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	proxy.AddRespStructure(proxyError{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(proxy)

	highScore, _ := r.NewOperationContext(http.MethodGet, "/api/highscore")
	highScore.SetSummary("Best score")
	highScore.AddRespStructure(highScoreResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(highScore)

	start, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	start.SetSummary("Start a quiz")
	start.SetDescription("Creates a session and loads its questions. A failed fetch yields the no_questions state.")
	start.AddRespStructure(domain.SessionView{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(start)

	view, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}")
	view.SetSummary("Session state")
	view.AddReqStructure(sessionPath{})
	view.AddRespStructure(domain.SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	view.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(view)

	discard, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{sessionID}")
	discard.SetSummary("Discard a session")
	discard.AddReqStructure(sessionPath{})
	discard.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(discard)

	sel, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/select")
	sel.SetSummary("Highlight an option")
	sel.AddReqStructure(selectOperation{})
	sel.AddRespStructure(domain.SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	sel.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	sel.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	sel.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(sel)

	for _, nav := range []struct{ path, summary string }{
		{"/api/sessions/{sessionID}/next", "Commit the highlighted option"},
		{"/api/sessions/{sessionID}/skip", "Skip the active question"},
		{"/api/sessions/{sessionID}/previous", "Go back one question"},
	} {
		op, _ := r.NewOperationContext(http.MethodPost, nav.path)
		op.SetSummary(nav.summary)
		op.AddReqStructure(sessionPath{})
		op.AddRespStructure(domain.SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
		op.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
		op.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
		_ = r.AddOperation(op)
	}

	results, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/results")
	results.SetSummary("Final results")
	results.SetDescription("Scores a finished session and updates the high score on first read.")
	results.AddReqStructure(sessionPath{})
	results.AddRespStructure(domain.Results{}, openapi.WithHTTPStatus(http.StatusOK))
	results.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	results.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(results)

	again, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/play-again")
	again.SetSummary("Play again")
	again.AddReqStructure(sessionPath{})
	again.AddRespStructure(domain.SessionView{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(again)

	ws, _ := r.NewOperationContext(http.MethodGet, "/ws")
	ws.SetSummary("Quiz over WebSocket")
	ws.SetDescription("Starts a quiz on connect and streams state, results and landing messages.")
	ws.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols), openapi.WithContentType("text/plain"))
	_ = r.AddOperation(ws)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
