package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/swaggest/swgui/v5emb"

	"trivia-quiz-service/internal/app"
)

// NewRouter wires every HTTP surface of the quiz: landing, REST quiz flow,
// WebSocket quiz view, trivia proxy and API docs.
func NewRouter(service *app.QuizService, questions QuestionSource, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	api := NewAPI(service, logger)
	ws := NewWSHandler(service, logger)

	r.Get("/", api.handleLanding)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/quiz", handleTriviaProxy(questions, logger))
	r.Get("/quiz/", handleTriviaProxy(questions, logger))
	r.Get("/ws", ws.ServeWS)
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Trivia Quiz API", "/openapi.json", "/docs"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/highscore", api.handleHighScore)
		r.Post("/sessions", api.handleStart)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", api.handleView)
			r.Delete("/", api.handleDiscard)
			r.Post("/select", api.handleSelect)
			r.Post("/next", api.handleCommit)
			r.Post("/skip", api.handleSkip)
			r.Post("/previous", api.handlePrevious)
			r.Post("/play-again", api.handlePlayAgain)
			r.Get("/results", api.handleResults)
		})
	})

	return r
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
