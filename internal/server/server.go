// Package server exposes quizzes, answer checking and attempt grading over
// HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizzer/internal/store"
)

// Config captures the settings for the HTTP server.
type Config struct {
	Addr       string
	QuizzesDir string
	ReportsDir string

	// CORSOrigins lists allowed browser origins. Wildcards are allowed.
	CORSOrigins []string

	// TestMode lists sample/test/demo/example quiz folders.
	TestMode bool

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// PassThreshold is used when a finish request does not carry one. Zero
	// is a valid threshold.
	PassThreshold float64

	// AttemptTTL evicts attempts with no activity for this long. Zero
	// selects DefaultAttemptTTL.
	AttemptTTL time.Duration

	// MaxAttempts caps attempts held in memory. Starting one more evicts
	// the least recently used. Zero selects DefaultMaxAttempts.
	MaxAttempts int

	// HistoryLimit caps stored attempts after each save. Zero disables pruning.
	HistoryLimit int

	// Clock overrides time.Now for attempts.
	Clock func() time.Time
}

// Limits for unfinished attempts.
const (
	DefaultAttemptTTL  = 2 * time.Hour
	DefaultMaxAttempts = 1000
)

// Server serves the quiz API. Attempts live in memory until finished.
type Server struct {
	cfg  Config
	repo store.AttemptRepo
	log  logrus.FieldLogger

	mu       sync.Mutex
	attempts map[string]*attemptSession
}

// New returns a Server. repo may be nil, in which case results are not
// persisted.
func New(cfg Config, repo store.AttemptRepo, log logrus.FieldLogger) *Server {
	if cfg.AttemptTTL <= 0 {
		cfg.AttemptTTL = DefaultAttemptTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Server{
		cfg:      cfg,
		repo:     repo,
		log:      log,
		attempts: make(map[string]*attemptSession),
	}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))
	r.Use(noCache)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Get("/quizzes", s.handleListQuizzes)
		api.Get("/quiz", s.handleGetQuiz)
		api.Post("/check-answer", s.handleCheckAnswer)
		api.Post("/attempts", s.handleStartAttempt)
		api.Post("/attempts/{id}/answers", s.handleRecordAnswer)
		api.Post("/attempts/{id}/finish", s.handleFinishAttempt)
		api.Get("/results", s.handleResults)
		api.Get("/stats", s.handleStats)
	})
	r.Get("/report/{quizID}", s.handleReport)
	return r
}

// Serve listens on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg.Addr == "" {
		return errors.New("server: addr is required")
	}
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.cfg.TLSCert != "" && s.cfg.TLSKey != "" {
			errCh <- srv.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
		}).Debug("request")
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
