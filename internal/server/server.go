// Package server provides the HTTP API for the skill matcher.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/document"
	"github.com/spigell/skill-matcher/internal/presentation"
	"github.com/spigell/skill-matcher/internal/skills"
)

const (
	DefaultAddr  = ":8000"
	DefaultBurst = 20

	shutdownTimeout = 30 * time.Second
	maxJSONBody     = 1 << 20
)

// Config holds server configuration
type Config struct {
	Addr          string   `mapstructure:"addr"`
	CORSOrigins   []string `mapstructure:"cors-origins"`
	RateLimit     float64  `mapstructure:"rate-limit"` // requests per second per client, 0 disables limiting
	Burst         int      `mapstructure:"burst"`
	MaxUploadSize int64    `mapstructure:"-"`
}

// Deps holds the matching inputs shared by every request.
type Deps struct {
	Logger     *zap.Logger
	Vocabulary *skills.Vocabulary
	Candidate  skills.SkillSet
	Display    *presentation.Scale
	Badge      *presentation.Scale
}

// Server represents the HTTP server
type Server struct {
	cfg        Config
	deps       Deps
	logger     *zap.Logger
	validate   *validator.Validate
	limiter    *clientLimiter
	handler    http.Handler
	httpServer *http.Server
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RateLimit < 0 || cfg.Burst < 0 {
		return nil, fmt.Errorf("rate limit and burst must not be negative")
	}
	if cfg.Burst == 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = document.DefaultMaxSize
	}

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Vocabulary == nil {
		deps.Vocabulary = skills.DefaultVocabulary()
	}
	if deps.Candidate == nil {
		deps.Candidate = skills.DemoCandidateSkills()
	}
	if deps.Display == nil {
		deps.Display = presentation.DisplayScale()
	}
	if deps.Badge == nil {
		deps.Badge = presentation.BadgeScale()
	}

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		logger:   deps.Logger.Named("server"),
		validate: newValidator(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.RateLimit, cfg.Burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /vocabulary", s.handleVocabulary)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /upload", s.handleUpload)

	s.handler = s.withRequestID(s.withLogging(s.withCORS(s.withRateLimit(mux))))
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves requests until ctx is done and then shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.cfg.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
