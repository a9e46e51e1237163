// Package devserver is a self-contained stand-in for the school backend:
// seeded fixtures behind the same routes, envelopes and auth scheme, so the
// client and its integration tests never need the production API.
package devserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vidyalink/app/internal/config"
)

type Server struct {
	engine *gin.Engine
	server *http.Server
	log    zerolog.Logger
}

func New(cfg config.DevServerConfig, environment string, fixtures *Fixtures, log zerolog.Logger) *Server {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		requestID(),
		accessLog(log),
		recovery(log),
		cors(),
	)

	NewHandlerSet(fixtures, cfg, log).Register(engine)

	return &Server{
		engine: engine,
		server: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler: engine,
		},
		log: log,
	}
}

// Handler exposes the routed engine for httptest-based integration tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("dev server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("dev server shutting down")
	return s.server.Shutdown(ctx)
}
