// Package web serves the lifecycle HTTP API. The server is itself a
// managed component: register it with a high phase so it comes up last and
// goes down first, and declare async stop so the graceful shutdown runs on
// its own goroutine while the orchestrator counts down the phase.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slipway-io/slipway/config"
)

// Name is the conventional registry name for the web server component.
const Name = "web"

// shutdownGrace bounds the graceful drain of in-flight requests.
const shutdownGrace = 10 * time.Second

// Server is the lifecycle API HTTP server.
type Server struct {
	logger  *slog.Logger
	engine  *gin.Engine
	srv     *http.Server
	running atomic.Bool
}

// NewServer builds the gin engine with the standard middleware chain,
// mounts the routes registered through opts, and prepares (but does not
// start) the HTTP server.
func NewServer(cfg config.ServerConfig, logger *slog.Logger, opts ...Option) *Server {
	var options Options
	for _, o := range opts {
		o(&options)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(logger))
	r.Use(AccessLog(logger))
	r.Use(options.Middlewares...)

	for _, reg := range options.Routes {
		reg(r)
	}

	return &Server{
		logger: logger,
		engine: r,
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Engine exposes the underlying gin engine for additional route mounting
// before Start.
func (s *Server) Engine() *gin.Engine { return s.engine }

// IsRunning reports whether the server has been started and not yet stopped.
func (s *Server) IsRunning() bool { return s.running.Load() }

// Start begins serving on the configured address. The listener runs on its
// own goroutine; listen errors after startup are logged, not returned.
func (s *Server) Start() error {
	s.running.Store(true)
	go func() {
		s.logger.Info("http server starting", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
			s.running.Store(false)
		}
	}()
	return nil
}

// Stop drains in-flight requests and shuts the server down synchronously.
func (s *Server) Stop() error {
	s.running.Store(false)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// StopAsync performs the graceful shutdown on its own goroutine and invokes
// done when the drain completes, so the orchestrator can overlap it with
// the rest of the phase.
func (s *Server) StopAsync(done func()) {
	s.running.Store(false)
	go func() {
		defer done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.srv.Shutdown(ctx); err != nil {
			s.logger.Warn("http shutdown", "error", err)
		}
	}()
}
