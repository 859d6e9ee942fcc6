// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the contract gateway over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stellar/go/support/log"

	"github.com/dotandev/sorogate/internal/analytics"
	"github.com/dotandev/sorogate/internal/config"
	"github.com/dotandev/sorogate/internal/simulator"
)

const shutdownTimeout = 10 * time.Second

// Simulator runs a read-only contract call.
type Simulator interface {
	Simulate(ctx context.Context, call simulator.Call) (*simulator.Outcome, error)
}

// Recorder receives one record per contract call.
type Recorder interface {
	Record(ctx context.Context, rec analytics.CallRecord) error
}

type Server struct {
	cfg      *config.Config
	sim      Simulator
	relay    http.Handler
	recorder Recorder
	logger   *log.Entry
	engine   *gin.Engine
}

type Option func(*Server)

// WithRecorder journals every contract call.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithLogger sets the base logger request loggers derive from.
func WithLogger(l *log.Entry) Option {
	return func(s *Server) { s.logger = l }
}

func New(cfg *config.Config, sim Simulator, relay http.Handler, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		sim:    sim,
		relay:  relay,
		logger: log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(requestContext(s.logger), recovery())
	engine.POST("/contract/readonly", s.readOnly)
	engine.POST("/rpc", gin.WrapH(relay))
	engine.OPTIONS("/rpc", gin.WrapH(relay))
	engine.GET("/health", s.health)
	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"network": s.cfg.NetworkPassphrase,
		"rpcUrl":  s.cfg.RPCURL,
	})
}
