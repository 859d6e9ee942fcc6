// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/stellar/go/support/log"

	"github.com/dotandev/sorogate/internal/analytics"
	"github.com/dotandev/sorogate/internal/config"
	"github.com/dotandev/sorogate/internal/relay"
	"github.com/dotandev/sorogate/internal/server"
	"github.com/dotandev/sorogate/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.Int("port", config.DefaultPort, "listen port (env "+config.EnvPort+")")
	f.String("journal", "", "sqlite file recording call metadata (env "+config.EnvJournal+")")
	f.String("otlp-endpoint", "", "OTLP/HTTP collector URL or host:port (env "+config.EnvOTLPEndpoint+")")
	f.Bool("otlp-insecure", false, "send traces over plain HTTP to a host:port endpoint")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogging(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint: cfg.OTLPEndpoint,
		Insecure: cfg.OTLPInsecure,
		Version:  Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.WithField("err", err.Error()).Warn("flushing traces")
		}
	}()

	sim, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	if cfg.SecretKey == "" {
		logger.Warnf("%s is not set; contract calls will fail until it is", config.EnvSecretKey)
	}

	opts := []server.Option{server.WithLogger(logger)}
	if cfg.JournalPath != "" {
		journal, err := analytics.OpenJournal(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer journal.Close()
		opts = append(opts, server.WithRecorder(journal))
	}

	gin.SetMode(gin.ReleaseMode)
	logger.WithFields(log.F{
		"rpc_url":     cfg.RPCURL,
		"network":     cfg.NetworkPassphrase,
		"environment": cfg.Environment,
	}).Info("starting gateway")

	return server.New(cfg, sim, relay.New(cfg.RPCURL, nil), opts...).ListenAndServe(ctx)
}
