// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the sorogate command line.
package cmd

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stellar/go/support/log"

	"github.com/dotandev/sorogate/internal/config"
	"github.com/dotandev/sorogate/internal/rpc"
	"github.com/dotandev/sorogate/internal/simulator"
)

// Version is set at build time via ldflags.
var Version = "dev"

var globalFlags struct {
	rpcURL      string
	passphrase  string
	environment string
	logLevel    string
}

var rootCmd = &cobra.Command{
	Use:           "sorogate",
	Short:         "Read-only gateway for Soroban smart contracts",
	Long:          "sorogate simulates read-only Soroban contract calls on behalf of clients and relays raw JSON-RPC to a Stellar RPC node.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaults := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.rpcURL, "rpc-url", defaults.RPCURL, "Stellar RPC endpoint (env "+config.EnvRPCURL+")")
	pf.StringVar(&globalFlags.passphrase, "network-passphrase", defaults.NetworkPassphrase, "network passphrase (env "+config.EnvNetworkPassphrase+")")
	pf.StringVar(&globalFlags.environment, "env", defaults.Environment, "development or production (env "+config.EnvEnvironment+")")
	pf.StringVar(&globalFlags.logLevel, "log-level", defaults.LogLevel, "log level (env "+config.EnvLogLevel+")")

	rootCmd.AddCommand(serveCmd, callCmd, checkCmd, loadtestCmd, reportCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig reads the environment, then applies flags the user set. The
// secret key only ever comes from the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	fs := cmd.Flags()
	if fs.Changed("rpc-url") {
		cfg.RPCURL = globalFlags.rpcURL
	}
	if fs.Changed("network-passphrase") {
		cfg.NetworkPassphrase = globalFlags.passphrase
	}
	if fs.Changed("env") {
		cfg.Environment = globalFlags.environment
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = globalFlags.logLevel
	}
	if fs.Lookup("port") != nil && fs.Changed("port") {
		cfg.Port, _ = fs.GetInt("port")
	}
	if fs.Lookup("journal") != nil && fs.Changed("journal") {
		cfg.JournalPath, _ = fs.GetString("journal")
	}
	if fs.Lookup("otlp-endpoint") != nil && fs.Changed("otlp-endpoint") {
		cfg.OTLPEndpoint, _ = fs.GetString("otlp-endpoint")
	}
	if fs.Lookup("otlp-insecure") != nil && fs.Changed("otlp-insecure") {
		cfg.OTLPInsecure, _ = fs.GetBool("otlp-insecure")
	}
	return cfg, cfg.Validate()
}

// setupLogging installs the process logger: text on a terminal, JSON
// otherwise.
func setupLogging(cfg *config.Config) *log.Entry {
	logger := log.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if !isTerminal(os.Stderr) {
		logger.UseJSONFormatter()
	}
	logger = logger.WithField("service", "sorogate")
	log.DefaultLogger = logger
	return logger
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newSimulator(cfg *config.Config) (*simulator.Simulator, error) {
	identity, err := simulator.LoadIdentity(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	node := rpc.NewClient(cfg.RPCURL, nil)
	return simulator.New(node, identity, simulator.Options{NetworkPassphrase: cfg.NetworkPassphrase}), nil
}
