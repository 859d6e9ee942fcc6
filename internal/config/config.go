// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package config holds the process configuration. A Config is built once at
// startup and only read afterwards.
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/network"
)

// Default values.
const (
	DefaultRPCURL      = "https://soroban-testnet.stellar.org"
	DefaultPort        = 8080
	DefaultEnvironment = "production"
	DefaultLogLevel    = "info"
)

// Environment variables read by FromEnv.
const (
	EnvSecretKey         = "SOROGATE_SECRET_KEY"
	EnvRPCURL            = "SOROGATE_RPC_URL"
	EnvPort              = "PORT"
	EnvNetworkPassphrase = "SOROGATE_NETWORK_PASSPHRASE"
	EnvEnvironment       = "SOROGATE_ENV"
	EnvLogLevel          = "SOROGATE_LOG_LEVEL"
	EnvJournal           = "SOROGATE_JOURNAL"
	EnvOTLPEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type Config struct {
	// SecretKey seeds the service identity. Empty is allowed at startup;
	// contract calls then fail with a configuration error.
	SecretKey         string
	RPCURL            string
	Port              int
	NetworkPassphrase string
	// Environment is "development" or "production".
	Environment string
	LogLevel    string

	// Optional.
	JournalPath  string
	OTLPEndpoint string
	OTLPInsecure bool
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		RPCURL:            DefaultRPCURL,
		Port:              DefaultPort,
		NetworkPassphrase: network.TestNetworkPassphrase,
		Environment:       DefaultEnvironment,
		LogLevel:          DefaultLogLevel,
	}
}

// FromEnv overlays environment variables onto Default.
func FromEnv() (*Config, error) {
	c := Default()
	c.SecretKey = os.Getenv(EnvSecretKey)
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.RPCURL = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", EnvPort)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvNetworkPassphrase); v != "" {
		c.NetworkPassphrase = v
	}
	if v := os.Getenv(EnvEnvironment); v != "" {
		c.Environment = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	c.JournalPath = os.Getenv(EnvJournal)
	c.OTLPEndpoint = os.Getenv(EnvOTLPEndpoint)
	return c, nil
}

// Validate checks everything except the secret key, whose absence is only an
// error once a contract call needs it.
func (c *Config) Validate() error {
	var errs []string

	u, err := url.Parse(c.RPCURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, "rpc url must be an absolute http(s) URL")
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if c.NetworkPassphrase == "" {
		errs = append(errs, "network passphrase is required")
	}
	if c.Environment != "development" && c.Environment != "production" {
		errs = append(errs, "environment must be development or production")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, "invalid log level "+c.LogLevel)
	}

	if len(errs) > 0 {
		return errors.New("invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment reports whether detailed error messages may be returned.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
