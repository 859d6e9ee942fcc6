// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package relay forwards raw JSON-RPC requests to the upstream node.
package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/stellar/go/support/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dotandev/sorogate/internal/relay"

// CORS values written on every response.
const (
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, OPTIONS"
	AllowHeaders = "Content-Type, Authorization"
)

// Headers owned by a single connection, never copied from upstream.
var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// Relay treats bodies as opaque bytes: it never parses or validates them.
type Relay struct {
	upstream string
	client   *http.Client
}

// New returns a relay to upstream. A nil client gets a 30s timeout.
func New(upstream string, client *http.Client) *Relay {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Relay{upstream: upstream, client: client}
}

func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	setCORS(w.Header())
	if req.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, span := otel.Tracer(tracerName).Start(req.Context(), "relay.Forward", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	logger := log.Ctx(ctx)

	out, err := http.NewRequestWithContext(ctx, req.Method, r.upstream, req.Body)
	if err != nil {
		logger.WithField("err", err).Error("building relay request")
		writeError(w, err)
		return
	}
	out.ContentLength = req.ContentLength
	if ct := req.Header.Get("Content-Type"); ct != "" {
		out.Header.Set("Content-Type", ct)
	}

	start := time.Now()
	resp, err := r.client.Do(out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithFields(log.F{
			"err":      err,
			"duration": time.Since(start).String(),
		}).Error("relay upstream unreachable")
		writeError(w, err)
		return
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.upstream_status", resp.StatusCode))
	for k, vs := range resp.Header {
		if hopHeaders[k] {
			continue
		}
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	setCORS(w.Header())
	w.WriteHeader(resp.StatusCode)
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		logger.WithField("err", err).Warn("relay response copy interrupted")
	}
	logger.WithFields(log.F{
		"status":   resp.StatusCode,
		"bytes":    n,
		"duration": time.Since(start).String(),
	}).Debug("relayed rpc request")
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "RPC proxy error",
		"message": err.Error(),
	})
}
