// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package rpc is a minimal Stellar RPC (JSON-RPC 2.0) client.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/pkg/errors"
	"github.com/stellar/go/support/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dotandev/sorogate/internal/rpc"

// DefaultTimeout bounds a single node round trip.
const DefaultTimeout = 30 * time.Second

// TransportError is returned when the node could not be reached or answered
// with something other than a JSON-RPC response.
type TransportError struct {
	Method     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: node returned HTTP %d", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to one node. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client for url. A nil httpClient gets DefaultTimeout.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{url: url, http: httpClient}
}

// URL returns the node endpoint.
func (c *Client) URL() string {
	return c.url
}

// Call invokes method with params and decodes the result into reply. Errors
// reported by the node itself come back as *json2.Error.
func (c *Client) Call(ctx context.Context, method string, params, reply interface{}) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "rpc."+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("rpc.method", method))

	err := c.call(ctx, method, params, reply)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) call(ctx context.Context, method string, params, reply interface{}) error {
	body, err := encodeRequest(method, params)
	if err != nil {
		return errors.Wrapf(err, "encoding %s request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "building %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	log.Ctx(ctx).WithFields(log.F{
		"method":   method,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("rpc call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{Method: method, StatusCode: resp.StatusCode}
	}

	if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
		var rpcErr *json2.Error
		if errors.As(err, &rpcErr) {
			return errors.Wrap(err, method)
		}
		return &TransportError{Method: method, Err: err}
	}
	return nil
}

// encodeRequest builds a JSON-RPC 2.0 envelope. jrpc2 based servers reject
// "params": null, so the member is dropped when there are no params.
func encodeRequest(method string, params interface{}) ([]byte, error) {
	body, err := json2.EncodeClientRequest(method, params)
	if err != nil || params != nil {
		return body, err
	}
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	delete(msg, "params")
	return json.Marshal(msg)
}
