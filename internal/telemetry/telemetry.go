// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package telemetry installs the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const ServiceName = "sorogate"

// Options selects the OTLP/HTTP collector. An empty Endpoint disables export
// and leaves the no-op provider in place.
type Options struct {
	// Endpoint is a collector URL (http://host:4318) as found in
	// OTEL_EXPORTER_OTLP_ENDPOINT, or a bare host:port.
	Endpoint string
	// Insecure selects plain HTTP for a bare host:port. URL endpoints take
	// the scheme from the URL.
	Insecure bool
	Version  string
}

// Setup returns a shutdown func that flushes pending spans. It is always
// safe to call.
func Setup(ctx context.Context, opts Options) (func(context.Context) error, error) {
	if opts.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, clientOptions(opts)...)
	if err != nil {
		return nil, errors.Wrap(err, "creating otlp exporter")
	}

	tp := NewProvider(sdktrace.WithBatcher(exporter), sdktrace.WithResource(Resource(opts.Version)))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func clientOptions(opts Options) []otlptracehttp.Option {
	if strings.Contains(opts.Endpoint, "://") {
		return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(opts.Endpoint)}
	}
	clientOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
	}
	return clientOpts
}

// NewProvider builds a provider always sampling, with extra options applied.
func NewProvider(opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append([]sdktrace.TracerProviderOption{sdktrace.WithSampler(sdktrace.AlwaysSample())}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

func Resource(version string) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	)
}
