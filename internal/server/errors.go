// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/dotandev/sorogate/internal/analytics"
	"github.com/dotandev/sorogate/internal/simulator"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationError is a malformed or incomplete request.
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func missingField(name string) *ValidationError {
	return &ValidationError{Title: "Missing required fields", Message: name + " is required"}
}

// classify maps err to exactly one response. Details of server side failures
// are only exposed in development.
func classify(err error, development bool) (int, errorResponse, string) {
	var (
		validationErr *ValidationError
		simErr        *simulator.SimulationError
		netErr        *simulator.NetworkError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest,
			errorResponse{Error: validationErr.Title, Message: validationErr.Message},
			analytics.OutcomeInvalid
	case errors.As(err, &simErr):
		return http.StatusBadRequest,
			errorResponse{Error: "Simulation failed", Message: simErr.Message},
			analytics.OutcomeSimError
	case errors.Is(err, simulator.ErrConfiguration):
		return http.StatusInternalServerError,
			errorResponse{Error: "Configuration error", Message: detail(err, development, "Server is not configured")},
			analytics.OutcomeException
	case errors.As(err, &netErr):
		return http.StatusInternalServerError,
			errorResponse{Error: "Network error", Message: detail(err, development, "Unable to reach the ledger node")},
			analytics.OutcomeException
	default:
		return http.StatusInternalServerError,
			errorResponse{Error: "Internal server error", Message: detail(err, development, "An unexpected error occurred")},
			analytics.OutcomeException
	}
}

func detail(err error, development bool, generic string) string {
	if development {
		return err.Error()
	}
	return generic
}
