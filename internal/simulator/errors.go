// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfiguration means no service identity was configured.
	ErrConfiguration = errors.New("service secret key is not configured")
	// ErrAccountNotFound means the service account does not exist on the ledger.
	ErrAccountNotFound = errors.New("service account not found")
)

// NetworkError is a failure reaching the node during op.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SimulationError carries the node's description of a failed contract
// execution, unchanged.
type SimulationError struct {
	Message string
}

func (e *SimulationError) Error() string {
	return e.Message
}
