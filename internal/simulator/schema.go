// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import "encoding/json"

// SimulationRequest is the params object sent to simulateTransaction.
type SimulationRequest struct {
	// XDR encoded TransactionEnvelope
	Transaction string `json:"transaction"`
}

// SimulationResponse is the node's answer to simulateTransaction.
type SimulationResponse struct {
	// Set when the host function failed; Results is empty then.
	Error           string             `json:"error,omitempty"`
	TransactionData string             `json:"transactionData,omitempty"`
	MinResourceFee  json.Number        `json:"minResourceFee,omitempty"`
	Events          []string           `json:"events,omitempty"` // Diagnostic events
	Results         []SimulationResult `json:"results,omitempty"`
	LatestLedger    uint32             `json:"latestLedger"`
}

// SimulationResult holds one host function's return value.
type SimulationResult struct {
	XDR  string   `json:"xdr"` // XDR encoded ScVal
	Auth []string `json:"auth,omitempty"`
}

// LedgerEntriesRequest is the params object sent to getLedgerEntries.
type LedgerEntriesRequest struct {
	Keys []string `json:"keys"`
}

type LedgerEntriesResponse struct {
	Entries      []LedgerEntryResult `json:"entries"`
	LatestLedger uint32              `json:"latestLedger"`
}

type LedgerEntryResult struct {
	Key                string  `json:"key"`
	XDR                string  `json:"xdr"` // XDR encoded LedgerEntryData
	LastModifiedLedger uint32  `json:"lastModifiedLedgerSeq"`
	LiveUntilLedgerSeq *uint32 `json:"liveUntilLedgerSeq,omitempty"`
}
