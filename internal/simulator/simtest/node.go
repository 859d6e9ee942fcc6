// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package simtest provides an in-memory node for simulator tests.
package simtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/dotandev/sorogate/internal/simulator"
)

// Node answers getLedgerEntries from a fixed account and simulateTransaction
// through Simulate. It is safe for concurrent use.
type Node struct {
	// Account is the address getLedgerEntries knows about; other keys
	// return no entries.
	Account  string
	Sequence int64
	// Simulate produces the response for a decoded transaction.
	Simulate func(tx *txnbuild.Transaction) simulator.SimulationResponse
	// Errors forces a method to fail with the given error.
	Errors map[string]error

	mu    sync.Mutex
	calls []string
	txs   []*txnbuild.Transaction
}

// Call records the method, then answers it or returns the configured error.
func (n *Node) Call(ctx context.Context, method string, params, reply interface{}) error {
	n.mu.Lock()
	n.calls = append(n.calls, method)
	n.mu.Unlock()

	if err := n.Errors[method]; err != nil {
		return err
	}

	var result interface{}
	switch method {
	case "getLedgerEntries":
		resp, err := n.ledgerEntries(params)
		if err != nil {
			return err
		}
		result = resp
	case "simulateTransaction":
		req, ok := params.(simulator.SimulationRequest)
		if !ok {
			return fmt.Errorf("unexpected params %T", params)
		}
		gtx, err := txnbuild.TransactionFromXDR(req.Transaction)
		if err != nil {
			return err
		}
		tx, ok := gtx.Transaction()
		if !ok {
			return fmt.Errorf("not a v1 transaction")
		}
		n.mu.Lock()
		n.txs = append(n.txs, tx)
		n.mu.Unlock()
		if n.Simulate == nil {
			result = simulator.SimulationResponse{LatestLedger: 1}
		} else {
			result = n.Simulate(tx)
		}
	default:
		return fmt.Errorf("method %s not found", method)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, reply)
}

func (n *Node) ledgerEntries(params interface{}) (simulator.LedgerEntriesResponse, error) {
	resp := simulator.LedgerEntriesResponse{LatestLedger: 1}
	req, ok := params.(simulator.LedgerEntriesRequest)
	if !ok {
		return resp, fmt.Errorf("unexpected params %T", params)
	}
	if n.Account == "" {
		return resp, nil
	}
	key, entry, err := AccountEntry(n.Account, n.Sequence)
	if err != nil {
		return resp, err
	}
	for _, k := range req.Keys {
		if k == key {
			resp.Entries = append(resp.Entries, simulator.LedgerEntryResult{Key: key, XDR: entry, LastModifiedLedger: 1})
		}
	}
	return resp, nil
}

// Calls returns the methods invoked so far, in order.
func (n *Node) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

// Transactions returns every simulated transaction.
func (n *Node) Transactions() []*txnbuild.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*txnbuild.Transaction(nil), n.txs...)
}

// AccountEntry returns the base64 ledger key and LedgerEntryData of an
// account with the given sequence number.
func AccountEntry(address string, seq int64) (key, entry string, err error) {
	var aid xdr.AccountId
	if err = aid.SetAddress(address); err != nil {
		return "", "", err
	}
	key, err = xdr.MarshalBase64(xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: aid},
	})
	if err != nil {
		return "", "", err
	}
	entry, err = xdr.MarshalBase64(xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeAccount,
		Account: &xdr.AccountEntry{
			AccountId: aid,
			Balance:   100_0000000,
			SeqNum:    xdr.SequenceNumber(seq),
		},
	})
	return key, entry, err
}

// Function returns the contract function a simulated transaction invokes.
func Function(tx *txnbuild.Transaction) string {
	ops := tx.Operations()
	if len(ops) != 1 {
		return ""
	}
	op, ok := ops[0].(*txnbuild.InvokeHostFunction)
	if !ok || op.HostFunction.InvokeContract == nil {
		return ""
	}
	return string(op.HostFunction.InvokeContract.FunctionName)
}

// Returning answers every simulation with val.
func Returning(val xdr.ScVal) func(*txnbuild.Transaction) simulator.SimulationResponse {
	return func(*txnbuild.Transaction) simulator.SimulationResponse {
		b64, err := xdr.MarshalBase64(val)
		if err != nil {
			return simulator.SimulationResponse{Error: err.Error()}
		}
		return simulator.SimulationResponse{
			LatestLedger:   100,
			MinResourceFee: "58181",
			Results:        []simulator.SimulationResult{{XDR: b64}},
		}
	}
}
