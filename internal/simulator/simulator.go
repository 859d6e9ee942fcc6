// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package simulator builds unsigned contract invocation transactions and runs
// them through a node's simulateTransaction endpoint.
package simulator

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stellar/go/network"
	"github.com/stellar/go/support/log"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dotandev/sorogate/internal/rpc"
	"github.com/dotandev/sorogate/internal/scval"
)

const tracerName = "github.com/dotandev/sorogate/internal/simulator"

// DefaultTimeout is the transaction validity window in seconds.
const DefaultTimeout = 30

// Node is the subset of the RPC client the simulator needs.
type Node interface {
	Call(ctx context.Context, method string, params, reply interface{}) error
}

type Options struct {
	NetworkPassphrase string
	BaseFee           int64
	Timeout           int64
}

func (o Options) withDefaults() Options {
	if o.NetworkPassphrase == "" {
		o.NetworkPassphrase = network.TestNetworkPassphrase
	}
	if o.BaseFee == 0 {
		o.BaseFee = txnbuild.MinBaseFee
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Call names one contract function invocation with encoded arguments.
type Call struct {
	ContractID string
	Function   string
	Args       []xdr.ScVal
}

// Outcome is the result of one simulation. Exactly one of Error and
// ReturnValue is meaningful; a nil ReturnValue with no Error means the node
// returned no value.
type Outcome struct {
	Error          string
	ReturnValue    *xdr.ScVal
	LatestLedger   uint32
	MinResourceFee string
	TxHash         string
}

// Err returns the simulation failure as a *SimulationError, or nil.
func (o *Outcome) Err() error {
	if o.Error == "" {
		return nil
	}
	return &SimulationError{Message: o.Error}
}

// Simulator is stateless apart from its read-only dependencies and may be
// shared by concurrent requests.
type Simulator struct {
	node     Node
	identity *Identity
	opts     Options
}

func New(node Node, identity *Identity, opts Options) *Simulator {
	return &Simulator{node: node, identity: identity, opts: opts.withDefaults()}
}

// NetworkPassphrase returns the passphrase transactions are built for.
func (s *Simulator) NetworkPassphrase() string {
	return s.opts.NetworkPassphrase
}

// Simulate fetches the service account's sequence number, builds the
// invocation and simulates it. Failures are not retried.
func (s *Simulator) Simulate(ctx context.Context, call Call) (*Outcome, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "simulator.Simulate")
	defer span.End()
	span.SetAttributes(
		attribute.String("contract.id", ShortID(call.ContractID)),
		attribute.String("contract.function", call.Function),
		attribute.Int("contract.args", len(call.Args)),
	)

	out, err := s.simulate(ctx, call)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("tx.hash", out.TxHash),
		attribute.Int64("ledger.latest", int64(out.LatestLedger)),
		attribute.Bool("simulation.failed", out.Error != ""),
	)
	return out, nil
}

func (s *Simulator) simulate(ctx context.Context, call Call) (*Outcome, error) {
	if s.identity == nil {
		return nil, ErrConfiguration
	}
	source := s.identity.Address()

	seq, err := s.LoadSequence(ctx, source)
	if err != nil {
		return nil, err
	}

	tx, err := s.BuildTransaction(&txnbuild.SimpleAccount{AccountID: source, Sequence: seq}, call)
	if err != nil {
		return nil, err
	}
	envelope, err := tx.Base64()
	if err != nil {
		return nil, errors.Wrap(err, "encoding transaction")
	}
	hash, err := tx.HashHex(s.opts.NetworkPassphrase)
	if err != nil {
		return nil, errors.Wrap(err, "hashing transaction")
	}

	var resp SimulationResponse
	if err := s.node.Call(ctx, "simulateTransaction", SimulationRequest{Transaction: envelope}, &resp); err != nil {
		return nil, nodeError("simulateTransaction", err)
	}

	out := &Outcome{
		LatestLedger:   resp.LatestLedger,
		MinResourceFee: resp.MinResourceFee.String(),
		TxHash:         hash,
	}
	logger := log.Ctx(ctx).WithFields(log.F{
		"tx_hash":       hash,
		"latest_ledger": resp.LatestLedger,
	})
	if resp.Error != "" {
		out.Error = resp.Error
		logger.WithField("sim_error", resp.Error).Debug("simulation reported an error")
		return out, nil
	}
	if len(resp.Results) > 0 && resp.Results[0].XDR != "" {
		var val xdr.ScVal
		if err := xdr.SafeUnmarshalBase64(resp.Results[0].XDR, &val); err != nil {
			return nil, errors.Wrap(err, "decoding return value")
		}
		out.ReturnValue = &val
	}
	logger.Debug("simulation succeeded")
	return out, nil
}

// LoadSequence reads address's current sequence number via getLedgerEntries.
func (s *Simulator) LoadSequence(ctx context.Context, address string) (int64, error) {
	var aid xdr.AccountId
	if err := aid.SetAddress(address); err != nil {
		return 0, errors.Wrap(err, "service account address")
	}
	key, err := xdr.MarshalBase64(xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: aid},
	})
	if err != nil {
		return 0, errors.Wrap(err, "encoding account key")
	}

	var resp LedgerEntriesResponse
	if err := s.node.Call(ctx, "getLedgerEntries", LedgerEntriesRequest{Keys: []string{key}}, &resp); err != nil {
		return 0, nodeError("getLedgerEntries", err)
	}
	if len(resp.Entries) == 0 {
		return 0, errors.Wrap(ErrAccountNotFound, address)
	}

	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(resp.Entries[0].XDR, &data); err != nil {
		return 0, errors.Wrap(err, "decoding account entry")
	}
	account, ok := data.GetAccount()
	if !ok {
		return 0, errors.Errorf("expected an account entry, got %s", data.Type)
	}
	return int64(account.SeqNum), nil
}

// BuildTransaction returns an unsigned transaction with a single
// InvokeHostFunction operation calling call.Function on call.ContractID.
func (s *Simulator) BuildTransaction(source txnbuild.Account, call Call) (*txnbuild.Transaction, error) {
	if call.Function == "" {
		return nil, errors.New("function name is required")
	}
	contract, err := scval.ParseAddress(call.ContractID)
	if err != nil {
		return nil, errors.Wrap(err, "contract id")
	}
	if contract.Type != xdr.ScAddressTypeScAddressTypeContract {
		return nil, errors.Errorf("contract id %q is not a contract address", call.ContractID)
	}

	op := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contract,
				FunctionName:    xdr.ScSymbol(call.Function),
				Args:            call.Args,
			},
		},
	}
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        source,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              s.opts.BaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(s.opts.Timeout),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "building transaction")
	}
	return tx, nil
}

func nodeError(op string, err error) error {
	var transportErr *rpc.TransportError
	if errors.As(err, &transportErr) {
		return &NetworkError{Op: op, Err: err}
	}
	return errors.Wrap(err, op)
}

// ShortID truncates an id for logs.
func ShortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:8] + "..." + id[len(id)-4:]
}
