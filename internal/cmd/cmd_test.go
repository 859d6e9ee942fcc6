// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/sorogate/internal/analytics"
	"github.com/dotandev/sorogate/internal/config"
	"github.com/dotandev/sorogate/internal/rpc"
	"github.com/dotandev/sorogate/internal/scval"
	"github.com/dotandev/sorogate/internal/simulator"
	"github.com/dotandev/sorogate/internal/simulator/simtest"
)

func testContract(t *testing.T) string {
	t.Helper()
	id, err := strkey.Encode(strkey.VersionByteContract, bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	return id
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// stellarNode serves getLedgerEntries and simulateTransaction over JSON-RPC.
func stellarNode(t *testing.T, account string, result string) *httptest.Server {
	t.Helper()
	key, entry, err := simtest.AccountEntry(account, 5)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		var res interface{}
		switch req.Method {
		case "getLedgerEntries":
			res = simulator.LedgerEntriesResponse{
				Entries:      []simulator.LedgerEntryResult{{Key: key, XDR: entry}},
				LatestLedger: 10,
			}
		case "simulateTransaction":
			res = simulator.SimulationResponse{
				LatestLedger:   10,
				MinResourceFee: "100",
				Results:        []simulator.SimulationResult{{XDR: result}},
			}
		default:
			http.Error(w, "unknown method", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": res})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCallCommand(t *testing.T) {
	kp := keypair.MustRandom()
	t.Setenv(config.EnvSecretKey, kp.Seed())
	const landmark = "AAAADgAAAAxFaWZmZWwgVG93ZXI="
	node := stellarNode(t, kp.Address(), landmark)

	out, err := execute(t, "call",
		"--rpc-url", node.URL,
		"--contract", testContract(t),
		"--function", "getLandmark",
		"--param", "u32:7",
	)
	require.NoError(t, err)
	assert.Equal(t, landmark+"\n", out)
}

func TestCallCommand_MissingSecret(t *testing.T) {
	t.Setenv(config.EnvSecretKey, "")
	node := stellarNode(t, keypair.MustRandom().Address(), "")

	_, err := execute(t, "call", "--rpc-url", node.URL, "--contract", testContract(t), "--function", "f")
	assert.ErrorIs(t, err, simulator.ErrConfiguration)
}

func TestReportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.db")
	j, err := analytics.OpenJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(context.Background(), analytics.CallRecord{
		RequestID: "r1", Function: "get_session", Outcome: analytics.OutcomeSuccess, Status: 200, Duration: time.Millisecond,
	}))
	require.NoError(t, j.Close())

	out, err := execute(t, "report", "--journal", path)
	require.NoError(t, err)
	assert.Contains(t, out, "get_session: 1 calls, 0 failed")
}

func TestBuildCall(t *testing.T) {
	account := keypair.MustRandom().Address()
	call, err := buildCall(testContract(t), "join_session", []string{"u32:1", account, "true", "symbol:FR"})
	require.NoError(t, err)
	require.Len(t, call.Args, 4)
	assert.Equal(t, "join_session", call.Function)
	assert.Equal(t, xdr.ScValTypeScvU32, call.Args[0].Type)
	assert.Equal(t, xdr.ScValTypeScvAddress, call.Args[1].Type)
	assert.Equal(t, xdr.ScValTypeScvBool, call.Args[2].Type)
	assert.Equal(t, xdr.ScValTypeScvSymbol, call.Args[3].Type)

	_, err = buildCall(testContract(t), "f", []string{"u32:-1"})
	assert.Error(t, err)
}

func TestVerifyNode(t *testing.T) {
	net := rpc.NetworkResponse{Passphrase: network.TestNetworkPassphrase, ProtocolVersion: 23}

	assert.NoError(t, verifyNode(net, rpc.VersionInfoResponse{Version: "23.0.4"}, network.TestNetworkPassphrase, "22.0.0"))
	assert.NoError(t, verifyNode(net, rpc.VersionInfoResponse{Version: "22.0.0-rc.2"}, network.TestNetworkPassphrase, "22.0.0"))
	assert.NoError(t, verifyNode(net, rpc.VersionInfoResponse{Version: "v22.1.0"}, network.TestNetworkPassphrase, "22.0.0"))

	assert.Error(t, verifyNode(net, rpc.VersionInfoResponse{Version: "21.4.1"}, network.TestNetworkPassphrase, "22.0.0"))
	assert.Error(t, verifyNode(net, rpc.VersionInfoResponse{Version: "garbage"}, network.TestNetworkPassphrase, "22.0.0"))
	assert.Error(t, verifyNode(net, rpc.VersionInfoResponse{Version: "23.0.0"}, network.PublicNetworkPassphrase, "22.0.0"))
}

func TestRunLoad(t *testing.T) {
	kp := keypair.MustRandom()
	identity, err := simulator.LoadIdentity(kp.Seed())
	require.NoError(t, err)
	node := &simtest.Node{Account: identity.Address(), Sequence: 3, Simulate: simtest.Returning(scval.Bool(true))}
	sim := simulator.New(node, identity, simulator.Options{})

	var done int64
	stats := runLoad(context.Background(), sim.Simulate, simulator.Call{ContractID: testContract(t), Function: "get_admin"}, 25, 4, func() {
		atomic.AddInt64(&done, 1)
	})
	assert.Equal(t, 25, stats.Succeeded)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, int64(25), atomic.LoadInt64(&done))
	assert.Len(t, node.Transactions(), 25)

	var buf bytes.Buffer
	printLoadStats(&buf, stats, time.Second)
	assert.True(t, strings.Contains(buf.String(), "Succeeded:  25"))
}

func TestRunLoad_CountsFailures(t *testing.T) {
	fail := func(context.Context, simulator.Call) (*simulator.Outcome, error) {
		return nil, simulator.ErrConfiguration
	}
	simErr := func(context.Context, simulator.Call) (*simulator.Outcome, error) {
		return &simulator.Outcome{Error: "HostError"}, nil
	}

	stats := runLoad(context.Background(), fail, simulator.Call{}, 3, 2, func() {})
	assert.Equal(t, 3, stats.Failed)
	assert.ErrorIs(t, stats.LastErr, simulator.ErrConfiguration)

	stats = runLoad(context.Background(), simErr, simulator.Call{}, 3, 5, func() {})
	assert.Equal(t, 3, stats.SimErrors)
}

func TestRunLoad_StopsDispatchingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int64
	simulate := func(context.Context, simulator.Call) (*simulator.Outcome, error) {
		if atomic.AddInt64(&calls, 1) == 3 {
			cancel()
		}
		return &simulator.Outcome{}, nil
	}

	stats := runLoad(ctx, simulate, simulator.Call{}, 1000, 1, func() {})
	assert.Less(t, atomic.LoadInt64(&calls), int64(10))
	assert.Zero(t, stats.Failed)

	stats = runLoad(ctx, simulate, simulator.Call{}, 10, 4, func() {})
	assert.Zero(t, stats.Succeeded+stats.SimErrors+stats.Failed)
}
