// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"

	goversion "github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dotandev/sorogate/internal/rpc"
)

// DefaultMinRPCVersion is the oldest Stellar RPC release the gateway is
// tested against.
const DefaultMinRPCVersion = "22.0.0"

var checkFlags struct {
	minVersion string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured RPC node is healthy, on the right network and recent enough",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFlags.minVersion, "min-version", DefaultMinRPCVersion, "minimum RPC server version")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	ctx := cmd.Context()
	client := rpc.NewClient(cfg.RPCURL, nil)

	health, err := client.GetHealth(ctx)
	if err != nil {
		return errors.Wrap(err, "health")
	}
	network, err := client.GetNetwork(ctx)
	if err != nil {
		return errors.Wrap(err, "network")
	}
	info, err := client.GetVersionInfo(ctx)
	if err != nil {
		return errors.Wrap(err, "version")
	}

	printNodeSummary(cmd.OutOrStdout(), cfg.RPCURL, health, network, info)
	return verifyNode(network, info, cfg.NetworkPassphrase, checkFlags.minVersion)
}

func printNodeSummary(w io.Writer, url string, health rpc.HealthResponse, network rpc.NetworkResponse, info rpc.VersionInfoResponse) {
	fmt.Fprintf(w, "Node:      %s\n", url)
	fmt.Fprintf(w, "Status:    %s (ledgers %d-%d)\n", health.Status, health.OldestLedger, health.LatestLedger)
	fmt.Fprintf(w, "Network:   %s\n", network.Passphrase)
	fmt.Fprintf(w, "Protocol:  %d\n", network.ProtocolVersion)
	fmt.Fprintf(w, "Version:   %s (core %s)\n", info.Version, info.CaptiveCoreVersion)
}

// verifyNode checks the node serves the configured network and meets the
// minimum version. Pre-release suffixes are ignored when comparing.
func verifyNode(network rpc.NetworkResponse, info rpc.VersionInfoResponse, passphrase, minVersion string) error {
	if network.Passphrase != passphrase {
		return errors.Errorf("node is on %q, gateway is configured for %q", network.Passphrase, passphrase)
	}
	constraint, err := goversion.NewConstraint(">= " + minVersion)
	if err != nil {
		return errors.Wrap(err, "min version")
	}
	v, err := goversion.NewVersion(info.Version)
	if err != nil {
		return errors.Wrapf(err, "node version %q", info.Version)
	}
	if !constraint.Check(v.Core()) {
		return errors.Errorf("node version %s does not satisfy %s", info.Version, constraint)
	}
	return nil
}
