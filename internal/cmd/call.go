// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dotandev/sorogate/internal/scval"
	"github.com/dotandev/sorogate/internal/simulator"
)

var callFlags struct {
	contract string
	function string
	params   []string
}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Simulate one read-only contract call and print the base64 XDR result",
	Example: `  sorogate call --contract CB... --function get_session --param u32:7
  sorogate call --contract CB... --function get_country_allowed --param 250`,
	RunE: runCall,
}

func init() {
	f := callCmd.Flags()
	f.StringVar(&callFlags.contract, "contract", "", "contract id (C...)")
	f.StringVar(&callFlags.function, "function", "", "contract function name")
	f.StringArrayVar(&callFlags.params, "param", nil, "positional parameter, kind:value or a bare value (repeatable)")
	_ = callCmd.MarkFlagRequired("contract")
	_ = callCmd.MarkFlagRequired("function")
}

func runCall(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	sim, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	call, err := buildCall(callFlags.contract, callFlags.function, callFlags.params)
	if err != nil {
		return err
	}

	out, err := sim.Simulate(cmd.Context(), call)
	if err != nil {
		return err
	}
	if err := out.Err(); err != nil {
		return errors.Wrap(err, "simulation failed")
	}
	result, err := scval.DecodeResult(out.ReturnValue)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if result == nil {
		fmt.Fprintln(w, "null")
	} else {
		fmt.Fprintln(w, *result)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "ledger %d, min resource fee %s, tx %s\n", out.LatestLedger, out.MinResourceFee, out.TxHash)
	return nil
}

func buildCall(contract, function string, raw []string) (simulator.Call, error) {
	params := make([]scval.Param, len(raw))
	for i, r := range raw {
		params[i] = scval.ParseParam(r)
	}
	args, err := scval.EncodeAll(params)
	if err != nil {
		return simulator.Call{}, err
	}
	return simulator.Call{ContractID: contract, Function: function, Args: args}, nil
}
