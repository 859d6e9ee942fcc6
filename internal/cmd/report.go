// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dotandev/sorogate/internal/analytics"
	"github.com/dotandev/sorogate/internal/config"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise the call journal written by serve --journal",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().String("journal", "", "sqlite journal file (env "+config.EnvJournal+")")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JournalPath == "" {
		return errors.New("no journal given; use --journal or " + config.EnvJournal)
	}

	journal, err := analytics.OpenJournal(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	report, err := journal.Summary(cmd.Context())
	if err != nil {
		return err
	}
	analytics.PrintCallReport(cmd.OutOrStdout(), report)
	return nil
}
