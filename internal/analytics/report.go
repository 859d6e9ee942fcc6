// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"fmt"
	"io"
	"time"
)

type CallReport struct {
	Total     int
	Failures  int
	Functions []FunctionStats
}

type FunctionStats struct {
	Function     string
	Calls        int
	Failures     int
	MeanDuration time.Duration
	MaxDuration  time.Duration
}

func PrintCallReport(w io.Writer, report *CallReport) {
	fmt.Fprintln(w, "📞 Contract Call Report")
	fmt.Fprintln(w, "-----------------------")
	fmt.Fprintf(w, "Calls:    %d\n", report.Total)
	fmt.Fprintf(w, "Failures: %d\n\n", report.Failures)

	if len(report.Functions) == 0 {
		fmt.Fprintln(w, "No calls recorded.")
		return
	}
	fmt.Fprintln(w, "Per-Function:")
	for _, fs := range report.Functions {
		fmt.Fprintf(w, "  %s: %d calls, %d failed, mean %s, max %s\n",
			fs.Function, fs.Calls, fs.Failures,
			fs.MeanDuration.Round(time.Microsecond), fs.MaxDuration.Round(time.Microsecond))
	}
}
