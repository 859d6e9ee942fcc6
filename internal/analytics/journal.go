// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package analytics keeps an optional journal of contract calls and renders
// summaries of it. Only call metadata is stored: no arguments, transactions
// or results.
package analytics

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Call outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeSimError  = "sim_error"
	OutcomeInvalid   = "invalid"
	OutcomeException = "exception"
)

type CallRecord struct {
	RequestID  string
	Function   string
	ContractID string // truncated
	Outcome    string
	Status     int
	Duration   time.Duration
	At         time.Time
}

// Journal appends CallRecords to a sqlite database.
type Journal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS calls (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id  TEXT    NOT NULL,
	function    TEXT    NOT NULL,
	contract_id TEXT    NOT NULL,
	outcome     TEXT    NOT NULL,
	status      INTEGER NOT NULL,
	duration_us INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS calls_function ON calls (function);
`

// OpenJournal opens or creates the journal at path (":memory:" works).
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening journal")
	}
	// A single connection keeps ":memory:" databases coherent and serialises
	// writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating journal schema")
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, rec CallRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO calls (request_id, function, contract_id, outcome, status, duration_us, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Function, rec.ContractID, rec.Outcome, rec.Status,
		rec.Duration.Microseconds(), rec.At.UnixMilli(),
	)
	return errors.Wrap(err, "recording call")
}

// Summary aggregates every recorded call.
func (j *Journal) Summary(ctx context.Context) (*CallReport, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT function,
		       COUNT(*),
		       SUM(CASE WHEN outcome = ? THEN 0 ELSE 1 END),
		       AVG(duration_us),
		       MAX(duration_us)
		FROM calls
		GROUP BY function
		ORDER BY function`, OutcomeSuccess)
	if err != nil {
		return nil, errors.Wrap(err, "querying journal")
	}
	defer rows.Close()

	report := &CallReport{}
	for rows.Next() {
		var (
			fs        FunctionStats
			avg       float64
			maxMicros int64
		)
		if err := rows.Scan(&fs.Function, &fs.Calls, &fs.Failures, &avg, &maxMicros); err != nil {
			return nil, errors.Wrap(err, "scanning journal")
		}
		fs.MeanDuration = time.Duration(avg) * time.Microsecond
		fs.MaxDuration = time.Duration(maxMicros) * time.Microsecond
		report.Total += fs.Calls
		report.Failures += fs.Failures
		report.Functions = append(report.Functions, fs)
	}
	return report, errors.Wrap(rows.Err(), "reading journal")
}
