// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
)

type HealthResponse struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	OldestLedger          uint32 `json:"oldestLedger"`
	LedgerRetentionWindow uint32 `json:"ledgerRetentionWindow"`
}

type NetworkResponse struct {
	FriendbotURL    string `json:"friendbotUrl,omitempty"`
	Passphrase      string `json:"passphrase"`
	ProtocolVersion int    `json:"protocolVersion"`
}

type VersionInfoResponse struct {
	Version            string `json:"version"`
	CommitHash         string `json:"commitHash"`
	BuildTimestamp     string `json:"buildTimestamp"`
	CaptiveCoreVersion string `json:"captiveCoreVersion"`
	ProtocolVersion    uint32 `json:"protocolVersion"`
}

func (c *Client) GetHealth(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.Call(ctx, "getHealth", nil, &resp)
	return resp, err
}

func (c *Client) GetNetwork(ctx context.Context) (NetworkResponse, error) {
	var resp NetworkResponse
	err := c.Call(ctx, "getNetwork", nil, &resp)
	return resp, err
}

func (c *Client) GetVersionInfo(ctx context.Context) (VersionInfoResponse, error) {
	var resp VersionInfoResponse
	err := c.Call(ctx, "getVersionInfo", nil, &resp)
	return resp, err
}
