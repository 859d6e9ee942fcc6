// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stellar/go/support/log"

	"github.com/dotandev/sorogate/internal/analytics"
	"github.com/dotandev/sorogate/internal/scval"
	"github.com/dotandev/sorogate/internal/simulator"
)

const maxBodyBytes = 1 << 20

type readOnlyRequest struct {
	ContractID   string        `json:"contractId"`
	FunctionName string        `json:"functionName"`
	Parameters   []scval.Param `json:"parameters"`
}

type readOnlyResponse struct {
	Success bool    `json:"success"`
	Result  *string `json:"result"`
}

// readOnly handles POST /contract/readonly. Validation happens before any
// node call.
func (s *Server) readOnly(c *gin.Context) {
	start := time.Now()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req readOnlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, start, req, &ValidationError{Title: "Invalid request", Message: err.Error()})
		return
	}
	switch {
	case req.ContractID == "":
		s.fail(c, start, req, missingField("contractId"))
		return
	case req.FunctionName == "":
		s.fail(c, start, req, missingField("functionName"))
		return
	}

	result, err := s.invoke(c, req)
	if err != nil {
		s.fail(c, start, req, err)
		return
	}

	s.logCall(c, start, req).Info("contract call succeeded")
	s.record(c, start, req, analytics.OutcomeSuccess, http.StatusOK)
	c.JSON(http.StatusOK, readOnlyResponse{Success: true, Result: result})
}

func (s *Server) invoke(c *gin.Context, req readOnlyRequest) (*string, error) {
	args, err := scval.EncodeAll(req.Parameters)
	if err != nil {
		return nil, err
	}
	out, err := s.sim.Simulate(c.Request.Context(), simulator.Call{
		ContractID: req.ContractID,
		Function:   req.FunctionName,
		Args:       args,
	})
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return nil, err
	}
	return scval.DecodeResult(out.ReturnValue)
}

func (s *Server) fail(c *gin.Context, start time.Time, req readOnlyRequest, err error) {
	status, body, outcome := classify(err, s.cfg.IsDevelopment())
	logger := s.logCall(c, start, req).WithFields(log.F{
		"status": status,
		"err":    err.Error(),
	})
	if status >= http.StatusInternalServerError {
		logger.Error("contract call failed")
	} else {
		logger.Warn("contract call rejected")
	}
	s.record(c, start, req, outcome, status)
	c.JSON(status, body)
}

func (s *Server) logCall(c *gin.Context, start time.Time, req readOnlyRequest) *log.Entry {
	return log.Ctx(c.Request.Context()).WithFields(log.F{
		"function": req.FunctionName,
		"contract": simulator.ShortID(req.ContractID),
		"params":   len(req.Parameters),
		"duration": time.Since(start).String(),
	})
}

func (s *Server) record(c *gin.Context, start time.Time, req readOnlyRequest, outcome string, status int) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(c.Request.Context(), analytics.CallRecord{
		RequestID:  requestID(c),
		Function:   req.FunctionName,
		ContractID: simulator.ShortID(req.ContractID),
		Outcome:    outcome,
		Status:     status,
		Duration:   time.Since(start),
		At:         start,
	})
	if err != nil {
		log.Ctx(c.Request.Context()).WithField("err", err.Error()).Warn("journal write failed")
	}
}
