// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stellar/go/support/log"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxRequestIDLen = 128
)

// requestContext assigns a request id and puts a request scoped logger in
// the request context.
func requestContext(base *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID(id) {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		logger := base.WithFields(log.F{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(log.Set(c.Request.Context(), logger))

		start := time.Now()
		c.Next()
		logger.WithFields(log.F{
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request finished")
	}
}

// validRequestID accepts a client id of bounded length made of printable
// ASCII without spaces.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// recovery turns a panic in a handler into a structured 500 for that request
// only.
func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Ctx(c.Request.Context()).WithField("panic", fmt.Sprint(recovered)).Error("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: "An unexpected error occurred",
		})
	})
}
