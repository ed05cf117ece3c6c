// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/groundline/services/qa/datatypes"
	"github.com/AleutianAI/groundline/services/qa/observability"
	"github.com/AleutianAI/groundline/services/qa/session"
)

// SessionHandler administers session threads.
type SessionHandler struct {
	sessions *session.Manager
	metrics  *observability.Metrics
}

// NewSessionHandler wires the handler to the session manager.
func NewSessionHandler(sessions *session.Manager, m *observability.Metrics) *SessionHandler {
	return &SessionHandler{sessions: sessions, metrics: m}
}

// Restart implements POST /api/restart. Resetting an unknown session
// still succeeds; the outcome (session gone) is the same either way.
func (h *SessionHandler) Restart(c *gin.Context) {
	var req datatypes.RestartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RequestsTotal.WithLabelValues("restart", "bad_request").Inc()
		c.String(http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.metrics.RequestsTotal.WithLabelValues("restart", "bad_request").Inc()
		c.String(http.StatusBadRequest, "invalid request: %v", err)
		return
	}

	h.sessions.Reset(req.SessionID)
	h.metrics.RequestsTotal.WithLabelValues("restart", "ok").Inc()
	c.JSON(http.StatusOK, datatypes.RestartResponse{
		Status:    "reset",
		SessionID: req.SessionID,
	})
}
