// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the gin handlers of the QA HTTP API.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/groundline/services/qa/citation"
	"github.com/AleutianAI/groundline/services/qa/datatypes"
	"github.com/AleutianAI/groundline/services/qa/engine"
	"github.com/AleutianAI/groundline/services/qa/observability"
)

var tracer = otel.Tracer("groundline.qa.handlers")

// GenerateHandler streams grounded answers as NDJSON.
type GenerateHandler struct {
	engine  *engine.Engine
	metrics *observability.Metrics
}

// NewGenerateHandler wires the handler to the engine and metrics.
func NewGenerateHandler(e *engine.Engine, m *observability.Metrics) *GenerateHandler {
	return &GenerateHandler{engine: e, metrics: m}
}

// Handle implements POST /api/generate.
//
// The response is NDJSON: one chunk object per line, in stream order.
// Malformed input fails fast with 400 before any streaming starts; a
// failure mid-stream emits a terminal error chunk instead, because
// the 200 header is already on the wire.
func (h *GenerateHandler) Handle(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GenerateHandler.Handle")
	defer span.End()

	// Step 1: Bind and validate the request.
	var req datatypes.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RequestsTotal.WithLabelValues("generate", "bad_request").Inc()
		c.String(http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.metrics.RequestsTotal.WithLabelValues("generate", "bad_request").Inc()
		c.String(http.StatusBadRequest, "invalid request: %v", err)
		return
	}
	req.EnsureDefaults()
	span.SetAttributes(attribute.String("qa.session_id", req.SessionID))

	// Step 2: Decode the optional grounding overrides.
	reality, err := req.DecodeReality()
	if err != nil {
		h.metrics.RequestsTotal.WithLabelValues("generate", "bad_request").Inc()
		c.String(http.StatusBadRequest, "invalid reality override: %v", err)
		return
	}
	constitution, err := req.DecodeConstitution()
	if err != nil {
		h.metrics.RequestsTotal.WithLabelValues("generate", "bad_request").Inc()
		c.String(http.StatusBadRequest, "invalid constitution override: %v", err)
		return
	}

	// Step 3: Open the stream.
	SetStreamHeaders(c.Writer)
	writer, err := NewStreamWriter(c.Writer)
	if err != nil {
		h.metrics.RequestsTotal.WithLabelValues("generate", "error").Inc()
		c.String(http.StatusInternalServerError, "streaming not supported")
		return
	}

	h.metrics.ActiveStreams.Inc()
	start := time.Now()
	defer func() {
		h.metrics.ActiveStreams.Dec()
		h.metrics.StreamDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	// Step 4: Run the engine, piping chunks straight to the wire.
	err = h.engine.InvokeStreaming(ctx, engine.Request{
		Question:  req.Question,
		SessionID: req.SessionID,
		Reality:   reality,
		Axioms:    constitution,
	}, func(chunk citation.Chunk) error {
		h.metrics.ChunksTotal.WithLabelValues(string(chunk.Type)).Inc()
		return writer.WriteChunk(chunk)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		slog.Error("Generate stream failed", "session_id", req.SessionID, "error", err)
		h.metrics.RequestsTotal.WithLabelValues("generate", "error").Inc()
		// Headers are already sent; signal failure in-band.
		if werr := writer.WriteError("generation failed"); werr != nil {
			slog.Warn("Could not deliver error chunk", "error", werr)
		}
		return
	}

	h.metrics.RequestsTotal.WithLabelValues("generate", "ok").Inc()
}
