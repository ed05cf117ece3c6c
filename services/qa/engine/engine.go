// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine orchestrates one question-answer turn: prompt
// assembly, LLM streaming, citation scanning, and thread bookkeeping.
package engine

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/groundline/services/llm"
	"github.com/AleutianAI/groundline/services/qa/citation"
	"github.com/AleutianAI/groundline/services/qa/session"
	"github.com/AleutianAI/groundline/services/qa/store"
)

var tracer = otel.Tracer("groundline.qa.engine")

// Request is one question plus its grounding context. Nil Reality or
// Axioms means "use the service's loaded tables"; non-nil slices are
// per-request overrides and do not touch the shared store.
type Request struct {
	Question  string
	SessionID string
	Reality   []store.Reference
	Axioms    []store.Reference
}

// Engine answers questions grounded in the reference store, one
// session thread per caller.
type Engine struct {
	client   llm.LLMClient
	store    *store.Store
	sessions *session.Manager
	params   llm.GenerationParams
}

// New builds an engine. The session manager seeds threads with
// SystemPrompt; passing a manager built with a different prompt is
// the caller's choice.
func New(client llm.LLMClient, st *store.Store, sessions *session.Manager, params llm.GenerationParams) *Engine {
	return &Engine{
		client:   client,
		store:    st,
		sessions: sessions,
		params:   params,
	}
}

// Sessions exposes the session manager for administrative surfaces
// (reset endpoint).
func (e *Engine) Sessions() *session.Manager { return e.sessions }

// InvokeStreaming answers req, delivering the answer as protocol
// chunks through emit in stream order.
//
// # Description
//
//	Step 1: resolve the effective axiom and reality tables (request
//	overrides or store defaults) and build the user prompt.
//	Step 2: stream the completion over the session history, piping
//	every delta through the citation scanner.
//	Step 3: on success, commit the user/assistant pair to the thread.
//
// A failed stream commits nothing: a retry with the same session id
// sees the thread exactly as it was before the failed call.
func (e *Engine) InvokeStreaming(ctx context.Context, req Request, emit citation.EmitFunc) error {
	ctx, span := tracer.Start(ctx, "Engine.InvokeStreaming")
	defer span.End()
	span.SetAttributes(
		attribute.String("qa.session_id", req.SessionID),
		attribute.Bool("qa.reality_override", req.Reality != nil),
		attribute.Bool("qa.axiom_override", req.Axioms != nil),
	)

	// Step 1: effective grounding context.
	axioms := req.Axioms
	if axioms == nil {
		axioms = e.store.Axioms()
	}
	realities := req.Reality
	if realities == nil {
		realities = e.store.Realities()
	}
	var resolver citation.Resolver = e.store
	if req.Axioms != nil || req.Reality != nil {
		resolver = store.NewStore(axioms, realities)
	}

	userPrompt := BuildUserPrompt(axioms, realities, req.Question)
	thread := e.sessions.GetOrCreate(req.SessionID)
	messages := append(thread.Snapshot(), llm.Message{Role: llm.RoleUser, Content: userPrompt})

	// Step 2: stream and scan.
	var answer strings.Builder
	scanner := citation.NewScanner(resolver, emit)
	err := e.client.ChatStream(ctx, messages, e.params, func(delta string) error {
		answer.WriteString(delta)
		return scanner.Write(delta)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		slog.Error("Streaming generation failed", "session_id", req.SessionID, "error", err)
		return err
	}
	if err := scanner.Close(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chunk delivery failed")
		return err
	}

	// Step 3: commit the completed turn.
	thread.Append(userPrompt, answer.String())
	slog.Debug("Turn committed", "session_id", req.SessionID, "answer_bytes", answer.Len())
	return nil
}

// Invoke answers req and returns the full answer text, with citation
// markers rendered back as [id].
func (e *Engine) Invoke(ctx context.Context, req Request) (string, error) {
	var sb strings.Builder
	err := e.InvokeStreaming(ctx, req, func(c citation.Chunk) error {
		sb.WriteString(c.Render())
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
