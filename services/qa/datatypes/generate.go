// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the request and response types of the QA
// HTTP API, with validation.
package datatypes

import (
	"encoding/base64"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AleutianAI/groundline/services/qa/store"
)

// Security limits. Oversized payloads are rejected at validation time
// before any decoding work happens.
const (
	MaxQuestionBytes = 32 * 1024
	MaxOverrideBytes = 256 * 1024
)

var qaValidate *validator.Validate

func init() {
	qaValidate = validator.New()
	// maxbytes limits the byte length of a string field (len() in
	// validator counts runes for strings).
	if err := qaValidate.RegisterValidation("maxbytes", validateMaxBytes); err != nil {
		panic(fmt.Sprintf("failed to register maxbytes validator: %v", err))
	}
}

func validateMaxBytes(fl validator.FieldLevel) bool {
	param := fl.Param()
	var limit int
	if _, err := fmt.Sscanf(param, "%d", &limit); err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// GenerateRequest is the body of POST /api/generate.
//
// Reality and DebugConstitution are optional base64-encoded JSON
// reference files; when present they replace the server's loaded
// tables for this request only.
type GenerateRequest struct {
	Question          string  `json:"question" validate:"required,maxbytes=32768"`
	Reality           *string `json:"reality,omitempty" validate:"omitempty,maxbytes=262144"`
	SessionID         string  `json:"session_id" validate:"omitempty,maxbytes=256"`
	DebugConstitution *string `json:"debugConstitution,omitempty" validate:"omitempty,maxbytes=262144"`
}

// Validate checks field constraints. It does not decode the base64
// overrides; DecodeReality/DecodeConstitution report those errors.
func (r *GenerateRequest) Validate() error {
	return qaValidate.Struct(r)
}

// EnsureDefaults fills a fresh session id when the caller did not
// pick one.
func (r *GenerateRequest) EnsureDefaults() {
	if r.SessionID == "" {
		r.SessionID = uuid.NewString()
	}
}

// DecodeReality decodes the reality override. A nil return with nil
// error means no override was supplied.
func (r *GenerateRequest) DecodeReality() ([]store.Reference, error) {
	return decodeOverride("reality", r.Reality)
}

// DecodeConstitution decodes the constitution override.
func (r *GenerateRequest) DecodeConstitution() ([]store.Reference, error) {
	return decodeOverride("debugConstitution", r.DebugConstitution)
}

func decodeOverride(name string, encoded *string) ([]store.Reference, error) {
	if encoded == nil {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(*encoded)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
	}
	refs, err := store.ParseReferences(name, raw)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// RestartRequest is the body of POST /api/restart.
type RestartRequest struct {
	SessionID string `json:"session_id" validate:"required,maxbytes=256"`
}

// Validate checks field constraints.
func (r *RestartRequest) Validate() error {
	return qaValidate.Struct(r)
}

// RestartResponse acknowledges a session reset.
type RestartResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}
