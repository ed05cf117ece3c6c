// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/AleutianAI/groundline/services/qa/store"
)

func TestGenerateRequestValidation(t *testing.T) {
	valid := GenerateRequest{Question: "what now?"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	empty := GenerateRequest{}
	if err := empty.Validate(); err == nil {
		t.Error("empty question must be rejected")
	}

	huge := GenerateRequest{Question: strings.Repeat("x", MaxQuestionBytes+1)}
	if err := huge.Validate(); err == nil {
		t.Error("oversized question must be rejected")
	}
}

func TestEnsureDefaultsFillsSessionID(t *testing.T) {
	r := GenerateRequest{Question: "q"}
	r.EnsureDefaults()
	if r.SessionID == "" {
		t.Error("EnsureDefaults must assign a session id")
	}

	pinned := GenerateRequest{Question: "q", SessionID: "mine"}
	pinned.EnsureDefaults()
	if pinned.SessionID != "mine" {
		t.Errorf("EnsureDefaults must keep a caller-chosen id, got %q", pinned.SessionID)
	}
}

func TestDecodeRealityRoundTrip(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`[{"id": "R-1", "description": "a fact", "entity": "e"}]`))
	r := GenerateRequest{Question: "q", Reality: &encoded}
	refs, err := r.DecodeReality()
	if err != nil {
		t.Fatalf("DecodeReality failed: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "R-1" || refs[0].Description != "a fact" {
		t.Errorf("unexpected references: %+v", refs)
	}
}

func TestDecodeRealityAbsentIsNil(t *testing.T) {
	r := GenerateRequest{Question: "q"}
	refs, err := r.DecodeReality()
	if err != nil {
		t.Fatalf("DecodeReality failed: %v", err)
	}
	if refs != nil {
		t.Errorf("absent override must decode to nil, got %+v", refs)
	}
}

func TestDecodeRealityBadPayloads(t *testing.T) {
	notB64 := "!!! not base64 !!!"
	r := GenerateRequest{Question: "q", Reality: &notB64}
	if _, err := r.DecodeReality(); err == nil {
		t.Error("invalid base64 must be rejected")
	}

	badJSON := base64.StdEncoding.EncodeToString([]byte(`{"nope": true}`))
	r = GenerateRequest{Question: "q", Reality: &badJSON}
	_, err := r.DecodeReality()
	if err == nil {
		t.Fatal("invalid reference JSON must be rejected")
	}
	if !store.IsDataFormatError(err) {
		t.Errorf("expected DataFormatError, got %v", err)
	}
}

func TestDecodeConstitutionOverride(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`[{"id": "A-9", "description": "debug axiom"}]`))
	r := GenerateRequest{Question: "q", DebugConstitution: &encoded}
	refs, err := r.DecodeConstitution()
	if err != nil {
		t.Fatalf("DecodeConstitution failed: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "A-9" {
		t.Errorf("unexpected references: %+v", refs)
	}
}

func TestRestartRequestValidation(t *testing.T) {
	if err := (&RestartRequest{SessionID: "s"}).Validate(); err != nil {
		t.Errorf("valid restart rejected: %v", err)
	}
	if err := (&RestartRequest{}).Validate(); err == nil {
		t.Error("restart without a session id must be rejected")
	}
}
