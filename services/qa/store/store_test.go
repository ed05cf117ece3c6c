// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadReferencesIgnoresUnknownFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "reality.json", `[
		{"id": "R-1", "description": "water boils at 100C", "entity": "water", "attribute": "boiling_point", "value": "100C", "number": 100},
		{"id": "R-2", "description": "the sky is blue"}
	]`)
	refs, err := LoadReferences(path)
	if err != nil {
		t.Fatalf("LoadReferences failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
	if refs[0].ID != "R-1" || refs[0].Description != "water boils at 100C" {
		t.Errorf("unexpected first reference: %+v", refs[0])
	}
}

func TestLoadReferencesRejectsBadData(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"not_json.json":     `{{{{`,
		"missing_id.json":   `[{"description": "no id"}]`,
		"missing_desc.json": `[{"id": "A-1"}]`,
		"wrong_shape.json":  `{"id": "A-1", "description": "not an array"}`,
	}
	for name, content := range cases {
		path := writeFile(t, dir, name, content)
		_, err := LoadReferences(path)
		if err == nil {
			t.Errorf("%s: expected an error", name)
			continue
		}
		if !IsDataFormatError(err) {
			t.Errorf("%s: expected DataFormatError, got %v", name, err)
		}
	}
}

func TestStoreLookups(t *testing.T) {
	s := NewStore(
		[]Reference{{ID: "A-001", Description: "first axiom"}},
		[]Reference{{ID: "R-1", Description: "a fact"}},
	)
	if desc, ok := s.ResolveAxiom("A-001"); !ok || desc != "first axiom" {
		t.Errorf("ResolveAxiom(A-001) = %q, %v", desc, ok)
	}
	if _, ok := s.ResolveAxiom("A-999"); ok {
		t.Error("ResolveAxiom on a missing id should not be found")
	}
	if desc, ok := s.ResolveReality("R-1"); !ok || desc != "a fact" {
		t.Errorf("ResolveReality(R-1) = %q, %v", desc, ok)
	}
}

func TestStoreDuplicateIDLastWins(t *testing.T) {
	s := NewStore(
		[]Reference{
			{ID: "A-1", Description: "old"},
			{ID: "A-1", Description: "new"},
		},
		nil,
	)
	if desc, _ := s.ResolveAxiom("A-1"); desc != "new" {
		t.Errorf("expected later duplicate to win, got %q", desc)
	}
}

func TestStoreListsPreserveOrder(t *testing.T) {
	axioms := []Reference{
		{ID: "A-2", Description: "b"},
		{ID: "A-1", Description: "a"},
	}
	s := NewStore(axioms, nil)
	got := s.Axioms()
	for i := range axioms {
		if got[i] != axioms[i] {
			t.Fatalf("axiom order changed: %+v", got)
		}
	}
}

func TestReplaceRealitySwapsWholeTable(t *testing.T) {
	s := NewStore(nil, []Reference{{ID: "R-1", Description: "old fact"}})
	s.ReplaceReality([]Reference{{ID: "R-2", Description: "new fact"}})
	if _, ok := s.ResolveReality("R-1"); ok {
		t.Error("old reality id should be gone after replacement")
	}
	if desc, ok := s.ResolveReality("R-2"); !ok || desc != "new fact" {
		t.Errorf("ResolveReality(R-2) = %q, %v", desc, ok)
	}
}

func TestWatcherReloadKeepsOldTableOnBadData(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reality.json", `[{"id": "R-1", "description": "good"}]`)
	s, err := Load(writeFile(t, dir, "axioms.json", `[]`), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rw, err := NewRealityWatcher(path, s)
	if err != nil {
		t.Fatalf("NewRealityWatcher failed: %v", err)
	}
	defer rw.watcher.Close()

	writeFile(t, dir, "reality.json", `{{ broken`)
	rw.reload()
	if desc, ok := s.ResolveReality("R-1"); !ok || desc != "good" {
		t.Errorf("bad reload should keep the old table, got %q, %v", desc, ok)
	}

	writeFile(t, dir, "reality.json", `[{"id": "R-2", "description": "fresh"}]`)
	rw.reload()
	if _, ok := s.ResolveReality("R-2"); !ok {
		t.Error("good reload should swap in the new table")
	}
}
