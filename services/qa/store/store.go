// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store holds the grounding references an answer may cite:
// the constitution of axioms (immutable for the process lifetime) and
// the current reality statements (replaceable as a whole).
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Reference is one citable statement. Source files may carry extra
// fields (entity, attribute, value, number); only id and description
// are kept.
type Reference struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// DataFormatError reports an unusable reference file. It is fatal at
// load time: a store is never built from partial data.
type DataFormatError struct {
	Path string
	Err  error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("reference data %s: %v", e.Path, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// LoadReferences parses a JSON array of references from path.
//
// Unknown fields are ignored. An entry missing id or description is a
// DataFormatError. Duplicate ids are allowed; the later entry wins on
// lookup.
func LoadReferences(path string) ([]Reference, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read references: %w", err)
	}
	return ParseReferences(path, raw)
}

// ParseReferences parses raw JSON reference data. The path is used
// only for error reporting.
func ParseReferences(path string, raw []byte) ([]Reference, error) {
	var refs []Reference
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, &DataFormatError{Path: path, Err: err}
	}
	for i, r := range refs {
		if r.ID == "" || r.Description == "" {
			return nil, &DataFormatError{
				Path: path,
				Err:  fmt.Errorf("entry %d missing id or description", i),
			}
		}
	}
	return refs, nil
}

// Store resolves citation ids against the axiom and reality tables.
//
// Axioms are frozen at construction. The reality table can be swapped
// atomically via ReplaceReality (used by the file watcher and by
// per-request overrides building derived stores).
type Store struct {
	axioms    []Reference
	axiomIdx  map[string]string
	mu        sync.RWMutex
	realities []Reference
	realIdx   map[string]string
}

// NewStore builds a store over the given reference slices.
func NewStore(axioms, realities []Reference) *Store {
	s := &Store{
		axioms:   axioms,
		axiomIdx: index(axioms),
	}
	s.ReplaceReality(realities)
	return s
}

// Load builds a store from the axiom and reality files. Either error
// is a DataFormatError (or an I/O error) and should abort startup.
func Load(axiomPath, realityPath string) (*Store, error) {
	axioms, err := LoadReferences(axiomPath)
	if err != nil {
		return nil, err
	}
	realities, err := LoadReferences(realityPath)
	if err != nil {
		return nil, err
	}
	return NewStore(axioms, realities), nil
}

func index(refs []Reference) map[string]string {
	idx := make(map[string]string, len(refs))
	for _, r := range refs {
		idx[r.ID] = r.Description
	}
	return idx
}

// ResolveAxiom returns the description for an axiom id. A miss is not
// an error.
func (s *Store) ResolveAxiom(id string) (string, bool) {
	desc, ok := s.axiomIdx[id]
	return desc, ok
}

// ResolveReality returns the description for a reality id.
func (s *Store) ResolveReality(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	desc, ok := s.realIdx[id]
	return desc, ok
}

// Axioms returns the axiom list in load order.
func (s *Store) Axioms() []Reference {
	out := make([]Reference, len(s.axioms))
	copy(out, s.axioms)
	return out
}

// Realities returns the current reality list in load order.
func (s *Store) Realities() []Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Reference, len(s.realities))
	copy(out, s.realities)
	return out
}

// ReplaceReality swaps the whole reality table. Readers mid-lookup
// finish against the old table; no reader ever sees a mix.
func (s *Store) ReplaceReality(realities []Reference) {
	idx := index(realities)
	s.mu.Lock()
	s.realities = realities
	s.realIdx = idx
	s.mu.Unlock()
}

// IsDataFormatError reports whether err is (or wraps) a
// DataFormatError.
func IsDataFormatError(err error) bool {
	var dfe *DataFormatError
	return errors.As(err, &dfe)
}
