// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package citation

import "strings"

// Resolver looks citation ids up in the reference tables. A false
// second return means the id is unknown in that namespace.
type Resolver interface {
	ResolveAxiom(id string) (description string, ok bool)
	ResolveReality(id string) (description string, ok bool)
}

// EmitFunc receives each protocol chunk in stream order. Returning an
// error aborts the scan and propagates to the caller of Write/Close.
type EmitFunc func(Chunk) error

// Scanner incrementally splits LLM text deltas into protocol chunks.
//
// # Description
//
//	Deltas arrive in arbitrary pieces; a citation marker may straddle
//	any chunk boundary. The scanner buffers just enough of the tail
//	to never mistake a split marker for plain text: a trailing
//	substring that could still grow into a marker is held until the
//	next Write (or Close) settles it.
//
//	Markers that resolve against the Resolver are emitted as citation
//	chunks. Markers that do not resolve are not errors; they stay in
//	the surrounding text, so a run of text containing only unresolved
//	markers comes out as a single text chunk.
//
// # Assumptions
//   - Write and Close are called from one goroutine (one scanner per
//     stream).
//   - Close is called exactly once, after the last delta.
type Scanner struct {
	resolver Resolver
	emit     EmitFunc

	buf     string // unscanned tail, possibly a marker head
	pending string // scanned text not yet emitted
}

// NewScanner builds a scanner that resolves against resolver and
// forwards chunks to emit.
func NewScanner(resolver Resolver, emit EmitFunc) *Scanner {
	return &Scanner{resolver: resolver, emit: emit}
}

// Write scans one delta. Text settled by this delta is emitted as a
// single text chunk (if any), interleaved with citation chunks in
// source order.
func (s *Scanner) Write(delta string) error {
	s.buf += delta

	for {
		loc := markerRe.FindStringSubmatchIndex(s.buf)
		if loc == nil {
			break
		}
		s.pending += s.buf[:loc[0]]
		id := s.buf[loc[2]:loc[3]]
		marker := s.buf[loc[0]:loc[1]]
		s.buf = s.buf[loc[1]:]

		// The prefix letter picks the namespace; an id never resolves
		// against the other table.
		if strings.HasPrefix(id, RealityPrefix) {
			if desc, ok := s.resolver.ResolveReality(id); ok {
				if err := s.flushPending(); err != nil {
					return err
				}
				if err := s.emit(RealityChunk(id, desc)); err != nil {
					return err
				}
				continue
			}
		} else if desc, ok := s.resolver.ResolveAxiom(id); ok {
			if err := s.flushPending(); err != nil {
				return err
			}
			if err := s.emit(AxiomChunk(id, desc)); err != nil {
				return err
			}
			continue
		}
		// Unknown id: the marker stays literal text.
		s.pending += marker
	}

	// Hold back a tail that could still become a marker once more
	// bytes arrive; everything before it is settled.
	hold := len(s.buf)
	if idx := strings.LastIndexByte(s.buf, '['); idx >= 0 && partialMarkerRe.MatchString(s.buf[idx:]) {
		hold = idx
	}
	s.pending += s.buf[:hold]
	s.buf = s.buf[hold:]

	return s.flushPending()
}

// Close settles and emits whatever remains, including a held-back
// marker head that never completed.
func (s *Scanner) Close() error {
	s.pending += s.buf
	s.buf = ""
	return s.flushPending()
}

func (s *Scanner) flushPending() error {
	if s.pending == "" {
		return nil
	}
	text := s.pending
	s.pending = ""
	return s.emit(TextChunk(text))
}
