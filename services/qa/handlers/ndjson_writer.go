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
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/AleutianAI/groundline/services/qa/citation"
)

// =============================================================================
// Interface Definition
// =============================================================================

// StreamWriter writes protocol chunks to an NDJSON response, one JSON
// object per line.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; the generate
// handler may interleave chunk writes with a terminal error write.
//
// # Assumptions
//
//   - Caller has set Content-Type: application/x-ndjson before the
//     first write.
type StreamWriter interface {
	// WriteChunk serializes one chunk as a JSON line and flushes.
	WriteChunk(chunk citation.Chunk) error

	// WriteError writes a terminal error chunk. The stream must be
	// closed afterwards; clients treat it as abnormal termination.
	WriteError(errMsg string) error
}

// =============================================================================
// Struct Definition
// =============================================================================

// ndjsonWriter implements StreamWriter over an http.ResponseWriter.
type ndjsonWriter struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
}

// NewStreamWriter creates a StreamWriter for the given ResponseWriter.
// Returns an error if the writer cannot flush, since an unflushed
// stream defeats the point of streaming.
func NewStreamWriter(w http.ResponseWriter) (StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("ResponseWriter does not support http.Flusher")
	}
	return &ndjsonWriter{writer: w, flusher: flusher}, nil
}

// =============================================================================
// Methods
// =============================================================================

// WriteChunk serializes one chunk as a JSON line and flushes.
func (w *ndjsonWriter) WriteChunk(chunk citation.Chunk) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "%s\n", data); err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// WriteError writes a terminal error chunk.
func (w *ndjsonWriter) WriteError(errMsg string) error {
	return w.WriteChunk(citation.ErrorChunk(errMsg))
}

// SetStreamHeaders configures response headers for NDJSON streaming.
// Must be called before the first write.
func SetStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
}

// =============================================================================
// Compile-time Interface Check
// =============================================================================

var _ StreamWriter = (*ndjsonWriter)(nil)
