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

// ChunkType discriminates the members of the stream protocol union.
type ChunkType string

const (
	ChunkText            ChunkType = "text"
	ChunkAxiomCitation   ChunkType = "axiom_citation"
	ChunkRealityCitation ChunkType = "reality_citation"
	// ChunkError is a terminal chunk emitted when a stream fails
	// mid-flight, so consumers can tell failure from a normal close.
	ChunkError ChunkType = "error"
)

// Chunk is one element of a streamed answer: plain text, a resolved
// citation, or a terminal error. Exactly the fields for the given
// Type are populated; the rest are omitted on the wire.
type Chunk struct {
	Type        ChunkType `json:"type"`
	Text        string    `json:"text,omitempty"`
	ID          string    `json:"id,omitempty"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// TextChunk returns a plain text chunk.
func TextChunk(text string) Chunk {
	return Chunk{Type: ChunkText, Text: text}
}

// AxiomChunk returns a resolved axiom citation chunk.
func AxiomChunk(id, description string) Chunk {
	return Chunk{Type: ChunkAxiomCitation, ID: id, Description: description}
}

// RealityChunk returns a resolved reality citation chunk.
func RealityChunk(id, description string) Chunk {
	return Chunk{Type: ChunkRealityCitation, ID: id, Description: description}
}

// ErrorChunk returns a terminal error chunk.
func ErrorChunk(msg string) Chunk {
	return Chunk{Type: ChunkError, Error: msg}
}

// Render converts a chunk back to source text. Citations render as
// their original [id] marker, so concatenating Render over a stream
// reconstructs the raw answer exactly.
func (c Chunk) Render() string {
	switch c.Type {
	case ChunkText:
		return c.Text
	case ChunkAxiomCitation, ChunkRealityCitation:
		return "[" + c.ID + "]"
	default:
		return ""
	}
}
