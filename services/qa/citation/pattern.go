// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package citation defines the citation-marker grammar, the chunk
// protocol emitted to streaming consumers, and the incremental
// scanner that splits LLM output into text and resolved citations.
//
// The marker pattern lives here and ONLY here: the streaming scanner
// and the offline reference extractor must never drift apart on what
// counts as a citation.
package citation

import "regexp"

// markerPattern matches an inline citation marker such as [A-001] or
// [R-17]: a single letter namespace, a dash, and 1-4 digits inside
// square brackets.
const markerPattern = `\[([A-Za-z]-\d{1,4})\]`

var markerRe = regexp.MustCompile(markerPattern)

// Namespace prefixes. The prefix letter of a marker id selects the
// table it resolves against: reality ids carry RealityPrefix, every
// other letter belongs to the axiom namespace.
const (
	AxiomPrefix   = "A-"
	RealityPrefix = "R-"
)

// partialMarkerRe reports whether a string could still grow into a
// full marker, used by the scanner to hold back a possible marker
// head at the end of a delta.
var partialMarkerRe = regexp.MustCompile(`^\[(?:[A-Za-z](?:-\d{0,4})?)?$`)

// ExtractIDs returns the citation ids found in text, deduplicated,
// in first-appearance order.
func ExtractIDs(text string) []string {
	matches := markerRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
