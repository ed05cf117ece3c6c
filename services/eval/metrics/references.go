// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics computes the deterministic evaluation scores:
// citation precision/recall and the judge-backed coverage and
// accuracy wrappers with their empty-set conventions.
package metrics

import (
	"math"
	"strings"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
	"github.com/AleutianAI/groundline/services/qa/citation"
)

// Namespace prefixes of citation ids, shared with the streaming
// scanner's dispatch.
const (
	AxiomPrefix   = citation.AxiomPrefix
	RealityPrefix = citation.RealityPrefix
)

// round4 keeps scores stable across runs and readable in reports.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// PrecisionRecall scores found against expected as sets (duplicates
// collapse). Conventions:
//
//   - both empty: precision = recall = 1.0 (nothing was required,
//     nothing was invented)
//   - found empty, expected not: 0.0 / 0.0
//   - found not empty, expected empty: 0.0 / 0.0
//
// Values are rounded to 4 decimals.
func PrecisionRecall(found, expected []string) (precision, recall float64) {
	foundSet := toSet(found)
	expectedSet := toSet(expected)

	if len(foundSet) == 0 && len(expectedSet) == 0 {
		return 1.0, 1.0
	}
	if len(foundSet) == 0 || len(expectedSet) == 0 {
		return 0.0, 0.0
	}

	var hits int
	for id := range foundSet {
		if _, ok := expectedSet[id]; ok {
			hits++
		}
	}
	precision = round4(float64(hits) / float64(len(foundSet)))
	recall = round4(float64(hits) / float64(len(expectedSet)))
	return precision, recall
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// ExtractReferences returns the citation ids with the given namespace
// prefix found in text, deduplicated, in first-appearance order. The
// marker grammar is the same one the streaming scanner uses.
func ExtractReferences(text, prefix string) []string {
	var out []string
	for _, id := range citation.ExtractIDs(text) {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out
}

// EvaluateReferences scores one namespace of citations in answer
// against the dataset's expected ids.
func EvaluateReferences(answer string, expected []string, prefix string) datatypes.ReferenceResults {
	found := ExtractReferences(answer, prefix)
	precision, recall := PrecisionRecall(found, expected)
	return datatypes.ReferenceResults{
		ReferencesFound:    found,
		ReferencesExpected: expected,
		Precision:          precision,
		Recall:             recall,
	}
}
