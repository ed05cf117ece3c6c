// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrecisionRecall(t *testing.T) {
	cases := []struct {
		name      string
		found     []string
		expected  []string
		precision float64
		recall    float64
	}{
		{"perfect_match", []string{"A-001", "A-002"}, []string{"A-001", "A-002"}, 1.0, 1.0},
		{"both_empty", []string{}, []string{}, 1.0, 1.0},
		{"found_empty", []string{}, []string{"A-001", "A-002"}, 0.0, 0.0},
		{"expected_empty", []string{"A-001"}, []string{}, 0.0, 0.0},
		{"partial_overlap", []string{"A-001", "A-002", "A-004"}, []string{"A-001", "A-002", "A-003"}, 0.6667, 0.6667},
		{"no_overlap", []string{"A-001", "A-002"}, []string{"A-003", "A-004"}, 0.0, 0.0},
		{"all_correct_missing_some", []string{"A-001"}, []string{"A-001", "A-002", "A-003"}, 1.0, 0.3333},
		{"found_more_than_expected", []string{"A-001", "A-002", "A-003", "A-004"}, []string{"A-001", "A-002"}, 0.5, 1.0},
		{"duplicates_handled", []string{"A-001", "A-001", "A-002"}, []string{"A-001", "A-002"}, 1.0, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			precision, recall := PrecisionRecall(tc.found, tc.expected)
			assert.InDelta(t, tc.precision, precision, 1e-9)
			assert.InDelta(t, tc.recall, recall, 1e-9)
		})
	}
}

func TestExtractReferences(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		prefix   string
		expected []string
	}{
		{"single_axiom", "Based on [A-001], rates rise.", AxiomPrefix, []string{"A-001"}},
		{"multiple_axioms", "Per [A-001] and [A-002], volatile. [A-015].", AxiomPrefix, []string{"A-001", "A-002", "A-015"}},
		{"no_axioms", "The economy is doing well.", AxiomPrefix, nil},
		{"number_lengths", "[A-1] [A-12] [A-123] [A-1234]", AxiomPrefix, []string{"A-1", "A-12", "A-123", "A-1234"}},
		{"invalid_patterns", "[A001] A-001 [A-] [A-abc]", AxiomPrefix, nil},
		{"reality_only", "Based on [A-001] and [R-001], see [R-007].", RealityPrefix, []string{"R-001", "R-007"}},
		{"axiom_only", "Based on [A-001] and [R-001], with [A-002].", AxiomPrefix, []string{"A-001", "A-002"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractReferences(tc.text, tc.prefix))
		})
	}
}

func TestEvaluateReferences(t *testing.T) {
	result := EvaluateReferences(
		"Per [A-001] and [A-002], also [A-004] applies.",
		[]string{"A-001", "A-002", "A-003"},
		AxiomPrefix,
	)
	assert.Equal(t, []string{"A-001", "A-002", "A-004"}, result.ReferencesFound)
	assert.Equal(t, []string{"A-001", "A-002", "A-003"}, result.ReferencesExpected)
	assert.InDelta(t, 0.6667, result.Precision, 1e-9)
	assert.InDelta(t, 0.6667, result.Recall, 1e-9)
}
