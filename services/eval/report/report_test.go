// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
	"github.com/AleutianAI/groundline/services/qa/store"
)

func sampleResult() *datatypes.EvaluationResult {
	return &datatypes.EvaluationResult{
		EvaluationOutputs: []datatypes.EvaluationOutput{
			{
				Input: datatypes.EvaluationItem{
					ID:             7,
					Query:          "does smoking raise mortality?",
					ExpectedAnswer: "Yes [A-001].",
					AxiomsUsed:     []string{"A-001"},
					RealityUsed:    []string{},
				},
				LLMResponse:   "Yes, per the constitution [A-001].",
				Accuracy:      datatypes.AccuracyResults{AccuracyMean: 1.0},
				TopicCoverage: datatypes.TopicCoverageResults{Reason: "covered", CoverageScore: 0.6},
				AxiomReferences: datatypes.ReferenceResults{
					ReferencesFound:    []string{"A-001"},
					ReferencesExpected: []string{"A-001"},
					Precision:          1.0,
					Recall:             1.0,
				},
			},
		},
		FailedItems:          1,
		Accuracy:             datatypes.Metric{Mean: 1.0},
		TopicCoverage:        datatypes.Metric{Mean: 0.6},
		AxiomPrecisionMetric: datatypes.Metric{Mean: 1.0},
		AxiomRecallMetric:    datatypes.Metric{Mean: 0.3},
		AxiomDefinitions: []store.Reference{
			{ID: "A-001", Description: "Do no harm"},
		},
	}
}

func TestRenderContainsScoresAndDefinitions(t *testing.T) {
	r, err := NewRenderer(DefaultPalette())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	html, err := r.Render(sampleResult(), "2025-11-02 10:00")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(html)

	for _, want := range []string{
		"does smoking raise mortality?",
		"Yes, per the constitution [A-001].",
		"Do no harm",
		"0.6000",
		"1 item(s) failed",
		"2025-11-02 10:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}

func TestPaletteColorBands(t *testing.T) {
	p := DefaultPalette()
	cases := []struct {
		score float64
		want  string
	}{
		{1.0, p.Good},
		{0.8, p.Good},
		{0.79, p.Partial},
		{0.5, p.Partial},
		{0.49, p.Poor},
		{0.0, p.Poor},
	}
	for _, tc := range cases {
		if got := p.Color(tc.score); got != tc.want {
			t.Errorf("Color(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestPaletteIsNotShared(t *testing.T) {
	a := DefaultPalette()
	a.Good = "#000000"
	b := DefaultPalette()
	if b.Good == "#000000" {
		t.Fatal("DefaultPalette must return an independent value each call")
	}

	custom := Palette{Good: "green", GoodMin: 0.9, Partial: "yellow", PartialMin: 0.6, Poor: "red"}
	if got := custom.Color(0.85); got != "yellow" {
		t.Errorf("custom palette Color(0.85) = %q, want yellow", got)
	}
}

func TestWriteReport(t *testing.T) {
	r, err := NewRenderer(DefaultPalette())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "report")
	path, err := r.WriteReport(sampleResult(), dir, "now")
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if filepath.Base(path) != "report.html" {
		t.Errorf("unexpected report path %q", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(raw), "<!DOCTYPE html>") {
		t.Error("report is not an HTML document")
	}
}
