// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders an evaluation run as a single self-contained
// HTML file.
package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
)

//go:embed templates/*
var templatesFS embed.FS

// Palette carries the score colors through the render call chain.
// Callers that want different thresholds or colors pass their own.
type Palette struct {
	Good       string
	GoodMin    float64
	Partial    string
	PartialMin float64
	Poor       string
}

// DefaultPalette is the standard traffic-light scheme.
func DefaultPalette() Palette {
	return Palette{
		Good:       "#2e7d32",
		GoodMin:    0.8,
		Partial:    "#f9a825",
		PartialMin: 0.5,
		Poor:       "#c62828",
	}
}

// Color returns the palette color for a score in [0, 1].
func (p Palette) Color(score float64) string {
	switch {
	case score >= p.GoodMin:
		return p.Good
	case score >= p.PartialMin:
		return p.Partial
	default:
		return p.Poor
	}
}

type summaryRow struct {
	Name   string
	Metric datatypes.Metric
	Color  string
}

type itemView struct {
	Output datatypes.EvaluationOutput
	Colors map[string]string
}

type reportData struct {
	Generated   string
	Palette     Palette
	FailedItems int
	Summary     []summaryRow
	Items       []itemView
	Axioms      []referenceView
	Realities   []referenceView
	RawJSON     template.JS
}

type referenceView struct {
	ID          string
	Description string
}

// Renderer renders evaluation results with a fixed palette.
type Renderer struct {
	palette Palette
	tmpl    *template.Template
}

// NewRenderer parses the embedded template. Pass DefaultPalette() for
// the standard colors.
func NewRenderer(p Palette) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{palette: p, tmpl: tmpl}, nil
}

// Render produces the HTML document for one evaluation result.
func (r *Renderer) Render(result *datatypes.EvaluationResult, generated string) ([]byte, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result for report: %w", err)
	}

	data := reportData{
		Generated:   generated,
		Palette:     r.palette,
		FailedItems: result.FailedItems,
		Summary: []summaryRow{
			{Name: "Accuracy", Metric: result.Accuracy},
			{Name: "Topic Coverage", Metric: result.TopicCoverage},
			{Name: "Axiom Precision", Metric: result.AxiomPrecisionMetric},
			{Name: "Axiom Recall", Metric: result.AxiomRecallMetric},
			{Name: "Reality Precision", Metric: result.RealityPrecisionMetric},
			{Name: "Reality Recall", Metric: result.RealityRecallMetric},
		},
		RawJSON: template.JS(raw),
	}
	for i := range data.Summary {
		data.Summary[i].Color = r.palette.Color(data.Summary[i].Metric.Mean)
	}
	for _, o := range result.EvaluationOutputs {
		data.Items = append(data.Items, itemView{
			Output: o,
			Colors: map[string]string{
				"accuracy":  r.palette.Color(o.Accuracy.AccuracyMean),
				"coverage":  r.palette.Color(o.TopicCoverage.CoverageScore),
				"axiom":     r.palette.Color(o.AxiomReferences.Recall),
				"reality":   r.palette.Color(o.RealityReferences.Recall),
				"precision": r.palette.Color(o.AxiomReferences.Precision),
			},
		})
	}
	for _, ref := range result.AxiomDefinitions {
		data.Axioms = append(data.Axioms, referenceView{ID: ref.ID, Description: ref.Description})
	}
	for _, ref := range result.RealityDefinitions {
		data.Realities = append(data.Realities, referenceView{ID: ref.ID, Description: ref.Description})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReport renders the result and writes report.html into dir.
// It returns the written path.
func (r *Renderer) WriteReport(result *datatypes.EvaluationResult, dir, generated string) (string, error) {
	html, err := r.Render(result, generated)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, "report.html")
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
