// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the dataset and result models of the
// evaluation service. Field names follow the evaluation output JSON
// contract; results written by one run must load back bit-identical.
package datatypes

import (
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/groundline/services/qa/store"
)

// Entity is a causal relationship between two variables: a trigger
// (cause) and its consequence (effect). Example: tobacco use
// significantly increases mortality risk.
type Entity struct {
	TriggerVariable     string `json:"trigger_variable"`
	ConsequenceVariable string `json:"consequence_variable"`
}

// EntityExtraction holds the entities the judge extracted from each
// of the three texts of one evaluation sample.
type EntityExtraction struct {
	UserQueryEntities      []Entity `json:"user_query_entities"`
	LLMAnswerEntities      []Entity `json:"llm_answer_entities"`
	ExpectedAnswerEntities []Entity `json:"expected_answer_entities"`
}

// EntityAccuracy is the judged directional accuracy of one expected
// entity against the generated answer.
type EntityAccuracy struct {
	Entity Entity  `json:"entity"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

// AccuracyResults aggregates per-entity accuracy for one sample.
type AccuracyResults struct {
	EntityAccuracies []EntityAccuracy `json:"entity_accuracies"`
	AccuracyMean     float64          `json:"accuracy_mean"`
}

// TopicCoverageResults is the judged recall of expected topics in the
// generated answer.
type TopicCoverageResults struct {
	Reason        string  `json:"reason"`
	CoverageScore float64 `json:"coverage_score"`
}

// ReferenceResults compares citation ids found in the generated
// answer against the ids the dataset expects, in one namespace
// (axiom or reality).
type ReferenceResults struct {
	ReferencesFound    []string `json:"references_found"`
	ReferencesExpected []string `json:"references_expected"`
	Precision          float64  `json:"precision"`
	Recall             float64  `json:"recall"`
}

// Metric is a mean with its population standard deviation. Std is 0
// when fewer than two samples exist.
type Metric struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Reasoning is a list of reasoning steps. Older datasets carry a
// single string; both shapes load.
type Reasoning []string

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (r *Reasoning) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*r = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = Reasoning{single}
		return nil
	}
	return fmt.Errorf("reasoning must be a string or a list of strings")
}

// EvaluationItem is one sample of the evaluation dataset.
type EvaluationItem struct {
	ID             int       `json:"id"`
	Query          string    `json:"query"`
	Context        string    `json:"context"`
	ExpectedAnswer string    `json:"expected_answer"`
	Reasoning      Reasoning `json:"reasoning"`
	AxiomsUsed     []string  `json:"axioms_used"`
	RealityUsed    []string  `json:"reality_used"`
}

// EvaluationOutput is the full scoring of one sample.
type EvaluationOutput struct {
	Input             EvaluationItem       `json:"input"`
	LLMResponse       string               `json:"llm_response"`
	Entities          EntityExtraction     `json:"entities"`
	Accuracy          AccuracyResults      `json:"accuracy"`
	TopicCoverage     TopicCoverageResults `json:"topic_coverage"`
	AxiomReferences   ReferenceResults     `json:"axiom_references"`
	RealityReferences ReferenceResults     `json:"reality_references"`
}

// EvaluationResult is the complete output of one evaluation run.
//
// The definition lists are optional context for report rendering;
// when the run knows the constitution and reality files it embeds
// them so the report is self-contained.
type EvaluationResult struct {
	EvaluationOutputs []EvaluationOutput `json:"evaluation_outputs"`
	FailedItems       int                `json:"failed_items"`

	Accuracy               Metric `json:"accuracy"`
	TopicCoverage          Metric `json:"topic_coverage"`
	AxiomPrecisionMetric   Metric `json:"axiom_precision_metric"`
	AxiomRecallMetric      Metric `json:"axiom_recall_metric"`
	RealityPrecisionMetric Metric `json:"reality_precision_metric"`
	RealityRecallMetric    Metric `json:"reality_recall_metric"`

	AxiomDefinitions   []store.Reference `json:"axiom_definitions,omitempty"`
	RealityDefinitions []store.Reference `json:"reality_definitions,omitempty"`
}

// LoadDataset parses raw evaluation dataset JSON.
func LoadDataset(raw []byte) ([]EvaluationItem, error) {
	var items []EvaluationItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	for i, item := range items {
		if item.Query == "" || item.ExpectedAnswer == "" {
			return nil, fmt.Errorf("dataset entry %d missing query or expected_answer", i)
		}
	}
	return items, nil
}
