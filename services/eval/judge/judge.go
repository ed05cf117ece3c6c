// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package judge wraps an LLM as the evaluation judge: entity
// extraction, topic coverage, and per-entity accuracy, all via
// structured JSON outputs.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
	"github.com/AleutianAI/groundline/services/llm"
)

// JudgeResponseError reports a judge reply that could not be parsed
// as the requested JSON schema. The caller isolates the affected item
// instead of aborting the run.
type JudgeResponseError struct {
	Op  string // judge operation, e.g. "extract_entities"
	Raw string // verbatim model output, for the run log
	Err error
}

func (e *JudgeResponseError) Error() string {
	return fmt.Sprintf("judge %s: unparsable response: %v", e.Op, e.Err)
}

func (e *JudgeResponseError) Unwrap() error { return e.Err }

const systemPrompt = `You are a strict evaluation judge.
Respond with a single JSON object matching the requested schema exactly: no prose, no markdown, no code fences.`

// Judge scores answers with an LLM. Sampling is pinned cold so
// repeated runs over the same data stay comparable.
type Judge struct {
	client llm.LLMClient
	params llm.GenerationParams
}

// New builds a judge over the given backend.
func New(client llm.LLMClient) *Judge {
	temp := float32(0.0)
	return &Judge{
		client: client,
		params: llm.GenerationParams{Temperature: &temp},
	}
}

// complete runs one judge call and decodes the reply into out.
func (j *Judge) complete(ctx context.Context, op, userPrompt string, out any) error {
	raw, err := j.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	}, j.params)
	if err != nil {
		return err
	}
	cleaned := stripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &JudgeResponseError{Op: op, Raw: raw, Err: err}
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, which some
// models add despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

const extractInstructions = `Extract the causal entities from the target text below.
An entity is a pair of a trigger variable and a consequence variable. Recognize the domain categories where they appear: economic indicators, banking activities, market factors, financial instruments, and economic outcomes; anything outside those categories is extracted free-text.
Use "N/A" as the consequence when a trigger has no paired outcome in the target text.
The two context texts are supplied only to disambiguate wording; extract entities from the target text alone.
Return JSON: {"entities": [{"trigger_variable": string, "consequence_variable": string}]}. Use an empty list when the target text makes no causal claims.`

// ExtractEntities pulls trigger/consequence entity pairs out of the
// query, the generated answer, and the expected answer: one judge
// call per text, each carrying the other two as context.
func (j *Judge) ExtractEntities(ctx context.Context, query, llmAnswer, expectedAnswer string) (datatypes.EntityExtraction, error) {
	var out datatypes.EntityExtraction
	var err error

	out.UserQueryEntities, err = j.extractFromText(ctx, "extract_query_entities",
		"user query", query,
		"generated answer", llmAnswer,
		"expected answer", expectedAnswer)
	if err != nil {
		return datatypes.EntityExtraction{}, err
	}
	out.LLMAnswerEntities, err = j.extractFromText(ctx, "extract_answer_entities",
		"generated answer", llmAnswer,
		"user query", query,
		"expected answer", expectedAnswer)
	if err != nil {
		return datatypes.EntityExtraction{}, err
	}
	out.ExpectedAnswerEntities, err = j.extractFromText(ctx, "extract_expected_entities",
		"expected answer", expectedAnswer,
		"user query", query,
		"generated answer", llmAnswer)
	if err != nil {
		return datatypes.EntityExtraction{}, err
	}
	return out, nil
}

// extractFromText runs one extraction call: one target text, two
// context texts.
func (j *Judge) extractFromText(ctx context.Context, op, targetLabel, target, contextLabelA, contextA, contextLabelB, contextB string) ([]datatypes.Entity, error) {
	var sb strings.Builder
	sb.WriteString(extractInstructions)
	sb.WriteString("\n\n## Target: ")
	sb.WriteString(targetLabel)
	sb.WriteString("\n\n")
	sb.WriteString(target)
	sb.WriteString("\n\n## Context: ")
	sb.WriteString(contextLabelA)
	sb.WriteString("\n\n")
	sb.WriteString(contextA)
	sb.WriteString("\n\n## Context: ")
	sb.WriteString(contextLabelB)
	sb.WriteString("\n\n")
	sb.WriteString(contextB)

	var out struct {
		Entities []datatypes.Entity `json:"entities"`
	}
	if err := j.complete(ctx, op, sb.String(), &out); err != nil {
		return nil, err
	}
	return out.Entities, nil
}

// ScoreCoverage judges how completely the generated entities cover
// the expected entities. Trivial cases (either list empty) are
// decided by the caller without a model call.
func (j *Judge) ScoreCoverage(ctx context.Context, expected, generated []datatypes.Entity) (datatypes.TopicCoverageResults, error) {
	expectedJSON, _ := json.Marshal(expected)
	generatedJSON, _ := json.Marshal(generated)

	var sb strings.Builder
	sb.WriteString(`Judge topic coverage: for each expected entity decide whether it appears in the generated entities (same meaning counts, wording may differ).
Score each expected entity 1.0 (covered), 0.5 (partially covered), or 0.0 (missing), then report the mean.
Return JSON: {"reason": string, "coverage_score": number}.

## Expected entities

`)
	sb.Write(expectedJSON)
	sb.WriteString("\n\n## Generated entities\n\n")
	sb.Write(generatedJSON)

	var out datatypes.TopicCoverageResults
	if err := j.complete(ctx, "score_coverage", sb.String(), &out); err != nil {
		return datatypes.TopicCoverageResults{}, err
	}
	return out, nil
}

// ScoreEntityAccuracy judges whether the generated answer states the
// expected directional relationship for one entity.
func (j *Judge) ScoreEntityAccuracy(ctx context.Context, entity datatypes.Entity, llmAnswer, expectedAnswer string) (datatypes.EntityAccuracy, error) {
	var sb strings.Builder
	sb.WriteString(`Judge directional accuracy for one causal entity: does the generated answer state the same direction of effect between the trigger and the consequence as the expected answer?
Score 1.0 (same direction), 0.5 (mentioned but direction unclear), or 0.0 (contradicted or absent).
Return JSON: {"reason": string, "score": number}.

## Entity

trigger: `)
	sb.WriteString(entity.TriggerVariable)
	sb.WriteString("\nconsequence: ")
	sb.WriteString(entity.ConsequenceVariable)
	sb.WriteString("\n\n## Generated answer\n\n")
	sb.WriteString(llmAnswer)
	sb.WriteString("\n\n## Expected answer\n\n")
	sb.WriteString(expectedAnswer)

	var out datatypes.EntityAccuracy
	if err := j.complete(ctx, "score_entity_accuracy", sb.String(), &out); err != nil {
		return datatypes.EntityAccuracy{}, err
	}
	out.Entity = entity
	return out, nil
}
