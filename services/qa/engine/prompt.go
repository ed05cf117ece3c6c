// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"strings"

	"github.com/AleutianAI/groundline/services/qa/store"
)

// SystemPrompt is the standing instruction for every session thread.
const SystemPrompt = `You are a careful assistant that answers questions strictly grounded in the axioms and reality statements provided with each question.
Every claim you make must be supported by one of the provided statements, cited inline by its id in square brackets, for example [A-001] or [R-1].
If the provided statements do not cover the question, say so instead of guessing.`

// BuildUserPrompt assembles the grounding context and question into a
// single user turn. Axioms always appear; the reality section is
// omitted when there are no statements.
func BuildUserPrompt(axioms, realities []store.Reference, question string) string {
	var sb strings.Builder

	sb.WriteString("## Constitution\n\n")
	sb.WriteString("These axioms govern your answer. Cite each one you rely on by its id.\n\n")
	for _, a := range axioms {
		sb.WriteString("[")
		sb.WriteString(a.ID)
		sb.WriteString("] ")
		sb.WriteString(a.Description)
		sb.WriteString("\n")
	}

	if len(realities) > 0 {
		sb.WriteString("\n## Reality\n\n")
		sb.WriteString("These statements describe the current state of the world. Cite each one you rely on by its id.\n\n")
		for _, r := range realities {
			sb.WriteString("[")
			sb.WriteString(r.ID)
			sb.WriteString("] ")
			sb.WriteString(r.Description)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n## Question\n\n")
	sb.WriteString(question)
	sb.WriteString("\n")
	return sb.String()
}
