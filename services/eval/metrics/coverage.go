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
	"context"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
)

// CoverageJudge is the judge call Coverage needs; satisfied by
// *judge.Judge.
type CoverageJudge interface {
	ScoreCoverage(ctx context.Context, expected, generated []datatypes.Entity) (datatypes.TopicCoverageResults, error)
}

// Coverage scores how completely the generated entities cover the
// expected entities. The empty-set cases are decided without a model
// call:
//
//   - both lists empty: 1.0 (nothing to cover, nothing claimed)
//   - exactly one list empty: 0.0 (expected topics missed, or topics
//     invented out of nothing)
//
// Everything else is judged per expected entity.
func Coverage(ctx context.Context, j CoverageJudge, entities datatypes.EntityExtraction) (datatypes.TopicCoverageResults, error) {
	expected := entities.ExpectedAnswerEntities
	generated := entities.LLMAnswerEntities

	if len(expected) == 0 && len(generated) == 0 {
		return datatypes.TopicCoverageResults{
			Reason:        "No entities expected and none generated.",
			CoverageScore: 1.0,
		}, nil
	}
	if len(expected) == 0 || len(generated) == 0 {
		return datatypes.TopicCoverageResults{
			Reason:        "Expected and generated entity sets do not overlap: one of them is empty.",
			CoverageScore: 0.0,
		}, nil
	}

	return j.ScoreCoverage(ctx, expected, generated)
}
