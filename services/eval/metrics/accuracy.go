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

// AccuracyJudge is the judge call Accuracy needs; satisfied by
// *judge.Judge.
type AccuracyJudge interface {
	ScoreEntityAccuracy(ctx context.Context, entity datatypes.Entity, llmAnswer, expectedAnswer string) (datatypes.EntityAccuracy, error)
}

// Accuracy judges each expected entity's direction against the
// generated answer and reports the per-sample mean.
//
// With zero expected entities the mean is 1.0 over an empty list: an
// answer cannot contradict expectations that do not exist.
func Accuracy(ctx context.Context, j AccuracyJudge, entities datatypes.EntityExtraction, llmAnswer, expectedAnswer string) (datatypes.AccuracyResults, error) {
	expected := entities.ExpectedAnswerEntities
	if len(expected) == 0 {
		return datatypes.AccuracyResults{
			EntityAccuracies: []datatypes.EntityAccuracy{},
			AccuracyMean:     1.0,
		}, nil
	}

	accuracies := make([]datatypes.EntityAccuracy, 0, len(expected))
	var sum float64
	for _, entity := range expected {
		scored, err := j.ScoreEntityAccuracy(ctx, entity, llmAnswer, expectedAnswer)
		if err != nil {
			return datatypes.AccuracyResults{}, err
		}
		accuracies = append(accuracies, scored)
		sum += scored.Score
	}

	return datatypes.AccuracyResults{
		EntityAccuracies: accuracies,
		AccuracyMean:     round4(sum / float64(len(accuracies))),
	}, nil
}
