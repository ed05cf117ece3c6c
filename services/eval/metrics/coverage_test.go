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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
)

// stubCoverageJudge records whether it was consulted.
type stubCoverageJudge struct {
	called bool
	result datatypes.TopicCoverageResults
}

func (s *stubCoverageJudge) ScoreCoverage(ctx context.Context, expected, generated []datatypes.Entity) (datatypes.TopicCoverageResults, error) {
	s.called = true
	return s.result, nil
}

func entity(trigger, consequence string) datatypes.Entity {
	return datatypes.Entity{TriggerVariable: trigger, ConsequenceVariable: consequence}
}

func TestCoverageBothEmptyIsPerfect(t *testing.T) {
	j := &stubCoverageJudge{}
	result, err := Coverage(context.Background(), j, datatypes.EntityExtraction{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.CoverageScore)
	assert.False(t, j.called, "trivial case must not consult the judge")
}

func TestCoverageOneEmptyIsZero(t *testing.T) {
	j := &stubCoverageJudge{}

	onlyExpected := datatypes.EntityExtraction{
		ExpectedAnswerEntities: []datatypes.Entity{entity("smoking", "mortality")},
	}
	result, err := Coverage(context.Background(), j, onlyExpected)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.CoverageScore)

	onlyGenerated := datatypes.EntityExtraction{
		LLMAnswerEntities: []datatypes.Entity{entity("smoking", "mortality")},
	}
	result, err = Coverage(context.Background(), j, onlyGenerated)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.CoverageScore)

	assert.False(t, j.called, "trivial cases must not consult the judge")
}

func TestCoverageDelegatesNonTrivialCase(t *testing.T) {
	j := &stubCoverageJudge{result: datatypes.TopicCoverageResults{Reason: "half covered", CoverageScore: 0.5}}
	entities := datatypes.EntityExtraction{
		ExpectedAnswerEntities: []datatypes.Entity{entity("a", "b"), entity("c", "d")},
		LLMAnswerEntities:      []datatypes.Entity{entity("a", "b")},
	}
	result, err := Coverage(context.Background(), j, entities)
	require.NoError(t, err)
	assert.True(t, j.called)
	assert.Equal(t, 0.5, result.CoverageScore)
}
