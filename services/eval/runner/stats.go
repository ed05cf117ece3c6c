// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import (
	"math"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
)

// meanStd computes a Metric over scores: arithmetic mean and
// population standard deviation. Std is 0 for fewer than two scores.
func meanStd(scores []float64) datatypes.Metric {
	if len(scores) == 0 {
		return datatypes.Metric{}
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))
	if len(scores) == 1 {
		return datatypes.Metric{Mean: mean, Std: 0}
	}
	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(scores))
	return datatypes.Metric{Mean: mean, Std: math.Sqrt(variance)}
}

// CalculateStats aggregates per-item scores into the run-level
// metrics. An empty output list yields zeroed metrics.
func CalculateStats(outputs []datatypes.EvaluationOutput) *datatypes.EvaluationResult {
	result := &datatypes.EvaluationResult{
		EvaluationOutputs: outputs,
	}
	if len(outputs) == 0 {
		result.EvaluationOutputs = []datatypes.EvaluationOutput{}
		return result
	}

	n := len(outputs)
	accuracy := make([]float64, 0, n)
	coverage := make([]float64, 0, n)
	axiomPrecision := make([]float64, 0, n)
	axiomRecall := make([]float64, 0, n)
	realityPrecision := make([]float64, 0, n)
	realityRecall := make([]float64, 0, n)
	for _, o := range outputs {
		accuracy = append(accuracy, o.Accuracy.AccuracyMean)
		coverage = append(coverage, o.TopicCoverage.CoverageScore)
		axiomPrecision = append(axiomPrecision, o.AxiomReferences.Precision)
		axiomRecall = append(axiomRecall, o.AxiomReferences.Recall)
		realityPrecision = append(realityPrecision, o.RealityReferences.Precision)
		realityRecall = append(realityRecall, o.RealityReferences.Recall)
	}

	result.Accuracy = meanStd(accuracy)
	result.TopicCoverage = meanStd(coverage)
	result.AxiomPrecisionMetric = meanStd(axiomPrecision)
	result.AxiomRecallMetric = meanStd(axiomRecall)
	result.RealityPrecisionMetric = meanStd(realityPrecision)
	result.RealityRecallMetric = meanStd(realityRecall)
	return result
}
