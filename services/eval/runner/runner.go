// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runner drives a full evaluation: generate (or replay)
// answers for every dataset item, score them, and write the run
// artifacts.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
	"github.com/AleutianAI/groundline/services/eval/metrics"
	"github.com/AleutianAI/groundline/services/qa/store"
)

// Config is the YAML run configuration.
type Config struct {
	DatasetPath      string `yaml:"dataset_path"`
	OutputDir        string `yaml:"output_dir"`
	Concurrency      int    `yaml:"concurrency"`
	ConstitutionPath string `yaml:"constitution_path"`
	RealityPath      string `yaml:"reality_path"`
}

// LoadConfig reads a YAML config and applies defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills the optional fields.
func (c *Config) ApplyDefaults() {
	if c.DatasetPath == "" {
		c.DatasetPath = "data/eval_dataset.json"
	}
	if c.OutputDir == "" {
		c.OutputDir = "runs"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
}

// AnswerFunc produces the answer under evaluation for one query.
type AnswerFunc func(ctx context.Context, query string) (string, error)

// Judge is the scoring surface the runner needs; satisfied by
// *judge.Judge.
type Judge interface {
	ExtractEntities(ctx context.Context, query, llmAnswer, expectedAnswer string) (datatypes.EntityExtraction, error)
	metrics.CoverageJudge
	metrics.AccuracyJudge
}

// Runner evaluates a dataset with bounded concurrency.
type Runner struct {
	cfg    Config
	answer AnswerFunc
	judge  Judge
}

// New builds a runner.
func New(cfg Config, answer AnswerFunc, j Judge) *Runner {
	cfg.ApplyDefaults()
	return &Runner{cfg: cfg, answer: answer, judge: j}
}

// Run evaluates every dataset item and writes the run artifacts: one
// answer transcript per item (results_<id>.md) and the aggregate
// evaluation_results.json. It returns the result and the run
// directory.
//
// A failing item (generation error or unusable judge output) is
// logged and counted, never aborts the batch, and leaves no entry in
// the outputs.
func (r *Runner) Run(ctx context.Context) (*datatypes.EvaluationResult, string, error) {
	raw, err := os.ReadFile(r.cfg.DatasetPath)
	if err != nil {
		return nil, "", fmt.Errorf("read dataset: %w", err)
	}
	items, err := datatypes.LoadDataset(raw)
	if err != nil {
		return nil, "", err
	}

	runDir := filepath.Join(r.cfg.OutputDir, time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create run dir: %w", err)
	}
	slog.Info("Evaluation run started",
		"dataset", r.cfg.DatasetPath, "items", len(items), "run_dir", runDir)

	outputs := make([]*datatypes.EvaluationOutput, len(items))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, item := range items {
		g.Go(func() error {
			output, err := r.processItem(gctx, runDir, item)
			if err != nil {
				failed.Add(1)
				slog.Error("Evaluation item failed", "id", item.ID, "error", err)
				return nil
			}
			outputs[i] = output
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	completed := make([]datatypes.EvaluationOutput, 0, len(outputs))
	for _, o := range outputs {
		if o != nil {
			completed = append(completed, *o)
		}
	}

	result := CalculateStats(completed)
	result.FailedItems = int(failed.Load())
	if err := r.attachDefinitions(result); err != nil {
		return nil, "", err
	}

	resultPath := filepath.Join(runDir, "evaluation_results.json")
	encoded, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return nil, "", fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(resultPath, encoded, 0o644); err != nil {
		return nil, "", fmt.Errorf("write results: %w", err)
	}

	slog.Info("Evaluation run finished",
		"completed", len(completed), "failed", result.FailedItems, "results", resultPath)
	return result, runDir, nil
}

// processItem generates and scores one sample. The answer transcript
// is written even when scoring later fails, so failed items can be
// inspected.
func (r *Runner) processItem(ctx context.Context, runDir string, item datatypes.EvaluationItem) (*datatypes.EvaluationOutput, error) {
	answer, err := r.answer(ctx, item.Query)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	transcript := filepath.Join(runDir, fmt.Sprintf("results_%d.md", item.ID))
	if err := os.WriteFile(transcript, []byte(answer), 0o644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}

	entities, err := r.judge.ExtractEntities(ctx, item.Query, answer, item.ExpectedAnswer)
	if err != nil {
		return nil, err
	}
	accuracy, err := metrics.Accuracy(ctx, r.judge, entities, answer, item.ExpectedAnswer)
	if err != nil {
		return nil, err
	}
	coverage, err := metrics.Coverage(ctx, r.judge, entities)
	if err != nil {
		return nil, err
	}

	return &datatypes.EvaluationOutput{
		Input:             item,
		LLMResponse:       answer,
		Entities:          entities,
		Accuracy:          accuracy,
		TopicCoverage:     coverage,
		AxiomReferences:   metrics.EvaluateReferences(answer, item.AxiomsUsed, metrics.AxiomPrefix),
		RealityReferences: metrics.EvaluateReferences(answer, item.RealityUsed, metrics.RealityPrefix),
	}, nil
}

// attachDefinitions embeds the constitution and reality tables when
// the config names them, so reports render citation text without the
// source files.
func (r *Runner) attachDefinitions(result *datatypes.EvaluationResult) error {
	if r.cfg.ConstitutionPath != "" {
		axioms, err := store.LoadReferences(r.cfg.ConstitutionPath)
		if err != nil {
			return fmt.Errorf("load axiom definitions: %w", err)
		}
		result.AxiomDefinitions = axioms
	}
	if r.cfg.RealityPath != "" {
		realities, err := store.LoadReferences(r.cfg.RealityPath)
		if err != nil {
			return fmt.Errorf("load reality definitions: %w", err)
		}
		result.RealityDefinitions = realities
	}
	return nil
}
