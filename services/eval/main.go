// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/groundline/services/eval/datatypes"
	"github.com/AleutianAI/groundline/services/eval/judge"
	"github.com/AleutianAI/groundline/services/eval/report"
	"github.com/AleutianAI/groundline/services/eval/runner"
	"github.com/AleutianAI/groundline/services/llm"
	"github.com/AleutianAI/groundline/services/qa/engine"
	"github.com/AleutianAI/groundline/services/qa/session"
	"github.com/AleutianAI/groundline/services/qa/store"
)

var (
	evalConfigPath string
	reportInput    string
	reportOutput   string

	rootCmd = &cobra.Command{
		Use:   "groundline-eval",
		Short: "Run and report citation-grounded answer evaluations",
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Evaluate a dataset against the live QA engine and render a report",
		Run:   runEvaluation,
	}

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Render an HTML report from an existing evaluation_results.json",
		Run:   runReport,
	}
)

func init() {
	runCmd.Flags().StringVar(&evalConfigPath, "config", "data/eval_config.yaml", "Path to the evaluation YAML config")
	reportCmd.Flags().StringVar(&reportInput, "input", "", "Path to evaluation_results.json (required)")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "Report directory (default: <input dir>/report)")
	_ = reportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd, reportCmd)
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// applyStorePaths fills the reference-table paths a config may omit,
// mirroring the QA server's defaults.
func applyStorePaths(cfg *runner.Config) {
	if cfg.ConstitutionPath == "" {
		cfg.ConstitutionPath = "data/constitution.json"
	}
	if cfg.RealityPath == "" {
		cfg.RealityPath = "data/reality.json"
	}
}

func runEvaluation(cmd *cobra.Command, _ []string) {
	// Step 1: Load the run configuration.
	cfg, err := runner.LoadConfig(evalConfigPath)
	if err != nil {
		slog.Error("Failed to load evaluation config", "path", evalConfigPath, "error", err)
		os.Exit(1)
	}
	applyStorePaths(&cfg)

	// Step 2: Build the QA engine the answers come from.
	st, err := store.Load(cfg.ConstitutionPath, cfg.RealityPath)
	if err != nil {
		slog.Error("Failed to load reference tables", "error", err)
		os.Exit(1)
	}
	client, err := llm.NewOpenAIClient()
	if err != nil {
		slog.Error("Failed to build LLM client", "error", err)
		os.Exit(1)
	}
	sessions := session.NewManager(engine.SystemPrompt)
	qa := engine.New(client, st, sessions, llm.GenerationParams{})

	// Each item gets its own session so turns never bleed across
	// dataset entries.
	answer := func(ctx context.Context, query string) (string, error) {
		return qa.Invoke(ctx, engine.Request{
			Question:  query,
			SessionID: uuid.NewString(),
		})
	}

	// Step 3: Run the evaluation and render the report next to the
	// results file.
	r := runner.New(cfg, answer, judge.New(client))
	result, runDir, err := r.Run(cmd.Context())
	if err != nil {
		slog.Error("Evaluation run failed", "error", err)
		os.Exit(1)
	}
	writeReport(result, filepath.Join(runDir, "report"))
}

func runReport(_ *cobra.Command, _ []string) {
	raw, err := os.ReadFile(reportInput)
	if err != nil {
		slog.Error("Failed to read results file", "path", reportInput, "error", err)
		os.Exit(1)
	}
	var result datatypes.EvaluationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.Error("Results file does not match the evaluation schema", "path", reportInput, "error", err)
		os.Exit(1)
	}

	outDir := reportOutput
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(reportInput), "report")
	}
	writeReport(&result, outDir)
}

func writeReport(result *datatypes.EvaluationResult, dir string) {
	renderer, err := report.NewRenderer(report.DefaultPalette())
	if err != nil {
		slog.Error("Failed to build report renderer", "error", err)
		os.Exit(1)
	}
	path, err := renderer.WriteReport(result, dir, time.Now().Format("2006-01-02 15:04:05"))
	if err != nil {
		slog.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
	slog.Info("Report written", "path", path)
}
