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
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/groundline/services/llm"
	"github.com/AleutianAI/groundline/services/qa/engine"
	"github.com/AleutianAI/groundline/services/qa/handlers"
	"github.com/AleutianAI/groundline/services/qa/observability"
	"github.com/AleutianAI/groundline/services/qa/routes"
	"github.com/AleutianAI/groundline/services/qa/session"
	"github.com/AleutianAI/groundline/services/qa/store"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		// No collector configured; spans stay no-ops.
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("qa-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	port := os.Getenv("QA_PORT")
	if port == "" {
		port = "12310"
	}
	constitutionPath := os.Getenv("CONSTITUTION_PATH")
	if constitutionPath == "" {
		constitutionPath = "data/constitution.json"
	}
	realityPath := os.Getenv("REALITY_PATH")
	if realityPath == "" {
		realityPath = "data/reality.json"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	// --- Load the reference tables ---
	st, err := store.Load(constitutionPath, realityPath)
	if err != nil {
		log.Fatalf("FATAL: Could not load reference data: %v", err)
	}
	slog.Info("Reference tables loaded",
		"axioms", len(st.Axioms()), "realities", len(st.Realities()))

	watcher, err := store.NewRealityWatcher(realityPath, st)
	if err != nil {
		log.Fatalf("FATAL: Could not watch reality file: %v", err)
	}
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go watcher.Run(watchCtx)

	// --- Configure the LLM client ---
	log.Println("Configuring the LLM Client")
	client, err := llm.NewOpenAIClient()
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	sessions := session.NewManager(engine.SystemPrompt)
	qaEngine := engine.New(client, st, sessions, llm.GenerationParams{})
	metrics := observability.DefaultMetrics()

	router := gin.Default()
	router.Use(otelgin.Middleware("qa-service"))

	routes.SetupRoutes(router, routes.Dependencies{
		Generate: handlers.NewGenerateHandler(qaEngine, metrics),
		Sessions: handlers.NewSessionHandler(sessions, metrics),
	})

	log.Println("Starting the QA server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
