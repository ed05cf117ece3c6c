// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability exposes the Prometheus metrics of the QA
// service.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "groundline"

// Metrics holds the instruments the handlers record into.
type Metrics struct {
	// RequestsTotal counts API requests by endpoint and outcome.
	RequestsTotal *prometheus.CounterVec

	// ActiveStreams tracks generate streams currently open.
	ActiveStreams prometheus.Gauge

	// StreamDurationSeconds observes end-to-end generate stream time.
	StreamDurationSeconds prometheus.Histogram

	// ChunksTotal counts protocol chunks written, by chunk type.
	ChunksTotal *prometheus.CounterVec
}

// NewMetrics registers the instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "API requests by endpoint and status.",
		}, []string{"endpoint", "status"}),
		ActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Generate streams currently open.",
		}),
		StreamDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stream_duration_seconds",
			Help:      "End-to-end duration of generate streams.",
			Buckets:   prometheus.DefBuckets,
		}),
		ChunksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Protocol chunks written, by chunk type.",
		}, []string{"type"}),
	}
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// DefaultMetrics returns the process-wide metrics, registered against
// the default Prometheus registry on first use.
func DefaultMetrics() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}
