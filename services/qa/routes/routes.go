// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routes wires handlers to the HTTP surface of the QA
// service.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/groundline/services/qa/handlers"
)

// Dependencies carries the constructed handlers into SetupRoutes.
type Dependencies struct {
	Generate *handlers.GenerateHandler
	Sessions *handlers.SessionHandler
}

// SetupRoutes registers every endpoint of the service.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	api := router.Group("/api")
	{
		api.POST("/generate", deps.Generate.Handle)
		api.POST("/restart", deps.Sessions.Restart)
		api.GET("/health", handlers.Health)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
