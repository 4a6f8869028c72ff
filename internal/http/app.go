// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/events"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/config"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// Metrics is scraped at /metrics. Nil disables the endpoint.
	Metrics prometheus.Gatherer
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
