// Package http provides HTTP server infrastructure including the Module
// interface domain modules implement for route registration.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"leadqual_backend/internal/config"
	"leadqual_backend/internal/events"
	"leadqual_backend/platform/logger"
)

// Module represents a bounded context that can register its HTTP routes.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the shared groups.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// V1 is the /api/v1 route group.
	V1 *gin.RouterGroup
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the initialized application dependencies. main.go populates it
// and hands it to the router.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	Modules  []Module
}
