package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_dragonpay/internal/utils"
)

var startTime = time.Now()

// Pinger is implemented by the database and Redis clients.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain ping function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
	deps    map[string]Pinger
	sandbox bool
}

// NewHealthHandler creates a new HealthHandler. deps maps a dependency name to its pinger.
func NewHealthHandler(deps map[string]Pinger, sandbox bool) *HealthHandler {
	return &HealthHandler{deps: deps, sandbox: sandbox}
}

// GetHealth responds with service and dependency status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := gin.H{}
	for name, p := range h.deps {
		if err := p.PingContext(ctx); err != nil {
			deps[name] = "disconnected"
			status = "degraded"
			continue
		}
		deps[name] = "connected"
	}

	mode := "production"
	if h.sandbox {
		mode = "sandbox"
	}

	data := gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"gateway":      mode,
		"dependencies": deps,
	}
	if status != "healthy" {
		utils.ErrorWithData(c, http.StatusServiceUnavailable, "SERVICE_DEGRADED", "Service is "+status, data)
		return
	}
	utils.Success(c, http.StatusOK, "Service is "+status, data)
}
