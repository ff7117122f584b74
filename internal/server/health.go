package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health states
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the health check result
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
	Checks    []Check   `json:"checks,omitempty"`
}

// Check represents an individual health check
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *HealthStatus) add(check Check, failStatus string) {
	h.Checks = append(h.Checks, check)
	if check.Status != "ok" && check.Status != "disabled" {
		if failStatus == StatusUnhealthy || h.Status == StatusHealthy {
			h.Status = failStatus
		}
	}
}

// HealthCheck probes configuration and every upstream the storefront uses.
// The commerce API is required; the CMS and subscriber store only degrade.
func (s *Server) HealthCheck(ctx context.Context) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}

	configCheck := Check{Name: "config", Status: "ok"}
	if err := s.cfg.Validate(); err != nil {
		configCheck.Status = "failed"
		configCheck.Error = err.Error()
	}
	status.add(configCheck, StatusUnhealthy)

	commerceCheck := Check{Name: "commerce", Status: "ok"}
	if _, err := s.commerce.Shop(ctx); err != nil {
		commerceCheck.Status = "failed"
		commerceCheck.Error = err.Error()
	}
	status.add(commerceCheck, StatusUnhealthy)

	cmsCheck := Check{Name: "cms", Status: "disabled"}
	if s.content != nil {
		cmsCheck.Status = "ok"
		if _, err := s.content.FetchEntry(ctx, s.cfg.Content.HomeContentType); err != nil {
			cmsCheck.Status = "failed"
			cmsCheck.Error = err.Error()
		}
	}
	status.add(cmsCheck, StatusDegraded)

	storeCheck := Check{Name: "subscribers", Status: "ok"}
	if err := s.subscribers.Ping(ctx); err != nil {
		storeCheck.Status = "failed"
		storeCheck.Error = err.Error()
	}
	status.add(storeCheck, StatusDegraded)

	return status
}

func (s *Server) handleHealth(c *gin.Context) {
	health := s.HealthCheck(c.Request.Context())
	code := http.StatusOK
	if health.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, health)
}
