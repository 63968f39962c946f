package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger проверяет доступность хранилища. Для memory store не задаётся.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping  Pinger
	store string
}

func NewHealthHandler(store string, ping Pinger) *HealthHandler {
	return &HealthHandler{ping: ping, store: store}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := map[string]string{"store": h.store}
	status := "healthy"

	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{Status: status, Timestamp: time.Now(), Checks: checks})
}
