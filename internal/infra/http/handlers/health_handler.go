package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger é o store ativo (Postgres ou arquivo JSON).
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store     Pinger
	StoreName string
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(store Pinger, storeName, version string) *HealthHandler {
	return &HealthHandler{
		Store:     store,
		StoreName: storeName,
		Version:   version,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)
	status := "healthy"

	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			deps[h.StoreName] = fmt.Sprintf("unhealthy: %v", err)
			status = "degraded"
		} else {
			deps[h.StoreName] = "healthy"
		}
	} else {
		deps["store"] = "not configured"
		status = "degraded"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}

// PingFunc adapta funções como (*sql.DB).PingContext para Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
