package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/handler/http/response"
	"golang.org/x/sync/errgroup"
)

// HealthCheck pings one dependency
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// ServeHTTP pings every dependency concurrently and reports 503 if any of them fails.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var mu sync.Mutex
	status := make(map[string]string, len(h.checks))

	var g errgroup.Group
	for _, check := range h.checks {
		g.Go(func() error {
			result := "ok"
			err := check.Ping(ctx)
			if err != nil {
				result = err.Error()
			}
			mu.Lock()
			status[check.Name] = result
			mu.Unlock()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		response.ServiceUnavailable(w, "Dependency check failed", status)
		return
	}

	response.Success(w, map[string]interface{}{
		"status": "ok",
		"checks": status,
	})
}
