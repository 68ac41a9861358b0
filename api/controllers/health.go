package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/tiendazo/storefront-backend/api/responses"
	"github.com/tiendazo/storefront-backend/pkg/config"
)

// ReadinessCheck is a named dependency probe run by the ready endpoint.
type ReadinessCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tiendazo-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every dependency probe passes.
func HealthReady(cfg *config.Config, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tiendazo-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := map[string]string{"status": "ready"}
		healthy := true
		for _, check := range checks {
			if check.Probe == nil {
				continue
			}
			if err := check.Probe(ctx); err != nil {
				status[check.Name] = err.Error()
				healthy = false
				continue
			}
			status[check.Name] = "ok"
		}

		if !healthy {
			status["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
