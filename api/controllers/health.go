package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/kayalabs/studiocart-backend/api/responses"
	"github.com/kayalabs/studiocart-backend/pkg/config"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
)

const readyCheckTimeout = 3 * time.Second

// Pinger is the dependency health-check surface shared by the ready probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StudioCart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each wired dependency. Nil pingers are skipped so
// optional integrations do not fail the probe.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, gcsP Pinger) http.HandlerFunc {
	checks := []struct {
		name   string
		pinger Pinger
	}{
		{"db", dbP},
		{"redis", redisP},
		{"gcs", gcsP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StudioCart-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", check.name), "readiness check failed", err)
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
