package main

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck godoc
//
//	@Summary		Health check
//	@Description	Reports version, database reachability and catalog freshness.
//	@Tags			Ops
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		503	{object}	map[string]any
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
		"catalog": app.catalog.Status(),
	}

	status := http.StatusOK
	if app.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.store.Ping(ctx); err != nil {
			app.logger.Errorw("health check database ping failed", "error", err)
			data["status"] = "degraded"
			data["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	app.jsonResponse(w, status, data)
}
