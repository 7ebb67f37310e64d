package main

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status   string   `json:"status" example:"ok"`
	Env      string   `json:"env" example:"development"`
	Version  string   `json:"version" example:"1.0.0"`
	Storage  string   `json:"storage" example:"postgres"`
	Gateways []string `json:"gateways"`
}

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports process status, build version and whether the database answers.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Env:      app.config.env,
		Version:  version,
		Storage:  "postgres",
		Gateways: app.gateways.Names(),
	}
	if app.store.InMemory() {
		resp.Storage = "memory"
	}

	status := http.StatusOK
	if err := app.store.Ping(ctx); err != nil {
		app.logger.Warnw("health check: database unreachable", "error", err.Error())
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	if err := writeJSON(w, status, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
