package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-words/internal/api"
	apiMiddleware "github.com/phrazzld/scry-words/internal/api/middleware"
	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(apiMiddleware.Metrics(app.metrics))
	r.Use(middleware.Recoverer)

	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	sessionHandler := api.NewSessionHandler(app.reviewEngine, app.logger)
	api.RegisterRoutes(r, cardHandler, sessionHandler)

	r.Get("/health", app.health)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return r
}

// health reports 503 when the database does not answer a ping.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: app.config.Database.Driver}

	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := app.db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), app.logger).
				Error("health check failed", slog.String("error", err.Error()))
			resp.Status = "unavailable"
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
