package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/preptrack/preptrack-api/internal/api"
	apiMiddleware "github.com/preptrack/preptrack-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)
	dashboardHandler := api.NewDashboardHandler(app.dashboardService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Patch("/subtopics/{id}/status", progressHandler.CycleStatus)
			r.Patch("/subtopics/{id}/revision", progressHandler.ToggleRevision)

			r.Get("/dashboard", dashboardHandler.GetDashboard)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health response", "error", err)
		}
	})

	return r
}
