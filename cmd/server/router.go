package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskcycle/taskcycle-api/internal/api"
	apiMiddleware "github.com/taskcycle/taskcycle-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	taskHandler := api.NewTaskHandler(
		app.taskStore,
		app.generator,
		app.recurService,
		app.config.Scheduler.HorizonWindow(),
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/{id}/next-due", taskHandler.GetNextDue)
			r.Get("/tasks/{id}/recurrence", taskHandler.GetRecurrence)
			r.Post("/tasks/{id}/generate", taskHandler.Generate)
			r.Get("/tasks/{id}/calendar.ics", taskHandler.Calendar)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
