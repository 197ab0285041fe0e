// Package main implements the entry point for the taskcycle API server,
// which manages users' tasks, computes recurrence schedules, and generates
// upcoming instances of recurring tasks.
package main

import (
	"context"
	"log"
	"log/slog"
)

func main() {
	app, err := newApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Catch up on generation before the first cron tick.
	if err := app.scheduler.RunOnce(context.Background()); err != nil {
		app.logger.Warn("startup generation pass finished with errors",
			slog.String("error", err.Error()))
	}
	app.scheduler.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(context.Background(), router); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
