package rest

import (
	"log/slog"

	"github.com/go-chi/chi"

	"github.com/workhq/workplace-bot/internal/transport/middleware"
)

// RegisterAllRoutes wires the webhook endpoint and health routes with the
// global middleware stack.
func RegisterAllRoutes(router *chi.Mux, interactions *InteractionsHandler, checks map[string]func() error, logger *slog.Logger) {
	healthHandler := NewHealthHandler(checks)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Post("/interactions", interactions.HandleInteraction)
	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)
}
