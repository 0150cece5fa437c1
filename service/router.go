package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the ingest endpoint, the dashboard websocket, health and
// metrics.
func NewRouter(h *Handler, hub *Hub, health http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/flespi", h.ServeHTTP)
	r.Post("/api/telemetry", h.ServeHTTP)
	r.Get("/ws", hub.ServeWS)
	r.Get("/health", health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
