package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Partitions
	mux.Handle("GET /api/v1/partitions", chain(http.HandlerFunc(h.ListPartitions)))
	mux.Handle("GET /api/v1/partitions/{name}/state", chain(http.HandlerFunc(h.GetState)))
	mux.Handle("PUT /api/v1/partitions/{name}/state", chain(http.HandlerFunc(h.SetState)))

	// Poller
	mux.Handle("GET /api/v1/poller", chain(http.HandlerFunc(h.GetPollerStatus)))
	mux.Handle("POST /api/v1/poller/poll", chain(http.HandlerFunc(h.Poll)))

	// Versions
	mux.Handle("GET /api/v1/artifacts/{name}/versions", chain(http.HandlerFunc(h.ListVersions)))
	mux.Handle("GET /api/v1/artifacts/{name}/versions/{version}", chain(http.HandlerFunc(h.GetVersion)))
}
