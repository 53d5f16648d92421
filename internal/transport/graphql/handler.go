package graphql

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/graphql-go/graphql"
	gqlhandler "github.com/graphql-go/handler"

	"github.com/jpalomar/vendorhub/pkg/web"
)

// Handler serves the schema over HTTP.
type Handler struct {
	schema graphql.Schema
	logger *slog.Logger
}

// NewHandler creates a new Handler for the given schema.
func NewHandler(schema graphql.Schema, logger *slog.Logger) *Handler {
	return &Handler{
		schema: schema,
		logger: logger.With("component", "graphql"),
	}
}

// RegisterRoutes mounts the API endpoint and the health check.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	api := gqlhandler.New(&gqlhandler.Config{
		Schema:   &h.schema,
		Pretty:   true,
		GraphiQL: true,
	})
	r.Handle("/graphql", api)
	r.Get("/healthz", h.HealthCheck)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}
