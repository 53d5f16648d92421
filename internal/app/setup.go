// Package app contains the application wiring.
package app

import (
	"log/slog"
	"net/http"

	"github.com/jpalomar/vendorhub/internal/auth"
	"github.com/jpalomar/vendorhub/internal/config"
	"github.com/jpalomar/vendorhub/internal/service"
	"github.com/jpalomar/vendorhub/internal/store"
	gql "github.com/jpalomar/vendorhub/internal/transport/graphql"
	"github.com/jpalomar/vendorhub/pkg/messaging"
	"github.com/jpalomar/vendorhub/pkg/server"
)

type Dependencies struct {
	Services *gql.Services
	Verifier auth.Verifier
	Logger   *slog.Logger
}

func SetupDependencies(st store.Store, issuer *auth.TokenIssuer, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Services: &gql.Services{
			Vendors:  service.NewVendorService(st, issuer),
			Products: service.NewProductService(st),
			Clients:  service.NewClientService(st),
			Orders:   service.NewOrderService(st, publisher),
			Reports:  service.NewReportService(st),
		},
		Verifier: issuer,
		Logger:   logger,
	}
}

// SetupHttpHandler builds the HTTP handler: base middleware, bearer token
// resolution and the API routes. Also used by tests to serve the full stack
// without a listener.
func SetupHttpHandler(deps *Dependencies) (http.Handler, error) {
	mux := server.NewChiRouter(deps.Logger)
	mux.Use(auth.Middleware(deps.Verifier))

	schema, err := gql.NewSchema(deps.Services)
	if err != nil {
		return nil, err
	}
	handler := gql.NewHandler(schema, deps.Logger)
	handler.RegisterRoutes(mux)
	return mux, nil
}

// SetupHttpServer creates and configures the HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) (*http.Server, error) {
	mux, err := SetupHttpHandler(deps)
	if err != nil {
		return nil, err
	}

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux), nil
}
