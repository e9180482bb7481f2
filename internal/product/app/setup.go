// Package app contains the application setup for the ProductService.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SUMI3747/ProductManagementApi/internal/config"
	"github.com/SUMI3747/ProductManagementApi/internal/platform/messaging"
	"github.com/SUMI3747/ProductManagementApi/internal/platform/web"
	grpcImpl "github.com/SUMI3747/ProductManagementApi/internal/product/grpc"
	"github.com/SUMI3747/ProductManagementApi/internal/product/handler"
	"github.com/SUMI3747/ProductManagementApi/internal/product/service"
	"github.com/SUMI3747/ProductManagementApi/internal/product/store"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	Logger         *slog.Logger
	MetricsHandler http.Handler
}

// NewStore selects the product store for the configured driver. dbPool is required for postgres.
func NewStore(cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) (store.ProductStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		return store.NewInMemoryStore(), nil
	case config.StorageDriverPostgres:
		if dbPool == nil {
			return nil, fmt.Errorf("postgres storage requires a database pool")
		}
		var s store.ProductStore = store.NewPgStore(dbPool)
		if cfg.Resilience.CircuitBreaker.Enabled {
			s = store.NewBreakerStore(s, cfg.Resilience.CircuitBreaker, logger)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

// SetupDependencies builds the service graph on top of productStore.
func SetupDependencies(cfg *config.Config, productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	pService := service.NewService(productStore,
		service.WithPublisher(publisher),
		service.WithLogger(logger),
		service.WithAdjustDelay(cfg.Stock.AdjustDelay),
		service.WithCreateRetries(cfg.Stock.CreateRetries),
	)

	return &Dependencies{
		Store:          productStore,
		ProductService: pService,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the ProductService application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {

	pApi := handler.NewAPI(deps.ProductService, deps.Store, deps.Logger)

	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(deps.Logger))
	mux.Use(web.Recoverer(deps.Logger))

	handler.RegisterRoutes(mux, pApi)

	mux.Get("/healthz", pApi.HealthCheck)
	mux.Get("/readyz", pApi.ReadinessCheck)
	if deps.MetricsHandler != nil {
		mux.Handle("/metrics", deps.MetricsHandler)
	}

	return otelhttp.NewHandler(mux, "product-http")
}

// SetupHttpServer creates and configures an HTTP server for the ProductService application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:           mux,
		ReadTimeout:       cfg.HTTPServer.Timeout.Read,
		WriteTimeout:      cfg.HTTPServer.Timeout.Write,
		IdleTimeout:       cfg.HTTPServer.Timeout.Idle,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.HTTPServer.MaxHeaderBytes,
	}
	return server
}

// SetupGrpcServer initializes the gRPC server with the health service for the ProductService application.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) (*grpc.Server, *grpcImpl.HealthReporter) {
	grpcServer := grpcImpl.NewServer(deps.Logger, reflectionEnabled)
	reporter := grpcImpl.RegisterHealth(grpcServer, deps.Store, deps.Logger)
	return grpcServer, reporter
}
