package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SUMI3747/ProductManagementApi/internal/config"
	"github.com/SUMI3747/ProductManagementApi/internal/product/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	var cfg config.Config
	cfg.HTTPServer.Port = 8080
	cfg.HTTPServer.Timeout.Read = time.Second
	cfg.HTTPServer.Timeout.Write = time.Second
	cfg.HTTPServer.Timeout.Idle = time.Second
	cfg.HTTPServer.Timeout.ReadHeader = time.Second
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Stock.CreateRetries = 3
	return &cfg
}

func TestNewStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory", func(t *testing.T) {
		s, err := NewStore(memoryConfig(), nil, logger)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("postgres without pool", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Storage.Driver = config.StorageDriverPostgres
		_, err := NewStore(cfg, nil, logger)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Storage.Driver = "sqlite"
		_, err := NewStore(cfg, nil, logger)
		assert.Error(t, err)
	})
}

func TestSetupHttpHandler_Wiring(t *testing.T) {
	// given
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := memoryConfig()
	deps := SetupDependencies(cfg, store.NewInMemoryStore(), nil, logger)
	deps.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})
	h := SetupHttpHandler(deps)

	// when
	create := httptest.NewRecorder()
	h.ServeHTTP(create, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"productName":"Widget","stockAvailable":2}`)))
	metrics := httptest.NewRecorder()
	h.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	ready := httptest.NewRecorder()
	h.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	// then
	assert.Equal(t, http.StatusCreated, create.Code)
	assert.NotEmpty(t, create.Header().Get("X-Request-Id"))
	assert.Equal(t, "metrics", metrics.Body.String())
	assert.Equal(t, http.StatusOK, ready.Code)
}

func TestSetupHttpServer(t *testing.T) {
	cfg := memoryConfig()
	deps := SetupDependencies(cfg, store.NewInMemoryStore(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := SetupHttpServer(deps, cfg)

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadHeaderTimeout)
}
