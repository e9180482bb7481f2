package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
)

func TestNewMeterProvider_ExposesCounters(t *testing.T) {
	// given
	m, err := NewMeterProvider("product-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Provider.Shutdown(context.Background()) })

	counter, err := m.Provider.Meter("test").Int64Counter("stock_operations", metric.WithDescription("test counter"))
	require.NoError(t, err)

	// when
	counter.Add(context.Background(), 3)
	rr := httptest.NewRecorder()
	m.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stock_operations_total")
	assert.Contains(t, string(body), "go_goroutines")
}
