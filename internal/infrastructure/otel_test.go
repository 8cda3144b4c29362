package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisingdash/internal/config"
)

func TestInitializeOTel_MetricsOnly(t *testing.T) {
	cfg := config.Default().Observability
	cfg.EnableMetrics = true
	cfg.EnableTracing = false

	providers, err := InitializeOTel(cfg, "test", NewNopLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordUpload(context.Background(), "advising", "success", 42)
	metrics.RecordChartRender(context.Background(), "advising", "weekday", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dataset_uploads_total")
	assert.Contains(t, rec.Body.String(), "dataset_rows_ingested_total")
}

func TestInitializeOTel_RepeatedInitialization(t *testing.T) {
	cfg := config.Default().Observability
	for i := 0; i < 2; i++ {
		providers, err := InitializeOTel(cfg, "test", NewNopLogger())
		require.NoError(t, err)
		require.NoError(t, providers.Shutdown(context.Background()))
	}
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	cfg := config.Default().Observability
	cfg.EnableTracing = true
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, "test", NewNopLogger())
	assert.Error(t, err)
}

func TestNoopProviders(t *testing.T) {
	providers := NewNoopProviders(NewNopLogger())

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordDatasetsActive(context.Background(), 1)

	ctx, span := providers.Tracer.Start(context.Background(), "op")
	defer span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestDashboardMetrics_NilSafe(t *testing.T) {
	var m *DashboardMetrics
	assert.NotPanics(t, func() {
		m.RecordUpload(context.Background(), "workshop", "failed", 0)
		m.RecordDatasetsActive(context.Background(), -1)
		m.RecordChartRender(context.Background(), "workshop", "funnel", time.Second)
		m.RecordHTTPRequest(context.Background(), "GET", "/", 200, time.Millisecond)
		m.RecordActiveRequest(context.Background(), 1)
		m.RecordWebSocketClients(context.Background(), 1)
		m.RecordWebSocketMessage(context.Background(), "dataset.added")
	})
}
