package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DashboardMetrics holds the instruments recorded by the HTTP layer and the
// dataset services.
type DashboardMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	DatasetUploadsTotal metric.Int64Counter
	DatasetRowsIngested metric.Int64Counter
	DatasetsActive      metric.Int64UpDownCounter
	ChartRenderDuration metric.Float64Histogram

	WebSocketClients      metric.Int64UpDownCounter
	WebSocketMessagesSent metric.Int64Counter
}

// CreateDashboardMetrics creates application-specific metrics
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	var (
		m   DashboardMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.DatasetUploadsTotal, err = meter.Int64Counter(
		"dataset_uploads_total",
		metric.WithDescription("Total number of dataset uploads by kind and outcome"),
	); err != nil {
		return nil, err
	}

	if m.DatasetRowsIngested, err = meter.Int64Counter(
		"dataset_rows_ingested_total",
		metric.WithDescription("Total number of data rows parsed from uploads"),
	); err != nil {
		return nil, err
	}

	if m.DatasetsActive, err = meter.Int64UpDownCounter(
		"datasets_active",
		metric.WithDescription("Number of datasets held in memory"),
	); err != nil {
		return nil, err
	}

	if m.ChartRenderDuration, err = meter.Float64Histogram(
		"chart_render_duration_seconds",
		metric.WithDescription("Chart rendering duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.WebSocketClients, err = meter.Int64UpDownCounter(
		"websocket_clients",
		metric.WithDescription("Number of connected event stream clients"),
	); err != nil {
		return nil, err
	}

	if m.WebSocketMessagesSent, err = meter.Int64Counter(
		"websocket_messages_sent_total",
		metric.WithDescription("Total number of event messages queued to clients"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordUpload counts one upload attempt and the rows it produced.
func (m *DashboardMetrics) RecordUpload(ctx context.Context, kind, outcome string, rows int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	)
	m.DatasetUploadsTotal.Add(ctx, 1, attrs)
	if rows > 0 {
		m.DatasetRowsIngested.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordDatasetsActive adjusts the resident dataset gauge.
func (m *DashboardMetrics) RecordDatasetsActive(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.DatasetsActive.Add(ctx, delta)
}

// RecordChartRender records how long one chart took to render.
func (m *DashboardMetrics) RecordChartRender(ctx context.Context, kind, chart string, d time.Duration) {
	if m == nil {
		return
	}
	m.ChartRenderDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("chart", chart),
	))
}

// RecordHTTPRequest records one completed request.
func (m *DashboardMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordActiveRequest adjusts the in-flight request gauge.
func (m *DashboardMetrics) RecordActiveRequest(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Add(ctx, delta)
}

// RecordWebSocketClients adjusts the connected client gauge.
func (m *DashboardMetrics) RecordWebSocketClients(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketClients.Add(ctx, delta)
}

// RecordWebSocketMessage counts one message queued to a client.
func (m *DashboardMetrics) RecordWebSocketMessage(ctx context.Context, msgType string) {
	if m == nil {
		return
	}
	m.WebSocketMessagesSent.Add(ctx, 1, metric.WithAttributes(attribute.String("type", msgType)))
}
