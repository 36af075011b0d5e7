package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"metabulo/internal/config"
	"metabulo/internal/shared/testutil"
)

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name         string
		config       config.TelemetryConfig
		wantErr      bool
		wantTracer   bool
		wantMeter    bool
		wantPromHTTP bool
	}{
		{
			name:         "defaults",
			config:       config.Default().Telemetry,
			wantMeter:    true,
			wantPromHTTP: true,
		},
		{
			name: "stdout tracing and prometheus",
			config: config.TelemetryConfig{
				Environment:    "test",
				EnableTracing:  true,
				EnableMetrics:  true,
				TraceExporter:  "stdout",
				MetricExporter: "prometheus",
				SampleRatio:    1.0,
			},
			wantTracer:   true,
			wantMeter:    true,
			wantPromHTTP: true,
		},
		{
			name: "everything disabled",
			config: config.TelemetryConfig{
				Environment:    "test",
				TraceExporter:  "none",
				MetricExporter: "none",
			},
		},
		{
			name: "unsupported trace exporter",
			config: config.TelemetryConfig{
				EnableTracing: true,
				TraceExporter: "jaeger",
			},
			wantErr: true,
		},
		{
			name: "unsupported metric exporter",
			config: config.TelemetryConfig{
				EnableMetrics:  true,
				MetricExporter: "statsd",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			providers, err := InitializeOTel(tt.config, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			// Tracer and Meter are always usable
			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantTracer, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMeter, providers.MeterProvider != nil)
			assert.Equal(t, tt.wantPromHTTP, providers.PrometheusHTTP != nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(config.TelemetryConfig{
		EnableTracing: true,
		TraceExporter: "stdout",
		SampleRatio:   1.0,
	}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))

	RecordError(ctx, assert.AnError)
	assert.True(t, span.IsRecording())
}

func TestBusinessMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(config.Default().Telemetry, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	RecordHTTPRequest(ctx, metrics, http.MethodGet, "/api/v1/csv", http.StatusOK, 15*time.Millisecond)
	RecordUpload(ctx, metrics, "csv", 2048)
	RecordValidation(ctx, metrics, true, 3)
	RecordProcessingStep(ctx, metrics, "scaling", "auto", time.Millisecond, true)
	RecordDownload(ctx, metrics, true)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "csv_uploads_total")
	assert.Contains(t, string(body), "imputed_cells_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordHTTPRequest(ctx, nil, http.MethodGet, "/", http.StatusOK, time.Second)
		RecordActiveRequestChange(ctx, nil, 1)
		RecordUpload(ctx, nil, "csv", 1)
		RecordValidation(ctx, nil, false, 0)
		RecordProcessingStep(ctx, nil, "scaling", "auto", time.Second, false)
		RecordDownload(ctx, nil, false)
	})
}

func TestBusinessMetrics_NoopMeter(t *testing.T) {
	metrics, err := CreateBusinessMetrics(otel.Meter("noop"))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		RecordDownload(context.Background(), metrics, false)
	})
}
