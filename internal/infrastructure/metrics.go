package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// CSV lifecycle metrics
	CSVUploadsTotal    metric.Int64Counter
	CSVUploadBytes     metric.Int64Histogram
	ValidationsTotal   metric.Int64Counter
	DownloadsTotal     metric.Int64Counter
	ProcessingDuration metric.Float64Histogram
	ProcessingFailures metric.Int64Counter
	ImputedCellsTotal  metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	csvUploadsTotal, err := meter.Int64Counter(
		"csv_uploads_total",
		metric.WithDescription("Total number of stored uploads"),
	)
	if err != nil {
		return nil, err
	}

	csvUploadBytes, err := meter.Int64Histogram(
		"csv_upload_bytes",
		metric.WithDescription("Size of uploaded files"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	validationsTotal, err := meter.Int64Counter(
		"csv_validations_total",
		metric.WithDescription("Total number of validation attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	downloadsTotal, err := meter.Int64Counter(
		"csv_downloads_total",
		metric.WithDescription("Total number of processed table downloads"),
	)
	if err != nil {
		return nil, err
	}

	processingDuration, err := meter.Float64Histogram(
		"processing_step_duration_seconds",
		metric.WithDescription("Duration of a single processing step in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	processingFailures, err := meter.Int64Counter(
		"processing_failures_total",
		metric.WithDescription("Total number of failed processing pipelines"),
	)
	if err != nil {
		return nil, err
	}

	imputedCellsTotal, err := meter.Int64Counter(
		"imputed_cells_total",
		metric.WithDescription("Total number of missing measurement cells imputed during validation"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,
		CSVUploadsTotal:     csvUploadsTotal,
		CSVUploadBytes:      csvUploadBytes,
		ValidationsTotal:    validationsTotal,
		DownloadsTotal:      downloadsTotal,
		ProcessingDuration:  processingDuration,
		ProcessingFailures:  processingFailures,
		ImputedCellsTotal:   imputedCellsTotal,
	}, nil
}

// RecordHTTPRequest records a finished HTTP request
func RecordHTTPRequest(ctx context.Context, metrics *BusinessMetrics, method, route string, status int, duration time.Duration) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
	metrics.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordActiveRequestChange records changes in the number of in-flight requests
func RecordActiveRequestChange(ctx context.Context, metrics *BusinessMetrics, delta int64) {
	if metrics == nil {
		return
	}
	metrics.HTTPActiveRequests.Add(ctx, delta)
}

// RecordUpload records a stored upload
func RecordUpload(ctx context.Context, metrics *BusinessMetrics, format string, size int64) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("format", format))
	metrics.CSVUploadsTotal.Add(ctx, 1, attrs)
	metrics.CSVUploadBytes.Record(ctx, size, attrs)
}

// RecordValidation records a validation attempt and the number of imputed cells
func RecordValidation(ctx context.Context, metrics *BusinessMetrics, success bool, imputed int) {
	if metrics == nil {
		return
	}

	outcome := "valid"
	if !success {
		outcome = "invalid"
	}
	metrics.ValidationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if imputed > 0 {
		metrics.ImputedCellsTotal.Add(ctx, int64(imputed))
	}
}

// RecordProcessingStep records the duration of one pipeline step
func RecordProcessingStep(ctx context.Context, metrics *BusinessMetrics, step, method string, duration time.Duration, success bool) {
	if metrics == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}
	metrics.ProcessingDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("method", method),
		attribute.String("status", status),
	))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("processing.step",
			trace.WithAttributes(
				attribute.String("step", step),
				attribute.String("method", method),
				attribute.Float64("duration_seconds", duration.Seconds()),
			),
		)
	}
}

// RecordDownload records a download and whether its pipeline succeeded
func RecordDownload(ctx context.Context, metrics *BusinessMetrics, success bool) {
	if metrics == nil {
		return
	}

	if !success {
		metrics.ProcessingFailures.Add(ctx, 1)
		return
	}
	metrics.DownloadsTotal.Add(ctx, 1)
}
