package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StoreMetrics records per-table store operations.
//
// Table examples: "transactions", "bills". Operation examples: "add", "get",
// "query", "update", "delete", "export". Status is "success" or "error".
type StoreMetrics interface {
	// RecordOperation counts one store operation with its status.
	RecordOperation(ctx context.Context, table, operation, status string)

	// RecordDuration records how long a store operation took, in seconds,
	// as a histogram for percentile calculations.
	RecordDuration(ctx context.Context, table, operation string, duration time.Duration, status string)

	// RecordDecryptFailure counts a stored field that failed authentication
	// on read and was substituted with the unreadable sentinel.
	RecordDecryptFailure(ctx context.Context, table, field string)
}

// storeMetrics implements StoreMetrics using OpenTelemetry instruments.
type storeMetrics struct {
	operationCounter      metric.Int64Counter
	durationHisto         metric.Float64Histogram
	decryptFailureCounter metric.Int64Counter
}

// NewStoreMetrics creates a StoreMetrics implementation on the given meter
// provider. The namespace prefixes the metric names.
func NewStoreMetrics(meterProvider metric.MeterProvider, namespace string) (StoreMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_store_operations_total", namespace),
		metric.WithDescription("Total number of store operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_store_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of store operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	decryptFailureCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_store_decrypt_failures_total", namespace),
		metric.WithDescription("Total number of stored fields that failed decryption"),
		metric.WithUnit("{field}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decrypt failure counter: %w", err)
	}

	return &storeMetrics{
		operationCounter:      operationCounter,
		durationHisto:         durationHisto,
		decryptFailureCounter: decryptFailureCounter,
	}, nil
}

// RecordOperation increments the operation counter with table, operation, and status labels.
func (s *storeMetrics) RecordOperation(ctx context.Context, table, operation, status string) {
	s.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("table", table),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the operation duration with table, operation, and status labels.
func (s *storeMetrics) RecordDuration(
	ctx context.Context,
	table, operation string,
	duration time.Duration,
	status string,
) {
	s.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("table", table),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDecryptFailure increments the decrypt failure counter with table and field labels.
func (s *storeMetrics) RecordDecryptFailure(ctx context.Context, table, field string) {
	s.decryptFailureCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("table", table),
			attribute.String("field", field),
		),
	)
}

// NoOpStoreMetrics is used when metrics collection is disabled.
type NoOpStoreMetrics struct{}

// NewNoOpStoreMetrics creates a no-op StoreMetrics implementation.
func NewNoOpStoreMetrics() StoreMetrics {
	return &NoOpStoreMetrics{}
}

// RecordOperation does nothing when metrics are disabled.
func (n *NoOpStoreMetrics) RecordOperation(ctx context.Context, table, operation, status string) {
	// No-op
}

// RecordDuration does nothing when metrics are disabled.
func (n *NoOpStoreMetrics) RecordDuration(
	ctx context.Context,
	table, operation string,
	duration time.Duration,
	status string,
) {
	// No-op
}

// RecordDecryptFailure does nothing when metrics are disabled.
func (n *NoOpStoreMetrics) RecordDecryptFailure(ctx context.Context, table, field string) {
	// No-op
}
