// Package metrics emits the per-operation metrics record of the product
// pipeline to the structured log and to Prometheus.
package metrics

import (
	"context"

	"product-catalog/internal/correlation"
	"product-catalog/internal/domain"
	"product-catalog/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Recorder accepts exactly one OperationMetrics value per pipeline call.
// Implementations must not fail the caller.
type Recorder interface {
	Record(ctx context.Context, m domain.OperationMetrics)
}

// LogRecorder writes the metrics record as a single structured log line
type LogRecorder struct {
	logger *zap.Logger
}

func NewLogRecorder(log *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: log}
}

// Record logs through the base logger rather than the operation scope; the
// record already names the operation and product.
func (r *LogRecorder) Record(ctx context.Context, m domain.OperationMetrics) {
	fields := append(logger.OperationMetricsRecorded.Fields(),
		zap.String("correlation_id", correlation.FromContext(ctx)),
		zap.String("operation_id", m.OperationID),
		zap.String("product_name", m.ProductName),
		zap.String("sku", m.SKU),
		zap.String("category", m.Category.String()),
		zap.Float64("validation_ms", float64(m.ValidationDuration.Microseconds())/1000),
		zap.Float64("database_ms", float64(m.PersistenceDuration.Microseconds())/1000),
		zap.Float64("total_ms", float64(m.TotalDuration.Microseconds())/1000),
		zap.Bool("success", m.Success),
		zap.String("error_reason", m.ErrorReason),
	)
	r.logger.Info("Product operation metrics", fields...)
}

// PrometheusRecorder aggregates operation outcomes and stage durations
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the product pipeline collectors on reg
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "catalog",
				Subsystem: "product",
				Name:      "create_operations_total",
				Help:      "Total number of product creation attempts by category and result.",
			},
			[]string{"category", "result"}, // result = "success" | "failure"
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "catalog",
				Subsystem: "product",
				Name:      "create_stage_duration_seconds",
				Help:      "Duration of product creation stages in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms → ~4s
			},
			[]string{"stage"}, // validation | database | total
		),
	}

	reg.MustRegister(r.operations, r.duration)
	return r
}

func (r *PrometheusRecorder) Record(_ context.Context, m domain.OperationMetrics) {
	result := "success"
	if !m.Success {
		result = "failure"
	}

	r.operations.WithLabelValues(m.Category.String(), result).Inc()
	r.duration.WithLabelValues("validation").Observe(m.ValidationDuration.Seconds())
	r.duration.WithLabelValues("database").Observe(m.PersistenceDuration.Seconds())
	r.duration.WithLabelValues("total").Observe(m.TotalDuration.Seconds())
}

// Multi fans one record out to several recorders
type Multi []Recorder

func (m Multi) Record(ctx context.Context, om domain.OperationMetrics) {
	for _, r := range m {
		r.Record(ctx, om)
	}
}
