package logger

import (
	"context"

	"product-catalog/internal/correlation"

	"go.uber.org/zap"
)

// Scope is the logging context of one pipeline invocation. Every entry
// written through it carries the correlation and operation ids plus the
// fields the scope was opened with.
type Scope struct {
	CorrelationID string
	OperationID   string
	log           *zap.Logger
}

type scopeKey struct{}

// NewScope opens a scope for operationID, taking the correlation id from ctx
func NewScope(ctx context.Context, base *zap.Logger, operationID string, fields ...zap.Field) *Scope {
	if base == nil {
		base = zap.NewNop()
	}

	correlationID := correlation.FromContext(ctx)
	all := append([]zap.Field{
		zap.String("correlation_id", correlationID),
		zap.String("operation_id", operationID),
	}, fields...)

	return &Scope{
		CorrelationID: correlationID,
		OperationID:   operationID,
		log:           base.With(all...),
	}
}

// WithScope returns a copy of ctx carrying s
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the logger of the scope stored in ctx, or fallback
// when no scope is active.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if s, ok := ctx.Value(scopeKey{}).(*Scope); ok && s != nil {
		return s.log
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}

// Logger exposes the underlying zap logger
func (s *Scope) Logger() *zap.Logger {
	return s.log
}

func (s *Scope) Debug(event EventID, msg string, fields ...zap.Field) {
	s.log.Debug(msg, append(event.Fields(), fields...)...)
}

func (s *Scope) Info(event EventID, msg string, fields ...zap.Field) {
	s.log.Info(msg, append(event.Fields(), fields...)...)
}

func (s *Scope) Warn(event EventID, msg string, fields ...zap.Field) {
	s.log.Warn(msg, append(event.Fields(), fields...)...)
}

func (s *Scope) Error(event EventID, msg string, fields ...zap.Field) {
	s.log.Error(msg, append(event.Fields(), fields...)...)
}
