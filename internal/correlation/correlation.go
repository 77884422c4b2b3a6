// Package correlation threads a correlation id through one external request.
//
// The HTTP middleware honours an incoming X-Correlation-ID header or
// generates a new id, echoes it on the response and stores it in the request
// context, where the product pipeline picks it up for every log line.
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header is the HTTP header used to propagate the correlation id
const Header = "X-Correlation-ID"

// New generates a fresh correlation id
func New() string {
	return uuid.New().String()
}

// WithID stores id in ctx
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation id stored in ctx, or "" when absent
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// NewOperationID returns the short token that groups the log lines and
// metrics of one pipeline invocation.
func NewOperationID() string {
	return uuid.New().String()[:8]
}

// Middleware injects the correlation id into the request context and the
// response headers.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if id == "" {
				id = New()
			}

			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
