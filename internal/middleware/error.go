package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"product-catalog/internal/correlation"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Error codes returned in the error body
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeConflict    = "DB_UPDATE_ERROR"
	CodeInternal    = "INTERNAL_SERVER_ERROR"
	CodeBadRequest  = "BAD_REQUEST"
	CodeRateLimited = "RATE_LIMIT_EXCEEDED"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	writeError(w, statusCode, ErrorDetail{
		Code:    codeForStatus(statusCode),
		Message: message,
		Details: details,
	})
}

// RespondWithProblem sends an error with an explicit code. The trace id is
// the request's correlation id, or chi's request id when none is set.
func RespondWithProblem(w http.ResponseWriter, r *http.Request, statusCode int, code, message string, details map[string]interface{}) {
	writeError(w, statusCode, ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
		TraceID: traceID(r),
	})
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, r *http.Request, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	RespondWithProblem(w, r, http.StatusBadRequest, CodeValidation, "Validation failed", details)
}

func writeError(w http.ResponseWriter, statusCode int, detail ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	detail.Timestamp = time.Now().UTC().Format(time.RFC3339)
	json.NewEncoder(w).Encode(ErrorResponse{Error: detail})
}

// codeForStatus turns "Too Many Requests" into "TOO_MANY_REQUESTS"
func codeForStatus(statusCode int) string {
	text := http.StatusText(statusCode)
	if text == "" {
		return CodeInternal
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

func traceID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id := correlation.FromContext(r.Context()); id != "" {
		return id
	}
	return middleware.GetReqID(r.Context())
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.String("correlation_id", correlation.FromContext(r.Context())),
					)

					RespondWithProblem(w, r, http.StatusInternalServerError, CodeInternal,
						"An unexpected error occurred", nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
