package domain

import "time"

// OperationMetrics summarises a single product creation attempt. One value
// is emitted per attempt, whatever the outcome.
type OperationMetrics struct {
	OperationID         string        `json:"operation_id"`
	ProductName         string        `json:"product_name"`
	SKU                 string        `json:"sku"`
	Category            Category      `json:"category"`
	ValidationDuration  time.Duration `json:"validation_duration"`
	PersistenceDuration time.Duration `json:"persistence_duration"`
	TotalDuration       time.Duration `json:"total_duration"`
	Success             bool          `json:"success"`
	ErrorReason         string        `json:"error_reason,omitempty"`
}
