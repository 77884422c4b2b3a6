package logger

import "go.uber.org/zap"

// EventID identifies the kind of a pipeline log entry
type EventID int

const (
	ProductCreationStarted     EventID = 2001
	ProductCreationCompleted   EventID = 2002
	ProductValidationFailed    EventID = 2003
	DatabaseOperationStarted   EventID = 2004
	DatabaseOperationCompleted EventID = 2005
	CacheOperationPerformed    EventID = 2006
	SKUValidationPerformed     EventID = 2007
	StockValidationPerformed   EventID = 2008
	ProductPersistenceFailed   EventID = 2009
	OperationMetricsRecorded   EventID = 2010
)

var eventNames = map[EventID]string{
	ProductCreationStarted:     "product_creation_started",
	ProductCreationCompleted:   "product_creation_completed",
	ProductValidationFailed:    "product_validation_failed",
	DatabaseOperationStarted:   "database_operation_started",
	DatabaseOperationCompleted: "database_operation_completed",
	CacheOperationPerformed:    "cache_operation_performed",
	SKUValidationPerformed:     "sku_validation_performed",
	StockValidationPerformed:   "stock_validation_performed",
	ProductPersistenceFailed:   "product_persistence_failed",
	OperationMetricsRecorded:   "operation_metrics_recorded",
}

func (e EventID) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "unknown"
}

// Fields returns the zap fields tagging an entry with this event
func (e EventID) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("event_id", int(e)),
		zap.String("event", e.String()),
	}
}
