// Package log defines shared field names for structured logging so the
// same key never appears under two spellings across components.
package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldConfidence = "confidence"
)

// Component names used with FieldComponent
const (
	ComponentWorker    = "worker"
	ComponentRateLimit = "rate_limit"
)
