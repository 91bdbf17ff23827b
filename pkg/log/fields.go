package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware keys)
	FieldUserID   = "user_id"
	FieldTargetID = "target_id"

	// Pipeline
	FieldEventID      = "event_id"
	FieldEventType    = "event_type"
	FieldChannel      = "channel"
	FieldConnectionID = "connection_id"
	FieldWorker       = "worker"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
