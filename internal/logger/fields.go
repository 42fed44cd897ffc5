package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldViewID is the gallery view (session) ID
	FieldViewID = "view_id"

	// FieldCategory is the media category being paged
	FieldCategory = "category"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldProvider is the external media provider identifier
	FieldProvider = "provider"
)

// Metric fields, attached per entry for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldPage is the provider page number
	FieldPage = "page"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
