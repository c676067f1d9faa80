package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldParent     = "parent"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldModule     = "module"
	FieldEntityID   = "entity_id"
	FieldStateKey   = "state_key"
)

// Components
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentNotes   = "notes"
	ComponentLedger  = "ledger"
	ComponentTasks   = "tasks"
	ComponentHabits  = "habits"
	ComponentStorage = "storage"
	ComponentEvents  = "events"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpToggle    = "toggle"
	OpComplete  = "complete"
	OpUndo      = "undo"
	OpReset     = "reset"
	OpReconcile = "reconcile"
	OpLoad      = "load"
	OpSave      = "save"
	OpPublish   = "publish"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// Error categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to key/value pairs for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
