package log

import "fintrack/internal/core"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldKey           = "key"
	FieldTransactionID = "transaction_id"
	FieldType          = "type"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldDate          = "date"
	FieldCount         = "count"
	FieldJobID         = "job_id"
)

const (
	ComponentApp     = "app"
	ComponentTracker = "tracker"
	ComponentMirror  = "mirror"
	ComponentStorage = "storage"
	ComponentHTTP    = "http"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentExport  = "export"
	ComponentBackend = "backend"
)

const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpReset   = "reset"
	OpLoad    = "load"
	OpPersist = "persist"
	OpSetting = "setting"
	OpExport  = "export"
	OpConfirm = "confirm"
	OpCancel  = "cancel"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithKey adds the persistence key being read or written.
func (f LogFields) WithKey(key string) LogFields {
	f[FieldKey] = key
	return f
}

// WithTransaction adds the identifying fields of a transaction. Descriptions
// are free text and stay out of the logs.
func (f LogFields) WithTransaction(t core.Transaction) LogFields {
	f[FieldTransactionID] = t.ID
	f[FieldType] = string(t.Type)
	f[FieldAmountCents] = t.Amount.Cents
	f[FieldCategory] = t.Category
	f[FieldDate] = t.Date.String()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
