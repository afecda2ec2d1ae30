package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldExpenseID     = "expense_id"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldCacheKey      = "cache_key"
	FieldCacheHit      = "cache_hit"
	FieldImported      = "imported"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentExpense   = "expense"
	ComponentStorage   = "storage"
	ComponentCache     = "cache"
	ComponentEvents    = "events"
	ComponentWorker    = "worker"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpDelete     = "delete"
	OpList       = "list"
	OpSummary    = "summary"
	OpImport     = "import"
	OpRegister   = "register"
	OpLogin      = "login"
	OpInvalidate = "invalidate"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
