package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldUserID         = "user_id"
	FieldBudgetID       = "budget_id"
	FieldTransactionID  = "transaction_id"
	FieldNotificationID = "notification_id"
	FieldCategory       = "category"
	FieldAmount         = "amount"
	FieldPercentSpent   = "percentage_spent"
	FieldProvider       = "provider"
	FieldMessageID      = "message_id"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentWorker = "worker"
)
