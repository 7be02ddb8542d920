package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldUserID     = "user_id"
	FieldCardID     = "card_id"
	FieldCycle      = "cycle"
	FieldDueDate    = "due_date"
	FieldAmount     = "amount_cents"
	FieldStatus     = "invoice_status"
	FieldHorizon    = "horizon_months"
	FieldFormat     = "export_format"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentBilling = "billing"
	ComponentStore   = "store"
	ComponentAuth    = "auth"
	ComponentAMQP    = "amqp"
	ComponentAlerts  = "alerts"
	ComponentExport  = "export"
	ComponentWorker  = "worker"
)
