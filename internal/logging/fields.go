package logging

// Standardized attribute keys shared across components.
const (
	FieldComponent = "component"
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldStep      = "step"
	FieldEventType = "event_type"
	FieldCardID    = "card_id"
	FieldStrategy  = "strategy"
)
