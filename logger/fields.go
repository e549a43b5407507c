package logger

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor, set on the gin context by the auth middleware
	FieldUserID   = "user_id"
	FieldUsername = "username"

	FieldService = "service"

	// Domain
	FieldRoomID     = "chat_room_id"
	FieldMessageID  = "message_id"
	FieldPropertyID = "property_id"
)
