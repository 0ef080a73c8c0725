package contract

import "errors"

var (
	ErrModelInvoke      = errors.New("model invoke failed")
	ErrModelUnavailable = errors.New("model backend is not configured")
	ErrSchemaViolation  = errors.New("response violates schema")
	ErrPromptMissing    = errors.New("required prompt is missing")
	ErrValidation       = errors.New("validation failed")
	ErrUnknownAgent     = errors.New("agent not found in registry")
	ErrIntentMismatch   = errors.New("intent not allowed for agent")
	ErrEmptyQuery       = errors.New("query cannot be empty")
)

// ErrorKind is the wire value of CallError.Type.
type ErrorKind string

const (
	KindUnknownAgent   ErrorKind = "unknown_agent"
	KindIntentMismatch ErrorKind = "intent_mismatch"
	KindSchemaError    ErrorKind = "schema_error"
	KindConfigError    ErrorKind = "config_error"
	KindNetworkError   ErrorKind = "network_error"
	KindHTTPError      ErrorKind = "http_error"
	KindParseError     ErrorKind = "parse_error"
	KindHandlerError   ErrorKind = "handler_error"
)
