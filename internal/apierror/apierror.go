// Package apierror provides standardized error response structures for the gateway.
// All errors returned to the terminal UI go through this package so that remote
// API bodies, driver errors and stack traces never leak to the client.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Retryable tells the UI that repeating the same action may succeed
// (remote API down, outbox retry pending).
// VentaID is set when a sale was registered remotely but the request still
// failed, so the operator can reconcile it by hand.
type APIError struct {
	Detail    string `json:"detail"`
	Retryable bool   `json:"retryable,omitempty"`
	VentaID   int64  `json:"venta_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewRetryable is New with Retryable set.
func NewRetryable(msg string) *APIError {
	return &APIError{Detail: msg, Retryable: true}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
