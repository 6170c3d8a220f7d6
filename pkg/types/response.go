package types

// RequestIDHeader carries the correlation id on requests and responses.
const RequestIDHeader = "X-Request-Id"

// Envelope is the success body every endpoint returns: {"data": ...}.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// SuccessEnvelope is the untyped envelope handlers write.
type SuccessEnvelope = Envelope[any]

// APIError is the public half of a typed error. RequestID echoes the
// correlation id so a user report can be matched to server logs.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
