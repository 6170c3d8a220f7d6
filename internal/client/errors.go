package client

import (
	"errors"

	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
)

// ServerError is a typed error decoded from an API error envelope, tagged with
// the request id the server logged it under.
type ServerError struct {
	RequestID string
	err       *pkgerrors.Error
}

func (e *ServerError) Error() string {
	if e.RequestID == "" {
		return e.err.Error()
	}
	return e.err.Error() + " (request " + e.RequestID + ")"
}

func (e *ServerError) Unwrap() error { return e.err }

// RequestID returns the server request id carried by err, if any.
func RequestID(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		return se.RequestID
	}
	return ""
}

// Category is the client-facing bucket an error falls into.
type Category int

const (
	Other Category = iota
	AuthRequired
	Forbidden
	NotFound
	Validation
	Unavailable
)

func (c Category) String() string {
	switch c {
	case AuthRequired:
		return "auth_required"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case Unavailable:
		return "unavailable"
	default:
		return "other"
	}
}

const (
	loginPromptMessage   = "Please sign in to continue."
	forbiddenMessage     = "You don't have permission to do that."
	notFoundMessage      = "We couldn't find what you were looking for."
	unavailableMessage   = "The marketplace is unreachable right now. Please try again."
	genericErrorMessage  = "Something went wrong. Please try again."
	conflictErrorMessage = "That action is not possible right now."
)

// Classify maps err onto a Category. Untyped errors are Other.
func Classify(err error) Category {
	typed := pkgerrors.As(err)
	if typed == nil {
		return Other
	}
	switch typed.Code() {
	case pkgerrors.CodeUnauthorized:
		return AuthRequired
	case pkgerrors.CodeForbidden:
		return Forbidden
	case pkgerrors.CodeNotFound:
		return NotFound
	case pkgerrors.CodeValidation:
		return Validation
	case pkgerrors.CodeDependency, pkgerrors.CodeRateLimit:
		return Unavailable
	default:
		return Other
	}
}

// UserMessage renders err for display. Validation messages come from the
// server and are shown verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch Classify(err) {
	case AuthRequired:
		return loginPromptMessage
	case Forbidden:
		return forbiddenMessage
	case NotFound:
		return notFoundMessage
	case Validation:
		if msg := pkgerrors.As(err).Message(); msg != "" {
			return msg
		}
		return genericErrorMessage
	case Unavailable:
		return unavailableMessage
	}
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeStateConflict, pkgerrors.CodeConflict:
			if msg := typed.Message(); msg != "" {
				return msg
			}
			return conflictErrorMessage
		}
	}
	return genericErrorMessage
}
