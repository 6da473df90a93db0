package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error the way API consumers need to distinguish them:
// a business rejection is not the same as an unreachable collaborator.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnprocessable
	KindNotFound
	KindForbidden
	KindServiceUnavailable
)

// FieldError is a single field-level failure. Field may be empty when the
// error is not tied to one input field. Details carries structured extras
// (companyId, origin service name) for diagnostics.
type FieldError struct {
	Field   string         `json:"field"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error is the shared error shape for all domain failures. Batch validations
// accumulate several FieldErrors into one Error so a client can fix every
// reported field in a single round trip.
type Error struct {
	Kind   Kind
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
			continue
		}
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func newError(kind Kind, fields []FieldError) *Error {
	return &Error{Kind: kind, Fields: fields}
}

func BadRequest(field, message string) *Error {
	return newError(KindBadRequest, []FieldError{{Field: field, Message: message}})
}

func BadRequestFields(fields []FieldError) *Error {
	return newError(KindBadRequest, fields)
}

func Unprocessable(field, message string) *Error {
	return newError(KindUnprocessable, []FieldError{{Field: field, Message: message}})
}

func UnprocessableWithDetails(field, message string, details map[string]any) *Error {
	return newError(KindUnprocessable, []FieldError{{Field: field, Message: message, Details: details}})
}

func UnprocessableFields(fields []FieldError) *Error {
	return newError(KindUnprocessable, fields)
}

func NotFound(field, message string) *Error {
	return newError(KindNotFound, []FieldError{{Field: field, Message: message}})
}

func Forbidden(field, message string) *Error {
	return newError(KindForbidden, []FieldError{{Field: field, Message: message}})
}

// ServiceUnavailable tags an unrecognized remote failure with the origin
// service name so callers can tell "rejected for a business reason" apart
// from "the remote system could not be reached or understood".
func ServiceUnavailable(service, message string) *Error {
	return newError(KindServiceUnavailable, []FieldError{{
		Message: message,
		Details: map[string]any{"service": service},
	}})
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

func IsBadRequest(err error) bool    { return IsKind(err, KindBadRequest) }
func IsUnprocessable(err error) bool { return IsKind(err, KindUnprocessable) }
func IsNotFound(err error) bool      { return IsKind(err, KindNotFound) }
func IsForbidden(err error) bool     { return IsKind(err, KindForbidden) }
func IsServiceUnavailable(err error) bool {
	return IsKind(err, KindServiceUnavailable)
}

// IsDomainRejection reports whether the remote side understood the request
// and rejected it for a business reason. Callers use this to decide whether
// a local transaction must roll back (rejection) or may be retried (outage).
func IsDomainRejection(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindBadRequest, KindUnprocessable, KindNotFound, KindForbidden:
		return true
	}
	return false
}

// Collector accumulates field errors across a batch validation and raises
// them together instead of failing on the first one.
type Collector struct {
	fields []FieldError
}

func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	var e *Error
	if errors.As(err, &e) {
		c.fields = append(c.fields, e.Fields...)
		return
	}
	c.fields = append(c.fields, FieldError{Message: err.Error()})
}

func (c *Collector) HasErrors() bool { return len(c.fields) > 0 }

func (c *Collector) Unprocessable() error {
	if len(c.fields) == 0 {
		return nil
	}
	return newError(KindUnprocessable, c.fields)
}
