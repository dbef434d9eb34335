package model

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Class separates failures worth retrying from ones that are not.
type Class string

const (
	ClassTransient Class = "transient"
	ClassFatal     Class = "fatal"
)

// Reason is the specific failure classification.
type Reason string

const (
	ReasonTimeout          Reason = "timeout"
	ReasonRateLimited      Reason = "rate_limited"
	ReasonUnavailable      Reason = "unavailable"
	ReasonCanceled         Reason = "canceled"
	ReasonMalformedRequest Reason = "malformed_request"
	ReasonSchemaRejected   Reason = "schema_rejected"
	ReasonUnauthorized     Reason = "unauthorized"
	ReasonUnknown          Reason = "unknown"
)

// Error is a classified model invocation failure.
type Error struct {
	Class      Class  `json:"class"`
	Reason     Reason `json:"reason"`
	Provider   string `json:"provider,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Class))
	b.WriteString(" model error (")
	b.WriteString(string(e.Reason))
	b.WriteString(")")
	if e.Provider != "" {
		b.WriteString(" from ")
		b.WriteString(e.Provider)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure may succeed if attempted again.
func (e *Error) Transient() bool {
	return e.Class == ClassTransient
}

// NewTransient creates a transient error.
func NewTransient(reason Reason, message string) *Error {
	return &Error{Class: ClassTransient, Reason: reason, Message: message}
}

// NewFatal creates a fatal error.
func NewFatal(reason Reason, message string) *Error {
	return &Error{Class: ClassFatal, Reason: reason, Message: message}
}

// FromStatus classifies an HTTP status returned by a model API.
func FromStatus(provider string, status int, message string) *Error {
	e := &Error{Provider: provider, StatusCode: status, Message: message}
	switch {
	case status == http.StatusTooManyRequests:
		e.Class, e.Reason = ClassTransient, ReasonRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		e.Class, e.Reason = ClassTransient, ReasonTimeout
	case status >= 500:
		e.Class, e.Reason = ClassTransient, ReasonUnavailable
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Class, e.Reason = ClassFatal, ReasonUnauthorized
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Class, e.Reason = ClassFatal, ReasonMalformedRequest
		if mentionsSchema(message) {
			e.Reason = ReasonSchemaRejected
		}
	default:
		e.Class, e.Reason = ClassFatal, ReasonUnknown
	}
	return e
}

// Classify converts any error into an *Error. Errors that are already
// classified are returned unchanged.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var me *Error
	if errors.As(err, &me) {
		return me
	}

	e := &Error{Provider: provider, Message: err.Error(), Err: err}
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		e.Class, e.Reason = ClassTransient, ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		e.Class, e.Reason = ClassTransient, ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		e.Class, e.Reason = ClassTransient, ReasonTimeout
	case errors.As(err, &netErr):
		e.Class, e.Reason = ClassTransient, ReasonUnavailable
	default:
		e.Class, e.Reason = ClassFatal, ReasonUnknown
	}
	return e
}

func mentionsSchema(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "schema") || strings.Contains(m, "response_format")
}

// Wrap attaches a cause to a classified error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	if e.Message == "" && err != nil {
		e.Message = err.Error()
	}
	return e
}
