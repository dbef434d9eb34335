package flow

import (
	"errors"
	"fmt"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

var (
	// ErrNotFound is returned when no flow is registered under a name.
	ErrNotFound = errors.New("flow not found")

	// ErrDuplicateFlow is returned when registering a name twice.
	ErrDuplicateFlow = errors.New("flow already registered")

	// ErrInvalidDefinition is returned for a malformed flow definition.
	ErrInvalidDefinition = errors.New("invalid flow definition")
)

// ErrorKind classifies a failed invocation.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindInputValidation  ErrorKind = "input_validation"
	KindRender           ErrorKind = "render"
	KindModelInvocation  ErrorKind = "model_invocation"
	KindOutputValidation ErrorKind = "output_validation"
)

// ErrorDetail describes why an invocation failed. Fields is set for the two
// validation kinds and Model for model_invocation.
type ErrorDetail struct {
	Kind    ErrorKind          `json:"kind"`
	Flow    string             `json:"flow"`
	Stage   Stage              `json:"stage,omitempty"`
	Message string             `json:"message"`
	Fields  schema.FieldErrors `json:"fields,omitempty"`
	Model   *model.Error       `json:"model,omitempty"`

	cause error
}

func (e *ErrorDetail) Error() string {
	return fmt.Sprintf("flow %s: %s: %s", e.Flow, e.Kind, e.Message)
}

// Unwrap exposes ErrNotFound, the *model.Error, or the field errors.
func (e *ErrorDetail) Unwrap() error {
	if e.Model != nil {
		return e.Model
	}
	return e.cause
}

// Transient reports whether the failure was a transient model error.
func (e *ErrorDetail) Transient() bool {
	return e.Model != nil && e.Model.Transient()
}

func notFound(name string, err error) *ErrorDetail {
	return &ErrorDetail{Kind: KindNotFound, Flow: name, Message: err.Error(), cause: err}
}

func invalidInput(name string, errs schema.FieldErrors) *ErrorDetail {
	return &ErrorDetail{
		Kind:    KindInputValidation,
		Flow:    name,
		Stage:   StageValidating,
		Message: fmt.Sprintf("input does not match schema: %s", errs.Error()),
		Fields:  errs,
		cause:   errs,
	}
}

func renderFailed(name string, err error) *ErrorDetail {
	return &ErrorDetail{Kind: KindRender, Flow: name, Stage: StagePrompting, Message: err.Error(), cause: err}
}

func invocationFailed(name string, err *model.Error) *ErrorDetail {
	return &ErrorDetail{Kind: KindModelInvocation, Flow: name, Stage: StageInvoking, Message: err.Error(), Model: err}
}

func invalidOutput(name string, errs schema.FieldErrors) *ErrorDetail {
	return &ErrorDetail{
		Kind:    KindOutputValidation,
		Flow:    name,
		Stage:   StageParsingOutput,
		Message: fmt.Sprintf("model output does not match schema: %s", errs.Error()),
		Fields:  errs,
		cause:   errs,
	}
}
