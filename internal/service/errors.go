package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/talentflow/internal/assessment"
	"github.com/jonathan/talentflow/internal/schemas"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrSimulated matches every *SimulatedError.
	ErrSimulated = errors.New("simulated server error")
)

// NotFoundError indicates the requested record does not exist
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// SimulatedError is an injected transient failure. Callers surface it and do not retry.
type SimulatedError struct {
	Op string
}

func (e *SimulatedError) Error() string {
	return "Failed to " + e.Op
}

// Is lets errors.Is(err, ErrSimulated) match.
func (e *SimulatedError) Is(target error) bool {
	return target == ErrSimulated
}

// ValidationError indicates the request was rejected before any write
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// ConflictError indicates the request was based on state that has since changed
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// invalid converts validator, assessment and schema errors into a *ValidationError.
func invalid(msg string, err error) error {
	if err == nil {
		return nil
	}
	out := &ValidationError{Message: msg, Fields: map[string]string{}}

	var fieldErrs validator.ValidationErrors
	var answerErr *assessment.ValidationError
	var schemaErr *schemas.ValidationError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			out.Fields[fieldPath(fe.Namespace())] = describeTag(fe)
		}
	case errors.As(err, &answerErr):
		out.Fields = answerErr.Fields()
	case errors.As(err, &schemaErr):
		out.Fields = schemaErr.Fields()
	default:
		out.Message = msg + ": " + err.Error()
	}
	return out
}

// fieldPath drops the top-level struct name from a validator namespace,
// e.g. "SaveAssessmentRequest.sections[0].title" becomes "sections[0].title".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	default:
		return "Failed " + fe.Tag() + " check"
	}
}
