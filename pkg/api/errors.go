package api

import (
	"fmt"

	"github.com/latticehq/lattice/pkg/rbac"
	"github.com/latticehq/lattice/pkg/store"
)

// ErrorCode classifies a typed failure
type ErrorCode string

const (
	CodeNotFound      ErrorCode = "not_found"
	CodeUnauthorized  ErrorCode = "unauthorized"
	CodeForbidden     ErrorCode = "forbidden"
	CodeConflict      ErrorCode = "conflict"
	CodeInvalidMethod ErrorCode = "invalid_method"
	CodeValidation    ErrorCode = "validation_error"
)

// Error is a typed failure returned as data from the dispatcher
type Error struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrNotFound builds a not-found failure naming the unresolved identity
func ErrNotFound(resource, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// ErrEndpointNotFound builds a not-found failure for an unknown endpoint
func ErrEndpointNotFound(path string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("endpoint not found: %s", path)}
}

// ErrUnauthorized builds an unauthorized failure
func ErrUnauthorized() *Error {
	return &Error{Code: CodeUnauthorized, Message: "authentication required"}
}

// ErrForbidden builds a forbidden failure
func ErrForbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// ErrConflict builds a conflict failure
func ErrConflict(message string, details map[string]string) *Error {
	return &Error{Code: CodeConflict, Message: message, Details: details}
}

// ErrInvalidMethod builds an invalid-method failure
func ErrInvalidMethod(method, path string) *Error {
	return &Error{Code: CodeInvalidMethod, Message: fmt.Sprintf("method %s not supported on %s", method, path)}
}

// ErrValidation builds a validation failure
func ErrValidation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// mapStoreError converts a store failure into the dispatcher's taxonomy
func mapStoreError(err error) *Error {
	switch e := err.(type) {
	case *store.NotFoundError:
		return ErrNotFound(e.Resource, e.ID)
	case *store.ConflictError:
		return ErrConflict(e.Error(), map[string]string{"field": e.Field, "value": e.Value})
	case *store.RevisionError:
		return ErrConflict(e.Error(), map[string]string{
			"expected_revision": fmt.Sprintf("%d", e.Expected),
			"actual_revision":   fmt.Sprintf("%d", e.Actual),
		})
	case *store.LimitExceededError:
		return ErrConflict(e.Error(), map[string]string{"limit": e.Resource})
	case *store.DependentResourcesError:
		return ErrConflict(e.Error(), map[string]string{"dependent": e.Dependent})
	case *store.ImmutableFieldError:
		return ErrValidation(e.Error())
	default:
		return ErrValidation(err.Error())
	}
}

// decide converts a guard decision into a failure, or nil on allow. A denial
// without visibility is reported as not-found so existence is never
// confirmed to callers outside the tenant.
func decide(d rbac.Decision, resource, id string) *Error {
	switch d {
	case rbac.Allow:
		return nil
	case rbac.DenyUnauthorized:
		return ErrUnauthorized()
	case rbac.DenyNotVisible:
		return ErrNotFound(resource, id)
	default:
		return ErrForbidden(fmt.Sprintf("missing permission on %s %s", resource, id))
	}
}
