package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeConfig       = "CONFIG_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeCollaborator = "COLLABORATOR_ERROR"
)

// NewConfigError creates a configuration error. The message must not carry
// secret material.
func NewConfigError(setting string, reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeConfig,
		Message: fmt.Sprintf("invalid configuration %s: %s", setting, reason),
		Details: map[string]interface{}{
			"setting": setting,
		},
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(field string, reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Details: map[string]interface{}{
			"field":  field,
			"reason": reason,
		},
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, name string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, name),
		Details: map[string]interface{}{
			"resource": resource,
			"name":     name,
		},
	}
}

// NewCollaboratorError wraps a failure of the blob store or the signing
// primitive.
func NewCollaboratorError(op string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeCollaborator,
		Message: fmt.Sprintf("%s failed", op),
		Details: map[string]interface{}{
			"op": op,
		},
		Err: err,
	}
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Detail returns the upstream message of a collaborator error, or the error
// text for anything else.
func Detail(err error) string {
	var de *DomainError
	if errors.As(err, &de) && de.Err != nil {
		return de.Err.Error()
	}
	return err.Error()
}
