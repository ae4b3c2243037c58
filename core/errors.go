package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ValidationErrors maps a field name to the ordered list of messages
// describing why the field was rejected. It marshals to a JSON object of
// arrays of strings.
type ValidationErrors map[string][]string

// Add appends a message to the given field's error list.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Empty reports whether no field has any error attached.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// JSON returns the errors encoded as a JSON object of arrays of strings.
func (v ValidationErrors) JSON() string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// NotFoundError indicates that a lookup matched zero records.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "the record you were looking for was not found"
	}
	return fmt.Sprintf("%s: the record you were looking for was not found", e.Resource)
}

// AmbiguousMatchError indicates that a scalar primary-key lookup matched more
// than one record, which violates the single-record contract.
type AmbiguousMatchError struct {
	Resource string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s: identifier matched more than one record", e.Resource)
}

// ValidationError indicates that a record was rejected before any write was
// attempted. Errors carries the per-field messages.
type ValidationError struct {
	Message string
	Errors  ValidationErrors
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "validation failed"
	}
	return e.Message
}

// IntegrityViolationError indicates that the database rejected a write due to
// a uniqueness or foreign-key constraint.
type IntegrityViolationError struct {
	Constraint string
	Err        error
}

func (e *IntegrityViolationError) Error() string {
	if e.Constraint == "" {
		return "integrity constraint violation"
	}
	return fmt.Sprintf("integrity constraint violation: %s", e.Constraint)
}

func (e *IntegrityViolationError) Unwrap() error {
	return e.Err
}

// ForbiddenError indicates that the authenticated caller is not allowed to
// perform the action.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}

// UnauthorizedError indicates that the caller is not authenticated.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError anywhere in its chain.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIntegrityViolation reports whether err is an IntegrityViolationError
// anywhere in its chain.
func IsIntegrityViolation(err error) bool {
	var ie *IntegrityViolationError
	return errors.As(err, &ie)
}
