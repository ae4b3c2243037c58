package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestValidationErrorsAccumulate(t *testing.T) {
	errs := make(ValidationErrors)
	errs.Add("name", "The name field is required.")
	errs.Add("name", "The name field must be at most 10 characters.")
	errs.Add("email", "The email field must be a valid email address.")

	if errs.Empty() {
		t.Fatal("expected errors to be non-empty")
	}
	if len(errs["name"]) != 2 {
		t.Errorf("expected 2 name messages, got %d", len(errs["name"]))
	}
}

func TestValidationErrorsJSON(t *testing.T) {
	errs := make(ValidationErrors)
	errs.Add("email", "The email field is required.")

	var decoded map[string][]string
	if err := json.Unmarshal([]byte(errs.JSON()), &decoded); err != nil {
		t.Fatalf("JSON() produced invalid JSON: %v", err)
	}
	want := map[string][]string{"email": {"The email field is required."}}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("decoded = %v, want %v", decoded, want)
	}
}

func TestErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("finding user: %w", &NotFoundError{Resource: "User"})
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should match through wrapping")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound should not match unrelated errors")
	}

	validation := &ValidationError{Message: "Failed to create the new record.", Errors: ValidationErrors{"name": {"required"}}}
	if !IsValidation(fmt.Errorf("create: %w", validation)) {
		t.Error("IsValidation should match through wrapping")
	}

	cause := errors.New("UNIQUE constraint failed: users.email")
	integrity := &IntegrityViolationError{Constraint: "users.email", Err: cause}
	if !IsIntegrityViolation(integrity) {
		t.Error("IsIntegrityViolation should match the error itself")
	}
	if !errors.Is(integrity, cause) {
		t.Error("IntegrityViolationError should unwrap to its driver cause")
	}
}

func TestErrorMessages(t *testing.T) {
	if (&NotFoundError{}).Error() != "the record you were looking for was not found" {
		t.Error("unexpected empty-resource not-found message")
	}
	if (&NotFoundError{Resource: "User"}).Error() != "User: the record you were looking for was not found" {
		t.Error("unexpected not-found message")
	}
	if (&ValidationError{}).Error() != "validation failed" {
		t.Error("unexpected empty validation message")
	}
	if (&IntegrityViolationError{Constraint: "users.email"}).Error() != "integrity constraint violation: users.email" {
		t.Error("unexpected integrity message")
	}
}
