package core

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("genre", "must be one of the known genres")

	expected := "genre: must be one of the known genres"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected error to wrap ErrInvalidInput")
	}

	if !IsValidationError(err) {
		t.Error("IsValidationError should return true")
	}
}

func TestRequiredError(t *testing.T) {
	err := RequiredError("username")

	expected := "username: is required"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !IsValidationError(err) {
		t.Error("IsValidationError should return true for RequiredError")
	}
}

func TestConflictError(t *testing.T) {
	err := NewConflictError("user", "alice", "username already taken")

	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("expected error to wrap ErrAlreadyExists")
	}
	if !IsConflict(err) {
		t.Error("IsConflict should return true")
	}

	msg := err.Error()
	if msg != `user "alice": username already taken` {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestConflictError_NoReason(t *testing.T) {
	err := NewConflictError("favorite", "1/2", "")

	if err.Error() != `favorite "1/2" already exists` {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestConflictIsNotValidation(t *testing.T) {
	// The HTTP layer maps both to 400, but the classes stay distinct.
	if IsValidationError(NewConflictError("user", "bob", "")) {
		t.Error("conflict should not classify as validation")
	}
	if IsConflict(RequiredError("email")) {
		t.Error("validation should not classify as conflict")
	}
}
