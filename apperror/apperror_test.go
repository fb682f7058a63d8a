package apperror

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", NewValidation("Validation failed"), http.StatusUnprocessableEntity},
		{"auth", NewAuth("Not authenticated"), http.StatusUnauthorized},
		{"forbidden", NewForbidden("You cannot edit posts by another user!"), http.StatusForbidden},
		{"not found", NewNotFound("Could not find post"), http.StatusNotFound},
		{"internal", NewInternal("boom", errors.New("cause")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Status(); got != tc.want {
				t.Errorf("Status() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFromPassesThroughTaggedErrors(t *testing.T) {
	orig := NewForbidden("You cannot delete posts by another user!")
	got := From(orig)
	if got != orig {
		t.Errorf("From returned %v, want the original error", got)
	}
}

func TestFromWrapsPlainErrors(t *testing.T) {
	cause := errors.New("disk full")
	got := From(cause)
	if got.Kind != Internal {
		t.Errorf("Kind = %v, want Internal", got.Kind)
	}
	if !errors.Is(got, cause) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if got.Status() != http.StatusInternalServerError {
		t.Errorf("Status() = %d, want 500", got.Status())
	}
}

func TestFromNil(t *testing.T) {
	if got := From(nil); got != nil {
		t.Errorf("From(nil) = %v, want nil", got)
	}
}

func TestValidationCarriesFields(t *testing.T) {
	err := NewValidation("Validation failed",
		FieldError{Field: "email", Message: "Please enter a valid email."},
		FieldError{Field: "password", Message: "Password too short."},
	)
	if len(err.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(err.Fields))
	}
	if err.Fields[0].Field != "email" || err.Fields[1].Field != "password" {
		t.Errorf("unexpected fields: %+v", err.Fields)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := NewInternal("failed to load user", errors.New("connection refused"))
	want := "failed to load user: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
