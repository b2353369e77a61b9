package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestValidator_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&selectRequest{})
	if err == nil || err.Error() != "village_id is required" {
		t.Fatalf("unexpected error: %v", err)
	}

	err = v.Validate(&registerRequest{Email: "x@example.com", Password: "123", Role: "farmer"})
	if err == nil || err.Error() != "password must be at least 6 characters" {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := v.Validate(&demoRequest{Role: "admin"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidator_JoinsMessages(t *testing.T) {
	err := NewValidator().Validate(&loginRequest{Email: "bad", Role: "guest"})
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"email must be a valid email", "password is required", "role must be one of: farmer admin"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %q", want, err.Error())
		}
	}
}

func TestHandlers_WithoutScope(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session", nil), httptest.NewRecorder())

	err := NewSessionHandler().Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without a workspace, got %v", err)
	}
}
