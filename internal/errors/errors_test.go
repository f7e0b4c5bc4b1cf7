package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("bad", nil), http.StatusBadRequest},
		{"config", NewConfigError("no key", nil), http.StatusInternalServerError},
		{"upstream", NewUpstreamError("down", errors.New("eof")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("ctx: %w", NewValidationError("bad", nil)), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWrapErrorKeepsType(t *testing.T) {
	inner := NewUpstreamError("gemini", errors.New("timeout"))
	err := WrapError(inner, "identity", ErrorTypeError)
	if !IsUpstreamError(err) {
		t.Fatalf("expected upstream type, got %s", TypeOf(err))
	}
	if err.Error() != "identity: gemini: timeout" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if WrapError(nil, "x", ErrorTypeError) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestAppErrorCode(t *testing.T) {
	if c := NewUpstreamMalformedError("x", nil).Code; c != "UPSTREAM_MALFORMED" {
		t.Fatalf("unexpected code: %s", c)
	}
}
