package response_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"github.com/maxviazov/marketplace-items-service/internal/service"
	"github.com/maxviazov/marketplace-items-service/pkg/response"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		in       error
		wantCode int
		wantErr  string
	}{
		{"invalid_input", service.NewInvalidInputError([]service.FieldError{{Field: "n", Message: "bad"}}), 400, "invalid_input"},
		{"not_found", repository.ErrNotFound, 404, "not_found"},
		{"already_exists", repository.ErrAlreadyExists, 409, "already_exists"},
		{"conflict", repository.ErrConflict, 409, "conflict"},
		{"store_unavailable", fmt.Errorf("count items: %w: %w", service.ErrStoreUnavailable, errors.New("dial tcp: refused")), 503, "store_unavailable"},
		{"internal", errors.New("boom"), 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, payload := response.MapError(tc.in)
			if code != tc.wantCode || payload.Error != tc.wantErr {
				t.Fatalf("unexpected mapping: got (%d,%s) want (%d,%s)", code, payload.Error, tc.wantCode, tc.wantErr)
			}
			if tc.wantErr == "invalid_input" && len(payload.FieldErrors) == 0 {
				t.Fatalf("expected field errors in payload")
			}
		})
	}
}

func TestMapError_StoreCauseNotLeaked(t *testing.T) {
	err := fmt.Errorf("list newest items: %w: %w", service.ErrStoreUnavailable, errors.New("password authentication failed"))
	_, payload := response.MapError(err)
	if payload.Message == "" || payload.Message == err.Error() {
		t.Fatalf("expected generic message, got %q", payload.Message)
	}
}
