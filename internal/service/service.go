// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrStoreUnavailable marks a failed or timed-out store read (maps to HTTP 503).
// The underlying cause stays reachable through errors.Is / errors.As.
var ErrStoreUnavailable = errors.New("store unavailable")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error, or nil when fe is empty.
// Handlers use it for request parsing failures so transport and service errors share one shape.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var v interface{ Fields() []FieldError }
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// unavailable wraps a store failure. Domain errors the repository already
// shaped (not found, duplicates) pass through untouched.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrAlreadyExists) ||
		errors.Is(err, repository.ErrConflict) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// ItemService defines item-oriented use cases.
type ItemService interface {
	CreateItem(ctx context.Context, in model.NewItem) (model.Item, error)
	GetItem(ctx context.Context, id string) (model.Item, error)
	ListItems(ctx context.Context, page repository.Page) (repository.PageResult[model.Item], error)
	// ListAllItems returns every stored item, newest first.
	ListAllItems(ctx context.Context) ([]model.Item, error)
	// FetchRecentPage returns page pageNumber of the newest items, pageSize per page.
	FetchRecentPage(ctx context.Context, pageSize, pageNumber int) (model.RecentPage, error)
}
