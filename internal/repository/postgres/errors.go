package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
)

// mapPgError translates driver errors to repository domain errors.
// Only codes higher layers handle explicitly are mapped; everything else passes through.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return repository.ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
			return repository.ErrConflict
		case pgerrcode.InvalidTextRepresentation:
			// malformed uuid literal: no row can match it
			return repository.ErrNotFound
		}
	}
	return err
}
