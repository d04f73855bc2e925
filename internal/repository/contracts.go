package repository

import (
	"context"

	"github.com/maxviazov/marketplace-items-service/internal/model"
)

//go:generate mockgen -source=contracts.go -destination=mocks/mock_repository.go -package=mocks

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ItemReader is the read surface of the item store, viewed as a sequence
// sorted by insertion timestamp, newest first.
type ItemReader interface {
	// Count returns the number of items currently stored.
	Count(ctx context.Context) (int, error)
	// ListNewest returns up to limit newest items, newest first.
	// Fewer are returned when the store holds fewer than limit.
	ListNewest(ctx context.Context, limit int) ([]model.Item, error)
}

// SnapshotReader is implemented by stores that can observe the count and the
// newest items in one consistent read. Stores without it are read with two
// independent calls.
type SnapshotReader interface {
	CountAndListNewest(ctx context.Context, limit int) (total int, items []model.Item, err error)
}

// ItemRepository declares persistence operations for items.
// Implementations return domain errors from errors.go rather than driver errors.
type ItemRepository interface {
	ItemReader
	Create(ctx context.Context, it model.Item) (model.Item, error)
	GetByID(ctx context.Context, id string) (model.Item, error)
	// List returns an offset window over the newest-first sequence and the total count.
	List(ctx context.Context, p Page) (PageResult[model.Item], error)
}
