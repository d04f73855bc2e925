package memory

import (
	"context"
	"testing"
	"time"

	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"github.com/maxviazov/marketplace-items-service/internal/repository/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemStore_MemoryContract(t *testing.T) {
	contract.RunItemRepositoryContract(t, func(t *testing.T) (repository.ItemRepository, func()) {
		return NewItemStore(), func() {}
	})
}

func TestPinger_MemoryContract(t *testing.T) {
	contract.RunPingerContract(t, func(t *testing.T) (repository.Pinger, func()) {
		return NewItemStore(), func() {}
	})
}

func TestItemStore_ReturnsDetachedCopies(t *testing.T) {
	s := NewItemStore()
	ctx := context.Background()
	_, err := s.Create(ctx, model.Item{ID: "x", Categories: []string{"a"}, CreatedAt: time.Now()})
	require.NoError(t, err)

	got, err := s.GetByID(ctx, "x")
	require.NoError(t, err)
	got.Categories[0] = "mutated"

	again, err := s.GetByID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Categories)
}

func TestItemStore_ListNewestNonPositiveLimit(t *testing.T) {
	s := NewItemStore()
	_, err := s.Create(context.Background(), model.Item{ID: "x", CreatedAt: time.Now()})
	require.NoError(t, err)
	items, err := s.ListNewest(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}
