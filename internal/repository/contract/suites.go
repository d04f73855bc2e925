// Package contract holds behavioural suites every item store must pass.
// Backend packages wire them to their own factories.
package contract

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ItemFactory returns an empty repository and a cleanup func.
type ItemFactory func(t *testing.T) (repository.ItemRepository, func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newItem(title string, age time.Duration) model.Item {
	return model.Item{
		ID:          uuid.NewString(),
		Title:       title,
		Description: "desc " + title,
		Latitude:    52.37,
		Longitude:   4.89,
		Categories:  []string{"tools"},
		OwnerID:     "owner-1",
		ImageURLs:   []string{"https://img.example.com/" + title + ".jpg"},
		CreatedAt:   baseTime.Add(-age),
	}
}

// seed inserts n items; item i is i minutes older than item 0, so the
// newest-first sequence is item 0, 1, ... n-1. Returned in that order.
func seed(t *testing.T, repo repository.ItemRepository, n int) []model.Item {
	t.Helper()
	out := make([]model.Item, 0, n)
	// insert oldest first, like real traffic
	for i := n - 1; i >= 0; i-- {
		it, err := repo.Create(context.Background(), newItem("item-"+string(rune('a'+i)), time.Duration(i)*time.Minute))
		require.NoError(t, err, "seed item %d", i)
		out = append([]model.Item{it}, out...)
	}
	return out
}

func ids(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func RunItemRepositoryContract(t *testing.T, makeRepo ItemFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		in := newItem("hammer", 0)
		created, err := repo.Create(ctx, in)
		require.NoError(t, err)
		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, in.ID, got.ID)
		assert.Equal(t, in.Title, got.Title)
		assert.Equal(t, in.Categories, got.Categories)
		assert.Equal(t, in.ImageURLs, got.ImageURLs)
		assert.True(t, in.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, in.CreatedAt)
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.NewString())
		require.True(t, errors.Is(err, repository.ErrNotFound), "expected ErrNotFound, got %v", err)
	})

	t.Run("create_duplicate_id", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		it := newItem("dup", 0)
		_, err := repo.Create(ctx, it)
		require.NoError(t, err)
		_, err = repo.Create(ctx, it)
		require.True(t, errors.Is(err, repository.ErrAlreadyExists), "expected ErrAlreadyExists, got %v", err)
	})

	t.Run("empty_store", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		items, err := repo.ListNewest(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("list_newest_descending", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seeded := seed(t, repo, 5)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		top, err := repo.ListNewest(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, ids(seeded[:3]), ids(top))

		all, err := repo.ListNewest(ctx, 50)
		require.NoError(t, err)
		assert.Equal(t, ids(seeded), ids(all), "fewer than limit returns everything")
	})

	t.Run("equal_timestamps_order_by_id_desc", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var want []string
		for i := 0; i < 4; i++ {
			it := newItem("tie", 0)
			_, err := repo.Create(ctx, it)
			require.NoError(t, err)
			want = append(want, it.ID)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(want)))

		got, err := repo.ListNewest(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, want, ids(got))

		res, err := repo.List(ctx, repository.Page{Limit: 4})
		require.NoError(t, err)
		assert.Equal(t, want, ids(res.Items))
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seeded := seed(t, repo, 5)

		res, err := repo.List(ctx, repository.Page{Limit: 2, Offset: 0})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Total)
		assert.Equal(t, ids(seeded[:2]), ids(res.Items))

		res, err = repo.List(ctx, repository.Page{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Total)
		assert.Equal(t, ids(seeded[4:]), ids(res.Items))

		res, err = repo.List(ctx, repository.Page{Limit: 2, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Total)
		assert.Empty(t, res.Items)
	})

	t.Run("snapshot_read", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		snap, ok := repo.(repository.SnapshotReader)
		if !ok {
			t.Skip("store has no snapshot reader")
		}
		seeded := seed(t, repo, 4)
		total, items, err := snap.CountAndListNewest(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Equal(t, ids(seeded[:2]), ids(items))

		total, items, err = snap.CountAndListNewest(context.Background(), 9)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Len(t, items, 4)
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		require.NoError(t, p.Ping(context.Background()))
	})
}
