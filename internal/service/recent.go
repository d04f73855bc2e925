package service

import (
	"context"
	"math"

	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"golang.org/x/sync/errgroup"
)

// recentWindow says which part of the newest-first sequence a page covers:
// read the newest limit items and keep the last take of them.
type recentWindow struct {
	limit     int
	take      int
	exhausted bool
}

// pageDepth returns n*page, the depth into the newest-first sequence that a
// page reaches, and false if it overflows int.
func pageDepth(n, page int) (int, bool) {
	if page > math.MaxInt/n {
		return 0, false
	}
	return n * page, true
}

// planRecentPage applies the pagination policy to a store holding total items.
//
// A page that fits entirely returns n items and is not exhausted, even when it
// ends exactly at the last item; the caller learns that on the next request.
// A page straddling the end returns the n-(limit-total) oldest items and is
// exhausted. A page starting past the end is empty and exhausted.
func planRecentPage(n, page, total int) recentWindow {
	limit, ok := pageDepth(n, page)
	switch {
	case !ok || limit-total >= n:
		return recentWindow{exhausted: true}
	case limit <= total:
		return recentWindow{limit: limit, take: n}
	default:
		return recentWindow{limit: total, take: n - (limit - total), exhausted: true}
	}
}

// tail returns the last k items, clamped to what is available.
func tail(items []model.Item, k int) []model.Item {
	k = min(k, len(items))
	if k <= 0 {
		return []model.Item{}
	}
	return items[len(items)-k:]
}

func (s *itemService) FetchRecentPage(ctx context.Context, n, page int) (model.RecentPage, error) {
	var ferrs []FieldError
	if n < 1 {
		ferrs = append(ferrs, FieldError{Field: "n", Message: "must be a positive integer"})
	} else if s.maxPageSize > 0 && n > s.maxPageSize {
		ferrs = append(ferrs, FieldError{Field: "n", Message: "must be <= max page size"})
	}
	if page < 1 {
		ferrs = append(ferrs, FieldError{Field: "page", Message: "must be a positive integer"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Int("n", n).Int("page", page).Msg("recent page validation failed")
		return model.RecentPage{}, err
	}

	depth, ok := pageDepth(n, page)
	if !ok {
		// no store can hold more than MaxInt items
		return model.RecentPage{Items: []model.Item{}, NoMoreResults: true}, nil
	}

	total, fetched, err := s.readNewest(ctx, depth)
	if err != nil {
		s.log.Error().Err(err).Int("n", n).Int("page", page).Msg("fetch recent page failed")
		return model.RecentPage{}, err
	}

	w := planRecentPage(n, page, total)
	// In two-read mode the fetch may disagree with total; clamp to what arrived.
	items := tail(fetched[:min(len(fetched), w.limit)], w.take)
	s.log.Debug().
		Int("n", n).
		Int("page", page).
		Int("total", total).
		Int("returned", len(items)).
		Bool("exhausted", w.exhausted).
		Msg("recent page served")
	return model.RecentPage{Items: items, NoMoreResults: w.exhausted}, nil
}

// readNewest returns the item count and up to limit newest items. With
// consistent reads enabled and a store that supports it, both come from one
// snapshot. Otherwise the two reads run concurrently and may observe
// different states of the store.
func (s *itemService) readNewest(ctx context.Context, limit int) (int, []model.Item, error) {
	if snap, ok := s.repo.(repository.SnapshotReader); ok && s.consistentReads {
		total, items, err := snap.CountAndListNewest(ctx, limit)
		if err != nil {
			return 0, nil, unavailable("snapshot read", err)
		}
		return total, items, nil
	}

	var (
		total int
		items []model.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx)
		if err != nil {
			return unavailable("count items", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		its, err := s.repo.ListNewest(gctx, limit)
		if err != nil {
			return unavailable("list newest items", err)
		}
		items = its
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
