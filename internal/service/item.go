package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"github.com/rs/zerolog"
)

// allItemsLimit stands in for "no limit" when every item is listed.
const allItemsLimit = math.MaxInt32

// Options tunes an item service. Zero values select defaults.
type Options struct {
	// MaxPageSize caps n in FetchRecentPage. Zero means no cap.
	MaxPageSize int
	// ConsistentReads prefers a store snapshot over two independent reads.
	ConsistentReads bool
	// Now and NewID are injectable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

type itemService struct {
	repo            repository.ItemRepository
	maxPageSize     int
	consistentReads bool
	now             func() time.Time
	newID           func() string
	log             zerolog.Logger
}

func NewItemService(repo repository.ItemRepository, opts Options, logger zerolog.Logger) ItemService {
	l := logger.With().Str("module", "service").Str("component", "item").Logger()
	s := &itemService{
		repo:            repo,
		maxPageSize:     opts.MaxPageSize,
		consistentReads: opts.ConsistentReads,
		now:             opts.Now,
		newID:           opts.NewID,
		log:             l,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

func (s *itemService) CreateItem(ctx context.Context, in model.NewItem) (model.Item, error) {
	start := time.Now()
	rawTitle := in.Title

	in, ferrs := normalizeNewItem(in)
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Str("title_raw", rawTitle).Msg("item validation failed")
		return model.Item{}, err
	}

	// Stores keep microsecond precision at best; truncate so every backend
	// returns the timestamp it was given.
	it := model.Item{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Categories:  in.Categories,
		OwnerID:     in.OwnerID,
		ImageURLs:   in.ImageURLs,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}

	out, err := s.repo.Create(ctx, it)
	if err != nil {
		s.log.Error().Err(err).Str("item_id", it.ID).Str("owner_id", it.OwnerID).Msg("create item failed")
		return model.Item{}, unavailable("create item", err)
	}
	s.log.Info().Dur("took", time.Since(start)).Str("item_id", out.ID).Msg("item created")
	return out, nil
}

func (s *itemService) GetItem(ctx context.Context, id string) (model.Item, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.Item{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be a valid UUID"}})
	}
	out, err := s.repo.GetByID(ctx, parsed.String())
	if err != nil {
		return model.Item{}, unavailable("get item", err)
	}
	return out, nil
}

func (s *itemService) ListItems(ctx context.Context, page repository.Page) (repository.PageResult[model.Item], error) {
	p := normalizePage(page)
	res, err := s.repo.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list items failed")
		return repository.PageResult[model.Item]{}, unavailable("list items", err)
	}
	if res.Items == nil {
		res.Items = []model.Item{}
	}
	return res, nil
}

func (s *itemService) ListAllItems(ctx context.Context) ([]model.Item, error) {
	items, err := s.repo.ListNewest(ctx, allItemsLimit)
	if err != nil {
		s.log.Error().Err(err).Msg("list all items failed")
		return nil, unavailable("list all items", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

var _ ItemService = (*itemService)(nil)
