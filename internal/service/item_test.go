package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"github.com/maxviazov/marketplace-items-service/internal/repository/memory"
	"github.com/maxviazov/marketplace-items-service/internal/repository/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixedID = "2f1c7b0e-3d4a-4b8e-9a61-5c2d7e8f9a10"

func validNewItem() model.NewItem {
	return model.NewItem{
		Title:       "  Vintage bike ",
		Description: "Barely used",
		Latitude:    40.7,
		Longitude:   -74.0,
		Categories:  []string{"Sports", " sports ", "", "Outdoor"},
		OwnerID:     "user-42",
		ImageURLs:   []string{"https://cdn.example.com/bike.jpg"},
	}
}

func fieldNames(err error) []string {
	var out []string
	for _, fe := range FieldErrors(err) {
		out = append(out, fe.Field)
	}
	return out
}

func TestItemService_CreateItem_OK(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockItemRepository(ctrl)
	now := time.Date(2024, 2, 3, 4, 5, 6, 789123456, time.FixedZone("X", 3600))

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, it model.Item) (model.Item, error) { return it, nil })

	svc := NewItemService(repo, Options{
		Now:   func() time.Time { return now },
		NewID: func() string { return fixedID },
	}, zerolog.New(io.Discard))

	got, err := svc.CreateItem(context.Background(), validNewItem())
	require.NoError(t, err)
	assert.Equal(t, fixedID, got.ID)
	assert.Equal(t, "Vintage bike", got.Title)
	assert.Equal(t, []string{"Sports", "Outdoor"}, got.Categories)
	assert.Equal(t, time.UTC, got.CreatedAt.Location())
	assert.True(t, got.CreatedAt.Equal(now.Truncate(time.Microsecond)))
	assert.Zero(t, got.CreatedAt.Nanosecond()%1000, "created_at keeps microsecond precision")
}

func TestItemService_CreateItem_Validation(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*model.NewItem)
		wantField string
	}{
		{"empty_title", func(in *model.NewItem) { in.Title = "   " }, "title"},
		{"long_title", func(in *model.NewItem) { in.Title = strings.Repeat("x", maxTitleLen+1) }, "title"},
		{"long_description", func(in *model.NewItem) { in.Description = strings.Repeat("d", maxDescriptionLen+1) }, "description"},
		{"latitude_range", func(in *model.NewItem) { in.Latitude = 91 }, "latitude"},
		{"longitude_range", func(in *model.NewItem) { in.Longitude = -180.5 }, "longitude"},
		{"missing_owner", func(in *model.NewItem) { in.OwnerID = "" }, "owner_id"},
		{"bad_image_url", func(in *model.NewItem) { in.ImageURLs = []string{"not a url"} }, "image_urls[0]"},
		{"too_many_images", func(in *model.NewItem) {
			in.ImageURLs = make([]string, maxImageURLs+1)
			for i := range in.ImageURLs {
				in.ImageURLs[i] = "https://cdn.example.com/a.jpg"
			}
		}, "image_urls"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockItemRepository(ctrl) // Create must not be reached
			svc := NewItemService(repo, Options{}, zerolog.New(io.Discard))

			in := validNewItem()
			tc.mutate(&in)
			_, err := svc.CreateItem(context.Background(), in)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, fieldNames(err), tc.wantField)
		})
	}
}

func TestItemService_CreateItem_StoreErrors(t *testing.T) {
	t.Run("duplicate_passes_through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockItemRepository(ctrl)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(model.Item{}, repository.ErrAlreadyExists)
		svc := NewItemService(repo, Options{}, zerolog.New(io.Discard))

		_, err := svc.CreateItem(context.Background(), validNewItem())
		require.ErrorIs(t, err, repository.ErrAlreadyExists)
		assert.False(t, errors.Is(err, ErrStoreUnavailable))
	})

	t.Run("infrastructure_is_unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockItemRepository(ctrl)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(model.Item{}, errors.New("i/o timeout"))
		svc := NewItemService(repo, Options{}, zerolog.New(io.Discard))

		_, err := svc.CreateItem(context.Background(), validNewItem())
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestItemService_GetItem(t *testing.T) {
	t.Run("invalid_uuid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewItemService(mocks.NewMockItemRepository(ctrl), Options{}, zerolog.New(io.Discard))
		_, err := svc.GetItem(context.Background(), "42")
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, []string{"id"}, fieldNames(err))
	})

	t.Run("canonicalizes_id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockItemRepository(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), fixedID).Return(model.Item{ID: fixedID}, nil)
		svc := NewItemService(repo, Options{}, zerolog.New(io.Discard))

		got, err := svc.GetItem(context.Background(), strings.ToUpper(fixedID))
		require.NoError(t, err)
		assert.Equal(t, fixedID, got.ID)
	})

	t.Run("not_found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockItemRepository(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), fixedID).Return(model.Item{}, repository.ErrNotFound)
		svc := NewItemService(repo, Options{}, zerolog.New(io.Discard))

		_, err := svc.GetItem(context.Background(), fixedID)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestItemService_ListItems_NormalizesPage(t *testing.T) {
	cases := []struct {
		name string
		in   repository.Page
		want repository.Page
	}{
		{"defaults", repository.Page{}, repository.Page{Limit: defaultPageLimit}},
		{"caps_limit", repository.Page{Limit: 1000, Offset: 5}, repository.Page{Limit: maxPageLimit, Offset: 5}},
		{"negative_offset", repository.Page{Limit: 10, Offset: -4}, repository.Page{Limit: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockItemRepository(ctrl)
			repo.EXPECT().List(gomock.Any(), tc.want).Return(repository.PageResult[model.Item]{}, nil)
			svc := NewItemService(repo, Options{}, zerolog.New(io.Discard))

			res, err := svc.ListItems(context.Background(), tc.in)
			require.NoError(t, err)
			assert.NotNil(t, res.Items, "empty result serializes as []")
		})
	}
}

func TestItemService_ListAllItems(t *testing.T) {
	store, all := seedStore(t, 4)
	svc := NewItemService(store, Options{ConsistentReads: true}, zerolog.New(io.Discard))
	got, err := svc.ListAllItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, itemIDs(all), itemIDs(got))

	empty := NewItemService(memory.NewItemStore(), Options{}, zerolog.New(io.Discard))
	got, err = empty.ListAllItems(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalizeCategories(t *testing.T) {
	assert.Equal(t, []string{"Books", "toys"}, normalizeCategories([]string{" Books", "books", "", "toys", "TOYS "}))
	assert.Empty(t, normalizeCategories(nil))
}

func TestFieldErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))
	assert.Nil(t, FieldErrors(errors.New("plain")))
	assert.Nil(t, NewInvalidInputError(nil))

	err := NewInvalidInputError([]FieldError{{Field: "n", Message: "bad"}})
	assert.Equal(t, []FieldError{{Field: "n", Message: "bad"}}, FieldErrors(err))
}

func TestItemService_ListAllItems_SingleRead(t *testing.T) {
	t.Run("lists_without_counting", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockItemRepository(ctrl) // Count must not be called
		repo.EXPECT().ListNewest(gomock.Any(), allItemsLimit).Return([]model.Item{{ID: "b"}, {ID: "a"}}, nil)
		svc := NewItemService(repo, Options{ConsistentReads: false}, zerolog.New(io.Discard))

		got, err := svc.ListAllItems(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, itemIDs(got))
	})

	t.Run("store_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockItemRepository(ctrl)
		repo.EXPECT().ListNewest(gomock.Any(), allItemsLimit).Return(nil, errors.New("conn reset"))
		svc := NewItemService(repo, Options{}, zerolog.New(io.Discard))

		_, err := svc.ListAllItems(context.Background())
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}
