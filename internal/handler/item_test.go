package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/marketplace-items-service/internal/handler"
	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"github.com/maxviazov/marketplace-items-service/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemID = "2f1c7b0e-3d4a-4b8e-9a61-5c2d7e8f9a10"

// stubItemService lets each test control method outcomes and records the
// arguments FetchRecentPage was called with.
type stubItemService struct {
	create struct {
		item model.Item
		err  error
		got  model.NewItem
	}
	get struct {
		item model.Item
		err  error
	}
	list struct {
		res repository.PageResult[model.Item]
		err error
		got repository.Page
	}
	all struct {
		items []model.Item
		err   error
	}
	recent struct {
		res        model.RecentPage
		err        error
		calls      int
		pageSize   int
		pageNumber int
	}
}

func (s *stubItemService) CreateItem(_ context.Context, in model.NewItem) (model.Item, error) {
	s.create.got = in
	return s.create.item, s.create.err
}
func (s *stubItemService) GetItem(_ context.Context, id string) (model.Item, error) {
	return s.get.item, s.get.err
}
func (s *stubItemService) ListItems(_ context.Context, p repository.Page) (repository.PageResult[model.Item], error) {
	s.list.got = p
	return s.list.res, s.list.err
}
func (s *stubItemService) ListAllItems(context.Context) ([]model.Item, error) {
	return s.all.items, s.all.err
}
func (s *stubItemService) FetchRecentPage(_ context.Context, n, page int) (model.RecentPage, error) {
	s.recent.calls++
	s.recent.pageSize, s.recent.pageNumber = n, page
	return s.recent.res, s.recent.err
}

var _ service.ItemService = (*stubItemService)(nil)

func newRouter(svc service.ItemService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler.RequestLogger(zerolog.Nop()))
	handler.Register(r, stubPinger{}, svc)
	return r
}

func do(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, bytes.NewReader(body)))
	return w
}

func TestItemHandler_MostRecent_OK(t *testing.T) {
	stub := &stubItemService{}
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stub.recent.res = model.RecentPage{Items: []model.Item{{ID: "a", Title: "Lamp", CreatedAt: created}}, NoMoreResults: true}
	r := newRouter(stub)

	w := do(r, http.MethodGet, "/api/v1.0/items/most_recent?n=3&page=4", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3, stub.recent.pageSize)
	assert.Equal(t, 4, stub.recent.pageNumber)

	var body struct {
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
		NoMoreResults bool `json:"no_more_results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "a", body.Items[0].ID)
	assert.True(t, body.NoMoreResults)
}

func TestItemHandler_MostRecent_EmptyPageIsArray(t *testing.T) {
	stub := &stubItemService{}
	stub.recent.res = model.RecentPage{Items: []model.Item{}, NoMoreResults: true}
	r := newRouter(stub)

	w := do(r, http.MethodGet, "/api/v1.0/items/most_recent?n=5&page=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"no_more_results":true}`, w.Body.String())
}

func TestItemHandler_MostRecent_BadParams(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		fields []string
	}{
		{"missing_both", "", []string{"n", "page"}},
		{"zero_n", "?n=0&page=1", []string{"n"}},
		{"negative_page", "?n=2&page=-1", []string{"page"}},
		{"not_a_number", "?n=abc&page=1", []string{"n"}},
		{"float_page", "?n=2&page=1.5", []string{"page"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubItemService{}
			r := newRouter(stub)
			w := do(r, http.MethodGet, "/api/v1.0/items/most_recent"+tc.query, nil)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Zero(t, stub.recent.calls, "service must not be called")

			var payload struct {
				Error       string               `json:"error"`
				FieldErrors []service.FieldError `json:"field_errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			assert.Equal(t, "invalid_input", payload.Error)
			var got []string
			for _, fe := range payload.FieldErrors {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tc.fields, got)
		})
	}
}

func TestItemHandler_MostRecent_StoreUnavailable(t *testing.T) {
	stub := &stubItemService{}
	stub.recent.err = service.ErrStoreUnavailable
	r := newRouter(stub)

	w := do(r, http.MethodGet, "/api/v1.0/items/most_recent?n=3&page=1", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "store_unavailable")
}

func TestItemHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		stub := &stubItemService{}
		stub.create.item = model.Item{ID: itemID, Title: "Desk"}
		r := newRouter(stub)
		body, _ := json.Marshal(map[string]any{
			"title":      "Desk",
			"owner_id":   "u1",
			"latitude":   1.5,
			"categories": []string{"furniture"},
		})
		w := do(r, http.MethodPost, "/api/v1.0/items", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "Desk", stub.create.got.Title)
		assert.Equal(t, 1.5, stub.create.got.Latitude)
		assert.Equal(t, []string{"furniture"}, stub.create.got.Categories)
		assert.Contains(t, w.Body.String(), itemID)
	})

	t.Run("malformed_json", func(t *testing.T) {
		r := newRouter(&stubItemService{})
		w := do(r, http.MethodPost, "/api/v1.0/items", []byte(`{"title":`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation_error", func(t *testing.T) {
		stub := &stubItemService{}
		stub.create.err = service.NewInvalidInputError([]service.FieldError{{Field: "title", Message: "must not be empty"}})
		r := newRouter(stub)
		w := do(r, http.MethodPost, "/api/v1.0/items", []byte(`{"title":""}`))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"title"`)
	})
}

func TestItemHandler_GetByID(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		stub := &stubItemService{}
		stub.get.item = model.Item{ID: itemID}
		w := do(newRouter(stub), http.MethodGet, "/api/v1.0/items/"+itemID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		stub := &stubItemService{}
		stub.get.err = repository.ErrNotFound
		w := do(newRouter(stub), http.MethodGet, "/api/v1.0/items/"+itemID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestItemHandler_List(t *testing.T) {
	stub := &stubItemService{}
	stub.list.res = repository.PageResult[model.Item]{Items: []model.Item{{ID: "x"}}, Total: 9}
	w := do(newRouter(stub), http.MethodGet, "/api/v1.0/items?limit=2&offset=4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repository.Page{Limit: 2, Offset: 4}, stub.list.got)
	assert.Contains(t, w.Body.String(), `"total":9`)
}

func TestItemHandler_ListAll(t *testing.T) {
	stub := &stubItemService{}
	stub.all.items = []model.Item{}
	w := do(newRouter(stub), http.MethodGet, "/api/v1.0/all/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}
