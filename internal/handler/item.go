package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"github.com/maxviazov/marketplace-items-service/internal/service"
	"github.com/maxviazov/marketplace-items-service/pkg/response"
)

// serviceTimeout bounds a single store-backed request.
const serviceTimeout = 5 * time.Second

type ItemHandler struct {
	svc service.ItemService
}

func NewItemHandler(svc service.ItemService) *ItemHandler { return &ItemHandler{svc: svc} }

func (h *ItemHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/items")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/most_recent", h.mostRecent)
		g.GET("/:item_id", h.getByID)
	}
	r.GET("/all/items", h.listAll)
}

type createItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Categories  []string `json:"categories"`
	OwnerID     string   `json:"owner_id"`
	ImageURLs   []string `json:"image_urls"`
}

type itemsResponse struct {
	Items []model.Item `json:"items"`
}

func (h *ItemHandler) create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput) // parser details stay internal
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	item, err := h.svc.CreateItem(ctx, model.NewItem{
		Title:       req.Title,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Categories:  req.Categories,
		OwnerID:     req.OwnerID,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, item)
}

func (h *ItemHandler) getByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	item, err := h.svc.GetItem(ctx, strings.TrimSpace(c.Param("item_id")))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, item)
}

func (h *ItemHandler) list(c *gin.Context) {
	// Atoi errors are ignored intentionally, as 0 is a valid default for limit/offset, handled by the service layer.
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	res, err := h.svc.ListItems(ctx, repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *ItemHandler) listAll(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	items, err := h.svc.ListAllItems(ctx)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, itemsResponse{Items: items})
}

// mostRecent serves GET /items/most_recent?n=<page size>&page=<page number>.
// Both parameters are required positive integers.
func (h *ItemHandler) mostRecent(c *gin.Context) {
	var ferrs []service.FieldError
	n, err := parsePositiveInt(c.Query("n"))
	if err != nil {
		ferrs = append(ferrs, service.FieldError{Field: "n", Message: "must be a positive integer"})
	}
	page, err := parsePositiveInt(c.Query("page"))
	if err != nil {
		ferrs = append(ferrs, service.FieldError{Field: "page", Message: "must be a positive integer"})
	}
	if err := service.NewInvalidInputError(ferrs); err != nil {
		response.WriteError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()
	res, err := h.svc.FetchRecentPage(ctx, n, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, strconv.ErrRange
	}
	return v, nil
}
