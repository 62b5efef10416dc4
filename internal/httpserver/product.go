package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"shopcore/internal/cache"
	"shopcore/internal/domain"
	productrepo "shopcore/internal/repository/product"
	stocksvc "shopcore/internal/service/stock"

	"github.com/gin-gonic/gin"
)

type productHandlers struct {
	repo  productrepo.Repository
	stock *stocksvc.Service
	cache *cache.Cache
}

func (h productHandlers) list(c *gin.Context) {
	products, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// get serves product reads through the explicit cache; stock mutations
// invalidate the key.
func (h productHandlers) get(c *gin.Context) {
	id := c.Param("id")
	body, err := h.cache.GetOrCompute(c.Request.Context(), cache.ProductKey(id), func(ctx context.Context) ([]byte, error) {
		product, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return json.Marshal(product)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (h productHandlers) getBySKU(c *gin.Context) {
	product, err := h.repo.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type upsertProductRequest struct {
	ID                string `json:"id"`
	SKU               string `json:"sku" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	PriceCents        int64  `json:"priceCents" binding:"required"`
	Currency          string `json:"currency"`
	Active            *bool  `json:"active"`
	StockQuantity     int    `json:"stockQuantity"`
	LowStockThreshold int    `json:"lowStockThreshold"`
	ReorderPoint      int    `json:"reorderPoint"`
	TrackInventory    *bool  `json:"trackInventory"`
	AllowBackorder    bool   `json:"allowBackorder"`
}

// upsert creates or updates a catalog entry keyed by SKU. Stock counters are
// only taken from the request for new rows; existing counters change solely
// through the stock endpoints.
func (h productHandlers) upsert(c *gin.Context) {
	var req upsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "sku, name and priceCents required")
		return
	}
	p := domain.Product{
		ID:                req.ID,
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		PriceCents:        req.PriceCents,
		Currency:          req.Currency,
		Active:            true,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		ReorderPoint:      req.ReorderPoint,
		TrackInventory:    true,
		AllowBackorder:    req.AllowBackorder,
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.TrackInventory != nil {
		p.TrackInventory = *req.TrackInventory
	}

	saved, err := h.repo.Upsert(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), cache.ProductKey(saved.ID), cache.StockKey(saved.ID))
	c.JSON(http.StatusOK, saved)
}

func (h productHandlers) stockStatus(c *gin.Context) {
	id := c.Param("id")
	status, err := h.stock.StatusFor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	available, err := h.stock.Available(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"productId": id,
		"status":    status,
		"available": available,
	})
}

type stockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h productHandlers) reserve(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, id string, qty int) (any, error) {
		return h.stock.Reserve(ctx, id, qty)
	})
}

func (h productHandlers) release(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, id string, qty int) (any, error) {
		return h.stock.Release(ctx, id, qty)
	})
}

func (h productHandlers) deduct(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, id string, qty int) (any, error) {
		return h.stock.Deduct(ctx, id, qty)
	})
}

func (h productHandlers) addStock(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, id string, qty int) (any, error) {
		return h.stock.AddStock(ctx, id, qty)
	})
}

func (h productHandlers) mutate(c *gin.Context, op func(ctx context.Context, id string, qty int) (any, error)) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity required")
		return
	}
	product, err := op(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
