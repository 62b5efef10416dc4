package httpserver

import (
	"net/http"

	cartsvc "shopcore/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type cartHandlers struct {
	svc *cartsvc.Service
}

type createCartRequest struct {
	CustomerID string `json:"customerId"`
}

func (h cartHandlers) create(c *gin.Context) {
	var req createCartRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		badRequest(c, "invalid body")
		return
	}

	if req.CustomerID != "" {
		created, err := h.svc.CreateForCustomer(c.Request.Context(), req.CustomerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
		return
	}
	created, err := h.svc.CreateForGuest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h cartHandlers) get(c *gin.Context) {
	cart, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func (h cartHandlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId and quantity required")
		return
	}
	cart, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h cartHandlers) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity required")
		return
	}
	cart, err := h.svc.UpdateQuantity(c.Request.Context(), c.Param("id"), c.Param("productId"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h cartHandlers) removeItem(c *gin.Context) {
	cart, err := h.svc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h cartHandlers) clear(c *gin.Context) {
	cart, err := h.svc.Clear(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type couponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h cartHandlers) applyCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code required")
		return
	}
	cart, err := h.svc.ApplyCoupon(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h cartHandlers) removeCoupon(c *gin.Context) {
	cart, err := h.svc.RemoveCoupon(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type mergeRequest struct {
	SourceCartID string `json:"sourceCartId" binding:"required"`
}

func (h cartHandlers) merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "sourceCartId required")
		return
	}
	cart, err := h.svc.Merge(c.Request.Context(), req.SourceCartID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
