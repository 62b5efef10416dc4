package httpserver

import (
	"net/http"

	ordersvc "shopcore/internal/service/order"

	"github.com/gin-gonic/gin"
)

type orderHandlers struct {
	svc *ordersvc.Service
}

type createOrderRequest struct {
	CartID     string `json:"cartId" binding:"required"`
	CustomerID string `json:"customerId" binding:"required"`
}

func (h orderHandlers) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "cartId and customerId required")
		return
	}
	order, err := h.svc.CreateFromCart(c.Request.Context(), req.CartID, req.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h orderHandlers) get(c *gin.Context) {
	order, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) getByNumber(c *gin.Context) {
	order, err := h.svc.GetByOrderNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) listByCustomer(c *gin.Context) {
	customerID := c.Query("customerId")
	if customerID == "" {
		badRequest(c, "customerId query parameter required")
		return
	}
	orders, err := h.svc.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h orderHandlers) confirm(c *gin.Context) {
	order, err := h.svc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) process(c *gin.Context) {
	order, err := h.svc.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type shipRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
}

func (h orderHandlers) ship(c *gin.Context) {
	var req shipRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		badRequest(c, "invalid body")
		return
	}
	order, err := h.svc.Ship(c.Request.Context(), c.Param("id"), req.Carrier, req.TrackingNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) outForDelivery(c *gin.Context) {
	order, err := h.svc.OutForDelivery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) deliver(c *gin.Context) {
	order, err := h.svc.Deliver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h orderHandlers) cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		badRequest(c, "invalid body")
		return
	}
	order, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type refundRequest struct {
	AmountCents int64  `json:"amountCents" binding:"required"`
	Reason      string `json:"reason"`
}

func (h orderHandlers) refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amountCents required")
		return
	}
	order, err := h.svc.Refund(c.Request.Context(), c.Param("id"), req.AmountCents, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type markPaidRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

func (h orderHandlers) markPaid(c *gin.Context) {
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "transactionId required")
		return
	}
	order, err := h.svc.MarkPaid(c.Request.Context(), c.Param("id"), req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h orderHandlers) markPaymentFailed(c *gin.Context) {
	order, err := h.svc.MarkPaymentFailed(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
