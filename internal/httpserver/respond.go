package httpserver

import (
	"errors"
	"net/http"

	"shopcore/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to status codes and a structured body so
// clients can react without parsing message text. Anything outside the
// taxonomy is surfaced as a generic 500.
func respondError(c *gin.Context, err error) {
	var (
		stockErr   *domain.InsufficientStockError
		fullErr    *domain.CartFullError
		couponErr  *domain.InvalidCouponError
		transition *domain.IllegalTransitionError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient_stock",
			"productId": stockErr.ProductID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &fullErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": "cart_full",
			"limit": fullErr.Limit,
		})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "illegal_order_state",
			"current":   transition.Current,
			"attempted": transition.Attempted,
		})
	case errors.As(err, &couponErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "invalid_coupon",
			"code":   couponErr.Code,
			"reason": couponErr.Reason,
		})
	case errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_quantity"})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "empty_cart"})
	case errors.Is(err, domain.ErrCartNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": "cart_not_active"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msg})
}
