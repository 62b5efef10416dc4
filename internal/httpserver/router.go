package httpserver

import (
	"log"

	"shopcore/internal/cache"
	"shopcore/internal/repository/product"
	cartsvc "shopcore/internal/service/cart"
	ordersvc "shopcore/internal/service/order"
	stocksvc "shopcore/internal/service/stock"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the services the handlers depend on.
type Deps struct {
	CartSvc     *cartsvc.Service
	OrderSvc    *ordersvc.Service
	StockSvc    *stocksvc.Service
	ProductRepo product.Repository
	Cache       *cache.Cache
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	ch := cartHandlers{svc: deps.CartSvc}
	carts := router.Group("/carts")
	{
		carts.POST("", ch.create)
		carts.GET("/:id", ch.get)
		carts.POST("/:id/items", ch.addItem)
		carts.PATCH("/:id/items/:productId", ch.updateItem)
		carts.DELETE("/:id/items/:productId", ch.removeItem)
		carts.DELETE("/:id/items", ch.clear)
		carts.POST("/:id/coupon", ch.applyCoupon)
		carts.DELETE("/:id/coupon", ch.removeCoupon)
		carts.POST("/:id/merge", ch.merge)
	}

	oh := orderHandlers{svc: deps.OrderSvc}
	orders := router.Group("/orders")
	{
		orders.POST("", oh.create)
		orders.GET("", oh.listByCustomer)
		orders.GET("/:id", oh.get)
		orders.GET("/number/:orderNumber", oh.getByNumber)
		orders.POST("/:id/confirm", oh.confirm)
		orders.POST("/:id/process", oh.process)
		orders.POST("/:id/ship", oh.ship)
		orders.POST("/:id/out-for-delivery", oh.outForDelivery)
		orders.POST("/:id/deliver", oh.deliver)
		orders.POST("/:id/cancel", oh.cancel)
		orders.POST("/:id/refund", oh.refund)
		orders.POST("/:id/payment/paid", oh.markPaid)
		orders.POST("/:id/payment/failed", oh.markPaymentFailed)
	}

	ph := productHandlers{repo: deps.ProductRepo, stock: deps.StockSvc, cache: deps.Cache}
	products := router.Group("/products")
	{
		products.GET("", ph.list)
		products.POST("", ph.upsert)
		products.GET("/sku/:sku", ph.getBySKU)
		products.GET("/:id", ph.get)
		products.GET("/:id/stock", ph.stockStatus)
		products.POST("/:id/stock/reserve", ph.reserve)
		products.POST("/:id/stock/release", ph.release)
		products.POST("/:id/stock/deduct", ph.deduct)
		products.POST("/:id/stock/add", ph.addStock)
	}

	return router
}
