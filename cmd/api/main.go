package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopcore/internal/cache"
	"shopcore/internal/config"
	"shopcore/internal/db"
	"shopcore/internal/events"
	"shopcore/internal/httpserver"
	cartrepo "shopcore/internal/repository/cart"
	couponrepo "shopcore/internal/repository/coupon"
	orderrepo "shopcore/internal/repository/order"
	productrepo "shopcore/internal/repository/product"
	cartsvc "shopcore/internal/service/cart"
	ordersvc "shopcore/internal/service/order"
	stocksvc "shopcore/internal/service/stock"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	readCache := cache.New(cfg.RedisAddr, 5*time.Minute)
	defer readCache.Close()

	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventTopic, cfg.ServiceName, logger)
	defer publisher.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	couponResolver := couponrepo.NewPostgres(dbpool, logger)

	stockService := stocksvc.New(productRepo, publisher, readCache, logger)
	cartService := cartsvc.New(cartRepo, productRepo, couponResolver, cfg.CartItemLimit, logger)
	orderService := ordersvc.New(orderRepo, cartRepo, productRepo, publisher, readCache, ordersvc.Pricing{
		TaxRateBP:     cfg.TaxRateBP,
		ShippingCents: cfg.ShippingCents,
	}, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:     cartService,
		OrderSvc:    orderService,
		StockSvc:    stockService,
		ProductRepo: productRepo,
		Cache:       readCache,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
