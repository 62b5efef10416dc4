package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shopcore/internal/config"
	"shopcore/internal/db"
	cartrepo "shopcore/internal/repository/cart"
	cartsvc "shopcore/internal/service/cart"
	"shopcore/internal/sweeper"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[sweeper] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	cartRepo := cartrepo.NewPostgres(pool, logger)
	cartService := cartsvc.New(cartRepo, nil, nil, cfg.CartItemLimit, logger)

	logger.Printf("sweeping carts every %s (abandon after %s, purge after %s)",
		cfg.SweepInterval, cfg.AbandonAfter, cfg.PurgeAfter)
	sweeper.New(cartService, cfg.AbandonAfter, cfg.PurgeAfter, logger).Run(ctx, cfg.SweepInterval)
	logger.Println("sweeper stopped")
}
