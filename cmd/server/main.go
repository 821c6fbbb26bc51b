package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/brand"
	"storefront-be/internal/buyer"
	"storefront-be/internal/cache"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/discount"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/receipt"
	"storefront-be/internal/transport"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := db.InitDB(cfg)
	defer database.Close()

	discountRepo := discount.NewRepository(database)
	productRepo := product.NewRepository(database, discountRepo)
	productSvc := product.NewService(productRepo)

	brandRepo := brand.NewRepository(database)
	brandSvc := brand.NewService(brandRepo, cache.NewTTL[string, brand.Brand](256, 5*time.Minute))

	buyerRepo := buyer.NewRepository(database)
	buyerSvc := buyer.NewService(buyerRepo)

	paymentRepo := payment.NewRepository(database)
	gateway := payment.NewPayPalGateway(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalMode)

	receipts := receipt.NewDispatcher(receipt.LogNotifier{})

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(database, orderRepo, productRepo, paymentRepo, gateway, receipts)

	router := transport.NewRouter(transport.Handlers{
		Auth:    transport.NewAuthHandler(buyerSvc),
		Order:   transport.NewOrderHandler(orderSvc),
		Product: transport.NewProductHandler(productSvc, brandSvc),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
