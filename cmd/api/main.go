package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/config"
	"github.com/rabi-77/ecommerce-sub000/internal/coupon"
	"github.com/rabi-77/ecommerce-sub000/internal/database"
	"github.com/rabi-77/ecommerce-sub000/internal/handler"
	"github.com/rabi-77/ecommerce-sub000/internal/repository"
	"github.com/rabi-77/ecommerce-sub000/internal/router"
	"github.com/rabi-77/ecommerce-sub000/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting order pricing API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	offerRepo := repository.NewOfferRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	walletRepo := repository.NewWalletRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)

	couponValidator := coupon.NewValidator(couponRepo, logger)
	policy := cfg.Pricing.Policy()

	// Initialize services
	productService := service.NewProductService(productRepo, offerRepo, logger)
	checkoutService := service.NewCheckoutService(productRepo, offerRepo, cartRepo, orderRepo, walletRepo, couponValidator, policy, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, walletRepo, policy, cfg.Orders.ReturnWindow, logger)
	walletService := service.NewWalletService(walletRepo, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Wallet:   handler.NewWalletHandler(walletService, logger),
		Admin:    handler.NewAdminHandler(checkoutService, orderService, walletService, cfg.Orders.ReconcileAfter, logger),
	}

	mux := router.New(handlers, router.Auth{APIKey: cfg.Auth.APIKey, JWTSecret: cfg.Auth.JWTSecret}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
