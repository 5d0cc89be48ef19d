package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rabi-77/ecommerce-sub000/internal/config"
	"github.com/rabi-77/ecommerce-sub000/internal/coupon"
	"github.com/rabi-77/ecommerce-sub000/internal/database"
	"github.com/rabi-77/ecommerce-sub000/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	files := flag.String("files", "", "comma-separated coupon files (defaults to COUPON_FILES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// S3 first when enabled, local file system otherwise
	fileLoader := coupon.NewFileLoader(logger)
	var s3Loader coupon.Loader
	if cfg.S3.Enabled {
		s3Loader, err = coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
	} else {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}
	loader := coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	importCfg := &coupon.ImporterConfig{FilePaths: cfg.Coupons.Files}
	if *files != "" {
		importCfg.FilePaths = strings.Split(*files, ",")
	}

	couponRepo := repository.NewCouponRepository(pool, logger)
	result, err := coupon.NewImporter(loader, couponRepo, logger).Import(ctx, importCfg)
	if err != nil {
		return fmt.Errorf("coupon import failed: %w", err)
	}

	logger.Info().
		Int("files", result.Files).
		Int("coupons", result.Coupons).
		Int("upserted", result.Upserted).
		Msg("coupon import completed")

	return nil
}
