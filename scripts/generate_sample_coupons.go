//go:build ignore

// Writes sample coupon definition files for the coupon-import command.
// Usage: go run scripts/generate_sample_coupons.go
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// File 1 holds the storewide codes, file 2 the seasonal ones.
// WELCOME50 appears in both; the later file wins on import.
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	yearEnd := now.AddDate(1, 0, 0)

	files := map[string][]model.Coupon{
		"coupons.jsonl.gz": {
			fixed("WELCOME50", 50, 299, now, yearEnd),
			fixed("FLAT100", 100, 999, now, yearEnd),
			percent("SAVE10", 10, 500, 200, now, yearEnd),
			limited(percent("FIRST20", 20, 0, 300, now, yearEnd), 1000),
		},
		"seasonal.jsonl.gz": {
			fixed("WELCOME50", 75, 299, now, yearEnd),
			percent("FESTIVE25", 25, 1500, 750, now, now.AddDate(0, 1, 0)),
			fixed("EXPIRED30", 30, 0, now.AddDate(-1, 0, 0), now.AddDate(0, 0, -1)),
		},
	}

	for filename, coupons := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createCouponFile(filePath, coupons); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d coupons\n", filePath, len(coupons))
	}

	fmt.Println("\nImport with:")
	fmt.Printf("  COUPON_FILES=%s,%s go run ./cmd/coupon-import\n",
		filepath.Join(dataDir, "coupons.jsonl.gz"), filepath.Join(dataDir, "seasonal.jsonl.gz"))
}

func fixed(code string, value, minPurchase int64, start, end time.Time) model.Coupon {
	return model.Coupon{
		ID:                uuid.New(),
		Code:              code,
		DiscountType:      model.DiscountFixed,
		DiscountValue:     decimal.NewFromInt(value),
		MinPurchaseAmount: decimal.NewFromInt(minPurchase),
		StartDate:         start,
		ExpiryDate:        end,
		IsActive:          true,
	}
}

func percent(code string, pct, minPurchase, maxDiscount int64, start, end time.Time) model.Coupon {
	c := fixed(code, pct, minPurchase, start, end)
	c.DiscountType = model.DiscountPercentage
	ceiling := decimal.NewFromInt(maxDiscount)
	c.MaxDiscountAmount = &ceiling
	return c
}

func limited(c model.Coupon, uses int) model.Coupon {
	c.MaxUses = &uses
	return c
}

func createCouponFile(filePath string, coupons []model.Coupon) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, c := range coupons {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to write coupon %s: %w", c.Code, err)
		}
	}

	return nil
}
