package coupon

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestImporter_Import(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	first := createTestCouponFile(t, "a.jsonl.gz", []string{couponLine("ALPHA"), couponLine("SHARED")})
	second := createTestCouponFile(t, "b.jsonl.gz", []string{
		couponLine("BETA"),
		`{"code":"SHARED","discountType":"fixed","discountValue":"99","minPurchaseAmount":"0",` +
			`"startDate":"2025-01-01T00:00:00Z","expiryDate":"2030-01-01T00:00:00Z","isActive":true}`,
	})

	store := new(MockStore)
	var upserted []model.Coupon
	store.On("Upsert", ctx, mock.AnythingOfType("*model.Coupon")).
		Run(func(args mock.Arguments) {
			upserted = append(upserted, *args.Get(1).(*model.Coupon))
		}).
		Return(nil)

	importer := NewImporter(NewFileLoader(logger), store, logger)
	result, err := importer.Import(ctx, &ImporterConfig{FilePaths: []string{first, second}})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 3, result.Coupons)
	assert.Equal(t, 3, result.Upserted)

	require.Len(t, upserted, 3)
	assert.Equal(t, "ALPHA", upserted[0].Code)
	assert.Equal(t, "BETA", upserted[1].Code)
	assert.Equal(t, "SHARED", upserted[2].Code)
	assert.Equal(t, "99", upserted[2].DiscountValue.String(), "later file wins")
	for _, c := range upserted {
		assert.NotEqual(t, uuid.Nil, c.ID)
	}
}

func TestImporter_Import_LoadFailure(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	good := createTestCouponFile(t, "good.jsonl.gz", []string{couponLine("GOOD")})
	store := new(MockStore)

	importer := NewImporter(NewFileLoader(logger), store, logger)
	result, err := importer.Import(ctx, &ImporterConfig{FilePaths: []string{good, "/nonexistent/coupons.jsonl.gz"}})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to load coupon file /nonexistent/coupons.jsonl.gz")
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestImporter_Import_UpsertFailure(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	file := createTestCouponFile(t, "c.jsonl.gz", []string{couponLine("ONE"), couponLine("TWO")})
	store := new(MockStore)
	store.On("Upsert", ctx, mock.Anything).Return(nil).Once()
	store.On("Upsert", ctx, mock.Anything).Return(errors.New("constraint violation")).Once()

	importer := NewImporter(NewFileLoader(logger), store, logger)
	result, err := importer.Import(ctx, &ImporterConfig{FilePaths: []string{file}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert coupon TWO")
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Upserted)
}

// TestIntegration_WithSampleCouponFiles loads the files written by
// go run scripts/generate_sample_coupons.go
func TestIntegration_WithSampleCouponFiles(t *testing.T) {
	logger := zerolog.Nop()

	var path string
	for _, candidate := range []string{"data/coupons/coupons.jsonl.gz", "../../data/coupons/coupons.jsonl.gz"} {
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		t.Skipf("Skipping integration test - sample coupon files not found. Run: go run scripts/generate_sample_coupons.go")
	}

	importer := NewImporter(NewFileLoader(logger), new(MockStore), logger)
	set, err := importer.Load(context.Background(), &ImporterConfig{FilePaths: []string{path}})

	require.NoError(t, err)
	assert.Greater(t, set.Size(), 0)
	for _, c := range set.All() {
		assert.NoError(t, c.Validate())
	}
}
