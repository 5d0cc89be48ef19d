package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewProductRepository(testDB.Pool, logger)
	orders := repository.NewOrderRepository(testDB.Pool, logger)
	ctx := context.Background()

	t.Run("GetByIDs loads variants", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCatalogue(t, testDB.Pool)

		products, err := repo.GetByIDs(ctx, []uuid.UUID{cat.ShirtID, cat.SocksID})
		require.NoError(t, err)
		require.Len(t, products, 2)
		for _, p := range products {
			require.Len(t, p.Variants, 1)
		}
	})

	t.Run("GetByID returns nil for unknown product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("ReserveStock refuses to go below zero", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCatalogue(t, testDB.Pool)

		tx, err := orders.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.ReserveStock(ctx, tx, cat.SocksID, "FREE", 2))
		assert.ErrorIs(t, repo.ReserveStock(ctx, tx, cat.SocksID, "FREE", 2), model.ErrInsufficientStock)
		require.NoError(t, tx.Rollback(ctx))

		assert.Equal(t, 3, Stock(t, testDB.Pool, cat.SocksID, "FREE"))
	})

	t.Run("concurrent reservations never oversell", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		cat := SeedCatalogue(t, testDB.Pool)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			reserved int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tx, err := orders.BeginTx(ctx)
				if err != nil {
					return
				}
				if err := repo.ReserveStock(ctx, tx, cat.ShirtID, "M", 1); err != nil {
					_ = tx.Rollback(ctx)
					return
				}
				if tx.Commit(ctx) == nil {
					mu.Lock()
					reserved++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 5, reserved)
		assert.Equal(t, 0, Stock(t, testDB.Pool, cat.ShirtID, "M"))
	})
}

func TestWalletRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	repo := repository.NewWalletRepository(testDB.Pool, zerolog.Nop())
	ctx := context.Background()
	CleanupDB(t, testDB.Pool)

	userID := uuid.New()
	orderID := uuid.New()

	t.Run("debit against a missing wallet", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		_, err = repo.Debit(ctx, tx, userID, decimal.NewFromInt(10), model.WalletEntry{Source: model.SourceOrderPayment})
		assert.ErrorIs(t, err, model.ErrInsufficientBalance)
	})

	t.Run("credit then debit keeps a running balance", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		credit, err := repo.Credit(ctx, tx, userID, decimal.NewFromInt(500), model.WalletEntry{Source: model.SourceAdjustment})
		require.NoError(t, err)
		assert.True(t, credit.BalanceAfter.Equal(decimal.NewFromInt(500)))
		require.NoError(t, tx.Commit(ctx))

		tx, err = repo.BeginTx(ctx)
		require.NoError(t, err)
		debit, err := repo.Debit(ctx, tx, userID, decimal.RequireFromString("199.99"),
			model.WalletEntry{Source: model.SourceOrderPayment, OrderID: &orderID})
		require.NoError(t, err)
		assert.True(t, debit.BalanceAfter.Equal(decimal.RequireFromString("300.01")))
		require.NoError(t, tx.Commit(ctx))

		bal, err := repo.GetBalance(ctx, userID)
		require.NoError(t, err)
		assert.True(t, bal.Equal(decimal.RequireFromString("300.01")))

		has, err := repo.HasOrderDebit(ctx, orderID)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("overdraft leaves the balance untouched", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		_, err = repo.Debit(ctx, tx, userID, decimal.NewFromInt(1000), model.WalletEntry{Source: model.SourceOrderPayment})
		assert.ErrorIs(t, err, model.ErrInsufficientBalance)
		require.NoError(t, tx.Rollback(ctx))

		bal, err := repo.GetBalance(ctx, userID)
		require.NoError(t, err)
		assert.True(t, bal.Equal(decimal.RequireFromString("300.01")))
	})

	t.Run("transactions page newest first", func(t *testing.T) {
		txns, total, err := repo.ListTransactions(ctx, userID, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, txns, 1)
		assert.Equal(t, model.TransactionDebit, txns[0].Type)
	})
}

func TestCouponRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	repo := repository.NewCouponRepository(testDB.Pool, zerolog.Nop())
	ctx := context.Background()
	CleanupDB(t, testDB.Pool)
	SeedCoupon(t, testDB.Pool)

	c, err := repo.GetByCode(ctx, "FLAT100")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.UsedCount)

	userID := uuid.New()
	require.NoError(t, repo.Redeem(ctx, c.ID, userID, uuid.New()))
	assert.ErrorIs(t, repo.Redeem(ctx, c.ID, userID, uuid.New()), model.ErrCouponAlreadyUsed)

	c, err = repo.GetByCode(ctx, "FLAT100")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsedCount)
	assert.True(t, c.UsedByUser(userID))

	t.Run("re-import keeps the usage count", func(t *testing.T) {
		updated := *c
		updated.DiscountValue = decimal.NewFromInt(120)
		updated.ExpiryDate = time.Now().Add(60 * 24 * time.Hour)
		require.NoError(t, repo.Upsert(ctx, &updated))

		got, err := repo.GetByCode(ctx, "FLAT100")
		require.NoError(t, err)
		assert.True(t, got.DiscountValue.Equal(decimal.NewFromInt(120)))
		assert.Equal(t, 1, got.UsedCount)
	})

	t.Run("unknown code", func(t *testing.T) {
		got, err := repo.GetByCode(ctx, "NOPE")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
