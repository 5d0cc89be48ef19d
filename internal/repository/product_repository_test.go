package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()
	seeded := seedProduct(t, pool, "Running Shoe", "2499.00", map[string]int{"9": 3, "10": 0})

	t.Run("Found with variants and flags", func(t *testing.T) {
		p, err := repo.GetByID(ctx, seeded.ID)

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Running Shoe", p.Name)
		assert.True(t, decimal.RequireFromString("2499").Equal(p.Price))
		assert.Equal(t, seeded.CategoryID, p.CategoryID)
		assert.True(t, p.Available())
		require.Len(t, p.Variants, 2)

		v, ok := p.Variant("9")
		require.True(t, ok)
		assert.Equal(t, 3, v.Stock)
	})

	t.Run("Unlisted category makes product unavailable", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE categories SET is_listed = FALSE WHERE id = $1`, seeded.CategoryID)
		require.NoError(t, err)

		p, err := repo.GetByID(ctx, seeded.ID)

		require.NoError(t, err)
		assert.False(t, p.Available())
	})

	t.Run("Not found", func(t *testing.T) {
		p, err := repo.GetByID(ctx, uuid.New())

		assert.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestProductRepository_GetAllAndGetByIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()

	a := seedProduct(t, pool, "Alpha", "10", map[string]int{"S": 1})
	b := seedProduct(t, pool, "Beta", "20", map[string]int{"M": 2})
	deleted := seedProduct(t, pool, "Gamma", "30", nil)
	_, err := pool.Exec(ctx, `UPDATE products SET is_deleted = TRUE WHERE id = $1`, deleted.ID)
	require.NoError(t, err)

	all, err := repo.GetAll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Beta", all[1].Name)

	page, err := repo.GetAll(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Beta", page[0].Name)

	byIDs, err := repo.GetByIDs(ctx, []uuid.UUID{b.ID, a.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductRepository_ReserveAndReleaseStock(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()
	p := seedProduct(t, pool, "Cap", "199", map[string]int{"L": 5})

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.ReserveStock(ctx, tx, p.ID, "L", 3))
	assert.ErrorIs(t, repo.ReserveStock(ctx, tx, p.ID, "L", 3), model.ErrInsufficientStock)
	assert.ErrorIs(t, repo.ReserveStock(ctx, tx, p.ID, "XL", 1), model.ErrInsufficientStock)
	assert.ErrorIs(t, repo.ReserveStock(ctx, tx, p.ID, "L", 0), model.ErrInvalidQuantity)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 2, variantStock(t, pool, p.ID, "L"))

	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseStock(ctx, tx, p.ID, "L", 3))
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 5, variantStock(t, pool, p.ID, "L"))
}

func TestProductRepository_ReserveStock_NoOversell(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()
	p := seedProduct(t, pool, "Limited Tee", "999", map[string]int{"M": 3})

	const buyers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := pool.Begin(ctx)
			if err != nil {
				return
			}
			if err := repo.ReserveStock(ctx, tx, p.ID, "M", 1); err != nil {
				_ = tx.Rollback(ctx)
				return
			}
			if tx.Commit(ctx) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, variantStock(t, pool, p.ID, "M"))
}
