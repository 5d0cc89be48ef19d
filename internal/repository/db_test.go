package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL testcontainer, applies the schema and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("Skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

type seededProduct struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	BrandID    uuid.UUID
}

// seedProduct inserts a listed category, brand and product with the given variants.
func seedProduct(t *testing.T, pool *pgxpool.Pool, name string, price string, variants map[string]int) seededProduct {
	ctx := context.Background()
	p := seededProduct{ID: uuid.New(), CategoryID: uuid.New(), BrandID: uuid.New()}

	_, err := pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, p.CategoryID, name+" category")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO brands (id, name) VALUES ($1, $2)`, p.BrandID, name+" brand")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO products (id, name, price, category_id, brand_id)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, name, decimal.RequireFromString(price), p.CategoryID, p.BrandID)
	require.NoError(t, err)

	for size, stock := range variants {
		_, err = pool.Exec(ctx, `INSERT INTO product_variants (product_id, size, stock) VALUES ($1, $2, $3)`, p.ID, size, stock)
		require.NoError(t, err)
	}

	return p
}

func variantStock(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID, size string) int {
	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock FROM product_variants WHERE product_id = $1 AND size = $2`, productID, size).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func TestMigrate_IsIdempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	err := database.Migrate(ctx, pool, zerolog.Nop())
	assert.NoError(t, err)

	var tables int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('orders', 'order_items', 'wallets', 'wallet_transactions', 'coupons', 'offers')
	`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 6, tables)
}

func TestSchema_RejectsNegativeStockAndBalance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	p := seedProduct(t, pool, "Shirt", "100", map[string]int{"M": 1})

	_, err := pool.Exec(ctx, `UPDATE product_variants SET stock = stock - 2 WHERE product_id = $1`, p.ID)
	assert.True(t, database.IsViolation(err, database.CodeCheckViolation))

	_, err = pool.Exec(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, -1)`, uuid.New())
	assert.True(t, database.IsViolation(err, database.CodeCheckViolation))
}
