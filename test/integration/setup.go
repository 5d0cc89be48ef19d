package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/database"
	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container, connects a pool and applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Catalogue is the seeded product set.
//
//	Shirt: 1000, size M stock 5, in Apparel which carries a 10% offer (900 effective)
//	Socks: 200, size FREE stock 3, no offer
type Catalogue struct {
	ApparelID uuid.UUID
	ShirtID   uuid.UUID
	SocksID   uuid.UUID
}

// SeedCatalogue inserts a category, a brand, two products with variants and a category offer.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) Catalogue {
	t.Helper()

	ctx := context.Background()
	c := Catalogue{ApparelID: uuid.New(), ShirtID: uuid.New(), SocksID: uuid.New()}
	accessories := uuid.New()
	brand := uuid.New()

	stmts := []struct {
		sql  string
		args []interface{}
	}{
		{"INSERT INTO categories (id, name) VALUES ($1, 'Apparel'), ($2, 'Accessories')", []interface{}{c.ApparelID, accessories}},
		{"INSERT INTO brands (id, name) VALUES ($1, 'Northwind')", []interface{}{brand}},
		{"INSERT INTO products (id, name, price, category_id, brand_id) VALUES ($1, 'Linen Shirt', 1000, $2, $3)", []interface{}{c.ShirtID, c.ApparelID, brand}},
		{"INSERT INTO products (id, name, price, category_id, brand_id) VALUES ($1, 'Wool Socks', 200, $2, $3)", []interface{}{c.SocksID, accessories, brand}},
		{"INSERT INTO product_variants (product_id, size, stock) VALUES ($1, 'M', 5), ($2, 'FREE', 3)", []interface{}{c.ShirtID, c.SocksID}},
		{
			`INSERT INTO offers (id, name, target_type, target_id, discount_kind, discount_value, start_date)
			 VALUES ($1, 'Apparel week', 'CATEGORY', $2, 'percentage', 10, $3)`,
			[]interface{}{uuid.New(), c.ApparelID, time.Now().Add(-24 * time.Hour)},
		},
	}

	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s.sql, s.args...); err != nil {
			t.Fatalf("failed to seed catalogue: %v", err)
		}
	}

	return c
}

// SeedCoupon stores FLAT100: 100 off orders of at least 999.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	repo := repository.NewCouponRepository(pool, zerolog.Nop())
	err := repo.Upsert(context.Background(), &model.Coupon{
		ID:                uuid.New(),
		Code:              "FLAT100",
		DiscountType:      model.DiscountFixed,
		DiscountValue:     decimal.NewFromInt(100),
		MinPurchaseAmount: decimal.NewFromInt(999),
		StartDate:         time.Now().Add(-24 * time.Hour),
		ExpiryDate:        time.Now().Add(30 * 24 * time.Hour),
		IsActive:          true,
	})
	if err != nil {
		t.Fatalf("failed to seed coupon: %v", err)
	}
}

// AddToCart puts qty units of a product size in the user's cart.
func AddToCart(t *testing.T, pool *pgxpool.Pool, userID, productID uuid.UUID, size string, qty int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"INSERT INTO cart_items (user_id, product_id, size, quantity) VALUES ($1, $2, $3, $4)",
		userID, productID, size, qty,
	)
	if err != nil {
		t.Fatalf("failed to add cart item: %v", err)
	}
}

// Stock returns the current stock of a variant.
func Stock(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID, size string) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		"SELECT stock FROM product_variants WHERE product_id = $1 AND size = $2", productID, size,
	).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

// CleanupDB removes all rows from every table.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE wallet_transactions, wallets, order_items, orders, cart_items,
			coupon_redemptions, coupons, offers, product_variants, products, brands, categories CASCADE`)
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
