package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/spendtrack/internal/infrastructure/postgres"
	"github.com/iho/spendtrack/internal/infrastructure/postgres/generated"
)

// TestDB provides a migrated Postgres connection for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to TEST_DATABASE_URL and applies migrations.
// The test is skipped when the variable is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all rows and resets the id sequence.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	if _, err := db.Pool.Exec(ctx, `TRUNCATE TABLE transactions RESTART IDENTITY`); err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestTransaction inserts a row directly, bypassing validation.
func (db *TestDB) CreateTestTransaction(ctx context.Context, userID, title, category string, amount decimal.Decimal) generated.Transaction {
	db.t.Helper()

	var numeric pgtype.Numeric
	if err := numeric.Scan(amount.String()); err != nil {
		db.t.Fatalf("failed to convert amount: %v", err)
	}

	row, err := db.Queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		UserID:   userID,
		Title:    title,
		Amount:   numeric,
		Category: category,
	})
	if err != nil {
		db.t.Fatalf("failed to create test transaction: %v", err)
	}

	return row
}

// NewTestRedis connects to TEST_REDIS_URL and flushes the selected database.
func NewTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("invalid TEST_REDIS_URL: %v", err)
	}

	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush test redis: %v", err)
	}

	return client
}
