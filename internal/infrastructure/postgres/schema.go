package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/spendtrack/internal/infrastructure/postgres/migrations"
)

// Execer runs a statement without returning rows.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// InitSchema creates the transactions table and its index if they are missing.
// It is safe to call repeatedly.
func InitSchema(ctx context.Context, db Execer) error {
	ddl, err := migrations.FS.ReadFile(migrations.Schema)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	// no arguments: pgx uses the simple protocol, which accepts several statements
	if _, err := db.Exec(ctx, string(ddl)); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}
