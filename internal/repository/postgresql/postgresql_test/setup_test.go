package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/flipit/flipit-session-go/internal/pkg/database"
	"github.com/flipit/flipit-session-go/internal/repository/postgresql"
)

// TestDatabaseSetup holds the connection used by repository tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and makes sure the schema exists.
// The test is skipped when no database is configured.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := postgresql.NewLikeRepository(db).EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to prepare schema: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.TruncateAllTables(ctx); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	return setup
}

// TruncateAllTables removes every row written by previous tests
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tables := []string{
		"item_likes",
	}

	return postgresql.WithTransaction(ctx, t.DB, func(ctx context.Context) error {
		q := postgresql.GetQuerier(ctx, t.DB)
		for _, table := range tables {
			if _, err := q.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", table)); err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}
