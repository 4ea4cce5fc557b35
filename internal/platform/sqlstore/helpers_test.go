package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/srgulbay/flashbox/internal/config"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/stretchr/testify/require"
)

// testNow is a fixed clock value with no sub-microsecond part.
var testNow = time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)

// openTestDB opens a private, migrated in-memory SQLite database that also
// carries minimal user and content tables for the catalog.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{Driver: DriverSQLite, URL: MemoryURL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, MigrateUp, nil))

	for _, table := range []string{"users", "flash_cards", "questions", "topics"} {
		_, err := db.ExecContext(ctx, `CREATE TABLE `+table+` (id TEXT PRIMARY KEY)`)
		require.NoError(t, err)
	}
	return db
}

func newFlashCardRef(t *testing.T) domain.ItemRef {
	t.Helper()
	item, err := domain.NewFlashCardRef(uuid.New())
	require.NoError(t, err)
	return item
}

func newQuestionRef(t *testing.T) domain.ItemRef {
	t.Helper()
	item, err := domain.NewQuestionRef(uuid.New())
	require.NoError(t, err)
	return item
}

func newTopicRef(t *testing.T) domain.ItemRef {
	t.Helper()
	item, err := domain.NewTopicRef(uuid.New())
	require.NoError(t, err)
	return item
}

func countRows(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM review_records`))
	return n
}
