package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"github.com/srgulbay/flashbox/internal/config"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// MemoryURL opens a private in-memory SQLite database.
const MemoryURL = ":memory:"

func init() {
	// sqlx only knows the cgo driver name "sqlite3".
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to the configured database, applies pool settings and
// verifies the connection with a ping.
//
// For SQLite, ":memory:" yields a database private to the returned handle,
// pinned to a single connection so it lives as long as the handle. File
// databases run in WAL mode with a busy timeout and foreign keys enabled.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		dsn    string
		memory bool
	)

	switch cfg.Driver {
	case DriverPostgres:
		dsn = cfg.URL
	case DriverSQLite:
		dsn, memory = sqliteDSN(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if memory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetimeMinutes > 0 {
			db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// sqliteDSN turns the configured SQLite location into a modernc DSN.
func sqliteDSN(url string) (dsn string, memory bool) {
	if url == MemoryURL || url == "" {
		// A named shared-cache database is visible to every connection of
		// this handle and to nothing else.
		name := "flashbox-" + uuid.NewString()
		return "file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)", true
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep +
		"_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate", false
}
