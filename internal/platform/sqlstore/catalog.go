package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"github.com/srgulbay/flashbox/internal/config"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/platform/logger"
	"github.com/srgulbay/flashbox/internal/store"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Catalog answers existence questions about users and learnable items
// owned by other subsystems, reading their tables in the same database.
type Catalog struct {
	db         store.DBTX
	usersTable string
	itemTables map[domain.ItemKind]string
	logger     *slog.Logger
}

// NewCatalog creates a Catalog over the tables named in cfg. Every table must
// have a uuid "id" primary key.
func NewCatalog(db store.DBTX, cfg config.CatalogConfig, logger *slog.Logger) (*Catalog, error) {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	tables := []string{cfg.UsersTable, cfg.FlashCardsTable, cfg.QuestionsTable, cfg.TopicsTable}
	for _, table := range tables {
		if !tableNamePattern.MatchString(table) {
			return nil, fmt.Errorf("invalid catalog table name %q", table)
		}
	}

	return &Catalog{
		db:         db,
		usersTable: cfg.UsersTable,
		itemTables: map[domain.ItemKind]string{
			domain.ItemKindFlashCard: cfg.FlashCardsTable,
			domain.ItemKindQuestion:  cfg.QuestionsTable,
			domain.ItemKindTopic:     cfg.TopicsTable,
		},
		logger: logger.With(slog.String("component", "catalog")),
	}, nil
}

func (c *Catalog) exists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	query := c.db.Rebind(`SELECT COUNT(*) FROM ` + table + ` WHERE id = ?`)

	var count int
	if err := c.db.GetContext(ctx, &count, query, id); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Error("catalog lookup failed",
			slog.String("error", err.Error()),
			slog.String("table", table))
		return false, MapError(err)
	}
	return count > 0, nil
}

// UserExists reports whether the user is known to the user subsystem.
func (c *Catalog) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	return c.exists(ctx, c.usersTable, userID)
}

// ItemExists reports whether the referenced flashcard, question or topic exists.
func (c *Catalog) ItemExists(ctx context.Context, item domain.ItemRef) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, err
	}
	return c.exists(ctx, c.itemTables[item.Kind()], item.ID())
}
