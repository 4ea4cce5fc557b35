package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/platform/logger"
	"github.com/srgulbay/flashbox/internal/store"
)

const reviewRecordColumns = `id, user_id, flash_card_id, question_id, topic_id, box_number,
	last_reviewed_at, next_review_at, is_mastered, revision, created_at, updated_at`

// itemColumns maps each item kind to its nullable column. Column names are
// only ever taken from this map when building queries.
var itemColumns = map[domain.ItemKind]string{
	domain.ItemKindFlashCard: "flash_card_id",
	domain.ItemKindQuestion:  "question_id",
	domain.ItemKindTopic:     "topic_id",
}

// reviewRecordRow is the persisted shape of a domain.ReviewRecord.
type reviewRecordRow struct {
	ID             uuid.UUID     `db:"id"`
	UserID         uuid.UUID     `db:"user_id"`
	FlashCardID    uuid.NullUUID `db:"flash_card_id"`
	QuestionID     uuid.NullUUID `db:"question_id"`
	TopicID        uuid.NullUUID `db:"topic_id"`
	BoxNumber      int           `db:"box_number"`
	LastReviewedAt sql.NullTime  `db:"last_reviewed_at"`
	NextReviewAt   time.Time     `db:"next_review_at"`
	IsMastered     bool          `db:"is_mastered"`
	Revision       int64         `db:"revision"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}

// dbTime normalizes timestamps to what both engines store losslessly: UTC
// with microsecond precision. SQLite compares the UTC text form lexically.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dbTime(*t), Valid: true}
}

func (r *reviewRecordRow) toDomain() (*domain.ReviewRecord, error) {
	item, err := domain.NewItemRef(uuidPtr(r.FlashCardID), uuidPtr(r.QuestionID), uuidPtr(r.TopicID))
	if err != nil {
		return nil, fmt.Errorf("%w: record %s: %w", store.ErrExclusivityViolation, r.ID, err)
	}

	record := &domain.ReviewRecord{
		ID:           r.ID,
		UserID:       r.UserID,
		Item:         item,
		BoxNumber:    r.BoxNumber,
		NextReviewAt: r.NextReviewAt.UTC(),
		IsMastered:   r.IsMastered,
		Revision:     r.Revision,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.LastReviewedAt.Valid {
		last := r.LastReviewedAt.Time.UTC()
		record.LastReviewedAt = &last
	}
	return record, nil
}

// ReviewStore implements the store.ReviewRecordStore interface
// using a SQL database as the storage backend.
type ReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewStore creates a new SQL implementation of the ReviewRecordStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewReviewStore(db store.DBTX, logger *slog.Logger) *ReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure ReviewStore implements store.ReviewRecordStore interface
var _ store.ReviewRecordStore = (*ReviewStore)(nil)

// WithTx implements store.ReviewRecordStore.WithTx
func (s *ReviewStore) WithTx(tx *sqlx.Tx) store.ReviewRecordStore {
	return &ReviewStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *ReviewStore) selectByItem(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
) (*domain.ReviewRecord, error) {
	query := s.db.Rebind(`SELECT ` + reviewRecordColumns + `
		FROM review_records
		WHERE user_id = ? AND ` + itemColumns[item.Kind()] + ` = ?`)

	var row reviewRecordRow
	if err := s.db.GetContext(ctx, &row, query, userID, item.ID()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewRecordNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain()
}

// FindOrCreate implements store.ReviewRecordStore.FindOrCreate
//
// The insert silently yields to a row created concurrently for the same
// (user, item); the row is then read back, so every caller ends up with the
// single stored record.
func (s *ReviewStore) FindOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
	now time.Time,
) (*domain.ReviewRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrExclusivityViolation, err)
	}

	existing, err := s.selectByItem(ctx, userID, item)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrReviewRecordNotFound) {
		log.Error("failed to look up review record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("item", item.String()))
		return nil, err
	}

	record, err := domain.NewReviewRecord(userID, item, dbTime(now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	flashCardID, questionID, topicID := item.Columns()
	query := s.db.Rebind(`
		INSERT INTO review_records (id, user_id, flash_card_id, question_id, topic_id, box_number,
			last_reviewed_at, next_review_at, is_mastered, revision, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`)

	result, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		nullUUID(flashCardID),
		nullUUID(questionID),
		nullUUID(topicID),
		record.BoxNumber,
		nullTime(record.LastReviewedAt),
		record.NextReviewAt,
		record.IsMastered,
		record.Revision,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create review record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("item", item.String()))
		return nil, MapError(err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 1 {
		log.Debug("review record created",
			slog.String("record_id", record.ID.String()),
			slog.String("user_id", userID.String()),
			slog.String("item", item.String()))
		return record, nil
	}

	// Another writer created the row between our select and insert.
	winner, err := s.selectByItem(ctx, userID, item)
	if err != nil {
		log.Error("failed to read concurrently created review record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("item", item.String()))
		return nil, err
	}
	return winner, nil
}

// Get implements store.ReviewRecordStore.Get
func (s *ReviewStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
) (*domain.ReviewRecord, error) {
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrExclusivityViolation, err)
	}
	return s.selectByItem(ctx, userID, item)
}

// Save implements store.ReviewRecordStore.Save
func (s *ReviewStore) Save(ctx context.Context, record *domain.ReviewRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if record == nil {
		return fmt.Errorf("%w: record is nil", store.ErrInvalidEntity)
	}

	if err := record.Validate(); err != nil {
		log.Warn("review record validation failed during save",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		if errors.Is(err, domain.ErrInvalidItemReference) {
			return fmt.Errorf("%w: %w", store.ErrExclusivityViolation, err)
		}
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	nextReviewAt := dbTime(record.NextReviewAt)
	updatedAt := dbTime(record.UpdatedAt)
	lastReviewedAt := nullTime(record.LastReviewedAt)

	query := s.db.Rebind(`
		UPDATE review_records
		SET box_number = ?,
			last_reviewed_at = ?,
			next_review_at = ?,
			is_mastered = ?,
			revision = revision + 1,
			updated_at = ?
		WHERE id = ? AND revision = ?`)

	result, err := s.db.ExecContext(ctx, query,
		record.BoxNumber,
		lastReviewedAt,
		nextReviewAt,
		record.IsMastered,
		updatedAt,
		record.ID,
		record.Revision,
	)
	if err != nil {
		log.Error("failed to save review record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		var count int
		countQuery := s.db.Rebind(`SELECT COUNT(*) FROM review_records WHERE id = ?`)
		if err := s.db.GetContext(ctx, &count, countQuery, record.ID); err != nil {
			return MapError(err)
		}
		if count == 0 {
			log.Debug("review record vanished before save",
				slog.String("record_id", record.ID.String()))
			return store.ErrReviewRecordNotFound
		}
		log.Debug("review record revision changed before save",
			slog.String("record_id", record.ID.String()),
			slog.Int64("revision", record.Revision))
		return store.ErrConcurrentModification
	}

	record.Revision++
	record.NextReviewAt = nextReviewAt
	record.UpdatedAt = updatedAt
	if lastReviewedAt.Valid {
		last := lastReviewedAt.Time
		record.LastReviewedAt = &last
	}

	log.Debug("review record saved",
		slog.String("record_id", record.ID.String()),
		slog.Int("box_number", record.BoxNumber),
		slog.Bool("is_mastered", record.IsMastered),
		slog.Int64("revision", record.Revision))
	return nil
}

// ListDue implements store.ReviewRecordStore.ListDue
func (s *ReviewStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
	limit int,
	kind *domain.ItemKind,
) ([]*domain.ReviewRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	kindFilter := ""
	if kind != nil {
		column, ok := itemColumns[*kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, *kind)
		}
		kindFilter = " AND " + column + " IS NOT NULL"
	}

	query := s.db.Rebind(`SELECT ` + reviewRecordColumns + `
		FROM review_records
		WHERE user_id = ? AND is_mastered = ? AND next_review_at <= ?` + kindFilter + `
		ORDER BY next_review_at ASC, box_number ASC, id ASC
		LIMIT ?`)

	var rows []reviewRecordRow
	err := s.db.SelectContext(ctx, &rows, query, userID, false, dbTime(asOf), store.NormalizeDueLimit(limit))
	if err != nil {
		log.Error("failed to list due review records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	records := make([]*domain.ReviewRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	log.Debug("listed due review records",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(records)))
	return records, nil
}

// CountDue implements store.ReviewRecordStore.CountDue
func (s *ReviewStore) CountDue(ctx context.Context, userID uuid.UUID, asOf time.Time) (int64, error) {
	query := s.db.Rebind(`SELECT COUNT(*) FROM review_records
		WHERE user_id = ? AND is_mastered = ? AND next_review_at <= ?`)

	var count int64
	if err := s.db.GetContext(ctx, &count, query, userID, false, dbTime(asOf)); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// Stats implements store.ReviewRecordStore.Stats
func (s *ReviewStore) Stats(ctx context.Context, userID uuid.UUID, asOf time.Time) (*store.ReviewStats, error) {
	query := s.db.Rebind(`
		SELECT box_number,
			COUNT(*) AS total,
			SUM(CASE WHEN is_mastered = ? THEN 1 ELSE 0 END) AS mastered,
			SUM(CASE WHEN is_mastered = ? AND next_review_at <= ? THEN 1 ELSE 0 END) AS due
		FROM review_records
		WHERE user_id = ?
		GROUP BY box_number
		ORDER BY box_number`)

	var rows []struct {
		BoxNumber int   `db:"box_number"`
		Total     int64 `db:"total"`
		Mastered  int64 `db:"mastered"`
		Due       int64 `db:"due"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, true, false, dbTime(asOf), userID); err != nil {
		return nil, MapError(err)
	}

	stats := &store.ReviewStats{}
	for _, row := range rows {
		if row.BoxNumber < domain.MinBoxNumber || row.BoxNumber > domain.MaxBoxNumber {
			continue
		}
		stats.BoxCounts[row.BoxNumber-1] = row.Total
		stats.Total += row.Total
		stats.Mastered += row.Mastered
		stats.Due += row.Due
	}
	return stats, nil
}

// DeleteForItem implements store.ReviewRecordStore.DeleteForItem
func (s *ReviewStore) DeleteForItem(ctx context.Context, item domain.ItemRef) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrExclusivityViolation, err)
	}

	query := s.db.Rebind(`DELETE FROM review_records WHERE ` + itemColumns[item.Kind()] + ` = ?`)
	result, err := s.db.ExecContext(ctx, query, item.ID())
	if err != nil {
		log.Error("failed to delete review records for item",
			slog.String("error", err.Error()),
			slog.String("item", item.String()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("review records deleted for item",
		slog.String("item", item.String()),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

// DeleteForUser implements store.ReviewRecordStore.DeleteForUser
func (s *ReviewStore) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM review_records WHERE user_id = ?`)
	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to delete review records for user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("review records deleted for user",
		slog.String("user_id", userID.String()),
		slog.Int64("deleted", deleted))
	return deleted, nil
}
