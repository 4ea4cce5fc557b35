package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/domain/srs"
	"github.com/srgulbay/flashbox/internal/events"
	"github.com/srgulbay/flashbox/internal/platform/logger"
	"github.com/srgulbay/flashbox/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

type reviewServiceImpl struct {
	tx          store.Transactor
	store       store.ReviewRecordStore
	scheduler   srs.Service
	catalog     Catalog
	emitter     events.EventEmitter
	maxAttempts int
	dueLimit    int
	logger      *slog.Logger
}

// NewReviewService creates a ReviewService.
//
// catalog may be nil, in which case references are not verified. emitter may
// be nil, in which case no events are published.
func NewReviewService(
	tx store.Transactor,
	reviewStore store.ReviewRecordStore,
	scheduler srs.Service,
	catalog Catalog,
	emitter events.EventEmitter,
	opts Options,
	logger *slog.Logger,
) (ReviewService, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: transactor cannot be nil", domain.ErrValidation)
	}
	if reviewStore == nil {
		return nil, fmt.Errorf("%w: review store cannot be nil", domain.ErrValidation)
	}
	if scheduler == nil {
		return nil, fmt.Errorf("%w: scheduler cannot be nil", domain.ErrValidation)
	}
	if opts.MaxSaveAttempts < 0 {
		return nil, fmt.Errorf("%w: max save attempts cannot be negative", domain.ErrValidation)
	}
	if opts.MaxSaveAttempts == 0 {
		opts.MaxSaveAttempts = DefaultMaxSaveAttempts
	}
	if opts.DefaultDueLimit <= 0 {
		opts.DefaultDueLimit = store.DefaultDueLimit
	}
	if catalog == nil {
		catalog = AllowAllCatalog{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		tx:          tx,
		store:       reviewStore,
		scheduler:   scheduler,
		catalog:     catalog,
		emitter:     emitter,
		maxAttempts: opts.MaxSaveAttempts,
		dueLimit:    opts.DefaultDueLimit,
		logger:      logger.With(slog.String("component", "review_service")),
	}, nil
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*domain.ReviewRecord, error) {
	const op = "submit_review"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !outcome.Valid() {
		log.Warn("invalid review outcome",
			slog.String("user_id", userID.String()),
			slog.String("outcome", string(outcome)))
		return nil, ErrInvalidOutcome
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.verifyReferences(ctx, op, userID, item); err != nil {
		return nil, err
	}

	now = now.UTC()
	before, record, err := s.saveWithRetry(ctx, op,
		func(ctx context.Context) (*domain.ReviewRecord, error) {
			return s.store.FindOrCreate(ctx, userID, item, now)
		},
		func(current *domain.ReviewRecord) (*domain.ReviewRecord, error) {
			return s.scheduler.ApplyOutcome(current, outcome, now)
		},
		ErrItemNotFound,
	)
	if err != nil {
		return nil, err
	}

	log.Debug("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("item", item.String()),
		slog.String("outcome", string(outcome)),
		slog.Int("box_number", record.BoxNumber),
		slog.Bool("is_mastered", record.IsMastered))

	s.emit(ctx, events.NewReviewEvent(events.TypeReviewSubmitted, record, outcome, now))
	if record.IsMastered && !before.IsMastered {
		s.emit(ctx, events.NewReviewEvent(events.TypeReviewMastered, record, outcome, now))
	}

	return record, nil
}

// GetDueQueue implements ReviewService.GetDueQueue.
func (s *reviewServiceImpl) GetDueQueue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
	kind *domain.ItemKind,
) ([]*domain.ReviewRecord, error) {
	if kind != nil && !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, *kind)
	}
	if limit <= 0 {
		limit = s.dueLimit
	}

	records, err := s.store.ListDue(ctx, userID, now.UTC(), limit, kind)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list due records",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("get_due_queue", "failed to list due records", err)
	}
	return records, nil
}

// Enqueue implements ReviewService.Enqueue.
func (s *reviewServiceImpl) Enqueue(
	ctx context.Context,
	userID uuid.UUID,
	items []domain.ItemRef,
	now time.Time,
) ([]*domain.ReviewRecord, error) {
	const op = "enqueue"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(items) == 0 || len(items) > MaxEnqueueItems {
		return nil, fmt.Errorf("%w: expected 1 to %d items, got %d",
			ErrInvalidItems, MaxEnqueueItems, len(items))
	}

	unique := make([]domain.ItemRef, 0, len(items))
	seen := make(map[domain.ItemRef]struct{}, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		unique = append(unique, item)
	}

	if err := s.verifyReferences(ctx, op, userID, unique...); err != nil {
		return nil, err
	}

	// Rows are created in a fixed global order so that concurrent batches
	// over overlapping items wait on each other instead of deadlocking.
	lockOrder := slices.Clone(unique)
	slices.SortFunc(lockOrder, compareItems)

	now = now.UTC()
	created := make(map[domain.ItemRef]*domain.ReviewRecord, len(unique))
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		txStore := s.store.WithTx(tx)
		for _, item := range lockOrder {
			record, err := txStore.FindOrCreate(ctx, userID, item, now)
			if err != nil {
				return fmt.Errorf("item %s: %w", item, err)
			}
			created[item] = record
		}
		return nil
	})
	if err != nil {
		log.Error("failed to enqueue items",
			slog.String("user_id", userID.String()),
			slog.Int("items", len(unique)),
			slog.String("error", err.Error()))
		return nil, NewServiceError(op, "failed to enqueue items", err)
	}

	records := make([]*domain.ReviewRecord, 0, len(unique))
	for _, item := range unique {
		records = append(records, created[item])
	}

	log.Debug("items enqueued",
		slog.String("user_id", userID.String()),
		slog.Int("items", len(records)))
	return records, nil
}

// Postpone implements ReviewService.Postpone.
func (s *reviewServiceImpl) Postpone(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
	days int,
	now time.Time,
) (*domain.ReviewRecord, error) {
	if days < 1 {
		return nil, ErrInvalidDays
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	now = now.UTC()
	_, record, err := s.saveWithRetry(ctx, "postpone",
		func(ctx context.Context) (*domain.ReviewRecord, error) {
			record, err := s.store.Get(ctx, userID, item)
			if errors.Is(err, store.ErrReviewRecordNotFound) {
				return nil, ErrRecordNotFound
			}
			return record, err
		},
		func(current *domain.ReviewRecord) (*domain.ReviewRecord, error) {
			return s.scheduler.PostponeReview(current, days, now)
		},
		ErrRecordNotFound,
	)
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("review postponed",
		slog.String("user_id", userID.String()),
		slog.String("item", item.String()),
		slog.Int("days", days),
		slog.Time("next_review_at", record.NextReviewAt))
	return record, nil
}

// Stats implements ReviewService.Stats.
func (s *reviewServiceImpl) Stats(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*store.ReviewStats, error) {
	stats, err := s.store.Stats(ctx, userID, now.UTC())
	if err != nil {
		return nil, NewServiceError("stats", "failed to compute review stats", err)
	}
	return stats, nil
}

// RemoveItem implements ReviewService.RemoveItem.
func (s *reviewServiceImpl) RemoveItem(ctx context.Context, item domain.ItemRef) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, err
	}

	n, err := s.store.DeleteForItem(ctx, item)
	if err != nil {
		return 0, NewServiceError("remove_item", "failed to delete item records", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("item records removed",
		slog.String("item", item.String()),
		slog.Int64("deleted", n))
	return n, nil
}

// RemoveUser implements ReviewService.RemoveUser.
func (s *reviewServiceImpl) RemoveUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrUserNotFound
	}

	n, err := s.store.DeleteForUser(ctx, userID)
	if err != nil {
		return 0, NewServiceError("remove_user", "failed to delete user records", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user records removed",
		slog.String("user_id", userID.String()),
		slog.Int64("deleted", n))
	return n, nil
}

// saveWithRetry loads a record, derives its next state and saves it under the
// store's revision check. A lost race reloads and re-derives; after
// maxAttempts losses it gives up with ErrSchedulingConflict. goneErr is
// returned when the record is deleted between load and save.
//
// before is the state the winning attempt was derived from.
func (s *reviewServiceImpl) saveWithRetry(
	ctx context.Context,
	op string,
	load func(ctx context.Context) (*domain.ReviewRecord, error),
	mutate func(current *domain.ReviewRecord) (*domain.ReviewRecord, error),
	goneErr error,
) (before, after *domain.ReviewRecord, err error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		current, err := load(ctx)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return nil, nil, err
			}
			// FindOrCreate lost the insert to a row that was deleted before
			// it could be read back.
			if errors.Is(err, store.ErrReviewRecordNotFound) {
				return nil, nil, goneErr
			}
			return nil, nil, NewServiceError(op, "failed to load review record", err)
		}

		next, err := mutate(current)
		if err != nil {
			return nil, nil, NewServiceError(op, "failed to compute next schedule", err)
		}

		err = s.store.Save(ctx, next)
		switch {
		case err == nil:
			return current, next, nil
		case errors.Is(err, store.ErrConcurrentModification):
			log.Debug("review record changed concurrently, retrying",
				slog.String("operation", op),
				slog.String("record_id", current.ID.String()),
				slog.Int("attempt", attempt))
		case errors.Is(err, store.ErrReviewRecordNotFound):
			return nil, nil, goneErr
		default:
			return nil, nil, NewServiceError(op, "failed to save review record", err)
		}
	}

	log.Warn("giving up after repeated concurrent modifications",
		slog.String("operation", op),
		slog.Int("attempts", s.maxAttempts))
	return nil, nil, ErrSchedulingConflict
}

// compareItems orders references by kind, then id.
func compareItems(a, b domain.ItemRef) int {
	if c := strings.Compare(string(a.Kind()), string(b.Kind())); c != 0 {
		return c
	}
	aID, bID := a.ID(), b.ID()
	return bytes.Compare(aID[:], bID[:])
}

// verifyReferences checks that the user and every item exist.
func (s *reviewServiceImpl) verifyReferences(
	ctx context.Context,
	op string,
	userID uuid.UUID,
	items ...domain.ItemRef,
) error {
	if userID == uuid.Nil {
		return ErrUserNotFound
	}

	ok, err := s.catalog.UserExists(ctx, userID)
	if err != nil {
		return NewServiceError(op, "failed to verify user", err)
	}
	if !ok {
		return ErrUserNotFound
	}

	for _, item := range items {
		ok, err := s.catalog.ItemExists(ctx, item)
		if err != nil {
			return NewServiceError(op, "failed to verify item", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrItemNotFound, item)
		}
	}
	return nil
}

// emit publishes an event. Failures are logged and otherwise ignored: the
// review is already committed.
func (s *reviewServiceImpl) emit(ctx context.Context, event *events.ReviewEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit review event",
			slog.String("event_type", event.Type),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
