package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/events"
	"github.com/srgulbay/flashbox/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockReviewStore is a mock implementation of store.ReviewRecordStore
type MockReviewStore struct {
	mock.Mock
}

var _ store.ReviewRecordStore = (*MockReviewStore)(nil)

func (m *MockReviewStore) FindOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
	now time.Time,
) (*domain.ReviewRecord, error) {
	args := m.Called(ctx, userID, item, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewRecord).Clone(), args.Error(1)
}

func (m *MockReviewStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
) (*domain.ReviewRecord, error) {
	args := m.Called(ctx, userID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewRecord).Clone(), args.Error(1)
}

func (m *MockReviewStore) Save(ctx context.Context, record *domain.ReviewRecord) error {
	args := m.Called(ctx, record)
	if args.Error(0) == nil {
		record.Revision++
	}
	return args.Error(0)
}

func (m *MockReviewStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
	limit int,
	kind *domain.ItemKind,
) ([]*domain.ReviewRecord, error) {
	args := m.Called(ctx, userID, asOf, limit, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewRecord), args.Error(1)
}

func (m *MockReviewStore) CountDue(ctx context.Context, userID uuid.UUID, asOf time.Time) (int64, error) {
	args := m.Called(ctx, userID, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) (*store.ReviewStats, error) {
	args := m.Called(ctx, userID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ReviewStats), args.Error(1)
}

func (m *MockReviewStore) DeleteForItem(ctx context.Context, item domain.ItemRef) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewStore) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// WithTx returns the mock itself so transactional code paths hit the same expectations.
func (m *MockReviewStore) WithTx(*sqlx.Tx) store.ReviewRecordStore {
	return m
}

// MockTransactor runs the function without a real transaction and returns its error.
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	m.Called(ctx)
	return fn(ctx, nil)
}

// MockCatalog is a mock implementation of Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalog) ItemExists(ctx context.Context, item domain.ItemRef) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

// recordingEmitter collects emitted events and optionally fails.
type recordingEmitter struct {
	events []*events.ReviewEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.ReviewEvent) error {
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []string {
	types := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		types = append(types, ev.Type)
	}
	return types
}
