package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/service/review"
	"github.com/srgulbay/flashbox/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockReviewService is a mock implementation of review.ReviewService
type MockReviewService struct {
	mock.Mock
}

var _ review.ReviewService = (*MockReviewService)(nil)

func (m *MockReviewService) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*domain.ReviewRecord, error) {
	args := m.Called(ctx, userID, item, outcome, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewRecord), args.Error(1)
}

func (m *MockReviewService) GetDueQueue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
	kind *domain.ItemKind,
) ([]*domain.ReviewRecord, error) {
	args := m.Called(ctx, userID, now, limit, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewRecord), args.Error(1)
}

func (m *MockReviewService) Enqueue(
	ctx context.Context,
	userID uuid.UUID,
	items []domain.ItemRef,
	now time.Time,
) ([]*domain.ReviewRecord, error) {
	args := m.Called(ctx, userID, items, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewRecord), args.Error(1)
}

func (m *MockReviewService) Postpone(
	ctx context.Context,
	userID uuid.UUID,
	item domain.ItemRef,
	days int,
	now time.Time,
) (*domain.ReviewRecord, error) {
	args := m.Called(ctx, userID, item, days, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewRecord), args.Error(1)
}

func (m *MockReviewService) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*store.ReviewStats, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ReviewStats), args.Error(1)
}

func (m *MockReviewService) RemoveItem(ctx context.Context, item domain.ItemRef) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewService) RemoveUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
