package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/srgulbay/flashbox/internal/api/shared"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/platform/logger"
	"github.com/srgulbay/flashbox/internal/service/review"
	"github.com/srgulbay/flashbox/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var handlerNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type handlerFixture struct {
	service *MockReviewService
	router  chi.Router
	userID  uuid.UUID
}

// newHandlerFixture mounts the review routes behind a stub authenticator
// that marks every request as coming from userID.
func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	f := &handlerFixture{service: &MockReviewService{}, userID: uuid.New()}
	handler := NewReviewHandler(f.service, func() time.Time { return handlerNow }, log)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Anonymous") == "" {
				req = req.WithContext(shared.WithUserID(req.Context(), f.userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/reviews", func(r chi.Router) { handler.Routes(r, nil) })
	f.router = r
	return f
}

func (f *handlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sampleRecord(t *testing.T, userID uuid.UUID, box int) *domain.ReviewRecord {
	t.Helper()
	item, err := domain.NewFlashCardRef(uuid.New())
	require.NoError(t, err)
	record, err := domain.NewReviewRecord(userID, item, handlerNow)
	require.NoError(t, err)
	record.BoxNumber = box
	return record
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetDueQueue(t *testing.T) {
	t.Parallel()

	t.Run("returns the queue", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		records := []*domain.ReviewRecord{sampleRecord(t, f.userID, 1), sampleRecord(t, f.userID, 2)}
		kind := domain.ItemKindFlashCard
		f.service.On("GetDueQueue", mock.Anything, f.userID, handlerNow, 5, &kind).Return(records, nil)

		rec := f.do(http.MethodGet, "/api/reviews/due?limit=5&kind=flashcard", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ReviewListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, records[0].Item.ID().String(), resp.Items[0].ItemID)
		assert.Equal(t, "flashcard", resp.Items[1].ItemKind)
		assert.Equal(t, 2, resp.Items[1].BoxNumber)
	})

	t.Run("empty queue is an empty list", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		f.service.On("GetDueQueue", mock.Anything, f.userID, handlerNow, 0, (*domain.ItemKind)(nil)).
			Return([]*domain.ReviewRecord{}, nil)

		rec := f.do(http.MethodGet, "/api/reviews/due", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[],"count":0}`, rec.Body.String())
	})

	t.Run("bad query parameters", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)

		for _, path := range []string{
			"/api/reviews/due?limit=abc",
			"/api/reviews/due?limit=0",
			"/api/reviews/due?kind=video",
		} {
			rec := f.do(http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		}
		f.service.AssertNotCalled(t, "GetDueQueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service failure hides details", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		f.service.On("GetDueQueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("pq: relation review_records does not exist"))

		rec := f.do(http.MethodGet, "/api/reviews/due", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to load due reviews", decodeError(t, rec).Error)
		assert.NotContains(t, rec.Body.String(), "relation")
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/reviews/due", nil)
		req.Header.Set("X-Anonymous", "1")
		rec := httptest.NewRecorder()

		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	validBody := `{"item_kind":"question","item_id":"` + itemID.String() + `","outcome":"correct"}`

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		item, err := domain.NewQuestionRef(itemID)
		require.NoError(t, err)
		record := sampleRecord(t, f.userID, 2)
		record.Item = item
		f.service.On("SubmitReview", mock.Anything, f.userID, item, domain.ReviewOutcomeCorrect, handlerNow).
			Return(record, nil)

		rec := f.do(http.MethodPost, "/api/reviews", validBody)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ReviewRecordResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "question", resp.ItemKind)
		assert.Equal(t, itemID.String(), resp.ItemID)
		assert.Equal(t, 2, resp.BoxNumber)
	})

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{"malformed json", `{"item_kind":`, nil, http.StatusBadRequest, "Invalid request format"},
		{"unknown field", `{"item_kind":"question","item_id":"` + itemID.String() + `","outcome":"correct","x":1}`,
			nil, http.StatusBadRequest, "Invalid request format"},
		{"missing outcome", `{"item_kind":"question","item_id":"` + itemID.String() + `"}`,
			nil, http.StatusBadRequest, "Invalid outcome: required field"},
		{"bad outcome", `{"item_kind":"question","item_id":"` + itemID.String() + `","outcome":"good"}`,
			nil, http.StatusBadRequest, "Invalid outcome: invalid value"},
		{"bad kind", `{"item_kind":"video","item_id":"` + itemID.String() + `","outcome":"correct"}`,
			nil, http.StatusBadRequest, "Invalid item_kind: invalid value"},
		{"bad id", `{"item_kind":"topic","item_id":"nope","outcome":"correct"}`,
			nil, http.StatusBadRequest, "Invalid item_id: must be a UUID"},
		{"unknown item", validBody, review.ErrItemNotFound, http.StatusNotFound, "Item not found"},
		{"unknown user", validBody, review.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"conflict", validBody, review.ErrSchedulingConflict, http.StatusConflict,
			"The review was modified concurrently, please retry"},
		{"internal", validBody, errors.New("boom"), http.StatusInternalServerError, "Failed to submit review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newHandlerFixture(t)
			f.service.On("SubmitReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tt.serviceErr)

			rec := f.do(http.MethodPost, "/api/reviews", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
			if tt.serviceErr == nil {
				f.service.AssertNotCalled(t, "SubmitReview",
					mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestEnqueue(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		a, b := uuid.New(), uuid.New()
		refA, err := domain.NewTopicRef(a)
		require.NoError(t, err)
		refB, err := domain.NewFlashCardRef(b)
		require.NoError(t, err)
		records := []*domain.ReviewRecord{sampleRecord(t, f.userID, 1), sampleRecord(t, f.userID, 1)}
		f.service.On("Enqueue", mock.Anything, f.userID, []domain.ItemRef{refA, refB}, handlerNow).
			Return(records, nil)

		body := `{"items":[{"item_kind":"topic","item_id":"` + a.String() + `"},` +
			`{"item_kind":"flashcard","item_id":"` + b.String() + `"}]}`
		rec := f.do(http.MethodPost, "/api/reviews/queue", body)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ReviewListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)

		rec := f.do(http.MethodPost, "/api/reviews/queue", `{"items":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid nested item", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)

		rec := f.do(http.MethodPost, "/api/reviews/queue", `{"items":[{"item_kind":"topic","item_id":"x"}]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPostpone(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		item, err := domain.NewFlashCardRef(itemID)
		require.NoError(t, err)
		record := sampleRecord(t, f.userID, 3)
		f.service.On("Postpone", mock.Anything, f.userID, item, 3, handlerNow).Return(record, nil)

		rec := f.do(http.MethodPost, "/api/reviews/postpone",
			`{"item_kind":"flashcard","item_id":"`+itemID.String()+`","days":3}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not scheduled", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		f.service.On("Postpone", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, review.ErrRecordNotFound)

		rec := f.do(http.MethodPost, "/api/reviews/postpone",
			`{"item_kind":"flashcard","item_id":"`+itemID.String()+`","days":1}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("days out of range", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)

		rec := f.do(http.MethodPost, "/api/reviews/postpone",
			`{"item_kind":"flashcard","item_id":"`+itemID.String()+`","days":0}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStats(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)
	stats := &store.ReviewStats{BoxCounts: [5]int64{2, 1, 0, 0, 1}, Total: 4, Mastered: 1, Due: 2}
	f.service.On("Stats", mock.Anything, f.userID, handlerNow).Return(stats, nil)

	rec := f.do(http.MethodGet, "/api/reviews/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"box_counts":[2,1,0,0,1],"total":4,"mastered":1,"due":2}`, rec.Body.String())
}
