package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) IndexHistory(ctx context.Context, h *models.EmailHistory) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockIndex) SearchHistory(ctx context.Context, siteID string, q SearchQuery) ([]models.EmailHistory, int, error) {
	args := m.Called(ctx, siteID, q)
	rows, _ := args.Get(0).([]models.EmailHistory)
	return rows, args.Int(1), args.Error(2)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishHistory(ctx context.Context, h *models.EmailHistory) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockPublisher) Close() error { return nil }

// ==========================
// Record
// ==========================

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	idx := new(MockIndex)
	pub := new(MockPublisher)
	idx.On("IndexHistory", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishHistory", mock.Anything, mock.Anything).Return(nil)

	r := NewRecorder(store, logger.NewTestLogger(t), WithIndex(idx), WithPublisher(pub))
	h := &models.EmailHistory{SiteID: "site-1", TemplateID: "st-1", Status: models.StatusSent}
	require.NoError(t, r.Record(ctx, h))

	assert.NotEmpty(t, h.ID)
	assert.False(t, h.SentAt.IsZero())
	idx.AssertCalled(t, "IndexHistory", mock.Anything, h)
	pub.AssertCalled(t, "PublishHistory", mock.Anything, h)

	page, err := r.ListHistory(ctx, "site-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, h.ID, page.History[0].ID)
}

func TestRecorder_SecondaryFailuresDoNotFailRecord(t *testing.T) {
	idx := new(MockIndex)
	pub := new(MockPublisher)
	idx.On("IndexHistory", mock.Anything, mock.Anything).Return(errors.New("es down"))
	pub.On("PublishHistory", mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	store := memory.New()
	r := NewRecorder(store, logger.NewTestLogger(t), WithIndex(idx), WithPublisher(pub))
	require.NoError(t, r.Record(context.Background(), &models.EmailHistory{SiteID: "site-1"}))

	rows, total, err := store.ListHistory(context.Background(), "site-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, rows, 1)
}

// ==========================
// ListHistory
// ==========================

func TestRecorder_ListHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		require.NoError(t, store.AppendHistory(ctx, &models.EmailHistory{
			ID:     fmt.Sprintf("h-%02d", i),
			SiteID: "site-1",
			SentAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.AppendHistory(ctx, &models.EmailHistory{ID: "other", SiteID: "site-2", SentAt: base}))

	tests := []struct {
		name        string
		recorder    *Recorder
		limit       int
		wantShowing int
	}{
		{name: "default limit", recorder: NewRecorder(store, logger.NewNoOpLogger()), wantShowing: 50},
		{name: "explicit limit", recorder: NewRecorder(store, logger.NewNoOpLogger()), limit: 5, wantShowing: 5},
		{name: "configured default", recorder: NewRecorder(store, logger.NewNoOpLogger(), WithDefaultLimit(20)), wantShowing: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := tt.recorder.ListHistory(ctx, "site-1", tt.limit)
			require.NoError(t, err)
			assert.Equal(t, 60, page.Total)
			assert.Equal(t, tt.wantShowing, page.Showing)
			require.Len(t, page.History, tt.wantShowing)
			assert.True(t, page.History[0].SentAt.After(page.History[1].SentAt))
		})
	}
}

// ==========================
// SearchHistory
// ==========================

func TestRecorder_SearchHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without an index", func(t *testing.T) {
		r := NewRecorder(memory.New(), logger.NewTestLogger(t))
		_, err := r.SearchHistory(ctx, "site-1", SearchQuery{Text: "shipped"})
		assert.True(t, commonErrors.HasCode(err, commonErrors.ErrCodeValidationFailed))
	})

	t.Run("delegates to the index with the default size", func(t *testing.T) {
		idx := new(MockIndex)
		idx.On("SearchHistory", mock.Anything, "site-1", SearchQuery{Text: "shipped", Size: 50}).
			Return([]models.EmailHistory{{ID: "h-1"}}, 7, nil)

		r := NewRecorder(memory.New(), logger.NewTestLogger(t), WithIndex(idx))
		page, err := r.SearchHistory(ctx, "site-1", SearchQuery{Text: "shipped"})
		require.NoError(t, err)
		assert.Equal(t, 7, page.Total)
		assert.Equal(t, 1, page.Showing)
		idx.AssertExpectations(t)
	})

	t.Run("index failure is retryable", func(t *testing.T) {
		idx := new(MockIndex)
		idx.On("SearchHistory", mock.Anything, mock.Anything, mock.Anything).Return(nil, 0, errors.New("timeout"))

		r := NewRecorder(memory.New(), logger.NewTestLogger(t), WithIndex(idx))
		_, err := r.SearchHistory(ctx, "site-1", SearchQuery{})
		assert.True(t, commonErrors.HasCode(err, commonErrors.ErrCodeSearchQueryFailed))
		assert.True(t, commonErrors.IsRetryable(err))
	})
}
