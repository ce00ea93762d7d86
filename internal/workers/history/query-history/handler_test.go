package queryhistory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/history"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage/memory"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
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

func (m *MockIndex) SearchHistory(ctx context.Context, siteID string, q history.SearchQuery) ([]models.EmailHistory, int, error) {
	args := m.Called(ctx, siteID, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.EmailHistory), args.Int(1), args.Error(2)
}

func seedHistory(t *testing.T, rec *history.Recorder, n int) {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, rec.Record(context.Background(), &models.EmailHistory{
			SiteID:         "site-1",
			TemplateID:     "site-template-1",
			RecipientEmail: fmt.Sprintf("user%d@example.com", i),
			Subject:        "Your order",
			Status:         models.StatusSent,
			SentAt:         base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

// ==========================
// Store reads
// ==========================

func TestHandler_Execute_List(t *testing.T) {
	rec := history.NewRecorder(memory.New(), logger.NewNoOpLogger())
	seedHistory(t, rec, 3)

	h, err := NewHandler(DefaultConfig(), rec, logger.NewTestLogger(t))
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       *Input
		wantShowing int
	}{
		{name: "default limit", input: &Input{SiteID: "site-1"}, wantShowing: 3},
		{name: "explicit limit", input: &Input{SiteID: "site-1", Limit: 2}, wantShowing: 2},
		{name: "blank query", input: &Input{SiteID: "site-1", Query: &Query{}}, wantShowing: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, SourceStore, out.Source)
			assert.Equal(t, 3, out.Total)
			assert.Equal(t, tt.wantShowing, out.Showing)
			assert.Equal(t, "user2@example.com", out.History[0].RecipientEmail)
		})
	}
}

func TestHandler_Execute_UnknownSiteIsEmpty(t *testing.T) {
	rec := history.NewRecorder(memory.New(), logger.NewNoOpLogger())
	h, err := NewHandler(DefaultConfig(), rec, logger.NewNoOpLogger())
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{SiteID: "site-404"})
	require.NoError(t, err)
	assert.Equal(t, []models.EmailHistory{}, out.History)
	assert.Zero(t, out.Total)
}

// ==========================
// Search
// ==========================

func TestHandler_Execute_Search(t *testing.T) {
	idx := new(MockIndex)
	idx.On("SearchHistory", mock.Anything, "site-1", history.SearchQuery{
		Text: "order", Status: models.StatusFailed, Size: 10,
	}).Return([]models.EmailHistory{{ID: "history-1", Status: models.StatusFailed}}, 4, nil)

	rec := history.NewRecorder(memory.New(), logger.NewNoOpLogger(), history.WithIndex(idx))
	h, err := NewHandler(DefaultConfig(), rec, logger.NewTestLogger(t))
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{
		SiteID: "site-1", Limit: 10, Query: &Query{Text: "order", Status: "failed"},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceSearch, out.Source)
	assert.Equal(t, 4, out.Total)
	assert.Equal(t, 1, out.Showing)
	idx.AssertExpectations(t)
}

func TestHandler_Execute_SearchErrors(t *testing.T) {
	t.Run("search disabled", func(t *testing.T) {
		rec := history.NewRecorder(memory.New(), logger.NewNoOpLogger())
		h, err := NewHandler(DefaultConfig(), rec, logger.NewNoOpLogger())
		require.NoError(t, err)

		_, err = h.Execute(context.Background(), &Input{SiteID: "site-1", Query: &Query{Text: "x"}})
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
		assert.False(t, errors.IsRetryable(err))
	})

	t.Run("index failure", func(t *testing.T) {
		idx := new(MockIndex)
		idx.On("SearchHistory", mock.Anything, "site-1", mock.Anything).Return(nil, 0, fmt.Errorf("cluster red"))
		rec := history.NewRecorder(memory.New(), logger.NewNoOpLogger(), history.WithIndex(idx))
		h, err := NewHandler(DefaultConfig(), rec, logger.NewNoOpLogger())
		require.NoError(t, err)

		_, err = h.Execute(context.Background(), &Input{SiteID: "site-1", Query: &Query{Trigger: "order_placed"}})
		assert.True(t, errors.HasCode(err, errors.ErrCodeSearchQueryFailed))
		assert.True(t, errors.IsRetryable(err))
	})
}

// ==========================
// Input schema
// ==========================

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
	}{
		{name: "site only", variables: `{"siteId":"site-1"}`},
		{name: "with query", variables: `{"siteId":"site-1","limit":20,"query":{"status":"bounced"}}`},
		{name: "missing site", variables: `{"limit":20}`, wantErr: true},
		{name: "negative limit", variables: `{"siteId":"site-1","limit":-1}`, wantErr: true},
		{name: "unknown status", variables: `{"siteId":"site-1","query":{"status":"queued"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: TaskType, Variables: tt.variables}}
			var input Input
			err := camunda.ParseJob(job, schemas, TaskType, &input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
