package provisionsite

import (
	"context"
	"fmt"
	"testing"

	"wecelebrate-notifier/internal/catalog"
	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage/memory"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) AddSiteTemplate(ctx context.Context, siteID, globalTemplateID string) (*models.SiteTemplate, error) {
	args := m.Called(ctx, siteID, globalTemplateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SiteTemplate), args.Error(1)
}

func (m *MockCatalog) ListGlobalTemplates(ctx context.Context) ([]models.GlobalTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GlobalTemplate), args.Error(1)
}

func seededCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	store := memory.New()
	cat := catalog.NewService(store, store, logger.NewNoOpLogger())
	_, err := cat.SeedGlobalTemplates(context.Background())
	require.NoError(t, err)
	return cat
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_SelectedTemplates(t *testing.T) {
	ctx := context.Background()
	cat := seededCatalog(t)
	_, err := cat.AddSiteTemplate(ctx, "site-1", catalog.GlobalTemplateID(models.TypeInvite))
	require.NoError(t, err)

	h, err := NewHandler(DefaultConfig(), cat, logger.NewTestLogger(t))
	require.NoError(t, err)

	out, err := h.Execute(ctx, &Input{
		SiteID: "site-1",
		GlobalTemplateIDs: []string{
			catalog.GlobalTemplateID(models.TypeInvite),
			catalog.GlobalTemplateID(models.TypeOrderConfirmation),
			catalog.GlobalTemplateID(models.TypeOrderConfirmation),
			"global-birthday",
		},
	})
	require.NoError(t, err)

	require.Len(t, out.Created, 1)
	assert.Equal(t, models.TypeOrderConfirmation, out.Created[0].Type)
	assert.Equal(t, "global-order-confirmation", out.Created[0].GlobalTemplateID)
	assert.Equal(t, []string{"global-invite"}, out.AlreadyPresent)
	assert.Equal(t, []string{"global-birthday"}, out.Missing)
}

func TestHandler_Execute_All(t *testing.T) {
	ctx := context.Background()
	cat := seededCatalog(t)
	h, err := NewHandler(DefaultConfig(), cat, logger.NewTestLogger(t))
	require.NoError(t, err)

	out, err := h.Execute(ctx, &Input{SiteID: "site-1", All: true})
	require.NoError(t, err)
	assert.Len(t, out.Created, len(models.TemplateTypes))
	assert.Empty(t, out.AlreadyPresent)

	again, err := h.Execute(ctx, &Input{SiteID: "site-1", All: true})
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Len(t, again.AlreadyPresent, len(models.TemplateTypes))

	list, err := cat.GetSiteTemplatesBySite(ctx, "site-1")
	require.NoError(t, err)
	assert.Len(t, list, len(models.TemplateTypes))
}

func TestHandler_Execute_StorageFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *MockCatalog)
		input *Input
	}{
		{
			name: "add fails",
			setup: func(m *MockCatalog) {
				m.On("AddSiteTemplate", mock.Anything, "site-1", "global-invite").
					Return(nil, errors.NewQueryExecutionFailedError("create site template", fmt.Errorf("connection reset")))
			},
			input: &Input{SiteID: "site-1", GlobalTemplateIDs: []string{"global-invite"}},
		},
		{
			name: "list fails",
			setup: func(m *MockCatalog) {
				m.On("ListGlobalTemplates", mock.Anything).
					Return(nil, errors.NewQueryExecutionFailedError("list global templates", fmt.Errorf("timeout")))
			},
			input: &Input{SiteID: "site-1", All: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockCatalog)
			tt.setup(m)
			h, err := NewHandler(DefaultConfig(), m, logger.NewNoOpLogger())
			require.NoError(t, err)

			_, err = h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsRetryable(err))
			m.AssertExpectations(t)
		})
	}
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
		{name: "ids", variables: `{"siteId":"site-1","globalTemplateIds":["global-invite"]}`},
		{name: "all", variables: `{"siteId":"site-1","all":true}`},
		{name: "all false without ids", variables: `{"siteId":"site-1","all":false}`, wantErr: true},
		{name: "nothing requested", variables: `{"siteId":"site-1"}`, wantErr: true},
		{name: "missing site", variables: `{"all":true}`, wantErr: true},
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
