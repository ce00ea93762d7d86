package scheduledtriggers

import (
	"context"
	"testing"

	"wecelebrate-notifier/internal/automation"
	"wecelebrate-notifier/internal/catalog"
	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/delivery"
	"wecelebrate-notifier/internal/history"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage/memory"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) ProcessScheduled(ctx context.Context, siteID string, trigger models.TriggerEvent, recipients []automation.ScheduledRecipient) (*automation.ScheduledReport, error) {
	args := m.Called(ctx, siteID, trigger, recipients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*automation.ScheduledReport), args.Error(1)
}

type captureSender struct {
	to []string
}

func (s *captureSender) Send(_ context.Context, msg delivery.Message) (*delivery.Result, error) {
	s.to = append(s.to, msg.To)
	return &delivery.Result{MessageID: "m", Provider: "test"}, nil
}

func intPtr(i int) *int { return &i }

// ==========================
// Execute
// ==========================

func TestHandler_Execute_MapsReport(t *testing.T) {
	recipients := []automation.ScheduledRecipient{{Email: "a@example.com", DaysUntil: intPtr(2)}}
	engine := new(MockEngine)
	engine.On("ProcessScheduled", mock.Anything, "site-1", models.TriggerSelectionExpiring, recipients).
		Return(&automation.ScheduledReport{
			Trigger: models.TriggerSelectionExpiring, SiteID: "site-1",
			Processed: 1, Sent: 1, Errors: []string{},
		}, nil)

	h, err := NewHandler(DefaultConfig(), engine, logger.NewTestLogger(t))
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{
		Trigger: "selection_expiring", SiteID: "site-1", Recipients: recipients,
	})
	require.NoError(t, err)
	assert.Equal(t, &Output{
		Trigger: "selection_expiring", SiteID: "site-1", Processed: 1, Sent: 1, Errors: []string{},
	}, out)
	engine.AssertExpectations(t)
}

func TestHandler_Execute_BatchLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBatchSize = 1
	engine := new(MockEngine)
	h, err := NewHandler(cfg, engine, logger.NewNoOpLogger())
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), &Input{
		Trigger: "anniversary_approaching", SiteID: "site-1",
		Recipients: []automation.ScheduledRecipient{{Email: "a@example.com"}, {Email: "b@example.com"}},
	})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
	engine.AssertNotCalled(t, "ProcessScheduled", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestHandler_Execute_WithEngine runs a batch through the real engine on the
// in-memory store.
func TestHandler_Execute_WithEngine(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger(t)
	store := memory.New()

	cat := catalog.NewService(store, store, log)
	_, err := cat.SeedGlobalTemplates(ctx)
	require.NoError(t, err)
	st, err := cat.AddSiteTemplate(ctx, "site-1", catalog.GlobalTemplateID(models.TypeGiftReminder))
	require.NoError(t, err)

	rules := automation.NewRuleService(store, log)
	_, err = rules.CreateRule(ctx, models.AutomationRule{
		SiteID: "site-1", Name: "Anniversary", Trigger: models.TriggerAnniversaryApproaching,
		TemplateID: st.ID, Enabled: true,
	}, "admin")
	require.NoError(t, err)

	sender := &captureSender{}
	dispatcher := delivery.NewDispatcher(log)
	dispatcher.Register(models.ChannelEmail, sender)
	engine := automation.NewEngine(store, cat, dispatcher, history.NewRecorder(store, log), log)

	h, err := NewHandler(DefaultConfig(), engine, log)
	require.NoError(t, err)

	out, err := h.Execute(ctx, &Input{
		Trigger: "anniversary_approaching",
		SiteID:  "site-1",
		Recipients: []automation.ScheduledRecipient{
			{Email: "near@example.com", DaysUntil: intPtr(12)},
			{Email: "far@example.com", DaysUntil: intPtr(45)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Processed)
	assert.Equal(t, 1, out.Sent)
	assert.Equal(t, []string{"near@example.com"}, sender.to)
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
		{name: "valid", variables: `{"trigger":"selection_expiring","siteId":"s","recipients":[{"email":"a@b.co","daysUntil":3}]}`},
		{name: "empty batch", variables: `{"trigger":"selection_expiring","siteId":"s","recipients":[]}`},
		{name: "plain trigger", variables: `{"trigger":"order_shipped","siteId":"s","recipients":[]}`, wantErr: true},
		{name: "recipient without days", variables: `{"trigger":"selection_expiring","siteId":"s","recipients":[{"email":"a@b.co"}]}`, wantErr: true},
		{name: "missing recipients", variables: `{"trigger":"selection_expiring","siteId":"s"}`, wantErr: true},
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
