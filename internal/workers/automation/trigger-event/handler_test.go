package triggerevent

import (
	"context"
	"testing"
	"time"

	"wecelebrate-notifier/internal/automation"
	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/config"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Engine
// ==========================

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) TriggerEvent(ctx context.Context, ev automation.Event) (*automation.Report, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*automation.Report), args.Error(1)
}

func createMockJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                1,
		Type:               TaskType,
		ProcessInstanceKey: 10,
		Retries:            3,
		Variables:          variables,
	}}
}

func newTestHandler(t *testing.T, engine Engine) *Handler {
	t.Helper()
	h, err := NewHandler(DefaultConfig(), engine, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute(t *testing.T) {
	days := 3
	engine := new(MockEngine)
	engine.On("TriggerEvent", mock.Anything, automation.Event{
		SiteID:    "site-1",
		Trigger:   models.TriggerSelectionExpiring,
		Recipient: automation.Recipient{Email: "dana@example.com", Phone: "+16502530000"},
		Variables: map[string]string{"recipient_name": "Dana"},
		DaysUntil: &days,
	}).Return(&automation.Report{
		RulesMatched: 1,
		Sent:         2,
		EmailsSent:   1,
		Skipped:      1,
		Results: []automation.DeliveryResult{
			{RuleID: "rule-1", Channel: models.ChannelEmail, Status: automation.OutcomeSent},
			{RuleID: "rule-1", Channel: models.ChannelPush, Status: automation.OutcomeSkipped},
			{RuleID: "rule-1", Channel: models.ChannelSMS, Status: automation.OutcomeSent},
		},
	}, nil)

	h := newTestHandler(t, engine)
	out, err := h.Execute(context.Background(), &Input{
		SiteID:         "site-1",
		Trigger:        "selection_expiring",
		RecipientEmail: "dana@example.com",
		RecipientPhone: "+16502530000",
		Variables:      map[string]string{"recipient_name": "Dana"},
		DaysUntil:      &days,
	})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, 1, out.RulesMatched)
	assert.Equal(t, 1, out.EmailsSent)
	assert.Equal(t, 1, out.Skipped)
	assert.Len(t, out.Results, 3)
	engine.AssertExpectations(t)
}

func TestHandler_Execute_FailedDeliveryIsNotSuccess(t *testing.T) {
	engine := new(MockEngine)
	engine.On("TriggerEvent", mock.Anything, mock.Anything).Return(&automation.Report{
		RulesMatched: 1,
		Failed:       1,
		Results:      []automation.DeliveryResult{{Channel: models.ChannelEmail, Status: automation.OutcomeFailed}},
	}, nil)

	out, err := newTestHandler(t, engine).Execute(context.Background(), &Input{SiteID: "site-1", Trigger: "order_placed"})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, 1, out.Failed)
}

func TestHandler_Execute_PropagatesEngineError(t *testing.T) {
	engine := new(MockEngine)
	engine.On("TriggerEvent", mock.Anything, mock.Anything).
		Return(nil, errors.NewQueryExecutionFailedError("list automation rules", context.DeadlineExceeded))

	_, err := newTestHandler(t, engine).Execute(context.Background(), &Input{SiteID: "site-1", Trigger: "order_placed"})
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err))
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
		{name: "minimal", variables: `{"siteId":"site-1","trigger":"order_shipped"}`},
		{name: "full", variables: `{"siteId":"site-1","trigger":"selection_expiring","recipientEmail":"a@b.co","daysUntil":2,"variables":{"order_id":"ORD-1"}}`},
		{name: "null days", variables: `{"siteId":"site-1","trigger":"order_shipped","daysUntil":null}`},
		{name: "missing site", variables: `{"trigger":"order_shipped"}`, wantErr: true},
		{name: "unknown trigger", variables: `{"siteId":"site-1","trigger":"birthday"}`, wantErr: true},
		{name: "non string variable", variables: `{"siteId":"site-1","trigger":"order_shipped","variables":{"gift_quantity":2}}`, wantErr: true},
		{name: "fractional days", variables: `{"siteId":"site-1","trigger":"selection_expiring","daysUntil":1.5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input Input
			err := camunda.ParseJob(createMockJob(tt.variables), schemas, TaskType, &input)
			if tt.wantErr {
				assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "site-1", input.SiteID)
		})
	}
}

// ==========================
// Config
// ==========================

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{Workers: map[string]config.WorkerConfig{
		ConfigKey: {Enabled: false, MaxJobsActive: 20, Timeout: 5000},
	}}

	cfg := FromAppConfig(appCfg)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 20, cfg.MaxJobsActive)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	assert.Equal(t, DefaultConfig(), FromAppConfig(nil))
}

func TestNewHandler_InvalidConfig(t *testing.T) {
	_, err := NewHandler(&Config{MaxJobsActive: 1}, new(MockEngine), logger.NewNoOpLogger())
	assert.Error(t, err)
}
