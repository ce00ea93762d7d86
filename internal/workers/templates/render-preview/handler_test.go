package renderpreview

import (
	"context"
	"testing"

	"wecelebrate-notifier/internal/catalog"
	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage/memory"
	"wecelebrate-notifier/internal/templating"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTemplates struct {
	site   *models.SiteTemplate
	global *models.GlobalTemplate
}

func (s *stubTemplates) GetSiteTemplate(_ context.Context, id string) (*models.SiteTemplate, error) {
	if s.site == nil || s.site.ID != id {
		return nil, errors.NewSiteTemplateNotFoundError(id)
	}
	return s.site, nil
}

func (s *stubTemplates) GetGlobalTemplate(_ context.Context, id string) (*models.GlobalTemplate, error) {
	if s.global == nil || s.global.ID != id {
		return nil, errors.NewGlobalTemplateNotFoundError(id)
	}
	return s.global, nil
}

func newTestHandler(t *testing.T, src TemplateSource) *Handler {
	t.Helper()
	h, err := NewHandler(DefaultConfig(), src, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

// ==========================
// Site template previews
// ==========================

func TestHandler_Execute_SiteTemplate(t *testing.T) {
	src := &stubTemplates{site: &models.SiteTemplate{
		ID:          "site-template-1",
		Type:        models.TypeGiftReminder,
		Subject:     "Hi {{recipient_name}}",
		HTMLContent: "<p>{{days_remaining}} days left at {{site_name}}</p>",
		TextContent: "{{days_remaining}} days left",
		SMSContent:  "Reminder: {{site_url}}",
	}}

	tests := []struct {
		name        string
		input       *Input
		wantSubject string
		wantSMS     string
		wantMissing []string
	}{
		{
			name:        "caller variables only",
			input:       &Input{SiteTemplateID: "site-template-1", Variables: map[string]string{"recipient_name": "Dana"}},
			wantSubject: "Hi Dana",
			wantSMS:     "Reminder: {{site_url}}",
			wantMissing: []string{"days_remaining", "site_name", "site_url"},
		},
		{
			name:        "examples fill the gaps",
			input:       &Input{SiteTemplateID: "site-template-1", Variables: map[string]string{"recipient_name": "Dana"}, UseExamples: true},
			wantSubject: "Hi Dana",
			wantSMS:     "Reminder: https://techcorp-gifts.jala.com",
			wantMissing: []string{},
		},
		{
			name:        "examples only",
			input:       &Input{SiteTemplateID: "site-template-1", UseExamples: true},
			wantSubject: "Hi John Doe",
			wantSMS:     "Reminder: https://techcorp-gifts.jala.com",
			wantMissing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newTestHandler(t, src).Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, SourceSite, out.Source)
			assert.Equal(t, models.TypeGiftReminder, out.TemplateType)
			assert.Equal(t, tt.wantSubject, out.Rendered.Subject)
			assert.Equal(t, tt.wantSMS, out.Rendered.SMS)
			assert.Equal(t, tt.wantMissing, out.MissingVariables)
			assert.Equal(t, []string{"recipient_name", "days_remaining", "site_name", "site_url"}, out.UsedVariables)
			assert.Len(t, out.DeclaredVariables, 8)
		})
	}
}

func TestHandler_Execute_CallerVariablesWinOverExamples(t *testing.T) {
	src := &stubTemplates{site: &models.SiteTemplate{
		ID: "site-template-1", Type: models.TypeThankYou, Subject: "Thanks from {{company_name}}",
	}}
	out, err := newTestHandler(t, src).Execute(context.Background(), &Input{
		SiteTemplateID: "site-template-1",
		Variables:      map[string]string{"company_name": "Acme"},
		UseExamples:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Thanks from Acme", out.Rendered.Subject)
}

// ==========================
// Global template previews
// ==========================

func TestHandler_Execute_GlobalTemplate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cat := catalog.NewService(store, store, logger.NewNoOpLogger())
	_, err := cat.SeedGlobalTemplates(ctx)
	require.NoError(t, err)

	out, err := newTestHandler(t, cat).Execute(ctx, &Input{
		GlobalTemplateID: catalog.GlobalTemplateID(models.TypeShippingNotification),
		UseExamples:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, SourceGlobal, out.Source)
	assert.Equal(t, "Your gift has shipped! - Order #ORD-2026-001234", out.Rendered.Subject)
	assert.Equal(t, "Gift Shipped", out.Rendered.PushTitle)
	assert.NotContains(t, out.Rendered.HTML, "{{")
	assert.Empty(t, out.MissingVariables)
}

func TestHandler_Execute_NotFound(t *testing.T) {
	h := newTestHandler(t, &stubTemplates{})

	_, err := h.Execute(context.Background(), &Input{SiteTemplateID: "nope"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeSiteTemplateNotFound))

	_, err = h.Execute(context.Background(), &Input{GlobalTemplateID: "nope"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeGlobalTemplateNotFound))

	_, err = h.Execute(context.Background(), &Input{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestChannelsOf(t *testing.T) {
	assert.Equal(t, []models.Channel{models.ChannelEmail}, channelsOf(templating.Content{Subject: "s"}))
	assert.Equal(t, []models.Channel{models.ChannelEmail, models.ChannelPush, models.ChannelSMS},
		channelsOf(templating.Content{PushBody: "body", SMS: "sms"}))
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
		{name: "site", variables: `{"siteTemplateId":"st-1"}`},
		{name: "global with examples", variables: `{"globalTemplateId":"global-invite","useExamples":true}`},
		{name: "neither", variables: `{"useExamples":true}`, wantErr: true},
		{name: "both", variables: `{"siteTemplateId":"st-1","globalTemplateId":"global-invite"}`, wantErr: true},
		{name: "non string variable", variables: `{"siteTemplateId":"st-1","variables":{"n":1}}`, wantErr: true},
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
