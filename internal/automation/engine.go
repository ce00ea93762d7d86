package automation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/common/metrics"
	"wecelebrate-notifier/internal/common/observability"
	"wecelebrate-notifier/internal/common/validation"
	"wecelebrate-notifier/internal/delivery"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/templating"

	"go.opentelemetry.io/otel/attribute"
)

// Outcome of one channel delivery.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

const (
	ReasonTemplateDisabled     = "template disabled"
	ReasonTemplateNotFound     = "template not found"
	ReasonChannelDisabled      = "channel disabled"
	ReasonNoRecipient          = "no recipient address"
	ReasonInvalidAddress       = "invalid email address"
	ReasonChannelNotConfigured = "channel not configured"
)

// channelOrder is the order channels are attempted for a fired rule.
var channelOrder = []models.Channel{models.ChannelEmail, models.ChannelPush, models.ChannelSMS}

type RuleLister interface {
	ListRules(ctx context.Context, siteID string) ([]models.AutomationRule, error)
}

type TemplateResolver interface {
	GetSiteTemplate(ctx context.Context, id string) (*models.SiteTemplate, error)
}

type Sender interface {
	Configured(ch models.Channel) bool
	Send(ctx context.Context, msg delivery.Message) (*delivery.Result, error)
}

type HistoryRecorder interface {
	Record(ctx context.Context, h *models.EmailHistory) error
}

// Recipient holds one address per channel. Empty addresses skip the channel.
type Recipient struct {
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PushEndpoint string `json:"pushEndpoint,omitempty"`
}

func (r Recipient) address(ch models.Channel) string {
	switch ch {
	case models.ChannelEmail:
		return r.Email
	case models.ChannelPush:
		return r.PushEndpoint
	case models.ChannelSMS:
		return r.Phone
	}
	return ""
}

// Event is a trigger occurrence for one recipient on one site.
type Event struct {
	SiteID    string
	Trigger   models.TriggerEvent
	Recipient Recipient
	Variables map[string]string
	DaysUntil *int
}

type DeliveryResult struct {
	RuleID     string         `json:"ruleId"`
	TemplateID string         `json:"templateId"`
	Channel    models.Channel `json:"channel,omitempty"`
	Status     Outcome        `json:"status"`
	MessageID  string         `json:"messageId,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Report summarises a trigger event across all matched rules.
type Report struct {
	RulesMatched int              `json:"rulesMatched"`
	Sent         int              `json:"sent"`
	EmailsSent   int              `json:"emailsSent"`
	Failed       int              `json:"failed"`
	Skipped      int              `json:"skipped"`
	Results      []DeliveryResult `json:"results"`
}

func (r *Report) add(res DeliveryResult) {
	switch res.Status {
	case OutcomeSent:
		r.Sent++
		if res.Channel == models.ChannelEmail {
			r.EmailsSent++
		}
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	}
	r.Results = append(r.Results, res)
}

type Engine struct {
	rules     RuleLister
	templates TemplateResolver
	sender    Sender
	history   HistoryRecorder
	obs       *observability.Observability
	logger    logger.Logger
}

type EngineOption func(*Engine)

func WithObservability(o *observability.Observability) EngineOption {
	return func(e *Engine) { e.obs = o }
}

func NewEngine(rules RuleLister, templates TemplateResolver, sender Sender, history HistoryRecorder, log logger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:     rules,
		templates: templates,
		sender:    sender,
		history:   history,
		obs:       &observability.Observability{},
		logger:    log.WithFields(map[string]interface{}{"component": "automation-engine"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TriggerEvent fires every rule of the site that is eligible for the event
// and delivers the rendered template on each enabled channel. Delivery
// problems are reported per channel; only lookup failures return an error.
func (e *Engine) TriggerEvent(ctx context.Context, ev Event) (*Report, error) {
	if ev.SiteID == "" {
		return nil, commonErrors.NewValidationFailedError("siteId is required")
	}
	if !ev.Trigger.Valid() {
		return nil, commonErrors.NewValidationFailedError(fmt.Sprintf("unknown trigger %q", ev.Trigger))
	}

	ctx, span := e.obs.StartSpan(ctx, "automation.trigger-event",
		attribute.String("site_id", ev.SiteID),
		attribute.String("trigger", string(ev.Trigger)),
	)
	defer span.End()

	rules, err := e.rules.ListRules(ctx, ev.SiteID)
	if err != nil {
		if _, ok := commonErrors.AsStandard(err); ok {
			return nil, err
		}
		return nil, commonErrors.NewDatabaseError("list automation rules", err)
	}

	matched := MatchRules(rules, ev.SiteID, ev.Trigger, ev.DaysUntil)
	metrics.AutomationRulesMatched.WithLabelValues(string(ev.Trigger)).Add(float64(len(matched)))

	report := &Report{RulesMatched: len(matched), Results: []DeliveryResult{}}
	for _, rule := range matched {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.fire(ctx, rule, ev, report); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Trigger event processed", map[string]interface{}{
		"siteId":       ev.SiteID,
		"trigger":      ev.Trigger,
		"rulesMatched": report.RulesMatched,
		"sent":         report.Sent,
		"failed":       report.Failed,
		"skipped":      report.Skipped,
	})
	return report, nil
}

func (e *Engine) fire(ctx context.Context, rule models.AutomationRule, ev Event, report *Report) error {
	base := DeliveryResult{RuleID: rule.ID, TemplateID: rule.TemplateID}

	st, err := e.templates.GetSiteTemplate(ctx, rule.TemplateID)
	if err != nil {
		if !commonErrors.IsNotFound(err) {
			return err
		}
		res := base
		res.Status = OutcomeFailed
		res.Reason = ReasonTemplateNotFound
		res.Error = err.Error()
		report.add(res)
		e.logger.Warn("Automation rule references a missing template", map[string]interface{}{
			"ruleId":     rule.ID,
			"templateId": rule.TemplateID,
		})
		return nil
	}

	if !st.Enabled {
		res := base
		res.Status = OutcomeSkipped
		res.Reason = ReasonTemplateDisabled
		report.add(res)
		metrics.NotificationsTotal.WithLabelValues("all", string(OutcomeSkipped)).Inc()
		return nil
	}

	rendered := templating.RenderContent(ContentOf(st), ev.Variables)
	for _, ch := range channelOrder {
		res := e.deliver(ctx, st, ch, rendered, ev)
		res.RuleID = rule.ID
		res.TemplateID = rule.TemplateID
		report.add(res)
		metrics.NotificationsTotal.WithLabelValues(string(ch), string(res.Status)).Inc()

		if ch == models.ChannelEmail && res.Status != OutcomeSkipped {
			e.recordEmail(ctx, rule, st, ev, rendered.Subject, res)
		}
	}
	return nil
}

func (e *Engine) deliver(ctx context.Context, st *models.SiteTemplate, ch models.Channel, rendered templating.Content, ev Event) DeliveryResult {
	res := DeliveryResult{Channel: ch}

	if !st.ChannelEnabled(ch) {
		res.Status = OutcomeSkipped
		res.Reason = ReasonChannelDisabled
		return res
	}
	to := ev.Recipient.address(ch)
	if to == "" {
		res.Status = OutcomeSkipped
		res.Reason = ReasonNoRecipient
		return res
	}
	if ch == models.ChannelEmail && !validation.ValidateEmail(to) {
		res.Status = OutcomeSkipped
		res.Reason = ReasonInvalidAddress
		return res
	}
	if !e.sender.Configured(ch) {
		res.Status = OutcomeSkipped
		res.Reason = ReasonChannelNotConfigured
		return res
	}

	e.obs.RecordRender(ctx, string(st.Type), string(ch))
	start := time.Now()
	sent, err := e.sender.Send(ctx, MessageFor(ch, to, rendered))
	if err != nil {
		e.obs.RecordDelivery(ctx, string(ch), string(OutcomeFailed), time.Since(start))
		res.Status = OutcomeFailed
		res.Error = err.Error()
		e.logger.WithError(err).Warn("Notification delivery failed", map[string]interface{}{
			"siteId":     st.SiteID,
			"templateId": st.ID,
			"channel":    ch,
		})
		return res
	}

	e.obs.RecordDelivery(ctx, string(ch), string(OutcomeSent), time.Since(start))
	res.Status = OutcomeSent
	res.MessageID = sent.MessageID
	return res
}

// recordEmail appends the audit row. The message is already out, so a
// failed append is logged rather than failing the event.
func (e *Engine) recordEmail(ctx context.Context, rule models.AutomationRule, st *models.SiteTemplate, ev Event, subject string, res DeliveryResult) {
	h := &models.EmailHistory{
		SiteID:         ev.SiteID,
		TemplateID:     st.ID,
		RuleID:         rule.ID,
		Trigger:        ev.Trigger,
		RecipientEmail: ev.Recipient.Email,
		Subject:        subject,
		MessageID:      res.MessageID,
		Status:         models.StatusSent,
		Context: models.HistoryContext{
			Variables: ev.Variables,
			DaysUntil: ev.DaysUntil,
		},
	}
	if res.Status == OutcomeFailed {
		h.Status = models.StatusFailed
		h.Error = res.Error
	}

	if err := e.history.Record(ctx, h); err != nil {
		e.logger.WithError(err).Error("Failed to record email history", map[string]interface{}{
			"siteId":  ev.SiteID,
			"ruleId":  rule.ID,
			"channel": models.ChannelEmail,
		})
	}
}

// ContentOf collects the channel payloads of a site template.
func ContentOf(st *models.SiteTemplate) templating.Content {
	return templating.Content{
		Subject:   st.Subject,
		HTML:      st.HTMLContent,
		Text:      st.TextContent,
		PushTitle: st.PushTitle,
		PushBody:  st.PushBody,
		SMS:       st.SMSContent,
	}
}

// MessageFor picks the rendered fields a channel carries.
func MessageFor(ch models.Channel, to string, c templating.Content) delivery.Message {
	msg := delivery.Message{Channel: ch, To: to}
	switch ch {
	case models.ChannelEmail:
		msg.Subject = c.Subject
		msg.HTML = c.HTML
		msg.Text = c.Text
	case models.ChannelPush:
		msg.Subject = c.PushTitle
		msg.Text = c.PushBody
	case models.ChannelSMS:
		msg.Text = c.SMS
	}
	return msg
}

// ==========================
// Scheduled triggers
// ==========================

type ScheduledRecipient struct {
	Email        string            `json:"email"`
	Name         string            `json:"name,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	PushEndpoint string            `json:"pushEndpoint,omitempty"`
	DaysUntil    *int              `json:"daysUntil,omitempty"`
	Variables    map[string]string `json:"variables,omitempty"`
}

type ScheduledReport struct {
	Trigger   models.TriggerEvent `json:"trigger"`
	SiteID    string              `json:"siteId"`
	Processed int                 `json:"processed"`
	Sent      int                 `json:"sent"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
	Errors    []string            `json:"errors"`
}

// ProcessScheduled fires a time-based trigger once per recipient and
// aggregates the outcomes. A recipient whose event errors is counted as
// failed and the batch carries on.
func (e *Engine) ProcessScheduled(ctx context.Context, siteID string, trigger models.TriggerEvent, recipients []ScheduledRecipient) (*ScheduledReport, error) {
	if !trigger.TimeBased() {
		return nil, commonErrors.NewValidationFailedError(fmt.Sprintf("trigger %q is not time based", trigger))
	}

	out := &ScheduledReport{Trigger: trigger, SiteID: siteID, Errors: []string{}}
	for _, r := range recipients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Processed++

		report, err := e.TriggerEvent(ctx, Event{
			SiteID:    siteID,
			Trigger:   trigger,
			Recipient: Recipient{Email: r.Email, Phone: r.Phone, PushEndpoint: r.PushEndpoint},
			Variables: scheduledVariables(r),
			DaysUntil: r.DaysUntil,
		})
		if err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", r.Email, err))
			continue
		}

		out.Sent += report.Sent
		out.Failed += report.Failed
		out.Skipped += report.Skipped
		for _, res := range report.Results {
			if res.Status == OutcomeFailed {
				out.Errors = append(out.Errors, fmt.Sprintf("%s (%s): %s", r.Email, res.Channel, failureText(res)))
			}
		}
	}
	return out, nil
}

// scheduledVariables fills recipient_name, recipient_email and
// days_remaining from the recipient unless the caller already set them.
func scheduledVariables(r ScheduledRecipient) map[string]string {
	vars := make(map[string]string, len(r.Variables)+3)
	for k, v := range r.Variables {
		vars[k] = v
	}
	setDefault := func(k, v string) {
		if _, ok := vars[k]; !ok && v != "" {
			vars[k] = v
		}
	}
	setDefault("recipient_name", r.Name)
	setDefault("recipient_email", r.Email)
	if r.DaysUntil != nil {
		setDefault("days_remaining", strconv.Itoa(*r.DaysUntil))
	}
	return vars
}

func failureText(res DeliveryResult) string {
	if res.Error != "" {
		return res.Error
	}
	return res.Reason
}
