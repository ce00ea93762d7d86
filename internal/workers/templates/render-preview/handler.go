package renderpreview

import (
	"context"
	"fmt"
	"time"

	"wecelebrate-notifier/internal/automation"
	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/common/metrics"
	"wecelebrate-notifier/internal/common/observability"
	"wecelebrate-notifier/internal/common/validation"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/templating"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "template.render-preview"

var schemas = validation.NewValidator().MustRegister(TaskType, InputSchema)

type TemplateSource interface {
	GetSiteTemplate(ctx context.Context, id string) (*models.SiteTemplate, error)
	GetGlobalTemplate(ctx context.Context, id string) (*models.GlobalTemplate, error)
}

type Handler struct {
	config       *Config
	templates    TemplateSource
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler accepts a nil obs.
func NewHandler(cfg *Config, templates TemplateSource, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		templates:    templates,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.ParseJob(job, schemas, TaskType, &input); err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{}
	var content templating.Content

	switch {
	case input.SiteTemplateID != "":
		st, err := h.templates.GetSiteTemplate(ctx, input.SiteTemplateID)
		if err != nil {
			return nil, err
		}
		content = automation.ContentOf(st)
		out.TemplateID, out.TemplateType, out.Source = st.ID, st.Type, SourceSite
	case input.GlobalTemplateID != "":
		gt, err := h.templates.GetGlobalTemplate(ctx, input.GlobalTemplateID)
		if err != nil {
			return nil, err
		}
		content = globalContent(gt)
		out.TemplateID, out.TemplateType, out.Source = gt.ID, gt.Type, SourceGlobal
	default:
		return nil, errors.NewValidationFailedError("siteTemplateId or globalTemplateId is required")
	}

	vars := make(map[string]string, len(input.Variables))
	for k, v := range input.Variables {
		vars[k] = v
	}
	if input.UseExamples {
		for k, v := range templating.ExampleValues(out.TemplateType) {
			if _, ok := vars[k]; !ok {
				vars[k] = v
			}
		}
	}

	start := time.Now()
	out.Rendered = templating.RenderContent(content, vars)
	metrics.TemplateRenderDuration.WithLabelValues(string(out.TemplateType)).Observe(time.Since(start).Seconds())
	for _, ch := range channelsOf(content) {
		h.obs.RecordRender(ctx, string(out.TemplateType), string(ch))
	}

	out.UsedVariables = content.Variables()
	out.DeclaredVariables = templating.VariablesForType(out.TemplateType)
	out.MissingVariables = []string{}
	for _, k := range out.UsedVariables {
		if _, ok := vars[k]; !ok {
			out.MissingVariables = append(out.MissingVariables, k)
		}
	}

	h.logger.Debug("Rendered template preview", map[string]interface{}{
		"templateId": out.TemplateID,
		"source":     out.Source,
		"missing":    len(out.MissingVariables),
	})
	return out, nil
}

func globalContent(gt *models.GlobalTemplate) templating.Content {
	return templating.Content{
		Subject:   gt.DefaultSubject,
		HTML:      gt.DefaultHTMLContent,
		Text:      gt.DefaultTextContent,
		PushTitle: gt.DefaultPushTitle,
		PushBody:  gt.DefaultPushBody,
		SMS:       gt.DefaultSMSContent,
	}
}

// channelsOf lists the channels c carries content for.
func channelsOf(c templating.Content) []models.Channel {
	chs := []models.Channel{models.ChannelEmail}
	if c.PushTitle != "" || c.PushBody != "" {
		chs = append(chs, models.ChannelPush)
	}
	if c.SMS != "" {
		chs = append(chs, models.ChannelSMS)
	}
	return chs
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
