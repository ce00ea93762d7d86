package managetemplates

import (
	"context"
	"fmt"
	"time"

	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/common/metrics"
	"wecelebrate-notifier/internal/common/validation"
	"wecelebrate-notifier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "template.manage"

var schemas = validation.NewValidator().MustRegister(TaskType, InputSchema)

// Catalog is implemented by catalog.Service.
type Catalog interface {
	GetSiteTemplate(ctx context.Context, id string) (*models.SiteTemplate, error)
	GetSiteTemplatesBySite(ctx context.Context, siteID string) ([]models.SiteTemplate, error)
	GetSiteTemplateByType(ctx context.Context, siteID string, t models.TemplateType) (*models.SiteTemplate, error)
	UpdateSiteTemplate(ctx context.Context, id string, update models.SiteTemplateUpdate) (*models.SiteTemplate, error)
	ResetSiteTemplateToDefault(ctx context.Context, id string) (*models.SiteTemplate, error)
	DeleteSiteTemplate(ctx context.Context, id string) error

	GetGlobalTemplate(ctx context.Context, id string) (*models.GlobalTemplate, error)
	ListGlobalTemplates(ctx context.Context) ([]models.GlobalTemplate, error)
	UpdateGlobalTemplate(ctx context.Context, id string, u models.GlobalTemplateUpdate) (*models.GlobalTemplate, error)
	DeleteGlobalTemplate(ctx context.Context, id string) error
	SeedGlobalTemplates(ctx context.Context) (int, error)
}

type Handler struct {
	config       *Config
	catalog      Catalog
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(cfg *Config, catalog Catalog, log logger.Logger) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		catalog:      catalog,
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

	h.logger.Info("Managing template", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"action":     input.Action,
		"templateId": input.TemplateID,
	})

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
	out := &Output{Action: input.Action}
	var err error

	switch input.Action {
	case ActionGetSite:
		out.SiteTemplate, err = h.catalog.GetSiteTemplate(ctx, input.TemplateID)
	case ActionListSite:
		out.SiteTemplates, err = h.catalog.GetSiteTemplatesBySite(ctx, input.SiteID)
	case ActionGetByType:
		if !input.TemplateType.Valid() {
			return nil, errors.NewValidationFailedError(fmt.Sprintf("unknown template type %q", input.TemplateType))
		}
		out.SiteTemplate, err = h.catalog.GetSiteTemplateByType(ctx, input.SiteID, input.TemplateType)
	case ActionUpdateSite:
		if input.SiteUpdate == nil {
			return nil, errors.NewValidationFailedError("siteUpdate is required for update-site")
		}
		out.SiteTemplate, err = h.catalog.UpdateSiteTemplate(ctx, input.TemplateID, *input.SiteUpdate)
	case ActionResetSite:
		out.SiteTemplate, err = h.catalog.ResetSiteTemplateToDefault(ctx, input.TemplateID)
	case ActionDeleteSite:
		err = h.catalog.DeleteSiteTemplate(ctx, input.TemplateID)
		out.Deleted = err == nil
	case ActionGetGlobal:
		out.GlobalTemplate, err = h.catalog.GetGlobalTemplate(ctx, input.TemplateID)
	case ActionListGlobal:
		out.GlobalTemplates, err = h.catalog.ListGlobalTemplates(ctx)
	case ActionUpdateGlobal:
		if input.GlobalUpdate == nil {
			return nil, errors.NewValidationFailedError("globalUpdate is required for update-global")
		}
		out.GlobalTemplate, err = h.catalog.UpdateGlobalTemplate(ctx, input.TemplateID, *input.GlobalUpdate)
	case ActionDeleteGlobal:
		err = h.catalog.DeleteGlobalTemplate(ctx, input.TemplateID)
		out.Deleted = err == nil
	case ActionSeedGlobal:
		out.Seeded, err = h.catalog.SeedGlobalTemplates(ctx)
	default:
		return nil, errors.NewValidationFailedError(fmt.Sprintf("unknown action %q", input.Action))
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
