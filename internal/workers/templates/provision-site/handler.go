package provisionsite

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

const TaskType = "template.provision-site"

var schemas = validation.NewValidator().MustRegister(TaskType, InputSchema)

type Catalog interface {
	AddSiteTemplate(ctx context.Context, siteID, globalTemplateID string) (*models.SiteTemplate, error)
	ListGlobalTemplates(ctx context.Context) ([]models.GlobalTemplate, error)
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

	h.logger.Info("Provisioning site templates", map[string]interface{}{
		"jobKey": job.GetKey(),
		"siteId": input.SiteID,
		"all":    input.All,
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

// Execute adds a site template per requested global template. Duplicates and
// unknown ids are reported in the output; only storage failures fail the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ids, err := h.requestedIDs(ctx, input)
	if err != nil {
		return nil, err
	}

	out := &Output{
		SiteID:         input.SiteID,
		Created:        []CreatedTemplate{},
		AlreadyPresent: []string{},
		Missing:        []string{},
	}
	for _, id := range ids {
		st, err := h.catalog.AddSiteTemplate(ctx, input.SiteID, id)
		switch {
		case err == nil:
			out.Created = append(out.Created, CreatedTemplate{ID: st.ID, GlobalTemplateID: id, Type: st.Type})
		case errors.HasCode(err, errors.ErrCodeDuplicateSiteTemplate):
			out.AlreadyPresent = append(out.AlreadyPresent, id)
		case errors.HasCode(err, errors.ErrCodeGlobalTemplateNotFound):
			out.Missing = append(out.Missing, id)
		default:
			return nil, err
		}
	}

	h.logger.Info("Site templates provisioned", map[string]interface{}{
		"siteId":         input.SiteID,
		"created":        len(out.Created),
		"alreadyPresent": len(out.AlreadyPresent),
		"missing":        len(out.Missing),
	})
	return out, nil
}

func (h *Handler) requestedIDs(ctx context.Context, input *Input) ([]string, error) {
	if !input.All {
		return dedupe(input.GlobalTemplateIDs), nil
	}
	globals, err := h.catalog.ListGlobalTemplates(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(globals))
	for _, g := range globals {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
