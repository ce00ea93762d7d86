package scheduledtriggers

import (
	"context"
	"fmt"
	"time"

	"wecelebrate-notifier/internal/automation"
	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/common/metrics"
	"wecelebrate-notifier/internal/common/validation"
	"wecelebrate-notifier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "email-automation.scheduled-triggers"

var schemas = validation.NewValidator().MustRegister(TaskType, InputSchema)

type Engine interface {
	ProcessScheduled(ctx context.Context, siteID string, trigger models.TriggerEvent, recipients []automation.ScheduledRecipient) (*automation.ScheduledReport, error)
}

type Handler struct {
	config       *Config
	engine       Engine
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(cfg *Config, engine Engine, log logger.Logger) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		engine:       engine,
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

	h.logger.Info("Processing scheduled trigger batch", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

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
	if len(input.Recipients) > h.config.MaxBatchSize {
		return nil, errors.NewValidationFailedError(fmt.Sprintf(
			"batch of %d recipients exceeds the limit of %d", len(input.Recipients), h.config.MaxBatchSize))
	}

	report, err := h.engine.ProcessScheduled(ctx, input.SiteID, models.TriggerEvent(input.Trigger), input.Recipients)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Scheduled trigger batch processed", map[string]interface{}{
		"siteId":    report.SiteID,
		"trigger":   report.Trigger,
		"processed": report.Processed,
		"sent":      report.Sent,
		"failed":    report.Failed,
	})

	return &Output{
		Trigger:   string(report.Trigger),
		SiteID:    report.SiteID,
		Processed: report.Processed,
		Sent:      report.Sent,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
		Errors:    report.Errors,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
