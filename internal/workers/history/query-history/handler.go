package queryhistory

import (
	"context"
	"fmt"
	"time"

	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/common/metrics"
	"wecelebrate-notifier/internal/common/validation"
	"wecelebrate-notifier/internal/history"
	"wecelebrate-notifier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "email-history.query"

var schemas = validation.NewValidator().MustRegister(TaskType, InputSchema)

// HistoryReader is implemented by history.Recorder.
type HistoryReader interface {
	ListHistory(ctx context.Context, siteID string, limit int) (*models.HistoryPage, error)
	SearchHistory(ctx context.Context, siteID string, q history.SearchQuery) (*models.HistoryPage, error)
}

type Handler struct {
	config       *Config
	history      HistoryReader
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(cfg *Config, reader HistoryReader, log logger.Logger) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		history:      reader,
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

// Execute reads from the store unless a query narrows the result, in which
// case the search index answers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var (
		page   *models.HistoryPage
		source string
		err    error
	)
	if input.Query.empty() {
		page, err = h.history.ListHistory(ctx, input.SiteID, input.Limit)
		source = SourceStore
	} else {
		page, err = h.history.SearchHistory(ctx, input.SiteID, history.SearchQuery{
			Text:    input.Query.Text,
			Status:  models.DeliveryStatus(input.Query.Status),
			Trigger: models.TriggerEvent(input.Query.Trigger),
			Size:    input.Limit,
		})
		source = SourceSearch
	}
	if err != nil {
		return nil, err
	}

	rows := page.History
	if rows == nil {
		rows = []models.EmailHistory{}
	}
	return &Output{History: rows, Total: page.Total, Showing: page.Showing, Source: source}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
