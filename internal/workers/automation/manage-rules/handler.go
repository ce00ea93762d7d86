package managerules

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

const TaskType = "email-automation.manage-rules"

var schemas = validation.NewValidator().MustRegister(TaskType, InputSchema)

// RuleService is implemented by automation.RuleService.
type RuleService interface {
	CreateRule(ctx context.Context, in models.AutomationRule, createdBy string) (*models.AutomationRule, error)
	UpdateRule(ctx context.Context, id string, u models.AutomationRuleUpdate, updatedBy string) (*models.AutomationRule, error)
	ToggleRule(ctx context.Context, id string, enabled bool, updatedBy string) (*models.AutomationRule, error)
	DeleteRule(ctx context.Context, id string) error
	GetRule(ctx context.Context, id string) (*models.AutomationRule, error)
	ListRules(ctx context.Context, siteID string) ([]models.AutomationRule, error)
}

type Handler struct {
	config       *Config
	rules        RuleService
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(cfg *Config, rules RuleService, log logger.Logger) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		rules:        rules,
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

	h.logger.Info("Managing automation rule", map[string]interface{}{
		"jobKey": job.GetKey(),
		"action": input.Action,
		"ruleId": input.RuleID,
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
	case ActionCreate:
		if input.Rule == nil {
			return nil, errors.NewValidationFailedError("rule is required for create")
		}
		rule := *input.Rule
		if rule.SiteID == "" {
			rule.SiteID = input.SiteID
		}
		out.Rule, err = h.rules.CreateRule(ctx, rule, input.Actor)
	case ActionUpdate:
		if input.Update == nil {
			return nil, errors.NewValidationFailedError("update is required for update")
		}
		out.Rule, err = h.rules.UpdateRule(ctx, input.RuleID, *input.Update, input.Actor)
	case ActionToggle:
		if input.Enabled == nil {
			return nil, errors.NewValidationFailedError("enabled is required for toggle")
		}
		out.Rule, err = h.rules.ToggleRule(ctx, input.RuleID, *input.Enabled, input.Actor)
	case ActionDelete:
		err = h.rules.DeleteRule(ctx, input.RuleID)
		out.Deleted = err == nil
	case ActionGet:
		out.Rule, err = h.rules.GetRule(ctx, input.RuleID)
	case ActionList:
		out.Rules, err = h.rules.ListRules(ctx, input.SiteID)
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
