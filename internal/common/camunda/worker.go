// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every notifier worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
}

// Worker is an open job subscription for one task type.
type Worker struct {
	taskType  string
	jobWorker worker.JobWorker
	logger    logger.Logger
}

func StartWorker(client zbc.Client, opts WorkerOptions, handler JobHandler, log logger.Logger) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(handler.Handle).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Name(fmt.Sprintf("%s-worker", opts.TaskType)).
		Open()

	log.Info("Worker started", map[string]interface{}{
		"taskType":      opts.TaskType,
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})

	return &Worker{taskType: opts.TaskType, jobWorker: jobWorker, logger: log}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.jobWorker.Close()
	w.jobWorker.AwaitClose()
}

// ParseJob validates the job variables against the named schema and decodes
// them into out. Both failures are non-retryable.
func ParseJob(job entities.Job, v *validation.Validator, schema string, out interface{}) error {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return errors.NewValidationFailedError(fmt.Sprintf("parse job variables: %v", err))
	}
	if err := v.Validate(schema, variables); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(job.GetVariables()), out); err != nil {
		return errors.NewValidationFailedError(fmt.Sprintf("decode job variables: %v", err))
	}
	return nil
}

// CompleteJob completes job with output as its variables. The command is sent
// on errors.CommandContext, so it is not cut short by the Execute deadline.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	ctx, cancel := errors.CommandContext(ctx)
	defer cancel()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}
