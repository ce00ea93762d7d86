package main

import (
	"encoding/json"

	"wecelebrate-notifier/internal/common/errors"
	managerules "wecelebrate-notifier/internal/workers/automation/manage-rules"
	scheduledtriggers "wecelebrate-notifier/internal/workers/automation/scheduled-triggers"
	triggerevent "wecelebrate-notifier/internal/workers/automation/trigger-event"
	queryhistory "wecelebrate-notifier/internal/workers/history/query-history"
	managetemplates "wecelebrate-notifier/internal/workers/templates/manage-templates"
	provisionsite "wecelebrate-notifier/internal/workers/templates/provision-site"
	renderpreview "wecelebrate-notifier/internal/workers/templates/render-preview"
	"wecelebrate-notifier/pkg/registry"
)

const activityVersion = "1.0.0"

func codes(cs ...errors.ErrorCode) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// builtinActivities describes every worker compiled into cmd/notifier.
func builtinActivities() []registry.Activity {
	triggerCfg := triggerevent.DefaultConfig()
	scheduledCfg := scheduledtriggers.DefaultConfig()
	rulesCfg := managerules.DefaultConfig()
	previewCfg := renderpreview.DefaultConfig()
	provisionCfg := provisionsite.DefaultConfig()
	templatesCfg := managetemplates.DefaultConfig()
	historyCfg := queryhistory.DefaultConfig()

	return []registry.Activity{
		{
			ID:          triggerevent.ConfigKey,
			DisplayName: "Trigger Automation Event",
			Description: "Fires every enabled automation rule of a site that matches an event and delivers the rendered template.",
			Category:    "automation",
			TaskType:    triggerevent.TaskType,
			InputSchema: json.RawMessage(triggerevent.InputSchema),
			ErrorCodes: codes(errors.ErrCodeValidationFailed, errors.ErrCodeQueryExecutionFailed,
				errors.ErrCodeDatabaseConnectionFailed),
			Timeout:       triggerCfg.Timeout.String(),
			MaxJobsActive: triggerCfg.MaxJobsActive,
			Tags:          []string{"email", "push", "sms"},
		},
		{
			ID:            scheduledtriggers.ConfigKey,
			DisplayName:   "Process Scheduled Triggers",
			Description:   "Runs the time-based reminder and expiration rules for the supplied recipients.",
			Category:      "automation",
			TaskType:      scheduledtriggers.TaskType,
			InputSchema:   json.RawMessage(scheduledtriggers.InputSchema),
			ErrorCodes:    codes(errors.ErrCodeValidationFailed, errors.ErrCodeQueryExecutionFailed),
			Timeout:       scheduledCfg.Timeout.String(),
			MaxJobsActive: scheduledCfg.MaxJobsActive,
			Tags:          []string{"scheduler", "reminders"},
		},
		{
			ID:            managerules.ConfigKey,
			DisplayName:   "Manage Automation Rules",
			Description:   "Creates, updates, toggles, deletes and lists a site's automation rules.",
			Category:      "automation",
			TaskType:      managerules.TaskType,
			InputSchema:   json.RawMessage(managerules.InputSchema),
			ErrorCodes:    codes(errors.ErrCodeValidationFailed, errors.ErrCodeRuleNotFound, errors.ErrCodeQueryExecutionFailed),
			Timeout:       rulesCfg.Timeout.String(),
			MaxJobsActive: rulesCfg.MaxJobsActive,
			Tags:          []string{"admin"},
		},
		{
			ID:          renderpreview.ConfigKey,
			DisplayName: "Render Template Preview",
			Description: "Renders a site or global template with caller variables or example values and reports missing placeholders.",
			Category:    "templates",
			TaskType:    renderpreview.TaskType,
			InputSchema: json.RawMessage(renderpreview.InputSchema),
			ErrorCodes: codes(errors.ErrCodeValidationFailed, errors.ErrCodeSiteTemplateNotFound,
				errors.ErrCodeGlobalTemplateNotFound),
			Timeout:       previewCfg.Timeout.String(),
			MaxJobsActive: previewCfg.MaxJobsActive,
			Tags:          []string{"preview"},
		},
		{
			ID:            provisionsite.ConfigKey,
			DisplayName:   "Provision Site Templates",
			Description:   "Copies global templates into a site, reporting templates already present and unknown ids.",
			Category:      "templates",
			TaskType:      provisionsite.TaskType,
			InputSchema:   json.RawMessage(provisionsite.InputSchema),
			ErrorCodes:    codes(errors.ErrCodeValidationFailed, errors.ErrCodeQueryExecutionFailed),
			Timeout:       provisionCfg.Timeout.String(),
			MaxJobsActive: provisionCfg.MaxJobsActive,
			Tags:          []string{"onboarding"},
		},
		{
			ID:          managetemplates.ConfigKey,
			DisplayName: "Manage Templates",
			Description: "Reads, edits, resets and deletes site templates and maintains the global template catalog.",
			Category:    "templates",
			TaskType:    managetemplates.TaskType,
			InputSchema: json.RawMessage(managetemplates.InputSchema),
			ErrorCodes: codes(errors.ErrCodeValidationFailed, errors.ErrCodeSiteTemplateNotFound,
				errors.ErrCodeGlobalTemplateNotFound, errors.ErrCodeSystemTemplateImmutable),
			Timeout:       templatesCfg.Timeout.String(),
			MaxJobsActive: templatesCfg.MaxJobsActive,
			Tags:          []string{"admin"},
		},
		{
			ID:            queryhistory.ConfigKey,
			DisplayName:   "Query Email History",
			Description:   "Lists a site's email history newest first or searches it through the history index.",
			Category:      "history",
			TaskType:      queryhistory.TaskType,
			InputSchema:   json.RawMessage(queryhistory.InputSchema),
			ErrorCodes:    codes(errors.ErrCodeValidationFailed, errors.ErrCodeSearchQueryFailed, errors.ErrCodeQueryExecutionFailed),
			Timeout:       historyCfg.Timeout.String(),
			MaxJobsActive: historyCfg.MaxJobsActive,
			Tags:          []string{"reporting"},
		},
	}
}
