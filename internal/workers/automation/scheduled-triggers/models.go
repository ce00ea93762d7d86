package scheduledtriggers

import "wecelebrate-notifier/internal/automation"

type Input struct {
	Trigger    string                          `json:"trigger"`
	SiteID     string                          `json:"siteId"`
	Recipients []automation.ScheduledRecipient `json:"recipients"`
}

type Output struct {
	Trigger   string   `json:"trigger"`
	SiteID    string   `json:"siteId"`
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

const InputSchema = `{
	"type": "object",
	"required": ["trigger", "siteId", "recipients"],
	"properties": {
		"trigger": {"type": "string", "enum": ["selection_expiring", "anniversary_approaching"]},
		"siteId": {"type": "string", "minLength": 1},
		"recipients": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["email", "daysUntil"],
				"properties": {
					"email": {"type": "string"},
					"name": {"type": "string"},
					"phone": {"type": "string"},
					"pushEndpoint": {"type": "string"},
					"daysUntil": {"type": "integer"},
					"variables": {"type": "object", "additionalProperties": {"type": "string"}}
				}
			}
		}
	}
}`
