package triggerevent

import "wecelebrate-notifier/internal/automation"

type Input struct {
	SiteID         string            `json:"siteId"`
	Trigger        string            `json:"trigger"`
	RecipientEmail string            `json:"recipientEmail,omitempty"`
	RecipientPhone string            `json:"recipientPhone,omitempty"`
	PushEndpoint   string            `json:"pushEndpoint,omitempty"`
	Variables      map[string]string `json:"variables,omitempty"`
	DaysUntil      *int              `json:"daysUntil,omitempty"`
}

type Output struct {
	Success      bool                        `json:"success"`
	RulesMatched int                         `json:"rulesMatched"`
	EmailsSent   int                         `json:"emailsSent"`
	Sent         int                         `json:"sent"`
	Failed       int                         `json:"failed"`
	Skipped      int                         `json:"skipped"`
	Results      []automation.DeliveryResult `json:"results"`
}

const InputSchema = `{
	"type": "object",
	"required": ["siteId", "trigger"],
	"properties": {
		"siteId": {"type": "string", "minLength": 1},
		"trigger": {
			"type": "string",
			"enum": ["employee_added", "gift_selected", "order_placed", "order_shipped",
				"order_delivered", "selection_expiring", "anniversary_approaching"]
		},
		"recipientEmail": {"type": "string"},
		"recipientPhone": {"type": "string"},
		"pushEndpoint": {"type": "string"},
		"variables": {"type": "object", "additionalProperties": {"type": "string"}},
		"daysUntil": {"type": ["integer", "null"]}
	}
}`
