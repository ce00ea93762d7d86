package managerules

import "wecelebrate-notifier/internal/models"

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionToggle = "toggle"
	ActionDelete = "delete"
	ActionGet    = "get"
	ActionList   = "list"
)

type Input struct {
	Action  string                       `json:"action"`
	SiteID  string                       `json:"siteId,omitempty"`
	RuleID  string                       `json:"ruleId,omitempty"`
	Rule    *models.AutomationRule       `json:"rule,omitempty"`
	Update  *models.AutomationRuleUpdate `json:"update,omitempty"`
	Enabled *bool                        `json:"enabled,omitempty"`
	Actor   string                       `json:"actor,omitempty"`
}

type Output struct {
	Action  string                  `json:"action"`
	Rule    *models.AutomationRule  `json:"rule,omitempty"`
	Rules   []models.AutomationRule `json:"rules,omitempty"`
	Deleted bool                    `json:"deleted,omitempty"`
}

const InputSchema = `{
	"type": "object",
	"required": ["action"],
	"properties": {
		"action": {"type": "string", "enum": ["create", "update", "toggle", "delete", "get", "list"]},
		"siteId": {"type": "string"},
		"ruleId": {"type": "string"},
		"rule": {"type": "object"},
		"update": {"type": "object"},
		"enabled": {"type": "boolean"},
		"actor": {"type": "string"}
	},
	"allOf": [
		{"if": {"properties": {"action": {"const": "create"}}}, "then": {"required": ["rule"]}},
		{"if": {"properties": {"action": {"const": "update"}}}, "then": {"required": ["ruleId", "update"]}},
		{"if": {"properties": {"action": {"const": "toggle"}}}, "then": {"required": ["ruleId", "enabled"]}},
		{"if": {"properties": {"action": {"enum": ["delete", "get"]}}}, "then": {"required": ["ruleId"]}},
		{"if": {"properties": {"action": {"const": "list"}}}, "then": {"required": ["siteId"]}}
	]
}`
