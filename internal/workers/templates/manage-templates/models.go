package managetemplates

import "wecelebrate-notifier/internal/models"

const (
	ActionGetSite      = "get-site"
	ActionListSite     = "list-site"
	ActionGetByType    = "get-by-type"
	ActionUpdateSite   = "update-site"
	ActionResetSite    = "reset-site"
	ActionDeleteSite   = "delete-site"
	ActionGetGlobal    = "get-global"
	ActionListGlobal   = "list-global"
	ActionUpdateGlobal = "update-global"
	ActionDeleteGlobal = "delete-global"
	ActionSeedGlobal   = "seed-global"
)

type Input struct {
	Action       string                       `json:"action"`
	SiteID       string                       `json:"siteId,omitempty"`
	TemplateID   string                       `json:"templateId,omitempty"`
	TemplateType models.TemplateType          `json:"templateType,omitempty"`
	SiteUpdate   *models.SiteTemplateUpdate   `json:"siteUpdate,omitempty"`
	GlobalUpdate *models.GlobalTemplateUpdate `json:"globalUpdate,omitempty"`
}

type Output struct {
	Action          string                  `json:"action"`
	SiteTemplate    *models.SiteTemplate    `json:"siteTemplate,omitempty"`
	SiteTemplates   []models.SiteTemplate   `json:"siteTemplates,omitempty"`
	GlobalTemplate  *models.GlobalTemplate  `json:"globalTemplate,omitempty"`
	GlobalTemplates []models.GlobalTemplate `json:"globalTemplates,omitempty"`
	Deleted         bool                    `json:"deleted,omitempty"`
	Seeded          int                     `json:"seeded,omitempty"`
}

const InputSchema = `{
	"type": "object",
	"required": ["action"],
	"properties": {
		"action": {"type": "string", "enum": [
			"get-site", "list-site", "get-by-type", "update-site", "reset-site", "delete-site",
			"get-global", "list-global", "update-global", "delete-global", "seed-global"
		]},
		"siteId": {"type": "string"},
		"templateId": {"type": "string"},
		"templateType": {"type": "string", "enum": [
			"invite", "order_confirmation", "order_cancellation", "gift_reminder",
			"shipping_notification", "gift_delivered", "password_reset", "account_created",
			"feedback_request", "expiration_warning", "thank_you"
		]},
		"siteUpdate": {"type": "object"},
		"globalUpdate": {"type": "object"}
	},
	"allOf": [
		{"if": {"properties": {"action": {"enum": ["get-site", "reset-site", "delete-site", "get-global", "delete-global"]}}},
		 "then": {"required": ["templateId"]}},
		{"if": {"properties": {"action": {"const": "list-site"}}}, "then": {"required": ["siteId"]}},
		{"if": {"properties": {"action": {"const": "get-by-type"}}}, "then": {"required": ["siteId", "templateType"]}},
		{"if": {"properties": {"action": {"const": "update-site"}}}, "then": {"required": ["templateId", "siteUpdate"]}},
		{"if": {"properties": {"action": {"const": "update-global"}}}, "then": {"required": ["templateId", "globalUpdate"]}}
	]
}`
