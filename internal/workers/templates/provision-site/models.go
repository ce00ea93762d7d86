package provisionsite

import "wecelebrate-notifier/internal/models"

type Input struct {
	SiteID            string   `json:"siteId"`
	GlobalTemplateIDs []string `json:"globalTemplateIds,omitempty"`
	All               bool     `json:"all,omitempty"`
}

type CreatedTemplate struct {
	ID               string              `json:"id"`
	GlobalTemplateID string              `json:"globalTemplateId"`
	Type             models.TemplateType `json:"type"`
}

// Output lists global template ids by outcome. Missing ids name global
// templates that do not exist.
type Output struct {
	SiteID         string            `json:"siteId"`
	Created        []CreatedTemplate `json:"created"`
	AlreadyPresent []string          `json:"alreadyPresent"`
	Missing        []string          `json:"missing"`
}

const InputSchema = `{
	"type": "object",
	"required": ["siteId"],
	"properties": {
		"siteId": {"type": "string", "minLength": 1},
		"globalTemplateIds": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"all": {"type": "boolean"}
	},
	"anyOf": [
		{"required": ["globalTemplateIds"]},
		{"properties": {"all": {"const": true}}, "required": ["all"]}
	]
}`
