package renderpreview

import (
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/templating"
)

type Input struct {
	SiteTemplateID   string            `json:"siteTemplateId,omitempty"`
	GlobalTemplateID string            `json:"globalTemplateId,omitempty"`
	Variables        map[string]string `json:"variables,omitempty"`
	UseExamples      bool              `json:"useExamples,omitempty"`
}

type Output struct {
	TemplateID        string                    `json:"templateId"`
	TemplateType      models.TemplateType       `json:"templateType"`
	Source            string                    `json:"source"`
	Rendered          templating.Content        `json:"rendered"`
	UsedVariables     []string                  `json:"usedVariables"`
	DeclaredVariables []models.TemplateVariable `json:"declaredVariables"`
	MissingVariables  []string                  `json:"missingVariables"`
}

const (
	SourceSite   = "site"
	SourceGlobal = "global"
)

const InputSchema = `{
	"type": "object",
	"properties": {
		"siteTemplateId": {"type": "string", "minLength": 1},
		"globalTemplateId": {"type": "string", "minLength": 1},
		"variables": {"type": "object", "additionalProperties": {"type": "string"}},
		"useExamples": {"type": "boolean"}
	},
	"oneOf": [
		{"required": ["siteTemplateId"]},
		{"required": ["globalTemplateId"]}
	]
}`
