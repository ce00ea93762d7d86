package queryhistory

import "wecelebrate-notifier/internal/models"

const (
	SourceStore  = "store"
	SourceSearch = "search"
)

type Query struct {
	Text    string `json:"text,omitempty"`
	Status  string `json:"status,omitempty"`
	Trigger string `json:"trigger,omitempty"`
}

func (q *Query) empty() bool {
	return q == nil || (q.Text == "" && q.Status == "" && q.Trigger == "")
}

type Input struct {
	SiteID string `json:"siteId"`
	Limit  int    `json:"limit,omitempty"`
	Query  *Query `json:"query,omitempty"`
}

type Output struct {
	History []models.EmailHistory `json:"history"`
	Total   int                   `json:"total"`
	Showing int                   `json:"showing"`
	Source  string                `json:"source"`
}

const InputSchema = `{
	"type": "object",
	"required": ["siteId"],
	"properties": {
		"siteId": {"type": "string", "minLength": 1},
		"limit": {"type": "integer", "minimum": 0, "maximum": 1000},
		"query": {
			"type": "object",
			"properties": {
				"text": {"type": "string"},
				"status": {"type": "string", "enum": ["", "sent", "failed", "bounced"]},
				"trigger": {"type": "string"}
			}
		}
	}
}`
