package models

import "time"

type DeliveryStatus string

const (
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
	StatusBounced DeliveryStatus = "bounced"
)

// HistoryContext is the substitution input recorded with a send.
type HistoryContext struct {
	Variables map[string]string `json:"variables,omitempty"`
	DaysUntil *int              `json:"daysUntil,omitempty"`
}

// EmailHistory is one append-only delivery record.
type EmailHistory struct {
	ID             string         `json:"id"`
	SiteID         string         `json:"siteId"`
	TemplateID     string         `json:"templateId"`
	RuleID         string         `json:"ruleId,omitempty"`
	Trigger        TriggerEvent   `json:"trigger,omitempty"`
	RecipientEmail string         `json:"recipientEmail"`
	Subject        string         `json:"subject"`
	MessageID      string         `json:"messageId,omitempty"`
	Status         DeliveryStatus `json:"status"`
	SentAt         time.Time      `json:"sentAt"`
	Context        HistoryContext `json:"context"`
	Error          string         `json:"error,omitempty"`
}

// HistoryPage is a newest-first slice of a site's history.
type HistoryPage struct {
	History []EmailHistory `json:"history"`
	Total   int            `json:"total"`
	Showing int            `json:"showing"`
}
