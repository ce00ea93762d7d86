package models

import "time"

// TriggerEvent is the business event an automation rule listens for.
type TriggerEvent string

const (
	TriggerEmployeeAdded          TriggerEvent = "employee_added"
	TriggerGiftSelected           TriggerEvent = "gift_selected"
	TriggerOrderPlaced            TriggerEvent = "order_placed"
	TriggerOrderShipped           TriggerEvent = "order_shipped"
	TriggerOrderDelivered         TriggerEvent = "order_delivered"
	TriggerSelectionExpiring      TriggerEvent = "selection_expiring"
	TriggerAnniversaryApproaching TriggerEvent = "anniversary_approaching"
)

var TriggerEvents = []TriggerEvent{
	TriggerEmployeeAdded,
	TriggerGiftSelected,
	TriggerOrderPlaced,
	TriggerOrderShipped,
	TriggerOrderDelivered,
	TriggerSelectionExpiring,
	TriggerAnniversaryApproaching,
}

func (t TriggerEvent) Valid() bool {
	for _, known := range TriggerEvents {
		if t == known {
			return true
		}
	}
	return false
}

// TimeBased reports whether the trigger is evaluated against a caller-supplied
// days-until value.
func (t TriggerEvent) TimeBased() bool {
	return t == TriggerSelectionExpiring || t == TriggerAnniversaryApproaching
}

// RuleConditions narrows when a time-based rule fires.
type RuleConditions struct {
	DaysBeforeExpiry      *int   `json:"daysBeforeExpiry,omitempty"`
	DaysBeforeAnniversary *int   `json:"daysBeforeAnniversary,omitempty"`
	TimeOfDay             string `json:"timeOfDay,omitempty"`
}

// AutomationRule binds a trigger event on a site to one of its site templates.
type AutomationRule struct {
	ID          string          `json:"id"`
	SiteID      string          `json:"siteId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Trigger     TriggerEvent    `json:"trigger"`
	TemplateID  string          `json:"templateId"`
	Enabled     bool            `json:"enabled"`
	Conditions  *RuleConditions `json:"conditions,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CreatedBy   string          `json:"createdBy,omitempty"`
	UpdatedBy   string          `json:"updatedBy,omitempty"`
}

// AutomationRuleUpdate is a partial update. ID and SiteID are never changed.
type AutomationRuleUpdate struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Trigger     *TriggerEvent   `json:"trigger,omitempty"`
	TemplateID  *string         `json:"templateId,omitempty"`
	Enabled     *bool           `json:"enabled,omitempty"`
	Conditions  *RuleConditions `json:"conditions,omitempty"`
}
