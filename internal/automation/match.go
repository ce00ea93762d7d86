package automation

import "wecelebrate-notifier/internal/models"

// Reminder thresholds used when a time-based rule sets none.
const (
	DefaultExpiryThresholdDays      = 7
	DefaultAnniversaryThresholdDays = 30
)

// Threshold returns the days-until limit of a time-based rule. ok is false
// for triggers that are not time based.
func Threshold(rule models.AutomationRule) (days int, ok bool) {
	switch rule.Trigger {
	case models.TriggerSelectionExpiring:
		if rule.Conditions != nil && rule.Conditions.DaysBeforeExpiry != nil {
			return *rule.Conditions.DaysBeforeExpiry, true
		}
		return DefaultExpiryThresholdDays, true
	case models.TriggerAnniversaryApproaching:
		if rule.Conditions != nil && rule.Conditions.DaysBeforeAnniversary != nil {
			return *rule.Conditions.DaysBeforeAnniversary, true
		}
		return DefaultAnniversaryThresholdDays, true
	}
	return 0, false
}

// Eligible reports whether rule fires for event on siteID. Time-based
// triggers also need daysUntil, already computed by the caller, to be at or
// under the rule's threshold; without it they never fire.
func Eligible(rule models.AutomationRule, siteID string, event models.TriggerEvent, daysUntil *int) bool {
	if rule.SiteID != siteID || rule.Trigger != event || !rule.Enabled {
		return false
	}
	threshold, timed := Threshold(rule)
	if !timed {
		return true
	}
	return daysUntil != nil && *daysUntil <= threshold
}

// MatchRules filters rules down to the eligible ones, preserving order.
func MatchRules(rules []models.AutomationRule, siteID string, event models.TriggerEvent, daysUntil *int) []models.AutomationRule {
	matched := []models.AutomationRule{}
	for _, r := range rules {
		if Eligible(r, siteID, event, daysUntil) {
			matched = append(matched, r)
		}
	}
	return matched
}
