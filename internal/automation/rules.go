// Package automation evaluates automation rules against trigger events and
// drives the resulting deliveries.
package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"

	"github.com/google/uuid"
)

// RuleService manages automation rules for a site.
type RuleService struct {
	rules  storage.RuleStore
	logger logger.Logger
	now    func() time.Time
}

func NewRuleService(rules storage.RuleStore, log logger.Logger) *RuleService {
	return &RuleService{
		rules:  rules,
		logger: log.WithFields(map[string]interface{}{"component": "automation-rules"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateRule assigns a fresh id and timestamps. Name, site, template and a
// known trigger are required.
func (s *RuleService) CreateRule(ctx context.Context, in models.AutomationRule, createdBy string) (*models.AutomationRule, error) {
	if err := validateRule(&in); err != nil {
		return nil, err
	}

	now := s.now()
	rule := in
	rule.ID = "rule-" + uuid.New().String()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	rule.CreatedBy = createdBy
	rule.UpdatedBy = createdBy

	if err := s.rules.CreateRule(ctx, &rule); err != nil {
		return nil, commonErrors.NewDatabaseError("create automation rule", err)
	}

	s.logger.Info("Automation rule created", map[string]interface{}{
		"ruleId":  rule.ID,
		"siteId":  rule.SiteID,
		"trigger": rule.Trigger,
	})
	return &rule, nil
}

// UpdateRule merges the set fields of u into the stored rule. The id and
// site of a rule never change.
func (s *RuleService) UpdateRule(ctx context.Context, id string, u models.AutomationRuleUpdate, updatedBy string) (*models.AutomationRule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		rule.Name = *u.Name
	}
	if u.Description != nil {
		rule.Description = *u.Description
	}
	if u.Trigger != nil {
		rule.Trigger = *u.Trigger
	}
	if u.TemplateID != nil {
		rule.TemplateID = *u.TemplateID
	}
	if u.Enabled != nil {
		rule.Enabled = *u.Enabled
	}
	if u.Conditions != nil {
		c := *u.Conditions
		rule.Conditions = &c
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	rule.UpdatedAt = s.now()
	rule.UpdatedBy = updatedBy
	if err := s.rules.UpdateRule(ctx, rule); err != nil {
		return nil, ruleError("update automation rule", id, err)
	}
	return rule, nil
}

func (s *RuleService) ToggleRule(ctx context.Context, id string, enabled bool, updatedBy string) (*models.AutomationRule, error) {
	return s.UpdateRule(ctx, id, models.AutomationRuleUpdate{Enabled: &enabled}, updatedBy)
}

func (s *RuleService) DeleteRule(ctx context.Context, id string) error {
	if err := s.rules.DeleteRule(ctx, id); err != nil {
		return ruleError("delete automation rule", id, err)
	}
	s.logger.Info("Automation rule deleted", map[string]interface{}{"ruleId": id})
	return nil
}

func (s *RuleService) GetRule(ctx context.Context, id string) (*models.AutomationRule, error) {
	rule, err := s.rules.GetRule(ctx, id)
	if err != nil {
		return nil, ruleError("get automation rule", id, err)
	}
	return rule, nil
}

// ListRules returns a site's rules sorted by name.
func (s *RuleService) ListRules(ctx context.Context, siteID string) ([]models.AutomationRule, error) {
	rules, err := s.rules.ListRules(ctx, siteID)
	if err != nil {
		return nil, commonErrors.NewDatabaseError("list automation rules", err)
	}
	return rules, nil
}

func validateRule(r *models.AutomationRule) error {
	var missing []string
	if strings.TrimSpace(r.SiteID) == "" {
		missing = append(missing, "siteId")
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.TemplateID) == "" {
		missing = append(missing, "templateId")
	}
	if len(missing) > 0 {
		return commonErrors.NewValidationFailedError("missing required fields: " + strings.Join(missing, ", "))
	}
	if !r.Trigger.Valid() {
		return commonErrors.NewValidationFailedError(fmt.Sprintf("unknown trigger %q", r.Trigger))
	}
	if c := r.Conditions; c != nil {
		if (c.DaysBeforeExpiry != nil && *c.DaysBeforeExpiry < 0) ||
			(c.DaysBeforeAnniversary != nil && *c.DaysBeforeAnniversary < 0) {
			return commonErrors.NewValidationFailedError("reminder thresholds must not be negative")
		}
	}
	return nil
}

func ruleError(op, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return commonErrors.NewRuleNotFoundError(id)
	}
	return commonErrors.NewDatabaseError(op, err)
}
