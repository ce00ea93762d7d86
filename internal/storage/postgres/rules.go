package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"wecelebrate-notifier/internal/models"
)

const ruleColumns = `id, site_id, name, description, trigger_event, template_id, enabled, conditions,
	created_at, updated_at, created_by, updated_by`

func scanRule(row rowScanner) (*models.AutomationRule, error) {
	var (
		r          models.AutomationRule
		conditions []byte
	)
	err := row.Scan(&r.ID, &r.SiteID, &r.Name, &r.Description, &r.Trigger, &r.TemplateID, &r.Enabled,
		&conditions, &r.CreatedAt, &r.UpdatedAt, &r.CreatedBy, &r.UpdatedBy)
	if err != nil {
		return nil, err
	}
	if len(conditions) > 0 {
		r.Conditions = &models.RuleConditions{}
		if err := json.Unmarshal(conditions, r.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions of %s: %w", r.ID, err)
		}
	}
	return &r, nil
}

func (s *Store) GetRule(ctx context.Context, id string) (*models.AutomationRule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM automation_rules WHERE id = $1`, id)
	r, err := scanRule(row)
	if err != nil {
		return nil, mapError(err)
	}
	return r, nil
}

func (s *Store) ListRules(ctx context.Context, siteID string) ([]models.AutomationRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE site_id = $1 ORDER BY name, id`, siteID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []models.AutomationRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) CreateRule(ctx context.Context, r *models.AutomationRule) error {
	conditions, err := nullableJSON(r.Conditions, r.Conditions == nil)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO automation_rules (`+ruleColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.SiteID, r.Name, r.Description, r.Trigger, r.TemplateID, r.Enabled, conditions,
		r.CreatedAt, r.UpdatedAt, r.CreatedBy, r.UpdatedBy)
	return mapError(err)
}

func (s *Store) UpdateRule(ctx context.Context, r *models.AutomationRule) error {
	conditions, err := nullableJSON(r.Conditions, r.Conditions == nil)
	if err != nil {
		return err
	}
	return expectOne(s.db.ExecContext(ctx,
		`UPDATE automation_rules SET name = $2, description = $3, trigger_event = $4, template_id = $5,
		 enabled = $6, conditions = $7, updated_at = $8, updated_by = $9
		 WHERE id = $1`,
		r.ID, r.Name, r.Description, r.Trigger, r.TemplateID, r.Enabled, conditions, r.UpdatedAt, r.UpdatedBy))
}

func (s *Store) DeleteRule(ctx context.Context, id string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM automation_rules WHERE id = $1`, id))
}
