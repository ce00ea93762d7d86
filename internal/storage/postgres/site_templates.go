package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"
)

const siteColumns = `id, site_id, global_template_id, type, name, email_enabled, subject, html_content,
	text_content, push_enabled, push_title, push_body, sms_enabled, sms_content, enabled,
	gdpr_settings, reminder_settings, created_at, updated_at`

func scanSite(row rowScanner) (*models.SiteTemplate, error) {
	var (
		t               models.SiteTemplate
		gdpr, reminders []byte
	)
	err := row.Scan(&t.ID, &t.SiteID, &t.GlobalTemplateID, &t.Type, &t.Name, &t.EmailEnabled,
		&t.Subject, &t.HTMLContent, &t.TextContent, &t.PushEnabled, &t.PushTitle, &t.PushBody,
		&t.SMSEnabled, &t.SMSContent, &t.Enabled, &gdpr, &reminders, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(gdpr) > 0 {
		t.GDPR = &models.GDPRSettings{}
		if err := json.Unmarshal(gdpr, t.GDPR); err != nil {
			return nil, fmt.Errorf("decode gdpr settings of %s: %w", t.ID, err)
		}
	}
	if len(reminders) > 0 {
		t.Reminders = &models.ReminderSettings{}
		if err := json.Unmarshal(reminders, t.Reminders); err != nil {
			return nil, fmt.Errorf("decode reminder settings of %s: %w", t.ID, err)
		}
	}
	return &t, nil
}

func siteJSON(t *models.SiteTemplate) (gdpr, reminders interface{}, err error) {
	if gdpr, err = nullableJSON(t.GDPR, t.GDPR == nil); err != nil {
		return nil, nil, err
	}
	if reminders, err = nullableJSON(t.Reminders, t.Reminders == nil); err != nil {
		return nil, nil, err
	}
	return gdpr, reminders, nil
}

func (s *Store) GetSiteTemplate(ctx context.Context, id string) (*models.SiteTemplate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM site_templates WHERE id = $1`, id)
	t, err := scanSite(row)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (s *Store) ListSiteTemplates(ctx context.Context, filter storage.SiteTemplateFilter) ([]models.SiteTemplate, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.SiteID != "" {
		args = append(args, filter.SiteID)
		where = append(where, fmt.Sprintf("site_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `SELECT ` + siteColumns + ` FROM site_templates`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []models.SiteTemplate{}
	for rows.Next() {
		t, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) CreateSiteTemplate(ctx context.Context, t *models.SiteTemplate) error {
	gdpr, reminders, err := siteJSON(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO site_templates (`+siteColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		t.ID, t.SiteID, t.GlobalTemplateID, t.Type, t.Name, t.EmailEnabled, t.Subject, t.HTMLContent,
		t.TextContent, t.PushEnabled, t.PushTitle, t.PushBody, t.SMSEnabled, t.SMSContent, t.Enabled,
		gdpr, reminders, t.CreatedAt, t.UpdatedAt)
	return mapError(err)
}

// UpdateSiteTemplate rewrites the mutable columns. Site, parent and type are fixed.
func (s *Store) UpdateSiteTemplate(ctx context.Context, t *models.SiteTemplate) error {
	gdpr, reminders, err := siteJSON(t)
	if err != nil {
		return err
	}
	return expectOne(s.db.ExecContext(ctx,
		`UPDATE site_templates SET name = $2, email_enabled = $3, subject = $4, html_content = $5,
		 text_content = $6, push_enabled = $7, push_title = $8, push_body = $9, sms_enabled = $10,
		 sms_content = $11, enabled = $12, gdpr_settings = $13, reminder_settings = $14, updated_at = $15
		 WHERE id = $1`,
		t.ID, t.Name, t.EmailEnabled, t.Subject, t.HTMLContent, t.TextContent, t.PushEnabled,
		t.PushTitle, t.PushBody, t.SMSEnabled, t.SMSContent, t.Enabled, gdpr, reminders, t.UpdatedAt))
}

func (s *Store) DeleteSiteTemplate(ctx context.Context, id string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM site_templates WHERE id = $1`, id))
}
