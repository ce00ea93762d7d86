package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"wecelebrate-notifier/internal/models"

	"github.com/lib/pq"
)

const globalColumns = `id, type, name, description, category, default_subject, default_html_content,
	default_text_content, default_push_title, default_push_body, default_sms_content, variables,
	is_system, created_at, updated_at`

func scanGlobal(row rowScanner) (*models.GlobalTemplate, error) {
	var (
		t    models.GlobalTemplate
		vars []byte
	)
	err := row.Scan(&t.ID, &t.Type, &t.Name, &t.Description, &t.Category, &t.DefaultSubject,
		&t.DefaultHTMLContent, &t.DefaultTextContent, &t.DefaultPushTitle, &t.DefaultPushBody,
		&t.DefaultSMSContent, &vars, &t.IsSystem, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(vars) > 0 {
		if err := json.Unmarshal(vars, &t.Variables); err != nil {
			return nil, fmt.Errorf("decode variables of %s: %w", t.ID, err)
		}
	}
	return &t, nil
}

func (s *Store) GetGlobalTemplate(ctx context.Context, id string) (*models.GlobalTemplate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+globalColumns+` FROM global_templates WHERE id = $1`, id)
	t, err := scanGlobal(row)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// ListGlobalTemplates orders by the catalog's type order.
func (s *Store) ListGlobalTemplates(ctx context.Context) ([]models.GlobalTemplate, error) {
	types := make([]string, len(models.TemplateTypes))
	for i, t := range models.TemplateTypes {
		types[i] = string(t)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+globalColumns+` FROM global_templates
		 ORDER BY array_position($1::text[], type), id`, pq.Array(types))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []models.GlobalTemplate{}
	for rows.Next() {
		t, err := scanGlobal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) CreateGlobalTemplate(ctx context.Context, t *models.GlobalTemplate) error {
	vars, err := json.Marshal(variablesOrEmpty(t.Variables))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO global_templates (`+globalColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.Type, t.Name, t.Description, t.Category, t.DefaultSubject, t.DefaultHTMLContent,
		t.DefaultTextContent, t.DefaultPushTitle, t.DefaultPushBody, t.DefaultSMSContent, vars,
		t.IsSystem, t.CreatedAt, t.UpdatedAt)
	return mapError(err)
}

func (s *Store) UpdateGlobalTemplate(ctx context.Context, t *models.GlobalTemplate) error {
	vars, err := json.Marshal(variablesOrEmpty(t.Variables))
	if err != nil {
		return err
	}
	return expectOne(s.db.ExecContext(ctx,
		`UPDATE global_templates SET name = $2, description = $3, category = $4, default_subject = $5,
		 default_html_content = $6, default_text_content = $7, default_push_title = $8,
		 default_push_body = $9, default_sms_content = $10, variables = $11, updated_at = $12
		 WHERE id = $1`,
		t.ID, t.Name, t.Description, t.Category, t.DefaultSubject, t.DefaultHTMLContent,
		t.DefaultTextContent, t.DefaultPushTitle, t.DefaultPushBody, t.DefaultSMSContent, vars,
		t.UpdatedAt))
}

func (s *Store) DeleteGlobalTemplate(ctx context.Context, id string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM global_templates WHERE id = $1`, id))
}

func variablesOrEmpty(v []models.TemplateVariable) []models.TemplateVariable {
	if v == nil {
		return []models.TemplateVariable{}
	}
	return v
}
