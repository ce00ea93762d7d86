package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"wecelebrate-notifier/internal/models"
)

const historyColumns = `id, site_id, template_id, rule_id, trigger_event, recipient_email, subject,
	message_id, status, sent_at, context, error`

func (s *Store) AppendHistory(ctx context.Context, h *models.EmailHistory) error {
	hctx, err := json.Marshal(h.Context)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO email_history (`+historyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		h.ID, h.SiteID, h.TemplateID, h.RuleID, h.Trigger, h.RecipientEmail, h.Subject,
		h.MessageID, h.Status, h.SentAt, hctx, h.Error)
	return mapError(err)
}

func (s *Store) ListHistory(ctx context.Context, siteID string, limit int) ([]models.EmailHistory, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_history WHERE site_id = $1`, siteID).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM email_history WHERE site_id = $1
		 ORDER BY sent_at DESC LIMIT $2`, siteID, limit)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	out := []models.EmailHistory{}
	for rows.Next() {
		var (
			h    models.EmailHistory
			hctx []byte
		)
		if err := rows.Scan(&h.ID, &h.SiteID, &h.TemplateID, &h.RuleID, &h.Trigger, &h.RecipientEmail,
			&h.Subject, &h.MessageID, &h.Status, &h.SentAt, &hctx, &h.Error); err != nil {
			return nil, 0, err
		}
		if len(hctx) > 0 {
			if err := json.Unmarshal(hctx, &h.Context); err != nil {
				return nil, 0, fmt.Errorf("decode context of %s: %w", h.ID, err)
			}
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}
