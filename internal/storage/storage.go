// Package storage declares the persistence contracts of the template catalog,
// automation rules and email history. Implementations live in the postgres,
// memory and rediscache subpackages.
package storage

import (
	"context"
	"errors"

	"wecelebrate-notifier/internal/models"
)

var (
	// ErrNotFound is returned by Get, Update and Delete for a missing id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by Create when a uniqueness constraint fails.
	ErrDuplicate = errors.New("duplicate record")
)

type GlobalTemplateStore interface {
	GetGlobalTemplate(ctx context.Context, id string) (*models.GlobalTemplate, error)
	ListGlobalTemplates(ctx context.Context) ([]models.GlobalTemplate, error)
	CreateGlobalTemplate(ctx context.Context, t *models.GlobalTemplate) error
	UpdateGlobalTemplate(ctx context.Context, t *models.GlobalTemplate) error
	DeleteGlobalTemplate(ctx context.Context, id string) error
}

// SiteTemplateFilter selects site templates; empty fields match everything.
type SiteTemplateFilter struct {
	SiteID string
	Type   models.TemplateType
}

// SiteTemplateStore lists in creation order. Create reports ErrDuplicate when
// the (site, type) pair already exists.
type SiteTemplateStore interface {
	GetSiteTemplate(ctx context.Context, id string) (*models.SiteTemplate, error)
	ListSiteTemplates(ctx context.Context, filter SiteTemplateFilter) ([]models.SiteTemplate, error)
	CreateSiteTemplate(ctx context.Context, t *models.SiteTemplate) error
	UpdateSiteTemplate(ctx context.Context, t *models.SiteTemplate) error
	DeleteSiteTemplate(ctx context.Context, id string) error
}

// RuleStore lists a site's rules ordered by name.
type RuleStore interface {
	GetRule(ctx context.Context, id string) (*models.AutomationRule, error)
	ListRules(ctx context.Context, siteID string) ([]models.AutomationRule, error)
	CreateRule(ctx context.Context, r *models.AutomationRule) error
	UpdateRule(ctx context.Context, r *models.AutomationRule) error
	DeleteRule(ctx context.Context, id string) error
}

// HistoryStore is append-only. ListHistory returns newest first, at most
// limit rows, and the site's total row count.
type HistoryStore interface {
	AppendHistory(ctx context.Context, h *models.EmailHistory) error
	ListHistory(ctx context.Context, siteID string, limit int) ([]models.EmailHistory, int, error)
}
