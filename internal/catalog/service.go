// Package catalog manages global templates and the per-site copies derived
// from them.
package catalog

import (
	"context"
	"errors"
	"time"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"

	"github.com/google/uuid"
)

type Service struct {
	globals storage.GlobalTemplateStore
	sites   storage.SiteTemplateStore
	logger  logger.Logger
	now     func() time.Time
}

func NewService(globals storage.GlobalTemplateStore, sites storage.SiteTemplateStore, log logger.Logger) *Service {
	return &Service{
		globals: globals,
		sites:   sites,
		logger:  log.WithFields(map[string]interface{}{"component": "catalog"}),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ==========================
// Site templates
// ==========================

// AddSiteTemplate copies a global template's defaults into a new site
// template. Only email starts enabled.
func (s *Service) AddSiteTemplate(ctx context.Context, siteID, globalTemplateID string) (*models.SiteTemplate, error) {
	global, err := s.globals.GetGlobalTemplate(ctx, globalTemplateID)
	if err != nil {
		return nil, s.globalError("get global template", globalTemplateID, err)
	}

	existing, err := s.sites.ListSiteTemplates(ctx, storage.SiteTemplateFilter{SiteID: siteID, Type: global.Type})
	if err != nil {
		return nil, commonErrors.NewDatabaseError("list site templates", err)
	}
	if len(existing) > 0 {
		return nil, commonErrors.NewDuplicateSiteTemplateError(siteID, string(global.Type))
	}

	now := s.now()
	st := &models.SiteTemplate{
		ID:               "site-template-" + uuid.NewString(),
		SiteID:           siteID,
		GlobalTemplateID: global.ID,
		Type:             global.Type,
		Name:             global.Name,
		EmailEnabled:     true,
		Subject:          global.DefaultSubject,
		HTMLContent:      global.DefaultHTMLContent,
		TextContent:      global.DefaultTextContent,
		PushTitle:        global.DefaultPushTitle,
		PushBody:         global.DefaultPushBody,
		SMSContent:       global.DefaultSMSContent,
		Enabled:          true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sites.CreateSiteTemplate(ctx, st); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, commonErrors.NewDuplicateSiteTemplateError(siteID, string(global.Type))
		}
		return nil, commonErrors.NewDatabaseError("create site template", err)
	}

	s.logger.Info("Site template added", map[string]interface{}{
		"siteId":         siteID,
		"siteTemplateId": st.ID,
		"type":           st.Type,
	})
	return st, nil
}

// UpdateSiteTemplate merges the non-nil fields of update into the record.
func (s *Service) UpdateSiteTemplate(ctx context.Context, id string, update models.SiteTemplateUpdate) (*models.SiteTemplate, error) {
	st, err := s.GetSiteTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	applySiteUpdate(st, update)
	st.UpdatedAt = s.now()

	if err := s.sites.UpdateSiteTemplate(ctx, st); err != nil {
		return nil, s.siteError("update site template", id, err)
	}
	return st, nil
}

// ResetSiteTemplateToDefault overwrites the channel content with the parent's
// current defaults. Channel flags and enabled are kept.
func (s *Service) ResetSiteTemplateToDefault(ctx context.Context, id string) (*models.SiteTemplate, error) {
	st, err := s.GetSiteTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	global, err := s.globals.GetGlobalTemplate(ctx, st.GlobalTemplateID)
	if err != nil {
		return nil, s.globalError("get global template", st.GlobalTemplateID, err)
	}

	st.Subject = global.DefaultSubject
	st.HTMLContent = global.DefaultHTMLContent
	st.TextContent = global.DefaultTextContent
	st.PushTitle = global.DefaultPushTitle
	st.PushBody = global.DefaultPushBody
	st.SMSContent = global.DefaultSMSContent
	st.UpdatedAt = s.now()

	if err := s.sites.UpdateSiteTemplate(ctx, st); err != nil {
		return nil, s.siteError("reset site template", id, err)
	}

	s.logger.Info("Site template reset to default", map[string]interface{}{
		"siteTemplateId":   id,
		"globalTemplateId": global.ID,
	})
	return st, nil
}

func (s *Service) DeleteSiteTemplate(ctx context.Context, id string) error {
	if err := s.sites.DeleteSiteTemplate(ctx, id); err != nil {
		return s.siteError("delete site template", id, err)
	}
	return nil
}

func (s *Service) GetSiteTemplate(ctx context.Context, id string) (*models.SiteTemplate, error) {
	st, err := s.sites.GetSiteTemplate(ctx, id)
	if err != nil {
		return nil, s.siteError("get site template", id, err)
	}
	return st, nil
}

func (s *Service) GetSiteTemplatesBySite(ctx context.Context, siteID string) ([]models.SiteTemplate, error) {
	list, err := s.sites.ListSiteTemplates(ctx, storage.SiteTemplateFilter{SiteID: siteID})
	if err != nil {
		return nil, commonErrors.NewDatabaseError("list site templates", err)
	}
	return list, nil
}

// GetSiteTemplateByType returns the site's first template of type t.
func (s *Service) GetSiteTemplateByType(ctx context.Context, siteID string, t models.TemplateType) (*models.SiteTemplate, error) {
	list, err := s.sites.ListSiteTemplates(ctx, storage.SiteTemplateFilter{SiteID: siteID, Type: t})
	if err != nil {
		return nil, commonErrors.NewDatabaseError("list site templates", err)
	}
	if len(list) == 0 {
		return nil, commonErrors.NewSiteTemplateNotFoundError(siteID + "/" + string(t))
	}
	return &list[0], nil
}

func applySiteUpdate(st *models.SiteTemplate, u models.SiteTemplateUpdate) {
	if u.Name != nil {
		st.Name = *u.Name
	}
	if u.EmailEnabled != nil {
		st.EmailEnabled = *u.EmailEnabled
	}
	if u.Subject != nil {
		st.Subject = *u.Subject
	}
	if u.HTMLContent != nil {
		st.HTMLContent = *u.HTMLContent
	}
	if u.TextContent != nil {
		st.TextContent = *u.TextContent
	}
	if u.PushEnabled != nil {
		st.PushEnabled = *u.PushEnabled
	}
	if u.PushTitle != nil {
		st.PushTitle = *u.PushTitle
	}
	if u.PushBody != nil {
		st.PushBody = *u.PushBody
	}
	if u.SMSEnabled != nil {
		st.SMSEnabled = *u.SMSEnabled
	}
	if u.SMSContent != nil {
		st.SMSContent = *u.SMSContent
	}
	if u.Enabled != nil {
		st.Enabled = *u.Enabled
	}
	if u.GDPR != nil {
		gdpr := *u.GDPR
		st.GDPR = &gdpr
	}
	if u.Reminders != nil {
		reminders := *u.Reminders
		st.Reminders = &reminders
	}
}

func (s *Service) siteError(op, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return commonErrors.NewSiteTemplateNotFoundError(id)
	}
	return commonErrors.NewDatabaseError(op, err)
}

func (s *Service) globalError(op, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return commonErrors.NewGlobalTemplateNotFoundError(id)
	}
	return commonErrors.NewDatabaseError(op, err)
}
