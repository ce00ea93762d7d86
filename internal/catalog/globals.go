package catalog

import (
	"context"
	"errors"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"
)

// SeedGlobalTemplates creates the default template of every type that has no
// global template yet and returns how many were created.
func (s *Service) SeedGlobalTemplates(ctx context.Context) (int, error) {
	current, err := s.globals.ListGlobalTemplates(ctx)
	if err != nil {
		return 0, commonErrors.NewDatabaseError("list global templates", err)
	}
	present := make(map[models.TemplateType]bool, len(current))
	for _, g := range current {
		present[g.Type] = true
	}

	created := 0
	now := s.now()
	for _, g := range defaultGlobalTemplates() {
		if present[g.Type] {
			continue
		}
		g := g
		g.CreatedAt = now
		g.UpdatedAt = now
		if err := s.globals.CreateGlobalTemplate(ctx, &g); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				continue
			}
			return created, commonErrors.NewDatabaseError("create global template", err)
		}
		created++
	}

	if created > 0 {
		s.logger.Info("Seeded global templates", map[string]interface{}{"created": created})
	}
	return created, nil
}

func (s *Service) GetGlobalTemplate(ctx context.Context, id string) (*models.GlobalTemplate, error) {
	g, err := s.globals.GetGlobalTemplate(ctx, id)
	if err != nil {
		return nil, s.globalError("get global template", id, err)
	}
	return g, nil
}

// ListGlobalTemplates returns the library in catalog type order.
func (s *Service) ListGlobalTemplates(ctx context.Context) ([]models.GlobalTemplate, error) {
	list, err := s.globals.ListGlobalTemplates(ctx)
	if err != nil {
		return nil, commonErrors.NewDatabaseError("list global templates", err)
	}
	return list, nil
}

// UpdateGlobalTemplate edits a global template's defaults. Existing site
// templates keep their content until reset.
func (s *Service) UpdateGlobalTemplate(ctx context.Context, id string, u models.GlobalTemplateUpdate) (*models.GlobalTemplate, error) {
	g, err := s.GetGlobalTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Description != nil {
		g.Description = *u.Description
	}
	if u.Category != nil {
		g.Category = *u.Category
	}
	if u.DefaultSubject != nil {
		g.DefaultSubject = *u.DefaultSubject
	}
	if u.DefaultHTMLContent != nil {
		g.DefaultHTMLContent = *u.DefaultHTMLContent
	}
	if u.DefaultTextContent != nil {
		g.DefaultTextContent = *u.DefaultTextContent
	}
	if u.DefaultPushTitle != nil {
		g.DefaultPushTitle = *u.DefaultPushTitle
	}
	if u.DefaultPushBody != nil {
		g.DefaultPushBody = *u.DefaultPushBody
	}
	if u.DefaultSMSContent != nil {
		g.DefaultSMSContent = *u.DefaultSMSContent
	}
	if u.Variables != nil {
		g.Variables = append([]models.TemplateVariable(nil), u.Variables...)
	}
	g.UpdatedAt = s.now()

	if err := s.globals.UpdateGlobalTemplate(ctx, g); err != nil {
		return nil, s.globalError("update global template", id, err)
	}
	return g, nil
}

// DeleteGlobalTemplate removes a non-system global template.
func (s *Service) DeleteGlobalTemplate(ctx context.Context, id string) error {
	g, err := s.GetGlobalTemplate(ctx, id)
	if err != nil {
		return err
	}
	if g.IsSystem {
		return commonErrors.NewSystemTemplateImmutableError(id)
	}
	if err := s.globals.DeleteGlobalTemplate(ctx, id); err != nil {
		return s.globalError("delete global template", id, err)
	}
	return nil
}
