// Package memory is an in-process implementation of the storage contracts,
// used by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"
)

// Store keeps every record in maps guarded by one RWMutex. Records are copied
// on the way in and out so callers never share memory with the store.
type Store struct {
	mu        sync.RWMutex
	globals   map[string]models.GlobalTemplate
	sites     map[string]models.SiteTemplate
	siteOrder []string
	rules     map[string]models.AutomationRule
	history   []models.EmailHistory
}

var (
	_ storage.GlobalTemplateStore = (*Store)(nil)
	_ storage.SiteTemplateStore   = (*Store)(nil)
	_ storage.RuleStore           = (*Store)(nil)
	_ storage.HistoryStore        = (*Store)(nil)
)

func New() *Store {
	return &Store{
		globals: make(map[string]models.GlobalTemplate),
		sites:   make(map[string]models.SiteTemplate),
		rules:   make(map[string]models.AutomationRule),
	}
}

// ---- global templates ----

func (s *Store) GetGlobalTemplate(_ context.Context, id string) (*models.GlobalTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.globals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := copyGlobal(t)
	return &out, nil
}

// ListGlobalTemplates orders by catalog type order, then id.
func (s *Store) ListGlobalTemplates(_ context.Context) ([]models.GlobalTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GlobalTemplate, 0, len(s.globals))
	for _, t := range s.globals {
		out = append(out, copyGlobal(t))
	}
	rank := make(map[models.TemplateType]int, len(models.TemplateTypes))
	for i, typ := range models.TemplateTypes {
		rank[typ] = i
	}
	sort.Slice(out, func(i, j int) bool {
		if rank[out[i].Type] != rank[out[j].Type] {
			return rank[out[i].Type] < rank[out[j].Type]
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateGlobalTemplate(_ context.Context, t *models.GlobalTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.globals[t.ID]; exists {
		return storage.ErrDuplicate
	}
	s.globals[t.ID] = copyGlobal(*t)
	return nil
}

func (s *Store) UpdateGlobalTemplate(_ context.Context, t *models.GlobalTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.globals[t.ID]; !exists {
		return storage.ErrNotFound
	}
	s.globals[t.ID] = copyGlobal(*t)
	return nil
}

func (s *Store) DeleteGlobalTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.globals[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.globals, id)
	return nil
}

// ---- site templates ----

func (s *Store) GetSiteTemplate(_ context.Context, id string) (*models.SiteTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.sites[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := copySite(t)
	return &out, nil
}

func (s *Store) ListSiteTemplates(_ context.Context, filter storage.SiteTemplateFilter) ([]models.SiteTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.SiteTemplate{}
	for _, id := range s.siteOrder {
		t := s.sites[id]
		if filter.SiteID != "" && t.SiteID != filter.SiteID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		out = append(out, copySite(t))
	}
	return out, nil
}

// CreateSiteTemplate enforces (site, type) uniqueness like the database index.
func (s *Store) CreateSiteTemplate(_ context.Context, t *models.SiteTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sites[t.ID]; exists {
		return storage.ErrDuplicate
	}
	for _, existing := range s.sites {
		if existing.SiteID == t.SiteID && existing.Type == t.Type {
			return storage.ErrDuplicate
		}
	}
	s.sites[t.ID] = copySite(*t)
	s.siteOrder = append(s.siteOrder, t.ID)
	return nil
}

func (s *Store) UpdateSiteTemplate(_ context.Context, t *models.SiteTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sites[t.ID]; !exists {
		return storage.ErrNotFound
	}
	s.sites[t.ID] = copySite(*t)
	return nil
}

func (s *Store) DeleteSiteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sites[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.sites, id)
	for i, existing := range s.siteOrder {
		if existing == id {
			s.siteOrder = append(s.siteOrder[:i], s.siteOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ---- automation rules ----

func (s *Store) GetRule(_ context.Context, id string) (*models.AutomationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := copyRule(r)
	return &out, nil
}

func (s *Store) ListRules(_ context.Context, siteID string) ([]models.AutomationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.AutomationRule{}
	for _, r := range s.rules {
		if siteID == "" || r.SiteID == siteID {
			out = append(out, copyRule(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateRule(_ context.Context, r *models.AutomationRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[r.ID]; exists {
		return storage.ErrDuplicate
	}
	s.rules[r.ID] = copyRule(*r)
	return nil
}

func (s *Store) UpdateRule(_ context.Context, r *models.AutomationRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[r.ID]; !exists {
		return storage.ErrNotFound
	}
	s.rules[r.ID] = copyRule(*r)
	return nil
}

func (s *Store) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.rules, id)
	return nil
}

// ---- history ----

func (s *Store) AppendHistory(_ context.Context, h *models.EmailHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, copyHistory(*h))
	return nil
}

func (s *Store) ListHistory(_ context.Context, siteID string, limit int) ([]models.EmailHistory, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := []models.EmailHistory{}
	for _, h := range s.history {
		if siteID == "" || h.SiteID == siteID {
			matched = append(matched, copyHistory(h))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].SentAt.After(matched[j].SentAt)
	})
	total := len(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// ---- copies ----

func copyGlobal(t models.GlobalTemplate) models.GlobalTemplate {
	t.Variables = append([]models.TemplateVariable(nil), t.Variables...)
	return t
}

func copySite(t models.SiteTemplate) models.SiteTemplate {
	if t.GDPR != nil {
		g := *t.GDPR
		t.GDPR = &g
	}
	if t.Reminders != nil {
		r := *t.Reminders
		t.Reminders = &r
	}
	return t
}

func copyRule(r models.AutomationRule) models.AutomationRule {
	if r.Conditions != nil {
		c := *r.Conditions
		if c.DaysBeforeExpiry != nil {
			v := *c.DaysBeforeExpiry
			c.DaysBeforeExpiry = &v
		}
		if c.DaysBeforeAnniversary != nil {
			v := *c.DaysBeforeAnniversary
			c.DaysBeforeAnniversary = &v
		}
		r.Conditions = &c
	}
	return r
}

func copyHistory(h models.EmailHistory) models.EmailHistory {
	if h.Context.Variables != nil {
		vars := make(map[string]string, len(h.Context.Variables))
		for k, v := range h.Context.Variables {
			vars[k] = v
		}
		h.Context.Variables = vars
	}
	if h.Context.DaysUntil != nil {
		d := *h.Context.DaysUntil
		h.Context.DaysUntil = &d
	}
	return h
}
