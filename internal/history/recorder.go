// Package history records email sends and serves the per-site audit log.
package history

import (
	"context"
	"time"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/events"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"

	"github.com/google/uuid"
)

const DefaultLimit = 50

// Recorder appends history rows. Postgres is the system of record; the
// search index and the event stream are best effort and never fail a send.
type Recorder struct {
	store        storage.HistoryStore
	index        Index
	publisher    events.Publisher
	logger       logger.Logger
	defaultLimit int
	now          func() time.Time
}

type Option func(*Recorder)

func WithIndex(idx Index) Option {
	return func(r *Recorder) { r.index = idx }
}

func WithPublisher(p events.Publisher) Option {
	return func(r *Recorder) { r.publisher = p }
}

func WithDefaultLimit(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.defaultLimit = n
		}
	}
}

func NewRecorder(store storage.HistoryStore, log logger.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		store:        store,
		publisher:    events.NopPublisher{},
		logger:       log.WithFields(map[string]interface{}{"component": "history"}),
		defaultLimit: DefaultLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record assigns an id and timestamp when missing and appends h.
func (r *Recorder) Record(ctx context.Context, h *models.EmailHistory) error {
	if h.ID == "" {
		h.ID = "history-" + uuid.NewString()
	}
	if h.SentAt.IsZero() {
		h.SentAt = r.now()
	}

	if err := r.store.AppendHistory(ctx, h); err != nil {
		return commonErrors.NewDatabaseError("append history", err)
	}

	if r.index != nil {
		if err := r.index.IndexHistory(ctx, h); err != nil {
			r.logger.Warn("History indexing failed", map[string]interface{}{
				"historyId": h.ID,
				"error":     err.Error(),
			})
		}
	}
	if err := r.publisher.PublishHistory(ctx, h); err != nil {
		r.logger.Warn("History event publish failed", map[string]interface{}{
			"historyId": h.ID,
			"error":     err.Error(),
		})
	}
	return nil
}

// ListHistory returns the newest rows of a site. A non-positive limit uses
// the default.
func (r *Recorder) ListHistory(ctx context.Context, siteID string, limit int) (*models.HistoryPage, error) {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	rows, total, err := r.store.ListHistory(ctx, siteID, limit)
	if err != nil {
		return nil, commonErrors.NewDatabaseError("list history", err)
	}
	return &models.HistoryPage{History: rows, Total: total, Showing: len(rows)}, nil
}

func (r *Recorder) SearchHistory(ctx context.Context, siteID string, q SearchQuery) (*models.HistoryPage, error) {
	if r.index == nil {
		return nil, commonErrors.NewValidationFailedError("history search is not enabled")
	}
	if q.Size <= 0 {
		q.Size = r.defaultLimit
	}
	rows, total, err := r.index.SearchHistory(ctx, siteID, q)
	if err != nil {
		return nil, commonErrors.NewSearchQueryFailedError(err)
	}
	return &models.HistoryPage{History: rows, Total: total, Showing: len(rows)}, nil
}
