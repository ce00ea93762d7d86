package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher_PublishHistory(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}
	sentAt := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

	err := p.PublishHistory(context.Background(), &models.EmailHistory{
		ID: "h-1", SiteID: "site-1", Status: models.StatusSent, SentAt: sentAt, Subject: "Shipped",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "site-1", string(msg.Key))

	var event HistoryEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "email.history.appended", event.Type)
	assert.Equal(t, "h-1", event.History.ID)
	assert.True(t, sentAt.Equal(event.OccurredAt))
}

func TestKafkaPublisher_WriteFailure(t *testing.T) {
	p := &KafkaPublisher{writer: &recordingWriter{err: errors.New("leader not available")}}
	err := p.PublishHistory(context.Background(), &models.EmailHistory{ID: "h-1"})
	assert.True(t, commonErrors.HasCode(err, commonErrors.ErrCodeEventPublishFailed))
	assert.True(t, commonErrors.IsRetryable(err))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishHistory(context.Background(), &models.EmailHistory{}))
	assert.NoError(t, p.Close())
}
