// Package events publishes email history records to Kafka for downstream
// consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/models"

	"github.com/segmentio/kafka-go"
)

// Publisher emits one event per appended history row.
type Publisher interface {
	PublishHistory(ctx context.Context, h *models.EmailHistory) error
	Close() error
}

// HistoryEvent is the message value written to the history topic.
type HistoryEvent struct {
	Type       string              `json:"type"`
	OccurredAt time.Time           `json:"occurredAt"`
	History    models.EmailHistory `json:"history"`
}

const historyEventType = "email.history.appended"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// PublishHistory keys the message by site so a site's events stay ordered
// within one partition.
func (p *KafkaPublisher) PublishHistory(ctx context.Context, h *models.EmailHistory) error {
	value, err := json.Marshal(HistoryEvent{
		Type:       historyEventType,
		OccurredAt: h.SentAt,
		History:    *h,
	})
	if err != nil {
		return commonErrors.NewEventPublishFailedError(err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(h.SiteID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(historyEventType)},
			{Key: "status", Value: []byte(h.Status)},
		},
	})
	if err != nil {
		return commonErrors.NewEventPublishFailedError(err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishHistory(context.Context, *models.EmailHistory) error { return nil }
func (NopPublisher) Close() error { return nil }
