// Package delivery sends rendered notifications over email, SMS and mobile
// push.
package delivery

import (
	"context"
	"sync"

	commonErrors "wecelebrate-notifier/internal/common/errors"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/models"
)

// Message is one rendered notification for a single recipient. For push,
// Subject carries the title and Text the body. For SMS only Text is sent.
type Message struct {
	Channel models.Channel
	To      string
	Subject string
	HTML    string
	Text    string
}

type Result struct {
	MessageID string
	Provider  string
}

type Sender interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// Dispatcher routes messages to the sender registered for their channel.
type Dispatcher struct {
	mu      sync.RWMutex
	senders map[models.Channel]Sender
	logger  logger.Logger
}

func NewDispatcher(log logger.Logger) *Dispatcher {
	return &Dispatcher{
		senders: make(map[models.Channel]Sender),
		logger:  log.WithFields(map[string]interface{}{"component": "delivery"}),
	}
}

func (d *Dispatcher) Register(ch models.Channel, s Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[ch] = s
}

// Configured reports whether ch has a sender.
func (d *Dispatcher) Configured(ch models.Channel) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.senders[ch]
	return ok
}

// Send delivers msg. Provider failures come back as retryable
// DELIVERY_FAILED errors; an unregistered channel as CHANNEL_NOT_CONFIGURED.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (*Result, error) {
	d.mu.RLock()
	sender, ok := d.senders[msg.Channel]
	d.mu.RUnlock()
	if !ok {
		return nil, commonErrors.NewChannelNotConfiguredError(string(msg.Channel))
	}

	res, err := sender.Send(ctx, msg)
	if err != nil {
		if _, isStd := commonErrors.AsStandard(err); isStd {
			return nil, err
		}
		d.logger.Error("Delivery failed", map[string]interface{}{
			"channel": msg.Channel,
			"error":   err.Error(),
		})
		return nil, commonErrors.NewDeliveryFailedError(string(msg.Channel), err)
	}

	d.logger.Debug("Notification delivered", map[string]interface{}{
		"channel":   msg.Channel,
		"provider":  res.Provider,
		"messageId": res.MessageID,
	})
	return res, nil
}
