// Package worker consumes user lifecycle events from RabbitMQ and keeps the
// search projection and welcome emails in step with them.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/infrastructure/search"
	"github.com/oksasatya/go-user-accounts/pkg/mailer"
)

const (
	prefetch       = 16
	handlerTimeout = 15 * time.Second
)

// ErrMalformed marks a message that can never be processed; it is dropped
// instead of requeued.
var ErrMalformed = errors.New("malformed user event")

type Indexer interface {
	Index(ctx context.Context, doc search.UserDocument) error
	Delete(ctx context.Context, id int64) error
}

// UserEventHandler applies one user event. Index and Mail are optional.
type UserEventHandler struct {
	Index   Indexer
	Mail    mailer.Sender
	AppName string
	Logger  logrus.FieldLogger
}

func (h *UserEventHandler) Handle(ctx context.Context, body []byte) error {
	var ev userapp.UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ev.User.ID <= 0 {
		return fmt.Errorf("%w: missing user id", ErrMalformed)
	}
	log := h.Logger.WithFields(logrus.Fields{"event": ev.Type, "user_id": ev.User.ID})

	switch ev.Type {
	case userapp.EventUserCreated, userapp.EventUserUpdated:
		if h.Index != nil {
			doc := search.UserDocument{ID: ev.User.ID, Username: ev.User.Username, Email: ev.User.Email}
			if err := h.Index.Index(ctx, doc); err != nil {
				return fmt.Errorf("index user: %w", err)
			}
		}
		if ev.Type == userapp.EventUserCreated && h.Mail != nil {
			msg, err := mailer.WelcomeMessage(h.AppName, ev.User.Username, ev.User.Email, ev.OccurredAt)
			if err != nil {
				return fmt.Errorf("%w: render welcome: %v", ErrMalformed, err)
			}
			if err := h.Mail.Send(ctx, msg); err != nil {
				return fmt.Errorf("send welcome: %w", err)
			}
			log.Info("welcome email sent")
		}
	case userapp.EventUserDeleted:
		if h.Index != nil {
			if err := h.Index.Delete(ctx, ev.User.ID); err != nil {
				return fmt.Errorf("unindex user: %w", err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformed, ev.Type)
	}
	log.Debug("user event applied")
	return nil
}

// Delivery is the subset of amqp.Delivery the consumer acknowledges through.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle acks on success, drops malformed messages and requeues the rest.
func (h *UserEventHandler) settle(ctx context.Context, d Delivery, body []byte) {
	c, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	err := h.Handle(c, body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrMalformed):
		h.Logger.WithError(err).Warn("dropping user event")
		_ = d.Nack(false, false)
	default:
		h.Logger.WithError(err).Error("user event failed; requeueing")
		_ = d.Nack(false, true)
	}
}

// Consume processes deliveries from queue until ctx is done or the channel
// closes.
func (h *UserEventHandler) Consume(ctx context.Context, ch *amqp.Channel, queue string) error {
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			h.settle(ctx, msg, msg.Body)
		}
	}
}
