package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
)

// UserEvent is the message published after a user change commits.
type UserEvent struct {
	Type       EventType   `json:"type"`
	User       UserPayload `json:"user"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type UserPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// publish is best effort: the change is already committed, so a failed
// publish is logged and dropped.
func (s *Service) publish(ctx context.Context, typ EventType, u *entity.User) {
	if s.Events == nil {
		return
	}
	ev := UserEvent{
		Type:       typ,
		User:       UserPayload{ID: u.ID, Username: u.Username, Email: u.Email},
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.PublishJSON(ctx, ev); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"event": typ, "user_id": u.ID}).Warn("publish user event failed")
	}
}
