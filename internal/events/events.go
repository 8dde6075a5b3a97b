package events

import (
	"time"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/google/uuid"
)

// EnvelopeVersion is bumped whenever an event payload changes incompatibly.
const EnvelopeVersion = 1

// Event is a domain event that knows where it is routed on the topic exchange.
type Event interface {
	RoutingKey() string
	EventType() string
}

// Envelope wraps every event on the wire so consumers can dedupe by ID and dispatch by Type.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       Event     `json:"data"`
}

// Seal assigns the event a message id. occurredAt defaults to now when zero.
func Seal(event Event, occurredAt time.Time) Envelope {
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       event.EventType(),
		Version:    EnvelopeVersion,
		OccurredAt: occurredAt,
		Data:       event,
	}
}

// NotificationRoutingKey is the topic a notification of type t is published under.
func NotificationRoutingKey(t models.NotificationType) string {
	return "notification." + string(t)
}

// NotificationCreated is published for every stored notification. Consumers bind on
// "notification.*" or on a single type.
type NotificationCreated struct {
	NotificationID uint                    `json:"notificationId"`
	RecipientID    uint                    `json:"recipient"`
	SenderID       uint                    `json:"sender"`
	Type           models.NotificationType `json:"type"`
	PostID         *string                 `json:"post,omitempty"`
	CommentText    *string                 `json:"commentText,omitempty"`
	FriendshipID   *uint                   `json:"friendshipId,omitempty"`
	OccurredAt     time.Time               `json:"occurredAt"`
}

func NewNotificationCreated(n *models.Notification) NotificationCreated {
	return NotificationCreated{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		SenderID:       n.SenderID,
		Type:           n.Type,
		PostID:         n.PostID,
		CommentText:    n.CommentText,
		FriendshipID:   n.FriendshipID,
		OccurredAt:     n.CreatedAt,
	}
}

func (e NotificationCreated) RoutingKey() string { return NotificationRoutingKey(e.Type) }

func (NotificationCreated) EventType() string { return "notification.created" }
